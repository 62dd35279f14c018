/*
Copyright (C) 2018 Synopsys, Inc.

Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements. See the NOTICE file
distributed with this work for additional information
regarding copyright ownership. The ASF licenses this file
to you under the Apache License, Version 2.0 (the
"License"); you may not use this file except in compliance
with the License. You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied. See the License for the
specific language governing permissions and limitations
under the License.
*/

package scanner

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/blackducksoftware/hubscan/pkg/hub"
	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

const (
	fakeHubServerURL = "http://www.google.com"
	fakeUsername     = "Bugs Bunny"
	fakePassword     = "Daffy Duck"
	fakeProxyHost    = "www.yahoo.com"
	fakeProxyPort    = 1234
	fakeProxyUser    = "ramanujan"
	fakeProxyPass    = "euler"
)

func checkedSupportHelper(version string) *hub.SupportHelper {
	helper, err := hub.NewCheckedSupportHelper(version)
	if err != nil {
		panic(err)
	}
	return helper
}

func writeFile(path string) {
	Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
	Expect(ioutil.WriteFile(path, []byte("fake"), 0755)).To(Succeed())
}

// recordingExecutor remembers the last command it was asked to run.
type recordingExecutor struct {
	result Result
	err    error
	calls  int
	cmd    []string
	logDir string
}

func (re *recordingExecutor) Execute(ctx context.Context, command []string, logDirectory string) (Result, error) {
	re.calls++
	re.cmd = command
	re.logDir = logDirectory
	return re.result, re.err
}

func validConfiguration(workingDir string) ScanConfiguration {
	return ScanConfiguration{
		HubURL:           fakeHubServerURL,
		Username:         fakeUsername,
		Password:         fakePassword,
		ScanTargets:      []string{workingDir},
		BuildIdentifier:  "123",
		WorkingDirectory: workingDir,
	}
}

var _ = Describe("ScanInvocationBuilder", func() {
	Describe("construction", func() {
		support := checkedSupportHelper("3.0.0")
		targets := []string{"/tmp/target"}

		cases := []struct {
			name    string
			config  ScanConfiguration
			support SupportChecker
			message string
		}{
			{"no URL", ScanConfiguration{}, support, "No Hub URL provided."},
			{"blank URL", ScanConfiguration{HubURL: "   ", Username: fakeUsername}, support, "No Hub URL provided."},
			{"no username", ScanConfiguration{HubURL: fakeHubServerURL}, support, "No Hub username provided."},
			{"no password", ScanConfiguration{HubURL: fakeHubServerURL, Username: fakeUsername}, support, "No Hub password provided."},
			{"no targets", ScanConfiguration{HubURL: fakeHubServerURL, Username: fakeUsername, Password: fakePassword}, support, "No scan targets provided."},
			{"no build identifier", ScanConfiguration{HubURL: fakeHubServerURL, Username: fakeUsername, Password: fakePassword, ScanTargets: targets}, support, "No build identifier provided."},
			{"no support helper", ScanConfiguration{HubURL: fakeHubServerURL, Username: fakeUsername, Password: fakePassword, ScanTargets: targets, BuildIdentifier: "123"}, nil, "No HubSupportHelper provided."},
			{"unchecked support helper", ScanConfiguration{HubURL: fakeHubServerURL, Username: fakeUsername, Password: fakePassword, ScanTargets: targets, BuildIdentifier: "123"}, hub.NewSupportHelper(), "The HubSupportHelper has not been checked yet."},
			{"URL without host", ScanConfiguration{HubURL: "http://", Username: fakeUsername, Password: fakePassword, ScanTargets: targets, BuildIdentifier: "123"}, support, "The Hub URL provided is not valid : http://"},
			// earlier checks win over later ones
			{"no URL and no support helper", ScanConfiguration{Username: fakeUsername, Password: fakePassword, ScanTargets: targets, BuildIdentifier: "123"}, nil, "No Hub URL provided."},
			{"no password and no targets", ScanConfiguration{HubURL: fakeHubServerURL, Username: fakeUsername}, nil, "No Hub password provided."},
			{"no targets and unchecked helper", ScanConfiguration{HubURL: fakeHubServerURL, Username: fakeUsername, Password: fakePassword, ScanTargets: []string{}}, hub.NewSupportHelper(), "No scan targets provided."},
			{"no build identifier and no helper", ScanConfiguration{HubURL: fakeHubServerURL, Username: fakeUsername, Password: fakePassword, ScanTargets: targets, BuildIdentifier: " "}, nil, "No build identifier provided."},
		}

		for _, c := range cases {
			c := c
			It(fmt.Sprintf("should reject %s", c.name), func() {
				builder, err := NewScanInvocationBuilder(c.config, c.support, &recordingExecutor{})
				Expect(builder).To(BeNil())
				Expect(err).NotTo(BeNil())
				Expect(IsArgumentError(err)).To(BeTrue())
				Expect(err.Error()).To(Equal(c.message))
			})
		}

		It("should reject a nil *SupportHelper as missing", func() {
			var helper *hub.SupportHelper
			config := validConfiguration("/tmp")
			_, err := NewScanInvocationBuilder(config, helper, nil)
			Expect(err).NotTo(BeNil())
			Expect(IsArgumentError(err)).To(BeTrue())
			Expect(err.Error()).To(Equal("No HubSupportHelper provided."))
		})

		It("should accept a valid configuration", func() {
			builder, err := NewScanInvocationBuilder(validConfiguration("/tmp"), support, nil)
			Expect(err).To(BeNil())
			Expect(builder).NotTo(BeNil())
		})

		It("should check a configuration without a support helper", func() {
			Expect(CheckConfiguration(validConfiguration("/tmp"))).To(Succeed())
			err := CheckConfiguration(ScanConfiguration{HubURL: fakeHubServerURL})
			Expect(err).NotTo(BeNil())
			Expect(err.Error()).To(Equal("No Hub username provided."))
		})
	})

	Describe("SetupAndRunScan", func() {
		var (
			workingDir string
			cliDir     string
			javaHome   string
			runnerJar  string
			oneJar     string
			javaExec   string
			executor   *recordingExecutor
			logger     *BufferLogger
			builder    *ScanInvocationBuilder
		)

		BeforeEach(func() {
			var err error
			workingDir, err = ioutil.TempDir("", "hubscan-builder")
			Expect(err).To(BeNil())
			workingDir, err = filepath.EvalSymlinks(workingDir)
			Expect(err).To(BeNil())
			cliDir = filepath.Join(workingDir, "scan.cli-4.3.0")
			runnerJar = filepath.Join(cliDir, "lib", "scan.cli-4.3.0-standalone.jar")
			oneJar = filepath.Join(cliDir, "lib", "cache", "scan.cli.impl-standalone.jar")
			writeFile(runnerJar)
			writeFile(oneJar)
			javaHome = filepath.Join(workingDir, "jre")
			javaExec = filepath.Join(javaHome, "bin", javaExecutableName())
			writeFile(javaExec)

			executor = &recordingExecutor{result: ResultSuccess}
			logger = NewBufferLogger()
			builder, err = NewScanInvocationBuilder(validConfiguration(workingDir), checkedSupportHelper("3.0.0"), executor)
			Expect(err).To(BeNil())
			builder.SetLogger(logger)
		})

		AfterEach(func() {
			os.RemoveAll(workingDir)
		})

		It("should fail without a logger and without a CLI", func() {
			builder.SetLogger(nil)
			result, err := builder.SetupAndRunScan(context.Background(), "", "")
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultFailure))
			Expect(executor.calls).To(Equal(0))
		})

		It("should ask for the CLI", func() {
			result, err := builder.SetupAndRunScan(context.Background(), "", "")
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultFailure))
			Expect(logger.OutputString()).To(ContainSubstring("Please provide the Hub scan CLI."))
		})

		It("should report a CLI that does not exist", func() {
			result, err := builder.SetupAndRunScan(context.Background(), filepath.Join(workingDir, "Fake"), "")
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultFailure))
			Expect(logger.OutputString()).To(ContainSubstring("The Hub scan CLI provided does not exist."))
		})

		It("should ask for the CLI cache when there is no runner jar", func() {
			emptyDir := filepath.Join(workingDir, "empty")
			Expect(os.MkdirAll(emptyDir, 0755)).To(Succeed())
			result, err := builder.SetupAndRunScan(context.Background(), emptyDir, javaHome)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultFailure))
			Expect(logger.OutputString()).To(ContainSubstring("Please provide the path for the CLI cache."))
		})

		It("should ask for the CLI cache when there are several runner jars", func() {
			writeFile(filepath.Join(workingDir, "other", "lib", "scan.cli-4.4.0-standalone.jar"))
			result, err := builder.SetupAndRunScan(context.Background(), workingDir, javaHome)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultFailure))
			Expect(logger.OutputString()).To(ContainSubstring("Please provide the path for the CLI cache."))
		})

		It("should find the runner jar through a symlinked CLI directory", func() {
			link := filepath.Join(workingDir, "scan.cli")
			Expect(os.Symlink(cliDir, link)).To(Succeed())
			result, err := builder.SetupAndRunScan(context.Background(), link, javaHome)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultSuccess))
			Expect(executor.cmd).To(ContainElement(runnerJar))
			Expect(executor.cmd).To(ContainElement("-Done-jar.jar.path=" + oneJar))
		})

		It("should ask for the java home", func() {
			result, err := builder.SetupAndRunScan(context.Background(), cliDir, "")
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultFailure))
			Expect(logger.OutputString()).To(ContainSubstring("Please provide the java home directory."))
		})

		It("should report a java executable that does not exist", func() {
			result, err := builder.SetupAndRunScan(context.Background(), cliDir, filepath.Join(workingDir, "Fake"))
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultFailure))
			Expect(logger.OutputString()).To(ContainSubstring("The Java executable provided does not exist at : "))
			Expect(executor.calls).To(Equal(0))
		})

		It("should warn and use the default memory when none is set", func() {
			result, err := builder.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultSuccess))
			Expect(logger.OutputString()).To(ContainSubstring("No memory set for the HUB CLI. Will use the default memory, 4096"))
			Expect(executor.cmd).To(ContainElement("-Xmx4096m"))
		})

		It("should build a valid command", func() {
			builder.SetScanMemory(8192)
			result, err := builder.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultSuccess))
			Expect(logger.OutputString()).NotTo(ContainSubstring("No memory set"))

			expected := []string{
				javaExec,
				"-Done-jar.silent=true",
				"-Done-jar.jar.path=" + oneJar,
				"-Xmx8192m",
				"-jar", runnerJar,
				"--scheme", "http",
				"--host", "www.google.com",
				"--username", fakeUsername,
				"--password", fakePassword,
				"--port", "80",
				"--logDir", executor.logDir,
				workingDir,
				"--release", "123",
			}
			Expect(cmp.Diff(expected, executor.cmd)).To(Equal(""))
			Expect(executor.logDir).To(HavePrefix(filepath.Join(workingDir, "HubScanLogs")))
			info, err := os.Stat(executor.logDir)
			Expect(err).To(BeNil())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("should not log the password", func() {
			_, err := builder.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(logger.OutputString()).To(ContainSubstring("--password ********"))
			Expect(logger.OutputString()).NotTo(ContainSubstring(fakePassword))
		})

		It("should fall back to the runner jar when there is no CLI cache", func() {
			Expect(os.RemoveAll(filepath.Dir(oneJar))).To(Succeed())
			_, err := builder.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(executor.cmd).To(ContainElement("-Done-jar.jar.path=" + runnerJar))
		})

		It("should add the proxy settings", func() {
			builder.SetProxyHost(fakeProxyHost)
			builder.SetProxyPort(fakeProxyPort)
			builder.SetProxyUsername(fakeProxyUser)
			builder.SetProxyPassword(fakeProxyPass)
			builder.SetNoProxyHosts([]*regexp.Regexp{regexp.MustCompile("test"), regexp.MustCompile(`.*\.internal`)})

			result, err := builder.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultSuccess))

			countPrefix := func(prefix string) int {
				count := 0
				for _, token := range executor.cmd {
					if strings.HasPrefix(token, prefix) {
						count++
					}
				}
				return count
			}
			Expect(countPrefix("-Dhttp.proxyHost=") + countPrefix("-Dhttps.proxyHost=")).To(Equal(1))
			Expect(countPrefix("-Dhttp.proxyPort=") + countPrefix("-Dhttps.proxyPort=")).To(Equal(1))
			Expect(countPrefix("-Dhttp.proxyUser=") + countPrefix("-Dhttps.proxyUser=")).To(Equal(1))
			Expect(countPrefix("-Dhttp.proxyPassword=") + countPrefix("-Dhttps.proxyPassword=")).To(Equal(1))
			Expect(executor.cmd).To(ContainElement("-Dhttp.proxyHost=" + fakeProxyHost))
			Expect(executor.cmd).To(ContainElement("-Dhttp.proxyPort=1234"))
			Expect(executor.cmd).To(ContainElement(`-Dhttp.nonProxyHosts=test|.*\.internal`))
			Expect(executor.cmd).To(ContainElement("-Dhttp.proxyUser=" + fakeProxyUser))
			Expect(executor.cmd).To(ContainElement("-Dhttp.proxyPassword=" + fakeProxyPass))

			// proxy properties sit between the one-jar properties and -Xmx
			Expect(executor.cmd[3]).To(Equal("-Dhttp.proxyHost=" + fakeProxyHost))
			Expect(executor.cmd[8]).To(Equal("-Xmx4096m"))
			Expect(logger.OutputString()).NotTo(ContainSubstring(fakeProxyPass))
		})

		It("should leave out proxy credentials that are not set", func() {
			builder.SetProxyHost(fakeProxyHost)
			builder.SetProxyPort(fakeProxyPort)
			_, err := builder.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(executor.cmd).To(ContainElement("-Dhttp.nonProxyHosts="))
			for _, token := range executor.cmd {
				Expect(token).NotTo(ContainSubstring("proxyUser"))
				Expect(token).NotTo(ContainSubstring("proxyPassword"))
			}
		})

		It("should use the https proxy properties for an https Hub", func() {
			config := validConfiguration(workingDir)
			config.HubURL = "https://hub.example.com:8443"
			config.Proxy = &ProxyInfo{Host: fakeProxyHost, Port: fakeProxyPort}
			secure, err := NewScanInvocationBuilder(config, checkedSupportHelper("3.0.0"), executor)
			Expect(err).To(BeNil())
			_, err = secure.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(executor.cmd).To(ContainElement("-Dhttps.proxyHost=" + fakeProxyHost))
			Expect(executor.cmd).To(ContainElement("-Dhttp.nonProxyHosts="))
			Expect(strings.Join(executor.cmd, " ")).To(ContainSubstring("--scheme https --host hub.example.com"))
			Expect(strings.Join(executor.cmd, " ")).To(ContainSubstring("--port 8443"))
		})

		It("should pass the status directory only when the Hub supports it", func() {
			config := validConfiguration(workingDir)
			config.StatusDirectory = filepath.Join(workingDir, "status")

			supported, err := NewScanInvocationBuilder(config, checkedSupportHelper("3.0.0"), executor)
			Expect(err).To(BeNil())
			_, err = supported.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(strings.Join(executor.cmd, " ")).To(ContainSubstring("--statusWriteDir " + config.StatusDirectory))

			unsupported, err := NewScanInvocationBuilder(config, checkedSupportHelper("2.1.0"), executor)
			Expect(err).To(BeNil())
			unsupported.SetLogger(logger)
			_, err = unsupported.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(executor.cmd).NotTo(ContainElement("--statusWriteDir"))
			Expect(logger.OutputString()).To(ContainSubstring("does not support the status directory option"))
		})

		It("should return the executor's failure result", func() {
			executor.result = ResultFailure
			result, err := builder.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(ResultFailure))
		})

		It("should propagate integration errors unmodified", func() {
			launchErr := &IntegrationError{Code: IntegrationErrorTypeUnableToStartScanClient, RootCause: fmt.Errorf("no such file")}
			executor.result = ResultFailure
			executor.err = launchErr
			_, err := builder.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeIdenticalTo(launchErr))
		})

		It("should report an executor result that is neither success nor failure", func() {
			builder, err := NewScanInvocationBuilder(validConfiguration(workingDir), checkedSupportHelper("3.0.0"),
				ExecutorFunc(func(ctx context.Context, command []string, logDirectory string) (Result, error) {
					return Result(7), nil
				}))
			Expect(err).To(BeNil())
			result, err := builder.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(result).To(Equal(ResultFailure))
			ie, ok := err.(*IntegrationError)
			Expect(ok).To(BeTrue())
			Expect(ie.Code).To(Equal(IntegrationErrorTypeScanClientDidNotFinish))
		})

		It("should propagate cancellation unmodified", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			builder, err := NewScanInvocationBuilder(validConfiguration(workingDir), checkedSupportHelper("3.0.0"),
				ExecutorFunc(func(ctx context.Context, command []string, logDirectory string) (Result, error) {
					return ResultFailure, ctx.Err()
				}))
			Expect(err).To(BeNil())
			_, err = builder.SetupAndRunScan(ctx, cliDir, javaHome)
			Expect(err).To(Equal(context.Canceled))
		})

		It("should build the same command twice", func() {
			builder.SetProxyHost(fakeProxyHost)
			builder.SetProxyPort(fakeProxyPort)
			builder.SetNoProxyHosts([]*regexp.Regexp{regexp.MustCompile("test")})
			paths, err := resolvePaths(cliDir, javaHome)
			Expect(err).To(BeNil())
			first := builder.BuildCommand(paths, "/tmp/logs")
			second := builder.BuildCommand(paths, "/tmp/logs")
			Expect(cmp.Diff(first, second)).To(Equal(""))
		})

		It("should not be affected by changes to the caller's configuration", func() {
			config := validConfiguration(workingDir)
			isolated, err := NewScanInvocationBuilder(config, checkedSupportHelper("3.0.0"), executor)
			Expect(err).To(BeNil())
			config.ScanTargets[0] = "/somewhere/else"
			_, err = isolated.SetupAndRunScan(context.Background(), cliDir, javaHome)
			Expect(err).To(BeNil())
			Expect(executor.cmd[len(executor.cmd)-3]).To(Equal(workingDir))
		})
	})
})
