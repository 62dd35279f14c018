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
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/blackducksoftware/hubscan/pkg/hub"
	"github.com/google/uuid"
)

const (
	logDirectoryName = "HubScanLogs"
)

type hubTarget struct {
	scheme string
	host   string
	port   int
}

func parseHubURL(hubURL string) (*hubTarget, error) {
	u, err := url.Parse(strings.TrimSpace(hubURL))
	if err != nil {
		return nil, err
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("no host in %q", hubURL)
	}
	port := 443
	if scheme == "http" {
		port = 80
	}
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return nil, err
		}
	}
	return &hubTarget{scheme: scheme, host: u.Hostname(), port: port}, nil
}

// ScanInvocationBuilder validates a ScanConfiguration, finds the scan CLI and
// java on the local filesystem, and hands the resulting command line to an
// Executor.
//
// It is not safe for concurrent use. Proxy, memory and logger setters must
// be called before SetupAndRunScan.
type ScanInvocationBuilder struct {
	config   ScanConfiguration
	target   *hubTarget
	support  SupportChecker
	executor Executor
	logger   Logger
	now      func() time.Time
}

// NewScanInvocationBuilder checks the required configuration in a fixed order
// and returns an *ArgumentError for the first problem found. A nil executor
// means the scan CLI is run as a local process.
func NewScanInvocationBuilder(config ScanConfiguration, support SupportChecker, executor Executor) (*ScanInvocationBuilder, error) {
	if err := checkRequiredFields(config); err != nil {
		return nil, err
	}
	if isNilSupport(support) {
		return nil, newArgumentError("No HubSupportHelper provided.")
	}
	if !support.HasBeenChecked() {
		return nil, newArgumentError("The HubSupportHelper has not been checked yet.")
	}
	target, err := parseHubURL(config.HubURL)
	if err != nil {
		return nil, newArgumentError(fmt.Sprintf("The Hub URL provided is not valid : %s", config.HubURL))
	}
	if executor == nil {
		executor = NewProcessExecutor()
	}
	return &ScanInvocationBuilder{
		config:   copyConfiguration(config),
		target:   target,
		support:  support,
		executor: executor,
		logger:   NoOpLogger{},
		now:      time.Now,
	}, nil
}

// isNilSupport also catches a nil *hub.SupportHelper wrapped in the interface.
func isNilSupport(support SupportChecker) bool {
	if support == nil {
		return true
	}
	helper, ok := support.(*hub.SupportHelper)
	return ok && helper == nil
}

// CheckConfiguration runs the checks that need no Hub connection, so callers
// can reject a configuration before logging in.
func CheckConfiguration(config ScanConfiguration) error {
	if err := checkRequiredFields(config); err != nil {
		return err
	}
	if _, err := parseHubURL(config.HubURL); err != nil {
		return newArgumentError(fmt.Sprintf("The Hub URL provided is not valid : %s", config.HubURL))
	}
	return nil
}

func checkRequiredFields(config ScanConfiguration) error {
	if isBlank(config.HubURL) {
		return newArgumentError("No Hub URL provided.")
	}
	if isBlank(config.Username) {
		return newArgumentError("No Hub username provided.")
	}
	if isBlank(config.Password) {
		return newArgumentError("No Hub password provided.")
	}
	if len(config.ScanTargets) == 0 {
		return newArgumentError("No scan targets provided.")
	}
	if isBlank(config.BuildIdentifier) {
		return newArgumentError("No build identifier provided.")
	}
	return nil
}

func copyConfiguration(config ScanConfiguration) ScanConfiguration {
	copied := config
	copied.ScanTargets = make([]string, len(config.ScanTargets))
	copy(copied.ScanTargets, config.ScanTargets)
	if config.Proxy != nil {
		proxy := *config.Proxy
		proxy.NoProxyHosts = make([]*regexp.Regexp, len(config.Proxy.NoProxyHosts))
		copy(proxy.NoProxyHosts, config.Proxy.NoProxyHosts)
		copied.Proxy = &proxy
	}
	return copied
}

// SetLogger attaches a logger; nil restores the no-op logger.
func (b *ScanInvocationBuilder) SetLogger(logger Logger) {
	if logger == nil {
		b.logger = NoOpLogger{}
		return
	}
	b.logger = logger
}

// SetScanMemory sets the CLI heap in MB. Values <= 0 mean DefaultScanMemory.
func (b *ScanInvocationBuilder) SetScanMemory(megabytes int) {
	b.config.ScanMemory = megabytes
}

func (b *ScanInvocationBuilder) proxy() *ProxyInfo {
	if b.config.Proxy == nil {
		b.config.Proxy = &ProxyInfo{}
	}
	return b.config.Proxy
}

func (b *ScanInvocationBuilder) SetProxyHost(host string) {
	b.proxy().Host = host
}

func (b *ScanInvocationBuilder) SetProxyPort(port int) {
	b.proxy().Port = port
}

func (b *ScanInvocationBuilder) SetProxyUsername(username string) {
	b.proxy().Username = username
}

func (b *ScanInvocationBuilder) SetProxyPassword(password string) {
	b.proxy().Password = password
}

func (b *ScanInvocationBuilder) SetNoProxyHosts(patterns []*regexp.Regexp) {
	hosts := make([]*regexp.Regexp, len(patterns))
	copy(hosts, patterns)
	b.proxy().NoProxyHosts = hosts
}

func (b *ScanInvocationBuilder) effectiveScanMemory() int {
	if b.config.ScanMemory <= 0 {
		return DefaultScanMemory
	}
	return b.config.ScanMemory
}

// SetupAndRunScan resolves the CLI and java, builds the command and runs it.
//
// Missing or invalid local files are logged and reported as ResultFailure
// with a nil error. Errors from the Executor, including the context being
// cancelled, are returned unmodified.
func (b *ScanInvocationBuilder) SetupAndRunScan(ctx context.Context, cliInstallDir string, javaHome string) (Result, error) {
	start := time.Now()
	paths, err := resolvePaths(cliInstallDir, javaHome)
	if err != nil {
		return b.setupFailed(err), nil
	}

	if b.config.ScanMemory <= 0 {
		b.logger.Warn(fmt.Sprintf("%s%d", messageNoMemorySet, DefaultScanMemory))
	}
	if !isBlank(b.config.StatusDirectory) && !b.support.HasCapability(hub.CapabilityCLIStatusDirectoryOption) {
		b.logger.Warn(messageNoStatusDirOption + b.config.StatusDirectory)
	}

	logDir, err := b.createLogDirectory()
	if err != nil {
		return b.setupFailed(err), nil
	}

	cmd := b.BuildCommand(paths, logDir)
	recordStageDuration("setup", time.Now().Sub(start))
	b.logger.Info(fmt.Sprintf("Hub CLI command : %s", strings.Join(maskedCommand(cmd), " ")))

	scanStart := time.Now()
	result, err := b.executor.Execute(ctx, cmd, logDir)
	recordStageDuration("scan client", time.Now().Sub(scanStart))
	if err != nil {
		recordExecutionError(err)
		return result, err
	}
	if !result.isValid() {
		err = &IntegrationError{Code: IntegrationErrorTypeScanClientDidNotFinish, RootCause: fmt.Errorf("executor returned an invalid result %d", int(result))}
		recordExecutionError(err)
		return ResultFailure, err
	}
	recordScanResult(result)
	return result, nil
}

func (b *ScanInvocationBuilder) setupFailed(err error) Result {
	b.logger.Error(err.Error())
	stage := "unknown"
	if se, ok := err.(*setupError); ok {
		stage = se.stage
		if se.cause != nil {
			b.logger.Error(fmt.Sprintf("caused by: %s", se.cause.Error()))
		}
	}
	recordSetupFailure(stage)
	recordScanResult(ResultFailure)
	return ResultFailure
}

func (b *ScanInvocationBuilder) createLogDirectory() (string, error) {
	workingDir := b.config.WorkingDirectory
	if isBlank(workingDir) {
		workingDir = os.TempDir()
	}
	name := fmt.Sprintf("%s_%s", b.now().Format("2006-01-02_15-04-05"), uuid.New().String())
	logDir := filepath.Join(workingDir, logDirectoryName, name)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", &setupError{stage: "log directory", message: messageNoLogDirectory + logDir, cause: err}
	}
	return logDir, nil
}
