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
	"fmt"
	"strings"

	"github.com/blackducksoftware/hubscan/pkg/hub"
)

// commandInput is everything an argument group may read. It is built fresh
// for every assembly and never mutated by a group.
type commandInput struct {
	target *hubTarget
	config *ScanConfiguration
	paths  *ResolvedPaths
	logDir string
	memory int
	// statusDirSupported is true when the Hub accepts --statusWriteDir.
	statusDirSupported bool
}

// argumentGroup is a run of consecutive tokens appended only when guard
// holds. Group order is command order.
type argumentGroup struct {
	name  string
	guard func(in *commandInput) bool
	args  func(in *commandInput) []string
}

func always(in *commandInput) bool {
	return true
}

var argumentGroups = []argumentGroup{
	{
		name:  "java",
		guard: always,
		args: func(in *commandInput) []string {
			return []string{
				in.paths.JavaExecutable,
				"-Done-jar.silent=true",
				"-Done-jar.jar.path=" + in.paths.OneJarPath,
			}
		},
	},
	{
		name:  "proxy",
		guard: func(in *commandInput) bool { return in.config.Proxy.hasHost() },
		args:  proxyArguments,
	},
	{
		name:  "memory",
		guard: always,
		args: func(in *commandInput) []string {
			return []string{fmt.Sprintf("-Xmx%dm", in.memory)}
		},
	},
	{
		name:  "jar",
		guard: always,
		args: func(in *commandInput) []string {
			return []string{"-jar", in.paths.RunnerJar}
		},
	},
	{
		name:  "connection",
		guard: always,
		args: func(in *commandInput) []string {
			return []string{
				"--scheme", in.target.scheme,
				"--host", in.target.host,
				"--username", in.config.Username,
				"--password", in.config.Password,
				"--port", fmt.Sprintf("%d", in.target.port),
			}
		},
	},
	{
		name:  "log",
		guard: always,
		args: func(in *commandInput) []string {
			return []string{"--logDir", in.logDir}
		},
	},
	{
		name: "status",
		guard: func(in *commandInput) bool {
			return in.statusDirSupported && !isBlank(in.config.StatusDirectory)
		},
		args: func(in *commandInput) []string {
			return []string{"--statusWriteDir", in.config.StatusDirectory}
		},
	},
	{
		name:  "targets",
		guard: always,
		args: func(in *commandInput) []string {
			targets := make([]string, len(in.config.ScanTargets))
			copy(targets, in.config.ScanTargets)
			return targets
		},
	},
	{
		name:  "build identifier",
		guard: always,
		args: func(in *commandInput) []string {
			return []string{"--release", in.config.BuildIdentifier}
		},
	},
}

// proxyArguments uses the Hub's scheme for host, port and credentials.
// nonProxyHosts is always the http property: Java reads it for both schemes.
func proxyArguments(in *commandInput) []string {
	proxy := in.config.Proxy
	prefix := "-D" + in.target.scheme
	args := []string{
		prefix + ".proxyHost=" + proxy.Host,
		fmt.Sprintf("%s.proxyPort=%d", prefix, proxy.Port),
		"-Dhttp.nonProxyHosts=" + joinNoProxyHosts(proxy),
	}
	if proxy.hasCredentials() {
		args = append(args,
			prefix+".proxyUser="+proxy.Username,
			prefix+".proxyPassword="+proxy.Password)
	}
	return args
}

func joinNoProxyHosts(proxy *ProxyInfo) string {
	patterns := []string{}
	for _, pattern := range proxy.NoProxyHosts {
		if pattern != nil {
			patterns = append(patterns, pattern.String())
		}
	}
	return strings.Join(patterns, "|")
}

func assembleCommand(in *commandInput) []string {
	cmd := []string{}
	for _, group := range argumentGroups {
		if group.guard(in) {
			cmd = append(cmd, group.args(in)...)
		}
	}
	return cmd
}

// BuildCommand returns the scan CLI command line for already resolved paths.
// It does no I/O: the same inputs always give the same tokens.
func (b *ScanInvocationBuilder) BuildCommand(paths *ResolvedPaths, logDir string) []string {
	return assembleCommand(&commandInput{
		target:             b.target,
		config:             &b.config,
		paths:              paths,
		logDir:             logDir,
		memory:             b.effectiveScanMemory(),
		statusDirSupported: b.support.HasCapability(hub.CapabilityCLIStatusDirectoryOption),
	})
}

// maskedCommand replaces credentials so the command line can be logged.
func maskedCommand(cmd []string) []string {
	masked := make([]string, len(cmd))
	maskNext := false
	for i, token := range cmd {
		switch {
		case maskNext:
			masked[i] = "********"
			maskNext = false
		case token == "--password":
			masked[i] = token
			maskNext = true
		case strings.Contains(token, ".proxyPassword="):
			masked[i] = token[:strings.Index(token, "=")+1] + "********"
		default:
			masked[i] = token
		}
	}
	return masked
}
