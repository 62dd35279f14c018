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
	"regexp"

	"github.com/blackducksoftware/hubscan/pkg/hub"
)

const (
	// DefaultScanMemory is the heap size, in MB, given to the scan CLI when
	// none is configured.
	DefaultScanMemory = 4096
)

// ProxyInfo describes the proxy the scan CLI should use to reach the Hub.
type ProxyInfo struct {
	Host         string
	Port         int
	Username     string
	Password     string
	NoProxyHosts []*regexp.Regexp
}

func (pi *ProxyInfo) hasHost() bool {
	return pi != nil && !isBlank(pi.Host)
}

func (pi *ProxyInfo) hasCredentials() bool {
	return pi != nil && !isBlank(pi.Username) && !isBlank(pi.Password)
}

// ScanConfiguration is everything needed to invoke the scan CLI once.
type ScanConfiguration struct {
	HubURL          string
	Username        string
	Password        string
	ScanTargets     []string
	BuildIdentifier string
	// ScanMemory is in MB; 0 means DefaultScanMemory.
	ScanMemory int
	Proxy      *ProxyInfo
	// WorkingDirectory holds the HubScanLogs directory. Defaults to os.TempDir().
	WorkingDirectory string
	// StatusDirectory is passed as --statusWriteDir when the Hub supports it.
	StatusDirectory string
}

// SupportChecker is the read-only view of a Hub capability check that the
// builder needs. *hub.SupportHelper implements it.
type SupportChecker interface {
	HasBeenChecked() bool
	HasCapability(capability hub.Capability) bool
}
