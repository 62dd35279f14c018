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

package hub

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/juju/errors"
)

// Capability is a Hub feature that only exists from some server version on.
type Capability int

const (
	CapabilityCLIStatusDirectoryOption Capability = iota
	CapabilityPolicyAPI
	CapabilityJREProvided
	CapabilityCLIPasswordEnvironmentVariable
)

func (c Capability) String() string {
	switch c {
	case CapabilityCLIStatusDirectoryOption:
		return "CLI_STATUS_DIRECTORY_OPTION"
	case CapabilityPolicyAPI:
		return "POLICY_API"
	case CapabilityJREProvided:
		return "JRE_PROVIDED"
	case CapabilityCLIPasswordEnvironmentVariable:
		return "CLI_PASSWORD_ENVIRONMENT_VARIABLE"
	}
	panic(fmt.Errorf("invalid Capability value: %d", c))
}

var capabilityMinimumVersions = map[Capability]*semver.Version{
	CapabilityCLIStatusDirectoryOption:       semver.MustParse("2.2.0"),
	CapabilityPolicyAPI:                      semver.MustParse("2.2.0"),
	CapabilityJREProvided:                    semver.MustParse("3.0.0"),
	CapabilityCLIPasswordEnvironmentVariable: semver.MustParse("3.0.0"),
}

// VersionProvider reports the version string of a Hub server.
type VersionProvider interface {
	HubVersion() (string, error)
}

// Logger is the subset of a logger the support check writes to.
type Logger interface {
	Info(message string)
	Error(message string)
}

// SupportHelper records which capabilities a Hub has. It must be checked
// with CheckHubSupport once before it is handed to a scan builder.
type SupportHelper struct {
	mutex        sync.RWMutex
	checked      bool
	hubVersion   string
	capabilities map[Capability]bool
}

// NewSupportHelper returns an unchecked SupportHelper.
func NewSupportHelper() *SupportHelper {
	return &SupportHelper{capabilities: map[Capability]bool{}}
}

// CheckHubSupport asks provider for the Hub version and records every
// capability it satisfies. logger may be nil.
func (sh *SupportHelper) CheckHubSupport(provider VersionProvider, logger Logger) error {
	if provider == nil {
		return errors.New("no Hub version provider")
	}
	rawVersion, err := provider.HubVersion()
	if err != nil {
		if logger != nil {
			logger.Error(fmt.Sprintf("Could not get the Hub version : %s", err.Error()))
		}
		return errors.Annotate(err, "unable to check Hub support")
	}
	version, err := parseHubVersion(rawVersion)
	if err != nil {
		if logger != nil {
			logger.Error(fmt.Sprintf("Could not parse the Hub version : %s", rawVersion))
		}
		return errors.Annotatef(err, "unable to parse Hub version %s", rawVersion)
	}

	capabilities := map[Capability]bool{}
	for capability, minimum := range capabilityMinimumVersions {
		capabilities[capability] = !version.LessThan(minimum)
	}

	sh.mutex.Lock()
	sh.hubVersion = rawVersion
	sh.capabilities = capabilities
	sh.checked = true
	sh.mutex.Unlock()

	if logger != nil {
		logger.Info(fmt.Sprintf("Hub version : %s", rawVersion))
	}
	return nil
}

// parseHubVersion ignores pre-release and build suffixes, so 3.0.0-SNAPSHOT
// has the capabilities of 3.0.0.
func parseHubVersion(rawVersion string) (*semver.Version, error) {
	version, err := semver.NewVersion(strings.TrimSpace(rawVersion))
	if err != nil {
		return nil, err
	}
	return semver.New(version.Major(), version.Minor(), version.Patch(), "", ""), nil
}

// HasBeenChecked is false until CheckHubSupport succeeds. A nil
// SupportHelper has never been checked.
func (sh *SupportHelper) HasBeenChecked() bool {
	if sh == nil {
		return false
	}
	sh.mutex.RLock()
	defer sh.mutex.RUnlock()
	return sh.checked
}

// HasCapability ...
func (sh *SupportHelper) HasCapability(capability Capability) bool {
	if sh == nil {
		return false
	}
	sh.mutex.RLock()
	defer sh.mutex.RUnlock()
	return sh.capabilities[capability]
}

// HubVersion returns the version seen by the last successful check.
func (sh *SupportHelper) HubVersion() string {
	if sh == nil {
		return ""
	}
	sh.mutex.RLock()
	defer sh.mutex.RUnlock()
	return sh.hubVersion
}
