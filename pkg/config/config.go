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

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/blackducksoftware/hubscan/pkg/scanner"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

// HubConfig configures the connection to the Hub
type HubConfig struct {
	URL            string
	User           string
	Password       string
	PasswordEnvVar string
	TimeoutSeconds int
}

// Timeout ...
func (hc *HubConfig) Timeout() time.Duration {
	return time.Duration(hc.TimeoutSeconds) * time.Second
}

// ScanConfig ...
type ScanConfig struct {
	Targets          []string
	BuildIdentifier  string
	Memory           int
	WorkingDirectory string
	StatusDirectory  string
}

// ProxyConfig ...
type ProxyConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	NoProxyHosts []string
}

// CLIConfig locates the scan CLI and the java runtime that runs it.
type CLIConfig struct {
	InstallDir string
	JavaHome   string
	Download   bool
}

// Config ...
type Config struct {
	Hub      *HubConfig
	Scan     *ScanConfig
	Proxy    *ProxyConfig
	CLI      *CLIConfig
	LogLevel string
}

// HubPassword returns Hub.Password, falling back to the environment variable
// named by Hub.PasswordEnvVar.
func (config *Config) HubPassword() (string, error) {
	if config.Hub == nil {
		return "", errors.New("no hub configuration")
	}
	if config.Hub.Password != "" {
		return config.Hub.Password, nil
	}
	if config.Hub.PasswordEnvVar == "" {
		return "", nil
	}
	password, ok := os.LookupEnv(config.Hub.PasswordEnvVar)
	if !ok {
		return "", fmt.Errorf("cannot find Hub password: environment variable %s not found", config.Hub.PasswordEnvVar)
	}
	return password, nil
}

// ScanConfiguration converts to the scan builder's input. Required fields
// are not checked here; the builder does that.
func (config *Config) ScanConfiguration() (scanner.ScanConfiguration, error) {
	scanConfig := scanner.ScanConfiguration{}
	if config.Hub != nil {
		password, err := config.HubPassword()
		if err != nil {
			return scanConfig, err
		}
		scanConfig.HubURL = config.Hub.URL
		scanConfig.Username = config.Hub.User
		scanConfig.Password = password
	}
	if config.Scan != nil {
		scanConfig.ScanTargets = config.Scan.Targets
		scanConfig.BuildIdentifier = config.Scan.BuildIdentifier
		scanConfig.ScanMemory = config.Scan.Memory
		scanConfig.WorkingDirectory = config.Scan.WorkingDirectory
		scanConfig.StatusDirectory = config.Scan.StatusDirectory
	}
	if config.Proxy != nil && config.Proxy.Host != "" {
		noProxyHosts := []*regexp.Regexp{}
		for _, pattern := range config.Proxy.NoProxyHosts {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return scanConfig, errors.Annotatef(err, "invalid no-proxy host pattern %s", pattern)
			}
			noProxyHosts = append(noProxyHosts, re)
		}
		scanConfig.Proxy = &scanner.ProxyInfo{
			Host:         config.Proxy.Host,
			Port:         config.Proxy.Port,
			Username:     config.Proxy.User,
			Password:     config.Proxy.Password,
			NoProxyHosts: noProxyHosts,
		}
	}
	return scanConfig, nil
}

// GetLogLevel .....
func (config *Config) GetLogLevel() (log.Level, error) {
	return log.ParseLevel(config.LogLevel)
}
