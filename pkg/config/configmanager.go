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
	"strings"

	fsnotify "github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	envPrefix = "HUBSCAN"
)

var envKeys = []string{
	"Hub.URL",
	"Hub.User",
	"Hub.Password",
	"Hub.PasswordEnvVar",
	"Hub.TimeoutSeconds",

	"Scan.Targets",
	"Scan.BuildIdentifier",
	"Scan.Memory",
	"Scan.WorkingDirectory",
	"Scan.StatusDirectory",

	"Proxy.Host",
	"Proxy.Port",
	"Proxy.User",
	"Proxy.Password",
	"Proxy.NoProxyHosts",

	"CLI.InstallDir",
	"CLI.JavaHome",
	"CLI.Download",

	"LogLevel",
}

// ConfigManager handles:
//   - getting initial config
//   - reporting ongoing changes to config
type ConfigManager struct {
	ConfigPath string
	viper      *viper.Viper
}

// NewConfigManager reads from configPath when it is set, and from HUBSCAN_*
// environment variables either way; the environment overrides the file.
func NewConfigManager(configPath string) *ConfigManager {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		v.BindEnv(key)
	}
	v.AutomaticEnv()

	v.SetDefault("LogLevel", "info")
	v.SetDefault("Hub.TimeoutSeconds", 120)

	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	return &ConfigManager{ConfigPath: configPath, viper: v}
}

// GetConfig returns a configuration object to configure a scan
func (cm *ConfigManager) GetConfig() (*Config, error) {
	var config *Config

	if cm.ConfigPath != "" {
		err := cm.viper.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	}

	err := cm.viper.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}
	if config == nil {
		config = &Config{}
	}
	if config.Hub == nil {
		config.Hub = &HubConfig{}
	}
	if config.Scan == nil {
		config.Scan = &ScanConfig{}
	}
	if config.CLI == nil {
		config.CLI = &CLIConfig{}
	}

	return config, nil
}

// StartWatch will call `continuation` whenever the config file changes
func (cm *ConfigManager) StartWatch(continuation func(*Config, error)) {
	if cm.ConfigPath == "" {
		log.Debugf("no config file, not watching for changes")
		return
	}
	cm.viper.OnConfigChange(func(event fsnotify.Event) {
		log.Infof("config change detected: %+v", event)
		continuation(cm.GetConfig())
	})
	cm.viper.WatchConfig()
}
