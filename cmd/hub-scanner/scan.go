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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackducksoftware/hubscan/pkg/config"
	"github.com/blackducksoftware/hubscan/pkg/hub"
	"github.com/blackducksoftware/hubscan/pkg/scanner"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	passwordEnvironmentVariable = "BD_HUB_PASSWORD"
)

type scanOptions struct {
	cliDir      string
	javaHome    string
	downloadCLI bool
	memory      int
	buildID     string
	metricsFile string
}

func newScanCommand() *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan [targets...]",
		Short: "Validate the configuration, locate the scan CLI and java, and run a scan",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			logLevel, _ := cmd.Flags().GetString("log-level")
			manager := config.NewConfigManager(configPath)
			cfg, err := manager.GetConfig()
			if err != nil {
				return err
			}
			manager.StartWatch(func(changed *config.Config, err error) {
				if err != nil {
					log.Errorf("unable to reload config %s: %s", configPath, err.Error())
					return
				}
				log.Warnf("config %s changed during a scan; the change applies to the next run", configPath)
			})
			applyOverrides(cfg, cmd.Flags(), opts, logLevel, args)

			level, err := cfg.GetLogLevel()
			if err != nil {
				return errors.Annotatef(err, "invalid log level %s", cfg.LogLevel)
			}
			log.SetLevel(level)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := runScan(ctx, cfg)
			if opts.metricsFile != "" {
				if werr := prometheus.WriteToTextfile(opts.metricsFile, prometheus.DefaultGatherer); werr != nil {
					log.Errorf("unable to write metrics to %s: %s", opts.metricsFile, werr.Error())
				}
			}
			if err != nil {
				return err
			}
			if result != scanner.ResultSuccess {
				return fmt.Errorf("scan finished with result %s", result.String())
			}
			log.Infof("scan finished with result %s", result.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.cliDir, "cli-dir", "", "scan CLI install directory (overrides CLI.InstallDir)")
	cmd.Flags().StringVar(&opts.javaHome, "java-home", "", "java home directory (overrides CLI.JavaHome)")
	cmd.Flags().BoolVar(&opts.downloadCLI, "download-cli", false, "download the scan CLI from the Hub into --cli-dir first")
	cmd.Flags().IntVar(&opts.memory, "memory", 0, "scan CLI heap in MB (overrides Scan.Memory)")
	cmd.Flags().StringVar(&opts.buildID, "build-id", "", "build identifier (overrides Scan.BuildIdentifier)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write prometheus metrics to this file when done")
	return cmd
}

// applyOverrides lets explicitly set flags and positional targets win over
// the config file and environment.
func applyOverrides(cfg *config.Config, flags *pflag.FlagSet, opts *scanOptions, logLevel string, targets []string) {
	if flags.Changed("cli-dir") {
		cfg.CLI.InstallDir = opts.cliDir
	}
	if flags.Changed("java-home") {
		cfg.CLI.JavaHome = opts.javaHome
	}
	if flags.Changed("download-cli") {
		cfg.CLI.Download = opts.downloadCLI
	}
	if flags.Changed("memory") {
		cfg.Scan.Memory = opts.memory
	}
	if flags.Changed("build-id") {
		cfg.Scan.BuildIdentifier = opts.buildID
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if len(targets) > 0 {
		cfg.Scan.Targets = targets
	}
}

func runScan(ctx context.Context, cfg *config.Config) (scanner.Result, error) {
	scanConfig, err := cfg.ScanConfiguration()
	if err != nil {
		return scanner.ResultFailure, err
	}
	if err = scanner.CheckConfiguration(scanConfig); err != nil {
		return scanner.ResultFailure, err
	}

	client, err := hub.NewClient(scanConfig.HubURL, scanConfig.Username, scanConfig.Password, cfg.Hub.Timeout())
	if err != nil {
		return scanner.ResultFailure, err
	}
	if err = client.Login(); err != nil {
		return scanner.ResultFailure, errors.Annotatef(err, "unable to log in to %s", scanConfig.HubURL)
	}

	support := hub.NewSupportHelper()
	if err = support.CheckHubSupport(client, scanner.NewLogrusLogger("support")); err != nil {
		return scanner.ResultFailure, err
	}

	cliDir := cfg.CLI.InstallDir
	if cfg.CLI.Download {
		cliDir, err = hub.NewCLIDownloader(client).Download(cliDir)
		if err != nil {
			return scanner.ResultFailure, err
		}
	}

	executor := scanner.NewProcessExecutor()
	if support.HasCapability(hub.CapabilityCLIPasswordEnvironmentVariable) {
		executor.SetEnv(passwordEnvironmentVariable, scanConfig.Password)
	}

	builder, err := scanner.NewScanInvocationBuilder(scanConfig, support, executor)
	if err != nil {
		return scanner.ResultFailure, err
	}
	builder.SetLogger(scanner.NewLogrusLogger("scanner"))
	return builder.SetupAndRunScan(ctx, cliDir, cfg.CLI.JavaHome)
}
