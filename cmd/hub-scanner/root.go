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
	"github.com/spf13/cobra"
)

const cliExecutable = "hub-scanner"

// NewCommand builds the hub-scanner root command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           cliExecutable,
		Short:         "Runs the Hub scan CLI against local targets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "path to a config file, watched for changes that apply to the next run; HUBSCAN_* environment variables are read either way")
	cmd.PersistentFlags().String("log-level", "", "overrides LogLevel from the config")
	cmd.AddCommand(newScanCommand())
	return cmd
}
