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
	"os"
	"os/exec"
	"path/filepath"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

const (
	cliOutputFileName = "CLI_Output.txt"
)

// Executor runs an assembled scan CLI command. Implementations must stop the
// process when ctx is done and return ctx.Err().
type Executor interface {
	Execute(ctx context.Context, command []string, logDirectory string) (Result, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, command []string, logDirectory string) (Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, command []string, logDirectory string) (Result, error) {
	return f(ctx, command, logDirectory)
}

// ProcessExecutor runs the scan CLI as a child process, writing its combined
// output to CLI_Output.txt in the log directory.
type ProcessExecutor struct {
	env []string
}

// NewProcessExecutor ...
func NewProcessExecutor() *ProcessExecutor {
	return &ProcessExecutor{env: []string{}}
}

// SetEnv adds a KEY=value pair to the child's environment, on top of the
// current process environment.
func (pe *ProcessExecutor) SetEnv(key string, value string) {
	pe.env = append(pe.env, key+"="+value)
}

func (pe *ProcessExecutor) Execute(ctx context.Context, command []string, logDirectory string) (Result, error) {
	if len(command) == 0 {
		return ResultFailure, &IntegrationError{Code: IntegrationErrorTypeUnableToStartScanClient, RootCause: errors.New("empty command")}
	}
	outputPath := filepath.Join(logDirectory, cliOutputFileName)
	output, err := os.Create(outputPath)
	if err != nil {
		return ResultFailure, &IntegrationError{Code: IntegrationErrorTypeUnableToCreateLogFile, RootCause: errors.Annotatef(err, "creating %s", outputPath)}
	}
	defer output.Close()

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.Env = append(os.Environ(), pe.env...)

	log.Infof("starting scan client %s, output in %s", command[0], outputPath)
	if err = cmd.Start(); err != nil {
		log.Errorf("unable to start scan client: %s", err.Error())
		return ResultFailure, &IntegrationError{Code: IntegrationErrorTypeUnableToStartScanClient, RootCause: errors.Trace(err)}
	}
	err = cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Warnf("scan client %s stopped: %s", command[0], ctxErr.Error())
		return ResultFailure, ctxErr
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			log.Errorf("scan client exited with code %d, see %s", exitErr.ExitCode(), outputPath)
			return ResultFailure, nil
		}
		return ResultFailure, &IntegrationError{Code: IntegrationErrorTypeScanClientDidNotFinish, RootCause: errors.Trace(err)}
	}
	log.Infof("successfully completed scan client, output in %s", outputPath)
	return ResultSuccess, nil
}
