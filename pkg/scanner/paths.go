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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	runnerJarPattern = "scan.cli-*-standalone.jar"
	oneJarCacheDir   = "cache"
	oneJarFileName   = "scan.cli.impl-standalone.jar"
)

const (
	messageNoCLI             = "Please provide the Hub scan CLI."
	messageCLIDoesNotExist   = "The Hub scan CLI provided does not exist."
	messageNoCLICache        = "Please provide the path for the CLI cache."
	messageNoJavaHome        = "Please provide the java home directory."
	messageJavaDoesNotExist  = "The Java executable provided does not exist at : "
	messageNoMemorySet       = "No memory set for the HUB CLI. Will use the default memory, "
	messageNoLogDirectory    = "Could not create the log directory for the HUB CLI at : "
	messageNoStatusDirOption = "This Hub does not support the status directory option, ignoring : "
)

// ResolvedPaths are the local files a scan needs, found fresh for every
// invocation.
type ResolvedPaths struct {
	CLIInstallDir  string
	RunnerJar      string
	OneJarPath     string
	JavaHome       string
	JavaExecutable string
}

// setupError is a setup stage failure: it gets logged and turned into
// ResultFailure, never returned to the caller.
type setupError struct {
	stage   string
	message string
	cause   error
}

func (se *setupError) Error() string {
	return se.message
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func resolvePaths(cliInstallDir string, javaHome string) (*ResolvedPaths, error) {
	cliDir, err := resolveCLIInstallDir(cliInstallDir)
	if err != nil {
		return nil, err
	}
	runnerJar, err := findRunnerJar(cliDir)
	if err != nil {
		return nil, err
	}
	home, javaExec, err := resolveJavaExecutable(javaHome)
	if err != nil {
		return nil, err
	}
	return &ResolvedPaths{
		CLIInstallDir:  cliDir,
		RunnerJar:      runnerJar,
		OneJarPath:     resolveOneJarPath(runnerJar),
		JavaHome:       home,
		JavaExecutable: javaExec,
	}, nil
}

func resolveCLIInstallDir(cliInstallDir string) (string, error) {
	if isBlank(cliInstallDir) {
		return "", &setupError{stage: "cli", message: messageNoCLI}
	}
	path, err := filepath.Abs(cliInstallDir)
	if err != nil {
		return "", &setupError{stage: "cli", message: messageCLIDoesNotExist, cause: err}
	}
	if _, err = os.Stat(path); err != nil {
		return "", &setupError{stage: "cli", message: messageCLIDoesNotExist, cause: err}
	}
	// WalkDir does not follow a symlinked root
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", &setupError{stage: "cli", message: messageCLIDoesNotExist, cause: err}
	}
	return resolved, nil
}

// findRunnerJar requires exactly one runner jar under root; zero and
// several are the same failure.
func findRunnerJar(root string) (string, error) {
	matches := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root && errors.Is(err, fs.ErrPermission) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(runnerJarPattern, d.Name()); ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", &setupError{stage: "runner jar", message: messageNoCLICache, cause: err}
	}
	if len(matches) != 1 {
		return "", &setupError{
			stage:   "runner jar",
			message: messageNoCLICache,
			cause:   fmt.Errorf("expected 1 file matching %s under %s, found %d: %v", runnerJarPattern, root, len(matches), matches),
		}
	}
	return matches[0], nil
}

// resolveOneJarPath prefers the unpacked implementation jar in the CLI
// cache and falls back to the runner jar itself.
func resolveOneJarPath(runnerJar string) string {
	cached := filepath.Join(filepath.Dir(runnerJar), oneJarCacheDir, oneJarFileName)
	if info, err := os.Stat(cached); err == nil && !info.IsDir() {
		return cached
	}
	return runnerJar
}

func javaExecutableName() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

func resolveJavaExecutable(javaHome string) (string, string, error) {
	if isBlank(javaHome) {
		return "", "", &setupError{stage: "java home", message: messageNoJavaHome}
	}
	home, err := filepath.Abs(javaHome)
	if err != nil {
		home = javaHome
	}
	javaExec := filepath.Join(home, "bin", javaExecutableName())
	info, err := os.Stat(javaExec)
	if err != nil || info.IsDir() {
		return "", "", &setupError{stage: "java executable", message: messageJavaDoesNotExist + javaExec, cause: err}
	}
	return home, javaExec, nil
}
