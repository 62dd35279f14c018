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
	"sync"

	log "github.com/sirupsen/logrus"
)

// Logger receives the human-readable diagnostics produced while setting up
// and running a scan.
type Logger interface {
	Info(message string)
	Warn(message string)
	Error(message string)
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (NoOpLogger) Info(message string)  {}
func (NoOpLogger) Warn(message string)  {}
func (NoOpLogger) Error(message string) {}

// LogrusLogger forwards to a logrus entry.
type LogrusLogger struct {
	entry *log.Entry
}

// NewLogrusLogger returns a Logger tagging every line with the given component.
func NewLogrusLogger(component string) *LogrusLogger {
	return &LogrusLogger{entry: log.WithField("component", component)}
}

func (ll *LogrusLogger) Info(message string) {
	ll.entry.Info(message)
}

func (ll *LogrusLogger) Warn(message string) {
	ll.entry.Warn(message)
}

func (ll *LogrusLogger) Error(message string) {
	ll.entry.Error(message)
}

// BufferLogger keeps every line in memory, so batch callers can report what
// went wrong with a target after moving on to the next one.
type BufferLogger struct {
	mutex sync.Mutex
	lines []string
}

// NewBufferLogger ...
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{lines: []string{}}
}

func (bl *BufferLogger) append(level string, message string) {
	bl.mutex.Lock()
	defer bl.mutex.Unlock()
	bl.lines = append(bl.lines, fmt.Sprintf("%s: %s", level, message))
}

func (bl *BufferLogger) Info(message string) {
	bl.append("INFO", message)
}

func (bl *BufferLogger) Warn(message string) {
	bl.append("WARN", message)
}

func (bl *BufferLogger) Error(message string) {
	bl.append("ERROR", message)
}

// Lines returns a copy of everything logged so far.
func (bl *BufferLogger) Lines() []string {
	bl.mutex.Lock()
	defer bl.mutex.Unlock()
	lines := make([]string, len(bl.lines))
	copy(lines, bl.lines)
	return lines
}

// OutputString joins all lines with newlines.
func (bl *BufferLogger) OutputString() string {
	return strings.Join(bl.Lines(), "\n")
}
