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
)

// ArgumentError reports a ScanConfiguration that can never be scanned.
// It is returned at construction time and should not be retried.
type ArgumentError struct {
	Message string
}

func (ae *ArgumentError) Error() string {
	return ae.Message
}

func newArgumentError(message string) *ArgumentError {
	return &ArgumentError{Message: message}
}

// IsArgumentError .....
func IsArgumentError(err error) bool {
	_, ok := err.(*ArgumentError)
	return ok
}

// IntegrationErrorType ...
type IntegrationErrorType int

const (
	IntegrationErrorTypeUnableToCreateLogFile IntegrationErrorType = iota
	IntegrationErrorTypeUnableToStartScanClient
	IntegrationErrorTypeScanClientDidNotFinish
)

func (et IntegrationErrorType) String() string {
	switch et {
	case IntegrationErrorTypeUnableToCreateLogFile:
		return "unable to create scan client log file"
	case IntegrationErrorTypeUnableToStartScanClient:
		return "unable to start scan client"
	case IntegrationErrorTypeScanClientDidNotFinish:
		return "scan client did not finish"
	}
	panic(fmt.Errorf("invalid IntegrationErrorType value: %d", et))
}

// IntegrationError is raised when the scan client process could not be
// launched or waited on. It is never used for a scan that ran and failed.
type IntegrationError struct {
	Code      IntegrationErrorType
	RootCause error
}

func (ie *IntegrationError) String() string {
	if ie.RootCause == nil {
		return ie.Code.String()
	}
	return fmt.Sprintf("%s: %s", ie.Code.String(), ie.RootCause.Error())
}

func (ie *IntegrationError) Error() string {
	return ie.String()
}

func (ie *IntegrationError) Unwrap() error {
	return ie.RootCause
}
