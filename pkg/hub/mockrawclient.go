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
	"archive/zip"
	"fmt"
	"os"

	"github.com/blackducksoftware/hub-client-go/hubapi"
)

// MockRawClient is an in-memory stand-in for hubclient.Client.
type MockRawClient struct {
	IsLoggedIn bool
	ShouldFail bool
	Username   string
	Password   string
	Version    string
	// ScanClientFiles is the content of the zip served by the download calls.
	ScanClientFiles map[string]string
	Downloads       []string
}

// NewMockRawClient ...
func NewMockRawClient(shouldFail bool, version string) *MockRawClient {
	return &MockRawClient{
		IsLoggedIn:      false,
		ShouldFail:      shouldFail,
		Username:        "sysadmin",
		Password:        "blackduck",
		Version:         version,
		ScanClientFiles: map[string]string{},
		Downloads:       []string{},
	}
}

// BaseURL ...
func (mrc *MockRawClient) BaseURL() string {
	return "https://mock-hub"
}

// Login ...
func (mrc *MockRawClient) Login(username string, password string) error {
	if mrc.ShouldFail {
		return fmt.Errorf("unable to log in")
	}
	if username != mrc.Username || password != mrc.Password {
		return fmt.Errorf("got a 401 response instead of a 204")
	}
	mrc.IsLoggedIn = true
	return nil
}

// CurrentVersion requires a prior Login.
func (mrc *MockRawClient) CurrentVersion() (*hubapi.CurrentVersion, error) {
	if !mrc.IsLoggedIn {
		return nil, fmt.Errorf("not logged in")
	}
	if mrc.ShouldFail {
		return nil, fmt.Errorf("unable to fetch current version")
	}
	return &hubapi.CurrentVersion{
		Meta:    hubapi.Meta{},
		Version: mrc.Version,
	}, nil
}

// DownloadScanClientLinux ...
func (mrc *MockRawClient) DownloadScanClientLinux(path string) error {
	return mrc.downloadScanClient("linux", path)
}

// DownloadScanClientMac ...
func (mrc *MockRawClient) DownloadScanClientMac(path string) error {
	return mrc.downloadScanClient("mac", path)
}

// DownloadScanClientWindows ...
func (mrc *MockRawClient) DownloadScanClientWindows(path string) error {
	return mrc.downloadScanClient("windows", path)
}

func (mrc *MockRawClient) downloadScanClient(platform string, path string) error {
	if mrc.ShouldFail {
		return fmt.Errorf("GET failed: received status != 200")
	}
	mrc.Downloads = append(mrc.Downloads, platform)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	writer := zip.NewWriter(f)
	for name, content := range mrc.ScanClientFiles {
		w, err := writer.Create(name)
		if err != nil {
			return err
		}
		if _, err = w.Write([]byte(content)); err != nil {
			return err
		}
	}
	return writer.Close()
}
