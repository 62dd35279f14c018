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
	"time"

	"github.com/blackducksoftware/hub-client-go/hubapi"
	"github.com/blackducksoftware/hub-client-go/hubclient"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

// RawClientInterface is the part of hubclient.Client used here.
type RawClientInterface interface {
	BaseURL() string
	Login(username string, password string) error
	CurrentVersion() (*hubapi.CurrentVersion, error)
	DownloadScanClientLinux(path string) error
	DownloadScanClientMac(path string) error
	DownloadScanClientWindows(path string) error
}

// Client logs in to a Hub and answers the version query.
type Client struct {
	client   RawClientInterface
	username string
	password string
}

// NewClient creates a session-based hub-client-go client. It does not log in.
func NewClient(baseURL string, username string, password string, timeout time.Duration) (*Client, error) {
	rawClient, err := hubclient.NewWithSession(baseURL, hubclient.HubClientDebugTimings, timeout)
	if err != nil {
		return nil, errors.Annotatef(err, "unable to create hub client for %s", baseURL)
	}
	return NewClientFromRawClient(rawClient, username, password), nil
}

// NewClientFromRawClient ...
func NewClientFromRawClient(rawClient RawClientInterface, username string, password string) *Client {
	return &Client{client: rawClient, username: username, password: password}
}

// Login ...
func (c *Client) Login() error {
	start := time.Now()
	err := c.client.Login(c.username, c.password)
	recordHubResponse("login", err == nil)
	recordHubResponseTime("login", time.Now().Sub(start))
	if err != nil {
		log.Errorf("unable to log in to hub %s: %s", c.client.BaseURL(), err.Error())
		return errors.Trace(err)
	}
	return nil
}

// HubVersion implements VersionProvider.
func (c *Client) HubVersion() (string, error) {
	start := time.Now()
	version, err := c.client.CurrentVersion()
	recordHubResponse("currentVersion", err == nil)
	recordHubResponseTime("currentVersion", time.Now().Sub(start))
	if err != nil {
		return "", errors.Annotate(err, "unable to fetch hub version")
	}
	if version == nil || version.Version == "" {
		return "", errors.Errorf("hub %s reported an empty version", c.client.BaseURL())
	}
	log.Debugf("hub %s is version %s", c.client.BaseURL(), version.Version)
	return version.Version, nil
}
