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

// MockVersionProvider returns a fixed version, or a fixed error.
type MockVersionProvider struct {
	Version string
	Err     error
}

// HubVersion ...
func (mvp *MockVersionProvider) HubVersion() (string, error) {
	if mvp.Err != nil {
		return "", mvp.Err
	}
	return mvp.Version, nil
}

// NewCheckedSupportHelper is a test convenience: a SupportHelper already
// checked against the given version.
func NewCheckedSupportHelper(version string) (*SupportHelper, error) {
	helper := NewSupportHelper()
	if err := helper.CheckHubSupport(&MockVersionProvider{Version: version}, nil); err != nil {
		return nil, err
	}
	return helper, nil
}
