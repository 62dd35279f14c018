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
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

// CLIDownloader fetches the scan CLI distributable from a Hub and unpacks it.
type CLIDownloader struct {
	client RawClientInterface
	goos   string
}

// NewCLIDownloader downloads the archive matching the current platform.
func NewCLIDownloader(client *Client) *CLIDownloader {
	return &CLIDownloader{client: client.client, goos: runtime.GOOS}
}

func (d *CLIDownloader) archiveName() string {
	switch d.goos {
	case "darwin":
		return "scan.cli-macosx.zip"
	case "windows":
		return "scan.cli-windows.zip"
	default:
		return "scan.cli.zip"
	}
}

func (d *CLIDownloader) download(path string) error {
	switch d.goos {
	case "darwin":
		return d.client.DownloadScanClientMac(path)
	case "windows":
		return d.client.DownloadScanClientWindows(path)
	default:
		return d.client.DownloadScanClientLinux(path)
	}
}

// Download writes the scan CLI into destDir and returns destDir, ready to be
// used as a CLI install directory.
func (d *CLIDownloader) Download(destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", errors.Annotatef(err, "unable to create %s", destDir)
	}
	archivePath := filepath.Join(destDir, d.archiveName())
	log.Infof("downloading scan CLI from %s to %s", d.client.BaseURL(), archivePath)
	start := time.Now()
	err := d.download(archivePath)
	recordHubResponse("downloadScanClient", err == nil)
	recordHubResponseTime("downloadScanClient", time.Now().Sub(start))
	if err != nil {
		return "", errors.Annotate(err, "unable to download scan CLI")
	}
	defer os.Remove(archivePath)

	if err = extractZip(archivePath, destDir); err != nil {
		return "", errors.Annotatef(err, "unable to extract %s", archivePath)
	}
	log.Infof("scan CLI unpacked into %s", destDir)
	return destDir, nil
}

// extractZip refuses entries that would land outside destDir.
func extractZip(archivePath string, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Trace(err)
	}
	defer reader.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return errors.Trace(err)
	}
	for _, file := range reader.File {
		target := filepath.Join(root, filepath.FromSlash(file.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return errors.Errorf("illegal file path in archive: %s", file.Name)
		}
		if file.FileInfo().IsDir() {
			if err = os.MkdirAll(target, 0755); err != nil {
				return errors.Trace(err)
			}
			continue
		}
		if err = extractFile(file, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Trace(err)
	}
	source, err := file.Open()
	if err != nil {
		return errors.Trace(err)
	}
	defer source.Close()
	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_RDWR|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Trace(err)
	}
	defer out.Close()
	if _, err = io.Copy(out, source); err != nil {
		return errors.Annotatef(err, "writing %s", target)
	}
	return nil
}
