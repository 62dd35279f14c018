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

package logging

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// MetricsHook counts logrus entries by level.
type MetricsHook struct {
	vec *prometheus.CounterVec
}

// NewMetricsHook ...
func NewMetricsHook(vec *prometheus.CounterVec) *MetricsHook {
	return &MetricsHook{vec: vec}
}

func (hook *MetricsHook) Levels() []log.Level {
	return log.AllLevels
}

func (hook *MetricsHook) Fire(entry *log.Entry) error {
	hook.vec.WithLabelValues(entry.Level.String()).Inc()
	return nil
}

var (
	installOnce sync.Once
	logLines    = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hubscan",
			Subsystem: "log",
			Name:      "lines",
			Help:      "counts logrus calls by level",
		},
		[]string{"level"})
)

// InstallMetricsHook registers the hubscan_log_lines counter and attaches
// it to the standard logrus logger. Later calls do nothing.
func InstallMetricsHook() {
	installOnce.Do(func() {
		prometheus.MustRegister(logLines)
		log.AddHook(NewMetricsHook(logLines))
		log.Debugf("log metrics hook installed")
	})
}
