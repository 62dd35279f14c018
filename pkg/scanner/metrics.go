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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var scanResults *prometheus.CounterVec
var setupFailures *prometheus.CounterVec
var executionErrors *prometheus.CounterVec
var durations *prometheus.HistogramVec

func recordScanResult(result Result) {
	scanResults.With(prometheus.Labels{"result": result.String()}).Inc()
}

func recordSetupFailure(stage string) {
	setupFailures.With(prometheus.Labels{"stage": stage}).Inc()
}

func recordExecutionError(err error) {
	errorName := "other"
	if ie, ok := err.(*IntegrationError); ok {
		errorName = ie.Code.String()
	} else if err == context.Canceled || err == context.DeadlineExceeded {
		errorName = err.Error()
	}
	executionErrors.With(prometheus.Labels{"errorName": errorName}).Inc()
}

func recordStageDuration(stage string, duration time.Duration) {
	durations.With(prometheus.Labels{"stage": stage}).Observe(duration.Seconds())
}

func init() {
	scanResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hubscan",
		Subsystem: "scanner",
		Name:      "scan_results",
		Help:      "results of scan CLI invocations",
	}, []string{"result"})
	prometheus.MustRegister(scanResults)

	setupFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hubscan",
		Subsystem: "scanner",
		Name:      "setup_failures",
		Help:      "scan setups that failed, by the stage that failed",
	}, []string{"stage"})
	prometheus.MustRegister(setupFailures)

	executionErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hubscan",
		Subsystem: "scanner",
		Name:      "execution_errors",
		Help:      "errors returned while launching or waiting on the scan CLI",
	}, []string{"errorName"})
	prometheus.MustRegister(executionErrors)

	durations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hubscan",
		Subsystem: "scanner",
		Name:      "timings",
		Help:      "time durations of scanner operations",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 20),
	}, []string{"stage"})
	prometheus.MustRegister(durations)
}
