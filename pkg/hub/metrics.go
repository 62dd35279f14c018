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
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var hubResponse *prometheus.CounterVec
var hubResponseTime *prometheus.HistogramVec

func recordHubResponse(name string, isSuccessful bool) {
	isSuccessString := fmt.Sprintf("%t", isSuccessful)
	hubResponse.With(prometheus.Labels{"name": name, "isSuccess": isSuccessString}).Inc()
}

func recordHubResponseTime(name string, duration time.Duration) {
	milliseconds := float64(duration / time.Millisecond)
	hubResponseTime.With(prometheus.Labels{"name": name}).Observe(milliseconds)
}

func init() {
	hubResponse = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "hubscan",
		Subsystem:   "hub",
		Name:        "http_hub_requests",
		Help:        "names and outcomes of HTTP requests issued to the hub",
		ConstLabels: map[string]string{},
	}, []string{"name", "isSuccess"})
	prometheus.MustRegister(hubResponse)

	hubResponseTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hubscan",
		Subsystem: "hub",
		Name:      "hub_response_time",
		Help:      "tracks the response times of Hub requests in milliseconds",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 20),
	}, []string{"name"})
	prometheus.MustRegister(hubResponseTime)
}
