/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cmd contains shared settings and helpers of private-publisher command line utilities:
// config parsing, metrics, tracing and exit handling.
package cmd

import "time"

// private-publisher defaults: service name, paths, connection strings.
const (
	ServiceName                           = "private-publisher"
	DefaultConfigPath                     = "configs/private-publisher.yaml"
	DefaultRedisChannel                   = "private-publisher"
	DefaultPrometheusConnectionString     = "tcp://127.0.0.1:9399"
	DefaultNetworkTimeout                 = time.Second * 60
	DefaultPrometheusHTTPShutdownDuration = time.Second * 5
)
