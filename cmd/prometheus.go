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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	url_ "net/url"
	"strings"
	"sync"

	"github.com/cossacklabs/privatepublisher/logging"
	"github.com/cossacklabs/privatepublisher/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Listen returns listener for connection string like tcp://127.0.0.1:9399 or unix:///tmp/socket
func Listen(connectionString string) (net.Listener, error) {
	url, err := url_.Parse(connectionString)
	if err != nil {
		return nil, err
	}
	if url.Scheme == "unix" {
		return net.Listen(url.Scheme, url.Path)
	}
	return net.Listen(url.Scheme, url.Host)
}

// RunPrometheusHTTPHandler run in goroutine http server that process with connectionString address and export
// prometheus metrics
func RunPrometheusHTTPHandler(connectionString string) (net.Listener, *http.Server, error) {
	listener, err := Listen(connectionString)
	if err != nil {
		return nil, nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Handler: mux, ReadTimeout: DefaultNetworkTimeout, WriteTimeout: DefaultNetworkTimeout}
	go func() {
		log.WithField("connection_string", connectionString).Infoln("Start prometheus http handler")
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorPrometheusHTTPHandler).WithError(err).Errorln("Error from HTTP server that process prometheus metrics")
		}
	}()
	return listener, server, nil
}

// StopPrometheusHTTPHandler gracefully stops server started with RunPrometheusHTTPHandler
func StopPrometheusHTTPHandler(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultPrometheusHTTPShutdownDuration)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorPrometheusHTTPHandler).WithError(err).Warningln("Can't stop prometheus http handler")
	}
}

// serviceNameToLabelFormat convert service name to lower case and remove all '-'
// ex. private-publisher will be changed to privatepublisher
func serviceNameToLabelFormat(serviceName string) string {
	return strings.ToLower(strings.ReplaceAll(serviceName, "-", ""))
}

var (
	majorVersionGauge prometheus.Gauge
	minorVersionGauge prometheus.Gauge
	patchVersionGauge prometheus.Gauge
	buildInfoCounter  *prometheus.CounterVec
)

// BuildInfoVersionLabel label of build info metric with current version
const BuildInfoVersionLabel = "version"

var registerVersionMetricsLock = sync.Once{}

// RegisterVersionMetrics set and register metrics with current version value
func RegisterVersionMetrics(serviceName string, version *utils.Version) {
	registerVersionMetricsLock.Do(func() {
		labelServiceName := serviceNameToLabelFormat(serviceName)
		majorVersionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_version_major", labelServiceName),
			Help: "Major number of version",
		})
		minorVersionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_version_minor", labelServiceName),
			Help: "Minor number of version",
		})
		patchVersionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_version_patch", labelServiceName),
			Help: "Patch number of version",
		})
		prometheus.MustRegister(majorVersionGauge, minorVersionGauge, patchVersionGauge)
		majorVersionGauge.Set(float64(version.Major))
		minorVersionGauge.Set(float64(version.Minor))
		patchVersionGauge.Set(float64(version.Patch))
	})
}

var registerBuildInfoLock = sync.Once{}

// RegisterBuildInfoMetrics set and register metrics with build info
func RegisterBuildInfoMetrics(serviceName string, version *utils.Version) {
	registerBuildInfoLock.Do(func() {
		buildInfoCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_build_info", serviceNameToLabelFormat(serviceName)),
				Help: "Build info, incremented once on start",
			}, []string{BuildInfoVersionLabel})
		prometheus.MustRegister(buildInfoCounter)
		// increment on start only once
		buildInfoCounter.With(prometheus.Labels{BuildInfoVersionLabel: version.String()}).Inc()
	})
}
