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
	"io"
	"net/http"
	"testing"

	"github.com/cossacklabs/privatepublisher/utils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceNameToLabelFormat(t *testing.T) {
	assert.Equal(t, "privatepublisher", serviceNameToLabelFormat(ServiceName))
	assert.Equal(t, "privatepublisher", serviceNameToLabelFormat("Private-Publisher"))
}

func TestListenInvalidConnectionString(t *testing.T) {
	_, err := Listen("tcp://127.0.0.1:invalid")
	assert.Error(t, err)
	_, err = Listen("unknown://127.0.0.1:9399")
	assert.Error(t, err)
}

func TestRunPrometheusHTTPHandler(t *testing.T) {
	version, err := utils.ParseVersion("1.2.3")
	require.NoError(t, err)
	RegisterVersionMetrics(ServiceName, version)
	RegisterBuildInfoMetrics(ServiceName, version)
	// repeated registration is ignored
	RegisterBuildInfoMetrics(ServiceName, version)
	assert.Equal(t, float64(1), testutil.ToFloat64(buildInfoCounter.WithLabelValues("1.2.3")))
	assert.Equal(t, float64(2), testutil.ToFloat64(minorVersionGauge))

	listener, server, err := RunPrometheusHTTPHandler("tcp://127.0.0.1:0")
	require.NoError(t, err)
	defer StopPrometheusHTTPHandler(server)

	response, err := http.Get("http://" + listener.Addr().String() + "/metrics")
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)
	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "privatepublisher_version_major 1")
	assert.Contains(t, string(body), `privatepublisher_build_info{version="1.2.3"} 1`)
}
