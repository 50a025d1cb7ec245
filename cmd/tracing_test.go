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
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingOptions(t *testing.T) {
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	options := TracingOptions{}
	options.RegisterTracingCmdParameters(flags)

	require.NoError(t, flags.Parse([]string{"--tracing_jaeger_enable"}))
	assert.Equal(t, ErrInvalidJaegerExporterEndpoint, options.Validate())
	_, err := SetupTracing(ServiceName, &options)
	assert.Equal(t, ErrInvalidJaegerExporterEndpoint, err)

	require.NoError(t, flags.Parse([]string{"--jaeger_agent_endpoint", "localhost:6831"}))
	assert.NoError(t, options.Validate())
	assert.Equal(t, "localhost:6831", options.Jaeger.AgentEndpoint)
}

func TestSetupTracingDisabled(t *testing.T) {
	flush, err := SetupTracing(ServiceName, &TracingOptions{})
	require.NoError(t, err)
	assert.NotPanics(t, flush)
}
