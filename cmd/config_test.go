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
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

type testConfig struct {
	flags    *flag.FlagSet
	host     string
	port     int
	debug    bool
	channel  string
	headers  stringList
	contents string
}

func newTestConfig(defaultConfigPath string) *testConfig {
	config := &testConfig{flags: flag.NewFlagSet("test", flag.ContinueOnError)}
	RegisterConfigParameters(config.flags, defaultConfigPath)
	config.flags.StringVar(&config.host, "redis_host_port", "", "redis host")
	config.flags.IntVar(&config.port, "port", 9399, "port")
	config.flags.BoolVar(&config.debug, "d", false, "debug")
	config.flags.StringVar(&config.channel, "redis_channel", "default", "channel")
	config.flags.Var(&config.headers, "header", "header")
	return config
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseConfigFile(t *testing.T) {
	path := writeConfig(t, `
redis_host_port: localhost:6379
port: 1234
d: true
redis_channel: from_config
header:
  - a=1
  - b=2
unknown_option: ignored
`)
	config := newTestConfig("")
	require.NoError(t, Parse(config.flags, []string{"--config", path, "--redis_channel", "from_cli", "positional"}))

	assert.Equal(t, "localhost:6379", config.host)
	assert.Equal(t, 1234, config.port)
	assert.True(t, config.debug)
	// cli has precedence over config
	assert.Equal(t, "from_cli", config.channel)
	assert.Equal(t, stringList{"a=1", "b=2"}, config.headers)
	assert.Equal(t, []string{"positional"}, config.flags.Args())
}

func TestParseDefaultConfig(t *testing.T) {
	path := writeConfig(t, "port: 4321\n")
	config := newTestConfig(path)
	require.NoError(t, Parse(config.flags, []string{}))
	assert.Equal(t, 4321, config.port)

	// missing default config is ignored
	config = newTestConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, Parse(config.flags, []string{}))
	assert.Equal(t, 9399, config.port)
}

func TestParseConfigErrors(t *testing.T) {
	config := newTestConfig("")
	err := Parse(config.flags, []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorIs(t, err, ErrConfigNotFound)

	config = newTestConfig("")
	err = Parse(config.flags, []string{"--config", writeConfig(t, "port: not_a_number\n")})
	assert.Error(t, err)

	config = newTestConfig("")
	err = Parse(config.flags, []string{"--config", writeConfig(t, "port: [\n")})
	assert.Error(t, err)

	config = newTestConfig("")
	err = Parse(config.flags, []string{"--unknown"})
	assert.Error(t, err)
}

func TestDumpConfig(t *testing.T) {
	config := newTestConfig("")
	require.NoError(t, Parse(config.flags, []string{"--redis_host_port", "localhost:6379", "--dumpconfig"}))
	assert.True(t, IsDumpConfigRequested(config.flags))

	path := filepath.Join(t.TempDir(), "configs", "dumped.yaml")
	require.NoError(t, DumpConfig(path, config.flags, false))

	loaded := newTestConfig("")
	require.NoError(t, Parse(loaded.flags, []string{"--config", path}))
	assert.Equal(t, "localhost:6379", loaded.host)
	assert.Equal(t, 9399, loaded.port)
	assert.Equal(t, "default", loaded.channel)
	assert.False(t, IsDumpConfigRequested(loaded.flags))

	output := &bytes.Buffer{}
	require.NoError(t, GenerateYaml(output, config.flags, true))
	assert.Contains(t, output.String(), "# redis host\nredis_host_port: \"\"\n")
	assert.NotContains(t, output.String(), "dumpconfig")
}

func TestPrintDefaults(t *testing.T) {
	config := newTestConfig("")
	output := &bytes.Buffer{}
	PrintDefaults(output, config.flags)
	assert.Contains(t, output.String(), "  --redis_channel string\n    \tchannel (default \"default\")")
	assert.Contains(t, output.String(), "  -d\tdebug")
}
