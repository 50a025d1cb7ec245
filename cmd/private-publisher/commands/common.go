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

package commands

import (
	"flag"
	"io"
	"os"

	"github.com/cossacklabs/privatepublisher/cmd"
	"github.com/cossacklabs/privatepublisher/keystore/keyloader"
	"github.com/cossacklabs/privatepublisher/logging"
	"github.com/cossacklabs/privatepublisher/publisher"
	"github.com/cossacklabs/privatepublisher/token"
	"github.com/cossacklabs/privatepublisher/utils"
	log "github.com/sirupsen/logrus"
)

// CommonParameters are parameters shared by all subcommands
type CommonParameters struct {
	loggingFormat string
	debug         bool
	verbose       bool

	// overridden in tests, standard streams are used if nil
	inReader  io.Reader
	outWriter io.Writer
	errWriter io.Writer
}

// Register registers config, logging flags with flag set
func (p *CommonParameters) Register(flags *flag.FlagSet) {
	cmd.RegisterConfigParameters(flags, cmd.DefaultConfigPath)
	flags.StringVar(&p.loggingFormat, "logging_format", logging.PlaintextFormatString, "Logging format: plaintext or json")
	flags.BoolVar(&p.debug, "d", false, "Log everything to stderr")
	flags.BoolVar(&p.verbose, "v", false, "Log to stderr all INFO, WARNING and ERROR logs")
}

func (p *CommonParameters) input() io.Reader {
	if p.inReader != nil {
		return p.inReader
	}
	return os.Stdin
}

func (p *CommonParameters) output() io.Writer {
	if p.outWriter != nil {
		return p.outWriter
	}
	return os.Stdout
}

func (p *CommonParameters) errOutput() io.Writer {
	if p.errWriter != nil {
		return p.errWriter
	}
	return os.Stderr
}

// SetupLogging configures standard logger according to logging flags
func (p *CommonParameters) SetupLogging() {
	log.SetOutput(p.errOutput())
	logging.CreateFormatter(p.loggingFormat, cmd.ServiceName)
	switch {
	case p.debug:
		logging.SetLogLevel(logging.LogDebug)
	case p.verbose:
		logging.SetLogLevel(logging.LogVerbose)
	default:
		logging.SetLogLevel(logging.LogDiscard)
	}
}

// KeyParameters are parameters of subcommands that use key
type KeyParameters struct {
	keyOptions keyloader.CLIOptions
}

// Register registers key_env and key_file flags
func (p *KeyParameters) Register(flags *flag.FlagSet) {
	p.keyOptions.RegisterCLIParameters(flags, "", "")
}

func (p *KeyParameters) loadKey() (*token.Key, error) {
	loader, err := p.keyOptions.CreateKeyLoader()
	if err != nil {
		return nil, err
	}
	key, err := loader.LoadKey()
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantLoadKey).
			WithField("strategy", p.keyOptions.Strategy()).WithError(err).Errorln("Can't load key")
		return nil, err
	}
	return key, nil
}

func (p *KeyParameters) loadRawKey() ([]byte, error) {
	loader, err := p.keyOptions.CreateKeyLoader()
	if err != nil {
		return nil, err
	}
	raw, err := loader.LoadRawKey()
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantLoadKey).
			WithField("strategy", p.keyOptions.Strategy()).WithError(err).Errorln("Can't load key")
		return nil, err
	}
	return raw, nil
}

// secret tags loaded key. Only key file with exactly token.KeySize bytes holds a raw key,
// environment values and other files are base64 text
func (p *KeyParameters) secret(raw []byte) publisher.Secret {
	if p.keyOptions.Strategy() == keyloader.KeyLoadStrategyFile && len(raw) == token.KeySize {
		return publisher.SecretBytes(raw)
	}
	return publisher.SecretText(string(raw))
}

// ServiceParameters are parameters of long running subcommands which export metrics and traces
type ServiceParameters struct {
	prometheusConnectionString string
	tracing                    cmd.TracingOptions
}

// Register registers metrics and tracing flags
func (p *ServiceParameters) Register(flags *flag.FlagSet) {
	flags.StringVar(&p.prometheusConnectionString, "incoming_connection_prometheus_metrics_string", "", "URL (tcp://host:port) which will be used to expose Prometheus metrics (<URL>/metrics address to pull metrics)")
	p.tracing.RegisterTracingCmdParameters(flags)
}

// Start turns on trace exporters and prometheus handler if configured. Returned function stops them
func (p *ServiceParameters) Start() (func(), error) {
	flush, err := cmd.SetupTracing(cmd.ServiceName, &p.tracing)
	if err != nil {
		return nil, err
	}
	if p.prometheusConnectionString == "" {
		return flush, nil
	}
	publisher.RegisterMetrics()
	version, err := utils.GetParsedVersion()
	if err != nil {
		flush()
		return nil, err
	}
	cmd.RegisterVersionMetrics(cmd.ServiceName, version)
	cmd.RegisterBuildInfoMetrics(cmd.ServiceName, version)
	_, server, err := cmd.RunPrometheusHTTPHandler(p.prometheusConnectionString)
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorPrometheusHTTPHandler).WithError(err).Errorln("Can't start prometheus http handler")
		flush()
		return nil, err
	}
	return func() {
		cmd.StopPrometheusHTTPHandler(server)
		flush()
	}, nil
}

// parseFlags parses arguments with config and dumps config if it was requested
func parseFlags(flags *flag.FlagSet, arguments []string) error {
	if err := cmd.Parse(flags, arguments); err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantReadServiceConfig).WithError(err).Errorln("Can't parse args")
		return err
	}
	if cmd.IsDumpConfigRequested(flags) {
		configPath := flags.Lookup(cmd.ConfigFlagName).Value.String()
		if err := cmd.DumpConfig(configPath, flags, true); err != nil {
			log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantReadServiceConfig).WithError(err).Errorln("Can't dump config")
			return err
		}
		return ErrConfigDumped
	}
	return nil
}
