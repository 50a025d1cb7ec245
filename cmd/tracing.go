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

	"contrib.go.opencensus.io/exporter/jaeger"
	"github.com/cossacklabs/privatepublisher/logging"
	log "github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// TracingOptions keep command-line options related to trace exporters
type TracingOptions struct {
	ToLog    bool
	ToJaeger bool
	Jaeger   jaeger.Options
}

// RegisterTracingCmdParameters register cli parameters with flag for tracing
func (options *TracingOptions) RegisterTracingCmdParameters(flags *flag.FlagSet) {
	flags.BoolVar(&options.ToLog, "tracing_log_enable", false, "Export trace data to log")
	flags.BoolVar(&options.ToJaeger, "tracing_jaeger_enable", false, "Export trace data to jaeger")
	RegisterJaegerCmdParameters(flags, &options.Jaeger)
}

// Validate returns error if jaeger export turned on without endpoints
func (options *TracingOptions) Validate() error {
	if options.ToJaeger {
		return ValidateJaegerCmdParameters(options.Jaeger)
	}
	return nil
}

// SetupTracing registers exporters turned on by options. Returned function flushes buffered spans
// and must be called before exit.
func SetupTracing(serviceName string, options *TracingOptions) (func(), error) {
	flush := func() {}
	if !options.ToLog && !options.ToJaeger {
		return flush, nil
	}
	if err := options.Validate(); err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorJaegerInvalidParameters).WithError(err).Errorln("Invalid jaeger parameters")
		return nil, err
	}
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	if options.ToLog {
		trace.RegisterExporter(&logging.LogSpanExporter{Logger: log.WithField(logging.FieldKeyServiceName, serviceName)})
	}
	if options.ToJaeger {
		jaegerOptions := options.Jaeger
		jaegerOptions.ServiceName = serviceName
		exporter, err := jaeger.NewExporter(jaegerOptions)
		if err != nil {
			log.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorJaegerExporter).Errorln("Failed to create the Jaeger exporter")
			return nil, err
		}
		trace.RegisterExporter(exporter)
		flush = exporter.Flush
	}
	return flush, nil
}
