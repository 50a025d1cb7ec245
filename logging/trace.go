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

package logging

import (
	"context"
	"encoding/hex"
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// reZero provides a simple way to detect an empty ID
var reZero = regexp.MustCompile(`^0+$`)

// LogSpanExporter exporter for opencensus that print all spans with logger
type LogSpanExporter struct {
	Logger *log.Entry
}

// ExportSpan log the trace span
func (e *LogSpanExporter) ExportSpan(vd *trace.SpanData) {
	var (
		traceID      = hex.EncodeToString(vd.SpanContext.TraceID[:])
		spanID       = hex.EncodeToString(vd.SpanContext.SpanID[:])
		parentSpanID = hex.EncodeToString(vd.ParentSpanID[:])
	)
	logger := e.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	logger = logger.WithFields(log.Fields{
		"trace_id":  traceID,
		"span_id":   spanID,
		"span_name": vd.Name,
		"duration":  fmt.Sprintf("%.3fms", float64(vd.EndTime.Sub(vd.StartTime).Microseconds())/1000.0),
	})
	if vd.Status.Code != trace.StatusCodeOK {
		logger = logger.WithFields(log.Fields{"status_message": vd.Status.Message, "status_code": vd.Status.Code})
	}
	if !reZero.MatchString(parentSpanID) {
		logger = logger.WithField("parent_span_id", parentSpanID)
	}
	if len(vd.Attributes) > 0 {
		attributes := log.Fields{}
		for k, v := range vd.Attributes {
			attributes[k] = v
		}
		logger = logger.WithFields(attributes)
	}
	for _, item := range vd.Annotations {
		annotations := log.Fields{FieldKeyUnixTime: TimeToString(item.Time)}
		for k, v := range item.Attributes {
			annotations[k] = v
		}
		logger.WithFields(annotations).Infoln(item.Message)
	}
	logger.Infoln("span end")
}

// LoggerWithTrace return logger with added span_id/trace_id fields from context
func LoggerWithTrace(ctx context.Context, logger *log.Entry) *log.Entry {
	span := trace.FromContext(ctx)
	if span == nil {
		return logger
	}
	spanContext := span.SpanContext()
	return logger.WithFields(log.Fields{"span_id": spanContext.SpanID.String(), "trace_id": spanContext.TraceID.String()})
}
