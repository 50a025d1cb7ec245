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
	"fmt"
	"sync"
	"time"

	"github.com/cossacklabs/privatepublisher/utils"
	"github.com/sirupsen/logrus"
)

// TextFormatter returns a default logrus.TextFormatter with specific settings
func TextFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:    true,
		TimestampFormat:  time.RFC3339,
		QuoteEmptyFields: true}
}

// JSONFormatter returns a PublisherJSONFormatter with default extra fields added to fields
func JSONFormatter(fields logrus.Fields) logrus.Formatter {
	extended := logrus.Fields{}
	for k, v := range extraJSONFields {
		extended[k] = v
	}
	for k, v := range fields {
		extended[k] = v
	}
	return PublisherJSONFormatter{
		Formatter: &logrus.JSONFormatter{
			FieldMap:        JSONFieldMap,
			TimestampFormat: time.RFC3339,
		},
		Fields: extended,
	}
}

// Using a pool to re-use of old entries when formatting messages.
var entryPool = sync.Pool{
	New: func() interface{} {
		return &logrus.Entry{}
	},
}

// copyEntry copies the entry `e` to a new entry and then adds all the fields in `fields` that are missing in the new entry data.
// It uses `entryPool` to re-use allocated entries.
func copyEntry(e *logrus.Entry, fields logrus.Fields) *logrus.Entry {
	ne := entryPool.Get().(*logrus.Entry)
	ne.Message = e.Message
	ne.Level = e.Level
	ne.Time = e.Time
	ne.Data = logrus.Fields{}
	for k, v := range fields {
		ne.Data[k] = v
	}
	for k, v := range e.Data {
		ne.Data[k] = v
	}
	return ne
}

// releaseEntry puts the given entry back to `entryPool`. It must be called if copyEntry is called.
func releaseEntry(e *logrus.Entry) {
	entryPool.Put(e)
}

// PublisherJSONFormatter has logrus.Formatter which formats the entry and logrus.Fields which
// are added to the JSON message if not given in the entry data.
type PublisherJSONFormatter struct {
	logrus.Formatter
	logrus.Fields
}

var (
	extraJSONFields = logrus.Fields{
		FieldKeyProduct: "private-publisher",
		FieldKeyVersion: utils.VERSION,
	}

	// JSONFieldMap renames logrus default keys
	JSONFieldMap = logrus.FieldMap{
		logrus.FieldKeyTime:  "timestamp",
		logrus.FieldKeyMsg:   "msg",
		logrus.FieldKeyLevel: "level",
	}
)

// Format formats an entry to JSON according to the given Formatter and Fields.
//
// Note: the given entry is copied and not changed during the formatting process.
func (f PublisherJSONFormatter) Format(e *logrus.Entry) ([]byte, error) {
	fields := logrus.Fields{FieldKeyUnixTime: unixTimeWithMilliseconds(e.Time)}
	for k, v := range f.Fields {
		fields[k] = v
	}
	ne := copyEntry(e, fields)
	dataBytes, err := f.Formatter.Format(ne)
	releaseEntry(ne)
	return dataBytes, err
}

// TimeToString returns unix time with milliseconds precision
func TimeToString(t time.Time) string {
	return unixTimeWithMilliseconds(t)
}

func unixTimeWithMilliseconds(t time.Time) string {
	millis := t.UnixNano() / int64(time.Millisecond)
	return fmt.Sprintf("%.3f", float64(millis)/1000.0)
}
