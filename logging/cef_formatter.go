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
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// CEF header pieces
const (
	cefPrefix  = "CEF:0"
	cefDivider = "|"
	cefVendor  = "cossacklabs"
)

// CEFFormatter renders entries as
// CEF:0|vendor|product|version|event code|message|severity|extension
// Default fields are used when the entry has no own value
type CEFFormatter struct {
	Fields logrus.Fields
}

// CEFTextFormatter returns CEFFormatter with product, version and extra fields
func CEFTextFormatter(fields logrus.Fields) logrus.Formatter {
	extended := logrus.Fields{}
	for k, v := range extraJSONFields {
		extended[k] = v
	}
	for k, v := range fields {
		extended[k] = v
	}
	return &CEFFormatter{Fields: extended}
}

func (f *CEFFormatter) value(entry *logrus.Entry, key string) interface{} {
	if value, ok := entry.Data[key]; ok {
		return value
	}
	return f.Fields[key]
}

// Format renders a single log entry
func (f *CEFFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}
	b.WriteString(cefPrefix)
	for _, piece := range []interface{}{
		cefVendor,
		f.value(entry, FieldKeyProduct),
		f.value(entry, FieldKeyVersion),
		f.value(entry, FieldKeyEventCode),
		entry.Message,
		severityByLevel(entry.Level),
	} {
		b.WriteString(cefDivider)
		writeCEFValue(b, piece)
	}
	b.WriteString(cefDivider)

	extension := logrus.Fields{FieldKeyUnixTime: unixTimeWithMilliseconds(entry.Time)}
	for k, v := range f.Fields {
		extension[k] = v
	}
	for k, v := range entry.Data {
		extension[k] = v
	}
	keys := make([]string, 0, len(extension))
	for k := range extension {
		switch k {
		case FieldKeyProduct, FieldKeyVersion, FieldKeyEventCode:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(escapeCEF(k))
		b.WriteByte('=')
		writeCEFValue(b, extension[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func writeCEFValue(b *bytes.Buffer, value interface{}) {
	if value == nil {
		b.WriteByte(' ')
		return
	}
	if err, ok := value.(error); ok {
		value = err.Error()
	}
	escaped := escapeCEF(fmt.Sprint(value))
	if escaped == "" {
		b.WriteByte(' ')
		return
	}
	b.WriteString(escaped)
}

var cefReplacer = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", `\`, `\\`, "|", `\|`, "=", `\=`)

func escapeCEF(value string) string {
	return cefReplacer.Replace(strings.TrimSpace(value))
}

func severityByLevel(level logrus.Level) int {
	switch level {
	case logrus.InfoLevel:
		return 1
	case logrus.WarnLevel:
		return 3
	case logrus.ErrorLevel:
		return 6
	case logrus.FatalLevel:
		return 8
	case logrus.PanicLevel:
		return 10
	}
	return 0
}
