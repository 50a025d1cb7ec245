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
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/cossacklabs/privatepublisher/publisher"
)

// ErrInvalidHeader returned for header value without "="
var ErrInvalidHeader = errors.New("header must be in form name=value")

// headerList collects repeated --header name=value flags
type headerList struct {
	headers publisher.Headers
}

func (h *headerList) String() string {
	if h == nil || len(h.headers) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(h.headers))
	for name, value := range h.headers {
		pairs = append(pairs, name+"="+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// Set adds header, empty value comes from dumped config and is ignored
func (h *headerList) Set(value string) error {
	if value == "" {
		return nil
	}
	name, headerValue, ok := strings.Cut(value, "=")
	if !ok || name == "" {
		return ErrInvalidHeader
	}
	if h.headers == nil {
		h.headers = publisher.Headers{}
	}
	h.headers[name] = headerValue
	return nil
}

// Headers returns collected headers, nil if none were set
func (h *headerList) Headers() publisher.Headers {
	return h.headers
}

type uint32Value uint32

func newUint32Value(value uint32, p *uint32) *uint32Value {
	*p = value
	return (*uint32Value)(p)
}

func (v *uint32Value) Set(s string) error {
	parsed, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return err
	}
	*v = uint32Value(parsed)
	return nil
}

func (v *uint32Value) String() string {
	if v == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(*v), 10)
}
