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

// Package envelope wraps sealed message body with metadata for channels that can't carry
// content type and headers natively. Envelopes are serialized with MessagePack.
package envelope

//go:generate msgp -tests=false -io=false -file envelope.go -o envelope_msgp.go

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTrailingData returned by Decode when data has bytes after the envelope
var ErrTrailingData = errors.New("unexpected data after envelope")

// Envelope holds token with metadata passed to Channel.Publish
type Envelope struct {
	ID          string            `msg:"id"`
	ContentType string            `msg:"content_type"`
	Headers     map[string]string `msg:"headers"`
	CreatedAt   int64             `msg:"created_at"`
	Body        []byte            `msg:"body"`
}

// New returns envelope with random ID and current time
func New(body []byte, contentType string, headers map[string]string) *Envelope {
	return &Envelope{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Headers:     headers,
		CreatedAt:   time.Now().Unix(),
		Body:        body,
	}
}

// Time returns CreatedAt as time.Time
func (e *Envelope) Time() time.Time {
	return time.Unix(e.CreatedAt, 0)
}

// Encode serializes envelope to MessagePack
func (e *Envelope) Encode() ([]byte, error) {
	return e.MarshalMsg(nil)
}

// Decode parses MessagePack serialized envelope
func Decode(data []byte) (*Envelope, error) {
	e := &Envelope{}
	rest, err := e.UnmarshalMsg(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ErrTrailingData
	}
	return e, nil
}
