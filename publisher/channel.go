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

// Package publisher seals messages into tokens and hands them to a Channel.
//
// EncryptedPublisher holds a Channel and never sees how delivery happens: it validates the shared
// secret, seals the message with the token codec and passes the token with unchanged content type
// and headers to Channel.Publish. Concrete channels live in subpackages (redis, outbox).
package publisher

import (
	"context"
)

// Headers are message headers passed through to the channel as is. Nil means no headers
type Headers map[string]string

//go:generate mockery --name Channel --output ./mocks --filename Channel.go

// Channel delivers already sealed message body somewhere
type Channel interface {
	Publish(ctx context.Context, body []byte, contentType string, headers Headers) error
}

// ChannelFunc allows to use ordinary function as Channel
type ChannelFunc func(ctx context.Context, body []byte, contentType string, headers Headers) error

// Publish calls f
func (f ChannelFunc) Publish(ctx context.Context, body []byte, contentType string, headers Headers) error {
	return f(ctx, body, contentType, headers)
}
