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

package publisher

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/cossacklabs/privatepublisher/logging"
	"github.com/cossacklabs/privatepublisher/token"
	log "github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// Errors returned by publisher
var (
	ErrNilChannel = errors.New("nil channel")
	ErrNotUTF8    = errors.New("decrypted message is not valid UTF-8 text")
)

// EncryptedPublisher seals messages and forwards tokens to the Channel
type EncryptedPublisher struct {
	channel                Channel
	codec                  token.Sealer
	logger                 *log.Entry
	forwardEmptyOnKeyError bool
}

// Option configures EncryptedPublisher
type Option func(*EncryptedPublisher)

// WithCodec sets Sealer used instead of token.NewCodec()
func WithCodec(codec token.Sealer) Option {
	return func(p *EncryptedPublisher) {
		p.codec = codec
	}
}

// WithLogger sets logger used for warnings
func WithLogger(logger *log.Entry) Option {
	return func(p *EncryptedPublisher) {
		p.logger = logger
	}
}

// WithForwardEmptyOnKeyError enables compatibility mode for consumers that expect an empty message
// when sender's key is invalid. In this mode an invalid key doesn't stop publishing: empty body is
// forwarded to the channel and the channel's result is returned.
func WithForwardEmptyOnKeyError(enable bool) Option {
	return func(p *EncryptedPublisher) {
		p.forwardEmptyOnKeyError = enable
	}
}

// NewEncryptedPublisher returns publisher that forwards sealed messages to channel
func NewEncryptedPublisher(channel Channel, options ...Option) (*EncryptedPublisher, error) {
	if channel == nil {
		return nil, ErrNilChannel
	}
	p := &EncryptedPublisher{
		channel: channel,
		codec:   token.NewCodec(),
		logger:  log.NewEntry(log.StandardLogger()),
	}
	for _, option := range options {
		option(p)
	}
	return p, nil
}

// Publish seals message with secret and publishes the token with contentType and headers.
// Key errors are returned without touching the channel unless WithForwardEmptyOnKeyError was set.
// Channel errors are returned unchanged.
func (p *EncryptedPublisher) Publish(ctx context.Context, message Payload, contentType string, headers Headers, secret Secret) error {
	ctx, span := trace.StartSpan(ctx, "EncryptedPublisher.Publish")
	defer span.End()
	span.AddAttributes(
		trace.StringAttribute("content_type", contentType),
		trace.Int64Attribute("headers", int64(len(headers))),
	)
	logger := logging.LoggerWithTrace(ctx, p.logger)

	key, err := secret.Key()
	if err != nil {
		if !p.forwardEmptyOnKeyError {
			span.SetStatus(trace.Status{Code: trace.StatusCodeInvalidArgument, Message: err.Error()})
			return err
		}
		logger.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorForwardedEmpty).
			Warningln("Invalid key, forward empty message")
		span.Annotate(nil, "forward empty message")
		return p.forward(ctx, span, []byte{}, contentType, headers)
	}
	defer key.Zeroize()

	sealed, err := p.codec.Seal(message.Bytes(), key)
	if err != nil {
		logger.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantSealMessage).
			Errorln("Can't seal message")
		span.SetStatus(trace.Status{Code: trace.StatusCodeInternal, Message: err.Error()})
		return fmt.Errorf("can't seal message: %w", err)
	}
	return p.forward(ctx, span, sealed, contentType, headers)
}

func (p *EncryptedPublisher) forward(ctx context.Context, span *trace.Span, body []byte, contentType string, headers Headers) error {
	span.AddAttributes(trace.Int64Attribute("body_length", int64(len(body))))
	if err := p.channel.Publish(ctx, body, contentType, headers); err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
		return err
	}
	return nil
}

// Encrypt seals message with secret using default codec
func Encrypt(message Payload, secret Secret) ([]byte, error) {
	key, err := secret.Key()
	if err != nil {
		return nil, err
	}
	defer key.Zeroize()
	return token.Seal(message.Bytes(), key)
}

// Decrypt opens sealed token with secret and returns message as text. Tokens with binary
// content fail with ErrNotUTF8, use token.Open for them
func Decrypt(sealed []byte, secret Secret) (string, error) {
	key, err := secret.Key()
	if err != nil {
		return "", err
	}
	defer key.Zeroize()
	message, err := token.Open(sealed, key)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(message) {
		return "", ErrNotUTF8
	}
	return string(message), nil
}
