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

// Package redis implements publisher.Channel over Redis pub/sub. Every message is wrapped into
// msgpack envelope because PUBLISH carries only the payload.
package redis

import (
	"context"
	"errors"

	"github.com/cossacklabs/privatepublisher/logging"
	"github.com/cossacklabs/privatepublisher/publisher"
	"github.com/cossacklabs/privatepublisher/publisher/envelope"
	goRedis "github.com/go-redis/redis/v7"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyChannelName returned by NewChannel for empty name
var ErrEmptyChannelName = errors.New("redis channel name is empty")

// NewClient return new redis client checked with PING
func NewClient(options *goRedis.Options) (*goRedis.Client, error) {
	client := goRedis.NewClient(options)

	_, err := client.Ping().Result()
	if err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Channel publishes envelopes into named redis pub/sub channel
type Channel struct {
	client *goRedis.Client
	name   string
}

// NewChannel return Channel publishing to channel name using client
func NewChannel(client *goRedis.Client, name string) (*Channel, error) {
	if name == "" {
		return nil, ErrEmptyChannelName
	}
	return &Channel{client: client, name: name}, nil
}

// Name returns redis channel name
func (c *Channel) Name() string {
	return c.name
}

// Publish wraps body into envelope and publishes it. Number of subscribers that received message
// is not checked, pub/sub drops messages without subscribers
func (c *Channel) Publish(ctx context.Context, body []byte, contentType string, headers publisher.Headers) error {
	message := envelope.New(body, contentType, headers)
	data, err := message.Encode()
	if err != nil {
		return err
	}
	if err := c.client.WithContext(ctx).Publish(c.name, data).Err(); err != nil {
		return err
	}
	logging.GetLoggerFromContext(ctx).WithFields(log.Fields{"envelope_id": message.ID, "redis_channel": c.name}).Debugln("Envelope published")
	return nil
}
