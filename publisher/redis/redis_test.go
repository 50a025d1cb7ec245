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

package redis

import (
	"context"
	"testing"

	goRedis "github.com/go-redis/redis/v7"
	"github.com/stretchr/testify/assert"
)

func TestNewChannelEmptyName(t *testing.T) {
	client := goRedis.NewClient(&goRedis.Options{Addr: "localhost:1"})
	defer client.Close()
	_, err := NewChannel(client, "")
	assert.Equal(t, ErrEmptyChannelName, err)
}

func TestPublishCanceledContext(t *testing.T) {
	client := goRedis.NewClient(&goRedis.Options{Addr: "localhost:1", MaxRetries: -1})
	defer client.Close()
	channel, err := NewChannel(client, "tokens")
	assert.NoError(t, err)
	assert.Equal(t, "tokens", channel.Name())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, channel.Publish(ctx, []byte("token"), "", nil))
}

func TestNewClientUnavailable(t *testing.T) {
	_, err := NewClient(&goRedis.Options{Addr: "localhost:1", MaxRetries: -1})
	assert.Error(t, err)
}
