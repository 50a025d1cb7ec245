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
	"errors"
	"flag"

	goRedis "github.com/go-redis/redis/v7"
)

// RedisOptions keep command-line options related to Redis pub/sub configuration.
type RedisOptions struct {
	HostPort string
	Password string
	DB       int
	Channel  string
}

const redisDefaultDB = 0

// Errors returned by RedisOptions.Validate
var (
	ErrEmptyRedisChannel = errors.New("redis channel is empty")
	ErrInvalidRedisDB    = errors.New("redis db number must not be negative")
)

// RegisterRedisParameters registers Redis parameters with given flag set and prefix.
// Use empty prefix, or something like "src_" or "dst_", for example.
func (redis *RedisOptions) RegisterRedisParameters(flags *flag.FlagSet, prefix string, description string) {
	if description != "" {
		description = " (" + description + ")"
	}
	if flags.Lookup(prefix+"redis_host_port") == nil {
		flags.StringVar(&redis.HostPort, prefix+"redis_host_port", "", "<host>:<port> used to connect to Redis"+description)
		flags.StringVar(&redis.Password, prefix+"redis_password", "", "Password to Redis database"+description)
		flags.IntVar(&redis.DB, prefix+"redis_db", redisDefaultDB, "Number of Redis database"+description)
		flags.StringVar(&redis.Channel, prefix+"redis_channel", DefaultRedisChannel, "Redis pub/sub channel for sealed messages"+description)
	}
}

// Configured returns true if Redis host was set
func (redis *RedisOptions) Configured() bool {
	return redis.HostPort != ""
}

// Validate checks options of configured Redis
func (redis *RedisOptions) Validate() error {
	if !redis.Configured() {
		return nil
	}
	if redis.Channel == "" {
		return ErrEmptyRedisChannel
	}
	if redis.DB < 0 {
		return ErrInvalidRedisDB
	}
	return nil
}

// Options returns Redis connection configuration
func (redis *RedisOptions) Options() *goRedis.Options {
	return &goRedis.Options{
		Addr:     redis.HostPort,
		Password: redis.Password,
		DB:       redis.DB,
	}
}
