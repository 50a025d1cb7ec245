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

// Package token seals messages into self-contained authenticated tokens and opens them back.
//
// Token layout (Fernet, all integers big-endian), base64url-encoded with padding for transport:
//
//	Version[1] + Timestamp[8] + IV[16] + Ciphertext[16*N] + HMAC-SHA256[32]
//
// Ciphertext is AES-128-CBC over PKCS7-padded message with the second half of the key,
// HMAC covers every preceding byte and uses the first half of the key.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"io"
	"time"
)

// Version is the only supported format version
const Version byte = 0x80

// Set of constants with sizes of each part of token
const (
	VersionSize   = 1
	TimestampSize = 8
	IVSize        = aes.BlockSize
	TagSize       = sha256.Size
	HeaderSize    = VersionSize + TimestampSize + IVSize
	// MinTokenSize header, one cipher block and tag
	MinTokenSize = HeaderSize + aes.BlockSize + TagSize
)

// Token parts positions
const (
	VersionPosition    = 0
	TimestampPosition  = VersionPosition + VersionSize
	IVPosition         = TimestampPosition + TimestampSize
	CiphertextPosition = IVPosition + IVSize
)

// DefaultMaxClockSkew how far in the future token timestamp may be when ttl is checked
const DefaultMaxClockSkew = 60 * time.Second

// Codec seals and opens tokens. It has no mutable state and is safe for concurrent use
type Codec struct {
	now          func() time.Time
	random       io.Reader
	maxClockSkew time.Duration
}

// Option configures Codec
type Option func(*Codec)

// WithClock overrides time source used for timestamps and ttl checks
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// WithRandom overrides source of initialization vectors. It must be cryptographically secure outside of tests
func WithRandom(random io.Reader) Option {
	return func(c *Codec) {
		c.random = random
	}
}

// WithMaxClockSkew overrides tolerance for timestamps from the future
func WithMaxClockSkew(skew time.Duration) Option {
	return func(c *Codec) {
		c.maxClockSkew = skew
	}
}

// NewCodec returns Codec with crypto/rand and system clock unless overridden
func NewCodec(options ...Option) *Codec {
	c := &Codec{
		now:          time.Now,
		random:       rand.Reader,
		maxClockSkew: DefaultMaxClockSkew,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

var defaultCodec = NewCodec()

// Seal plaintext with default codec
func Seal(plaintext []byte, key *Key) ([]byte, error) {
	return defaultCodec.Seal(plaintext, key)
}

// Open token with default codec without ttl check
func Open(token []byte, key *Key) ([]byte, error) {
	return defaultCodec.Open(token, key)
}

// OpenWithTTL opens token with default codec and rejects tokens older than ttl,
// counted in whole seconds
func OpenWithTTL(token []byte, key *Key, ttl time.Duration) ([]byte, error) {
	return defaultCodec.OpenWithTTL(token, key, ttl)
}

// Seal encrypts and signs plaintext and returns base64url encoded token.
// Error is returned only if random source fails.
func (c *Codec) Seal(plaintext []byte, key *Key) ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(c.random, iv); err != nil {
		return nil, err
	}
	return c.seal(plaintext, key, iv, c.now())
}

func (c *Codec) seal(plaintext []byte, key *Key, iv []byte, now time.Time) ([]byte, error) {
	block, err := aes.NewCipher(key.EncryptionKey())
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)

	raw := make([]byte, HeaderSize+len(padded), HeaderSize+len(padded)+TagSize)
	raw[VersionPosition] = Version
	binary.BigEndian.PutUint64(raw[TimestampPosition:IVPosition], uint64(now.Unix()))
	copy(raw[IVPosition:CiphertextPosition], iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(raw[CiphertextPosition:], padded)

	raw = append(raw, sign(key, raw)...)

	out := make([]byte, base64.URLEncoding.EncodedLen(len(raw)))
	base64.URLEncoding.Encode(out, raw)
	return out, nil
}

// Open verifies and decrypts token without freshness check
func (c *Codec) Open(token []byte, key *Key) ([]byte, error) {
	return c.open(token, key, 0, false, time.Time{})
}

// OpenWithTTL verifies and decrypts token and rejects it if it's older than ttl
// or its timestamp is too far in the future. Age is counted in whole seconds: token timestamp
// and current time are truncated to seconds and ttl is truncated to whole seconds, so token
// expires only when now.Unix() > timestamp + ttl seconds
func (c *Codec) OpenWithTTL(token []byte, key *Key, ttl time.Duration) ([]byte, error) {
	return c.open(token, key, ttl, true, c.now())
}

// OpenAtTime same as OpenWithTTL but freshness is evaluated against now instead of codec's clock
func (c *Codec) OpenAtTime(token []byte, key *Key, ttl time.Duration, now time.Time) ([]byte, error) {
	return c.open(token, key, ttl, true, now)
}

// ExtractTimestamp returns seal time of authenticated token without decrypting it
func (c *Codec) ExtractTimestamp(token []byte, key *Key) (time.Time, error) {
	raw, err := c.verify(token, key)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(timestamp(raw), 0), nil
}

func (c *Codec) open(token []byte, key *Key, ttl time.Duration, checkTTL bool, now time.Time) ([]byte, error) {
	raw, err := c.verify(token, key)
	if err != nil {
		return nil, err
	}
	if checkTTL {
		ts := timestamp(raw)
		current := now.Unix()
		if ts+int64(ttl/time.Second) < current {
			return nil, ErrExpired
		}
		if current+int64(c.maxClockSkew/time.Second) < ts {
			return nil, ErrExpired
		}
	}
	ciphertext := raw[CiphertextPosition : len(raw)-TagSize]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrBadFormat
	}
	block, err := aes.NewCipher(key.EncryptionKey())
	if err != nil {
		return nil, err
	}
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, raw[IVPosition:CiphertextPosition]).CryptBlocks(padded, ciphertext)
	return pkcs7Unpad(padded, aes.BlockSize)
}

// verify decodes token, checks version and signature. Nothing is decrypted before the tag matches
func (c *Codec) verify(token []byte, key *Key) ([]byte, error) {
	raw := make([]byte, base64.URLEncoding.DecodedLen(len(token)))
	n, err := base64.URLEncoding.Decode(raw, token)
	if err != nil {
		return nil, ErrBadFormat
	}
	raw = raw[:n]
	if len(raw) < MinTokenSize {
		return nil, ErrBadFormat
	}
	if raw[VersionPosition] != Version {
		return nil, ErrBadVersion
	}
	signed := raw[:len(raw)-TagSize]
	if !hmac.Equal(sign(key, signed), raw[len(raw)-TagSize:]) {
		return nil, ErrBadSignature
	}
	return raw, nil
}

func sign(key *Key, data []byte) []byte {
	mac := hmac.New(sha256.New, key.SigningKey())
	mac.Write(data)
	return mac.Sum(nil)
}

func timestamp(raw []byte) int64 {
	return int64(binary.BigEndian.Uint64(raw[TimestampPosition:IVPosition]))
}
