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

package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Key sizes in bytes
const (
	KeySize    = 32
	SubKeySize = KeySize / 2
)

// Key is a validated shared secret: signing key followed by encryption key
type Key [KeySize]byte

// NewKey copies raw 32 bytes into Key
func NewKey(raw []byte) (*Key, error) {
	if len(raw) != KeySize {
		return nil, &KeyError{Reason: fmt.Sprintf("expected %d bytes, got %d", KeySize, len(raw))}
	}
	k := new(Key)
	copy(k[:], raw)
	return k, nil
}

// DecodeKey decodes url-safe base64 text. Padding is optional
func DecodeKey(encoded string) (*Key, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		var rawErr error
		raw, rawErr = base64.RawURLEncoding.DecodeString(encoded)
		if rawErr != nil {
			return nil, &KeyError{Reason: "can't decode base64", Err: err}
		}
	}
	if len(raw) != KeySize {
		return nil, &KeyError{Reason: fmt.Sprintf("decoded key has %d bytes, expected %d", len(raw), KeySize)}
	}
	return NewKey(raw)
}

// ValidateKey accepts either raw 32 bytes or their url-safe base64 encoding.
// 32 bytes can't be a base64 encoding of a 32-byte key so the two forms never clash.
func ValidateKey(key []byte) (*Key, error) {
	if len(key) == KeySize {
		return NewKey(key)
	}
	return DecodeKey(string(key))
}

// GenerateKey returns new random key
func GenerateKey() (*Key, error) {
	k := new(Key)
	if _, err := rand.Read(k[:]); err != nil {
		return nil, err
	}
	return k, nil
}

// SigningKey returns first half used for HMAC
func (k *Key) SigningKey() []byte {
	return k[:SubKeySize]
}

// EncryptionKey returns second half used for AES
func (k *Key) EncryptionKey() []byte {
	return k[SubKeySize:]
}

// Encode returns url-safe base64 with padding, the form keys are shared in
func (k *Key) Encode() string {
	return base64.URLEncoding.EncodeToString(k[:])
}

// Zeroize overwrites key material
func (k *Key) Zeroize() {
	for i := range k {
		k[i] = 0
	}
}
