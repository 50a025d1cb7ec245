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

package keystore

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/cossacklabs/privatepublisher/token"
	"github.com/cossacklabs/privatepublisher/utils"
	"golang.org/x/crypto/argon2"
)

// Default argon2id parameters for passphrase derived keys
const (
	DefaultArgon2Time    = 3
	DefaultArgon2Memory  = 64 * 1024
	DefaultArgon2Threads = 2
	// SaltSize length of generated salt in bytes
	SaltSize = 16
	// MinSaltSize minimal accepted salt length
	MinSaltSize = 8
)

// Errors returned by key derivation
var (
	ErrEmptyPassphrase = errors.New("passphrase is empty")
	ErrShortSalt       = fmt.Errorf("salt must have at least %d bytes", MinSaltSize)
)

// Argon2Params cost parameters of argon2id
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultArgon2Params returns recommended parameters
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    DefaultArgon2Time,
		Memory:  DefaultArgon2Memory,
		Threads: DefaultArgon2Threads,
	}
}

// GenerateSalt returns SaltSize random bytes
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKeyFromPassphrase derives key with argon2id. The same passphrase, salt and params always give the same key
func DeriveKeyFromPassphrase(passphrase, salt []byte, params Argon2Params) (*token.Key, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	if len(salt) < MinSaltSize {
		return nil, ErrShortSalt
	}
	derived := argon2.IDKey(passphrase, salt, params.Time, params.Memory, params.Threads, token.KeySize)
	defer utils.ZeroizeBytes(derived)
	return token.NewKey(derived)
}
