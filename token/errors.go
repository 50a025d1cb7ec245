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
	"errors"
	"fmt"
)

// ErrInvalidKey matches every *KeyError with errors.Is
var ErrInvalidKey = errors.New("key must be 32 url-safe base64-encoded bytes")

// KeyError returned when key can't be used for sealing or opening
type KeyError struct {
	Reason string
	Err    error
}

func (e *KeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid key: %s: %v", e.Reason, e.Err)
	}
	return "invalid key: " + e.Reason
}

// Unwrap returns underlying decoding error if any
func (e *KeyError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidKey
func (e *KeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// TokenErrorKind describes which check rejected the token
type TokenErrorKind uint8

// Set of token rejection reasons
const (
	// BadFormat token can't be decoded or is too short
	BadFormat TokenErrorKind = iota + 1
	// BadVersion unsupported format version
	BadVersion
	// BadSignature tag mismatch: tampered token or wrong key
	BadSignature
	// Expired token older than ttl or too far in the future
	Expired
	// BadPadding decrypted data has malformed padding
	BadPadding
)

// String returns lowercase name used in logs and metric labels
func (k TokenErrorKind) String() string {
	switch k {
	case BadFormat:
		return "bad_format"
	case BadVersion:
		return "bad_version"
	case BadSignature:
		return "bad_signature"
	case Expired:
		return "expired"
	case BadPadding:
		return "bad_padding"
	}
	return "unknown"
}

// TokenError returned by Open when token was rejected
type TokenError struct {
	Kind TokenErrorKind
}

func (e *TokenError) Error() string {
	switch e.Kind {
	case BadFormat:
		return "invalid token: malformed token"
	case BadVersion:
		return "invalid token: unsupported version"
	case BadSignature:
		return "invalid token: signature mismatch"
	case Expired:
		return "invalid token: expired"
	case BadPadding:
		return "invalid token: bad padding"
	}
	return "invalid token"
}

// Is matches TokenError with the same Kind. ErrInvalidToken matches any kind
func (e *TokenError) Is(target error) bool {
	t, ok := target.(*TokenError)
	if !ok {
		return false
	}
	return t.Kind == 0 || t.Kind == e.Kind
}

// Token errors to use with errors.Is
var (
	ErrInvalidToken = &TokenError{}
	ErrBadFormat    = &TokenError{Kind: BadFormat}
	ErrBadVersion   = &TokenError{Kind: BadVersion}
	ErrBadSignature = &TokenError{Kind: BadSignature}
	ErrExpired      = &TokenError{Kind: Expired}
	ErrBadPadding   = &TokenError{Kind: BadPadding}
)
