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
	"github.com/cossacklabs/privatepublisher/token"
)

// Payload is a message given either as text or as raw bytes
type Payload struct {
	text   string
	data   []byte
	isText bool
}

// TextPayload wraps text message. It is encoded as UTF-8 before sealing
func TextPayload(text string) Payload {
	return Payload{text: text, isText: true}
}

// BytesPayload wraps binary message
func BytesPayload(data []byte) Payload {
	return Payload{data: data}
}

// IsText returns true if payload was created with TextPayload
func (p Payload) IsText() bool {
	return p.isText
}

// Bytes returns message bytes to seal
func (p Payload) Bytes() []byte {
	if p.isText {
		return []byte(p.text)
	}
	return p.data
}

// Secret is a shared key given either as text or as bytes
type Secret struct {
	text   string
	data   []byte
	isText bool
}

// SecretText wraps key given as url-safe base64 text
func SecretText(text string) Secret {
	return Secret{text: text, isText: true}
}

// SecretBytes wraps key given as raw 32 bytes or bytes of its base64 encoding
func SecretBytes(data []byte) Secret {
	return Secret{data: data}
}

// Bytes returns secret as bytes. Text secret must contain only ASCII characters,
// otherwise *token.KeyError is returned
func (s Secret) Bytes() ([]byte, error) {
	if !s.isText {
		return s.data, nil
	}
	for i := 0; i < len(s.text); i++ {
		if s.text[i] >= 0x80 {
			return nil, &token.KeyError{Reason: "secret text contains non-ASCII characters"}
		}
	}
	return []byte(s.text), nil
}

// Key validates secret and returns key ready for the token codec. Text secret is always
// decoded as base64, only bytes secret may hold a raw key
func (s Secret) Key() (*token.Key, error) {
	raw, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	if s.isText {
		return token.DecodeKey(string(raw))
	}
	return token.ValidateKey(raw)
}
