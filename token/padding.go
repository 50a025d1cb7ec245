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

import "crypto/subtle"

// pkcs7Pad returns new slice with data padded to a multiple of blockSize.
// Full block of padding is appended when data is already aligned.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+padding)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padding)
	}
	return out
}

// pkcs7Unpad strips padding, returns ErrBadPadding if it's malformed
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, ErrBadPadding
	}
	// check all padding bytes without early exit
	good := 1
	for i := len(data) - padding; i < len(data); i++ {
		good &= subtle.ConstantTimeByteEq(data[i], byte(padding))
	}
	if good != 1 {
		return nil, ErrBadPadding
	}
	return data[:len(data)-padding], nil
}
