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

// Package keystore loads and generates shared secrets used to seal and open tokens.
// Key is accepted as url-safe base64 text. Key file may also hold raw 32 bytes.
package keystore

import (
	"bytes"
	"errors"
	"os"

	"github.com/cossacklabs/privatepublisher/token"
	"github.com/cossacklabs/privatepublisher/utils"
)

// KeyVarName default environment variable with base64 encoded key
const KeyVarName = "PRIVATE_PUBLISHER_KEY"

// default mode of written key files
const keyFileMode = os.FileMode(0600)

// Errors returned during key loading
var (
	ErrEmptyKey = errors.New("key is empty")
)

// GetRawKeyFromEnvironmentVariable return not validated value of environment variable varname
func GetRawKeyFromEnvironmentVariable(varname string) ([]byte, error) {
	value := os.Getenv(varname)
	if len(value) == 0 {
		return nil, ErrEmptyKey
	}
	return []byte(value), nil
}

// GetKeyFromEnvironmentVariable return key from environment variable varname. Value must be base64 text
func GetKeyFromEnvironmentVariable(varname string) (*token.Key, error) {
	value, err := GetRawKeyFromEnvironmentVariable(varname)
	if err != nil {
		return nil, err
	}
	defer utils.ZeroizeBytes(value)
	return token.DecodeKey(string(value))
}

// GetKeyFromEnvironment return key from environment variable with name KeyVarName
func GetKeyFromEnvironment() (*token.Key, error) {
	return GetKeyFromEnvironmentVariable(KeyVarName)
}

// ReadRawKeyFile reads not validated key from file. Surrounding whitespace is trimmed unless file has
// exactly token.KeySize bytes, which is a raw key
func ReadRawKeyFile(path string) ([]byte, error) {
	data, err := utils.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == token.KeySize {
		return data, nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyKey
	}
	return trimmed, nil
}

// ReadKeyFile reads key from file. File may contain raw 32 bytes or base64 text with trailing newline
func ReadKeyFile(path string) (*token.Key, error) {
	data, err := ReadRawKeyFile(path)
	if err != nil {
		return nil, err
	}
	defer utils.ZeroizeBytes(data)
	return token.ValidateKey(data)
}

// WriteKeyFile writes base64 encoded key to new file available only for current user
func WriteKeyFile(path string, key *token.Key) error {
	absPath, err := utils.AbsPath(path)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, keyFileMode)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(key.Encode() + "\n"); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
