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

// Package keyloader selects where the shared key is loaded from
package keyloader

import (
	"errors"

	"github.com/cossacklabs/privatepublisher/keystore"
	"github.com/cossacklabs/privatepublisher/token"
)

// represent all possible key load strategies
const (
	KeyLoadStrategyEnv  = "env"
	KeyLoadStrategyFile = "file"
)

// SupportedKeyLoadStrategies contains all possible key load strategies
var SupportedKeyLoadStrategies = []string{
	KeyLoadStrategyEnv,
	KeyLoadStrategyFile,
}

// Errors returned by NewKeyLoader
var (
	ErrUnsupportedStrategy = errors.New("unsupported key load strategy")
	ErrEmptyKeyFilePath    = errors.New("key file path is empty")
)

// KeyLoader interface for loading key from different sources. LoadRawKey returns secret as stored
// without validation, LoadKey validates it
type KeyLoader interface {
	LoadKey() (*token.Key, error)
	LoadRawKey() ([]byte, error)
}

// EnvLoader loads key from environment variable
type EnvLoader struct {
	EnvName string
}

// NewEnvLoader create EnvLoader, empty envName means keystore.KeyVarName
func NewEnvLoader(envName string) EnvLoader {
	if envName == "" {
		envName = keystore.KeyVarName
	}
	return EnvLoader{EnvName: envName}
}

// LoadKey retrieve key from env variable and validate it
func (e EnvLoader) LoadKey() (*token.Key, error) {
	return keystore.GetKeyFromEnvironmentVariable(e.EnvName)
}

// LoadRawKey retrieve not validated key from env variable
func (e EnvLoader) LoadRawKey() ([]byte, error) {
	return keystore.GetRawKeyFromEnvironmentVariable(e.EnvName)
}

// FileLoader loads key from file
type FileLoader struct {
	Path string
}

// LoadKey read key from file and validate it
func (f FileLoader) LoadKey() (*token.Key, error) {
	return keystore.ReadKeyFile(f.Path)
}

// LoadRawKey read not validated key from file
func (f FileLoader) LoadRawKey() ([]byte, error) {
	return keystore.ReadRawKeyFile(f.Path)
}

// NewKeyLoader returns KeyLoader for strategy. source is env variable name or file path
func NewKeyLoader(strategy, source string) (KeyLoader, error) {
	switch strategy {
	case KeyLoadStrategyEnv:
		return NewEnvLoader(source), nil
	case KeyLoadStrategyFile:
		if source == "" {
			return nil, ErrEmptyKeyFilePath
		}
		return FileLoader{Path: source}, nil
	}
	return nil, ErrUnsupportedStrategy
}
