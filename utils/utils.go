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

// Package utils contains small helpers shared by private-publisher packages: version info,
// file helpers and memory zeroing for key material.
package utils

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ErrEmptyPath returned when path helpers receive empty string
var ErrEmptyPath = errors.New("empty path")

// AbsPath expands leading "~/" to the home directory of current user and returns absolute path
func AbsPath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			return path, err
		}
		path = filepath.Join(usr.HomeDir, path[2:])
	}
	return filepath.Abs(path)
}

// ReadFile reads whole file after expanding path with AbsPath
func ReadFile(path string) ([]byte, error) {
	absPath, err := AbsPath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(absPath)
}

// FileExists returns true if file exists, false if not, and error for any other failure
func FileExists(path string) (bool, error) {
	absPath, err := AbsPath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FillSlice fills data with value
func FillSlice(value byte, data []byte) {
	for i := range data {
		data[i] = value
	}
}

// ZeroizeBytes overwrites data with zeros, used to wipe key material after use
func ZeroizeBytes(data []byte) {
	FillSlice(0, data)
}
