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

package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// VERSION is current private-publisher version
// store it as string to easy change value via scripts or with
// -ldflags "-X github.com/cossacklabs/privatepublisher/utils.VERSION=X.X.X"
var VERSION = "0.1.0"

// Version store version info
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// String format version as string
func (v *Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

const (
	major = iota
	minor
	patch
)

// ErrInvalidVersionFormat error for incorrectly formatted version value
var ErrInvalidVersionFormat = errors.New("VERSION value has incorrect format (semver 2.0.0 format expected, https://semver.org/)")

// ParseVersion and return as struct
func ParseVersion(version string) (*Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidVersionFormat
	}
	values := make([]uint32, len(parts))
	for i, part := range parts {
		value, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, err
		}
		values[i] = uint32(value)
	}
	return &Version{Major: values[major], Minor: values[minor], Patch: values[patch]}, nil
}

// GetParsedVersion return version as Version struct
func GetParsedVersion() (*Version, error) {
	return ParseVersion(VERSION)
}
