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

package keyloader

import (
	"flag"

	"github.com/cossacklabs/privatepublisher/keystore"
)

// CLIOptions keep command-line options related to key loading
type CLIOptions struct {
	KeyEnv  string
	KeyFile string
}

// RegisterCLIParameters registers key_env and key_file with given flag set and prefix if they weren't registered yet.
// Use empty prefix, or something like "src_" or "dst_", for example.
func (cli *CLIOptions) RegisterCLIParameters(flags *flag.FlagSet, prefix string, description string) {
	if description != "" {
		description = " (" + description + ")"
	}
	if flags.Lookup(prefix+"key_env") == nil {
		flags.StringVar(&cli.KeyEnv, prefix+"key_env", keystore.KeyVarName, "Environment variable with url-safe base64 encoded key"+description)
		flags.StringVar(&cli.KeyFile, prefix+"key_file", "", "Path to file with key, takes precedence over key_env"+description)
	}
}

// Strategy returns file strategy if key file was set, env otherwise
func (cli *CLIOptions) Strategy() string {
	if cli.KeyFile != "" {
		return KeyLoadStrategyFile
	}
	return KeyLoadStrategyEnv
}

// CreateKeyLoader returns KeyLoader configured with CLI options
func (cli *CLIOptions) CreateKeyLoader() (KeyLoader, error) {
	if cli.Strategy() == KeyLoadStrategyFile {
		return NewKeyLoader(KeyLoadStrategyFile, cli.KeyFile)
	}
	return NewKeyLoader(KeyLoadStrategyEnv, cli.KeyEnv)
}
