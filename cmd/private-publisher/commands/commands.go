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

// Package commands defines subcommands of `private-publisher` utility.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/cossacklabs/privatepublisher/cmd"
)

// Subcommand names.
const (
	CmdKeygen  = "keygen"
	CmdSeal    = "seal"
	CmdOpen    = "open"
	CmdPublish = "publish"
	CmdDrain   = "drain"
)

var descriptions = map[string]string{
	CmdKeygen:  "generate new key or derive it from passphrase",
	CmdSeal:    "seal stdin into token",
	CmdOpen:    "verify token from stdin and print decrypted message",
	CmdPublish: "seal stdin and publish token into Redis or local outbox",
	CmdDrain:   "publish tokens stored in local outbox into Redis",
}

// Errors returned by ParseParameters
var (
	ErrMissingSubcommand = errors.New("subcommand is not specified")
	ErrUnknownSubcommand = errors.New("unknown subcommand")
	ErrConfigDumped      = errors.New("config dumped")
)

// Subcommand is a single command of the utility with its own flag set
type Subcommand interface {
	Name() string
	GetFlagSet() *flag.FlagSet
	RegisterFlags()
	Parse(arguments []string) error
	Execute(ctx context.Context) error
}

// Subcommands returns all supported subcommands
func Subcommands() []Subcommand {
	return []Subcommand{
		&KeygenSubcommand{},
		&SealSubcommand{},
		&OpenSubcommand{},
		&PublishSubcommand{},
		&DrainSubcommand{},
	}
}

// ParseParameters finds subcommand by first argument, registers its flags and parses the rest of arguments
func ParseParameters(subcommands []Subcommand, arguments []string) (Subcommand, error) {
	if len(arguments) == 0 {
		return nil, ErrMissingSubcommand
	}
	for _, subcommand := range subcommands {
		if subcommand.Name() != arguments[0] {
			continue
		}
		subcommand.RegisterFlags()
		if err := subcommand.Parse(arguments[1:]); err != nil {
			return nil, err
		}
		return subcommand, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSubcommand, arguments[0])
}

// PrintUsage prints list of subcommands
func PrintUsage(output io.Writer, program string, subcommands []Subcommand) {
	fmt.Fprintf(output, "Usage:\n\t%s <command> [options...]\n\nCommands:\n", program)
	for _, subcommand := range subcommands {
		fmt.Fprintf(output, "  %-10s%s\n", subcommand.Name(), descriptions[subcommand.Name()])
	}
	fmt.Fprintf(output, "\nRun \"%s <command> -h\" to see command options\n", program)
}

func usage(flags *flag.FlagSet, name string) func() {
	return func() {
		output := flags.Output()
		fmt.Fprintf(output, "Command \"%s\": %s\n", name, descriptions[name])
		fmt.Fprintf(output, "\n\tprivate-publisher %s [options...]\n", name)
		fmt.Fprintf(output, "\nOptions:\n")
		cmd.PrintDefaults(output, flags)
	}
}
