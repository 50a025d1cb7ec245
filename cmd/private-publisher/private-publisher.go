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

// Package main is entry point for `private-publisher` utility.
//
// It seals messages into tokens with shared key and publishes them:
//
//   - generate keys
//   - seal and open tokens
//   - publish tokens into Redis channel or local outbox
//   - drain outbox into Redis
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/cossacklabs/privatepublisher/cmd"
	"github.com/cossacklabs/privatepublisher/cmd/private-publisher/commands"
	"github.com/cossacklabs/privatepublisher/logging"
	log "github.com/sirupsen/logrus"
)

func main() {
	exitHandler := cmd.NewExitHandler()
	subcommands := commands.Subcommands()

	subcommand, err := commands.ParseParameters(subcommands, os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp), errors.Is(err, commands.ErrConfigDumped):
		exitHandler.ExitZero()
	case errors.Is(err, commands.ErrMissingSubcommand), errors.Is(err, commands.ErrUnknownSubcommand):
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorWrongParam).WithError(err).Errorln("Can't parse command")
		commands.PrintUsage(os.Stderr, os.Args[0], subcommands)
		exitHandler.ExitOne()
	default:
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorWrongConfiguration).WithError(err).Errorln("Wrong configuration")
		exitHandler.ExitOne()
	}

	ctx, cancel := context.WithCancel(context.Background())
	exitHandler.AddDeferFunc(cmd.NewDeferFunction(cancel, cmd.Last))
	exitHandler.OnSignal(func(signal os.Signal) {
		log.WithField("signal", signal.String()).Infoln("Stop processing")
		cancel()
	})

	if err := subcommand.Execute(ctx); err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorGeneral).WithError(err).
			WithField("command", subcommand.Name()).Errorln("Command failed")
		exitHandler.ExitOne()
	}
	exitHandler.ExitZero()
}
