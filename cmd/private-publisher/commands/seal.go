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

package commands

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/cossacklabs/privatepublisher/logging"
	"github.com/cossacklabs/privatepublisher/token"
	log "github.com/sirupsen/logrus"
)

// SealSubcommand is the "private-publisher seal" subcommand.
type SealSubcommand struct {
	CommonParameters
	KeyParameters
	flagSet *flag.FlagSet
}

// Name returns the same of this subcommand.
func (s *SealSubcommand) Name() string {
	return CmdSeal
}

// GetFlagSet returns flag set of this subcommand.
func (s *SealSubcommand) GetFlagSet() *flag.FlagSet {
	return s.flagSet
}

// RegisterFlags registers command-line flags of "private-publisher seal".
func (s *SealSubcommand) RegisterFlags() {
	s.flagSet = flag.NewFlagSet(CmdSeal, flag.ContinueOnError)
	s.CommonParameters.Register(s.flagSet)
	s.KeyParameters.Register(s.flagSet)
	s.flagSet.Usage = usage(s.flagSet, CmdSeal)
}

// Parse command-line parameters of the subcommand.
func (s *SealSubcommand) Parse(arguments []string) error {
	return parseFlags(s.flagSet, arguments)
}

// Execute this subcommand.
func (s *SealSubcommand) Execute(ctx context.Context) error {
	s.SetupLogging()
	key, err := s.loadKey()
	if err != nil {
		return err
	}
	defer key.Zeroize()
	message, err := io.ReadAll(s.input())
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantReadInput).WithError(err).Errorln("Can't read message")
		return err
	}
	sealed, err := token.NewPrometheusCodecWrapper(token.NewCodec()).Seal(message, key)
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantSealMessage).WithError(err).Errorln("Can't seal message")
		return err
	}
	_, err = fmt.Fprintf(s.output(), "%s\n", sealed)
	return err
}

// OpenSubcommand is the "private-publisher open" subcommand.
type OpenSubcommand struct {
	CommonParameters
	KeyParameters
	flagSet *flag.FlagSet

	ttl            time.Duration
	printTimestamp bool
}

// Name returns the same of this subcommand.
func (o *OpenSubcommand) Name() string {
	return CmdOpen
}

// GetFlagSet returns flag set of this subcommand.
func (o *OpenSubcommand) GetFlagSet() *flag.FlagSet {
	return o.flagSet
}

// RegisterFlags registers command-line flags of "private-publisher open".
func (o *OpenSubcommand) RegisterFlags() {
	o.flagSet = flag.NewFlagSet(CmdOpen, flag.ContinueOnError)
	o.CommonParameters.Register(o.flagSet)
	o.KeyParameters.Register(o.flagSet)
	o.flagSet.DurationVar(&o.ttl, "ttl", 0, "Reject tokens older than ttl, 0 turns off the check")
	o.flagSet.BoolVar(&o.printTimestamp, "print_timestamp", false, "Print creation time of verified token instead of message")
	o.flagSet.Usage = usage(o.flagSet, CmdOpen)
}

// Parse command-line parameters of the subcommand.
func (o *OpenSubcommand) Parse(arguments []string) error {
	if err := parseFlags(o.flagSet, arguments); err != nil {
		return err
	}
	if o.ttl < 0 {
		return fmt.Errorf("ttl must not be negative, took %s", o.ttl)
	}
	return nil
}

// Execute this subcommand.
func (o *OpenSubcommand) Execute(ctx context.Context) error {
	o.SetupLogging()
	key, err := o.loadKey()
	if err != nil {
		return err
	}
	defer key.Zeroize()
	data, err := io.ReadAll(o.input())
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantReadInput).WithError(err).Errorln("Can't read token")
		return err
	}
	sealed := bytes.TrimSpace(data)

	if o.printTimestamp {
		createdAt, err := token.NewCodec().ExtractTimestamp(sealed, key)
		if err != nil {
			log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantOpenToken).WithError(err).Errorln("Can't verify token")
			return err
		}
		_, err = fmt.Fprintln(o.output(), createdAt.UTC().Format(time.RFC3339))
		return err
	}

	codec := token.NewPrometheusCodecWrapper(token.NewCodec())
	var message []byte
	if o.ttl > 0 {
		message, err = codec.OpenWithTTL(sealed, key, o.ttl)
	} else {
		message, err = codec.Open(sealed, key)
	}
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantOpenToken).WithError(err).Errorln("Can't open token")
		return err
	}
	_, err = o.output().Write(message)
	return err
}
