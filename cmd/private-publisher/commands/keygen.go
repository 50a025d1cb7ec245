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
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"

	"github.com/cossacklabs/privatepublisher/keystore"
	"github.com/cossacklabs/privatepublisher/logging"
	"github.com/cossacklabs/privatepublisher/token"
	"github.com/cossacklabs/privatepublisher/utils"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// PassphraseVarName environment variable with passphrase used by keygen --passphrase
const PassphraseVarName = "PRIVATE_PUBLISHER_PASSPHRASE"

// KeygenSubcommand is the "private-publisher keygen" subcommand.
type KeygenSubcommand struct {
	CommonParameters
	flagSet *flag.FlagSet

	usePassphrase bool
	salt          string
	argon2        keystore.Argon2Params
	argon2Threads uint
	keyOutput     string
}

// Name returns the same of this subcommand.
func (g *KeygenSubcommand) Name() string {
	return CmdKeygen
}

// GetFlagSet returns flag set of this subcommand.
func (g *KeygenSubcommand) GetFlagSet() *flag.FlagSet {
	return g.flagSet
}

// RegisterFlags registers command-line flags of "private-publisher keygen".
func (g *KeygenSubcommand) RegisterFlags() {
	g.flagSet = flag.NewFlagSet(CmdKeygen, flag.ContinueOnError)
	g.CommonParameters.Register(g.flagSet)
	g.flagSet.BoolVar(&g.usePassphrase, "passphrase", false, "Derive key from passphrase taken from "+PassphraseVarName+" or terminal")
	g.flagSet.StringVar(&g.salt, "salt", "", "Base64 encoded salt for passphrase derivation, random salt is generated if empty")
	g.flagSet.Var(newUint32Value(keystore.DefaultArgon2Time, &g.argon2.Time), "argon2_time", "Number of argon2id passes")
	g.flagSet.Var(newUint32Value(keystore.DefaultArgon2Memory, &g.argon2.Memory), "argon2_memory", "Argon2id memory in KiB")
	g.flagSet.UintVar(&g.argon2Threads, "argon2_threads", keystore.DefaultArgon2Threads, "Argon2id parallelism")
	g.flagSet.StringVar(&g.keyOutput, "key_output", "", "Write key into file instead of stdout")
	g.flagSet.Usage = usage(g.flagSet, CmdKeygen)
}

// Parse command-line parameters of the subcommand.
func (g *KeygenSubcommand) Parse(arguments []string) error {
	if err := parseFlags(g.flagSet, arguments); err != nil {
		return err
	}
	if g.argon2Threads == 0 || g.argon2Threads > 255 {
		return fmt.Errorf("argon2_threads must be in range 1..255, took %d", g.argon2Threads)
	}
	g.argon2.Threads = uint8(g.argon2Threads)
	return nil
}

// Execute this subcommand.
func (g *KeygenSubcommand) Execute(ctx context.Context) error {
	g.SetupLogging()
	key, err := g.generate()
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantGenerateKey).WithError(err).Errorln("Can't generate key")
		return err
	}
	defer key.Zeroize()

	if g.keyOutput != "" {
		if err := keystore.WriteKeyFile(g.keyOutput, key); err != nil {
			log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantWriteOutput).WithError(err).Errorln("Can't save key")
			return err
		}
		log.Infof("Key saved to %s", g.keyOutput)
		return nil
	}
	if _, err := fmt.Fprintln(g.output(), key.Encode()); err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantWriteOutput).WithError(err).Errorln("Can't print key")
		return err
	}
	return nil
}

func (g *KeygenSubcommand) generate() (*token.Key, error) {
	if !g.usePassphrase {
		return token.GenerateKey()
	}
	var salt []byte
	var err error
	if g.salt != "" {
		salt, err = base64.StdEncoding.DecodeString(g.salt)
		if err != nil {
			return nil, fmt.Errorf("invalid salt: %w", err)
		}
	} else {
		salt, err = keystore.GenerateSalt()
		if err != nil {
			return nil, err
		}
		// the same salt is required to derive the key again
		fmt.Fprintf(g.errOutput(), "salt: %s\n", base64.StdEncoding.EncodeToString(salt))
	}
	passphrase, err := g.readPassphrase()
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantReadPassword).WithError(err).Errorln("Can't read passphrase")
		return nil, err
	}
	defer utils.ZeroizeBytes(passphrase)
	return keystore.DeriveKeyFromPassphrase(passphrase, salt, g.argon2)
}

// readPassphrase takes passphrase from environment, terminal or first line of input
func (g *KeygenSubcommand) readPassphrase() ([]byte, error) {
	if value := os.Getenv(PassphraseVarName); value != "" {
		return []byte(value), nil
	}
	if g.inReader == nil && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(g.errOutput(), "Passphrase: ")
		defer fmt.Fprintln(g.errOutput())
		return term.ReadPassword(int(os.Stdin.Fd()))
	}
	line, err := bufio.NewReader(g.input()).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}
