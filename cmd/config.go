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

package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/cossacklabs/privatepublisher/utils"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Names of flags registered by RegisterConfigParameters
const (
	ConfigFlagName     = "config"
	DumpConfigFlagName = "dumpconfig"
)

// ErrConfigNotFound returned when explicitly set config file doesn't exist
var ErrConfigNotFound = errors.New("config file not found")

// RegisterConfigParameters registers config and dumpconfig flags with given flag set
func RegisterConfigParameters(flags *flag.FlagSet, defaultConfigPath string) {
	flags.String(ConfigFlagName, defaultConfigPath, "path to config")
	flags.Bool(DumpConfigFlagName, false, "dump config")
}

func isFlagSet(flags *flag.FlagSet, name string) bool {
	set := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// IsDumpConfigRequested returns true if --dumpconfig was passed
func IsDumpConfigRequested(flags *flag.FlagSet) bool {
	f := flags.Lookup(DumpConfigFlagName)
	return f != nil && f.Value.String() == "true"
}

// Parse loads options from args and yaml config. Values from args take precedence, config fills only
// flags that weren't set in args. Missing default config is ignored, missing explicitly set config is an error
// unless it's going to be created with --dumpconfig.
func Parse(flags *flag.FlagSet, args []string) error {
	log.Debugln("Parsing config")
	if err := flags.Parse(args); err != nil {
		return err
	}
	configFlag := flags.Lookup(ConfigFlagName)
	if configFlag == nil || configFlag.Value.String() == "" {
		return nil
	}
	configPath, err := utils.AbsPath(configFlag.Value.String())
	if err != nil {
		return err
	}
	log.Debugf("ConfigPath: %v", configPath)
	exists, err := utils.FileExists(configPath)
	if err != nil {
		return err
	}
	if !exists {
		if isFlagSet(flags, ConfigFlagName) && !IsDumpConfigRequested(flags) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}
	yamlConfig := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return err
	}
	setArgs := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) {
		setArgs[f.Name] = true
	})
	var setErr error
	// set options from config that wasn't set by cli
	flags.VisitAll(func(f *flag.Flag) {
		if setErr != nil || setArgs[f.Name] {
			return
		}
		value, ok := yamlConfig[f.Name]
		if !ok || value == nil {
			return
		}
		values, isList := value.([]interface{})
		if !isList {
			values = []interface{}{value}
		}
		for _, item := range values {
			if err := flags.Set(f.Name, fmt.Sprintf("%v", item)); err != nil {
				setErr = fmt.Errorf("invalid value of %s in config: %w", f.Name, err)
				return
			}
		}
	})
	return setErr
}

func isZeroValue(f *flag.Flag, value string) bool {
	/* took from flag/flag.go */

	// Build a zero value of the flag's Value type, and see if the
	// result of calling its String method equals the value passed in.
	// This works unless the Value type is itself an interface type.
	typ := reflect.TypeOf(f.Value)
	var z reflect.Value
	if typ.Kind() == reflect.Ptr {
		z = reflect.New(typ.Elem())
	} else {
		z = reflect.Zero(typ)
	}
	if value == z.Interface().(flag.Value).String() {
		return true
	}

	switch value {
	case "false", "", "0":
		return true
	}
	return false
}

// PrintDefaults prints flags of the set with -- prefix for long names
func PrintDefaults(output io.Writer, flags *flag.FlagSet) {
	/* took from flag/flag.go and overrided arg display format (-/--) */
	flags.VisitAll(func(f *flag.Flag) {
		var s string
		if len(f.Name) > 2 {
			s = fmt.Sprintf("  --%s", f.Name)
		} else {
			s = fmt.Sprintf("  -%s", f.Name)
		}
		name, usage := flag.UnquoteUsage(f)
		if len(name) > 0 {
			s += " " + name
		}
		// Boolean flags of one ASCII letter are so common we
		// treat them specially, putting their usage on the same line.
		if len(s) <= 4 {
			s += "\t"
		} else {
			s += "\n    \t"
		}
		s += strings.ReplaceAll(usage, "\n", "\n    \t")
		if !isZeroValue(f, f.DefValue) {
			s += fmt.Sprintf(" (default %q)", f.DefValue)
		}
		fmt.Fprint(output, s, "\n")
	})
}

// GenerateYaml writes all flags of the set as yaml config with usage as comments
func GenerateYaml(output io.Writer, flags *flag.FlagSet, useDefault bool) error {
	var err error
	flags.VisitAll(func(f *flag.Flag) {
		if err != nil || f.Name == ConfigFlagName || f.Name == DumpConfigFlagName {
			return
		}
		value := f.Value.String()
		if useDefault {
			value = f.DefValue
		}
		var line []byte
		line, err = yaml.Marshal(map[string]string{f.Name: value})
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(output, "# %v\n%s\n", f.Usage, line)
	})
	return err
}

// DumpConfig writes flags of the set into yaml file at configPath
func DumpConfig(configPath string, flags *flag.FlagSet, useDefault bool) error {
	absPath, err := utils.AbsPath(configPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0744); err != nil {
		return err
	}
	file, err := os.Create(absPath)
	if err != nil {
		return err
	}
	if err := GenerateYaml(file, flags, useDefault); err != nil {
		file.Close()
		return err
	}
	log.Infof("Config dumped to %s", absPath)
	return file.Close()
}
