// Copyright 2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// pcodec encodes, decodes and compares values of the order-preserving
// SQL type codec, and loads rows into a bolt-backed table.
package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/attic-labs/kingpin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ndimiduk/phoenix/cmd/util"
	"github.com/ndimiduk/phoenix/libraries/codeccfg"
	"github.com/ndimiduk/phoenix/libraries/utils/config"
)

var commands = []*util.Command{
	pcodecTypes,
	pcodecConfig,
}

var kingpinCommands = []util.KingpinCommand{
	pcodecEncode,
	pcodecDecode,
	pcodecCompare,
	pcodecCoerce,
	pcodecArrayGet,
	pcodecPrecision,
	pcodecVerify,
	pcodecLoad,
	pcodecScan,
}

// pcodecEnv is the state shared by every command once the global flags
// are applied.
type pcodecEnv struct {
	cfg *codeccfg.Config
	lgr *logrus.Entry
	out io.Writer
}

var env = &pcodecEnv{out: os.Stdout}

func main() {
	// allow short (-h) help
	kingpin.EnableFileExpansion = false
	kingpin.CommandLine.HelpFlag.Short('h')
	pcodec := kingpin.New("pcodec", "pcodec is a tool for encoding and inspecting order-preserving SQL values.")

	// global flags
	configPath := pcodec.Flag("config", "YAML or TOML config file").Short('c').String()
	overrides := pcodec.Flag("set", "override a config key, e.g. --set store.cache_size=0").Strings()
	verboseVal := pcodec.Flag("verbose", "show more").Short('v').Bool()

	// set up docs for non-kingpin commands
	addClassicDocs(pcodec)

	ctx := context.Background()
	handlers := map[string]util.KingpinHandler{}
	for _, cmdFunction := range kingpinCommands {
		command, handler := cmdFunction(ctx, pcodec)
		handlers[command.FullCommand()] = handler
	}

	input := kingpin.MustParse(pcodec.Parse(os.Args[1:]))

	// apply global flags
	cfg, err := loadConfig(*configPath, *overrides)
	util.CheckErrorNoUsage(err)
	if *verboseVal {
		cfg.LogLevel = logrus.DebugLevel.String()
	}
	util.SetVerbose(*verboseVal)
	env.cfg = cfg
	env.lgr = cfg.NewLogger().WithField("session", uuid.New().String())

	if handler := handlers[strings.Split(input, " ")[0]]; handler != nil {
		if exitCode := handler(input); exitCode != 0 {
			os.Exit(exitCode)
		}
		return
	}

	// fall back to the classic gnuflag commands
	args := classicArgs(os.Args[1:], input)
	for _, cmd := range commands {
		if cmd.Name() == input {
			flags := cmd.Flags()
			flags.Usage = cmd.Usage

			if err := flags.Parse(true, args); err != nil {
				util.CheckError(cmd, err)
			}
			args = flags.Args()
			if cmd.Nargs != 0 && len(args) < cmd.Nargs {
				cmd.Usage()
			}
			if exitCode := cmd.Run(ctx, args); exitCode != 0 {
				os.Exit(exitCode)
			}
			return
		}
	}
}

// loadConfig reads the config file at |path|, or the defaults when
// |path| is empty, and applies the --set overrides.
func loadConfig(path string, overrides []string) (*codeccfg.Config, error) {
	var cfg *codeccfg.Config
	var err error
	if path == "" {
		cfg, err = codeccfg.Default()
	} else {
		cfg, err = codeccfg.Load(path)
	}
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return cfg, nil
	}
	mc, err := config.ParseMapConfig(overrides)
	if err != nil {
		return nil, err
	}
	if err = cfg.ApplyOverrides(mc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// classicArgs returns the arguments following the command |name|.
func classicArgs(args []string, name string) []string {
	for i, a := range args {
		if a == name {
			return args[i+1:]
		}
	}
	return nil
}

// addClassicDocs documents the gnuflag commands in kingpin so that
// kingpin accepts them.
func addClassicDocs(pcodec *kingpin.Application) {
	types := pcodec.Command("types", pcodecTypes.Short)
	types.Flag("scalar", "only list scalar types").Bool()
	types.Flag("coerce", "list the coercion edges of this type").String()

	cfg := pcodec.Command("config", pcodecConfig.Short)
	cfg.Flag("defaults", "print the built-in defaults instead").Bool()
}
