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


package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	flag "github.com/juju/gnuflag"

	"github.com/ndimiduk/phoenix/cmd/util"
	"github.com/ndimiduk/phoenix/libraries/codeccfg"
	"github.com/ndimiduk/phoenix/store/val"
)

var typesFlags struct {
	scalar bool
	coerce string
}

var pcodecTypes = &util.Command{
	Run:       runTypesCmd,
	UsageLine: "types [-scalar] [-coerce <type>]",
	Short:     "Lists the registered SQL types",
	Long:      "Lists every registered type with its SQL type id, ordinal and encoded width. With -coerce, lists the coercion edge from that type to every other type.",
	Flags:     setupTypesFlags,
	Nargs:     0,
}

func setupTypesFlags() *flag.FlagSet {
	typesFlagSet := flag.NewFlagSet("types", flag.ExitOnError)
	typesFlagSet.BoolVar(&typesFlags.scalar, "scalar", false, "only list scalar types")
	typesFlagSet.StringVar(&typesFlags.coerce, "coerce", "", "list the coercion edges of this type")
	return typesFlagSet
}

func runTypesCmd(ctx context.Context, args []string) int {
	var err error
	if typesFlags.coerce != "" {
		err = runCoercionEdges(env.out, typesFlags.coerce, typesFlags.scalar)
	} else {
		err = runTypes(env.out, typesFlags.scalar)
	}
	util.CheckErrorNoUsage(err)
	return 0
}

func listedTypes(scalar bool) []*val.Type {
	if scalar {
		return val.ScalarTypes()
	}
	return val.Types()
}

func runTypes(w io.Writer, scalar bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSQL TYPE\tORDINAL\tWIDTH")
	for _, typ := range listedTypes(scalar) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", typ.Name(), typ.SQLType(), typ.Ordinal(), widthOf(typ))
	}
	return tw.Flush()
}

func widthOf(typ *val.Type) string {
	if sz, ok := typ.ByteSize(); ok {
		return strconv.Itoa(int(sz))
	}
	if typ.FixedWidth() {
		return "declared"
	}
	return "variable"
}

func runCoercionEdges(w io.Writer, srcName string, scalar bool) error {
	src, err := val.TypeFromName(srcName)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tCOERCION")
	for _, dst := range listedTypes(scalar) {
		if c := val.CoercionOf(src, dst); c != val.Never {
			fmt.Fprintf(tw, "%s\t%s\n", dst.Name(), c)
		}
	}
	return tw.Flush()
}

var configFlags struct {
	defaults bool
}

var pcodecConfig = &util.Command{
	Run:       runConfigCmd,
	UsageLine: "config [-defaults]",
	Short:     "Prints the active configuration",
	Long:      "Prints the configuration in effect after the config file and --set overrides are applied, as YAML.",
	Flags:     setupConfigFlags,
	Nargs:     0,
}

func setupConfigFlags() *flag.FlagSet {
	configFlagSet := flag.NewFlagSet("config", flag.ExitOnError)
	configFlagSet.BoolVar(&configFlags.defaults, "defaults", false, "print the built-in defaults instead")
	return configFlagSet
}

func runConfigCmd(ctx context.Context, args []string) int {
	cfg := env.cfg
	if configFlags.defaults {
		var err error
		cfg, err = codeccfg.Default()
		util.CheckErrorNoUsage(err)
	}
	util.CheckErrorNoUsage(runConfig(env.out, cfg))
	return 0
}

func runConfig(w io.Writer, cfg *codeccfg.Config) error {
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
