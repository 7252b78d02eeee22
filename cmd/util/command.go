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


// Package util holds the command plumbing shared by the pcodec commands.
package util

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	flag "github.com/juju/gnuflag"

	"github.com/ndimiduk/phoenix/libraries/errhand"
)

// Command is a classic gnuflag command.
type Command struct {
	// Run runs the command.
	// The args are the arguments after the command name.
	Run func(ctx context.Context, args []string) int
	// Flags is a set of flags specific to this command.
	Flags func() *flag.FlagSet
	// UsageLine is the one-line usage message.
	// The first word in the line is taken to be the command name.
	UsageLine string
	// Short is the short description shown in the help output.
	Short string
	// Long is the long message shown by Usage.
	Long string
	// Nargs is the minimum number of arguments expected after flags.
	Nargs int
}

// Name returns the command's name: the first word in the usage line.
func (nc *Command) Name() string {
	name, _, _ := strings.Cut(nc.UsageLine, " ")
	return name
}

func countFlags(flags *flag.FlagSet) int {
	if flags == nil {
		return 0
	}
	n := 0
	flags.VisitAll(func(f *flag.Flag) {
		n++
	})
	return n
}

// Usage prints the usage of |nc| and exits.
func (nc *Command) Usage() {
	fmt.Fprintf(os.Stderr, "usage: %s\n\n", nc.UsageLine)
	fmt.Fprintf(os.Stderr, "%s\n", strings.TrimSpace(nc.Long))
	flags := nc.Flags()
	if countFlags(flags) > 0 {
		fmt.Fprintf(os.Stderr, "\noptions:\n")
		flags.PrintDefaults()
	}
	os.Exit(1)
}

var verbose bool

// SetVerbose makes CheckError print the details and cause of errors.
func SetVerbose(v bool) {
	verbose = v
}

// FormatError renders |err| for the terminal.
func FormatError(err error) string {
	if ve, ok := err.(errhand.VerboseError); ok {
		if verbose {
			return ve.Verbose()
		}
		return ve.Error()
	}
	return color.RedString("error: %s", err)
}

// CheckErrorNoUsage prints |err| and exits when it is non-nil.
func CheckErrorNoUsage(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, FormatError(err))
		os.Exit(1)
	}
}

// CheckError is CheckErrorNoUsage that also prints the usage of |nc|.
func CheckError(nc *Command, err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, FormatError(err))
		fmt.Fprintln(os.Stderr)
		nc.Usage()
	}
}
