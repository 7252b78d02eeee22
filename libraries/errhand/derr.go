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

// Package errhand builds errors meant for display on a terminal: a short
// message, optional details, and the underlying cause.
package errhand

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const causeIndent = "\t\t"

// VerboseError is an error with a longer rendering that includes its
// details and cause.
type VerboseError interface {
	error
	Verbose() string
}

// DErrorBuilder accumulates the parts of a DError. Every method is safe
// to call on a nil builder and passes the nil along.
type DErrorBuilder struct {
	msg     string
	details []string
	cause   error
}

func BuildDError(format string, args ...interface{}) *DErrorBuilder {
	return &DErrorBuilder{msg: sprintf(format, args)}
}

// BuildIf returns nil when |err| is nil, so that a chain of builder
// calls on it yields a nil VerboseError.
func BuildIf(err error, format string, args ...interface{}) *DErrorBuilder {
	if err == nil {
		return nil
	}
	return BuildDError(format, args...).AddCause(err)
}

func (b *DErrorBuilder) AddDetails(format string, args ...interface{}) *DErrorBuilder {
	if b != nil {
		b.details = append(b.details, sprintf(format, args))
	}
	return b
}

func (b *DErrorBuilder) AddCause(cause error) *DErrorBuilder {
	if b != nil {
		b.cause = cause
	}
	return b
}

func (b *DErrorBuilder) Build() VerboseError {
	if b == nil {
		return nil
	}
	return &DError{
		DisplayMsg: b.msg,
		Details:    strings.Join(b.details, "\n"),
		cause:      b.cause,
	}
}

func sprintf(format string, args []interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// DError is a displayable error. Error() is the colored message alone;
// Verbose() adds the details and the cause indented below them.
type DError struct {
	DisplayMsg string
	Details    string
	cause      error
}

// VerboseErrorFromError wraps |err| unless it already is a VerboseError.
func VerboseErrorFromError(err error) VerboseError {
	if err == nil {
		return nil
	}
	if ve, ok := err.(VerboseError); ok {
		return ve
	}
	return &DError{DisplayMsg: err.Error(), cause: err}
}

func (e *DError) Error() string {
	return color.RedString(e.DisplayMsg)
}

func (e *DError) Unwrap() error {
	return e.cause
}

func (e *DError) Verbose() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	// a wrapped plain error repeats the message
	if e.cause == nil || e.cause.Error() == e.DisplayMsg {
		return sb.String()
	}

	text := e.cause.Error()
	if ve, ok := e.cause.(VerboseError); ok {
		text = ve.Verbose()
	}
	sb.WriteString("\ncause:")
	for _, line := range strings.Split(text, "\n") {
		sb.WriteString("\n")
		sb.WriteString(causeIndent)
		sb.WriteString(line)
	}
	return sb.String()
}
