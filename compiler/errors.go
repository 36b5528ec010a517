// This file is part of lune - https://github.com/db47h/lune
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
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

package compiler

import (
	"fmt"
	"strings"
	"text/scanner"
)

// maxErrors bounds how many diagnostics a single compilation accumulates
// before bailing out, mirroring the teacher assembler's error budget.
const maxErrors = 10

// compileError is one accumulated diagnostic.
type compileError struct {
	Pos scanner.Position
	Msg string
}

// ErrorList accumulates lexical, syntactic and semantic errors across one
// compilation; all three kinds share the same surface. A non-empty
// ErrorList is returned as the error from Compile.
type ErrorList []compileError

func (e ErrorList) Error() string {
	l := make([]string, 0, len(e))
	for _, err := range e {
		l = append(l, fmt.Sprintf("%s: %s", err.Pos, err.Msg))
	}
	return strings.Join(l, "\n")
}

// Addf appends a formatted diagnostic at pos.
func (e *ErrorList) Addf(pos scanner.Position, format string, args ...any) {
	*e = append(*e, compileError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// Abort reports whether the error budget has been exceeded and compilation
// should stop early.
func (e *ErrorList) Abort() bool { return len(*e) >= maxErrors }
