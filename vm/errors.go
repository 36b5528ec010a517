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

package vm

import (
	"fmt"
	"strings"
)

// frameLoc is one entry of a RuntimeError's traceback: the module name and
// source location of one active frame at the time of the fault.
type frameLoc struct {
	Module    string
	Line, Col uint16
}

// RuntimeError is the VM's fatal-error type: runtime faults, including
// library-raised ones, surface as a RuntimeError from Exec, carrying a
// traceback of every frame active at fault time, innermost first.
// Lexical, syntactic and semantic (compile-time) faults are not
// RuntimeErrors: LoadString returns them as a compiler.ErrorList, and the
// host error callback is not invoked for them.
type RuntimeError struct {
	Message   string
	Traceback []frameLoc
}

// Error renders the traceback as:
//
//	"<module>|<line>:<col>: <message>\ntraceback:\n(<module>|<line>:<col>)\n…"
func (e *RuntimeError) Error() string {
	var b strings.Builder
	if len(e.Traceback) > 0 {
		top := e.Traceback[0]
		fmt.Fprintf(&b, "%s|%d:%d: %s", top.Module, top.Line, top.Col, e.Message)
		b.WriteString("\ntraceback:\n")
		for _, f := range e.Traceback {
			fmt.Fprintf(&b, "(%s|%d:%d)\n", f.Module, f.Line, f.Col)
		}
	} else {
		b.WriteString(e.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

// traceback walks the active frame stack, innermost first, building the
// location list a RuntimeError carries.
func (i *Instance) traceback() []frameLoc {
	locs := make([]frameLoc, 0, i.depth)
	for f := i.depth - 1; f >= 0; f-- {
		fr := &i.frames[f]
		line, col := fr.location()
		locs = append(locs, frameLoc{Module: fr.module, Line: line, Col: col})
	}
	return locs
}
