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
	"io"
	"strconv"
)

// disassembleOne writes one instruction starting at pc to w and returns the
// position of the next one. Opcodes that carry a 16-bit argument print it
// inline; PUSHC additionally prints the referenced constant when it can be
// rendered as a short literal (number, bool or null). String constants are
// shown by index only.
func disassembleOne(code []uint16, constants []Value, pc int, w io.Writer) (next int) {
	op := Op(code[pc])
	io.WriteString(w, op.String())
	pc++
	if !op.hasArg() {
		return pc
	}
	if pc >= len(code) {
		io.WriteString(w, " ???")
		return pc
	}
	arg := signed16(code[pc])
	fmt.Fprintf(w, " %d", arg)
	pc++
	if op == OpPushC && arg >= 0 && arg < len(constants) {
		if s, ok := constantLiteral(constants[arg]); ok {
			fmt.Fprintf(w, " ; %s", s)
		}
	}
	return pc
}

// constantLiteral renders v the way a disassembly listing would, for the
// handful of constant kinds simple enough to show inline.
func constantLiteral(v Value) (string, bool) {
	switch {
	case IsNumber(v):
		return strconv.FormatFloat(GetNumber(v), 'g', -1, 64), true
	case IsNull(v):
		return "null", true
	case IsBool(v):
		return strconv.FormatBool(IsTrue(v)), true
	default:
		return "", false
	}
}

// Disassemble writes a listing of code to w, one instruction per line,
// prefixed with its offset. Jump targets are printed as the offset they
// resolve to, not the raw relative value, since that is what a reader
// tracing control flow by hand actually wants.
func Disassemble(code []uint16, constants []Value, w io.Writer) {
	for pc := 0; pc < len(code); {
		start := pc
		fmt.Fprintf(w, "%4d  ", start)
		switch Op(code[pc]) {
		case OpJmp, OpJmpC, OpJmpN:
			op := Op(code[pc])
			target := pc + 2 + signed16(code[pc+1])
			fmt.Fprintf(w, "%s %d ; -> %d", op, signed16(code[pc+1]), target)
			pc += 2
		default:
			pc = disassembleOne(code, constants, pc, w)
		}
		io.WriteString(w, "\n")
	}
}

// DisassembleValue disassembles a Chunk or Fn value's code, or writes a
// one-line placeholder for any other object kind.
func (i *Instance) DisassembleValue(v Value, w io.Writer) {
	t, ok := i.ObjectType(v)
	if !ok {
		io.WriteString(w, "<not an object>\n")
		return
	}
	switch t {
	case ObjChunk:
		c := i.Chunk(v)
		fmt.Fprintf(w, "chunk %q:\n", c.Name)
		Disassemble(c.Code, c.Constants, w)
	case ObjFn:
		f := i.Fn(v)
		fmt.Fprintf(w, "fn/%d:\n", f.Arity)
		Disassemble(f.Code, f.Constants, w)
	default:
		fmt.Fprintf(w, "<%s>\n", t)
	}
}
