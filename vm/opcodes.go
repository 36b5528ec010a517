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

// Op is a bytecode opcode. Every emitted instruction is one Op followed,
// for the opcodes that need it, by a single 16-bit argument cell.
type Op uint16

// Bytecode opcodes.
const (
	OpNop Op = iota
	OpPush    // PUSH n: push n nulls
	OpDup
	OpPushC // PUSHC k: push constants[k]
	OpPushN // push null
	OpPushT // push true
	OpPushF // push false
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpEq
	OpNeq
	OpGt
	OpGte
	OpAnd
	OpOr
	OpNot
	OpLoad    // LOAD i: local
	OpStore   // STORE i: local
	OpLoadUp  // LOADUP i: upvalue
	OpStoreUp // STOREUP i: upvalue
	OpClose   // CLOSE n
	OpCall    // CALL n
	OpMakeT   // MAKET n: n pairs
	OpMakeA   // MAKEA n: n elements
	OpSetT
	OpGetT
	OpGetG
	OpJmp  // unconditional, signed offset
	OpJmpC // if falsy
	OpJmpN // if null
	OpRet  // RET n: 0 or 1
)

var opNames = [...]string{
	OpNop:     "nop",
	OpPush:    "push",
	OpDup:     "dup",
	OpPushC:   "pushc",
	OpPushN:   "pushn",
	OpPushT:   "pusht",
	OpPushF:   "pushf",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpDiv:     "div",
	OpNeg:     "neg",
	OpEq:      "eq",
	OpNeq:     "neq",
	OpGt:      "gt",
	OpGte:     "gte",
	OpAnd:     "and",
	OpOr:      "or",
	OpNot:     "not",
	OpLoad:    "load",
	OpStore:   "store",
	OpLoadUp:  "loadup",
	OpStoreUp: "storeup",
	OpClose:   "close",
	OpCall:    "call",
	OpMakeT:   "maket",
	OpMakeA:   "makea",
	OpSetT:    "sett",
	OpGetT:    "gett",
	OpGetG:    "getg",
	OpJmp:     "jmp",
	OpJmpC:    "jmpc",
	OpJmpN:    "jmpn",
	OpRet:     "ret",
}

// hasArg reports whether op is followed by a 16-bit argument cell.
func (op Op) hasArg() bool {
	switch op {
	case OpNop, OpDup, OpPushN, OpPushT, OpPushF,
		OpAdd, OpSub, OpMul, OpDiv, OpNeg,
		OpEq, OpNeq, OpGt, OpGte, OpAnd, OpOr, OpNot,
		OpSetT, OpGetT, OpGetG:
		return false
	default:
		return true
	}
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "???"
}
