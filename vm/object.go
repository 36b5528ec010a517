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

// ObjectType tags the variant held by a heap Object record.
type ObjectType uint8

// Heap object kinds.
const (
	ObjChunk ObjectType = iota
	ObjFn
	ObjClosure
	ObjTable
	ObjArray
	ObjNativeFn
	ObjPtr
)

func (t ObjectType) String() string {
	switch t {
	case ObjChunk:
		return "chunk"
	case ObjFn:
		return "function"
	case ObjClosure:
		return "closure"
	case ObjTable:
		return "table"
	case ObjArray:
		return "array"
	case ObjNativeFn:
		return "native"
	case ObjPtr:
		return "ptr"
	default:
		return "?"
	}
}

// DebugLoc is a (line, col) source coordinate, recorded per-op when a Chunk
// or Fn is compiled with debug info.
type DebugLoc struct {
	Line, Col uint16
}

// DebugInfo is the per-op location map of a compiled unit, plus the module
// name used in tracebacks.
type DebugInfo struct {
	Module string
	Locs   []DebugLoc
}

// Chunk is the top-level compiled unit of a source module.
type Chunk struct {
	Name      string
	Code      []uint16
	Constants []Value
	Debug     *DebugInfo
}

// Fn is a compiled function body: its arity, code and constants are
// independent of any particular closure capturing it.
type Fn struct {
	Arity     int
	Code      []uint16
	Constants []Value
	Debug     *DebugInfo
}

// Closure pairs a Fn with its captured values, copied at CLOSE time:
// captures are full values, not aliases into the enclosing frame.
type Closure struct {
	Fn       Value // object Value referencing the captured Fn
	Captures []Value
}

// NativeFn is a host-provided callback. It receives the VM instance and the
// argument count; arguments are the topmost argc stack slots. It must pop
// them and return the count of values (0 or 1) it pushed.
type NativeFn func(i *Instance, argc int) (int, error)

// Table is a string/value map backed by 16 fixed hash buckets.
type Table struct {
	Buckets [16][]TablePair
}

// TablePair is one (key, value) entry of a Table bucket.
type TablePair struct {
	Key, Value Value
}

// Array is a dynamic vector of values.
type Array struct {
	Values []Value
}

// object is one heap record: a tagged union plus the GC mark bit. Only
// one of the pointer fields is non-nil/meaningful, selected by Type.
type object struct {
	Type ObjectType
	mark bool

	chunk   *Chunk
	fn      *Fn
	closure *Closure
	table   *Table
	array   *Array
	native  NativeFn
	ptr     any
}
