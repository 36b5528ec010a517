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

// NewChunk wraps a compiled top-level unit as a heap Chunk object. The
// compiler package calls this once per compiled module; the returned Value
// is pinned (NoCollect) until the caller explicitly calls ResumeCollect,
// so a collection triggered mid-compile can't reclaim it.
func (i *Instance) NewChunk(name string, code []uint16, constants []Value, debug *DebugInfo) Value {
	v, obj := i.Allocate(ObjChunk)
	obj.chunk = &Chunk{Name: name, Code: code, Constants: constants, Debug: debug}
	return v
}

// NewFn wraps a compiled function body as a heap Fn object.
func (i *Instance) NewFn(arity int, code []uint16, constants []Value, debug *DebugInfo) Value {
	v, obj := i.Allocate(ObjFn)
	obj.fn = &Fn{Arity: arity, Code: code, Constants: constants, Debug: debug}
	return v
}

// Chunk returns the *Chunk payload of a Chunk-typed Value, or nil.
func (i *Instance) Chunk(v Value) *Chunk {
	if obj := i.heap.get(v); obj != nil && obj.Type == ObjChunk {
		return obj.chunk
	}
	return nil
}

// Fn returns the *Fn payload of a Fn-typed Value, or nil.
func (i *Instance) Fn(v Value) *Fn {
	if obj := i.heap.get(v); obj != nil && obj.Type == ObjFn {
		return obj.fn
	}
	return nil
}

// ObjectType returns the heap object type tag of v, or a false ok if v is
// not an object.
func (i *Instance) ObjectType(v Value) (t ObjectType, ok bool) {
	if !IsObject(v) {
		return 0, false
	}
	obj := i.heap.get(v)
	if obj == nil {
		return 0, false
	}
	return obj.Type, true
}
