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

// MakeNative wraps a Go function as a callable lune value.
func (i *Instance) MakeNative(fn NativeFn) Value {
	v, obj := i.Allocate(ObjNativeFn)
	obj.native = fn
	return v
}

// MakePtr wraps an opaque host pointer/value as a lune value. The payload
// is freed (dropped) when the object is collected; Go's GC, not this
// package, owns its actual memory.
func (i *Instance) MakePtr(p any) Value {
	v, obj := i.Allocate(ObjPtr)
	obj.ptr = p
	return v
}

// GetPtr returns the opaque payload wrapped by MakePtr.
func (i *Instance) GetPtr(v Value) any {
	obj := i.heap.get(v)
	if obj == nil || obj.Type != ObjPtr {
		i.fatalf("get_ptr: not a ptr")
	}
	return obj.ptr
}

// MakeString interns s and returns its Value.
func (i *Instance) MakeString(s string) Value {
	return i.strings.intern(s)
}

// GetString returns the text of a string Value.
func (i *Instance) GetString(v Value) string {
	if !IsString(v) {
		i.fatalf("get_string: not a string")
	}
	return i.strings.text(v)
}

// RuntimeError raises a fatal error with a located, formatted message.
// Native library functions use this instead of returning a plain Go error,
// keeping a single fatal-error channel across both core and library code.
func (i *Instance) RuntimeError(format string, args ...any) {
	i.fatalf(format, args...)
}
