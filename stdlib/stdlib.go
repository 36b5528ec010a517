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

// Package stdlib registers the small set of native functions a hosted
// script can expect in its global table: print, type, tostring, and the
// array.range iterator used by `for x in e`. Every function here is built
// purely on the vm package's embedding API (native_fn, push/pop/at,
// make_string, table_set), the same surface a third-party host library
// would use.
package stdlib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/db47h/lune/vm"
)

// Open registers the standard library into i's global table.
func Open(i *vm.Instance) {
	g := i.Global()
	i.TableSet(g, i.MakeString("print"), i.MakeNative(nativePrint))
	i.TableSet(g, i.MakeString("type"), i.MakeNative(nativeType))
	i.TableSet(g, i.MakeString("tostring"), i.MakeNative(nativeToString))

	arrayLib := i.MakeTable()
	i.TableSet(arrayLib, i.MakeString("range"), i.MakeNative(nativeArrayRange))
	i.TableSet(arrayLib, i.MakeString("push"), i.MakeNative(nativeArrayPush))
	i.TableSet(arrayLib, i.MakeString("length"), i.MakeNative(nativeArrayLength))
	i.TableSet(g, i.MakeString("array"), arrayLib)
}

// popArgs pops the topmost argc values and returns them in caller-left-to-
// right order, consuming the native's entire argument region (a native
// callback is responsible for popping its own arguments).
func popArgs(i *vm.Instance, argc int) []vm.Value {
	a := make([]vm.Value, argc)
	for k := argc - 1; k >= 0; k-- {
		a[k] = i.Pop()
	}
	return a
}

func typeName(i *vm.Instance, v vm.Value) string {
	switch {
	case vm.IsNumber(v):
		return "number"
	case vm.IsNull(v):
		return "null"
	case vm.IsBool(v):
		return "bool"
	case vm.IsString(v):
		return "string"
	case vm.IsObject(v):
		t, ok := i.ObjectType(v)
		if !ok {
			return "object"
		}
		switch t {
		case vm.ObjChunk, vm.ObjFn, vm.ObjClosure, vm.ObjNativeFn:
			return "function"
		default:
			return t.String()
		}
	default:
		return "object"
	}
}

// display renders v the way print/tostring present it: literal text for
// numbers/strings/bools/null, and the bare type name (as type returns it,
// e.g. "table" or "function") for any heap object, since none of them
// carry a host-meaningful string form.
func display(i *vm.Instance, v vm.Value) string {
	switch {
	case vm.IsNumber(v):
		return strconv.FormatFloat(vm.GetNumber(v), 'g', -1, 64)
	case vm.IsNull(v):
		return "null"
	case vm.IsBool(v):
		return strconv.FormatBool(vm.IsTrue(v))
	case vm.IsString(v):
		return i.GetString(v)
	default:
		return typeName(i, v)
	}
}

func nativePrint(i *vm.Instance, argc int) (int, error) {
	args := popArgs(i, argc)
	parts := make([]string, len(args))
	for k, v := range args {
		parts[k] = display(i, v)
	}
	fmt.Fprintln(i.Output(), strings.Join(parts, " "))
	return 0, nil
}

func nativeType(i *vm.Instance, argc int) (int, error) {
	args := popArgs(i, argc)
	if len(args) != 1 {
		i.RuntimeError("type: expected 1 argument, got %d", len(args))
	}
	i.Push(i.MakeString(typeName(i, args[0])))
	return 1, nil
}

func nativeToString(i *vm.Instance, argc int) (int, error) {
	args := popArgs(i, argc)
	if len(args) != 1 {
		i.RuntimeError("tostring: expected 1 argument, got %d", len(args))
	}
	i.Push(i.MakeString(display(i, args[0])))
	return 1, nil
}

// nativeArrayRange returns a fresh iterator native closing over its own
// cursor: `for x in array.range(a, b)` yields a, a+1, ..., b-1, then null.
func nativeArrayRange(i *vm.Instance, argc int) (int, error) {
	args := popArgs(i, argc)
	if len(args) != 2 || !vm.IsNumber(args[0]) || !vm.IsNumber(args[1]) {
		i.RuntimeError("array.range: expected two numbers")
	}
	cur := vm.GetNumber(args[0])
	end := vm.GetNumber(args[1])
	iter := i.MakeNative(func(inner *vm.Instance, argc int) (int, error) {
		popArgs(inner, argc)
		if cur >= end {
			inner.Push(vm.ValueNull)
			return 1, nil
		}
		v := vm.MakeNumber(cur)
		cur++
		inner.Push(v)
		return 1, nil
	})
	i.Push(iter)
	// iter is only reachable from the caller's stack slot for the duration
	// of the for-in loop; once that slot is popped it must be collectable,
	// not pinned for the Instance's whole lifetime.
	i.ResumeCollect(iter)
	return 1, nil
}

func nativeArrayPush(i *vm.Instance, argc int) (int, error) {
	args := popArgs(i, argc)
	if len(args) != 2 {
		i.RuntimeError("array.push: expected 2 arguments, got %d", len(args))
	}
	i.Push(i.ArrayPush(args[0], args[1]))
	return 1, nil
}

func nativeArrayLength(i *vm.Instance, argc int) (int, error) {
	args := popArgs(i, argc)
	if len(args) != 1 {
		i.RuntimeError("array.length: expected 1 argument, got %d", len(args))
	}
	i.Push(vm.MakeNumber(float64(i.ArrayLength(args[0]))))
	return 1, nil
}
