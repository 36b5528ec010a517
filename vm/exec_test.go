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

package vm_test

import (
	"testing"

	"github.com/db47h/lune/vm"
)

// chunk builds a zero-arg Chunk out of raw opcodes, for tests that exercise
// the dispatch loop directly without going through a compiler.
func chunk(i *vm.Instance, code []uint16, constants []vm.Value) vm.Value {
	return i.NewChunk("test", code, constants, nil)
}

func TestExecArithmetic(t *testing.T) {
	i := vm.Open()
	// PUSHC 0 (2); PUSHC 1 (3*4... build 3 then 4 then MUL then ADD)
	constants := []vm.Value{vm.MakeNumber(2), vm.MakeNumber(3), vm.MakeNumber(4)}
	code := []uint16{
		uint16(vm.OpPushC), 0, // 2
		uint16(vm.OpPushC), 1, // 3
		uint16(vm.OpPushC), 2, // 4
		uint16(vm.OpMul),      // 3*4 = 12
		uint16(vm.OpAdd),      // 2+12 = 14
		uint16(vm.OpRet), 1,
	}
	c := chunk(i, code, constants)
	n, err := i.Exec(c, 0)
	if err != nil {
		t.Fatalf("Exec: %+v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 return value, got %d", n)
	}
	got := vm.GetNumber(i.At(i.Depth() - 1))
	if got != 14 {
		t.Errorf("got %v, want 14", got)
	}
}

func TestExecRetZeroLeavesNoValue(t *testing.T) {
	i := vm.Open()
	code := []uint16{uint16(vm.OpRet), 0}
	c := chunk(i, code, nil)
	depthBefore := i.Depth()
	n, err := i.Exec(c, 0)
	if err != nil {
		t.Fatalf("Exec: %+v", err)
	}
	if n != 0 {
		t.Errorf("got %d return values, want 0", n)
	}
	if i.Depth() != depthBefore {
		t.Errorf("stack depth changed: %d -> %d", depthBefore, i.Depth())
	}
}

func TestExecCallNative(t *testing.T) {
	i := vm.Open()
	called := false
	native := i.MakeNative(func(i *vm.Instance, argc int) (int, error) {
		called = true
		if argc != 1 {
			t.Fatalf("native: expected argc=1, got %d", argc)
		}
		v := i.Pop()
		i.Push(vm.MakeNumber(vm.GetNumber(v) + 1))
		return 1, nil
	})
	constants := []vm.Value{native, vm.MakeNumber(41)}
	code := []uint16{
		uint16(vm.OpPushC), 1, // 41
		uint16(vm.OpPushC), 0, // native fn
		uint16(vm.OpCall), 1,
		uint16(vm.OpRet), 1,
	}
	c := chunk(i, code, constants)
	n, err := i.Exec(c, 0)
	if err != nil {
		t.Fatalf("Exec: %+v", err)
	}
	if !called {
		t.Fatalf("native callback was not invoked")
	}
	if n != 1 || vm.GetNumber(i.At(i.Depth()-1)) != 42 {
		t.Errorf("got n=%d value=%v, want n=1 value=42", n, i.At(i.Depth()-1))
	}
}

func TestExecStackUnderflowReturnsError(t *testing.T) {
	i := vm.Open()
	code := []uint16{uint16(vm.OpAdd), uint16(vm.OpRet), 0}
	c := chunk(i, code, nil)
	_, err := i.Exec(c, 0)
	if err == nil {
		t.Fatalf("expected an error from popping an empty stack")
	}
}

func TestTableSetGet(t *testing.T) {
	i := vm.Open()
	table := i.MakeTable()
	key := i.MakeString("k")
	val := vm.MakeNumber(7)
	i.TableSet(table, key, val)
	got := i.TableGet(table, key)
	if vm.GetNumber(got) != 7 {
		t.Errorf("TableGet: got %v, want 7", vm.GetNumber(got))
	}
}

func TestArrayPushLengthAt(t *testing.T) {
	i := vm.Open()
	a := i.MakeArray()
	i.ArrayPush(a, vm.MakeNumber(1))
	i.ArrayPush(a, vm.MakeNumber(2))
	if got := i.ArrayLength(a); got != 2 {
		t.Errorf("ArrayLength: got %d, want 2", got)
	}
	if got := vm.GetNumber(i.ArrayAt(a, 1)); got != 2 {
		t.Errorf("ArrayAt(1): got %v, want 2", got)
	}
}

func TestMakeStringRoundTrip(t *testing.T) {
	i := vm.Open()
	v := i.MakeString("hello")
	if got := i.GetString(v); got != "hello" {
		t.Errorf("GetString: got %q, want %q", got, "hello")
	}
}

func TestMakeNumberRoundTrip(t *testing.T) {
	for _, n := range []float64{0, 1, -1, 3.5, 1e300, -1e-300} {
		v := vm.MakeNumber(n)
		if got := vm.GetNumber(v); got != n {
			t.Errorf("MakeNumber(%v): got %v", n, got)
		}
	}
}

func TestCollectReclaimsUnreachableObjects(t *testing.T) {
	i := vm.Open()
	// Allocate and unpin (as OpMakeT/OpClose etc. do once installed) a
	// table that is then never rooted anywhere, alongside one kept alive
	// on the stack.
	garbage := i.MakeTable()
	i.ResumeCollect(garbage)

	kept := i.MakeTable()
	i.ResumeCollect(kept)
	i.Push(kept)

	n := i.Collect()
	if n == 0 {
		t.Errorf("Collect: expected at least one object reclaimed")
	}
	// Idempotent: nothing mutated since, so a second pass finds nothing new.
	if n2 := i.Collect(); n2 != 0 {
		t.Errorf("Collect: second call reclaimed %d, want 0", n2)
	}
}
