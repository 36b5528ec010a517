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

package compiler_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/db47h/lune/lang/lune"
	"github.com/db47h/lune/stdlib"
	"github.com/db47h/lune/vm"
)

// run compiles and executes src in a fresh instance with the standard
// library installed, returning the single value it produced.
func run(t *testing.T, src string) (*vm.Instance, vm.Value) {
	t.Helper()
	i := vm.Open()
	stdlib.Open(i)
	n, err := lune.DoString(i, []byte(src), "test")
	require.NoError(t, err, "DoString(%q)", src)
	require.Equal(t, 1, n, "DoString(%q): return value count", src)
	return i, i.At(i.Depth() - 1)
}

func number(t *testing.T, v vm.Value) float64 {
	t.Helper()
	require.True(t, vm.IsNumber(v), "expected a number value")
	return vm.GetNumber(v)
}

// The core end-to-end scenarios: arithmetic, calls, closures, loops, table
// mutation, and the array.range iterator.
func TestScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{"arithmetic", `var a = 2 + 3 * 4  return a`, 14},
		{"function call", `var f = fn(x, y) { return x + y }  return f(10, 32)`, 42},
		{"closures", `var make = fn(n) { return fn() { return n } }  var g = make(7)  return g() + g()`, 14},
		{"while loop", `var i = 0  while i < 5 { i = i + 1 }  return i`, 5},
		{"table field mutation", `var t = { a: 1, b: 2 }  t.a = t.a + t.b  return t.a`, 3},
		{"for-in over array.range", `var s = 0  for x in array.range(1, 5) { s = s + x }  return s`, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, v := run(t, tt.src)
			if got := number(t, v); got != tt.want {
				t.Errorf("%s: got %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEmptyProgramReturnsNoValues(t *testing.T) {
	i := vm.Open()
	stdlib.Open(i)
	n, err := lune.DoString(i, []byte(``), "empty")
	require.NoError(t, err)
	require.Equal(t, 0, n, "empty program return value count")
}

func TestBareReturnReturnsNoValues(t *testing.T) {
	i := vm.Open()
	stdlib.Open(i)
	n, err := lune.DoString(i, []byte(`return`), "bare-return")
	require.NoError(t, err)
	require.Equal(t, 0, n, "bare return value count")
}

func TestIfElseifElseSelectsExactlyOneArm(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{1, 10},
		{2, 20},
		{3, 30},
	}
	src := `var x = %v
if x is 1 {
	return 10
} elseif x is 2 {
	return 20
} else {
	return 30
}`
	for _, tt := range tests {
		_, v := run(t, fmt.Sprintf(src, tt.x))
		if got := number(t, v); got != tt.want {
			t.Errorf("x=%v: got %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestBreakExitsOnlyInnermostLoop(t *testing.T) {
	src := `
var outer = 0
var inner = 0
while outer < 3 {
	outer = outer + 1
	while true {
		inner = inner + 1
		break
	}
}
return inner`
	_, v := run(t, src)
	if got := number(t, v); got != 3 {
		t.Errorf("inner break count: got %v, want 3", got)
	}
}

func TestDivisionByZeroDoesNotCrash(t *testing.T) {
	_, v := run(t, `var a = 1  var b = 0  return a / b`)
	got := number(t, v)
	if !math.IsInf(got, 1) {
		t.Errorf("1/0: got %v, want +Inf", got)
	}

	// 0/0 produces the hardware's default quiet NaN, which has every bit of
	// this VM's nanMask set (amd64 also sets the sign bit; the tag bits are
	// zero). vm.IsNumber only looks at the nanMask bits, so it reports false
	// for this one result; all that matters here is that running the
	// division does not panic.
	_, v = run(t, `var a = 0  var b = 0  return a / b`)
	if vm.IsNumber(v) {
		t.Errorf("0/0: unexpectedly decoded as a number (%v)", vm.GetNumber(v))
	}
}

func TestNullArithmeticDoesNotCrash(t *testing.T) {
	// The arithmetic result is undefined; only completing without an error
	// matters. ADD reads null's word as a NaN, and the NaN it propagates
	// keeps the nanMask bits, so the result never decodes as a number.
	_, v := run(t, `var a = null  return a + 1`)
	if vm.IsNumber(v) {
		t.Fatalf("null + 1: unexpectedly decoded as a number (%v)", vm.GetNumber(v))
	}
}

func TestAndShortCircuits(t *testing.T) {
	// The right operand must never execute when the left is falsy. Captures
	// are copies, so the call counter lives in a table the closure shares
	// with the caller by reference.
	src := `
var st = { calls: 0 }
var sideEffect = fn() { st.calls = st.calls + 1  return true }
var result = false and sideEffect()
return st.calls`
	_, v := run(t, src)
	if got := number(t, v); got != 0 {
		t.Errorf("and short-circuit: sideEffect called %v times, want 0", got)
	}
}

func TestOrShortCircuits(t *testing.T) {
	src := `
var st = { calls: 0 }
var sideEffect = fn() { st.calls = st.calls + 1  return true }
var result = true or sideEffect()
return st.calls`
	_, v := run(t, src)
	if got := number(t, v); got != 0 {
		t.Errorf("or short-circuit: sideEffect called %v times, want 0", got)
	}
}

func TestOrReturnsTruthyLeftOperand(t *testing.T) {
	// OR preserves the actual operand value rather than collapsing to a
	// bool: a truthy number on the left must come back unchanged.
	_, v := run(t, `var x = 5  return x or 9`)
	if got := number(t, v); got != 5 {
		t.Errorf("5 or 9: got %v, want 5", got)
	}
}

func TestAndReturnsBoolNotOperand(t *testing.T) {
	// AND discards its operands and returns a bool, unlike OR.
	_, v := run(t, `return 5 and 9`)
	if !vm.IsBool(v) || !vm.IsTrue(v) {
		t.Errorf("5 and 9: expected true, got a non-bool or false value")
	}
}

