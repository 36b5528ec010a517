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
	"strings"
	"testing"

	"github.com/db47h/lune/compiler"
	"github.com/db47h/lune/vm"
)

// We're not checking whole messages, just that each malformed input is
// rejected and, where a substring is given, that the message mentions it
// (mirroring the teacher assembler's error tests, which don't match
// diagnostics verbatim either).
func TestCompileErrors(t *testing.T) {
	data := []struct {
		name     string
		src      string
		contains string
	}{
		{"unterminated_string", `var s = "hello`, ""},
		{"unexpected_token", `var = 1`, ""},
		{"unclosed_brace", `if true { return 1`, ""},
		{"missing_paren", `var f = fn(x { return x }`, ""},
		{"else_after_else", `if true { } else { } else { }`, ""},
		{"bad_assign_target", `1 = 2`, ""},
		{"multiple_decimal_points", `var a = 1.2.3`, "decimal point"},
	}
	for _, tt := range data {
		t.Run(tt.name, func(t *testing.T) {
			i := vm.Open()
			_, err := compiler.Compile(i, []byte(tt.src), tt.name)
			if err == nil {
				t.Fatalf("Compile(%q): expected an error, got none", tt.src)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Compile(%q): error %q does not mention %q", tt.src, err.Error(), tt.contains)
			}
		})
	}
}

func TestCompileValidProgramsProduceNoError(t *testing.T) {
	data := []string{
		``,
		`return`,
		`var a = 1 return a`,
		`var f = fn(x, y) { return x + y } return f(1, 2)`,
		`var t = { a: 1 } return t.a`,
		`var a = [1, 2, 3] return a`,
		`for x in array.range(0, 3) { }`,
		`while false { break }`,
	}
	for _, src := range data {
		i := vm.Open()
		if _, err := compiler.Compile(i, []byte(src), "t"); err != nil {
			t.Errorf("Compile(%q): unexpected error: %+v", src, err)
		}
	}
}

// Recompiling the same source twice with equal module names produces
// equivalent bytecode.
func TestRecompileIsDeterministic(t *testing.T) {
	src := `var a = 2 + 3 * 4  var f = fn(x) { return x + a }  return f(1)`
	i := vm.Open()
	c1, err := compiler.Compile(i, []byte(src), "m")
	if err != nil {
		t.Fatalf("first Compile: %+v", err)
	}
	c2, err := compiler.Compile(i, []byte(src), "m")
	if err != nil {
		t.Fatalf("second Compile: %+v", err)
	}
	ch1, ch2 := i.Chunk(c1), i.Chunk(c2)
	if len(ch1.Code) != len(ch2.Code) {
		t.Fatalf("code length differs: %d vs %d", len(ch1.Code), len(ch2.Code))
	}
	for k := range ch1.Code {
		if ch1.Code[k] != ch2.Code[k] {
			t.Errorf("code[%d] differs: %d vs %d", k, ch1.Code[k], ch2.Code[k])
		}
	}
	if len(ch1.Constants) != len(ch2.Constants) {
		t.Fatalf("constant pool length differs: %d vs %d", len(ch1.Constants), len(ch2.Constants))
	}
}
