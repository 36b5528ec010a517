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
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/lune/vm"
)

func TestDisassembleListsOpsAndJumpTargets(t *testing.T) {
	i := vm.Open()
	constants := []vm.Value{vm.MakeNumber(14)}
	code := []uint16{
		uint16(vm.OpPushC), 0, // 0: pushc 0
		uint16(vm.OpJmp), 1, // 2: jmp -> 5
		uint16(vm.OpNop), // 4
		uint16(vm.OpRet), 1, // 5
	}
	var buf bytes.Buffer
	vm.Disassemble(code, constants, &buf)
	out := buf.String()

	for _, want := range []string{"pushc 0", "; 14", "jmp 1 ; -> 5", "nop", "ret 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly %q missing %q", out, want)
		}
	}

	chunk := i.NewChunk("m", code, constants, nil)
	buf.Reset()
	i.DisassembleValue(chunk, &buf)
	if !strings.Contains(buf.String(), `chunk "m"`) {
		t.Errorf("DisassembleValue header missing chunk name: %q", buf.String())
	}
}
