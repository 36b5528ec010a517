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

// frame is the per-call VM state: the callee, its code and constant pool,
// its capture vector (for closures), the instruction pointer and the stack
// base at which its arguments/locals begin.
type frame struct {
	callee    Value
	code      []uint16
	constants []Value
	captures  []Value
	ip        int
	base      int // top - n + 1 at call time: the first slot of the argument/local region
	module    string
	debug     *DebugInfo
}

// location returns the (line, col) of the current instruction, or (0, 0) if
// the frame has no debug map (compiled with debug info disabled).
func (f *frame) location() (line, col uint16) {
	if f.debug == nil || f.ip >= len(f.debug.Locs) {
		return 0, 0
	}
	loc := f.debug.Locs[f.ip]
	return loc.Line, loc.Col
}
