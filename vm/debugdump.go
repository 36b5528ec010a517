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

import (
	"fmt"
	"io"
)

// DumpState writes a snapshot of the VM's internal state to w: the active
// frame trace (innermost first, with PC/line/col), followed by the value
// stack contents. It is meant for a host's own -debug-style diagnostics,
// not for the lexical/runtime error message itself (see RuntimeError.Error
// for that). Exec unwinds the frame and value stacks on a fatal error, so a
// dump taken after Exec has returned an error shows only the frames and
// values that lie below the failed call.
func (i *Instance) DumpState(w io.Writer) {
	fmt.Fprintf(w, "frames (%d):\n", i.depth)
	for f := i.depth - 1; f >= 0; f-- {
		fr := &i.frames[f]
		line, col := fr.location()
		fmt.Fprintf(w, "  #%d %s|%d:%d pc=%d base=%d\n", f, fr.module, line, col, fr.ip, fr.base)
	}
	fmt.Fprintf(w, "stack (%d):\n", i.Depth())
	for n := 0; n <= i.top; n++ {
		fmt.Fprintf(w, "  [%d] %s\n", n, i.describeValue(i.stack[n]))
	}
}

// describeValue renders a Value for DumpState without requiring heap
// payloads to carry a host-meaningful string form.
func (i *Instance) describeValue(v Value) string {
	if s, ok := constantLiteral(v); ok {
		return s
	}
	if IsString(v) {
		return fmt.Sprintf("%q", i.GetString(v))
	}
	if t, ok := i.ObjectType(v); ok {
		return fmt.Sprintf("<%s>", t)
	}
	return "<?>"
}
