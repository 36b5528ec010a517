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

// Package vm implements the lune virtual machine: a 64-bit NaN-boxed value
// representation, a string intern table, a mark-sweep garbage collector, a
// stack-based bytecode dispatch loop and the host embedding API.
//
// vm has no bearing on any particular source syntax: it only consumes
// compiled Chunk/Fn objects built by the sibling compiler package. A host
// embeds lune by calling Open to create an Instance, pushing arguments with
// Push, and calling Exec, or the LoadString/DoString helpers of package
// lang/lune.
//
// TODO:
//   - disassembler output for Table/Array literals beyond constant indices
//   - generational or incremental collection (out of scope, see the design
//     notes on the collector trigger policy)
package vm
