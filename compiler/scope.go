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

package compiler

// scope is one function body's lexical scope: an ordered list of locals
// (addressable by small index) and an ordered list of upvalues captured
// from an enclosing scope.
//
// Block-level nesting (if/while/for bodies) does not introduce a new scope:
// locals declared inside a block remain visible, and are addressed, for the
// rest of the enclosing function, matching the source's flat per-function
// local space.
type scope struct {
	parent *scope
	locals []string
	upvals []string
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent}
}

// makeLocal appends name to the current scope's locals if not already
// present there, and returns its slot index.
func (s *scope) makeLocal(name string) int {
	for i, n := range s.locals {
		if n == name {
			return i
		}
	}
	idx := len(s.locals)
	s.locals = append(s.locals, name)
	return idx
}

// resolve first checks the current scope's locals and upvals, then walks
// outward. On the first enclosing scope where
// the name is found, it is installed as an upvalue in every intermediate
// scope (including this one) and returned with the upvalue flag set. If the
// name is not found anywhere in the chain, ok is false and the caller
// should treat it as a global reference.
func (s *scope) resolve(name string) (idx int, upval bool, ok bool) {
	for i, n := range s.locals {
		if n == name {
			return i, false, true
		}
	}
	for i, n := range s.upvals {
		if n == name {
			return i, true, true
		}
	}
	if s.parent == nil {
		return 0, false, false
	}
	if _, _, ok := s.parent.resolve(name); !ok {
		return 0, false, false
	}
	idx = len(s.upvals)
	s.upvals = append(s.upvals, name)
	return idx, true, true
}
