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

// Package lune ties the compiler and vm packages together behind the
// loadstring/dostring embedding calls. It exists as a separate package so
// that vm never imports compiler (vm.Instance is usable standalone by a
// host that only ever builds Chunks through the native allocation API).
package lune

import (
	"github.com/db47h/lune/compiler"
	"github.com/db47h/lune/vm"
)

// LoadString tokenizes, parses and compiles src as a module named modName,
// returning the resulting Chunk value. The returned value stays pinned
// against GC, whether or not it is executed, until the caller calls
// vm.ResumeCollect on it (DoString does so once execution finishes).
func LoadString(i *vm.Instance, src []byte, modName string) (vm.Value, error) {
	return compiler.Compile(i, src, modName)
}

// DoString loads src as a module named modName and immediately executes it
// with zero arguments, returning the number of values (0 or 1) it returned.
func DoString(i *vm.Instance, src []byte, modName string) (int, error) {
	chunk, err := LoadString(i, src, modName)
	if err != nil {
		return 0, err
	}
	n, err := i.Exec(chunk, 0)
	i.ResumeCollect(chunk)
	return n, err
}
