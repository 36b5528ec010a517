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

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/db47h/lune/internal/errw"
	"github.com/db47h/lune/lang/lune"
	"github.com/db47h/lune/stdlib"
	"github.com/db47h/lune/vm"
)

// formatValue renders a returned top-level Value for the "=> " line. Heap
// objects (tables, arrays, functions) have no host-meaningful string form,
// so they print as their ObjectType name ("table", "closure", "native", ...);
// unlike stdlib's tostring, callable kinds are not merged into "function".
func formatValue(i *vm.Instance, v vm.Value) string {
	switch {
	case vm.IsNumber(v):
		return strconv.FormatFloat(vm.GetNumber(v), 'g', -1, 64)
	case vm.IsNull(v):
		return "null"
	case vm.IsBool(v):
		return strconv.FormatBool(vm.IsTrue(v))
	case vm.IsString(v):
		return strconv.Quote(i.GetString(v))
	default:
		if t, ok := i.ObjectType(v); ok {
			return t.String()
		}
		return "?"
	}
}

var (
	debug     bool
	noDbgInfo bool
	execStats bool
	disasm    bool
	repl      bool
	stackSize int
	gcStats   bool
)

func atExit(i *vm.Instance, err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	i.DumpState(os.Stderr)
	os.Exit(1)
}

func main() {
	var (
		err error
		i   *vm.Instance
	)

	flag.BoolVar(&debug, "debug", false, "print the full error traceback, and the VM's frame/stack state, on failure")
	flag.BoolVar(&noDbgInfo, "nodebuginfo", false, "run without per-op source locations (tracebacks report 0:0)")
	flag.BoolVar(&execStats, "stats", false, "print instruction-count statistics on exit")
	flag.BoolVar(&disasm, "disasm", false, "print a bytecode listing instead of running the script")
	flag.BoolVar(&disasm, "dump", false, "alias for -disasm")
	flag.BoolVar(&repl, "repl", false, "start an interactive read-eval-print loop instead of running a script")
	flag.IntVar(&stackSize, "stack-size", 0, "override the value-stack depth (0: use the VM default)")
	flag.BoolVar(&gcStats, "gc-stats", false, "run a GC collection and print heap object counts on exit")
	flag.Parse()

	defer func() { atExit(i, err) }()

	out := errw.New(os.Stdout)
	opts := []vm.Option{vm.WithOutput(out)}
	if noDbgInfo {
		opts = append(opts, vm.WithDebugInfo(false))
	}
	if stackSize > 0 {
		opts = append(opts, vm.WithStackSize(stackSize))
	}
	i = vm.Open(opts...)
	defer i.Destroy()
	stdlib.Open(i)

	if repl {
		err = replLoop(i, out)
		if err == nil && out.Err != nil {
			err = out.Err
		}
		return
	}

	if flag.NArg() != 1 {
		err = fmt.Errorf("usage: lune <script.ln>")
		return
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		return
	}

	if disasm {
		chunk, loadErr := lune.LoadString(i, src, flag.Arg(0))
		if loadErr != nil {
			err = loadErr
			return
		}
		i.DisassembleValue(chunk, os.Stdout)
		return
	}

	start := time.Now()
	n, runErr := lune.DoString(i, src, flag.Arg(0))
	if runErr != nil {
		err = runErr
		return
	}
	if execStats {
		delta := time.Since(start)
		fmt.Fprintf(os.Stderr, "executed %d instructions in %v\n", i.InstructionCount(), delta)
	}
	for k := 0; k < n; k++ {
		fmt.Fprintf(os.Stdout, "=> %s\n", formatValue(i, i.At(i.Depth()-n+k)))
	}
	if gcStats {
		before, _ := i.HeapStats()
		reclaimed := i.Collect()
		after, live := i.HeapStats()
		fmt.Fprintf(os.Stderr, "gc: %d objects before, %d reclaimed, %d live after (%d slots)\n",
			before, reclaimed, live, after)
	}
	if out.Err != nil {
		err = out.Err
	}
}
