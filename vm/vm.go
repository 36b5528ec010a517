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
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	defaultStackSize     = 256
	defaultCallStackSize = 32
)

// ErrorFn is the host fatal-error callback. It receives the VM instance and
// a formatted, located message. When it returns, the core unwinds to the
// nearest top-level entry.
type ErrorFn func(i *Instance, message string)

// Instance is a lune virtual machine. Instances do not share state and may
// coexist freely; a single Instance is not safe for concurrent use from
// multiple goroutines.
type Instance struct {
	stack []Value
	top   int // index of the topmost value, -1 when empty

	frames []frame
	depth  int

	heap    *heap
	strings internTable
	global  Value // object Value referencing the global Table

	output  io.Writer
	onErr   ErrorFn
	onAlloc AllocFn

	debugInfo bool
	insCount  int64
	lastRet   int // return-value count of the most recently executed RET
}

// AllocFn observes every heap allocation. It receives the type of object
// being created and the number of live (non-tombstoned) objects on the
// heap after it. Returning a non-nil error aborts the allocation as a
// fatal VM error, giving a host a way to cap heap growth.
type AllocFn func(t ObjectType, liveObjects int) error

// Option configures an Instance at Open time, following the functional
// options idiom.
type Option func(*Instance)

// WithStackSize overrides the fixed value-stack depth (default 256).
func WithStackSize(n int) Option {
	return func(i *Instance) { i.stack = make([]Value, n) }
}

// WithCallStackSize overrides the fixed frame-stack depth (default 32).
func WithCallStackSize(n int) Option {
	return func(i *Instance) { i.frames = make([]frame, n) }
}

// WithOutput sets the writer native library functions should use for
// console-style output. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Instance) { i.output = w }
}

// WithErrorHandler installs the host fatal-error callback. If omitted,
// errors are only reported via the error return values of LoadString/
// DoString/Exec.
func WithErrorHandler(fn ErrorFn) Option {
	return func(i *Instance) { i.onErr = fn }
}

// WithDebugInfo enables or disables the use of per-op (line, col) debug maps
// (default on). When disabled, frames ignore the maps, so tracebacks and
// DumpState report every location as 0:0. The compiler still records the
// maps either way, so disabling it does not make compilation smaller or
// faster.
func WithDebugInfo(enabled bool) Option {
	return func(i *Instance) { i.debugInfo = enabled }
}

// WithAllocator installs a hook invoked after every heap allocation (Table,
// Array, Closure, Chunk, Fn, native function, pointer). Go's runtime already
// owns the actual memory, so unlike a C embedding's malloc/free pair this
// cannot replace the allocation strategy itself; it exists for host-side
// accounting — tracking live object counts, or rejecting further allocation
// once a host-defined budget is exceeded.
func WithAllocator(fn AllocFn) Option {
	return func(i *Instance) { i.onAlloc = fn }
}

// Open creates a new VM instance. Go's runtime already owns allocation/
// deallocation of every value this package produces, so unlike the
// original's C embedding API there is no separate allocator/deallocator
// pair to supply; WithErrorHandler plays the role of the original's error
// callback parameter.
func Open(opts ...Option) *Instance {
	i := &Instance{
		top:       -1,
		heap:      newHeap(),
		output:    os.Stdout,
		debugInfo: true,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.stack == nil {
		i.stack = make([]Value, defaultStackSize)
	}
	if i.frames == nil {
		i.frames = make([]frame, defaultCallStackSize)
	}
	gv, obj := i.Allocate(ObjTable)
	obj.table = &Table{}
	i.global = gv
	i.ResumeCollect(gv) // the global table is rooted by i.global, not keepalive
	return i
}

// Destroy releases every tracked object and buffer. Go's GC reclaims the
// backing memory once the Instance itself becomes unreachable; Destroy's
// job is to break internal cycles early and make reuse-after-destroy
// detectable.
func (i *Instance) Destroy() {
	i.heap.objects = nil
	i.heap.freeList = nil
	i.heap.keepalive = nil
	i.strings = internTable{}
	i.stack = nil
	i.frames = nil
	i.global = ValueNull
}

// Push pushes v on top of the value stack.
func (i *Instance) Push(v Value) {
	i.top++
	if i.top >= len(i.stack) {
		i.fatalf("stack overflow")
	}
	i.stack[i.top] = v
}

// Pop pops and returns the value on top of the stack.
func (i *Instance) Pop() Value {
	if i.top < 0 {
		i.fatalf("stack underflow")
	}
	v := i.stack[i.top]
	i.top--
	return v
}

// At returns the value at depth idx from the base of the stack (0-indexed).
// It does not pop.
func (i *Instance) At(idx int) Value {
	if idx < 0 || idx > i.top {
		i.fatalf("stack index %d out of range (depth %d)", idx, i.top+1)
	}
	return i.stack[idx]
}

// Depth returns the number of values currently on the stack.
func (i *Instance) Depth() int {
	return i.top + 1
}

// Global returns the Value of the VM's global table, the root all
// unresolved identifiers read and write against.
func (i *Instance) Global() Value {
	return i.global
}

// Output returns the writer installed with WithOutput, for native library
// functions that produce console-style output (defaults to os.Stdout).
func (i *Instance) Output() io.Writer {
	return i.output
}

// InstructionCount returns the number of bytecode instructions dispatched so
// far across all Exec calls on this Instance.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}

// fatalf raises a fatal VM error: it invokes the host error callback if
// one is installed, then panics with a *RuntimeError so the nearest Exec/
// LoadString recover point can unwind and turn it into a returned error.
func (i *Instance) fatalf(format string, args ...any) {
	err := &RuntimeError{Message: errors.Errorf(format, args...).Error()}
	if i.depth > 0 {
		err.Traceback = i.traceback()
	}
	if i.onErr != nil {
		i.onErr(i, err.Error())
	}
	panic(err)
}
