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

// Exec calls a chunk/fn/closure/native value with argc arguments already on
// top of the value stack. It returns the number of values (0 or 1) the
// callable returned. On error, the VM unwinds and Exec returns (0, err).
func (i *Instance) Exec(callable Value, argc int) (ret int, err error) {
	entryDepth := i.depth
	entryTop := i.top - argc // stack height below the arguments, for unwind

	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(*RuntimeError)
			if !ok {
				panic(r)
			}
			i.depth = entryDepth
			i.top = entryTop
			ret, err = 0, rerr
		}
	}()

	n, enteredFrame := i.call(callable, argc)
	if !enteredFrame {
		return n, nil
	}
	i.dispatch(entryDepth)
	return i.lastRet, nil
}

// lastRet records the return-value count of the most recently completed RET,
// read by Exec once dispatch unwinds back to entryDepth.
// (kept on Instance rather than threaded through dispatch's return, since
// dispatch exits via falling off the loop condition, not an explicit return
// value)

// call dispatches a single invocation of callable with argc args already on
// the stack. It returns immediately for native callbacks (enteredFrame ==
// false, n == the callback's return count); for Chunk/Fn/Closure callables
// it pushes a new frame and returns (0, true) so the caller enters the
// dispatch loop.
func (i *Instance) call(callable Value, argc int) (n int, enteredFrame bool) {
	if !IsObject(callable) {
		i.fatalf("attempt to call a non-callable value")
	}
	obj := i.heap.get(callable)
	if obj == nil {
		i.fatalf("attempt to call a freed value")
	}
	base := i.top - argc + 1

	switch obj.Type {
	case ObjChunk:
		i.pushFrame(callable, obj.chunk.Code, obj.chunk.Constants, nil, base, obj.chunk.Name, obj.chunk.Debug)
		return 0, true
	case ObjFn:
		i.pushFrame(callable, obj.fn.Code, obj.fn.Constants, nil, base, fnModule(obj.fn), obj.fn.Debug)
		return 0, true
	case ObjClosure:
		inner := i.heap.get(obj.closure.Fn)
		if inner == nil || inner.Type != ObjFn {
			i.fatalf("closure references an invalid function")
		}
		i.pushFrame(callable, inner.fn.Code, inner.fn.Constants, obj.closure.Captures, base, fnModule(inner.fn), inner.fn.Debug)
		return 0, true
	case ObjNativeFn:
		ret, err := obj.native(i, argc)
		if err != nil {
			i.fatalf("%s", err.Error())
		}
		return ret, false
	default:
		i.fatalf("attempt to call a %s value", obj.Type)
		return 0, false
	}
}

// fnModule returns the module a compiled Fn belongs to, or "" if it was
// compiled with debug info disabled (fn.Debug == nil).
func fnModule(fn *Fn) string {
	if fn.Debug == nil {
		return ""
	}
	return fn.Debug.Module
}

func (i *Instance) pushFrame(callee Value, code []uint16, constants []Value, captures []Value, base int, module string, debug *DebugInfo) {
	if i.depth >= len(i.frames) {
		i.fatalf("call stack overflow")
	}
	f := &i.frames[i.depth]
	*f = frame{
		callee:    callee,
		code:      code,
		constants: constants,
		captures:  captures,
		ip:        0,
		base:      base,
		module:    module,
		debug:     debug,
	}
	if !i.debugInfo {
		f.debug = nil
	}
	i.depth++
}

// signed16 reinterprets a raw bytecode cell as a signed 16-bit jump offset.
// Jump offsets are relative to the instruction after the jump.
func signed16(v uint16) int {
	return int(int16(v))
}

// dispatch runs the bytecode interpreter loop until the frame stack unwinds
// back to floor (the depth Exec started at). It operates on a single shared
// value stack across all frames; CALL/RET push/pop frames without any
// native Go recursion, keeping the interpreter a flat switch-dispatch loop.
func (i *Instance) dispatch(floor int) {
	for i.depth > floor {
		f := &i.frames[i.depth-1]
		op := Op(f.code[f.ip])
		i.insCount++
		switch op {
		case OpNop:
			f.ip++

		case OpPush:
			n := int(f.code[f.ip+1])
			for k := 0; k < n; k++ {
				i.Push(ValueNull)
			}
			f.ip += 2

		case OpDup:
			i.Push(i.stack[i.top])
			f.ip++

		case OpPushC:
			k := int(f.code[f.ip+1])
			i.Push(f.constants[k])
			f.ip += 2

		case OpPushN:
			i.Push(ValueNull)
			f.ip++
		case OpPushT:
			i.Push(ValueTrue)
			f.ip++
		case OpPushF:
			i.Push(ValueFalse)
			f.ip++

		case OpAdd:
			rhs := i.Pop()
			i.stack[i.top] = MakeNumber(GetNumber(i.stack[i.top]) + GetNumber(rhs))
			f.ip++
		case OpSub:
			rhs := i.Pop()
			i.stack[i.top] = MakeNumber(GetNumber(i.stack[i.top]) - GetNumber(rhs))
			f.ip++
		case OpMul:
			rhs := i.Pop()
			i.stack[i.top] = MakeNumber(GetNumber(i.stack[i.top]) * GetNumber(rhs))
			f.ip++
		case OpDiv:
			rhs := i.Pop()
			i.stack[i.top] = MakeNumber(GetNumber(i.stack[i.top]) / GetNumber(rhs))
			f.ip++
		case OpNeg:
			i.stack[i.top] = MakeNumber(-GetNumber(i.stack[i.top]))
			f.ip++

		case OpEq:
			rhs := i.Pop()
			i.stack[i.top] = Bool(Equals(i.stack[i.top], rhs))
			f.ip++
		case OpNeq:
			rhs := i.Pop()
			i.stack[i.top] = Bool(!Equals(i.stack[i.top], rhs))
			f.ip++
		case OpGt:
			rhs := i.Pop()
			i.stack[i.top] = Bool(GetNumber(i.stack[i.top]) > GetNumber(rhs))
			f.ip++
		case OpGte:
			rhs := i.Pop()
			i.stack[i.top] = Bool(GetNumber(i.stack[i.top]) >= GetNumber(rhs))
			f.ip++

		case OpAnd:
			rhs := i.Pop()
			lhs := i.Pop()
			i.Push(Bool(Truthy(lhs) && Truthy(rhs)))
			f.ip++
		case OpOr:
			rhs := i.Pop()
			lhs := i.Pop()
			switch {
			case Truthy(lhs):
				i.Push(lhs)
			case Truthy(rhs):
				i.Push(rhs)
			default:
				i.Push(ValueFalse)
			}
			f.ip++
		case OpNot:
			i.stack[i.top] = Bool(!Truthy(i.stack[i.top]))
			f.ip++

		case OpLoad:
			idx := int(f.code[f.ip+1])
			i.Push(i.stack[f.base+idx])
			f.ip += 2
		case OpStore:
			idx := int(f.code[f.ip+1])
			i.stack[f.base+idx] = i.Pop()
			f.ip += 2
		case OpLoadUp:
			idx := int(f.code[f.ip+1])
			i.Push(f.captures[idx])
			f.ip += 2
		case OpStoreUp:
			idx := int(f.code[f.ip+1])
			f.captures[idx] = i.Pop()
			f.ip += 2

		case OpClose:
			n := int(f.code[f.ip+1])
			captures := make([]Value, n)
			for k := n - 1; k >= 0; k-- {
				captures[k] = i.Pop()
			}
			fnVal := i.Pop()
			cv, obj := i.Allocate(ObjClosure)
			obj.closure = &Closure{Fn: fnVal, Captures: captures}
			i.Push(cv)
			i.ResumeCollect(cv)
			f.ip += 2

		case OpCall:
			// A native callback pushes its own 0 or 1 result inline; a
			// Chunk/Fn/Closure callee does so later via its own RET. Either
			// way CALL's net stack effect is exactly what the callee
			// produced — 0 or 1 values, never normalized.
			n := int(f.code[f.ip+1])
			callee := i.Pop()
			i.call(callee, n)
			// Advance past CALL only once the callee is known good, so a
			// fatalf raised by i.call still locates to this instruction
			// rather than the one after it.
			f.ip += 2

		case OpMakeT:
			n := int(f.code[f.ip+1])
			tv := i.MakeTable()
			pairs := make([]TablePair, n)
			for k := n - 1; k >= 0; k-- {
				v := i.Pop()
				key := i.Pop()
				pairs[k] = TablePair{Key: key, Value: v}
			}
			for _, p := range pairs {
				i.TableSet(tv, p.Key, p.Value)
			}
			i.Push(tv)
			i.ResumeCollect(tv)
			f.ip += 2

		case OpMakeA:
			n := int(f.code[f.ip+1])
			av := i.MakeArray()
			elems := make([]Value, n)
			for k := n - 1; k >= 0; k-- {
				elems[k] = i.Pop()
			}
			obj := i.heap.get(av)
			obj.array.Values = elems
			i.Push(av)
			i.ResumeCollect(av)
			f.ip += 2

		case OpSetT:
			val := i.Pop()
			key := i.Pop()
			t := i.Pop()
			i.setIndex(t, key, val)
			f.ip++

		case OpGetT:
			key := i.Pop()
			t := i.Pop()
			i.Push(i.getIndex(t, key))
			f.ip++

		case OpGetG:
			key := i.Pop()
			i.Push(i.TableGet(i.global, key))
			f.ip++

		case OpJmp:
			f.ip = f.ip + 2 + signed16(f.code[f.ip+1])
		case OpJmpC:
			v := i.Pop()
			if !Truthy(v) {
				f.ip = f.ip + 2 + signed16(f.code[f.ip+1])
			} else {
				f.ip += 2
			}
		case OpJmpN:
			v := i.Pop()
			if IsNull(v) {
				f.ip = f.ip + 2 + signed16(f.code[f.ip+1])
			} else {
				f.ip += 2
			}

		case OpRet:
			// RET 0 leaves nothing on the stack past base; RET 1 leaves
			// exactly the popped return value. The compiler's implicit
			// trailing RET 0 is what keeps a function that falls off the
			// end of its body well-behaved.
			n := int(f.code[f.ip+1])
			var retVal Value
			if n == 1 {
				retVal = i.stack[i.top]
			}
			i.top = f.base - 1
			if n == 1 {
				i.Push(retVal)
			}
			i.depth--
			i.lastRet = n

		default:
			i.fatalf("unknown opcode %d", op)
		}
	}
}

// setIndex implements `t[k] = v` for either a Table or an Array operand.
func (i *Instance) setIndex(target, key, val Value) {
	t, ok := i.ObjectType(target)
	if !ok {
		i.fatalf("attempt to index a non-object value")
	}
	switch t {
	case ObjTable:
		i.TableSet(target, key, val)
	case ObjArray:
		if !IsNumber(key) {
			i.fatalf("array index must be a number")
		}
		i.ArraySetAt(target, int(GetNumber(key)), val)
	default:
		i.fatalf("attempt to index a %s value", t)
	}
}

// getIndex implements `t[k]` for either a Table or an Array operand.
func (i *Instance) getIndex(target, key Value) Value {
	t, ok := i.ObjectType(target)
	if !ok {
		i.fatalf("attempt to index a non-object value")
	}
	switch t {
	case ObjTable:
		return i.TableGet(target, key)
	case ObjArray:
		if !IsNumber(key) {
			i.fatalf("array index must be a number")
		}
		return i.ArrayAt(target, int(GetNumber(key)))
	default:
		i.fatalf("attempt to index a %s value", t)
		return ValueNull
	}
}
