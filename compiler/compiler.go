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

// Package compiler lowers the AST produced by Parser to vm bytecode: a
// tree walk over two mutable buffers per compilation unit, code and
// constants, with a parallel debug-location buffer kept in lockstep.
package compiler

import (
	"fmt"
	"text/scanner"

	"github.com/db47h/lune/vm"
)

// funcCompiler emits bytecode for one function body (or the top-level
// module, treated as a zero-arity function). Nested FnLits get their own
// funcCompiler with independent code/constants buffers.
type funcCompiler struct {
	i      *vm.Instance
	module string

	code      []uint16
	constants []vm.Value
	constIdx  map[vm.Value]int
	locs      []vm.DebugLoc

	// breaks holds one pending-patch list per lexically enclosing loop,
	// innermost last.
	breaks [][]int
}

func newFuncCompiler(i *vm.Instance, module string) *funcCompiler {
	return &funcCompiler{i: i, module: module, constIdx: make(map[vm.Value]int)}
}

// Compile parses and compiles src as a top-level module, returning a Chunk
// value pinned against GC; the caller is expected to either run it
// immediately or call vm.ResumeCollect once it is reachable some other way.
func Compile(i *vm.Instance, src []byte, module string) (vm.Value, error) {
	p := NewParser(src, module)
	body, numLocals := p.ParseModule()
	if err := p.Errors(); err != nil {
		return vm.ValueNull, err
	}
	fc := newFuncCompiler(i, module)
	fc.emitArg(vm.OpPush, numLocals, body.Pos)
	fc.compileBlock(body)
	fc.emitArg(vm.OpRet, 0, body.Pos)
	return i.NewChunk(module, fc.code, fc.constants, fc.debugInfo()), nil
}

func (fc *funcCompiler) debugInfo() *vm.DebugInfo {
	return &vm.DebugInfo{Module: fc.module, Locs: fc.locs}
}

func (fc *funcCompiler) appendLoc(pos scanner.Position) {
	fc.locs = append(fc.locs, vm.DebugLoc{Line: uint16(pos.Line), Col: uint16(pos.Column)})
}

func (fc *funcCompiler) emit(op vm.Op, pos scanner.Position) {
	fc.code = append(fc.code, uint16(op))
	fc.appendLoc(pos)
}

func (fc *funcCompiler) emitArg(op vm.Op, arg int, pos scanner.Position) {
	fc.code = append(fc.code, uint16(op), uint16(int16(arg)))
	fc.appendLoc(pos)
	fc.appendLoc(pos)
}

// emitJump emits op with a placeholder offset and returns the index of its
// argument cell, to be resolved later by patchJump (emitJumpTo resolves its
// own jump immediately).
func (fc *funcCompiler) emitJump(op vm.Op, pos scanner.Position) int {
	fc.emitArg(op, 0, pos)
	return len(fc.code) - 1
}

// patchJump resolves the jump at argIdx to the current end of code. Offsets
// are relative to the instruction after the jump.
func (fc *funcCompiler) patchJump(argIdx int) {
	target := len(fc.code)
	fc.code[argIdx] = uint16(int16(target - (argIdx + 1)))
}

// emitJumpTo emits an unconditional-style jump to a previously recorded
// target (a loop header).
func (fc *funcCompiler) emitJumpTo(op vm.Op, target int, pos scanner.Position) {
	argIdx := fc.emitJump(op, pos)
	fc.code[argIdx] = uint16(int16(target - (argIdx + 1)))
}

func (fc *funcCompiler) addConstant(v vm.Value) int {
	if idx, ok := fc.constIdx[v]; ok {
		return idx
	}
	idx := len(fc.constants)
	fc.constants = append(fc.constants, v)
	fc.constIdx[v] = idx
	return idx
}

func (fc *funcCompiler) pushLoop() {
	fc.breaks = append(fc.breaks, nil)
}

func (fc *funcCompiler) addBreak(argIdx int) {
	if len(fc.breaks) == 0 {
		// The parser rejects break outside a loop at parse time, so this
		// never fires on well-formed input; left unpatched is harmless.
		return
	}
	top := len(fc.breaks) - 1
	fc.breaks[top] = append(fc.breaks[top], argIdx)
}

func (fc *funcCompiler) patchLoopBreaks() {
	top := len(fc.breaks) - 1
	for _, argIdx := range fc.breaks[top] {
		fc.patchJump(argIdx)
	}
	fc.breaks = fc.breaks[:top]
}

func (fc *funcCompiler) compileBlock(b *Block) {
	for _, s := range b.Stmts {
		fc.compileStmt(s)
	}
}

func (fc *funcCompiler) compileStmt(n Node) {
	switch s := n.(type) {
	case *VarDecl:
		if s.Init != nil {
			fc.compileExpr(s.Init)
			fc.emitArg(vm.OpStore, s.Index, s.Pos)
		}
	case *AssignStmt:
		fc.compileAssign(s)
	case *ExprStmt:
		// No POP opcode exists; a call used as a bare statement that
		// returns one value leaves it on the stack, matching the
		// original's own behavior for this case.
		fc.compileExpr(s.X)
	case *IfStmt:
		fc.compileIf(s)
	case *WhileStmt:
		fc.compileWhile(s)
	case *ForInStmt:
		fc.compileForIn(s)
	case *BreakStmt:
		fc.addBreak(fc.emitJump(vm.OpJmp, s.Pos))
	case *ReturnStmt:
		if s.Value != nil {
			fc.compileExpr(s.Value)
			fc.emitArg(vm.OpRet, 1, s.Pos)
		} else {
			fc.emitArg(vm.OpRet, 0, s.Pos)
		}
	default:
		panic(fmt.Sprintf("compiler: unhandled statement node %T", n))
	}
}

func (fc *funcCompiler) compileAssign(s *AssignStmt) {
	switch t := s.Target.(type) {
	case *Ident:
		fc.compileExpr(s.Value)
		if t.Kind == identUpval {
			fc.emitArg(vm.OpStoreUp, t.Index, s.Pos)
		} else {
			fc.emitArg(vm.OpStore, t.Index, s.Pos)
		}
	case *IndexExpr:
		fc.compileExpr(t.Target)
		fc.compileExpr(t.Key)
		fc.compileExpr(s.Value)
		fc.emit(vm.OpSetT, s.Pos)
	default:
		panic(fmt.Sprintf("compiler: unhandled assignment target %T", s.Target))
	}
}

// compileIf emits `<cond>; JMPC next; <body>; JMP end` per arm, patching
// `next` to the following arm (or else, or end) and collecting `end` jumps
// to a shared patch point.
func (fc *funcCompiler) compileIf(s *IfStmt) {
	var ends []int
	for _, arm := range s.Arms {
		fc.compileExpr(arm.Cond)
		next := fc.emitJump(vm.OpJmpC, arm.Cond.Position())
		fc.compileBlock(arm.Body)
		ends = append(ends, fc.emitJump(vm.OpJmp, s.Pos))
		fc.patchJump(next)
	}
	if s.Else != nil {
		fc.compileBlock(s.Else)
	}
	for _, e := range ends {
		fc.patchJump(e)
	}
}

// compileWhile emits `header: <cond>; JMPC end; <body>; JMP header; end:`,
// with break inside patched to end.
func (fc *funcCompiler) compileWhile(s *WhileStmt) {
	header := len(fc.code)
	fc.compileExpr(s.Cond)
	endJump := fc.emitJump(vm.OpJmpC, s.Pos)
	fc.pushLoop()
	fc.compileBlock(s.Body)
	fc.emitJumpTo(vm.OpJmp, header, s.Pos)
	fc.patchJump(endJump)
	fc.patchLoopBreaks()
}

// compileForIn emits the hidden-iterator desugaring: the iterator
// expression is evaluated once into a hidden local, then called with zero
// args each header pass until it returns null.
func (fc *funcCompiler) compileForIn(s *ForInStmt) {
	fc.compileExpr(s.Iter)
	fc.emitArg(vm.OpStore, s.IterIndex, s.Pos)
	header := len(fc.code)
	fc.emitArg(vm.OpLoad, s.IterIndex, s.Pos)
	fc.emitArg(vm.OpCall, 0, s.Pos)
	fc.emitArg(vm.OpStore, s.NameIndex, s.Pos)
	fc.emitArg(vm.OpLoad, s.NameIndex, s.Pos)
	endJump := fc.emitJump(vm.OpJmpN, s.Pos)
	fc.pushLoop()
	fc.compileBlock(s.Body)
	fc.emitJumpTo(vm.OpJmp, header, s.Pos)
	fc.patchJump(endJump)
	fc.patchLoopBreaks()
}

func (fc *funcCompiler) compileExpr(n Node) {
	switch e := n.(type) {
	case *NumberLit:
		fc.emitArg(vm.OpPushC, fc.addConstant(vm.MakeNumber(e.Value)), e.Pos)
	case *StringLit:
		fc.emitArg(vm.OpPushC, fc.addConstant(fc.i.MakeString(e.Value)), e.Pos)
	case *BoolLit:
		if e.Value {
			fc.emit(vm.OpPushT, e.Pos)
		} else {
			fc.emit(vm.OpPushF, e.Pos)
		}
	case *NullLit:
		fc.emit(vm.OpPushN, e.Pos)
	case *Ident:
		fc.compileIdentLoad(e)
	case *UnaryExpr:
		fc.compileExpr(e.X)
		switch e.Op {
		case MINUS:
			fc.emit(vm.OpNeg, e.Pos)
		case NOT:
			fc.emit(vm.OpNot, e.Pos)
		default:
			panic(fmt.Sprintf("compiler: unhandled unary operator %v", e.Op))
		}
	case *BinaryExpr:
		fc.compileBinary(e)
	case *CallExpr:
		// Arguments first, callee last: CALL pops the callee off the top and
		// finds its n arguments directly beneath it.
		for _, a := range e.Args {
			fc.compileExpr(a)
		}
		fc.compileExpr(e.Callee)
		fc.emitArg(vm.OpCall, len(e.Args), e.Pos)
	case *IndexExpr:
		fc.compileExpr(e.Target)
		fc.compileExpr(e.Key)
		fc.emit(vm.OpGetT, e.Pos)
	case *TableLit:
		for _, p := range e.Pairs {
			fc.compileExpr(p.Key)
			fc.compileExpr(p.Value)
		}
		fc.emitArg(vm.OpMakeT, len(e.Pairs), e.Pos)
	case *ArrayLit:
		for _, el := range e.Elems {
			fc.compileExpr(el)
		}
		fc.emitArg(vm.OpMakeA, len(e.Elems), e.Pos)
	case *FnLit:
		fc.compileFnLit(e)
	default:
		panic(fmt.Sprintf("compiler: unhandled expression node %T", n))
	}
}

func (fc *funcCompiler) compileIdentLoad(e *Ident) {
	switch e.Kind {
	case identLocal:
		fc.emitArg(vm.OpLoad, e.Index, e.Pos)
	case identUpval:
		fc.emitArg(vm.OpLoadUp, e.Index, e.Pos)
	default:
		// Unresolved identifiers compile to PUSHC "name"; GETG.
		fc.emitArg(vm.OpPushC, fc.addConstant(fc.i.MakeString(e.Name)), e.Pos)
		fc.emit(vm.OpGetG, e.Pos)
	}
}

func (fc *funcCompiler) compileBinary(e *BinaryExpr) {
	switch e.Op {
	case AND:
		fc.compileAnd(e)
		return
	case OR:
		fc.compileOr(e)
		return
	}
	// Left then Right, so that the spec's "second-from-top op top" reads
	// naturally as "Left op Right" for the non-commutative operators.
	fc.compileExpr(e.Left)
	fc.compileExpr(e.Right)
	switch e.Op {
	case PLUS:
		fc.emit(vm.OpAdd, e.Pos)
	case MINUS:
		fc.emit(vm.OpSub, e.Pos)
	case STAR:
		fc.emit(vm.OpMul, e.Pos)
	case SLASH:
		fc.emit(vm.OpDiv, e.Pos)
	case GT:
		fc.emit(vm.OpGt, e.Pos)
	case GTE:
		fc.emit(vm.OpGte, e.Pos)
	case IS:
		fc.emit(vm.OpEq, e.Pos)
	case ISNT:
		fc.emit(vm.OpNeq, e.Pos)
	default:
		panic(fmt.Sprintf("compiler: unhandled binary operator %v", e.Op))
	}
}

// compileAnd emits a short-circuiting AND: the AND opcode itself pops both
// operands unconditionally, so true short-circuiting is done here with a
// jump instead, compiling the right operand only when the left is truthy.
// A leftover falsy left value is canonicalized to the exact False singleton
// by two NOTs, since AND must push a bool rather than the discarded operand.
func (fc *funcCompiler) compileAnd(e *BinaryExpr) {
	fc.compileExpr(e.Left)
	fc.emit(vm.OpDup, e.Pos)
	falsy := fc.emitJump(vm.OpJmpC, e.Pos)
	fc.compileExpr(e.Right)
	fc.emit(vm.OpAnd, e.Pos)
	end := fc.emitJump(vm.OpJmp, e.Pos)
	fc.patchJump(falsy)
	fc.emit(vm.OpNot, e.Pos)
	fc.emit(vm.OpNot, e.Pos)
	fc.patchJump(end)
}

// compileOr emits a short-circuiting OR: the right operand is compiled only
// when the left is falsy. When the left is truthy it is already the correct
// result value (not merely a bool — unlike AND/NOT, OR keeps the operand
// itself). When the left is falsy, the leftover value is combined with the
// right operand through the non-short-circuiting OR opcode, which still
// produces the right "first truthy value, else false" result.
func (fc *funcCompiler) compileOr(e *BinaryExpr) {
	fc.compileExpr(e.Left)
	fc.emit(vm.OpDup, e.Pos)
	elseFalsy := fc.emitJump(vm.OpJmpC, e.Pos)
	end := fc.emitJump(vm.OpJmp, e.Pos)
	fc.patchJump(elseFalsy)
	fc.compileExpr(e.Right)
	fc.emit(vm.OpOr, e.Pos)
	fc.patchJump(end)
}

// compileFnLit allocates an Fn object from a freshly compiled inner body,
// pushes it as a constant, then emits the capture sequence and CLOSE.
func (fc *funcCompiler) compileFnLit(e *FnLit) {
	inner := newFuncCompiler(fc.i, fc.module)
	inner.emitArg(vm.OpPush, e.NumLocals-len(e.Params), e.Pos)
	inner.compileBlock(e.Body)
	inner.emitArg(vm.OpRet, 0, e.Pos)

	fnVal := fc.i.NewFn(len(e.Params), inner.code, inner.constants, inner.debugInfo())
	fc.emitArg(vm.OpPushC, fc.addConstant(fnVal), e.Pos)
	for _, cs := range e.Captures {
		if cs.Upval {
			fc.emitArg(vm.OpLoadUp, cs.Index, e.Pos)
		} else {
			fc.emitArg(vm.OpLoad, cs.Index, e.Pos)
		}
	}
	fc.emitArg(vm.OpClose, len(e.Captures), e.Pos)
}
