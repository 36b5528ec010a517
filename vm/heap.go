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

// heap is the doubly-tracked object list: a slice of heap records indexed
// by the object payload packed into object Values, plus a free list for
// recycling tombstoned slots, and a keepalive (pinning) set.
//
// Indices are stable for the lifetime of an object: collection tombstones a
// slot (sets it to nil) rather than compacting the slice, so live object
// Values elsewhere on the stack/heap never dangle mid-cycle.
type heap struct {
	objects   []*object
	freeList  []uint32
	keepalive map[uint32]bool
}

func newHeap() *heap {
	return &heap{keepalive: make(map[uint32]bool)}
}

// allocate registers a new heap object of the given type and returns its
// Value reference. Objects become collectable immediately unless pinned with
// nocollect.
func (h *heap) allocate(t ObjectType) (Value, *object) {
	obj := &object{Type: t}
	var idx uint32
	if n := len(h.freeList); n > 0 {
		idx = h.freeList[n-1]
		h.freeList = h.freeList[:n-1]
		h.objects[idx] = obj
	} else {
		idx = uint32(len(h.objects))
		h.objects = append(h.objects, obj)
	}
	return objectValue(idx), obj
}

// get dereferences an object Value. v must satisfy IsObject.
func (h *heap) get(v Value) *object {
	idx := objectIndex(v)
	if int(idx) >= len(h.objects) {
		return nil
	}
	return h.objects[idx]
}

// nocollect pins an object against GC regardless of reachability.
func (h *heap) nocollect(v Value) {
	h.keepalive[objectIndex(v)] = true
}

// resumecollect unpins an object previously pinned with nocollect.
func (h *heap) resumecollect(v Value) {
	delete(h.keepalive, objectIndex(v))
}

// free tombstones the heap slot at idx, invoking no destructor of its own:
// Go's own collector reclaims the sub-buffers (code, constants, captures,
// table buckets, array backing, interned text) once the *object becomes
// unreachable from Go's perspective, which happens as soon as this function
// drops the last reference to it.
func (h *heap) free(idx uint32) {
	h.objects[idx] = nil
	h.freeList = append(h.freeList, idx)
}

// Allocate creates a new heap object of the given type, pins it until the
// caller explicitly calls ResumeCollect, and returns its Value reference.
// Freshly allocated objects stay pinned by convention until installed
// somewhere reachable, since a collection triggered mid-construction must
// not reclaim them.
func (i *Instance) Allocate(t ObjectType) (Value, *object) {
	v, obj := i.heap.allocate(t)
	i.heap.nocollect(v)
	if i.onAlloc != nil {
		if err := i.onAlloc(t, i.heap.liveCount()); err != nil {
			i.fatalf("%s", err.Error())
		}
	}
	return v, obj
}

// liveCount returns the number of non-tombstoned heap slots.
func (h *heap) liveCount() int {
	n := 0
	for _, obj := range h.objects {
		if obj != nil {
			n++
		}
	}
	return n
}

// HeapStats reports the heap object count (including tombstoned slots
// pending reuse) and how many of those are live.
func (i *Instance) HeapStats() (total, live int) {
	return len(i.heap.objects), i.heap.liveCount()
}

// NoCollect pins obj against garbage collection regardless of reachability.
func (i *Instance) NoCollect(v Value) {
	if IsObject(v) {
		i.heap.nocollect(v)
	}
}

// ResumeCollect unpins obj, previously pinned with NoCollect.
func (i *Instance) ResumeCollect(v Value) {
	if IsObject(v) {
		i.heap.resumecollect(v)
	}
}

// Collect runs one mark-sweep collection cycle and returns the number of
// reclaimed heap objects.
//
// The original uses an inverted convention (everything starts marked;
// tracing clears marks; remaining marked objects are dead). This
// implementation uses the conventional direction instead: clear all marks,
// set from roots, free what's left unmarked. The two are behaviorally
// equivalent.
func (i *Instance) Collect() int {
	for _, obj := range i.heap.objects {
		if obj != nil {
			obj.mark = false
		}
	}
	i.strings.resetRefcounts()

	for idx := range i.heap.keepalive {
		if obj := i.heap.objects[idx]; obj != nil {
			i.markObject(objectValue(idx), obj)
		}
	}
	if IsObject(i.global) {
		i.markValue(i.global)
	}
	for n := 0; n <= i.top; n++ {
		i.markValue(i.stack[n])
	}
	for f := 0; f < i.depth; f++ {
		fr := &i.frames[f]
		for _, c := range fr.captures {
			i.markValue(c)
		}
		if fr.callee != ValueNull {
			i.markValue(fr.callee)
		}
	}

	reclaimed := i.strings.sweep()
	for idx, obj := range i.heap.objects {
		if obj == nil || obj.mark {
			continue
		}
		i.heap.free(uint32(idx))
		reclaimed++
	}
	return reclaimed
}

// markValue traces a single Value: numbers, null, bools and strings carry no
// further references; strings bump their intern refcount; objects recurse
// into markObject.
func (i *Instance) markValue(v Value) {
	switch {
	case IsString(v):
		i.strings.mark(v)
	case IsObject(v):
		if obj := i.heap.get(v); obj != nil {
			i.markObject(v, obj)
		}
	}
}

// markObject marks obj live and traces every Value it owns or references.
func (i *Instance) markObject(_ Value, obj *object) {
	if obj.mark {
		return
	}
	obj.mark = true
	switch obj.Type {
	case ObjChunk:
		i.markDebugStrings(obj.chunk.Debug)
		for _, c := range obj.chunk.Constants {
			i.markValue(c)
		}
	case ObjFn:
		i.markDebugStrings(obj.fn.Debug)
		for _, c := range obj.fn.Constants {
			i.markValue(c)
		}
	case ObjClosure:
		// A Closure never references a destroyed Fn: trace it too.
		i.markValue(obj.closure.Fn)
		for _, c := range obj.closure.Captures {
			i.markValue(c)
		}
	case ObjTable:
		for _, bucket := range obj.table.Buckets {
			for _, pair := range bucket {
				i.markValue(pair.Key)
				i.markValue(pair.Value)
			}
		}
	case ObjArray:
		for _, v := range obj.array.Values {
			i.markValue(v)
		}
	case ObjNativeFn, ObjPtr:
		// no Value references to trace
	}
}

func (i *Instance) markDebugStrings(d *DebugInfo) {
	// module names aren't interned Values; nothing to trace here, kept as a
	// hook point so a future debug-map format that does intern strings has
	// somewhere to add tracing.
	_ = d
}
