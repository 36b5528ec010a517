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

// MakeArray allocates a new, empty Array object.
func (i *Instance) MakeArray() Value {
	v, obj := i.Allocate(ObjArray)
	obj.array = &Array{}
	return v
}

func (i *Instance) arrayOf(v Value) *Array {
	obj := i.heap.get(v)
	if obj == nil || obj.Type != ObjArray {
		i.fatalf("not an array")
	}
	return obj.array
}

// ArrayPush appends val to array and returns the array Value for chaining.
func (i *Instance) ArrayPush(array, val Value) Value {
	a := i.arrayOf(array)
	a.Values = append(a.Values, val)
	return array
}

// ArrayAt returns the element at idx. Out-of-range access is a fatal error,
// matching the original's pointer-returning array accessor, which offers no
// bounds-checked alternative.
func (i *Instance) ArrayAt(array Value, idx int) Value {
	a := i.arrayOf(array)
	if idx < 0 || idx >= len(a.Values) {
		i.fatalf("array index %d out of range (length %d)", idx, len(a.Values))
	}
	return a.Values[idx]
}

// ArraySetAt stores val at idx, used by the SETT opcode when the target is
// an array rather than a table.
func (i *Instance) ArraySetAt(array Value, idx int, val Value) {
	a := i.arrayOf(array)
	if idx < 0 || idx >= len(a.Values) {
		i.fatalf("array index %d out of range (length %d)", idx, len(a.Values))
	}
	a.Values[idx] = val
}

// ArrayRemove removes and returns the element at idx, shifting subsequent
// elements down.
func (i *Instance) ArrayRemove(array Value, idx int) Value {
	a := i.arrayOf(array)
	if idx < 0 || idx >= len(a.Values) {
		i.fatalf("array index %d out of range (length %d)", idx, len(a.Values))
	}
	v := a.Values[idx]
	a.Values = append(a.Values[:idx], a.Values[idx+1:]...)
	return v
}

// ArrayLength returns the number of elements in array.
func (i *Instance) ArrayLength(array Value) int {
	return len(i.arrayOf(array).Values)
}
