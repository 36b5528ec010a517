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

// tableBucket picks one of the 16 fixed buckets for a key. String keys
// bucket by their content hash; every other key type buckets by its raw word
// shifted down, matching the original's scheme for non-string keys.
//
// The original table hashing compares only the hash/shifted word without
// verifying key equality on collision in some paths. This implementation
// always verifies full key equality within the bucket (via Equals) before
// treating a slot as a match, to avoid silently aliasing two distinct keys
// that happen to hash into the same bucket.
func (i *Instance) tableBucket(t *Table, key Value) *[]TablePair {
	var h uint64
	if IsString(key) {
		h = hashString(i.strings.text(key))
	} else {
		h = uint64(key) >> 2
	}
	return &t.Buckets[h%16]
}

// MakeTable allocates a new, empty Table object.
func (i *Instance) MakeTable() Value {
	v, obj := i.Allocate(ObjTable)
	obj.table = &Table{}
	return v
}

// TableSet implements `t[k] = v`. It returns the table Value for chaining,
// matching the original's lt_table_set signature.
func (i *Instance) TableSet(table, key, val Value) Value {
	obj := i.heap.get(table)
	if obj == nil || obj.Type != ObjTable {
		i.fatalf("table_set: not a table")
	}
	bucket := i.tableBucket(obj.table, key)
	for idx := range *bucket {
		if Equals((*bucket)[idx].Key, key) {
			(*bucket)[idx].Value = val
			return table
		}
	}
	*bucket = append(*bucket, TablePair{Key: key, Value: val})
	return table
}

// TableGet implements `t[k]`, returning ValueNull if k is absent.
func (i *Instance) TableGet(table, key Value) Value {
	obj := i.heap.get(table)
	if obj == nil || obj.Type != ObjTable {
		i.fatalf("table_get: not a table")
	}
	bucket := i.tableBucket(obj.table, key)
	for idx := range *bucket {
		if Equals((*bucket)[idx].Key, key) {
			return (*bucket)[idx].Value
		}
	}
	return ValueNull
}

// TablePop sets the entry's value to null; it does NOT remove the entry
// from its bucket, so a subsequent TableGet of the same key still observes
// a (now-null) entry. It returns true if the key was present.
func (i *Instance) TablePop(table, key Value) bool {
	obj := i.heap.get(table)
	if obj == nil || obj.Type != ObjTable {
		i.fatalf("table_pop: not a table")
	}
	bucket := i.tableBucket(obj.table, key)
	for idx := range *bucket {
		if Equals((*bucket)[idx].Key, key) {
			(*bucket)[idx].Value = ValueNull
			return true
		}
	}
	return false
}
