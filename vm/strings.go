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

// internTableSize is the number of hash buckets in the string dedup table.
const internTableSize = 64

// internEntry is one slot of a bucket's vector. A zero-value entry (live ==
// false) is a tombstone available for reuse.
type internEntry struct {
	hash     uint64
	text     string
	refcount uint32
	live     bool
}

// internTable is the bucketed string interner. Lookup by content is
// O(bucket length); lookup by encoded Value is O(1) via the (bucket, slot)
// pair packed into the Value payload.
type internTable struct {
	buckets [internTableSize][]internEntry
}

// hashString implements the original's mixing hash:
// h = k = 0x5bd1e9955bd1e995; h = ((h ^ c) * k) ^ (h >> 47), iterated over
// bytes.
func hashString(s string) uint64 {
	const k = uint64(0x5bd1e9955bd1e995)
	h := k
	for i := 0; i < len(s); i++ {
		h = ((h ^ uint64(s[i])) * k) ^ (h >> 47)
	}
	return h
}

// intern returns the Value for s, reusing an existing entry with an equal
// byte sequence if one is live in the bucket, otherwise allocating (or
// reusing a tombstoned slot) a new entry.
//
// Hash equality alone isn't enough to guarantee two strings are the same, so
// this implementation strengthens it to full byte equality, comparing text
// as well as hash before reusing a slot.
func (t *internTable) intern(s string) Value {
	h := hashString(s)
	bucket := uint32(h % internTableSize)
	slots := t.buckets[bucket]
	for i := range slots {
		if slots[i].live && slots[i].hash == h && slots[i].text == s {
			return stringValue(bucket, uint32(i))
		}
	}
	for i := range slots {
		if !slots[i].live {
			slots[i] = internEntry{hash: h, text: s, live: true}
			return stringValue(bucket, uint32(i))
		}
	}
	idx := len(slots)
	t.buckets[bucket] = append(slots, internEntry{hash: h, text: s, live: true})
	return stringValue(bucket, uint32(idx))
}

// text returns the byte sequence for a string Value. The caller must have
// checked IsString first; an out-of-range (bucket, slot) pair (e.g. from a
// corrupted Value) returns the empty string.
func (t *internTable) text(v Value) string {
	bucket := stringBucket(v)
	slot := stringSlot(v)
	if int(bucket) >= internTableSize || int(slot) >= len(t.buckets[bucket]) {
		return ""
	}
	e := &t.buckets[bucket][slot]
	if !e.live {
		return ""
	}
	return e.text
}

// resetRefcounts clears every live entry's refcount to zero ahead of a
// collection cycle's mark phase. Refcounts are recomputed each cycle; they
// are not incremental counts.
func (t *internTable) resetRefcounts() {
	for b := range t.buckets {
		slots := t.buckets[b]
		for i := range slots {
			if slots[i].live {
				slots[i].refcount = 0
			}
		}
	}
}

// mark increments the refcount of the entry referenced by v. v must be a
// string Value.
func (t *internTable) mark(v Value) {
	bucket := stringBucket(v)
	slot := stringSlot(v)
	if int(bucket) >= internTableSize || int(slot) >= len(t.buckets[bucket]) {
		return
	}
	t.buckets[bucket][slot].refcount++
}

// sweep reclaims every live entry whose refcount is still zero after the
// mark phase, turning its slot into a tombstone.
func (t *internTable) sweep() int {
	reclaimed := 0
	for b := range t.buckets {
		slots := t.buckets[b]
		for i := range slots {
			if slots[i].live && slots[i].refcount == 0 {
				slots[i] = internEntry{}
				reclaimed++
			}
		}
	}
	return reclaimed
}
