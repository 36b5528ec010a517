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

import "math"

// Value is a NaN-boxed 64-bit word. If its bit pattern is not a quiet NaN, it
// is the bit pattern of an IEEE-754 double (a number). Otherwise a 3-bit tag
// selects one of {null, bool, string, object}; the low 48 bits hold the
// payload.
type Value uint64

const (
	signBit  = uint64(1) << 63
	exponent = uint64(0x7FF) << 52
	qnanBit  = uint64(1) << 51
	typeMask = uint64(0b111) << 48
	// valueMask covers the low 48 bits of payload.
	valueMask = (uint64(1) << 48) - 1

	nanMask = exponent | qnanBit

	typeNull   = uint64(0b011) << 48
	typeBool   = uint64(0b001) << 48
	typeString = uint64(0b010) << 48
	typeObject = uint64(0b101) << 48
)

// ValueNull, ValueTrue and ValueFalse are the singleton encodings of null and
// the two booleans.
const (
	ValueNull  = Value(nanMask | typeNull)
	ValueFalse = Value(nanMask | typeBool)
	ValueTrue  = Value(nanMask | typeBool | 1)
)

// MakeNumber encodes a float64 as a Value. The bit pattern of a number Value
// is exactly its IEEE-754 double representation.
func MakeNumber(n float64) Value {
	return Value(math.Float64bits(n))
}

// GetNumber decodes a number Value back to a float64. Behavior is undefined
// if v is not a number (see IsNumber).
func GetNumber(v Value) float64 {
	return math.Float64frombits(uint64(v))
}

// IsNumber reports whether v is an IEEE-754 double, i.e. not a tagged NaN.
func IsNumber(v Value) bool {
	return uint64(v)&nanMask != nanMask
}

// IsNull reports whether v is the null value.
func IsNull(v Value) bool {
	return v == ValueNull
}

// IsBool reports whether v is a boolean.
func IsBool(v Value) bool {
	return v == ValueTrue || v == ValueFalse
}

// IsTrue reports whether v is exactly the true boolean.
func IsTrue(v Value) bool {
	return v == ValueTrue
}

// IsString reports whether v is a string value.
func IsString(v Value) bool {
	return !IsNumber(v) && uint64(v)&typeMask == typeString
}

// IsObject reports whether v is a heap object reference.
func IsObject(v Value) bool {
	return !IsNumber(v) && uint64(v)&typeMask == typeObject
}

// Truthy reports the value's truthiness: every value is truthy except
// exactly false and null.
func Truthy(v Value) bool {
	return v != ValueFalse && v != ValueNull
}

// Bool encodes a Go bool as a Value.
func Bool(b bool) Value {
	if b {
		return ValueTrue
	}
	return ValueFalse
}

// objectValue packs a heap index into the object payload bits.
func objectValue(idx uint32) Value {
	return Value(nanMask | typeObject | uint64(idx)&valueMask)
}

// objectIndex unpacks the heap index from an object Value. The caller must
// have checked IsObject first.
func objectIndex(v Value) uint32 {
	return uint32(uint64(v) & valueMask)
}

// stringValue packs intern-table (bucket, slot) coordinates into a string
// Value's payload; stringBucket and stringSlot unpack them.
func stringValue(bucket, slot uint32) Value {
	payload := (uint64(bucket) << 24) | (uint64(slot) & 0xFFFFFF)
	return Value(nanMask | typeString | (payload & valueMask))
}

func stringBucket(v Value) uint32 {
	return uint32((uint64(v) & valueMask) >> 24)
}

func stringSlot(v Value) uint32 {
	return uint32(uint64(v)&valueMask) & 0xFFFFFF
}

// Equals reports value equality: same tag AND (for null/bool/string)
// bitwise equal, (for object) pointer-identical (here: same heap index).
// It is a pure function of two values and never touches the heap.
func Equals(a, b Value) bool {
	if IsNumber(a) != IsNumber(b) {
		return false
	}
	if IsNumber(a) {
		return GetNumber(a) == GetNumber(b)
	}
	if uint64(a)&typeMask != uint64(b)&typeMask {
		return false
	}
	switch {
	case IsObject(a):
		return objectIndex(a) == objectIndex(b)
	default:
		// null, bool, string: word equality (strings are interned, so equal
		// content implies equal bucket/slot encoding).
		return a == b
	}
}
