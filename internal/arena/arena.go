// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package arena defines an [Arena] type with compressed pointers.
//
// Syntax trees are stored in an arena: every node of a tree lives in the
// same Arena, and parent/child edges are four-byte [Pointer]s rather than Go
// pointers. A whole tree is released by dropping its arena.
package arena

import (
	"fmt"
	"math/bits"
)

// The log2 of the size of the smallest slice in an Arena's table.
const (
	minLenShift = 4
	minLen      = 1 << minLenShift
)

// Pointer is a compressed arena pointer.
//
// The value of a pointer is one plus the number of values allocated before
// it, so the zero value is nil. It cannot be dereferenced directly; see
// [Arena.Deref].
type Pointer[T any] uint32

// Nil returns whether this pointer is nil.
func (p Pointer[T]) Nil() bool {
	return p == 0
}

// Arena is a slice of T that guarantees the values in it are never moved.
//
// It maintains a table of slices that double in size, mimicking the growth
// of an ordinary slice without ever copying. Lookup is O(1).
//
// A zero Arena[T] is empty and ready to use.
type Arena[T any] struct {
	// Invariants:
	// 1. cap(table[0]) == minLen.
	// 2. cap(table[n]) == 2*cap(table[n-1]).
	// 3. len(table[n]) == cap(table[n]) for n < len(table)-1.
	table [][]T
}

// New allocates a new value on the arena and returns a pointer to it.
func (a *Arena[T]) New(value T) Pointer[T] {
	if a.table == nil {
		a.table = [][]T{make([]T, 0, minLen)}
	}

	last := &a.table[len(a.table)-1]
	if len(*last) == cap(*last) {
		a.table = append(a.table, make([]T, 0, 2*cap(*last)))
		last = &a.table[len(a.table)-1]
	}

	*last = append(*last, value)
	return Pointer[T](a.Len())
}

// Deref returns the value p points to.
//
// Panics if p is nil or was not allocated by this arena.
func (a *Arena[T]) Deref(p Pointer[T]) *T {
	if p.Nil() {
		panic("arena: dereferenced nil pointer")
	}
	slice, idx := a.coordinates(int(p) - 1)
	return &a.table[slice][idx]
}

// Len returns the number of values allocated so far.
func (a *Arena[T]) Len() int {
	if len(a.table) == 0 {
		return 0
	}

	// Only the last slice may be partially filled.
	return a.lenOfFirstNSlices(len(a.table)-1) + len(a.table[len(a.table)-1])
}

// lenOfFirstNSlices returns the total capacity of the first n slices.
//
// Since minLen<<0 + ... + minLen<<(n-1) == minLen<<n - minLen.
func (*Arena[T]) lenOfFirstNSlices(n int) int {
	return max(0, minLen<<n-minLen)
}

// coordinates maps an index to a (slice, offset) pair in table, checking
// bounds.
func (a *Arena[T]) coordinates(idx int) (int, int) {
	if idx < 0 || idx >= a.Len() {
		panic(fmt.Sprintf("arena: pointer out of range: %#x", idx+1))
	}

	// Slice k starts at index minLen<<k - minLen. Adding minLen turns the
	// start offsets into powers of two, whose bit length identifies k.
	slice := bits.UintSize - bits.LeadingZeros(uint(idx)+minLen)
	slice -= minLenShift + 1

	return slice, idx - a.lenOfFirstNSlices(slice)
}
