// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package readonly

// Slice is a read-only view of a slice. Elements are handed out by value.
type Slice[T any] struct {
	ᚢ []T
}

func SliceOf[T any](x []T) Slice[T] {
	return Slice[T]{x}
}

func (v Slice[T]) Len() int { return len(v.ᚢ) }

func (v Slice[T]) At(i int) T { return v.ᚢ[i] }

// AppendTo appends the elements to dst and returns the result.
func (v Slice[T]) AppendTo(dst []T) []T {
	return append(dst, v.ᚢ...)
}

// IndexFunc returns the index of the first element satisfying f, or -1.
func (v Slice[T]) IndexFunc(f func(T) bool) int {
	for i, e := range v.ᚢ {
		if f(e) {
			return i
		}
	}
	return -1
}
