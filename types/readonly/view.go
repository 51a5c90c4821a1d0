// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

// Package readonly provides deep read-only views over arbitrary values.
//
// A View reads through to its target and wraps every object-like value it
// returns in another View of the same Policy. Wrapping happens lazily on
// each read, so views are cheap to create and cyclic graphs need no
// special handling. Writes and deletes never reach the target; the Policy
// only decides whether they are reported as failed or as successful.
package readonly

import (
	"fmt"
	"reflect"

	"go4.org/mem"
)

// View is a read-only lens over a target object. A View holds no state
// besides the target reference and its Policy and is safe for concurrent
// reads whenever the target is.
type View struct {
	lens   lens
	policy Policy
}

// New returns a view of target using policy p. It fails with an
// *InvalidArgumentError if target is not object-like.
func New(target any, p Policy) (*View, error) {
	if !p.valid() {
		return nil, &InvalidArgumentError{Value: p, Reason: fmt.Sprintf("unknown policy %s", p)}
	}
	l, ok := lensOf(target)
	if !ok {
		return nil, &InvalidArgumentError{Value: target}
	}
	return &View{lens: l, policy: p}, nil
}

// Of returns a view whose writes and deletes report failure.
func Of(target any) (*View, error) {
	return New(target, RejectWithError)
}

// SilentOf returns a view whose writes and deletes report success.
func SilentOf(target any) (*View, error) {
	return New(target, RejectSilently)
}

func (v *View) Policy() Policy { return v.policy }

func (v *View) Kind() Kind { return v.lens.kind() }

// Get reads key from the target. Object-like values come back as a new
// *View with the same policy; everything else is returned as read. An
// absent key reads as nil. Errors from the target's own retrieval are
// returned unchanged.
func (v *View) Get(key any) (any, error) {
	raw, ok, err := v.lens.get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return v.wrap(raw), nil
}

// Has reports whether key is present on the target.
func (v *View) Has(key any) bool {
	_, ok, err := v.lens.get(key)
	return ok && err == nil
}

// Set discards value and reports the view's policy outcome: false for
// RejectWithError, true for RejectSilently.
func (v *View) Set(key, value any) bool {
	return v.policy.report()
}

// Delete reports like Set. The key stays on the target.
func (v *View) Delete(key any) bool {
	return v.policy.report()
}

// SetStrict is Set for callers that treat a failed mutation as an error.
func (v *View) SetStrict(key, value any) error {
	if !v.Set(key, value) {
		return &MutationError{Op: "set", Key: key, Policy: v.policy}
	}
	return nil
}

// DeleteStrict is Delete for callers that treat a failed mutation as an
// error.
func (v *View) DeleteStrict(key any) error {
	if !v.Delete(key) {
		return &MutationError{Op: "delete", Key: key, Policy: v.policy}
	}
	return nil
}

func (v *View) Len() int { return v.lens.len() }

// Keys lists the readable keys: sorted map keys, list indices, exported
// struct fields or set message fields. Methods are readable but not
// listed.
func (v *View) Keys() Slice[any] {
	return SliceOf(v.lens.keys())
}

// GetPath reads keys one after another, starting at v.
func (v *View) GetPath(keys ...any) (any, error) {
	var cur any = v
	for i, k := range keys {
		cv, ok := cur.(*View)
		if !ok {
			return nil, &PathError{Path: keys[:i+1], Err: &InvalidArgumentError{Value: cur}}
		}
		next, err := cv.Get(k)
		if err != nil {
			return nil, &PathError{Path: keys[:i+1], Err: err}
		}
		cur = next
	}
	return cur, nil
}

// Call invokes a callable target. Object-like results are wrapped with
// the view's policy, except results declared as error.
func (v *View) Call(args ...any) ([]any, error) {
	l, ok := v.lens.(reflectLens)
	if !ok || l.v.Kind() != reflect.Func {
		return nil, ErrNotCallable
	}
	in, err := callArgs(l.v.Type(), args)
	if err != nil {
		return nil, err
	}

	out := l.v.Call(in)
	res := make([]any, len(out))
	for i, o := range out {
		if l.v.Type().Out(i) == errorType {
			res[i] = interfaceOf(o)
			continue
		}
		res[i] = v.wrap(interfaceOf(o))
	}
	return res, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func callArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	n := ft.NumIn()
	if len(args) < n-1 || (!ft.IsVariadic() && len(args) != n) {
		return nil, &InvalidArgumentError{Value: args, Reason: fmt.Sprintf("%s takes %d arguments, got %d", ft, n, len(args))}
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var t reflect.Type
		if ft.IsVariadic() && i >= n-1 {
			t = ft.In(n - 1).Elem()
		} else {
			t = ft.In(i)
		}
		if a == nil {
			if !nilable(t) {
				return nil, &InvalidArgumentError{Value: a, Reason: fmt.Sprintf("argument %d: nil is not a %s", i, t)}
			}
			in[i] = reflect.Zero(t)
			continue
		}
		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(t) {
			return nil, &InvalidArgumentError{Value: a, Reason: fmt.Sprintf("argument %d: %s is not assignable to %s", i, av.Type(), t)}
		}
		in[i] = av
	}
	return in, nil
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// Bytes gives zero-copy read-only access to a byte slice target.
func (v *View) Bytes() (mem.RO, bool) {
	l, ok := v.lens.(reflectLens)
	if !ok || l.v.Kind() != reflect.Slice || l.v.Type().Elem().Kind() != reflect.Uint8 {
		return mem.RO{}, false
	}
	return mem.B(l.v.Bytes()), true
}

func (v *View) String() string {
	return fmt.Sprintf("readonly.View(%s %s, %s)", v.lens.kind(), v.lens.typeName(), v.policy)
}

func (v *View) wrap(x any) any {
	if l, ok := lensOf(x); ok {
		return &View{lens: l, policy: v.policy}
	}
	return scalarOf(x)
}

// SameTarget reports whether a and b read from the same underlying
// object. Views over values without a stable address, such as structs
// stored by value in a map, only match themselves.
func SameTarget(a, b *View) bool {
	if a == nil || b == nil || a == b {
		return a == b
	}
	ia, ok := a.lens.ident()
	if !ok {
		return false
	}
	ib, ok := b.lens.ident()
	return ok && ia == ib
}
