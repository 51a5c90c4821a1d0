// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package readonly

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrReadOnly        = errors.New("read-only view")
	ErrNotCallable     = errors.New("view is not callable")
)

// InvalidArgumentError is returned when a view is requested for a value
// that is not object-like, or when a callable view gets arguments it
// cannot accept.
type InvalidArgumentError struct {
	Value  any
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = fmt.Sprintf("%T is not object-like", e.Value)
	}
	return fmt.Sprintf("readonly: %s: %s", ErrInvalidArgument, reason)
}

func (e *InvalidArgumentError) Is(target error) bool {
	if target == ErrInvalidArgument {
		return true
	}
	_, ok := target.(*InvalidArgumentError)
	return ok
}

// MutationError is what the strict helpers turn a rejected write or
// delete into.
type MutationError struct {
	Op     string
	Key    any
	Policy Policy
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("readonly: cannot %s %v on %s: %s", e.Op, e.Key, e.Policy, ErrReadOnly)
}

func (e *MutationError) Is(target error) bool {
	return target == ErrReadOnly
}

// PathError records the key prefix at which a GetPath walk stopped.
type PathError struct {
	Path []any
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("readonly: path %v: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
