// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package readonly

import (
	"math/big"
	"reflect"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Getter is implemented by targets that compute their own properties.
// A view over a Getter delegates every read to Get and hands back any
// error it returns unchanged. A nil result reads as an absent property.
type Getter interface {
	Get(key any) (any, error)
}

// IsObjectLike reports whether v can be wrapped in a view: any non-nil
// value that is not a primitive scalar. Booleans, numbers (including
// big.Int, big.Float and big.Rat), strings, nil and nil references are
// primitives; maps, slices, arrays, structs, funcs, chans, protobuf
// messages and Getters are object-like.
func IsObjectLike(v any) bool {
	_, ok := lensOf(v)
	return ok
}

// lensOf is the single classification shared by IsObjectLike and the
// view constructor, so a value accepted here always wraps.
func lensOf(v any) (lens, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case *View:
		if x == nil {
			return nil, false
		}
		return x.lens, true
	case *big.Int, *big.Float, *big.Rat, big.Int, big.Float, big.Rat:
		return nil, false
	case protoreflect.ProtoMessage:
		return messageLensOf(x.ProtoReflect())
	case protoreflect.Message:
		return messageLensOf(x)
	case protoList:
		return x, true
	case protoMap:
		return x, true
	case Getter:
		if isNilRef(reflect.ValueOf(x)) {
			return nil, false
		}
		return getterLens{g: x}, true
	}
	return reflectLensOf(reflect.ValueOf(v))
}

func isNilRef(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// scalarOf returns the value a read hands out for a non-object-like
// result. Pointers to primitives are dereferenced and big numbers are
// copied, pointer or not, so the caller never receives a cell that writes back into the
// target.
func scalarOf(x any) any {
	switch n := x.(type) {
	case *big.Int:
		if n == nil {
			return nil
		}
		return new(big.Int).Set(n)
	case *big.Float:
		if n == nil {
			return nil
		}
		return new(big.Float).Copy(n)
	case *big.Rat:
		if n == nil {
			return nil
		}
		return new(big.Rat).Set(n)
	case big.Int:
		return *new(big.Int).Set(&n)
	case big.Float:
		return *new(big.Float).Copy(&n)
	case big.Rat:
		return *new(big.Rat).Set(&n)
	}

	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Pointer {
		return x
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.CanInterface() {
		return nil
	}
	return scalarOf(rv.Interface())
}
