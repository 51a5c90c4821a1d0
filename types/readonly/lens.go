// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package readonly

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Kind is the shape of the object a view sits on.
type Kind uint8

const (
	KindRecord Kind = iota
	KindMap
	KindList
	KindFunc
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	case KindFunc:
		return "func"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// lens is the property retrieval backend of a view. Implementations only
// ever read from the value they hold.
type lens interface {
	// get returns the raw value under key and whether it was present.
	get(key any) (any, bool, error)
	keys() []any
	len() int
	kind() Kind
	typeName() string
	// ident identifies the underlying object, if it has a stable address.
	ident() (identity, bool)
}

type identity struct {
	typ   reflect.Type
	ptr   uintptr
	n     int
	field protoreflect.FullName
}

type getterLens struct {
	g Getter
}

func (l getterLens) get(key any) (any, bool, error) {
	v, err := l.g.Get(key)
	if err != nil {
		return nil, false, err
	}
	return v, v != nil, nil
}

func (getterLens) keys() []any { return nil }
func (getterLens) len() int    { return 0 }
func (getterLens) kind() Kind  { return KindRecord }

func (l getterLens) typeName() string { return fmt.Sprintf("%T", l.g) }

func (l getterLens) ident() (identity, bool) {
	rv := reflect.ValueOf(l.g)
	if rv.Kind() != reflect.Pointer {
		return identity{}, false
	}
	return identity{typ: rv.Type(), ptr: rv.Pointer()}, true
}

// reflectLens reads plain Go values. v has every pointer and interface
// layer stripped.
type reflectLens struct {
	v reflect.Value
}

func reflectLensOf(rv reflect.Value) (lens, bool) {
	if !rv.IsValid() {
		return nil, false
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return nil, false
		}
	case reflect.Array, reflect.Struct:
	default:
		return nil, false
	}
	return reflectLens{v: rv}, true
}

func (l reflectLens) get(key any) (any, bool, error) {
	switch l.v.Kind() {
	case reflect.Map:
		if k, ok := coerceKey(key, l.v.Type().Key()); ok {
			if e := l.v.MapIndex(k); e.IsValid() {
				return interfaceOf(e), true, nil
			}
		}
		if l.v.Type().Key().Kind() == reflect.Interface {
			for _, alt := range altKeys(key) {
				if e := l.v.MapIndex(reflect.ValueOf(alt)); e.IsValid() {
					return interfaceOf(e), true, nil
				}
			}
		}
	case reflect.Slice, reflect.Array:
		if i, ok := indexOf(key, l.v.Len()); ok {
			return interfaceOf(l.v.Index(i)), true, nil
		}
	case reflect.Struct:
		if name, ok := key.(string); ok {
			if f, ok := l.v.Type().FieldByName(name); ok && f.IsExported() {
				// A nil embedded pointer on the way makes the field absent.
				fv, err := l.v.FieldByIndexErr(f.Index)
				if err != nil {
					return nil, false, nil
				}
				if fv.CanInterface() {
					return interfaceOf(fv), true, nil
				}
			}
		}
	}
	return l.method(key)
}

// method looks key up among the value-receiver methods of the target.
// Only receivers that hold no references are eligible: a method on a
// map, slice or a struct with a pointer field can write into the target
// through its copy of the receiver.
func (l reflectLens) method(key any) (any, bool, error) {
	name, ok := key.(string)
	if !ok || name == "" || !refFree(l.v.Type()) {
		return nil, false, nil
	}
	m := l.v.MethodByName(name)
	if !m.IsValid() || !m.CanInterface() {
		return nil, false, nil
	}
	return m.Interface(), true, nil
}

func (l reflectLens) keys() []any {
	switch l.v.Kind() {
	case reflect.Map:
		mk := l.v.MapKeys()
		sort.Slice(mk, func(i, j int) bool { return lessValue(mk[i], mk[j]) })
		out := make([]any, 0, len(mk))
		for _, k := range mk {
			out = append(out, interfaceOf(k))
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, l.v.Len())
		for i := range out {
			out[i] = i
		}
		return out
	case reflect.Struct:
		return structKeys(l.v.Type())
	}
	return nil
}

func (l reflectLens) len() int {
	switch l.v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return l.v.Len()
	case reflect.Struct:
		return len(structKeys(l.v.Type()))
	}
	return 0
}

func (l reflectLens) kind() Kind {
	switch l.v.Kind() {
	case reflect.Map:
		return KindMap
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Struct:
		return KindRecord
	case reflect.Func:
		return KindFunc
	}
	return KindOpaque
}

func (l reflectLens) typeName() string { return l.v.Type().String() }

func (l reflectLens) ident() (identity, bool) {
	switch l.v.Kind() {
	case reflect.Map, reflect.Chan:
		return identity{typ: l.v.Type(), ptr: l.v.Pointer()}, true
	case reflect.Slice:
		return identity{typ: l.v.Type(), ptr: l.v.Pointer(), n: l.v.Len()}, true
	case reflect.Struct, reflect.Array:
		if l.v.CanAddr() {
			return identity{typ: l.v.Type(), ptr: l.v.Addr().Pointer()}, true
		}
	}
	return identity{}, false
}

// structKeys lists the exported fields reachable by name, promoted ones
// included and ambiguous ones left out.
func structKeys(t reflect.Type) []any {
	var out []any
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() {
			continue
		}
		if sf, ok := t.FieldByName(f.Name); !ok || !equalIndex(sf.Index, f.Index) {
			continue
		}
		out = append(out, f.Name)
	}
	return out
}

func equalIndex(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// refFree reports whether a value of type t shares no memory with the
// value it was copied from.
func refFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Chan, reflect.Func,
		reflect.Interface, reflect.UnsafePointer:
		return false
	case reflect.Array:
		return refFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !refFree(t.Field(i).Type) {
				return false
			}
		}
	}
	return true
}

func interfaceOf(v reflect.Value) any {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// coerceKey converts key into a value usable as a key of type t. Decimal
// strings and integers are interchangeable, the way property names are.
func coerceKey(key any, t reflect.Type) (reflect.Value, bool) {
	if key == nil {
		return reflect.Value{}, false
	}
	kv := reflect.ValueOf(key)
	if kv.Type().AssignableTo(t) {
		return kv, true
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		switch {
		case kv.Kind() == reflect.String:
			out.SetString(kv.String())
		case isInt(kv.Kind()):
			out.SetString(strconv.FormatInt(kv.Int(), 10))
		case isUint(kv.Kind()):
			out.SetString(strconv.FormatUint(kv.Uint(), 10))
		default:
			return reflect.Value{}, false
		}
		return out, true
	case reflect.Bool:
		switch kv.Kind() {
		case reflect.Bool:
			out.SetBool(kv.Bool())
		case reflect.String:
			b, err := strconv.ParseBool(kv.String())
			if err != nil {
				return reflect.Value{}, false
			}
			out.SetBool(b)
		default:
			return reflect.Value{}, false
		}
		return out, true
	}

	switch {
	case isInt(t.Kind()):
		n, ok := intOf(kv)
		if !ok || out.OverflowInt(n) {
			return reflect.Value{}, false
		}
		out.SetInt(n)
		return out, true
	case isUint(t.Kind()):
		n, ok := intOf(kv)
		if !ok || n < 0 || out.OverflowUint(uint64(n)) {
			return reflect.Value{}, false
		}
		out.SetUint(uint64(n))
		return out, true
	}
	return reflect.Value{}, false
}

// intOf accepts Go integers and canonical decimal strings ("7", not "07"
// or "+7").
func intOf(kv reflect.Value) (int64, bool) {
	switch {
	case isInt(kv.Kind()):
		return kv.Int(), true
	case isUint(kv.Kind()):
		u := kv.Uint()
		if u > 1<<63-1 {
			return 0, false
		}
		return int64(u), true
	case kv.Kind() == reflect.String:
		s := kv.String()
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || strconv.FormatInt(n, 10) != s {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// altKeys lists the other spellings of key that a map with interface
// keys may hold it under. Decoders store integer keys as int or int64.
func altKeys(key any) []any {
	if key == nil {
		return nil
	}
	kv := reflect.ValueOf(key)
	n, ok := intOf(kv)
	if !ok {
		return nil
	}
	var out []any
	if int64(int(n)) == n && kv.Kind() != reflect.Int {
		out = append(out, int(n))
	}
	if kv.Kind() != reflect.Int64 {
		out = append(out, n)
	}
	if kv.Kind() != reflect.String {
		out = append(out, strconv.FormatInt(n, 10))
	}
	return out
}

func indexOf(key any, n int) (int, bool) {
	if key == nil {
		return 0, false
	}
	i, ok := intOf(reflect.ValueOf(key))
	if !ok || i < 0 || i >= int64(n) {
		return 0, false
	}
	return int(i), true
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func lessValue(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface && !a.IsNil() {
		a = a.Elem()
	}
	if b.Kind() == reflect.Interface && !b.IsNil() {
		b = b.Elem()
	}
	switch {
	case isInt(a.Kind()) && isInt(b.Kind()):
		return a.Int() < b.Int()
	case isUint(a.Kind()) && isUint(b.Kind()):
		return a.Uint() < b.Uint()
	case a.Kind() == reflect.String && b.Kind() == reflect.String:
		return a.String() < b.String()
	case a.Kind() == reflect.Float64 && b.Kind() == reflect.Float64:
		return a.Float() < b.Float()
	}
	return fmt.Sprint(interfaceOf(a)) < fmt.Sprint(interfaceOf(b))
}
