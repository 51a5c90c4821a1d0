// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package readonly

import (
	"reflect"
	"sort"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// messageLens reads protobuf messages field by field. Fields are looked
// up by proto name first and JSON name second; fields with presence that
// are not set read as absent.
type messageLens struct {
	m protoreflect.Message
}

func messageLensOf(m protoreflect.Message) (lens, bool) {
	if m == nil || !m.IsValid() {
		return nil, false
	}
	return messageLens{m: m}, true
}

func (l messageLens) field(key any) protoreflect.FieldDescriptor {
	name, ok := key.(string)
	if !ok {
		return nil
	}
	fields := l.m.Descriptor().Fields()
	if fd := fields.ByName(protoreflect.Name(name)); fd != nil {
		return fd
	}
	return fields.ByJSONName(name)
}

func (l messageLens) get(key any) (any, bool, error) {
	fd := l.field(key)
	if fd == nil {
		return nil, false, nil
	}
	if fd.HasPresence() && !l.m.Has(fd) {
		return nil, false, nil
	}
	switch {
	case fd.IsList():
		return protoList{list: l.m.Get(fd).List(), fd: fd, owner: l.m}, true, nil
	case fd.IsMap():
		return protoMap{m: l.m.Get(fd).Map(), fd: fd, owner: l.m}, true, nil
	}
	return protoValue(l.m.Get(fd), fd), true, nil
}

func (l messageLens) keys() []any {
	var out []any
	fields := l.m.Descriptor().Fields()
	for i := 0; i < fields.Len(); i++ {
		if fd := fields.Get(i); l.m.Has(fd) {
			out = append(out, string(fd.Name()))
		}
	}
	return out
}

func (l messageLens) len() int { return len(l.keys()) }
func (messageLens) kind() Kind { return KindRecord }
func (l messageLens) typeName() string {
	return string(l.m.Descriptor().FullName())
}

func (l messageLens) ident() (identity, bool) {
	return messageIdent(l.m)
}

func messageIdent(m protoreflect.Message) (identity, bool) {
	rv := reflect.ValueOf(m.Interface())
	if rv.Kind() != reflect.Pointer {
		return identity{}, false
	}
	return identity{typ: rv.Type(), ptr: rv.Pointer()}, true
}

// protoValue converts a singular value of field fd. Message values stay
// protoreflect.Message so the view wraps them.
func protoValue(v protoreflect.Value, fd protoreflect.FieldDescriptor) any {
	if fd.Message() != nil {
		return v.Message()
	}
	return v.Interface()
}

// protoList is a repeated field of owner.
type protoList struct {
	list  protoreflect.List
	fd    protoreflect.FieldDescriptor
	owner protoreflect.Message
}

func (l protoList) get(key any) (any, bool, error) {
	i, ok := indexOf(key, l.list.Len())
	if !ok {
		return nil, false, nil
	}
	return protoValue(l.list.Get(i), l.fd), true, nil
}

func (l protoList) keys() []any {
	out := make([]any, l.list.Len())
	for i := range out {
		out[i] = i
	}
	return out
}

func (l protoList) len() int         { return l.list.Len() }
func (protoList) kind() Kind         { return KindList }
func (l protoList) typeName() string { return "repeated " + string(l.fd.FullName()) }

func (l protoList) ident() (identity, bool) {
	id, ok := messageIdent(l.owner)
	id.field = l.fd.FullName()
	return id, ok
}

// protoMap is a map field of owner.
type protoMap struct {
	m     protoreflect.Map
	fd    protoreflect.FieldDescriptor
	owner protoreflect.Message
}

var protoKeyTypes = map[protoreflect.Kind]reflect.Type{
	protoreflect.BoolKind:     reflect.TypeOf(false),
	protoreflect.StringKind:   reflect.TypeOf(""),
	protoreflect.Int32Kind:    reflect.TypeOf(int32(0)),
	protoreflect.Sint32Kind:   reflect.TypeOf(int32(0)),
	protoreflect.Sfixed32Kind: reflect.TypeOf(int32(0)),
	protoreflect.Int64Kind:    reflect.TypeOf(int64(0)),
	protoreflect.Sint64Kind:   reflect.TypeOf(int64(0)),
	protoreflect.Sfixed64Kind: reflect.TypeOf(int64(0)),
	protoreflect.Uint32Kind:   reflect.TypeOf(uint32(0)),
	protoreflect.Fixed32Kind:  reflect.TypeOf(uint32(0)),
	protoreflect.Uint64Kind:   reflect.TypeOf(uint64(0)),
	protoreflect.Fixed64Kind:  reflect.TypeOf(uint64(0)),
}

func (l protoMap) get(key any) (any, bool, error) {
	t, ok := protoKeyTypes[l.fd.MapKey().Kind()]
	if !ok {
		return nil, false, nil
	}
	k, ok := coerceKey(key, t)
	if !ok {
		return nil, false, nil
	}
	v := l.m.Get(protoreflect.ValueOf(k.Interface()).MapKey())
	if !v.IsValid() {
		return nil, false, nil
	}
	return protoValue(v, l.fd.MapValue()), true, nil
}

func (l protoMap) keys() []any {
	var mk []reflect.Value
	l.m.Range(func(k protoreflect.MapKey, _ protoreflect.Value) bool {
		mk = append(mk, reflect.ValueOf(k.Interface()))
		return true
	})
	sort.Slice(mk, func(i, j int) bool { return lessValue(mk[i], mk[j]) })
	out := make([]any, len(mk))
	for i, k := range mk {
		out[i] = k.Interface()
	}
	return out
}

func (l protoMap) len() int         { return l.m.Len() }
func (protoMap) kind() Kind         { return KindMap }
func (l protoMap) typeName() string { return "map " + string(l.fd.FullName()) }

func (l protoMap) ident() (identity, bool) {
	id, ok := messageIdent(l.owner)
	id.field = l.fd.FullName()
	return id, ok
}
