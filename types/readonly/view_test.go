// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package readonly_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/runetale/roview/types/readonly"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type point struct {
	X, Y int
}

type location struct {
	Name     string
	Position *point
}

type node struct {
	Name string
	Self *node
}

func newNode() *node {
	r := &node{Name: "recursive"}
	r.Self = r
	return r
}

var constructors = []struct {
	name   string
	of     func(any) (*readonly.View, error)
	policy readonly.Policy
	report bool
}{
	{"Of", readonly.Of, readonly.RejectWithError, false},
	{"SilentOf", readonly.SilentOf, readonly.RejectSilently, true},
}

func TestNewRejectsPrimitives(t *testing.T) {
	for _, c := range constructors {
		for _, v := range []any{3, "foo", true, nil, 1.5, (*point)(nil), map[string]int(nil), big.NewInt(7)} {
			view, err := c.of(v)
			assert.Nil(t, view, "%s(%#v)", c.name, v)
			assert.ErrorIs(t, err, readonly.ErrInvalidArgument, "%s(%#v)", c.name, v)

			var iae *readonly.InvalidArgumentError
			require.ErrorAs(t, err, &iae)
			assert.Equal(t, v, iae.Value)
		}
	}
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := readonly.New(map[string]int{}, readonly.Policy(9))
	require.ErrorIs(t, err, readonly.ErrInvalidArgument)
}

func TestNestedViewsKeepPolicy(t *testing.T) {
	for _, c := range constructors {
		v, err := c.of(&location{Name: "origin", Position: &point{}})
		require.NoError(t, err)
		assert.Equal(t, c.policy, v.Policy())

		pos, err := v.Get("Position")
		require.NoError(t, err)
		require.IsType(t, &readonly.View{}, pos)
		assert.Equal(t, c.policy, pos.(*readonly.View).Policy(), c.name)
	}
}

func TestSetIsIgnored(t *testing.T) {
	for _, c := range constructors {
		o := map[string]any{"a": 1, "b": 2}
		v, err := c.of(o)
		require.NoError(t, err)

		assert.Equal(t, c.report, v.Set("a", 3), c.name)

		a, err := v.Get("a")
		require.NoError(t, err)
		assert.Equal(t, 1, a)
		assert.Equal(t, 1, o["a"])
	}
}

func TestDeleteIsIgnored(t *testing.T) {
	for _, c := range constructors {
		o := map[string]any{"a": 1, "b": 2}
		v, err := c.of(o)
		require.NoError(t, err)

		assert.Equal(t, c.report, v.Delete("a"), c.name)

		a, err := v.Get("a")
		require.NoError(t, err)
		assert.Equal(t, 1, a)
		assert.Contains(t, o, "a")
		assert.Len(t, o, 2)
	}
}

func TestStrictMutation(t *testing.T) {
	o := map[string]any{"a": 1}

	v, err := readonly.Of(o)
	require.NoError(t, err)
	err = v.SetStrict("a", 3)
	require.ErrorIs(t, err, readonly.ErrReadOnly)
	var me *readonly.MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "set", me.Op)
	assert.Equal(t, "a", me.Key)
	require.ErrorIs(t, v.DeleteStrict("a"), readonly.ErrReadOnly)

	s, err := readonly.SilentOf(o)
	require.NoError(t, err)
	assert.NoError(t, s.SetStrict("a", 3))
	assert.NoError(t, s.DeleteStrict("a"))

	assert.Equal(t, map[string]any{"a": 1}, o)
}

func TestPrimitivesPassThrough(t *testing.T) {
	o := map[string]any{"a": 1, "b": "two", "c": 3.5, "d": nil}
	v, err := readonly.Of(o)
	require.NoError(t, err)

	for k, want := range o {
		got, err := v.Get(k)
		require.NoError(t, err)
		assert.Equal(t, want, got, k)
	}

	missing, err := v.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.False(t, v.Has("nope"))
	assert.True(t, v.Has("d"))
}

func TestNestedObjectsAreWrapped(t *testing.T) {
	for _, c := range constructors {
		l := &location{Name: "origin", Position: &point{X: 0, Y: 0}}
		v, err := c.of(l)
		require.NoError(t, err)

		p1, err := v.Get("Position")
		require.NoError(t, err)
		p2, err := v.Get("Position")
		require.NoError(t, err)

		pv1, pv2 := p1.(*readonly.View), p2.(*readonly.View)
		assert.NotSame(t, pv1, pv2)
		assert.True(t, readonly.SameTarget(pv1, pv2))

		assert.Equal(t, c.report, pv1.Set("X", 5))
		assert.Equal(t, c.report, pv1.Delete("Y"))

		x, err := v.GetPath("Position", "X")
		require.NoError(t, err)
		assert.Equal(t, 0, x)
		assert.Equal(t, 0, l.Position.X)
		assert.Equal(t, 0, l.Position.Y)
	}
}

func TestCycle(t *testing.T) {
	for _, c := range constructors {
		r := newNode()
		v, err := c.of(r)
		require.NoError(t, err)

		path := []any{}
		for i := 0; i < 64; i++ {
			path = append(path, "Self")
		}
		deep, err := v.GetPath(path...)
		require.NoError(t, err)

		dv := deep.(*readonly.View)
		assert.Equal(t, c.report, dv.Set("Name", "foo"))
		name, err := dv.Get("Name")
		require.NoError(t, err)
		assert.Equal(t, "recursive", name)
		assert.True(t, readonly.SameTarget(v, dv))
		assert.Equal(t, "recursive", r.Name)
	}
}

func TestEmbeddedFieldsArePromoted(t *testing.T) {
	type base struct {
		ID int
	}
	type derived struct {
		base
		Label  string
		hidden int
	}
	v, err := readonly.Of(derived{base: base{ID: 7}, Label: "l", hidden: 1})
	require.NoError(t, err)

	id, err := v.Get("ID")
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	hidden, err := v.Get("hidden")
	require.NoError(t, err)
	assert.Nil(t, hidden)

	if diff := cmp.Diff([]any{"ID", "Label"}, v.Keys().AppendTo(nil)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, readonly.KindRecord, v.Kind())
}

type temperature struct {
	C float64
}

func (t temperature) Fahrenheit() float64 { return t.C*9/5 + 32 }

func (t *temperature) Reset() { t.C = 0 }

func TestMethods(t *testing.T) {
	tmp := &temperature{C: 100}
	v, err := readonly.Of(tmp)
	require.NoError(t, err)

	f, err := v.Get("Fahrenheit")
	require.NoError(t, err)
	fv := f.(*readonly.View)
	assert.Equal(t, readonly.KindFunc, fv.Kind())

	out, err := fv.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{212.0}, out)

	reset, err := v.Get("Reset")
	require.NoError(t, err)
	assert.Nil(t, reset)
	assert.Equal(t, 100.0, tmp.C)
}

type counters map[string]int

func (c counters) Bump(k string) { c[k]++ }

func (c counters) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

type box struct {
	P *point
}

func (b box) Move() { b.P.X = 99 }

type grid struct {
	Cells [2][2]int
}

func (g grid) Sum() int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			n += c
		}
	}
	return n
}

func TestMethodsWithSharedReceiverAreHidden(t *testing.T) {
	c := counters{"a": 1}
	cv, err := readonly.Of(c)
	require.NoError(t, err)
	for _, name := range []string{"Bump", "Total"} {
		m, err := cv.Get(name)
		require.NoError(t, err)
		assert.Nil(t, m, name)
	}
	assert.Equal(t, 1, c["a"])

	b := &box{P: &point{X: 1}}
	bv, err := readonly.Of(b)
	require.NoError(t, err)
	move, err := bv.Get("Move")
	require.NoError(t, err)
	assert.Nil(t, move)
	assert.Equal(t, 1, b.P.X)

	gv, err := readonly.Of(&grid{Cells: [2][2]int{{1, 2}, {3, 4}}})
	require.NoError(t, err)
	sum, err := gv.Get("Sum")
	require.NoError(t, err)
	require.NotNil(t, sum)
	out, err := sum.(*readonly.View).Call()
	require.NoError(t, err)
	assert.Equal(t, []any{10}, out)
}

func TestCall(t *testing.T) {
	boom := errors.New("boom")
	fns := map[string]any{
		"make": func(n int) map[string]int { return map[string]int{"n": n} },
		"fail": func() error { return boom },
		"sum": func(xs ...int) int {
			s := 0
			for _, x := range xs {
				s += x
			}
			return s
		},
	}
	v, err := readonly.Of(fns)
	require.NoError(t, err)

	mk, err := v.Get("make")
	require.NoError(t, err)
	out, err := mk.(*readonly.View).Call(3)
	require.NoError(t, err)
	require.Len(t, out, 1)
	n, err := out[0].(*readonly.View).Get("n")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = mk.(*readonly.View).Call("3")
	assert.ErrorIs(t, err, readonly.ErrInvalidArgument)
	_, err = mk.(*readonly.View).Call()
	assert.ErrorIs(t, err, readonly.ErrInvalidArgument)

	fail, err := v.Get("fail")
	require.NoError(t, err)
	out, err = fail.(*readonly.View).Call()
	require.NoError(t, err)
	assert.Equal(t, []any{boom}, out)

	sum, err := v.GetPath("sum")
	require.NoError(t, err)
	out, err = sum.(*readonly.View).Call(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{6}, out)

	_, err = v.Call()
	assert.ErrorIs(t, err, readonly.ErrNotCallable)
}

type failingGetter struct {
	err error
}

func (g failingGetter) Get(key any) (any, error) {
	if key == "ok" {
		return map[string]int{"v": 1}, nil
	}
	return nil, g.err
}

func TestGetterErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	v, err := readonly.Of(failingGetter{err: boom})
	require.NoError(t, err)

	_, err = v.Get("x")
	assert.Same(t, boom, err)

	got, err := v.GetPath("ok", "v")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = v.GetPath("x", "y")
	var pe *readonly.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []any{"x"}, pe.Path)
	assert.ErrorIs(t, err, boom)
}

func TestGetPathIntoPrimitive(t *testing.T) {
	v, err := readonly.Of(map[string]any{"a": 1})
	require.NoError(t, err)

	_, err = v.GetPath("a", "b")
	var pe *readonly.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []any{"a", "b"}, pe.Path)
	assert.ErrorIs(t, err, readonly.ErrInvalidArgument)
}

func TestKeyCoercion(t *testing.T) {
	v, err := readonly.Of(map[string]any{
		"byInt":    map[int]string{1: "one"},
		"byString": map[string]int{"2": 2},
		"list":     []string{"a", "b"},
		"array":    [2]bool{true, false},
	})
	require.NoError(t, err)

	cases := []struct {
		path []any
		want any
	}{
		{[]any{"byInt", "1"}, "one"},
		{[]any{"byInt", int64(1)}, "one"},
		{[]any{"byInt", "01"}, nil},
		{[]any{"byString", 2}, 2},
		{[]any{"list", 1}, "b"},
		{[]any{"list", "0"}, "a"},
		{[]any{"list", "00"}, nil},
		{[]any{"list", -1}, nil},
		{[]any{"list", 2}, nil},
		{[]any{"array", uint8(0)}, true},
	}
	for _, c := range cases {
		got, err := v.GetPath(c.path...)
		require.NoError(t, err, "%v", c.path)
		assert.Equal(t, c.want, got, "%v", c.path)
	}

	keys, err := v.Get("byInt")
	require.NoError(t, err)
	assert.Equal(t, []any{1}, keys.(*readonly.View).Keys().AppendTo(nil))
	assert.Equal(t, []any{"array", "byInt", "byString", "list"}, v.Keys().AppendTo(nil))
}

func TestScalarCellsAreCopied(t *testing.T) {
	n := 4
	target := &struct {
		Count *int
		Big   *big.Int
	}{Count: &n, Big: big.NewInt(10)}
	v, err := readonly.Of(target)
	require.NoError(t, err)

	count, err := v.Get("Count")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	b, err := v.Get("Big")
	require.NoError(t, err)
	bi := b.(*big.Int)
	bi.SetInt64(99)
	assert.Equal(t, int64(10), target.Big.Int64())
}

func TestBigValuesAreCopied(t *testing.T) {
	target := &struct {
		N big.Int
		R big.Rat
	}{}
	target.N.SetInt64(1 << 40)
	target.R.SetFrac64(1, 3)

	v, err := readonly.Of(target)
	require.NoError(t, err)

	n, err := v.Get("N")
	require.NoError(t, err)
	require.IsType(t, big.Int{}, n)
	got := n.(big.Int)
	got.SetInt64(7)
	assert.Equal(t, int64(1<<40), target.N.Int64())

	r, err := v.Get("R")
	require.NoError(t, err)
	gr := r.(big.Rat)
	gr.SetInt64(2)
	assert.Equal(t, "1/3", target.R.String())
}

func TestInterfaceKeyedMaps(t *testing.T) {
	v, err := readonly.Of(map[any]any{80: "http", "x": 1, int64(7): "seven"})
	require.NoError(t, err)

	cases := []struct {
		key  any
		want any
	}{
		{80, "http"},
		{"80", "http"},
		{int32(80), "http"},
		{"080", nil},
		{"x", 1},
		{"7", "seven"},
		{7, "seven"},
	}
	for _, c := range cases {
		got, err := v.Get(c.key)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%#v", c.key)
	}

	keys := v.Keys()
	for i := 0; i < keys.Len(); i++ {
		assert.True(t, v.Has(keys.At(i)), "%v", keys.At(i))
	}
}

func TestBytes(t *testing.T) {
	buf := []byte("hello")
	v, err := readonly.Of(map[string]any{"buf": buf})
	require.NoError(t, err)

	got, err := v.Get("buf")
	require.NoError(t, err)
	bv := got.(*readonly.View)

	ro, ok := bv.Bytes()
	require.True(t, ok)
	assert.True(t, ro.EqualString("hello"))

	h, err := bv.Get(0)
	require.NoError(t, err)
	assert.Equal(t, byte('h'), h)

	_, ok = v.Bytes()
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	v, err := readonly.SilentOf(map[string]int{"secret": 1})
	require.NoError(t, err)
	assert.Equal(t, "readonly.View(map map[string]int, reject-silently)", v.String())
}

func TestSameTarget(t *testing.T) {
	shared := map[string]int{"a": 1}
	a, err := readonly.Of(shared)
	require.NoError(t, err)
	b, err := readonly.SilentOf(shared)
	require.NoError(t, err)
	c, err := readonly.Of(map[string]int{"a": 1})
	require.NoError(t, err)

	assert.True(t, readonly.SameTarget(a, b))
	assert.False(t, readonly.SameTarget(a, c))
	assert.True(t, readonly.SameTarget(a, a))
	assert.False(t, readonly.SameTarget(a, nil))
}

func TestViewOfView(t *testing.T) {
	inner, err := readonly.SilentOf(map[string]any{"p": map[string]int{"x": 1}})
	require.NoError(t, err)
	outer, err := readonly.Of(inner)
	require.NoError(t, err)

	assert.True(t, readonly.SameTarget(inner, outer))
	assert.False(t, outer.Set("p", nil))

	p, err := outer.Get("p")
	require.NoError(t, err)
	assert.Equal(t, readonly.RejectWithError, p.(*readonly.View).Policy())
}
