/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package reflectemit

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/emit"
)

type counter struct {
	N    int
	Name string
}

func (c *counter) Add(d int) int {
	c.N += d
	return c.N
}

func (c counter) Label(prefix string, parts ...string) string {
	out := prefix + c.Name
	for _, p := range parts {
		out += "/" + p
	}
	return out
}

var (
	intT    = reflect.TypeOf(0)
	stringT = reflect.TypeOf("")
	errT    = reflect.TypeOf((*error)(nil)).Elem()
)

func build(t *testing.T, base reflect.Type, fn func(tb emit.TypeBuilder)) emit.ConcreteType {
	t.Helper()
	tb, err := New().DefineType("test.Type", base, nil, nil)
	require.NoError(t, err)
	fn(tb)
	ct, err := tb.Complete()
	require.NoError(t, err)
	return ct
}

func TestBackend_FieldsAndConstructor(t *testing.T) {
	ct := build(t, nil, func(tb emit.TypeBuilder) {
		require.NoError(t, tb.DefineField("__count", intT))
		require.NoError(t, tb.DefineField("weird name!", stringT))
		require.NoError(t, tb.DefineConstructor("", []reflect.Type{intT, stringT}, []emit.Stmt{
			emit.SetField{Name: "__count", X: emit.Arg{Index: 0}},
			emit.SetField{Name: "weird name!", X: emit.Arg{Index: 1}},
		}))
		require.NoError(t, tb.DefineMethod("Count", reflect.TypeOf(func() int { return 0 }), []emit.Stmt{
			emit.Return{Values: []emit.Expr{emit.Field{Name: "__count"}}},
		}))
	})

	assert.Equal(t, reflect.Struct, ct.Layout().Kind())
	assert.Equal(t, 2, ct.Layout().NumField())

	inst, err := ct.New("", reflect.ValueOf(7), reflect.ValueOf("x"))
	require.NoError(t, err)

	out, err := inst.Invoke("Count")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 7, out[0].Interface())

	v, err := inst.Field("weird name!")
	require.NoError(t, err)
	assert.Equal(t, "x", v.Interface())

	require.NoError(t, inst.SetField("__count", reflect.ValueOf(int8(3))))
	out, err = inst.Invoke("Count")
	require.NoError(t, err)
	assert.Equal(t, 3, out[0].Interface())
}

func TestBackend_BaseMethodsSeeLiveState(t *testing.T) {
	ct := build(t, reflect.TypeOf(counter{}), func(tb emit.TypeBuilder) {
		require.NoError(t, tb.DefineMethod("Add", reflect.TypeOf(func(int) int { return 0 }), []emit.Stmt{
			emit.Return{Values: []emit.Expr{
				emit.Call{Recv: emit.Field{Name: apis.FieldBase}, Method: "Add", Args: emit.Args(1)},
			}},
		}))
		require.NoError(t, tb.DefineMethod("Label", reflect.TypeOf(func(string, ...string) string { return "" }), []emit.Stmt{
			emit.SetField{Recv: emit.Field{Name: apis.FieldBase}, Name: "Name", X: emit.Const{Value: "c"}},
			emit.Return{Values: []emit.Expr{
				emit.Call{Recv: emit.Field{Name: apis.FieldBase}, Method: "Label", Args: emit.Args(2)},
			}},
		}))
	})

	inst, err := ct.New("")
	require.NoError(t, err)

	_, err = inst.Invoke("Add", reflect.ValueOf(2))
	require.NoError(t, err)
	out, err := inst.Invoke("Add", reflect.ValueOf(3))
	require.NoError(t, err)
	assert.Equal(t, 5, out[0].Interface())

	out, err = inst.Invoke("Label", reflect.ValueOf("p:"), reflect.ValueOf([]string{"a", "b"}))
	require.NoError(t, err)
	assert.Equal(t, "p:c/a/b", out[0].Interface())
}

func TestBackend_CheckFailAndGuard(t *testing.T) {
	boom := errors.New("boom")
	sig := reflect.TypeOf(func(bool) (int, error) { return 0, nil })
	ct := build(t, nil, func(tb emit.TypeBuilder) {
		require.NoError(t, tb.DefineMethod("Maybe", sig, []emit.Stmt{
			emit.If{
				Cond: emit.Arg{Index: 0},
				Then: []emit.Stmt{emit.Check{X: emit.CallFunc{Fn: func() error { return boom }}}},
			},
			emit.Return{Values: []emit.Expr{emit.Const{Value: 1}, emit.Zero{Type: errT}}},
		}))
		require.NoError(t, tb.DefineMethod("Explode", reflect.TypeOf(func() {}), []emit.Stmt{
			emit.Guard{Body: []emit.Stmt{emit.Do{X: emit.CallFunc{Fn: func() { panic("bad") }}}}},
		}))
		require.NoError(t, tb.DefineMethod("Pair", sig, []emit.Stmt{
			emit.Return{Values: []emit.Expr{emit.CallFunc{Fn: func() (int, error) { return 9, nil }}}},
		}))
	})
	inst, err := ct.New("")
	require.NoError(t, err)

	_, err = inst.Invoke("Maybe", reflect.ValueOf(true))
	assert.ErrorIs(t, err, boom)

	out, err := inst.Invoke("Maybe", reflect.ValueOf(false))
	require.NoError(t, err)
	assert.Equal(t, 1, out[0].Interface())
	assert.True(t, out[1].IsNil())

	_, err = inst.Invoke("Explode")
	assert.ErrorIs(t, err, apis.ErrPanic)
	assert.ErrorIs(t, err, apis.ErrInvocation)

	out, err = inst.Invoke("Pair", reflect.ValueOf(false))
	require.NoError(t, err)
	assert.Equal(t, 9, out[0].Interface())
}

func TestBackend_PointersAndSlices(t *testing.T) {
	sig := reflect.TypeOf(func(*int) []int { return nil })
	ct := build(t, nil, func(tb emit.TypeBuilder) {
		require.NoError(t, tb.DefineMethod("Bump", sig, []emit.Stmt{
			emit.Assign{Names: []string{"p"}, X: emit.NewPointer{Elem: intT, X: emit.Deref{X: emit.Arg{Index: 0}}}},
			emit.Store{Ptr: emit.Local{Name: "p"}, X: emit.Const{Value: 42}},
			emit.If{
				Cond: emit.Not{X: emit.IsNil{X: emit.Arg{Index: 0}}},
				Then: []emit.Stmt{emit.Store{Ptr: emit.Arg{Index: 0}, X: emit.Deref{X: emit.Local{Name: "p"}}}},
			},
			emit.Return{Values: []emit.Expr{emit.MakeSlice{Elem: intT, Items: []emit.Expr{
				emit.Deref{X: emit.Local{Name: "p"}},
				emit.Convert{To: intT, X: emit.Const{Value: int64(1)}},
			}}}},
		}))
	})
	inst, err := ct.New("")
	require.NoError(t, err)

	x := 1
	out, err := inst.Invoke("Bump", reflect.ValueOf(&x))
	require.NoError(t, err)
	assert.Equal(t, 42, x)
	assert.Equal(t, []int{42, 1}, out[0].Interface())

	out, err = inst.Invoke("Bump", reflect.Value{})
	require.NoError(t, err)
	assert.Equal(t, []int{42, 1}, out[0].Interface())
}

func TestBackend_NestedInstances(t *testing.T) {
	inner := build(t, nil, func(tb emit.TypeBuilder) {
		require.NoError(t, tb.DefineField("v", stringT))
		require.NoError(t, tb.DefineConstructor("", []reflect.Type{stringT}, []emit.Stmt{
			emit.SetField{Name: "v", X: emit.Arg{Index: 0}},
		}))
		require.NoError(t, tb.DefineMethod("Get", reflect.TypeOf(func() string { return "" }), []emit.Stmt{
			emit.Return{Values: []emit.Expr{emit.Field{Name: "v"}}},
		}))
	})
	outer := build(t, nil, func(tb emit.TypeBuilder) {
		require.NoError(t, tb.DefineMethod("Make", reflect.TypeOf(func(string) string { return "" }), []emit.Stmt{
			emit.Assign{Names: []string{"o"}, X: emit.NewObject{Type: inner, Args: emit.Args(1)}},
			emit.SetField{Recv: emit.Local{Name: "o"}, Name: "v", X: emit.Const{Value: "changed"}},
			emit.Return{Values: []emit.Expr{emit.Call{Recv: emit.Local{Name: "o"}, Method: "Get"}}},
		}))
	})
	inst, err := outer.New("")
	require.NoError(t, err)
	out, err := inst.Invoke("Make", reflect.ValueOf("x"))
	require.NoError(t, err)
	assert.Equal(t, "changed", out[0].Interface())
}

func TestBackend_Errors(t *testing.T) {
	b := New()
	_, err := b.DefineType("", nil, nil, nil)
	assert.ErrorIs(t, err, apis.ErrEmission)

	_, err = b.DefineType("x", intT, nil, nil)
	assert.ErrorIs(t, err, apis.ErrNotClass)

	_, err = b.DefineType("x", nil, []reflect.Type{intT}, nil)
	assert.ErrorIs(t, err, apis.ErrNotInterface)

	tb, err := b.DefineType("x", nil, nil, nil)
	require.NoError(t, err)
	err = tb.DefineMethod("M", reflect.TypeOf(func() int { return 0 }), []emit.Stmt{
		emit.Return{Values: []emit.Expr{emit.Field{Name: "missing"}}},
	})
	require.NoError(t, err)
	_, err = tb.Complete()
	assert.ErrorIs(t, err, apis.ErrEmission)

	tb, err = b.DefineType("y", nil, nil, nil)
	require.NoError(t, err)
	err = tb.DefineMethod("M", reflect.TypeOf(func() {}), []emit.Stmt{emit.Do{X: emit.Arg{Index: 3}}})
	assert.ErrorIs(t, err, apis.ErrEmission)
	require.NoError(t, tb.DefineMethod("N", reflect.TypeOf(func() {}), nil))
	assert.ErrorIs(t, tb.DefineMethod("N", reflect.TypeOf(func() {}), nil), apis.ErrEmission)
	require.NoError(t, tb.DefineProperty("P", "N", ""))
	ct, err := tb.Complete()
	require.NoError(t, err)
	assert.ErrorIs(t, tb.DefineField("late", intT), apis.ErrTypeCompleted)

	inst, err := ct.New("")
	require.NoError(t, err)
	_, err = inst.Invoke("Nope")
	assert.ErrorIs(t, err, apis.ErrNoMethod)
	_, err = inst.Invoke("N", reflect.ValueOf(1))
	assert.ErrorIs(t, err, apis.ErrArguments)
	assert.Len(t, ct.Properties(), 1)
}

func TestImplements(t *testing.T) {
	type getter interface{ Get() string }
	ct := build(t, nil, func(tb emit.TypeBuilder) {
		require.NoError(t, tb.DefineMethod("Get", reflect.TypeOf(func() string { return "" }), nil))
	})
	assert.True(t, emit.Implements(ct, reflect.TypeOf((*getter)(nil)).Elem()))
	assert.False(t, emit.Implements(ct, reflect.TypeOf((*interface{ Put() })(nil)).Elem()))
}

func TestPhysical(t *testing.T) {
	assert.Equal(t, "F0___mixin_pkg_I", physical(0, "__mixin_pkg.I"))
	assert.Equal(t, "F3_x", physical(3, "x"))
}
