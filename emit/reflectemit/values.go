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
	"fmt"
	"reflect"
	"unsafe"

	"go.trai.ch/zerr"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/emit"
)

var instanceType = reflect.TypeOf((*emit.Instance)(nil)).Elem()

func one(v reflect.Value) []reflect.Value {
	return []reflect.Value{v}
}

func first(vs []reflect.Value) reflect.Value {
	if len(vs) == 0 {
		return reflect.Value{}
	}
	return vs[0]
}

// unwrap strips interface boxes.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func asInstance(v reflect.Value) (emit.Instance, bool) {
	v = unwrap(v)
	if !v.IsValid() || !v.Type().Implements(instanceType) || !v.CanInterface() {
		return nil, false
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, false
	}
	inst, ok := v.Interface().(emit.Instance)
	return inst, ok
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// adapt makes v usable where a t is expected. Nil converts to the zero
// value; numeric kinds convert among each other; named types convert to
// and from their underlying type.
func adapt(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Zero(t), nil
		}
		return adapt(v.Elem(), t)
	}
	if v.Type().ConvertibleTo(t) && (v.Kind() == t.Kind() || isNumeric(v.Kind()) && isNumeric(t.Kind())) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, apis.Fail(apis.ErrArguments,
		"have", v.Type().String(),
		"want", t.String())
}

// exact is adapt followed by boxing into a value of exactly type t.
func exact(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	v, err := adapt(v, t)
	if err != nil {
		return reflect.Value{}, err
	}
	if v.Type() == t {
		return v, nil
	}
	nv := reflect.New(t).Elem()
	nv.Set(v)
	return nv, nil
}

func exactAll(vs []reflect.Value, t reflect.Type) ([]reflect.Value, error) {
	if len(vs) != t.NumIn() {
		return nil, apis.Fail(apis.ErrArguments, "have", len(vs), "want", t.NumIn())
	}
	out := make([]reflect.Value, len(vs))
	for i, v := range vs {
		cv, err := exact(v, t.In(i))
		if err != nil {
			return nil, with(err, "argument", i)
		}
		out[i] = cv
	}
	return out, nil
}

func zeros(sig reflect.Type) []reflect.Value {
	out := make([]reflect.Value, sig.NumOut())
	for i := range out {
		out[i] = reflect.Zero(sig.Out(i))
	}
	return out
}

// errorOf returns the error held by v, or nil.
func errorOf(v reflect.Value) error {
	v = unwrap(v)
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	err, _ := v.Interface().(error)
	return err
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}

// call invokes fn, spreading a trailing slice into a variadic parameter
// when it is passed whole.
func call(fn reflect.Value, args []reflect.Value) ([]reflect.Value, error) {
	ft := fn.Type()
	n := ft.NumIn()
	if ft.IsVariadic() && len(args) == n {
		if last := unwrap(args[n-1]); !last.IsValid() || last.Type().AssignableTo(ft.In(n-1)) {
			fixed, err := exactAll(args, ft)
			if err != nil {
				return nil, err
			}
			return fn.CallSlice(fixed), nil
		}
	}
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, apis.Fail(apis.ErrArguments, "have", len(args), "want_at_least", n-1)
		}
		out := make([]reflect.Value, len(args))
		for i, a := range args {
			var pt reflect.Type
			if i < n-1 {
				pt = ft.In(i)
			} else {
				pt = ft.In(n - 1).Elem()
			}
			cv, err := exact(a, pt)
			if err != nil {
				return nil, with(err, "argument", i)
			}
			out[i] = cv
		}
		return fn.Call(out), nil
	}
	fixed, err := exactAll(args, ft)
	if err != nil {
		return nil, err
	}
	return fn.Call(fixed), nil
}

// callMethod dispatches name on recv.
func callMethod(recv reflect.Value, name string, args []reflect.Value) ([]reflect.Value, error) {
	if inst, ok := asInstance(recv); ok {
		if _, has := inst.Type().Method(name); has {
			return inst.Invoke(name, args...)
		}
	}
	rv := recv
	if rv.IsValid() && rv.Kind() == reflect.Interface {
		rv = unwrap(rv)
	}
	if !rv.IsValid() {
		return nil, apis.Fail(apis.ErrMethodNotFound, "method", name, "reason", "nil receiver")
	}
	m := rv.MethodByName(name)
	if !m.IsValid() && rv.Kind() != reflect.Pointer && rv.CanAddr() {
		m = rv.Addr().MethodByName(name)
	}
	if !m.IsValid() {
		return nil, apis.Fail(apis.ErrMethodNotFound, "method", name, "type", rv.Type().String())
	}
	return call(m, args)
}

// fieldOf reads a Go struct field or an instance field of v.
func fieldOf(v reflect.Value, name string) (reflect.Value, error) {
	if inst, ok := asInstance(v); ok {
		return inst.Field(name)
	}
	v = unwrap(v)
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, apis.Fail(apis.ErrArguments, "field", name, "reason", "nil pointer")
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return reflect.Value{}, apis.Fail(apis.ErrEmission, "field", name, "reason", "not a struct")
	}
	f := v.FieldByName(name)
	if !f.IsValid() {
		return reflect.Value{}, apis.Fail(apis.ErrEmission, "field", name, "type", v.Type().String())
	}
	if f.CanInterface() {
		return f, nil
	}
	if !f.CanAddr() {
		return reflect.Value{}, apis.Fail(apis.ErrEmission, "field", name, "reason", "unexported field of unaddressable struct")
	}
	// #nosec G103 -- unexported fields are reached through their address
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem(), nil
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return with(apis.Fail(apis.ErrPanic, "panic", err.Error()), "cause", err)
	}
	return apis.Fail(apis.ErrPanic, "panic", fmt.Sprint(r))
}

// with attaches kv pairs to err.
func with(err error, kv ...any) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			err = zerr.With(err, key, kv[i+1])
		}
	}
	return err
}
