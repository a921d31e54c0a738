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

package contrib

import (
	"reflect"
	"strconv"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/emit"
	"dirpx.dev/dpx/meta"
	"dirpx.dev/dpx/serial"
)

// DeserializeCtor is the constructor restoring a proxy from serial info.
// Its first parameter is the *serial.Info, followed by the parameters of
// the default constructor.
const DeserializeCtor = "deserialize"

var (
	infoType          = reflect.TypeOf((*serial.Info)(nil))
	getObjectDataType = reflect.TypeOf(func(*serial.Info) error { return nil })
)

// Serialization makes proxies of serializable classes serializable. When
// the class writes its own object data, the proxy delegates to it;
// otherwise the named fields of the class are captured and restored in
// declaration order.
type Serialization struct {
	class    reflect.Type
	delegate bool
}

// NewSerialization returns the serialization contributor for class, or
// nil when class is not serializable.
func NewSerialization(class reflect.Type) *Serialization {
	if class == nil || !reflect.PointerTo(class).Implements(apis.SerializableType) {
		return nil
	}
	return &Serialization{class: class}
}

// Name identifies the contributor as member owner.
func (s *Serialization) Name() string { return NameSerialization }

// Delegating reports whether object data is written by the class itself.
func (s *Serialization) Delegating() bool { return s.delegate }

// CapturedFields returns the fields captured when not delegating, in
// declaration order. Unexported fields are captured too; blank fields are
// skipped.
func (s *Serialization) CapturedFields() []reflect.StructField {
	var out []reflect.StructField
	for i := 0; i < s.class.NumField(); i++ {
		if f := s.class.Field(i); f.Name != "_" {
			out = append(out, f)
		}
	}
	return out
}

// unencodable returns the first captured field whose kind has no encoded
// form.
func (s *Serialization) unencodable() (reflect.StructField, bool) {
	for _, f := range s.CapturedFields() {
		switch f.Type.Kind() {
		case reflect.Func, reflect.Chan, reflect.UnsafePointer:
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// CollectElementsToProxy claims the members this contributor emits.
func (s *Serialization) CollectElementsToProxy(_ apis.Hook, model *meta.MetaType) error {
	pt := reflect.PointerTo(s.class)
	if !pt.Implements(apis.ObjectDataProviderType) {
		if f, bad := s.unencodable(); bad {
			return apis.Fail(apis.ErrNotSerializable,
				"type", s.class.String(),
				"field", f.Name,
				"reason", "field kind "+f.Type.Kind().String()+" cannot be captured")
		}
		return model.AddMethod(&meta.MetaMethod{
			Method: apis.Method{Name: apis.MethodGetObjectData, Owner: s.class, Type: getObjectDataType},
			Owner:  NameSerialization,
		})
	}
	s.delegate = true
	mm, ok := model.Method(apis.MethodGetObjectData)
	if !ok {
		return apis.Fail(apis.ErrUnroutedMember, "type", s.class.String(), "method", apis.MethodGetObjectData)
	}
	if !mm.Method.Overridable {
		return apis.Fail(apis.ErrSealedObjectData, "type", s.class.String())
	}
	if !pt.Implements(apis.ObjectDataReceiverType) {
		return apis.Fail(apis.ErrMissingDeserializationConstructor, "type", s.class.String())
	}
	mm.Ignore = true
	return nil
}

// Generate emits the claimed members into class.
func (s *Serialization) Generate(class *Class, opts config.Options) error {
	base := emit.Field{Name: apis.FieldBase}
	info := emit.Arg{Index: 0}

	var write, restore []emit.Stmt
	if s.delegate {
		write = []emit.Stmt{emit.Return{Values: []emit.Expr{
			emit.Call{Recv: base, Method: apis.MethodGetObjectData, Args: []emit.Expr{info}},
		}}}
		restore = []emit.Stmt{emit.Check{X: emit.Call{Recv: base, Method: apis.MethodSetObjectData, Args: []emit.Expr{info}}}}
	} else {
		for i, f := range s.CapturedFields() {
			write = append(write, emit.Check{X: emit.Call{Recv: info, Method: "AddValue", Args: []emit.Expr{
				emit.Const{Value: f.Name},
				emit.Field{Recv: base, Name: f.Name},
			}}})
			v, e := local("v", i), local("e", i)
			restore = append(restore,
				emit.Assign{Names: []string{v, e}, X: emit.Call{Recv: info, Method: "ValueAs", Args: []emit.Expr{
					emit.Const{Value: f.Name},
					emit.Const{Value: f.Type},
				}}},
				emit.Check{X: emit.Local{Name: e}},
				emit.SetField{Recv: base, Name: f.Name, X: emit.Local{Name: v}},
			)
		}
		write = append(write, emit.Return{Values: []emit.Expr{emit.Zero{Type: apis.ErrorType}}})
	}
	// Guarded so that a panicking class surfaces as an error.
	if err := class.Builder.DefineMethod(apis.MethodGetObjectData, getObjectDataType, []emit.Stmt{emit.Guard{Body: write}}); err != nil {
		return err
	}

	params := append([]reflect.Type{infoType}, class.CtorTypes()...)
	body := append(class.InitFields(1, opts.Selector), restore...)
	return class.Builder.DefineConstructor(DeserializeCtor, params, body)
}

func local(prefix string, i int) string {
	return prefix + strconv.Itoa(i)
}
