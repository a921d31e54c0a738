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

package emit

import (
	"reflect"

	"dirpx.dev/dpx/apis"
)

// Backend creates types at runtime.
type Backend interface {
	// DefineType starts a new type. A non-nil base is embedded under the
	// logical field apis.FieldBase.
	DefineType(name string, base reflect.Type, interfaces []reflect.Type, attrs []apis.Attribute) (TypeBuilder, error)
}

// TypeBuilder collects the members of one type. It is used by a single
// generation pass and is not safe for concurrent use.
type TypeBuilder interface {
	// Name is the name given to DefineType.
	Name() string
	// DefineField adds a field. Names are logical and need not be valid Go
	// identifiers.
	DefineField(name string, t reflect.Type) error
	// HasField reports whether a field is defined.
	HasField(name string) bool
	// HasMethod reports whether a method is defined.
	HasMethod(name string) bool
	// DefineMethod adds a method whose signature is the func type sig.
	DefineMethod(name string, sig reflect.Type, body []Stmt) error
	// DefineConstructor adds a named constructor.
	DefineConstructor(name string, params []reflect.Type, body []Stmt) error
	// DefineProperty groups a getter and an optional setter.
	DefineProperty(name, getter, setter string) error
	// DefineEvent groups an add and a remove method.
	DefineEvent(name, add, remove string) error
	// Complete finishes the type. The builder cannot be used afterwards.
	Complete() (ConcreteType, error)
}

// ConcreteType is a completed type. It is immutable and safe for
// concurrent use.
type ConcreteType interface {
	Name() string
	// Base is the embedded class, or nil.
	Base() reflect.Type
	Interfaces() []reflect.Type
	Attributes() []apis.Attribute
	// Layout is the Go struct type holding the fields.
	Layout() reflect.Type
	Fields() []FieldInfo
	Methods() []MethodInfo
	Method(name string) (MethodInfo, bool)
	Constructors() []MethodInfo
	Properties() []PropertyInfo
	Events() []EventInfo
	// New runs constructor ctor with args and returns the new instance.
	New(ctor string, args ...reflect.Value) (Instance, error)
}

// Instance is a value of a ConcreteType. Instances are safe for concurrent
// use.
type Instance interface {
	Type() ConcreteType
	// Field returns a copy of a field. Struct fields are returned
	// addressable so that pointer-receiver methods see the live value.
	Field(name string) (reflect.Value, error)
	// SetField replaces a field.
	SetField(name string, v reflect.Value) error
	// Invoke calls an emitted method.
	Invoke(method string, args ...reflect.Value) ([]reflect.Value, error)
}

// FieldInfo describes a field.
type FieldInfo struct {
	Name string
	Type reflect.Type
}

// MethodInfo describes a method or constructor.
type MethodInfo struct {
	Name string
	Type reflect.Type
}

// PropertyInfo groups property accessors.
type PropertyInfo struct {
	Name   string
	Getter string
	Setter string
}

// EventInfo groups event accessors.
type EventInfo struct {
	Name   string
	Add    string
	Remove string
}

// Implements reports whether ct has a method of identical signature for
// every method of iface.
func Implements(ct ConcreteType, iface reflect.Type) bool {
	if iface == nil || iface.Kind() != reflect.Interface {
		return false
	}
	for i := 0; i < iface.NumMethod(); i++ {
		im := iface.Method(i)
		m, ok := ct.Method(im.Name)
		if !ok || m.Type != im.Type {
			return false
		}
	}
	return true
}
