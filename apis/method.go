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

package apis

import (
	"reflect"
	"strings"
)

// Method describes one member of a proxied type independently of the
// facility that discovered it. Method values are produced by an Introspector
// and are immutable.
type Method struct {
	// Name is the exported method name.
	Name string
	// Owner is the declaring type: the struct class (not its pointer) for
	// class members, or the interface for interface members.
	Owner reflect.Type
	// Type is the method signature as a func type without receiver.
	Type reflect.Type
	// Overridable is false for members the class seals.
	Overridable bool
	// Explicit marks explicit interface implementations. The reflect
	// introspector never reports them; custom introspectors may.
	Explicit bool
	// Generic marks methods carrying their own type parameters.
	Generic bool
}

// Param describes a formal parameter of a Method.
type Param struct {
	Index int
	Type  reflect.Type
	// ByRef marks pointer parameters whose element is not a struct. Writes
	// through such pointers are visible to the caller, so proxies copy
	// them in before the call and back out after it.
	ByRef bool
}

// IsByRef reports whether t is passed by reference in the proxy sense.
func IsByRef(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() != reflect.Struct
}

// Params returns the formal parameters of m.
func (m Method) Params() []Param {
	if m.Type == nil {
		return nil
	}
	out := make([]Param, m.Type.NumIn())
	for i := range out {
		pt := m.Type.In(i)
		out[i] = Param{Index: i, Type: pt, ByRef: IsByRef(pt)}
	}
	return out
}

// HasByRef reports whether any parameter of m is ByRef.
func (m Method) HasByRef() bool {
	for _, p := range m.Params() {
		if p.ByRef {
			return true
		}
	}
	return false
}

// ReturnsError reports whether the last result of m is the error interface.
func (m Method) ReturnsError() bool {
	if m.Type == nil || m.Type.NumOut() == 0 {
		return false
	}
	return m.Type.Out(m.Type.NumOut()-1) == ErrorType
}

// Signature renders m as "Name(int, *string) (bool, error)".
func (m Method) Signature() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteString(SignatureOf(m.Type))
	return b.String()
}

// SameSignature reports whether m and o can be implemented by one method.
func (m Method) SameSignature(o Method) bool {
	return m.Name == o.Name && m.Type == o.Type
}

// String implements fmt.Stringer.
func (m Method) String() string {
	if m.Owner == nil {
		return m.Signature()
	}
	return m.Owner.String() + "." + m.Signature()
}

// SignatureOf renders the parameter and result lists of a func type.
func SignatureOf(t reflect.Type) string {
	if t == nil {
		return "()"
	}
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < t.NumIn(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if t.IsVariadic() && i == t.NumIn()-1 {
			b.WriteString("..." + t.In(i).Elem().String())
			continue
		}
		b.WriteString(t.In(i).String())
	}
	b.WriteByte(')')
	switch t.NumOut() {
	case 0:
	case 1:
		b.WriteString(" " + t.Out(0).String())
	default:
		b.WriteString(" (")
		for i := 0; i < t.NumOut(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(t.Out(i).String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// ErrorType is the reflect.Type of the error interface.
var ErrorType = reflect.TypeOf((*error)(nil)).Elem()

// Attribute is a named value copied onto generated types. Values must be
// comparable so generation options stay comparable.
type Attribute struct {
	Name  string
	Value any
}
