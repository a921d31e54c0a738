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

// Package contrib holds the member contributors. Each contributor claims a
// part of the proxy's members while metadata is collected and emits them
// when the type is generated. The assembler runs them in a fixed order:
// target, mixins, additional interfaces, infrastructure, serialization.
package contrib

import (
	"reflect"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/emit"
	"dirpx.dev/dpx/invocation"
	"dirpx.dev/dpx/meta"
)

// Contributor names, recorded as MetaMethod.Owner.
const (
	NameTarget         = "target"
	NameMixin          = "mixin"
	NameAdditional     = "additional"
	NameInfrastructure = "infrastructure"
	NameSerialization  = "serialization"
)

// Contributor claims and emits a part of a proxy type.
type Contributor interface {
	Name() string
	CollectElementsToProxy(hook apis.Hook, model *meta.MetaType) error
	Generate(class *Class, opts config.Options) error
}

// CtorParam binds a constructor parameter to the field it initializes.
type CtorParam struct {
	Field string
	Type  reflect.Type
}

// Class is the type under construction, shared by the contributors of one
// generation.
type Class struct {
	Builder emit.TypeBuilder
	Kind    apis.Kind
	// Base is the embedded struct class, or nil.
	Base reflect.Type
	// TargetType is the type of the target field, or nil when the proxy
	// has no target field.
	TargetType reflect.Type
	Model      *meta.MetaType
	Synth      *invocation.Synthesizer

	params []CtorParam
}

var (
	interceptorsType = reflect.TypeOf([]apis.Interceptor(nil))
	selectorType     = reflect.TypeOf((*apis.InterceptorSelector)(nil)).Elem()
	anyType          = reflect.TypeOf((*any)(nil)).Elem()
)

// AddCtorParam appends a constructor parameter.
func (c *Class) AddCtorParam(field string, t reflect.Type) {
	c.params = append(c.params, CtorParam{Field: field, Type: t})
}

// CtorParams returns the constructor parameters in order.
func (c *Class) CtorParams() []CtorParam {
	return append([]CtorParam(nil), c.params...)
}

// CtorTypes returns the types of CtorParams.
func (c *Class) CtorTypes() []reflect.Type {
	out := make([]reflect.Type, len(c.params))
	for i, p := range c.params {
		out[i] = p.Type
	}
	return out
}

// InitFields returns the statements storing constructor arguments,
// starting at argument offset, into their fields.
func (c *Class) InitFields(offset int, selector apis.InterceptorSelector) []emit.Stmt {
	body := make([]emit.Stmt, 0, len(c.params)+1)
	for i, p := range c.params {
		body = append(body, emit.SetField{Name: p.Field, X: emit.Arg{Index: offset + i}})
	}
	if c.Builder.HasField(apis.FieldSelector) {
		body = append(body, emit.SetField{Name: apis.FieldSelector, X: emit.Const{Value: selector, Type: selectorType}})
	}
	return body
}

// CanChangeTarget reports whether calls may swap the target.
func (c *Class) CanChangeTarget() bool {
	return c.Kind.CanChangeTarget()
}

// defineMember emits mm with body.
func (c *Class) defineMember(mm *meta.MetaMethod, body []emit.Stmt) error {
	return c.Builder.DefineMethod(mm.Name(), mm.Method.Type, body)
}

// intercept emits mm as a call through the interceptor chain ending in
// callback on target.
func (c *Class) intercept(mm *meta.MetaMethod, target emit.Expr, callback invocation.CallbackKind, canChange bool) error {
	if mm.Method.Generic && mm.Method.Explicit {
		return c.defineMember(mm, notSupported(mm.Method))
	}
	it, err := c.Synth.Get(mm.Method, canChange, callback)
	if err != nil {
		return err
	}
	return c.defineMember(mm, interceptedBody(mm.Method, it, target))
}
