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

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/emit"
	"dirpx.dev/dpx/meta"
)

var (
	getTargetType       = reflect.TypeOf(func() any { return nil })
	setTargetType       = reflect.TypeOf(func(any) {})
	getInterceptorsType = reflect.TypeOf(func() []apis.Interceptor { return nil })
)

// Infrastructure emits the accessors every proxy exposes.
type Infrastructure struct {
	kind apis.Kind
}

// NewInfrastructure returns the infrastructure contributor.
func NewInfrastructure(kind apis.Kind) *Infrastructure {
	return &Infrastructure{kind: kind}
}

// Name identifies the contributor as member owner.
func (i *Infrastructure) Name() string { return NameInfrastructure }

func (i *Infrastructure) members() []apis.Method {
	ms := []apis.Method{
		{Name: apis.MethodGetTarget, Type: getTargetType},
		{Name: apis.MethodGetInterceptors, Type: getInterceptorsType},
	}
	if i.kind.CanChangeTarget() {
		ms = append(ms, apis.Method{Name: apis.MethodSetTarget, Type: setTargetType})
	}
	return ms
}

// CollectElementsToProxy reserves the accessor names.
func (i *Infrastructure) CollectElementsToProxy(_ apis.Hook, model *meta.MetaType) error {
	for _, m := range i.members() {
		if prev, ok := model.Method(m.Name); ok {
			return apis.Fail(apis.ErrReservedInterface, "method", m.Name, "declared_by", prev.Method.String())
		}
		if err := model.AddMethod(&meta.MetaMethod{Method: m, Owner: NameInfrastructure}); err != nil {
			return err
		}
	}
	return nil
}

// Generate emits the claimed members into class.
func (i *Infrastructure) Generate(class *Class, _ config.Options) error {
	var target []emit.Stmt
	switch {
	case i.kind == apis.KindClass:
		target = []emit.Stmt{emit.Return{Values: []emit.Expr{emit.Self{}}}}
	case class.TargetType != nil:
		target = []emit.Stmt{emit.Return{Values: []emit.Expr{emit.Field{Name: apis.FieldTarget}}}}
	}
	b := class.Builder
	if err := b.DefineMethod(apis.MethodGetTarget, getTargetType, target); err != nil {
		return err
	}
	if err := b.DefineMethod(apis.MethodGetInterceptors, getInterceptorsType, []emit.Stmt{
		emit.Return{Values: []emit.Expr{emit.Field{Name: apis.FieldInterceptors}}},
	}); err != nil {
		return err
	}
	if !i.kind.CanChangeTarget() {
		return nil
	}
	return b.DefineMethod(apis.MethodSetTarget, setTargetType, []emit.Stmt{
		emit.SetField{Name: apis.FieldTarget, X: emit.Arg{Index: 0}},
	})
}
