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

// Package strategy holds the steps of the type naming chain: self-naming
// types, explicit registrations and the reflective fallback.
package strategy

import (
	"reflect"

	"dirpx.dev/dpx/apis"
)

var namerType = reflect.TypeFor[apis.Namer]()

// NewNamerStrategy creates a strategy for values and types implementing
// apis.Namer.
func NewNamerStrategy() apis.Strategy {
	return namerStrategy{}
}

type namerStrategy struct{}

var _ apis.Strategy = namerStrategy{}

func (namerStrategy) TryResolve(v any, _ apis.NameConfig) (string, bool) {
	if n, ok := v.(apis.Namer); ok {
		return n.EntityName(), true
	}
	return "", false
}

// TryResolveType asks a zero value of t. Proxied classes are usually seen
// as *T, so a pointer to a struct is asked through a new T.
func (namerStrategy) TryResolveType(t reflect.Type, _ apis.NameConfig) (string, bool) {
	if t == nil || t.Kind() == reflect.Interface || !t.Implements(namerType) {
		return "", false
	}
	var v reflect.Value
	switch {
	case t.Kind() != reflect.Pointer:
		v = reflect.Zero(t)
	case t.Elem().Kind() == reflect.Struct:
		v = reflect.New(t.Elem())
	default:
		return "", false
	}
	return v.Interface().(apis.Namer).EntityName(), true
}
