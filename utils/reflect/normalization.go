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

// Package reflect holds reflection helpers shared by naming and
// introspection.
package reflect

import (
	"reflect"

	"go.trai.ch/zerr"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
)

var (
	// ErrReflectNilType is returned for a nil reflect.Type.
	ErrReflectNilType = zerr.Wrap(apis.ErrConfiguration, "reflect: nil reflect.Type provided")
	// ErrReflectTypeNotNamed is returned when no named type is reachable
	// within the unwrap budget.
	ErrReflectTypeNotNamed = zerr.Wrap(apis.ErrConfiguration, "reflect: type has no registered name")
)

// Normalize returns the nearest named type of t. Named types are returned
// as is. Pointers, slices, arrays and channels are unwrapped to their
// element. Maps answer with their preferred side when it is named, then
// the other side, and otherwise continue with the element. At most
// cfg.MaxUnwrap (or config.DefaultMaxUnwrap) levels are unwrapped.
func Normalize(t reflect.Type, cfg apis.NameConfig) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	budget := cfg.MaxUnwrap
	if budget <= 0 {
		budget = config.DefaultMaxUnwrap
	}
	orig := t
	for depth := 0; ; depth++ {
		if t.Name() != "" {
			return t, nil
		}
		if depth == budget {
			break
		}
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Chan:
			t = t.Elem()
		case reflect.Map:
			if side := namedSide(t, cfg.MapPreferElem); side != nil {
				return side, nil
			}
			t = t.Elem()
		default:
			return nil, apis.Fail(ErrReflectTypeNotNamed, "type", orig.String())
		}
	}
	return nil, apis.Fail(ErrReflectTypeNotNamed, "type", orig.String(), "max_unwrap", budget)
}

func namedSide(m reflect.Type, preferElem bool) reflect.Type {
	first, second := m.Key(), m.Elem()
	if preferElem {
		first, second = second, first
	}
	switch {
	case first.Name() != "":
		return first
	case second.Name() != "":
		return second
	}
	return nil
}
