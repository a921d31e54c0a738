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

package strategy

import (
	"path"
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"

	"dirpx.dev/dpx/apis"
	uref "dirpx.dev/dpx/utils/reflect"
)

// DefaultMemoSize bounds the names a reflect strategy remembers.
const DefaultMemoSize = 1024

// NewReflectStrategy creates the fallback strategy naming types after their
// package and declared name, with a memo of DefaultMemoSize entries.
func NewReflectStrategy() apis.Strategy {
	return NewReflectStrategySize(DefaultMemoSize)
}

// NewReflectStrategySize is NewReflectStrategy with a memo of size entries.
// Non-positive sizes use DefaultMemoSize.
func NewReflectStrategySize(size int) apis.Strategy {
	if size <= 0 {
		size = DefaultMemoSize
	}
	// lru.New only fails for non-positive sizes.
	memo, _ := lru.New[memoKey, string](size)
	return &reflectStrategy{memo: memo}
}

// reflectStrategy always handles the request. Types without a nearest named
// type, and builtins when hidden, resolve to "".
type reflectStrategy struct {
	memo *lru.Cache[memoKey, string]
}

type memoKey struct {
	t   reflect.Type
	cfg apis.NameConfig
}

var _ apis.Strategy = (*reflectStrategy)(nil)

func (s *reflectStrategy) TryResolve(v any, cfg apis.NameConfig) (string, bool) {
	if v == nil {
		return "", false
	}
	return s.TryResolveType(reflect.TypeOf(v), cfg)
}

func (s *reflectStrategy) TryResolveType(t reflect.Type, cfg apis.NameConfig) (string, bool) {
	if t == nil {
		return "", false
	}
	key := memoKey{t: t, cfg: cfg}
	if name, ok := s.memo.Get(key); ok {
		return name, true
	}
	name := ""
	if base, err := uref.Normalize(t, cfg); err == nil {
		name = typeName(base, cfg)
	}
	s.memo.Add(key, name)
	return name, true
}

// typeName spells t as "pkg.Name". Qualified names carry the full import
// path and keep the type arguments of generic instantiations, so that
// Box[int] and Box[string] stay apart in registries.
func typeName(t reflect.Type, cfg apis.NameConfig) string {
	name := t.Name()
	if family, _, generic := uref.SplitGeneric(name); generic && !cfg.Qualified {
		name = family
	}
	pkg := t.PkgPath()
	switch {
	case pkg == "" && !cfg.IncludeBuiltins:
		return ""
	case pkg == "":
		return name
	case !cfg.Qualified:
		pkg = path.Base(pkg)
	}
	return pkg + "." + name
}
