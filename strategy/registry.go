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
	"reflect"

	"dirpx.dev/dpx/apis"
)

// NewRegistryStrategy creates a strategy answering from explicit
// registrations in reg. A nil reg never handles anything.
func NewRegistryStrategy(reg apis.Registry) apis.Strategy {
	return registryStrategy{reg: reg}
}

type registryStrategy struct {
	reg apis.Registry
}

func (s registryStrategy) TryResolve(v any, cfg apis.NameConfig) (string, bool) {
	if v == nil {
		return "", false
	}
	return s.TryResolveType(reflect.TypeOf(v), cfg)
}

func (s registryStrategy) TryResolveType(t reflect.Type, _ apis.NameConfig) (string, bool) {
	if t == nil || s.reg == nil {
		return "", false
	}
	return s.reg.Lookup(t)
}
