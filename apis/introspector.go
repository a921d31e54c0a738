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

import "reflect"

// Introspector is the pluggable type introspection capability the generator
// is built on. The default implementation in package introspect is backed
// by reflect.
type Introspector interface {
	// Methods enumerates the members of t. For a struct class it returns the
	// exported methods of *t in declaration-independent (sorted) order; for
	// an interface the flattened method set.
	Methods(t reflect.Type) ([]Method, error)
	// ResolveOverride finds the member of target that implements m. It
	// reports false instead of failing when none exists.
	ResolveOverride(m Method, target reflect.Type) (Method, bool)
	// IsOpenGeneric reports whether t is a generic definition rather than a
	// closed instantiation.
	IsOpenGeneric(t reflect.Type) bool
	// Instantiate closes the generic definition def over args.
	Instantiate(def reflect.Type, args ...reflect.Type) (reflect.Type, error)
}

// Sealer is implemented by classes (on *T) that seal some of their members.
// Sealed members are forwarded but never intercepted, mirroring
// non-virtual members.
type Sealer interface {
	SealedMethods() []string
}

// SealerType is the reflect.Type of Sealer.
var SealerType = reflect.TypeOf((*Sealer)(nil)).Elem()
