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
)

// NameConfig carries read-only naming knobs that influence strategies.
// It is passed by value and should be treated as immutable by implementations.
type NameConfig struct {
	// IncludeBuiltins controls whether builtin/no-package named types
	// (e.g., "int", "string") are returned as names. If false, such cases yield "".
	IncludeBuiltins bool

	// MaxUnwrap limits container unwrapping depth (ptr/slice/array/chan/map).
	MaxUnwrap int

	// MapPreferElem controls which side of map[K]V is considered primary
	// when searching for a nearest named inner type.
	MapPreferElem bool

	// Qualified makes the reflect strategy emit the full package path
	// instead of its last element. Registries used for serialization run
	// qualified so that equally named types of different packages differ.
	Qualified bool
}

// Namer lets a value pick its own name. Proxied classes implementing it on
// the value receiver name their generated types.
type Namer interface {
	EntityName() string
}

// Registry maps types to explicit names and back. Serialization and module
// persistence resolve types through it.
type Registry interface {
	// Register associates the nearest named type of t with name.
	// Re-registering the same pair is a no-op.
	Register(t reflect.Type, name string) error
	// Lookup returns the name registered for t.
	Lookup(t reflect.Type) (name string, ok bool)
	// LookupName returns the type registered under name.
	LookupName(name string) (t reflect.Type, ok bool)
	// Entries returns a snapshot (order is unspecified).
	Entries() []Entry
	// Count returns the number of registered entries.
	Count() int
	// Reset clears all entries.
	Reset()
}

// Entry is a (type, name) registry pair.
type Entry struct {
	Type reflect.Type
	Name string
}

// Strategy is a pluggable naming step. A Resolver chains strategies in order
// (e.g., Namer -> Registry -> Reflect).
type Strategy interface {
	// TryResolve attempts to name value v. It returns (name, true) if handled;
	// otherwise ("", false) to fall through.
	TryResolve(v any, cfg NameConfig) (name string, handled bool)
	// TryResolveType attempts to name t.
	TryResolveType(t reflect.Type, cfg NameConfig) (name string, handled bool)
}

// Resolver names values and types.
type Resolver interface {
	Resolve(v any, cfg NameConfig) string
	ResolveType(t reflect.Type, cfg NameConfig) string
}

// Builder composes a Registry and a Resolver from a NameConfig.
// Implementations may migrate state from previous instances or ignore them.
type Builder interface {
	// BuildRegistry constructs a Registry, copying entries from reg if given.
	// ext is an optional extension context. Its meaning is implementation-defined.
	BuildRegistry(cfg NameConfig, reg Registry, ext any) Registry
	// BuildResolver constructs a Resolver over reg.
	BuildResolver(cfg NameConfig, reg Registry, res Resolver, ext any) Resolver
}
