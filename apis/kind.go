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
	"fmt"
	"strings"
)

// Kind identifies the family of a generated proxy type. It is part of the
// shape of a proxy: two requests that differ only in Kind never share a
// generated type.
type Kind int

const (
	// KindClass proxies a struct class without a separate target. The proxy
	// embeds the class and reaches the original behavior through generated
	// callback members.
	KindClass Kind = iota + 1
	// KindClassWithTarget proxies a struct class and forwards to a separate
	// *T target supplied at construction.
	KindClassWithTarget
	// KindInterfaceWithTarget proxies an interface and forwards to a target of
	// a concrete type fixed at generation time.
	KindInterfaceWithTarget
	// KindInterfaceWithTargetInterface proxies an interface and forwards to a
	// target typed as the interface itself. The target may be swapped at
	// runtime.
	KindInterfaceWithTargetInterface
	// KindInterfaceWithoutTarget proxies an interface with no target at all.
	// Every call must be answered by an interceptor.
	KindInterfaceWithoutTarget
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindClassWithTarget:
		return "class-with-target"
	case KindInterfaceWithTarget:
		return "interface-with-target"
	case KindInterfaceWithTargetInterface:
		return "interface-with-target-interface"
	case KindInterfaceWithoutTarget:
		return "interface-without-target"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindClass && k <= KindInterfaceWithoutTarget
}

// IsInterface reports whether the proxied type is an interface.
func (k Kind) IsInterface() bool {
	return k >= KindInterfaceWithTarget && k <= KindInterfaceWithoutTarget
}

// HasTarget reports whether proxies of this kind carry a __target field.
func (k Kind) HasTarget() bool {
	switch k {
	case KindClassWithTarget, KindInterfaceWithTarget, KindInterfaceWithTargetInterface:
		return true
	default:
		return false
	}
}

// CanChangeTarget reports whether the target may be replaced after
// construction.
func (k Kind) CanChangeTarget() bool {
	return k == KindInterfaceWithTargetInterface
}

// ParseKind parses the textual form produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return 0, fmt.Errorf("dpx: empty proxy kind")
	}
	for k := KindClass; k <= KindInterfaceWithoutTarget; k++ {
		if k.String() == trimmed {
			return k, nil
		}
	}
	return 0, fmt.Errorf("dpx: unknown proxy kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("dpx: cannot marshal unknown proxy kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
