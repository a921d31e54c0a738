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

package naming

import (
	"strconv"
	"sync"
)

// Scope hands out unique names. The first request for a name returns it
// unchanged; later requests get "_1", "_2", ... suffixes.
//
// A Scope is safe for concurrent use.
type Scope struct {
	mu     sync.Mutex
	names  map[string]int
	parent *Scope
}

// NewScope creates an empty root scope.
func NewScope() *Scope {
	return &Scope{names: make(map[string]int)}
}

// Child creates a scope whose names are unique within itself and do not
// leak into s. Member names of one generated type live in a child of the
// type scope.
func (s *Scope) Child() *Scope {
	return &Scope{names: make(map[string]int), parent: s}
}

// Parent returns the scope s was created from, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// GetUniqueName returns suggested, or suggested with a numeric suffix when
// it was handed out before.
func (s *Scope) GetUniqueName(suggested string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, taken := s.names[suggested]
	if !taken {
		s.names[suggested] = 0
		return suggested
	}
	for {
		n++
		candidate := suggested + "_" + strconv.Itoa(n)
		if _, clash := s.names[candidate]; clash {
			continue
		}
		s.names[suggested] = n
		s.names[candidate] = 0
		return candidate
	}
}

// Reserve marks name as taken. It reports false when the name was already
// handed out.
func (s *Scope) Reserve(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.names[name]; taken {
		return false
	}
	s.names[name] = 0
	return true
}
