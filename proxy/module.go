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

package proxy

import (
	"github.com/sirupsen/logrus"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/store"
)

// LoadReport describes what LoadModule did with each mapping.
type LoadReport struct {
	ID string
	// Adopted mappings name types this generator already produced under the
	// same name.
	Adopted int
	// Pinned mappings reserve their name for the next generation of their
	// shape.
	Pinned int
	// Conflicts are mappings whose shape is cached under another name.
	Conflicts int
}

// Module returns the shape mapping of every cached type. Shapes whose
// descriptors collide cannot be told apart on load and are left out.
func (g *Generator) Module() (*store.Module, error) {
	entries := g.cache.Entries()
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		seen[e.Key.Descriptor()]++
	}
	mappings := make([]store.Mapping, 0, len(entries))
	for _, e := range entries {
		d := e.Key.Descriptor()
		if seen[d] > 1 {
			g.log.WithFields(logrus.Fields{"type": e.Value.Name(), "descriptor": d}).Warn("ambiguous descriptor left out of module")
			continue
		}
		mappings = append(mappings, store.Mapping{
			Descriptor: d,
			TypeName:   e.Value.Name(),
			Kind:       e.Key.Kind().String(),
		})
	}
	return store.NewModule(mappings)
}

// SaveModule writes the shape mapping to path, or to the configured module
// path when path is empty.
func (g *Generator) SaveModule(path string) (*store.Module, error) {
	path, err := g.modulePath(path)
	if err != nil {
		return nil, err
	}
	m, err := g.Module()
	if err != nil {
		return nil, err
	}
	if err := store.Save(path, m); err != nil {
		return nil, err
	}
	g.log.WithFields(logrus.Fields{"path": path, "id": m.ID, "types": len(m.Mappings)}).Debug("saved module")
	return m, nil
}

// LoadModule reads a shape mapping. Shapes already cached under the
// recorded name are adopted as is; the names of the others are reserved
// so that generating them again reproduces the recorded names.
func (g *Generator) LoadModule(path string) (LoadReport, error) {
	path, err := g.modulePath(path)
	if err != nil {
		return LoadReport{}, err
	}
	m, err := store.Load(path)
	if err != nil {
		return LoadReport{}, err
	}

	cached := make(map[string]string)
	for _, e := range g.cache.Entries() {
		cached[e.Key.Descriptor()] = e.Value.Name()
	}
	rep := LoadReport{ID: m.ID}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, mp := range m.Mappings {
		name, ok := cached[mp.Descriptor]
		switch {
		case ok && name == mp.TypeName:
			rep.Adopted++
		case ok:
			rep.Conflicts++
			g.log.WithFields(logrus.Fields{"descriptor": mp.Descriptor, "have": name, "want": mp.TypeName}).Warn("module mapping conflicts with cached type")
		default:
			g.pinned[mp.Descriptor] = mp.TypeName
			rep.Pinned++
		}
	}
	g.log.WithFields(logrus.Fields{"path": path, "id": m.ID, "adopted": rep.Adopted, "pinned": rep.Pinned}).Debug("loaded module")
	return rep, nil
}

func (g *Generator) modulePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if g.settings.ModulePath == "" {
		return "", apis.Fail(apis.ErrConfiguration, "reason", "no module path")
	}
	return g.settings.ModulePath, nil
}
