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

// Package store persists the shape mapping of a generator: which cache key
// descriptor produced which generated type name. A module is a msgpack
// blob guarded by a schema version and an xxhash checksum.
package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/zerr"
)

// SchemaVersion is bumped whenever the Module layout changes.
const SchemaVersion uint16 = 1

var (
	// ErrRead is returned when a module file cannot be read.
	ErrRead = zerr.New("dpx(store): failed to read module")
	// ErrWrite is returned when a module file cannot be written.
	ErrWrite = zerr.New("dpx(store): failed to write module")
	// ErrDecode is returned when a module is not valid msgpack.
	ErrDecode = zerr.New("dpx(store): failed to decode module")
	// ErrSchema is returned for modules written by another schema version.
	ErrSchema = zerr.New("dpx(store): schema mismatch")
	// ErrChecksum is returned when the stored checksum does not match.
	ErrChecksum = zerr.New("dpx(store): checksum mismatch")
	// ErrCorrupt is returned for structurally invalid modules.
	ErrCorrupt = zerr.New("dpx(store): corrupt module")
)

// Mapping binds a cache key descriptor to a generated type name.
type Mapping struct {
	Descriptor string `msgpack:"descriptor"`
	TypeName   string `msgpack:"type_name"`
	Kind       string `msgpack:"kind"`
}

// Module is the persisted shape mapping of one generator.
type Module struct {
	Schema   uint16    `msgpack:"schema"`
	ID       string    `msgpack:"id"`
	Created  time.Time `msgpack:"created"`
	Mappings []Mapping `msgpack:"mappings"`
	Checksum uint64    `msgpack:"checksum"`
}

// NewModule returns a sealed module holding mappings sorted by descriptor.
func NewModule(mappings []Mapping) (*Module, error) {
	m := &Module{
		Schema:   SchemaVersion,
		ID:       uuid.NewString(),
		Created:  time.Now().UTC(),
		Mappings: slices.Clone(mappings),
	}
	slices.SortFunc(m.Mappings, func(a, b Mapping) int {
		return strings.Compare(a.Descriptor, b.Descriptor)
	})
	sum, err := m.Sum()
	if err != nil {
		return nil, err
	}
	m.Checksum = sum
	return m, nil
}

// Sum computes the checksum of everything but the Checksum field.
func (m *Module) Sum() (uint64, error) {
	n, err := safecast.Conv[uint32](len(m.Mappings))
	if err != nil {
		return 0, zerr.Wrap(err, ErrCorrupt.Error())
	}
	d := xxhash.New()
	_, _ = d.Write([]byte{byte(m.Schema >> 8), byte(m.Schema), byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	_, _ = d.WriteString(m.ID)
	_, _ = d.WriteString(m.Created.UTC().Format(time.RFC3339Nano))
	for _, mp := range m.Mappings {
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(mp.Descriptor)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(mp.TypeName)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(mp.Kind)
	}
	return d.Sum64(), nil
}

// Verify checks schema, identity and checksum.
func (m *Module) Verify() error {
	if m.Schema != SchemaVersion {
		return zerr.With(zerr.With(zerr.Wrap(ErrSchema, ""), "have", m.Schema), "want", SchemaVersion)
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return zerr.With(zerr.Wrap(err, ErrCorrupt.Error()), "id", m.ID)
	}
	seen := make(map[string]bool, len(m.Mappings))
	for _, mp := range m.Mappings {
		if mp.Descriptor == "" || mp.TypeName == "" || seen[mp.Descriptor] {
			return zerr.With(zerr.Wrap(ErrCorrupt, ""), "descriptor", mp.Descriptor)
		}
		seen[mp.Descriptor] = true
	}
	sum, err := m.Sum()
	if err != nil {
		return err
	}
	if sum != m.Checksum {
		return zerr.With(zerr.Wrap(ErrChecksum, ""), "id", m.ID)
	}
	return nil
}

// Lookup returns the type name recorded for descriptor.
func (m *Module) Lookup(descriptor string) (string, bool) {
	i, ok := slices.BinarySearchFunc(m.Mappings, descriptor, func(mp Mapping, d string) int {
		return strings.Compare(mp.Descriptor, d)
	})
	if !ok {
		return "", false
	}
	return m.Mappings[i].TypeName, true
}

// Encode writes m to w.
func Encode(w io.Writer, m *Module) error {
	if err := msgpack.NewEncoder(w).Encode(m); err != nil {
		return zerr.Wrap(err, ErrWrite.Error())
	}
	return nil
}

// Decode reads and verifies a module from r.
func Decode(r io.Reader) (*Module, error) {
	var m Module
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return nil, zerr.Wrap(err, ErrDecode.Error())
	}
	if err := m.Verify(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save writes m to path atomically, through a temporary file in the same
// directory.
func Save(path string, m *Module) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, ErrWrite.Error()), "path", path)
	}
	f, err := os.CreateTemp(dir, "dpx-module-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, ErrWrite.Error()), "path", path)
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = zerr.With(zerr.Wrap(rmErr, ErrWrite.Error()), "path", f.Name())
		}
	}()

	if err := Encode(f, m); err != nil {
		_ = f.Close()
		return zerr.With(err, "path", path)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, ErrWrite.Error()), "path", path)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return zerr.With(zerr.Wrap(err, ErrWrite.Error()), "path", path)
	}
	return nil
}

// Load reads and verifies the module at path.
func Load(path string) (*Module, error) {
	// #nosec G304 -- path is supplied by the operator
	f, err := os.Open(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrRead.Error()), "path", path)
	}
	defer func() { _ = f.Close() }()
	m, err := Decode(f)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return m, nil
}
