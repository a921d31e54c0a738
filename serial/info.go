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

// Package serial holds the serialization info exchanged between proxies and
// the classes they wrap. Values are stored msgpack encoded and keep the
// order in which they were added.
package serial

import (
	"reflect"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/zerr"
)

var (
	// ErrDuplicateEntry is returned when a name is added twice.
	ErrDuplicateEntry = zerr.New("serial: duplicate entry")
	// ErrMissingEntry is returned when a name is not present.
	ErrMissingEntry = zerr.New("serial: missing entry")
	// ErrEncode wraps msgpack encoding failures.
	ErrEncode = zerr.New("serial: encode")
	// ErrDecode wraps msgpack decoding failures.
	ErrDecode = zerr.New("serial: decode")
)

// Entry is one named value.
type Entry struct {
	Name string
	Data msgpack.RawMessage
}

// Info is an ordered set of named values. It is not safe for concurrent
// use.
type Info struct {
	typeName string
	entries  []Entry
	index    map[string]int
	reads    []string
}

var (
	_ msgpack.CustomEncoder = (*Info)(nil)
	_ msgpack.CustomDecoder = (*Info)(nil)
)

// NewInfo returns an empty Info for the named type.
func NewInfo(typeName string) *Info {
	return &Info{typeName: typeName, index: make(map[string]int)}
}

// TypeName is the name of the serialized type.
func (i *Info) TypeName() string { return i.typeName }

// SetTypeName replaces the serialized type name.
func (i *Info) SetTypeName(name string) { i.typeName = name }

// Len returns the number of entries.
func (i *Info) Len() int { return len(i.entries) }

// AddValue encodes v under name.
func (i *Info) AddValue(name string, v any) error {
	if _, dup := i.index[name]; dup {
		return zerr.With(zerr.Wrap(ErrDuplicateEntry, ""), "name", name)
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return zerr.With(zerr.Wrap(err, ErrEncode.Error()), "name", name)
	}
	i.index[name] = len(i.entries)
	i.entries = append(i.entries, Entry{Name: name, Data: data})
	return nil
}

// Has reports whether name is present.
func (i *Info) Has(name string) bool {
	_, ok := i.index[name]
	return ok
}

// Decode decodes the value stored under name into out, which must be a
// pointer.
func (i *Info) Decode(name string, out any) error {
	k, ok := i.index[name]
	if !ok {
		return zerr.With(zerr.Wrap(ErrMissingEntry, ""), "name", name)
	}
	if err := msgpack.Unmarshal(i.entries[k].Data, out); err != nil {
		return zerr.With(zerr.Wrap(err, ErrDecode.Error()), "name", name)
	}
	i.reads = append(i.reads, name)
	return nil
}

// ValueAs decodes the value stored under name as a t.
func (i *Info) ValueAs(name string, t reflect.Type) (any, error) {
	p := reflect.New(t)
	if err := i.Decode(name, p.Interface()); err != nil {
		return nil, err
	}
	return p.Elem().Interface(), nil
}

// Names returns the entry names in the order they were added.
func (i *Info) Names() []string {
	out := make([]string, len(i.entries))
	for k, e := range i.entries {
		out[k] = e.Name
	}
	return out
}

// Reads returns the names decoded so far, in decoding order.
func (i *Info) Reads() []string {
	return append([]string(nil), i.reads...)
}

// EncodeMsgpack writes the type name followed by the entries.
func (i *Info) EncodeMsgpack(enc *msgpack.Encoder) error {
	n, err := safecast.Conv[uint32](len(i.entries))
	if err != nil {
		return zerr.Wrap(err, ErrEncode.Error())
	}
	if err := enc.EncodeString(i.typeName); err != nil {
		return err
	}
	if err := enc.EncodeUint32(n); err != nil {
		return err
	}
	for _, e := range i.entries {
		if err := enc.EncodeString(e.Name); err != nil {
			return err
		}
		if err := enc.EncodeBytes(e.Data); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack is the inverse of EncodeMsgpack.
func (i *Info) DecodeMsgpack(dec *msgpack.Decoder) error {
	name, err := dec.DecodeString()
	if err != nil {
		return zerr.Wrap(err, ErrDecode.Error())
	}
	n, err := dec.DecodeUint32()
	if err != nil {
		return zerr.Wrap(err, ErrDecode.Error())
	}
	*i = Info{typeName: name, index: make(map[string]int, n)}
	for k := uint32(0); k < n; k++ {
		en, err := dec.DecodeString()
		if err != nil {
			return zerr.Wrap(err, ErrDecode.Error())
		}
		data, err := dec.DecodeBytes()
		if err != nil {
			return zerr.Wrap(err, ErrDecode.Error())
		}
		if _, dup := i.index[en]; dup {
			return zerr.With(zerr.Wrap(ErrDuplicateEntry, ""), "name", en)
		}
		i.index[en] = len(i.entries)
		i.entries = append(i.entries, Entry{Name: en, Data: data})
	}
	return nil
}
