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
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/zerr"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/contrib"
	"dirpx.dev/dpx/serial"
)

var (
	// ErrEnvelopeEncode is returned when a proxy envelope cannot be encoded.
	ErrEnvelopeEncode = zerr.New("dpx(proxy): failed to encode proxy")
	// ErrEnvelopeDecode is returned when a proxy envelope cannot be decoded.
	ErrEnvelopeDecode = zerr.New("dpx(proxy): failed to decode proxy")
)

// envelope is the serialized form of a proxy instance.
type envelope struct {
	Type       string       `msgpack:"type"`
	Kind       apis.Kind    `msgpack:"kind"`
	Class      string       `msgpack:"class"`
	Interfaces []string     `msgpack:"interfaces,omitempty"`
	Info       *serial.Info `msgpack:"info"`
}

// Serialize captures the state of p. Only class proxies of serializable
// classes with default options can be serialized.
func (g *Generator) Serialize(p *Proxy) ([]byte, error) {
	pt := p.Type()
	if !pt.Serializable() {
		return nil, apis.Fail(apis.ErrNotSerializable, "type", pt.Name())
	}
	env := envelope{
		Type:  pt.Name(),
		Kind:  pt.Kind(),
		Class: g.TypeName(pt.Proxied()),
		Info:  serial.NewInfo(g.TypeName(pt.Proxied())),
	}
	for _, it := range pt.Key().Interfaces() {
		env.Interfaces = append(env.Interfaces, g.TypeName(it))
	}

	out, err := p.inst.Invoke(apis.MethodGetObjectData, reflect.ValueOf(env.Info))
	if err != nil {
		return nil, err
	}
	if gerr, _ := out[0].Interface().(error); gerr != nil {
		return nil, zerr.With(gerr, "type", pt.Name())
	}
	data, err := msgpack.Marshal(&env)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrEnvelopeEncode.Error()), "type", pt.Name())
	}
	return data, nil
}

// Deserialize restores a proxy captured by Serialize. The proxy type is
// looked up by name and regenerated from the recorded class when this
// generator has not produced it yet.
func (g *Generator) Deserialize(data []byte, args Args) (*Proxy, error) {
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, zerr.Wrap(err, ErrEnvelopeDecode.Error())
	}
	if env.Info == nil {
		return nil, zerr.With(zerr.Wrap(apis.ErrNotSerializable, ErrEnvelopeDecode.Error()), "type", env.Type)
	}

	pt, ok := g.Lookup(env.Type)
	if !ok || g.TypeName(pt.Proxied()) != env.Class {
		var err error
		if pt, err = g.regenerate(env); err != nil {
			return nil, err
		}
	}
	if !pt.Serializable() {
		return nil, apis.Fail(apis.ErrNotSerializable, "type", pt.Name())
	}

	in, err := pt.ctorArgs(args)
	if err != nil {
		return nil, err
	}
	inst, err := pt.ct.New(contrib.DeserializeCtor, append([]reflect.Value{reflect.ValueOf(env.Info)}, in...)...)
	if err != nil {
		return nil, zerr.With(err, "type", pt.Name())
	}
	return &Proxy{typ: pt, inst: inst}, nil
}

func (g *Generator) regenerate(env envelope) (*ProxyType, error) {
	if env.Kind != apis.KindClass {
		return nil, apis.Fail(apis.ErrNotSerializable, "type", env.Type, "kind", env.Kind.String())
	}
	class, err := g.ResolveTypeName(env.Class)
	if err != nil {
		return nil, err
	}
	interfaces := make([]reflect.Type, 0, len(env.Interfaces))
	for _, name := range env.Interfaces {
		it, err := g.ResolveTypeName(name)
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, it)
	}
	return g.CreateClassProxyType(class, interfaces, config.DefaultOptions())
}
