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

// Package proxy assembles proxy types and instantiates them. A Generator
// owns the type cache, the invocation sub-cache and the naming scope;
// generated types live as long as it does.
package proxy

import (
	"reflect"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/builder"
	"dirpx.dev/dpx/cache"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/emit"
	"dirpx.dev/dpx/emit/reflectemit"
	"dirpx.dev/dpx/introspect"
	"dirpx.dev/dpx/invocation"
	"dirpx.dev/dpx/metrics"
	"dirpx.dev/dpx/naming"
)

// Generator creates proxy types. It is safe for concurrent use.
type Generator struct {
	log      logrus.FieldLogger
	settings config.Settings
	intro    apis.Introspector
	backend  emit.Backend
	lock     apis.RWLocker
	reg      prometheus.Registerer

	nameCfg  apis.NameConfig
	typeCfg  apis.NameConfig
	registry apis.Registry
	resolver apis.Resolver
	namer    *naming.ProxyNamer
	metrics  *metrics.Metrics
	synth    *invocation.Synthesizer
	cache    *cache.TypeCache[*ProxyType]

	mu     sync.RWMutex
	byName map[string]*ProxyType
	pinned map[string]string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default is built from the settings.
func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Generator) {
		g.log = l
	}
}

// WithSettings replaces the default settings.
func WithSettings(s config.Settings) Option {
	return func(g *Generator) {
		g.settings = s
	}
}

// WithIntrospector replaces the reflect-backed introspector.
func WithIntrospector(i apis.Introspector) Option {
	return func(g *Generator) {
		g.intro = i
	}
}

// WithBackend replaces the reflect emission backend.
func WithBackend(b emit.Backend) Option {
	return func(g *Generator) {
		g.backend = b
	}
}

// WithLocker sets the lock guarding the type cache.
func WithLocker(l apis.RWLocker) Option {
	return func(g *Generator) {
		g.lock = l
	}
}

// WithRegisterer registers the generator metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(g *Generator) {
		g.reg = reg
	}
}

// WithRegistry seeds the type registry with the entries of reg.
func WithRegistry(reg apis.Registry) Option {
	return func(g *Generator) {
		g.registry = reg
	}
}

// NewGenerator returns a generator with an empty cache.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		settings: config.DefaultSettings(),
		byName:   make(map[string]*ProxyType),
		pinned:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = g.settings.Logger()
	}
	if g.intro == nil {
		g.intro = introspect.New(g.settings.MemoSize)
	}
	if g.backend == nil {
		g.backend = reflectemit.New(reflectemit.WithLogger(g.log))
	}

	g.nameCfg = g.settings.NameConfig()
	g.typeCfg = g.nameCfg
	g.typeCfg.Qualified = true
	b := builder.New(builder.WithMemoSize(g.settings.MemoSize))
	g.registry = b.BuildRegistry(g.nameCfg, g.registry, nil)
	g.resolver = b.BuildResolver(g.nameCfg, g.registry, nil, nil)
	g.namer = naming.NewProxyNamer(g.resolver, g.nameCfg, g.settings.Namespace, g.settings.InvocationNamespace, nil)

	g.metrics = metrics.New(g.settings.MetricsNamespace, g.reg)
	targets := invocation.NewTargetResolver(g.intro, g.metrics)
	g.synth = invocation.NewSynthesizer(g.backend, g.namer, targets, g.metrics, g.log)
	g.cache = cache.New[*ProxyType](g.lock, g.metrics, metrics.CacheProxy)
	return g
}

// Logger returns the generator logger.
func (g *Generator) Logger() logrus.FieldLogger { return g.log }

// Settings returns the generator settings.
func (g *Generator) Settings() config.Settings { return g.settings }

// Registry returns the registry naming proxied types for serialization.
func (g *Generator) Registry() apis.Registry { return g.registry }

// Metrics returns the generator metrics.
func (g *Generator) Metrics() *metrics.Metrics { return g.metrics }

// Len returns the number of cached proxy types.
func (g *Generator) Len() int { return g.cache.Len() }

// InvocationTypes returns the number of cached invocation types.
func (g *Generator) InvocationTypes() int { return g.synth.Len() }

// Types returns every cached proxy type.
func (g *Generator) Types() []*ProxyType {
	entries := g.cache.Entries()
	out := make([]*ProxyType, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// Lookup returns the proxy type generated under name.
func (g *Generator) Lookup(name string) (*ProxyType, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	pt, ok := g.byName[name]
	return pt, ok
}

// TypeName returns the qualified registry name of t, registering it on
// first use.
func (g *Generator) TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if name, ok := g.registry.Lookup(t); ok {
		return name
	}
	name := g.resolver.ResolveType(t, g.typeCfg)
	if name == "" {
		return ""
	}
	if err := g.registry.Register(t, name); err != nil {
		g.log.WithError(err).WithField("type", t.String()).Debug("type not registered")
	}
	return name
}

// ResolveTypeName returns the type registered under name.
func (g *Generator) ResolveTypeName(name string) (reflect.Type, error) {
	if t, ok := g.registry.LookupName(name); ok {
		return t, nil
	}
	return nil, apis.Fail(apis.ErrUnknownTypeName, "name", name)
}

func (g *Generator) publish(pt *ProxyType) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.byName[pt.Name()] = pt
}

func (g *Generator) pinnedName(descriptor string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	name, ok := g.pinned[descriptor]
	return name, ok
}
