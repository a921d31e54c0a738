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

package invocation

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/emit"
	"dirpx.dev/dpx/metrics"
	"dirpx.dev/dpx/naming"
)

// Key identifies an invocation type. Structurally equal keys share one
// type across unrelated proxies.
type Key struct {
	Decl            reflect.Type
	Name            string
	Sig             reflect.Type
	CanChangeTarget bool
	Callback        CallbackKind
}

// String renders k for logs.
func (k Key) String() string {
	return fmt.Sprintf("%v.%s%s [%s change=%t]", k.Decl, k.Name, apis.SignatureOf(k.Sig), k.Callback, k.CanChangeTarget)
}

var (
	instanceType     = reflect.TypeOf((*emit.Instance)(nil)).Elem()
	anyType          = reflect.TypeOf((*any)(nil)).Elem()
	interceptorsType = reflect.TypeOf([]apis.Interceptor(nil))
	selectorType     = reflect.TypeOf((*apis.InterceptorSelector)(nil)).Elem()
	argsType         = reflect.TypeOf([]any(nil))
	coreType         = reflect.TypeOf((*Core)(nil))
)

// CtorParams are the constructor parameters of every invocation type:
// proxy instance, target, interceptors, selector, arguments.
var CtorParams = []reflect.Type{instanceType, anyType, interceptorsType, selectorType, argsType}

// ArgType is the element type of the argument slice passed to
// constructors.
var ArgType = anyType

// Synthesizer emits invocation types and caches them by Key.
type Synthesizer struct {
	backend  emit.Backend
	namer    *naming.ProxyNamer
	resolver *TargetResolver
	metrics  *metrics.Metrics
	log      logrus.FieldLogger

	mu    sync.RWMutex
	types map[Key]emit.ConcreteType
}

// NewSynthesizer returns a Synthesizer emitting through backend.
func NewSynthesizer(backend emit.Backend, namer *naming.ProxyNamer, resolver *TargetResolver, m *metrics.Metrics, log logrus.FieldLogger) *Synthesizer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Synthesizer{
		backend:  backend,
		namer:    namer,
		resolver: resolver,
		metrics:  m,
		log:      log,
		types:    make(map[Key]emit.ConcreteType),
	}
}

// Len returns the number of cached invocation types.
func (s *Synthesizer) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.types)
}

// Get returns the invocation type for m, emitting it on first use.
func (s *Synthesizer) Get(m apis.Method, canChangeTarget bool, callback CallbackKind) (emit.ConcreteType, error) {
	key := Key{Decl: m.Owner, Name: m.Name, Sig: m.Type, CanChangeTarget: canChangeTarget, Callback: callback}

	s.mu.RLock()
	t, ok := s.types[key]
	s.mu.RUnlock()
	if ok {
		s.metrics.Hit(metrics.CacheInvocation)
		return t, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.types[key]; ok {
		s.metrics.Hit(metrics.CacheInvocation)
		return t, nil
	}
	s.metrics.Miss(metrics.CacheInvocation)
	t, err := s.emit(key, m)
	s.metrics.Generated(metrics.CacheInvocation, err)
	if err != nil {
		return nil, err
	}
	s.types[key] = t
	s.log.WithField("key", key.String()).WithField("type", t.Name()).Debug("synthesized invocation type")
	return t, nil
}

func (s *Synthesizer) emit(key Key, m apis.Method) (emit.ConcreteType, error) {
	tb, err := s.backend.DefineType(s.namer.InvocationName(key.Decl, key.Name), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := tb.DefineField(FieldCore, coreType); err != nil {
		return nil, err
	}

	desc := &Descriptor{Method: m, Callback: key.Callback, CanChangeTarget: key.CanChangeTarget}
	resolver := s.resolver
	build := func(owner, proxy emit.Instance, target any, ics []apis.Interceptor, sel apis.InterceptorSelector, args []any) *Core {
		return NewCore(desc, resolver, owner, proxy, target, ics, sel, args)
	}
	ctor := []emit.Stmt{
		emit.SetField{Name: FieldCore, X: emit.CallFunc{
			Fn:   build,
			Args: append([]emit.Expr{emit.Self{}}, emit.Args(len(CtorParams))...),
		}},
	}
	if err := tb.DefineConstructor("", CtorParams, ctor); err != nil {
		return nil, err
	}

	if key.Callback != CallbackNone {
		if err := tb.DefineMethod(MethodInvokeOnTarget, reflect.TypeOf(func() {}), targetCall(m, key.Callback)); err != nil {
			return nil, err
		}
	}
	return tb.Complete()
}

// targetCall unpacks the arguments held by the core, calls the callback
// and stores results and by-ref arguments back.
func targetCall(m apis.Method, callback CallbackKind) []emit.Stmt {
	core := emit.Field{Name: FieldCore}
	body := []emit.Stmt{emit.Assign{Names: []string{"core"}, X: core}}

	recv, name := emit.Expr(emit.Call{Recv: emit.Local{Name: "core"}, Method: "InvocationTarget"}), m.Name
	if callback == CallbackProxy {
		recv, name = emit.Call{Recv: emit.Local{Name: "core"}, Method: "ProxyInstance"}, m.Name+CallbackSuffix
	}
	body = append(body, emit.Assign{Names: []string{"recv"}, X: recv})

	params := m.Params()
	args := make([]emit.Expr, len(params))
	for i, p := range params {
		arg := emit.Call{Recv: emit.Local{Name: "core"}, Method: "Argument", Args: []emit.Expr{emit.Const{Value: i}}}
		if p.ByRef {
			local := fmt.Sprintf("p%d", i)
			body = append(body, emit.Assign{Names: []string{local}, X: emit.NewPointer{Elem: p.Type.Elem(), X: arg}})
			args[i] = emit.Local{Name: local}
			continue
		}
		args[i] = emit.Convert{To: p.Type, X: arg}
	}

	results := make([]string, m.Type.NumOut())
	for i := range results {
		results[i] = fmt.Sprintf("r%d", i)
	}
	call := emit.Call{Recv: emit.Local{Name: "recv"}, Method: name, Args: args}
	if len(results) == 0 {
		body = append(body, emit.Do{X: call})
	} else {
		body = append(body, emit.Assign{Names: results, X: call})
	}

	for i, p := range params {
		if p.ByRef {
			body = append(body, emit.Do{X: emit.Call{
				Recv:   emit.Local{Name: "core"},
				Method: "SetArgument",
				Args:   []emit.Expr{emit.Const{Value: i}, emit.Deref{X: emit.Local{Name: fmt.Sprintf("p%d", i)}}},
			}})
		}
	}
	for i, r := range results {
		body = append(body, emit.Do{X: emit.Call{
			Recv:   emit.Local{Name: "core"},
			Method: "SetReturnValue",
			Args:   []emit.Expr{emit.Const{Value: i}, emit.Local{Name: r}},
		}})
	}
	return body
}
