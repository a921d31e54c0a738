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

package reflectemit

import (
	"fmt"
	"reflect"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/emit"
)

type frame struct {
	self   *instance
	args   []reflect.Value
	locals []reflect.Value
}

type evalFn func(*frame) ([]reflect.Value, error)

// execFn reports done once a Return ran.
type execFn func(*frame) (done bool, results []reflect.Value, err error)

type runner func(self *instance, args []reflect.Value) ([]reflect.Value, error)

// compiler lowers one member body into closures.
type compiler struct {
	member string
	sig    reflect.Type
	slots  map[string]int
	roots  map[string]struct{}
}

func newCompiler(member string, sig reflect.Type) *compiler {
	return &compiler{
		member: member,
		sig:    sig,
		slots:  make(map[string]int),
		roots:  make(map[string]struct{}),
	}
}

func (c *compiler) fail(reason string, kv ...any) error {
	return with(apis.Fail(apis.ErrEmission, "member", c.member, "reason", reason), kv...)
}

func (c *compiler) slot(name string) int {
	if i, ok := c.slots[name]; ok {
		return i
	}
	i := len(c.slots)
	c.slots[name] = i
	return i
}

// selfPath returns the field path of e when e reads a field of Self.
func selfPath(e emit.Expr) ([]string, bool) {
	f, ok := e.(emit.Field)
	if !ok {
		return nil, false
	}
	switch r := f.Recv.(type) {
	case nil, emit.Self:
		return []string{f.Name}, true
	default:
		p, ok := selfPath(r)
		if !ok {
			return nil, false
		}
		return append(p, f.Name), true
	}
}

func (c *compiler) compile(body []emit.Stmt) (runner, error) {
	exec, err := c.block(body)
	if err != nil {
		return nil, err
	}
	sig := c.sig
	n := len(c.slots)
	return func(self *instance, args []reflect.Value) ([]reflect.Value, error) {
		f := &frame{self: self, args: args, locals: make([]reflect.Value, n)}
		done, res, err := exec(f)
		if err != nil {
			return nil, err
		}
		if !done {
			res = zeros(sig)
		}
		return res, nil
	}, nil
}

func (c *compiler) block(body []emit.Stmt) (execFn, error) {
	steps := make([]execFn, 0, len(body))
	for _, s := range body {
		step, err := c.stmt(s)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return func(f *frame) (bool, []reflect.Value, error) {
		for _, step := range steps {
			done, res, err := step(f)
			if err != nil || done {
				return done, res, err
			}
		}
		return false, nil, nil
	}, nil
}

func (c *compiler) stmt(s emit.Stmt) (execFn, error) {
	switch s := s.(type) {
	case emit.Assign:
		return c.assign(s)
	case emit.SetField:
		return c.setField(s)
	case emit.Store:
		ptr, err := c.expr(s.Ptr)
		if err != nil {
			return nil, err
		}
		x, err := c.expr(s.X)
		if err != nil {
			return nil, err
		}
		return func(f *frame) (bool, []reflect.Value, error) {
			pv, err := ptr(f)
			if err != nil {
				return false, nil, err
			}
			xv, err := x(f)
			if err != nil {
				return false, nil, err
			}
			p := unwrap(first(pv))
			if !p.IsValid() || p.Kind() != reflect.Pointer || p.IsNil() {
				return false, nil, apis.Fail(apis.ErrArguments, "reason", "store through nil pointer")
			}
			v, err := exact(first(xv), p.Type().Elem())
			if err != nil {
				return false, nil, err
			}
			p.Elem().Set(v)
			return false, nil, nil
		}, nil
	case emit.Do:
		x, err := c.expr(s.X)
		if err != nil {
			return nil, err
		}
		return func(f *frame) (bool, []reflect.Value, error) {
			_, err := x(f)
			return false, nil, err
		}, nil
	case emit.Return:
		return c.ret(s)
	case emit.Check:
		x, err := c.expr(s.X)
		if err != nil {
			return nil, err
		}
		return func(f *frame) (bool, []reflect.Value, error) {
			vs, err := x(f)
			if err != nil {
				return false, nil, err
			}
			if len(vs) == 0 {
				return false, nil, nil
			}
			return false, nil, errorOf(vs[len(vs)-1])
		}, nil
	case emit.Fail:
		x, err := c.expr(s.Err)
		if err != nil {
			return nil, err
		}
		member := c.member
		return func(f *frame) (bool, []reflect.Value, error) {
			vs, err := x(f)
			if err != nil {
				return false, nil, err
			}
			if err := errorOf(first(vs)); err != nil {
				return false, nil, err
			}
			return false, nil, apis.Fail(apis.ErrEmission, "member", member, "reason", "fail with nil error")
		}, nil
	case emit.Guard:
		body, err := c.block(s.Body)
		if err != nil {
			return nil, err
		}
		return func(f *frame) (done bool, res []reflect.Value, err error) {
			defer func() {
				if r := recover(); r != nil {
					done, res, err = false, nil, panicError(r)
				}
			}()
			return body(f)
		}, nil
	case emit.If:
		cond, err := c.expr(s.Cond)
		if err != nil {
			return nil, err
		}
		then, err := c.block(s.Then)
		if err != nil {
			return nil, err
		}
		els, err := c.block(s.Else)
		if err != nil {
			return nil, err
		}
		return func(f *frame) (bool, []reflect.Value, error) {
			b, err := truth(cond, f)
			if err != nil {
				return false, nil, err
			}
			if b {
				return then(f)
			}
			return els(f)
		}, nil
	case nil:
		return nil, c.fail("nil statement")
	default:
		return nil, c.fail("unknown statement", "stmt", fmt.Sprintf("%T", s))
	}
}

func (c *compiler) assign(s emit.Assign) (execFn, error) {
	if len(s.Names) == 0 {
		return nil, c.fail("assign without names")
	}
	x, err := c.expr(s.X)
	if err != nil {
		return nil, err
	}
	slots := make([]int, len(s.Names))
	for i, n := range s.Names {
		slots[i] = c.slot(n)
	}
	return func(f *frame) (bool, []reflect.Value, error) {
		vs, err := x(f)
		if err != nil {
			return false, nil, err
		}
		if len(slots) == 1 {
			f.locals[slots[0]] = first(vs)
			return false, nil, nil
		}
		if len(vs) != len(slots) {
			return false, nil, apis.Fail(apis.ErrArguments, "have", len(vs), "want", len(slots))
		}
		for i, sl := range slots {
			f.locals[sl] = vs[i]
		}
		return false, nil, nil
	}, nil
}

func (c *compiler) setField(s emit.SetField) (execFn, error) {
	x, err := c.expr(s.X)
	if err != nil {
		return nil, err
	}
	var path []string
	switch r := s.Recv.(type) {
	case nil, emit.Self:
		path = []string{s.Name}
	default:
		if p, ok := selfPath(r); ok {
			path = append(p, s.Name)
		}
	}
	if path != nil {
		c.roots[path[0]] = struct{}{}
		return func(f *frame) (bool, []reflect.Value, error) {
			vs, err := x(f)
			if err != nil {
				return false, nil, err
			}
			return false, nil, f.self.store(path, first(vs))
		}, nil
	}
	recv, err := c.expr(s.Recv)
	if err != nil {
		return nil, err
	}
	name := s.Name
	return func(f *frame) (bool, []reflect.Value, error) {
		rv, err := recv(f)
		if err != nil {
			return false, nil, err
		}
		vs, err := x(f)
		if err != nil {
			return false, nil, err
		}
		if inst, ok := asInstance(first(rv)); ok {
			return false, nil, inst.SetField(name, first(vs))
		}
		fv, err := fieldOf(first(rv), name)
		if err != nil {
			return false, nil, err
		}
		if !fv.CanSet() {
			return false, nil, apis.Fail(apis.ErrArguments, "field", name, "reason", "not addressable")
		}
		v, err := exact(first(vs), fv.Type())
		if err != nil {
			return false, nil, err
		}
		fv.Set(v)
		return false, nil, nil
	}, nil
}

func (c *compiler) ret(s emit.Return) (execFn, error) {
	xs, err := c.exprs(s.Values)
	if err != nil {
		return nil, err
	}
	sig := c.sig
	spread := len(xs) == 1 && sig.NumOut() > 1
	if !spread && len(xs) != sig.NumOut() {
		return nil, c.fail("result count mismatch", "have", len(xs), "want", sig.NumOut())
	}
	return func(f *frame) (bool, []reflect.Value, error) {
		var vs []reflect.Value
		if spread {
			all, err := xs[0](f)
			if err != nil {
				return false, nil, err
			}
			if len(all) != sig.NumOut() {
				return false, nil, apis.Fail(apis.ErrArguments, "have", len(all), "want", sig.NumOut())
			}
			vs = all
		} else {
			vs = make([]reflect.Value, len(xs))
			for i, x := range xs {
				v, err := x(f)
				if err != nil {
					return false, nil, err
				}
				vs[i] = first(v)
			}
		}
		out := make([]reflect.Value, len(vs))
		for i, v := range vs {
			cv, err := exact(v, sig.Out(i))
			if err != nil {
				return false, nil, with(err, "result", i)
			}
			out[i] = cv
		}
		return true, out, nil
	}, nil
}

func truth(x evalFn, f *frame) (bool, error) {
	vs, err := x(f)
	if err != nil {
		return false, err
	}
	v := unwrap(first(vs))
	if !v.IsValid() || v.Kind() != reflect.Bool {
		return false, apis.Fail(apis.ErrArguments, "reason", "condition is not a bool")
	}
	return v.Bool(), nil
}

func (c *compiler) exprs(es []emit.Expr) ([]evalFn, error) {
	out := make([]evalFn, len(es))
	for i, e := range es {
		x, err := c.expr(e)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

// values evaluates xs and keeps the first value of each.
func values(xs []evalFn, f *frame) ([]reflect.Value, error) {
	out := make([]reflect.Value, len(xs))
	for i, x := range xs {
		v, err := x(f)
		if err != nil {
			return nil, err
		}
		out[i] = first(v)
	}
	return out, nil
}

func (c *compiler) single(e emit.Expr, fn func(reflect.Value) (reflect.Value, error)) (evalFn, error) {
	x, err := c.expr(e)
	if err != nil {
		return nil, err
	}
	return func(f *frame) ([]reflect.Value, error) {
		vs, err := x(f)
		if err != nil {
			return nil, err
		}
		v, err := fn(first(vs))
		if err != nil {
			return nil, err
		}
		return one(v), nil
	}, nil
}

func (c *compiler) expr(e emit.Expr) (evalFn, error) {
	switch e := e.(type) {
	case emit.Self:
		return func(f *frame) ([]reflect.Value, error) {
			return one(reflect.ValueOf(f.self)), nil
		}, nil
	case emit.Field:
		if path, ok := selfPath(e); ok {
			c.roots[path[0]] = struct{}{}
			return func(f *frame) ([]reflect.Value, error) {
				v, err := f.self.load(path)
				if err != nil {
					return nil, err
				}
				return one(v), nil
			}, nil
		}
		name := e.Name
		return c.single(e.Recv, func(v reflect.Value) (reflect.Value, error) {
			return fieldOf(v, name)
		})
	case emit.Arg:
		if e.Index < 0 || e.Index >= c.sig.NumIn() {
			return nil, c.fail("argument out of range", "index", e.Index)
		}
		i := e.Index
		return func(f *frame) ([]reflect.Value, error) {
			return one(f.args[i]), nil
		}, nil
	case emit.Local:
		i := c.slot(e.Name)
		return func(f *frame) ([]reflect.Value, error) {
			return one(f.locals[i]), nil
		}, nil
	case emit.Const:
		var v reflect.Value
		switch {
		case e.Value == nil && e.Type != nil:
			v = reflect.Zero(e.Type)
		case e.Value != nil:
			v = reflect.ValueOf(e.Value)
			if e.Type != nil {
				cv, err := exact(v, e.Type)
				if err != nil {
					return nil, with(c.fail("constant type"), "cause", err.Error())
				}
				v = cv
			}
		}
		return func(*frame) ([]reflect.Value, error) {
			return one(v), nil
		}, nil
	case emit.Zero:
		if e.Type == nil {
			return nil, c.fail("zero of nil type")
		}
		v := reflect.Zero(e.Type)
		return func(*frame) ([]reflect.Value, error) {
			return one(v), nil
		}, nil
	case emit.Call:
		return c.call(e)
	case emit.CallFunc:
		fn := reflect.ValueOf(e.Fn)
		if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
			return nil, c.fail("call of non-function")
		}
		args, err := c.exprs(e.Args)
		if err != nil {
			return nil, err
		}
		return func(f *frame) ([]reflect.Value, error) {
			av, err := values(args, f)
			if err != nil {
				return nil, err
			}
			return call(fn, av)
		}, nil
	case emit.NewObject:
		if e.Type == nil {
			return nil, c.fail("construction of nil type")
		}
		args, err := c.exprs(e.Args)
		if err != nil {
			return nil, err
		}
		t, ctor := e.Type, e.Ctor
		return func(f *frame) ([]reflect.Value, error) {
			av, err := values(args, f)
			if err != nil {
				return nil, err
			}
			inst, err := t.New(ctor, av...)
			if err != nil {
				return nil, err
			}
			return one(reflect.ValueOf(inst)), nil
		}, nil
	case emit.Convert:
		if e.To == nil {
			return nil, c.fail("conversion to nil type")
		}
		to := e.To
		return c.single(e.X, func(v reflect.Value) (reflect.Value, error) {
			return exact(v, to)
		})
	case emit.Deref:
		return c.single(e.X, func(v reflect.Value) (reflect.Value, error) {
			p := unwrap(v)
			if !p.IsValid() || p.Kind() != reflect.Pointer {
				return reflect.Value{}, apis.Fail(apis.ErrArguments, "reason", "deref of non-pointer")
			}
			if p.IsNil() {
				return reflect.Zero(p.Type().Elem()), nil
			}
			return p.Elem(), nil
		})
	case emit.NewPointer:
		if e.Elem == nil {
			return nil, c.fail("pointer to nil type")
		}
		elem := e.Elem
		if e.X == nil {
			return func(*frame) ([]reflect.Value, error) {
				return one(reflect.New(elem)), nil
			}, nil
		}
		return c.single(e.X, func(v reflect.Value) (reflect.Value, error) {
			p := reflect.New(elem)
			cv, err := exact(v, elem)
			if err != nil {
				return reflect.Value{}, err
			}
			p.Elem().Set(cv)
			return p, nil
		})
	case emit.MakeSlice:
		if e.Elem == nil {
			return nil, c.fail("slice of nil type")
		}
		items, err := c.exprs(e.Items)
		if err != nil {
			return nil, err
		}
		st := reflect.SliceOf(e.Elem)
		elem := e.Elem
		return func(f *frame) ([]reflect.Value, error) {
			s := reflect.MakeSlice(st, len(items), len(items))
			for i, x := range items {
				v, err := x(f)
				if err != nil {
					return nil, err
				}
				cv, err := exact(first(v), elem)
				if err != nil {
					return nil, with(err, "item", i)
				}
				s.Index(i).Set(cv)
			}
			return one(s), nil
		}, nil
	case emit.IsNil:
		return c.single(e.X, func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(isNil(unwrap(v))), nil
		})
	case emit.Not:
		x, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		return func(f *frame) ([]reflect.Value, error) {
			b, err := truth(x, f)
			if err != nil {
				return nil, err
			}
			return one(reflect.ValueOf(!b)), nil
		}, nil
	case nil:
		return nil, c.fail("nil expression")
	default:
		return nil, c.fail("unknown expression", "expr", fmt.Sprintf("%T", e))
	}
}

func (c *compiler) call(e emit.Call) (evalFn, error) {
	if e.Method == "" {
		return nil, c.fail("call without method name")
	}
	recv, err := c.expr(orSelf(e.Recv))
	if err != nil {
		return nil, err
	}
	args, err := c.exprs(e.Args)
	if err != nil {
		return nil, err
	}
	name := e.Method
	return func(f *frame) ([]reflect.Value, error) {
		rv, err := recv(f)
		if err != nil {
			return nil, err
		}
		av, err := values(args, f)
		if err != nil {
			return nil, err
		}
		return callMethod(first(rv), name, av)
	}, nil
}

func orSelf(e emit.Expr) emit.Expr {
	if e == nil {
		return emit.Self{}
	}
	return e
}
