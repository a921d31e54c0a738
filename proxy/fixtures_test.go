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

package proxy_test

import (
	"errors"
	"reflect"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/proxy"
	"dirpx.dev/dpx/serial"
)

type Calc interface {
	Add(a, b int) int
}

type Named interface {
	Name() string
}

type Store interface {
	Get(key string, out *int) error
}

type Counter interface {
	Inc() int
}

type adder struct{ offset int }

func (a adder) Add(x, y int) int { return x + y + a.offset }

type memStore struct {
	data  map[string]int
	calls int
}

func (s *memStore) Get(key string, out *int) error {
	s.calls++
	v, ok := s.data[key]
	if !ok {
		return errors.New("missing " + key)
	}
	*out = v
	return nil
}

// namedStore implements Store and Named.
type namedStore struct{ memStore }

func (s *namedStore) Name() string { return "named-store" }

type nameMixin struct{ name string }

func (m nameMixin) Name() string { return m.name }

// Calculator is a class whose methods can be intercepted.
type Calculator struct {
	Calls int
}

func (c *Calculator) Add(a, b int) int {
	c.Calls++
	return a + b
}

func (c *Calculator) Scale(f int, vals ...int) []int {
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = v * f
	}
	return out
}

// Account is serialized field by field.
type Account struct {
	Owner   string
	Balance int
	Tags    []string
	secret  string
}

func (a *Account) Serializable() {}

func (a *Account) Deposit(n int) int {
	a.Balance += n
	return a.Balance
}

// Ledger writes its own object data.
type Ledger struct {
	Entries []int
}

func (l *Ledger) Serializable() {}

func (l *Ledger) Record(v int) { l.Entries = append(l.Entries, v) }

func (l *Ledger) GetObjectData(info *serial.Info) error {
	sum := 0
	for _, e := range l.Entries {
		sum += e
	}
	if err := info.AddValue("entries", l.Entries); err != nil {
		return err
	}
	return info.AddValue("sum", sum)
}

func (l *Ledger) SetObjectData(info *serial.Info) error {
	return info.Decode("entries", &l.Entries)
}

// SealedLedger seals its object data writer.
type SealedLedger struct{ Ledger }

func (l *SealedLedger) SealedMethods() []string { return []string{apis.MethodGetObjectData} }

// WriteOnlyLedger cannot be restored.
type WriteOnlyLedger struct{ Entries []int }

func (l *WriteOnlyLedger) Serializable() {}

func (l *WriteOnlyLedger) GetObjectData(*serial.Info) error { return nil }

// Reserved already looks like a proxy.
type Reserved struct{}

func (Reserved) DynProxyGetTarget() any              { return nil }
func (Reserved) GetInterceptors() []apis.Interceptor { return nil }

// Thermostat has a property and an event.
type Thermostat struct {
	temp     int
	handlers int
}

func (t *Thermostat) Temp() int               { return t.temp }
func (t *Thermostat) SetTemp(v int)           { t.temp = v }
func (t *Thermostat) AddChanged(func(int))    { t.handlers++ }
func (t *Thermostat) RemoveChanged(func(int)) { t.handlers-- }

var (
	calcType    = reflect.TypeOf((*Calc)(nil)).Elem()
	namedType   = reflect.TypeOf((*Named)(nil)).Elem()
	storeType   = reflect.TypeOf((*Store)(nil)).Elem()
	counterType = reflect.TypeOf((*Counter)(nil)).Elem()
)

func newGenerator() *proxy.Generator {
	l, _ := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return proxy.NewGenerator(proxy.WithLogger(l))
}

func returning(v any) apis.Interceptor {
	return apis.InterceptorFunc(func(inv apis.Invocation) error {
		inv.SetReturnValue(0, v)
		return nil
	})
}

func proceeding(seen *[]string) apis.Interceptor {
	return apis.InterceptorFunc(func(inv apis.Invocation) error {
		*seen = append(*seen, inv.Method().Name)
		return inv.Proceed()
	})
}

// byName selects interceptors only for one method.
type byName struct{ name string }

func (s byName) SelectInterceptors(_ reflect.Type, m apis.Method, ics []apis.Interceptor) []apis.Interceptor {
	if m.Name != s.name {
		return nil
	}
	return ics
}
