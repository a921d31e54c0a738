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

// Package emit defines the code emission contract the proxy generator is
// written against: a small expression/statement tree for method bodies and
// the Backend/TypeBuilder/ConcreteType capability set that lowers it into a
// runnable type.
//
// The generator never runs code itself. It describes each member as a tree
// and hands it to a Backend; package emit/reflectemit is the backend shipped
// with dpx.
package emit

import "reflect"

// Expr is a node of an expression tree. An expression evaluates to zero or
// more values: calls yield all their results, every other node yields
// exactly one. Where a single value is expected the first one is used.
type Expr interface {
	isExpr()
}

// Stmt is a node of a method body.
type Stmt interface {
	isStmt()
}

// Self is the instance the member runs on.
type Self struct{}

// Field reads field Name of Recv. A nil Recv means Self. Fields of Self are
// addressed by their logical name; struct fields of Go values by their Go
// name. Unexported struct fields are reachable when the struct is
// addressable, as the base of a proxy is.
type Field struct {
	Recv Expr
	Name string
}

// Arg is formal parameter Index of the member.
type Arg struct {
	Index int
}

// Local reads a local variable defined by Assign.
type Local struct {
	Name string
}

// Const is a constant. Type, when set, gives nil values a type.
type Const struct {
	Value any
	Type  reflect.Type
}

// Zero is the zero value of Type.
type Zero struct {
	Type reflect.Type
}

// Call invokes method Method on Recv. Emitted instances dispatch to their
// emitted members first; other values use their Go method set, taking the
// address of addressable receivers when needed.
type Call struct {
	Recv   Expr
	Method string
	Args   []Expr
}

// CallFunc calls the Go function Fn.
type CallFunc struct {
	Fn   any
	Args []Expr
}

// NewObject constructs an instance of an already completed type.
type NewObject struct {
	Type ConcreteType
	Ctor string
	Args []Expr
}

// Convert converts X to To. Nil values convert to the zero value of To;
// interface values are unwrapped first.
type Convert struct {
	To reflect.Type
	X  Expr
}

// Deref loads through the pointer X. A nil pointer yields the zero value of
// the element type.
type Deref struct {
	X Expr
}

// NewPointer allocates a new Elem, initialized from X when X is set.
type NewPointer struct {
	Elem reflect.Type
	X    Expr
}

// MakeSlice builds a []Elem from Items.
type MakeSlice struct {
	Elem  reflect.Type
	Items []Expr
}

// IsNil reports whether X is nil (or invalid).
type IsNil struct {
	X Expr
}

// Not negates the boolean X.
type Not struct {
	X Expr
}

func (Self) isExpr()       {}
func (Field) isExpr()      {}
func (Arg) isExpr()        {}
func (Local) isExpr()      {}
func (Const) isExpr()      {}
func (Zero) isExpr()       {}
func (Call) isExpr()       {}
func (CallFunc) isExpr()   {}
func (NewObject) isExpr()  {}
func (Convert) isExpr()    {}
func (Deref) isExpr()      {}
func (NewPointer) isExpr() {}
func (MakeSlice) isExpr()  {}
func (IsNil) isExpr()      {}
func (Not) isExpr()        {}

// Assign evaluates X and binds its values to the locals in Names, in order.
// A single name binds the first value.
type Assign struct {
	Names []string
	X     Expr
}

// SetField stores X into field Name of Recv (nil means Self).
type SetField struct {
	Recv Expr
	Name string
	X    Expr
}

// Store writes X through the pointer Ptr.
type Store struct {
	Ptr Expr
	X   Expr
}

// Do evaluates X for its side effects.
type Do struct {
	X Expr
}

// Return ends the member. A single multi-valued expression may supply every
// result at once.
type Return struct {
	Values []Expr
}

// Check evaluates X and fails the member with the last value of X when it
// is a non-nil error.
type Check struct {
	X Expr
}

// Fail fails the member with the error Err.
type Fail struct {
	Err Expr
}

// Guard runs Body and turns a panic raised inside it into a failure.
type Guard struct {
	Body []Stmt
}

// If runs Then when Cond is true and Else otherwise.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (Assign) isStmt()   {}
func (SetField) isStmt() {}
func (Store) isStmt()    {}
func (Do) isStmt()       {}
func (Return) isStmt()   {}
func (Check) isStmt()    {}
func (Fail) isStmt()     {}
func (Guard) isStmt()    {}
func (If) isStmt()       {}

// Args returns Arg{0} .. Arg{n-1}.
func Args(n int) []Expr {
	out := make([]Expr, n)
	for i := range out {
		out[i] = Arg{Index: i}
	}
	return out
}

// Locals returns Local expressions for names.
func Locals(names ...string) []Expr {
	out := make([]Expr, len(names))
	for i, n := range names {
		out[i] = Local{Name: n}
	}
	return out
}
