// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package osmodel

import (
	"strconv"
	"strings"
)

// LiteralKind is the type of a constant value
type LiteralKind uint8

const (
	StringLiteral LiteralKind = iota + 1
	IntLiteral
	FloatLiteral
	NullLiteral
)

// A Literal is a constant value a system call argument can hold. Literals are comparable.
type Literal struct {
	Kind  LiteralKind
	Str   string
	Int   int64
	Float float64
}

// Str returns the string literal s
func Str(s string) Literal { return Literal{Kind: StringLiteral, Str: s} }

// Int returns the integer literal i
func Int(i int64) Literal { return Literal{Kind: IntLiteral, Int: i} }

// Float returns the floating point literal f
func Float(f float64) Literal { return Literal{Kind: FloatLiteral, Float: f} }

// Null returns the null pointer literal
func Null() Literal { return Literal{Kind: NullLiteral} }

// AsString returns the string value and true if the literal is a string
func (l Literal) AsString() (string, bool) {
	return l.Str, l.Kind == StringLiteral
}

// AsInt returns the integer value and true if the literal is an integer
func (l Literal) AsInt() (int64, bool) {
	return l.Int, l.Kind == IntLiteral
}

// IsValid returns false for the zero Literal
func (l Literal) IsValid() bool {
	return l.Kind != 0
}

func (l Literal) String() string {
	switch l.Kind {
	case StringLiteral:
		return strconv.Quote(l.Str)
	case IntLiteral:
		return strconv.FormatInt(l.Int, 10)
	case FloatLiteral:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case NullLiteral:
		return "null"
	default:
		return "<invalid>"
	}
}

// ArgValues holds the candidate literal values of one call argument. It is empty when the argument could not be
// resolved to any literal.
type ArgValues struct {
	Values []Literal
}

// Single returns the value and true if the argument has exactly one candidate value
func (a ArgValues) Single() (Literal, bool) {
	if len(a.Values) != 1 {
		return Literal{}, false
	}
	return a.Values[0], true
}

// Multiple returns true if more than one value is possible
func (a ArgValues) Multiple() bool {
	return len(a.Values) > 1
}

func (a ArgValues) String() string {
	switch len(a.Values) {
	case 0:
		return "?"
	case 1:
		return a.Values[0].String()
	}
	s := make([]string, len(a.Values))
	for i, v := range a.Values {
		s[i] = v.String()
	}
	return "{" + strings.Join(s, "|") + "}"
}

// CallData is the record of a system call attached to an interaction edge: the call name and its arguments, narrowed
// to the calling context in which the interaction was found.
type CallData struct {
	// Name is the name of the called function
	Name string

	// Args holds the values of each argument, in order
	Args []ArgValues

	// Return holds the values of the return value, if the call result is used
	Return *ArgValues

	// EntryFunction is the name of the program entry function the values were resolved against
	EntryFunction string
}

// Arg returns the values of the i-th argument. Out-of-range indices return empty values.
func (c CallData) Arg(i int) ArgValues {
	if i < 0 || i >= len(c.Args) {
		return ArgValues{}
	}
	return c.Args[i]
}

func (c CallData) String() string {
	s := make([]string, len(c.Args))
	for i, a := range c.Args {
		s[i] = a.String()
	}
	return c.Name + "(" + strings.Join(s, ", ") + ")"
}
