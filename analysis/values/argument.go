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

package values

import (
	"errors"
	"fmt"
	"strings"

	"github.com/awslabs/ar-os-tools/analysis/osmodel"
)

// ErrNoValue is returned when an argument has no value for a call path nor any of its suffixes
var ErrNoValue = errors.New("no value for call path")

type variant struct {
	path  CallPath
	value osmodel.Literal
	// alternatives are the other literals reaching the argument along the same path
	alternatives []osmodel.Literal
}

func (v *variant) literals() []osmodel.Literal {
	return append([]osmodel.Literal{v.value}, v.alternatives...)
}

// An Argument maps call paths to the literal value an argument of a call takes in that context.
//
// An argument with a single entry is determined: its value does not depend on the context.
type Argument struct {
	variants map[string]*variant
	// order lists the keys of variants in insertion order
	order []string
}

// NewArgument returns an argument without values
func NewArgument() *Argument {
	return &Argument{variants: map[string]*variant{}}
}

// AddVariant records that the argument has value v in the context of path. If another value was already recorded
// for the same path, v is kept as an alternative.
func (a *Argument) AddVariant(path CallPath, v osmodel.Literal) {
	key := path.Key()
	if old, ok := a.variants[key]; ok {
		for _, x := range old.literals() {
			if x == v {
				return
			}
		}
		old.alternatives = append(old.alternatives, v)
		return
	}
	a.variants[key] = &variant{path: path.Copy(), value: v}
	a.order = append(a.order, key)
}

// SetValue records a value that does not depend on any call
func (a *Argument) SetValue(v osmodel.Literal) {
	a.AddVariant(CallPath{}, v)
}

// Len returns the number of call paths with a value
func (a *Argument) Len() int { return len(a.order) }

// IsDetermined returns true if the argument has exactly one entry
func (a *Argument) IsDetermined() bool { return len(a.order) == 1 }

// HasValue returns true if a value was recorded for exactly that path
func (a *Argument) HasValue(path CallPath) bool {
	_, ok := a.variants[path.Key()]
	return ok
}

// lookup finds the variant of the most specific suffix of path
func (a *Argument) lookup(path CallPath) (*variant, error) {
	if a.IsDetermined() {
		return a.variants[a.order[0]], nil
	}
	if v, ok := a.variants[path.Key()]; ok {
		return v, nil
	}
	p := path.Copy()
	for !p.IsEmpty() {
		p.PopFront()
		if v, ok := a.variants[p.Key()]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w %s", ErrNoValue, path)
}

// Value returns the value of the argument in the context of path. A determined argument returns its value for any
// path. Otherwise, the value recorded for path is returned, or else the value of its longest suffix obtained by
// removing outer calls. It returns ErrNoValue when no suffix of path has a value.
func (a *Argument) Value(path CallPath) (osmodel.Literal, error) {
	v, err := a.lookup(path)
	if err != nil {
		return osmodel.Literal{}, err
	}
	return v.value, nil
}

// Values is like Value but also returns the alternative values recorded for the matching path
func (a *Argument) Values(path CallPath) ([]osmodel.Literal, error) {
	v, err := a.lookup(path)
	if err != nil {
		return nil, err
	}
	return v.literals(), nil
}

// All returns the distinct values of the argument over all paths, in insertion order
func (a *Argument) All() []osmodel.Literal {
	var res []osmodel.Literal
	seen := map[osmodel.Literal]bool{}
	for _, key := range a.order {
		for _, l := range a.variants[key].literals() {
			if !seen[l] {
				seen[l] = true
				res = append(res, l)
			}
		}
	}
	return res
}

// Paths returns the paths with a value, in insertion order
func (a *Argument) Paths() []CallPath {
	res := make([]CallPath, len(a.order))
	for i, key := range a.order {
		res[i] = a.variants[key].path
	}
	return res
}

func (a *Argument) String() string {
	parts := make([]string, 0, len(a.order))
	for _, key := range a.order {
		v := a.variants[key]
		s := make([]string, 0, 1+len(v.alternatives))
		for _, l := range v.literals() {
			s = append(s, l.String())
		}
		parts = append(parts, v.path.String()+": "+strings.Join(s, "|"))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Arguments are the resolved arguments of one call
type Arguments struct {
	// Args holds one Argument per parameter of the call, in order
	Args []*Argument

	// ReturnValue is the argument of the value returned by the call, if it is used
	ReturnValue *Argument

	// EntryFunction is the entry function of the program the values were resolved in
	EntryFunction string
}

// Get returns the i-th argument, or nil
func (a *Arguments) Get(i int) *Argument {
	if i < 0 || i >= len(a.Args) {
		return nil
	}
	return a.Args[i]
}

// Narrow returns the call data of the call named name, with the values of each argument in the context of path.
// Arguments without value in that context are empty.
func (a *Arguments) Narrow(name string, path CallPath) osmodel.CallData {
	cd := osmodel.CallData{Name: name, EntryFunction: a.EntryFunction, Args: make([]osmodel.ArgValues, len(a.Args))}
	for i, arg := range a.Args {
		cd.Args[i] = narrow(arg, path)
	}
	if a.ReturnValue != nil {
		r := narrow(a.ReturnValue, path)
		cd.Return = &r
	}
	return cd
}

func narrow(arg *Argument, path CallPath) osmodel.ArgValues {
	if arg == nil {
		return osmodel.ArgValues{}
	}
	vals, err := arg.Values(path)
	if err != nil {
		return osmodel.ArgValues{}
	}
	return osmodel.ArgValues{Values: vals}
}
