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
	"testing"

	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/awslabs/ar-os-tools/analysis/program"
	"golang.org/x/exp/slices"
)

func TestCallPathEquality(t *testing.T) {
	p := NewCallPath(1, 2, 3)
	q := CallPath{}
	q.Append(1)
	q.Append(2)
	q.Append(3)
	if !p.Equal(q) || p.Hash() != q.Hash() || p.Key() != q.Key() {
		t.Errorf("structurally equal paths should be equal and have the same hash and key")
	}
	r := NewCallPath(3, 2, 1)
	if p.Equal(r) || p.Hash() == r.Hash() || p.Key() == r.Key() {
		t.Errorf("paths with different orders should differ")
	}
	if !p.Reversed().Equal(r) {
		t.Errorf("reversed path should be %v, got %v", r, p.Reversed())
	}

	arg := NewArgument()
	arg.AddVariant(p, osmodel.Str("A"))
	arg.AddVariant(r, osmodel.Str("B"))
	if v, err := arg.Value(q); err != nil || v != osmodel.Str("A") {
		t.Errorf("equal path should index the same entry, got %v %v", v, err)
	}
}

func TestCallPathPopFront(t *testing.T) {
	p := NewCallPath(4, 5)
	p.PopFront()
	if !p.Equal(NewCallPath(5)) {
		t.Errorf("expected [5], got %v", p)
	}
	p.PopFront()
	if !p.IsEmpty() {
		t.Errorf("expected empty path, got %v", p)
	}
	p.PopFront()
	p.PopFront()
	if !p.IsEmpty() || !p.Equal(CallPath{}) || p.Hash() != (CallPath{}).Hash() {
		t.Errorf("pop front on empty path should be a no-op")
	}
}

func TestCallPathCopyOnBranch(t *testing.T) {
	p := NewCallPath(1)
	a := p.Copy()
	b := p.Copy()
	a.Append(2)
	b.Append(3)
	if !a.Equal(NewCallPath(1, 2)) || !b.Equal(NewCallPath(1, 3)) || !p.Equal(NewCallPath(1)) {
		t.Errorf("branches should not share storage: %v %v %v", p, a, b)
	}
}

func TestCallPathIsRecursive(t *testing.T) {
	if NewCallPath(1, 2, 3).IsRecursive() {
		t.Errorf("[1.2.3] is not recursive")
	}
	if !NewCallPath(1, 2, 1).IsRecursive() {
		t.Errorf("[1.2.1] is recursive")
	}
}

func TestDeterminedArgument(t *testing.T) {
	arg := NewArgument()
	arg.AddVariant(NewCallPath(7, 8), osmodel.Str("EVT1"))
	if !arg.IsDetermined() {
		t.Fatalf("argument with one value should be determined")
	}
	for _, p := range []CallPath{{}, NewCallPath(7, 8), NewCallPath(99, 42, 1)} {
		if v, err := arg.Value(p); err != nil || v != osmodel.Str("EVT1") {
			t.Errorf("determined argument should return its value for %v, got %v %v", p, v, err)
		}
	}
}

func TestArgumentSuffixLookup(t *testing.T) {
	arg := NewArgument()
	arg.AddVariant(NewCallPath(1, 2), osmodel.Str("A"))
	arg.AddVariant(NewCallPath(3, 2), osmodel.Str("B"))
	arg.AddVariant(NewCallPath(4), osmodel.Str("C"))

	// exact match
	if v, err := arg.Value(NewCallPath(3, 2)); err != nil || v != osmodel.Str("B") {
		t.Errorf("expected exact match B, got %v %v", v, err)
	}
	// the outer calls are removed until a suffix matches
	if v, err := arg.Value(NewCallPath(9, 8, 1, 2)); err != nil || v != osmodel.Str("A") {
		t.Errorf("expected suffix match A, got %v %v", v, err)
	}
	if v, err := arg.Value(NewCallPath(5, 4)); err != nil || v != osmodel.Str("C") {
		t.Errorf("expected suffix match C, got %v %v", v, err)
	}
	// no suffix of [5.6] has a value
	if _, err := arg.Value(NewCallPath(5, 6)); !errors.Is(err, ErrNoValue) {
		t.Errorf("expected no value error, got %v", err)
	}
	if arg.HasValue(NewCallPath(2)) {
		t.Errorf("HasValue should only report exact paths")
	}
}

func TestArgumentAlternatives(t *testing.T) {
	arg := NewArgument()
	arg.SetValue(osmodel.Str("A"))
	arg.SetValue(osmodel.Str("A"))
	arg.SetValue(osmodel.Str("B"))
	if !arg.IsDetermined() {
		t.Errorf("alternatives on the same path keep the argument determined")
	}
	vals, err := arg.Values(CallPath{})
	if err != nil || !slices.Equal(vals, []osmodel.Literal{osmodel.Str("A"), osmodel.Str("B")}) {
		t.Errorf("unexpected values %v %v", vals, err)
	}
	if v, _ := arg.Value(CallPath{}); v != osmodel.Str("A") {
		t.Errorf("first value should be returned, got %v", v)
	}
}

func TestNarrow(t *testing.T) {
	a0 := NewArgument()
	a0.AddVariant(NewCallPath(1), osmodel.Str("EVT1"))
	a0.AddVariant(NewCallPath(2), osmodel.Str("EVT2"))
	args := &Arguments{Args: []*Argument{a0, NewArgument()}, EntryFunction: "main"}
	cd := args.Narrow("WaitEvent", NewCallPath(0, 2))
	if cd.Name != "WaitEvent" || cd.EntryFunction != "main" || len(cd.Args) != 2 {
		t.Fatalf("unexpected call data %v", cd)
	}
	if v, ok := cd.Arg(0).Single(); !ok || v != osmodel.Str("EVT2") {
		t.Errorf("expected EVT2, got %v", cd.Arg(0))
	}
	if len(cd.Arg(1).Values) != 0 || cd.Return != nil {
		t.Errorf("unresolved argument should be empty")
	}
}

// testProgram builds:
//
//	main:  wrap("EVT1"); f("EVT2")
//	wrap(x): f(x)
//	f(evt):  WaitEvent(evt)
type testProgram struct {
	p                   *program.Program
	mainToWrap, wrapToF program.CallEdgeID
	mainToF             program.CallEdgeID
	wait                *program.ABB
	main, wrap, f       *program.Function
	waitInfo            program.SyscallInfo
}

func newTestProgram(t *testing.T) *testProgram {
	tp := &testProgram{p: program.New()}
	p := tp.p
	tp.main, _ = p.AddFunction("main")
	tp.wrap, _ = p.AddFunction("wrap")
	tp.f, _ = p.AddFunction("f")
	x := p.AddParam(tp.wrap.ID, "x")
	evt := p.AddParam(tp.f.ID, "evt")
	tp.waitInfo = program.SyscallInfo{Type: osmodel.SyscallWait, Targets: []osmodel.Kind{osmodel.KindEvent}}
	tp.wait = p.AddSyscall(tp.f.ID, "WaitEvent", tp.waitInfo, []program.ValueID{evt}, false)

	c1, err := p.AddCall(tp.main.ID, tp.wrap.ID, []program.ValueID{p.AddConstant(osmodel.Str("EVT1"))}, false)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := p.AddCall(tp.main.ID, tp.f.ID, []program.ValueID{p.AddConstant(osmodel.Str("EVT2"))}, false)
	if err != nil {
		t.Fatal(err)
	}
	c3, err := p.AddCall(tp.wrap.ID, tp.f.ID, []program.ValueID{x}, false)
	if err != nil {
		t.Fatal(err)
	}
	tp.mainToWrap = p.CallEdgesAt(c1.CallSite)[0].ID
	tp.mainToF = p.CallEdgesAt(c2.CallSite)[0].ID
	tp.wrapToF = p.CallEdgesAt(c3.CallSite)[0].ID
	return tp
}

func TestWalkerCallPaths(t *testing.T) {
	tp := newTestProgram(t)
	w := NewWalker(tp.p, tp.p)
	arg, err := w.Resolve(tp.wait.Args[0])
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if arg.Len() != 2 || arg.IsDetermined() {
		t.Fatalf("expected two contexts, got %v", arg)
	}
	if !arg.HasValue(NewCallPath(tp.mainToWrap, tp.wrapToF)) || !arg.HasValue(NewCallPath(tp.mainToF)) {
		t.Errorf("unexpected paths %v", arg.Paths())
	}
	if v, _ := arg.Value(NewCallPath(tp.mainToWrap, tp.wrapToF)); v != osmodel.Str("EVT1") {
		t.Errorf("expected EVT1 through wrap, got %v", v)
	}
	if v, _ := arg.Value(NewCallPath(tp.mainToF)); v != osmodel.Str("EVT2") {
		t.Errorf("expected EVT2 from main, got %v", v)
	}
	// f called directly from wrap without context: no value
	if _, err := arg.Value(NewCallPath(tp.wrapToF)); !errors.Is(err, ErrNoValue) {
		t.Errorf("expected no value for the partial path, got %v", err)
	}
}

func TestWalkerCallSiteMismatch(t *testing.T) {
	tp := newTestProgram(t)
	site := tp.p.CallEdge(tp.mainToF).Site
	tp.p.AddCallEdge(tp.main.ID, tp.wrap.ID, site)
	_, err := NewWalker(tp.p, tp.p).Resolve(tp.wait.Args[0])
	if !errors.Is(err, ErrCallSiteMismatch) {
		t.Errorf("expected call site mismatch, got %v", err)
	}
}

func TestWalkerReturnedValues(t *testing.T) {
	p := program.New()
	main, _ := p.AddFunction("main")
	id, _ := p.AddFunction("id")
	name, _ := p.AddFunction("name")
	x := p.AddParam(id.ID, "x")
	p.SetResult(id.ID, x)
	p.SetResult(name.ID, p.AddConstant(osmodel.Str("Q2")))

	r1, _ := p.AddCall(main.ID, id.ID, []program.ValueID{p.AddConstant(osmodel.Str("Q1"))}, true)
	r2, _ := p.AddCall(main.ID, name.ID, nil, true)
	// another caller of id, whose value must not reach r1
	other, _ := p.AddFunction("other")
	if _, err := p.AddCall(other.ID, id.ID, []program.ValueID{p.AddConstant(osmodel.Str("Q3"))}, false); err != nil {
		t.Fatal(err)
	}
	send := p.AddSyscall(main.ID, "xQueueGenericSend", program.SyscallInfo{Type: osmodel.SyscallCommit},
		[]program.ValueID{r1.Return, r2.Return}, false)

	res := NewResolver(p, p, "main")
	args, err := res.Arguments(send)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if v, ok := args.Narrow("send", CallPath{}).Arg(0).Single(); !ok || v != osmodel.Str("Q1") {
		t.Errorf("expected Q1 through id, got %v", args.Get(0))
	}
	if v, err := args.Get(1).Value(CallPath{}); err != nil || v != osmodel.Str("Q2") {
		t.Errorf("expected Q2 returned by name, got %v %v", v, err)
	}
	again, _ := res.Arguments(send)
	if again != args {
		t.Errorf("arguments should be cached")
	}
}

func TestWalkerRecursion(t *testing.T) {
	// main: f("A"); f(x): f(x); WaitEvent(x)
	p := program.New()
	main, _ := p.AddFunction("main")
	f, _ := p.AddFunction("f")
	x := p.AddParam(f.ID, "x")
	if _, err := p.AddCall(f.ID, f.ID, []program.ValueID{x}, false); err != nil {
		t.Fatal(err)
	}
	wait := p.AddSyscall(f.ID, "WaitEvent", program.SyscallInfo{Type: osmodel.SyscallWait}, []program.ValueID{x}, false)
	if _, err := p.AddCall(main.ID, f.ID, []program.ValueID{p.AddConstant(osmodel.Str("A"))}, false); err != nil {
		t.Fatal(err)
	}
	arg, err := NewWalker(p, p).Resolve(wait.Args[0])
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if all := arg.All(); len(all) != 1 || all[0] != osmodel.Str("A") {
		t.Errorf("expected A, got %v", arg)
	}
}

func TestWalkerConstantUse(t *testing.T) {
	p := program.New()
	c := p.AddConstant(osmodel.Int(3))
	arg, err := NewWalker(p, p).Resolve(c)
	if err != nil || !arg.IsDetermined() {
		t.Fatalf("constant use should be determined: %v %v", arg, err)
	}
	if _, err := NewWalker(p, p).Resolve(42); err == nil {
		t.Errorf("expected error for unknown value")
	}
}
