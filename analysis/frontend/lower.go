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

package frontend

import (
	"fmt"
	"go/constant"
	"go/token"
	"sort"

	"github.com/awslabs/ar-os-tools/analysis/config"
	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/awslabs/ar-os-tools/analysis/program"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// CallgraphMode selects the algorithm resolving the callees of call instructions
type CallgraphMode int

const (
	// StaticCallgraph only resolves static calls (fast, under-approximating)
	StaticCallgraph CallgraphMode = iota
	// ClassHierarchyCallgraph also resolves interface and closure calls to every compatible function
	ClassHierarchyCallgraph
)

// ParseCallgraphMode returns the mode named s ("static" or "cha")
func ParseCallgraphMode(s string) (CallgraphMode, error) {
	switch s {
	case "", "static":
		return StaticCallgraph, nil
	case "cha":
		return ClassHierarchyCallgraph, nil
	}
	return StaticCallgraph, fmt.Errorf("unknown callgraph mode %q", s)
}

func (mode CallgraphMode) compute(prog *ssa.Program) *callgraph.Graph {
	if mode == ClassHierarchyCallgraph {
		return cha.CallGraph(prog)
	}
	return static.CallGraph(prog)
}

type pendingFlow struct {
	to   program.ValueID
	from ssa.Value
}

// lowering holds the state of the translation of the SSA form into the program model
type lowering struct {
	cfg    *config.Config
	logger *config.LogGroup
	prog   *program.Program

	funcs   map[*ssa.Function]program.FunctionID
	names   map[*ssa.Function]string
	results map[*ssa.Function]program.ValueID
	callees map[ssa.CallInstruction][]*ssa.Function
	values  map[ssa.Value]program.ValueID
	stores  map[*ssa.Global][]ssa.Value
	pending []pendingFlow
}

// Build lowers the functions of the packages of lp into the program model. Every function gets one block per call
// instruction and one computation block per run of other instructions, in dominator order, followed by its exit
// block. Calls to functions named in the system call catalog of cfg are system calls, wherever the callee is defined.
// Values flow through constants, parameters, phis, conversions, returns and package-level variables.
func Build(cfg *config.Config, logger *config.LogGroup, lp LoadedProgram, mode CallgraphMode) (*program.Program, error) {
	l := &lowering{
		cfg:     cfg,
		logger:  logger,
		prog:    program.New(),
		funcs:   map[*ssa.Function]program.FunctionID{},
		names:   map[*ssa.Function]string{},
		results: map[*ssa.Function]program.ValueID{},
		callees: map[ssa.CallInstruction][]*ssa.Function{},
		values:  map[ssa.Value]program.ValueID{},
		stores:  map[*ssa.Global][]ssa.Value{},
	}

	fns := applicationFunctions(lp)
	if err := l.declare(fns); err != nil {
		return nil, err
	}
	l.collectStores(fns)
	l.collectCallees(mode.compute(lp.Program))

	for _, fn := range fns {
		if err := l.lowerFunction(fn); err != nil {
			return nil, err
		}
	}
	// flows are added last since phis and loads may refer to values defined later
	for i := 0; i < len(l.pending); i++ {
		pf := l.pending[i]
		l.prog.AddFlow(pf.to, l.valueOf(pf.from), program.NoCallSite)
	}
	logger.Debugf("Lowered %d functions into %d blocks\n", len(fns), l.prog.NumABBs())
	return l.prog, nil
}

// applicationFunctions returns the functions with a body of the loaded packages, sorted by position
func applicationFunctions(lp LoadedProgram) []*ssa.Function {
	pkgs := map[*ssa.Package]bool{}
	for _, p := range lp.Packages {
		pkgs[p] = true
	}
	var fns []*ssa.Function
	for fn := range ssautil.AllFunctions(lp.Program) {
		if fn.Pkg != nil && pkgs[fn.Pkg] && len(fn.Blocks) > 0 {
			fns = append(fns, fn)
		}
	}
	sort.Slice(fns, func(i, j int) bool {
		if fns[i].Pos() != fns[j].Pos() {
			return fns[i].Pos() < fns[j].Pos()
		}
		return fns[i].String() < fns[j].String()
	})
	return fns
}

func shortName(fn *ssa.Function) string {
	if fn.Signature.Recv() != nil && fn.Pkg != nil {
		return fn.RelString(fn.Pkg.Pkg)
	}
	return fn.Name()
}

// declare adds the functions with their parameters and result values. Functions are named by their short name when
// it is unique, and by their qualified name otherwise.
func (l *lowering) declare(fns []*ssa.Function) error {
	count := map[string]int{}
	for _, fn := range fns {
		count[shortName(fn)]++
	}
	for _, fn := range fns {
		name := shortName(fn)
		if count[name] > 1 {
			name = fn.String()
		}
		f, err := l.prog.AddFunction(name)
		if err != nil {
			return err
		}
		l.funcs[fn] = f.ID
		l.names[fn] = name
		for _, param := range fn.Params {
			l.values[param] = l.prog.AddParam(f.ID, param.Name())
		}
		if fn.Signature.Results().Len() == 1 {
			rv := l.prog.AddValue(f.ID, name+"$ret")
			l.prog.SetResult(f.ID, rv)
			l.results[fn] = rv
		}
	}
	return nil
}

func (l *lowering) collectStores(fns []*ssa.Function) {
	for _, fn := range fns {
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				if st, ok := instr.(*ssa.Store); ok {
					if g, ok := st.Addr.(*ssa.Global); ok {
						l.stores[g] = append(l.stores[g], st.Val)
					}
				}
			}
		}
	}
}

func (l *lowering) collectCallees(cg *callgraph.Graph) {
	for fn := range l.funcs {
		node := cg.Nodes[fn]
		if node == nil {
			continue
		}
		for _, e := range node.Out {
			if e.Site != nil && e.Callee != nil && e.Callee.Func != nil {
				l.callees[e.Site] = append(l.callees[e.Site], e.Callee.Func)
			}
		}
	}
	for site, fns := range l.callees {
		sort.Slice(fns, func(i, j int) bool { return fns[i].String() < fns[j].String() })
		l.callees[site] = fns
	}
}

func (l *lowering) lowerFunction(fn *ssa.Function) error {
	id := l.funcs[fn]
	for _, b := range fn.DomPreorder() {
		computing := false
		for _, instr := range b.Instrs {
			switch x := instr.(type) {
			case ssa.CallInstruction:
				if computing {
					l.prog.AddComputation(id)
					computing = false
				}
				if err := l.lowerCall(id, x); err != nil {
					return fmt.Errorf("in %s: %w", l.names[fn], err)
				}
			case *ssa.Return:
				if rv, ok := l.results[fn]; ok && len(x.Results) == 1 {
					l.pending = append(l.pending, pendingFlow{to: rv, from: x.Results[0]})
				}
				computing = true
			default:
				computing = true
			}
		}
		if computing {
			l.prog.AddComputation(id)
		}
	}
	l.prog.AddExit(id)
	return nil
}

func (l *lowering) lowerCall(caller program.FunctionID, instr ssa.CallInstruction) error {
	common := instr.Common()
	args := make([]program.ValueID, len(common.Args))
	for i, a := range common.Args {
		args[i] = l.valueOf(a)
	}
	result := instr.Value()
	withResult := result != nil && result.Referrers() != nil && len(*result.Referrers()) > 0

	callees := l.callees[instr]
	if len(callees) == 0 {
		if fn := common.StaticCallee(); fn != nil {
			callees = []*ssa.Function{fn}
		}
	}

	// system calls are recognized by name, the stubs of the OS API may be in any package
	for _, callee := range callees {
		info, ok, err := program.Classify(l.cfg, callee.Name())
		if err != nil {
			return err
		}
		if ok {
			abb := l.prog.AddSyscall(caller, callee.Name(), info, args, withResult)
			if withResult {
				l.values[result] = abb.Return
			}
			return nil
		}
	}

	// the receiver of a dynamic method call is the first parameter of the concrete method
	callArgs := args
	if common.IsInvoke() {
		callArgs = append([]program.ValueID{l.valueOf(common.Value)}, args...)
	}
	lowered := false
	for _, callee := range callees {
		id, ok := l.funcs[callee]
		if !ok {
			continue
		}
		abb, err := l.prog.AddCall(caller, id, callArgs, withResult)
		if err != nil {
			return err
		}
		if withResult {
			if prev, ok := l.values[result]; ok {
				// several possible callees: every call result flows into the first one
				l.prog.AddFlow(prev, abb.Return, program.NoCallSite)
			} else {
				l.values[result] = abb.Return
			}
		}
		lowered = true
	}
	if !lowered {
		l.prog.AddComputation(caller)
	}
	return nil
}

func (l *lowering) functionOf(v ssa.Value) program.FunctionID {
	if fn := v.Parent(); fn != nil {
		if id, ok := l.funcs[fn]; ok {
			return id
		}
	}
	return program.NoFunction
}

// valueOf returns the value-flow node of v, creating it if needed
func (l *lowering) valueOf(v ssa.Value) program.ValueID {
	if id, ok := l.values[v]; ok {
		return id
	}
	var id program.ValueID
	switch x := v.(type) {
	case *ssa.Const:
		id = l.prog.AddConstant(constLiteral(x))
	case *ssa.Function:
		name, ok := l.names[x]
		if !ok {
			name = x.Name()
		}
		id = l.prog.AddConstant(osmodel.Str(name))
	case *ssa.Phi:
		id = l.prog.AddValue(l.functionOf(v), v.Name())
		for _, e := range x.Edges {
			l.pending = append(l.pending, pendingFlow{to: id, from: e})
		}
	case *ssa.ChangeType:
		id = l.derived(v, x.X)
	case *ssa.Convert:
		id = l.derived(v, x.X)
	case *ssa.MakeInterface:
		id = l.derived(v, x.X)
	case *ssa.ChangeInterface:
		id = l.derived(v, x.X)
	case *ssa.TypeAssert:
		if x.CommaOk {
			id = l.prog.AddValue(l.functionOf(v), v.Name())
		} else {
			id = l.derived(v, x.X)
		}
	case *ssa.UnOp:
		id = l.prog.AddValue(l.functionOf(v), v.Name())
		if g, ok := x.X.(*ssa.Global); ok && x.Op == token.MUL {
			for _, stored := range l.stores[g] {
				l.pending = append(l.pending, pendingFlow{to: id, from: stored})
			}
		}
	default:
		id = l.prog.AddValue(l.functionOf(v), v.Name())
	}
	l.values[v] = id
	return id
}

func (l *lowering) derived(v ssa.Value, from ssa.Value) program.ValueID {
	id := l.prog.AddValue(l.functionOf(v), v.Name())
	l.pending = append(l.pending, pendingFlow{to: id, from: from})
	return id
}

func constLiteral(c *ssa.Const) osmodel.Literal {
	if c.Value == nil {
		return osmodel.Null()
	}
	switch c.Value.Kind() {
	case constant.String:
		return osmodel.Str(constant.StringVal(c.Value))
	case constant.Int:
		if i, exact := constant.Int64Val(c.Value); exact {
			return osmodel.Int(i)
		}
		f, _ := constant.Float64Val(c.Value)
		return osmodel.Float(f)
	case constant.Float:
		f, _ := constant.Float64Val(c.Value)
		return osmodel.Float(f)
	case constant.Bool:
		if constant.BoolVal(c.Value) {
			return osmodel.Int(1)
		}
		return osmodel.Int(0)
	default:
		return osmodel.Null()
	}
}
