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

package interactions

import (
	"errors"
	"fmt"

	"github.com/awslabs/ar-os-tools/analysis/config"
	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/awslabs/ar-os-tools/analysis/program"
	"github.com/awslabs/ar-os-tools/analysis/values"
	"github.com/awslabs/ar-os-tools/internal/formatutil"
	"github.com/awslabs/ar-os-tools/internal/funcutil"
	"github.com/awslabs/ar-os-tools/internal/graphutil"
)

// A Detector discovers the interactions between the abstractions of an application. It walks the call graph from
// each entry point (the entry function of the program, and the functions of the tasks, ISRs and timers), resolves
// the handler argument of every system call it meets and adds an edge between the abstraction the code belongs to
// and the abstraction the call addresses.
//
// A Detector is meant to run once.
type Detector struct {
	cfg      *config.Config
	logger   *config.LogGroup
	cg       program.CallGraph
	graph    *osmodel.Graph
	resolver *values.Resolver
	entry    *osmodel.Node
	result   *Result
}

// NewDetector returns a detector adding edges to g. If logger is nil, a logger is built from cfg.
func NewDetector(cfg *config.Config, logger *config.LogGroup, cg program.CallGraph, vf program.ValueFlow,
	g *osmodel.Graph) *Detector {
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	return &Detector{
		cfg:      cfg,
		logger:   logger,
		cg:       cg,
		graph:    g,
		resolver: values.NewResolver(cg, vf, cfg.EntryPoint),
		result:   &Result{},
	}
}

// root is an entry point of the walk: an abstraction and the function executing its code
type root struct {
	node     *osmodel.Node
	function *program.Function
}

// walkState is the state of the walk from one root
type walkState struct {
	root *osmodel.Node
	// visited are the call sites already followed from this root
	visited map[program.CallSiteID]bool
	// onStack are the functions of the current call chain
	onStack map[program.FunctionID]bool
	// path is the current context, from the function of the root
	path  values.CallPath
	stats *RootStats
}

// Run runs the detection and the finishing passes of the OS variant. It returns a *FatalError if the detection had
// to be aborted.
func (d *Detector) Run() (*Result, error) {
	roots, err := d.collectRoots()
	if err != nil {
		return nil, err
	}
	for _, r := range roots {
		if err := d.walkRoot(r); err != nil {
			return nil, err
		}
	}

	// the finishing passes iterate over the complete graph
	if d.cfg.OS == config.FreeRTOS {
		d.populateQueueSets()
	}
	if d.cfg.OS == config.OSEK {
		if err := d.extractAppMode(); err != nil {
			return nil, err
		}
	}

	d.summarizeCallGraph()
	d.logger.Infof("Detected %d interactions from %d entry points (%d diagnostics)",
		len(d.result.Edges), len(d.result.Roots), len(d.result.Diagnostics))
	return d.result, nil
}

// collectRoots returns the entry points of the detection: the entry function first, then the tasks, the ISRs and
// the timers in the order of the graph
func (d *Detector) collectRoots() ([]root, error) {
	name := d.cfg.EntryPoint
	mainFunc := d.cg.FunctionByName(name)
	if mainFunc == nil {
		return nil, fatal("root collection", fmt.Errorf("%w: %s", ErrNoEntryPoint, name))
	}
	d.entry = d.graph.Lookup(name, osmodel.KindFunction)
	if d.entry == nil {
		d.entry = osmodel.NewNode(name, &osmodel.FunctionData{})
		if _, err := d.graph.AddNode(d.entry); err != nil {
			return nil, fatal("root collection", err)
		}
	}
	roots := []root{{node: d.entry, function: mainFunc}}

	for _, kind := range []osmodel.Kind{osmodel.KindTask, osmodel.KindISR, osmodel.KindTimer} {
		for _, n := range d.graph.NodesOfKind(kind) {
			fname, ok := n.EntryFunction()
			if !ok {
				d.diagnose(Diagnostic{Kind: MissingFunction, Root: n.Name, Message: "no function defined"})
				continue
			}
			f := d.cg.FunctionByName(fname)
			if f == nil {
				d.diagnose(Diagnostic{Kind: MissingFunction, Root: n.Name, Function: fname,
					Message: "function not in program"})
				continue
			}
			roots = append(roots, root{node: n, function: f})
		}
	}
	return roots, nil
}

func (d *Detector) walkRoot(r root) error {
	stats := &RootStats{
		Name:     r.node.Name,
		Kind:     r.node.Kind(),
		Function: r.function.Name,
		CallTree: graphutil.NewTree(r.function.Name),
	}
	d.result.Roots = append(d.result.Roots, stats)
	st := &walkState{
		root:    r.node,
		visited: map[program.CallSiteID]bool{},
		onStack: map[program.FunctionID]bool{},
		stats:   stats,
	}
	d.logger.Debugf("Detecting interactions of %s from %s", r.node, r.function.Name)
	return d.visitFunction(st, r.function, stats.CallTree)
}

func (d *Detector) visitFunction(st *walkState, f *program.Function, tree *graphutil.Tree[string]) error {
	st.onStack[f.ID] = true
	defer delete(st.onStack, f.ID)

	for _, id := range f.ABBs {
		abb := d.cg.ABB(id)
		if abb == nil {
			continue
		}
		switch abb.CallType {
		case program.Syscall:
			// creations are handled by the discovery of the abstractions
			if abb.SyscallType == osmodel.SyscallCreate {
				continue
			}
			st.stats.Syscalls++
			if err := d.handleSyscall(st, abb, tree); err != nil {
				return err
			}
		case program.Call:
			if err := d.visitCall(st, abb, tree); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Detector) visitCall(st *walkState, abb *program.ABB, tree *graphutil.Tree[string]) error {
	if st.visited[abb.CallSite] {
		return nil
	}
	st.visited[abb.CallSite] = true

	callee := d.cg.Function(abb.Callee)
	if callee == nil {
		return nil
	}
	if st.onStack[callee.ID] {
		d.logger.Tracef("Recursive call to %s from %s cut", callee.Name, d.functionName(abb.Parent))
		return nil
	}
	edge := d.callEdge(abb)
	if edge == nil {
		d.logger.Debugf("No call edge for the call to %s in %s", callee.Name, d.functionName(abb.Parent))
		return nil
	}
	if d.cfg.ExceedsMaxDepth(st.path.Len() + 1) {
		d.logger.Debugf("Max depth reached at call to %s from %s", callee.Name, st.root)
		return nil
	}

	st.stats.Calls++
	st.path.Append(edge.ID)
	err := d.visitFunction(st, callee, tree.AddChild(callee.Name))
	st.path.PopBack()
	return err
}

// callEdge returns the call edge of the ordinary call of abb
func (d *Detector) callEdge(abb *program.ABB) *program.CallEdge {
	for _, e := range d.cg.CallEdgesAt(abb.CallSite) {
		if e.Callee == abb.Callee {
			return e
		}
	}
	return nil
}

func (d *Detector) functionName(id program.FunctionID) string {
	if f := d.cg.Function(id); f != nil {
		return f.Name
	}
	return "?"
}

func (d *Detector) handleSyscall(st *walkState, abb *program.ABB, tree *graphutil.Tree[string]) error {
	args, err := d.resolver.Arguments(abb)
	if err != nil {
		if errors.Is(err, values.ErrCallSiteMismatch) {
			return fatal("value resolution", err)
		}
		d.diagnoseAt(st, abb, tree, UnresolvedHandler, "", err.Error())
		return nil
	}

	if d.cfg.OS == config.OSEK {
		if err := d.schedulerResource(st, abb, args); err != nil {
			return err
		}
	}

	target, err := d.matchTarget(st, abb, args, tree)
	if err != nil || target == nil {
		return err
	}

	call := args.Narrow(abb.CallName, st.path)
	call.Name = specificSyscallName(call)
	e := &osmodel.Edge{
		From:        st.root.ID(),
		To:          target.ID(),
		Name:        call.Name,
		SyscallType: abb.SyscallType,
		ABB:         int(abb.ID),
		Path:        st.path.Key(),
		Call:        call,
	}
	if abb.SyscallType.IsInbound() {
		e.From, e.To = target.ID(), st.root.ID()
	}
	id, err := d.graph.AddEdge(e)
	if err != nil {
		return fatal("edge creation", err)
	}
	st.stats.Edges++
	d.result.Edges = append(d.result.Edges, id)
	d.logger.Tracef("Edge %s -[%s]-> %s", d.graph.NodeByID(e.From), e.Name, d.graph.NodeByID(e.To))
	return nil
}

func (d *Detector) diagnoseAt(st *walkState, abb *program.ABB, tree *graphutil.Tree[string], kind DiagnosticKind,
	handler string, msg string) {
	d.diagnose(Diagnostic{
		Kind:      kind,
		Root:      st.root.Name,
		Function:  d.functionName(abb.Parent),
		Syscall:   abb.CallName,
		Handler:   handler,
		CallChain: funcutil.Map(tree.Ancestors(-1), graphutil.Label[string]),
		Message:   msg,
	})
}

func (d *Detector) diagnose(diag Diagnostic) {
	d.result.Diagnostics = append(d.result.Diagnostics, diag)
	d.logger.Warnf("%s %s", formatutil.Yellow("interaction"), diag)
}

// rtos returns the RTOS singleton
func (d *Detector) rtos() (*osmodel.Node, error) {
	n := d.graph.RTOS()
	if n == nil {
		return nil, fatal("target matching", ErrNoRTOS)
	}
	return n, nil
}

// summarizeCallGraph records the recursive functions and call cycles of the program in the result
func (d *Detector) summarizeCallGraph() {
	iterator := graphutil.NewCallgraphIterator(d.cg)
	name := func(id int64) string { return d.functionName(program.FunctionID(id)) }
	names := map[string]bool{}
	for f := range graphutil.RecursiveFunctions(iterator) {
		names[name(f)] = true
	}
	d.result.RecursiveFunctions = funcutil.SetToOrderedSlice(names)
	for _, c := range graphutil.CallCycles(iterator) {
		d.result.Cycles = append(d.result.Cycles, funcutil.Map(c, name))
	}
}
