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

package program

import (
	"fmt"

	"github.com/awslabs/ar-os-tools/analysis/osmodel"
)

// Program is an in-memory program model implementing both CallGraph and ValueFlow
type Program struct {
	functions []*Function
	byName    map[string]FunctionID
	abbs      []*ABB
	edges     []*CallEdge
	edgesAt   map[CallSiteID][]CallEdgeID
	values    []*Value
	flows     map[ValueID][]ValueEdge
	nextSite  CallSiteID
	// results records, per callee, the result values of the calls to the callee
	results map[FunctionID][]callResult
}

type callResult struct {
	site  CallSiteID
	value ValueID
}

var _ CallGraph = (*Program)(nil)
var _ ValueFlow = (*Program)(nil)

// New returns an empty program
func New() *Program {
	return &Program{
		byName:  map[string]FunctionID{},
		edgesAt: map[CallSiteID][]CallEdgeID{},
		flows:   map[ValueID][]ValueEdge{},
		results: map[FunctionID][]callResult{},
	}
}

// Function returns the function at id, or nil
func (p *Program) Function(id FunctionID) *Function {
	if id < 0 || int(id) >= len(p.functions) {
		return nil
	}
	return p.functions[id]
}

// FunctionByName returns the function named name, or nil
func (p *Program) FunctionByName(name string) *Function {
	if id, ok := p.byName[name]; ok {
		return p.functions[id]
	}
	return nil
}

// Functions returns all the functions, in insertion order
func (p *Program) Functions() []*Function {
	return p.functions
}

// ABB returns the block at id, or nil
func (p *Program) ABB(id ABBID) *ABB {
	if id < 0 || int(id) >= len(p.abbs) {
		return nil
	}
	return p.abbs[id]
}

// NumABBs returns the number of blocks of the program
func (p *Program) NumABBs() int { return len(p.abbs) }

// CallEdge returns the call edge at id, or nil
func (p *Program) CallEdge(id CallEdgeID) *CallEdge {
	if id < 0 || int(id) >= len(p.edges) {
		return nil
	}
	return p.edges[id]
}

// CallEdges returns all the call edges, in insertion order
func (p *Program) CallEdges() []*CallEdge {
	return p.edges
}

// CallEdgesAt returns the call edges of site
func (p *Program) CallEdgesAt(site CallSiteID) []*CallEdge {
	ids := p.edgesAt[site]
	res := make([]*CallEdge, len(ids))
	for i, id := range ids {
		res[i] = p.edges[id]
	}
	return res
}

// Value returns the value at id, or nil
func (p *Program) Value(id ValueID) *Value {
	if id < 0 || int(id) >= len(p.values) {
		return nil
	}
	return p.values[id]
}

// In returns the value-flow edges into id
func (p *Program) In(id ValueID) []ValueEdge {
	return p.flows[id]
}

// AddFunction adds a function without blocks. Function names are unique.
func (p *Program) AddFunction(name string) (*Function, error) {
	if _, ok := p.byName[name]; ok {
		return nil, fmt.Errorf("duplicate function %s", name)
	}
	f := &Function{ID: FunctionID(len(p.functions)), Name: name, Result: NoValue}
	p.functions = append(p.functions, f)
	p.byName[name] = f.ID
	return f, nil
}

// AddParam adds a parameter to f and returns its value
func (p *Program) AddParam(f FunctionID, name string) ValueID {
	v := p.AddValue(f, name)
	fn := p.functions[f]
	fn.Params = append(fn.Params, v)
	return v
}

// AddValue adds a value defined in f
func (p *Program) AddValue(f FunctionID, name string) ValueID {
	v := &Value{ID: ValueID(len(p.values)), Name: name, Function: f}
	p.values = append(p.values, v)
	return v.ID
}

// AddConstant adds a literal definition
func (p *Program) AddConstant(lit osmodel.Literal) ValueID {
	v := &Value{ID: ValueID(len(p.values)), Name: lit.String(), Function: NoFunction, Literal: lit}
	p.values = append(p.values, v)
	return v.ID
}

// AddFlow records that from flows into to, through the call site provided or NoCallSite
func (p *Program) AddFlow(to, from ValueID, site CallSiteID) {
	p.flows[to] = append(p.flows[to], ValueEdge{From: from, CallSite: site})
}

// SetResult sets the value returned by f. The results of the calls to f already in the program receive a flow from
// the returned value.
func (p *Program) SetResult(f FunctionID, v ValueID) {
	p.functions[f].Result = v
	for _, r := range p.results[f] {
		p.AddFlow(r.value, v, r.site)
	}
}

// NewCallSite returns a fresh call site identifier
func (p *Program) NewCallSite() CallSiteID {
	s := p.nextSite
	p.nextSite++
	return s
}

// AddCallEdge adds an edge to the call graph. AddCall already adds the edge of the call it creates.
func (p *Program) AddCallEdge(caller, callee FunctionID, site CallSiteID) *CallEdge {
	e := &CallEdge{ID: CallEdgeID(len(p.edges)), Caller: caller, Callee: callee, Site: site}
	p.edges = append(p.edges, e)
	p.edgesAt[site] = append(p.edgesAt[site], e.ID)
	return e
}

func (p *Program) addABB(f FunctionID, abb *ABB) *ABB {
	abb.ID = ABBID(len(p.abbs))
	abb.Parent = f
	p.abbs = append(p.abbs, abb)
	fn := p.functions[f]
	fn.ABBs = append(fn.ABBs, abb.ID)
	return abb
}

// AddComputation appends a block without calls to f
func (p *Program) AddComputation(f FunctionID) *ABB {
	return p.addABB(f, &ABB{
		CallType:     Computation,
		HandlerIndex: -1,
		CallSite:     NoCallSite,
		Callee:       NoFunction,
		Return:       NoValue,
	})
}

// AddCall appends a call from caller to callee to the caller, with the arguments provided. The arguments flow into
// the parameters of the callee across the new call site. If withResult is set, the block gets a result value that
// receives the value returned by the callee.
func (p *Program) AddCall(caller, callee FunctionID, args []ValueID, withResult bool) (*ABB, error) {
	target := p.Function(callee)
	if target == nil {
		return nil, fmt.Errorf("call to unknown function %d", callee)
	}
	if len(args) > len(target.Params) {
		return nil, fmt.Errorf("call to %s with %d arguments, expected at most %d",
			target.Name, len(args), len(target.Params))
	}
	site := p.NewCallSite()
	p.AddCallEdge(caller, callee, site)
	for i, a := range args {
		p.AddFlow(target.Params[i], a, site)
	}
	abb := p.addABB(caller, &ABB{
		CallType:     Call,
		CallName:     target.Name,
		HandlerIndex: -1,
		CallSite:     site,
		Callee:       callee,
		Args:         args,
		Return:       NoValue,
	})
	if withResult {
		abb.Return = p.AddValue(caller, target.Name+"()")
		p.results[callee] = append(p.results[callee], callResult{site: site, value: abb.Return})
		if target.Result != NoValue {
			p.AddFlow(abb.Return, target.Result, site)
		}
	}
	return abb, nil
}

// SyscallInfo is the classification of a system call
type SyscallInfo struct {
	Type         osmodel.SyscallType
	Targets      []osmodel.Kind
	HandlerIndex int
}

// AddSyscall appends a system call to f
func (p *Program) AddSyscall(f FunctionID, name string, info SyscallInfo, args []ValueID, withResult bool) *ABB {
	abb := p.addABB(f, &ABB{
		CallType:     Syscall,
		CallName:     name,
		SyscallType:  info.Type,
		Targets:      info.Targets,
		HandlerIndex: info.HandlerIndex,
		CallSite:     p.NewCallSite(),
		Callee:       NoFunction,
		Args:         args,
		Return:       NoValue,
	})
	if withResult {
		abb.Return = p.AddValue(f, name+"()")
	}
	return abb
}

// AddExit appends the artificial exit block to f
func (p *Program) AddExit(f FunctionID) *ABB {
	return p.addABB(f, &ABB{
		CallType:     NoCall,
		HandlerIndex: -1,
		CallSite:     NoCallSite,
		Callee:       NoFunction,
		Return:       NoValue,
	})
}
