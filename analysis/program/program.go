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

// CallType classifies the content of an ABB
type CallType uint8

const (
	// NoCall marks blocks without any instruction of interest (e.g. the artificial exit block)
	NoCall CallType = iota
	// Computation marks blocks that do not call anything
	Computation
	// Call marks blocks that end with a call to a function of the program
	Call
	// Syscall marks blocks that end with a system call
	Syscall
)

func (c CallType) String() string {
	switch c {
	case NoCall:
		return "no-call"
	case Computation:
		return "computation"
	case Call:
		return "call"
	case Syscall:
		return "syscall"
	}
	return fmt.Sprintf("calltype(%d)", uint8(c))
}

type (
	// FunctionID indexes the functions of a program
	FunctionID int
	// ABBID indexes the atomic basic blocks of a program
	ABBID int
	// CallEdgeID indexes the edges of the call graph
	CallEdgeID int
	// CallSiteID identifies a call instruction
	CallSiteID int
	// ValueID indexes the nodes of the value-flow graph
	ValueID int
)

const (
	// NoFunction is the invalid function index
	NoFunction FunctionID = -1
	// NoCallSite annotates value-flow edges that do not cross a call boundary
	NoCallSite CallSiteID = -1
	// NoValue is the invalid value index
	NoValue ValueID = -1
)

// An ABB is an atomic basic block: the unit of the program carrying at most one call.
type ABB struct {
	ID     ABBID
	Parent FunctionID

	CallType CallType

	// CallName is the name of the called function, for calls and syscalls
	CallName string

	// SyscallType is the action of a system call
	SyscallType osmodel.SyscallType

	// Targets are the kinds of abstraction the system call can address
	Targets []osmodel.Kind

	// HandlerIndex is the index of the argument naming the target of the system call, -1 if there is none
	HandlerIndex int

	// CallSite identifies the call instruction of the block
	CallSite CallSiteID

	// Callee is the called function, for ordinary calls
	Callee FunctionID

	// Args are the value-flow nodes used as arguments of the call
	Args []ValueID

	// Return is the value-flow node of the result of the call, or NoValue
	Return ValueID
}

// HasTarget returns true if the system call of the block can address an abstraction of kind k
func (a *ABB) HasTarget(k osmodel.Kind) bool {
	for _, t := range a.Targets {
		if t == k {
			return true
		}
	}
	return false
}

func (a *ABB) String() string {
	switch a.CallType {
	case Call, Syscall:
		return fmt.Sprintf("ABB%d(%s %s)", a.ID, a.CallType, a.CallName)
	default:
		return fmt.Sprintf("ABB%d(%s)", a.ID, a.CallType)
	}
}

// A Function is a function of the program and the ordered list of its blocks
type Function struct {
	ID     FunctionID
	Name   string
	ABBs   []ABBID
	Params []ValueID
	// Result is the value returned by the function, or NoValue
	Result ValueID
}

// A CallEdge is an edge of the call graph, from the caller to the callee at a specific call site
type CallEdge struct {
	ID     CallEdgeID
	Caller FunctionID
	Callee FunctionID
	Site   CallSiteID
}

// A Value is a node of the value-flow graph. Literal is valid only for constants.
type Value struct {
	ID       ValueID
	Name     string
	Function FunctionID
	Literal  osmodel.Literal
}

// IsConstant returns true if the value is a literal definition
func (v *Value) IsConstant() bool {
	return v.Literal.IsValid()
}

// A ValueEdge is a backward value-flow edge: the value flows from From into the node it is attached to. CallSite is
// NoCallSite unless the flow crosses a call boundary.
type ValueEdge struct {
	From     ValueID
	CallSite CallSiteID
}

// CallGraph is the control-flow view of the analyzed program
type CallGraph interface {
	Function(id FunctionID) *Function
	FunctionByName(name string) *Function
	Functions() []*Function
	ABB(id ABBID) *ABB
	CallEdge(id CallEdgeID) *CallEdge
	// CallEdgesAt returns the call edges of a call site. Well-formed programs have exactly one per call site.
	CallEdgesAt(site CallSiteID) []*CallEdge
}

// ValueFlow is the def-use view of the analyzed program
type ValueFlow interface {
	Value(id ValueID) *Value
	// In returns the definitions flowing into the value
	In(id ValueID) []ValueEdge
}
