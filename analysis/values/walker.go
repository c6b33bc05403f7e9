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

	"github.com/awslabs/ar-os-tools/analysis/program"
)

// ErrCallSiteMismatch is returned when the value-flow graph crosses a call site that does not correspond to exactly
// one call-graph edge. The two graphs disagree and no result computed from them can be trusted.
var ErrCallSiteMismatch = errors.New("call site does not match exactly one call edge")

// A Walker reconstructs the literal values reaching a value use, and the call paths along which they reach it, by
// walking the value-flow graph backwards.
type Walker struct {
	cg program.CallGraph
	vf program.ValueFlow
}

// NewWalker returns a walker over the graphs provided. The call sites annotating value-flow edges must be call
// sites of the call graph.
func NewWalker(cg program.CallGraph, vf program.ValueFlow) *Walker {
	return &Walker{cg: cg, vf: vf}
}

type walkItem struct {
	node program.ValueID
	// context is the sequence of call edges crossed from a callee up to a caller, innermost first
	context CallPath
	// entered is the sequence of call edges crossed from a call result down into the returned value of the callee
	entered CallPath
}

func (it walkItem) key() string {
	return fmt.Sprintf("%d|%s|%s", it.node, it.context.Key(), it.entered.Key())
}

// Resolve returns the argument populated with every literal reaching use, keyed by the call path, outermost call
// first, along which it reaches use.
//
// Leaving a function through one of its parameters extends the path with the call edge of the caller. Entering a
// callee through its returned value does not: the matching parameter flow back to the same call site is not part
// of the context of the use. Recursive paths are cut.
func (w *Walker) Resolve(use program.ValueID) (*Argument, error) {
	arg := NewArgument()
	start := w.vf.Value(use)
	if start == nil {
		return nil, fmt.Errorf("unknown value %d", use)
	}
	if start.IsConstant() {
		arg.SetValue(start.Literal)
		return arg, nil
	}

	visited := map[string]bool{}
	stack := []walkItem{{node: use}}
	visited[stack[0].key()] = true

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, in := range w.vf.In(cur.node) {
			next := walkItem{node: in.From, context: cur.context, entered: cur.entered}
			if in.CallSite != program.NoCallSite {
				edge, err := w.callEdge(in.CallSite)
				if err != nil {
					return nil, err
				}
				if w.isParam(edge.Callee, cur.node) {
					if last, ok := cur.entered.Last(); ok {
						if last != edge.ID {
							// returning to a caller other than the one the value was entered from
							continue
						}
						next.entered = cur.entered.Copy()
						next.entered.PopBack()
					} else {
						next.context = cur.context.Copy()
						next.context.Append(edge.ID)
						if next.context.IsRecursive() {
							continue
						}
					}
				} else {
					next.entered = cur.entered.Copy()
					next.entered.Append(edge.ID)
					if next.entered.IsRecursive() {
						continue
					}
				}
			}

			pred := w.vf.Value(in.From)
			if pred == nil {
				return nil, fmt.Errorf("value-flow edge from unknown value %d", in.From)
			}
			if pred.IsConstant() {
				arg.AddVariant(next.context.Reversed(), pred.Literal)
				continue
			}
			if k := next.key(); !visited[k] {
				visited[k] = true
				stack = append(stack, next)
			}
		}
	}
	return arg, nil
}

func (w *Walker) isParam(f program.FunctionID, v program.ValueID) bool {
	fn := w.cg.Function(f)
	if fn == nil {
		return false
	}
	for _, p := range fn.Params {
		if p == v {
			return true
		}
	}
	return false
}

func (w *Walker) callEdge(site program.CallSiteID) (*program.CallEdge, error) {
	edges := w.cg.CallEdgesAt(site)
	if len(edges) != 1 {
		return nil, fmt.Errorf("%w: call site %d has %d call edges", ErrCallSiteMismatch, site, len(edges))
	}
	return edges[0], nil
}
