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
	"fmt"
	"io"
	"strings"

	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/awslabs/ar-os-tools/internal/graphutil"
)

// Result summarizes a detection
type Result struct {
	// Edges are the edges added to the graph, in creation order
	Edges []osmodel.EdgeID

	// Diagnostics are the recoverable problems met. A detection without diagnostics is complete.
	Diagnostics []Diagnostic

	// Roots holds the statistics of each entry point, in walk order
	Roots []*RootStats

	// AppMode is the application mode found by the OSEK finishing pass
	AppMode string

	// QueueSetMembers is the number of members added to queue sets
	QueueSetMembers int

	// RecursiveFunctions are the names of the functions of the program that can call themselves
	RecursiveFunctions []string

	// Cycles are the elementary cycles of the call graph, as function names
	Cycles [][]string
}

// RootStats are the statistics of the walk from one entry point
type RootStats struct {
	Name     string
	Kind     osmodel.Kind
	Function string
	// Calls is the number of calls followed
	Calls int
	// Syscalls is the number of syscalls met, creations excluded
	Syscalls int
	// Edges is the number of edges created
	Edges int
	// CallTree is the tree of the calls followed
	CallTree *graphutil.Tree[string]
}

// Complete returns true if the detection did not report any diagnostic
func (r *Result) Complete() bool {
	return len(r.Diagnostics) == 0
}

// WriteReport writes a textual report of the detection and of the edges of g to w
func (r *Result) WriteReport(w io.Writer, g *osmodel.Graph) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Entry points: %d\n", len(r.Roots))
	for _, root := range r.Roots {
		fmt.Fprintf(&b, "  %s %s (%s): %d calls, %d syscalls, %d edges\n",
			root.Kind, root.Name, root.Function, root.Calls, root.Syscalls, root.Edges)
	}
	fmt.Fprintf(&b, "Interactions: %d\n", len(r.Edges))
	for _, id := range r.Edges {
		e := g.Edge(id)
		if e == nil {
			continue
		}
		fmt.Fprintf(&b, "  %s -[%s]-> %s %s\n", g.NodeByID(e.From), e.Name, g.NodeByID(e.To), e.Call)
	}
	if r.AppMode != "" {
		fmt.Fprintf(&b, "Application mode: %s\n", r.AppMode)
	}
	if r.QueueSetMembers > 0 {
		fmt.Fprintf(&b, "Queue set members: %d\n", r.QueueSetMembers)
	}
	if len(r.RecursiveFunctions) > 0 {
		fmt.Fprintf(&b, "Recursive functions: %s\n", strings.Join(r.RecursiveFunctions, ", "))
		for _, c := range r.Cycles {
			fmt.Fprintf(&b, "  %s\n", strings.Join(c, " -> "))
		}
	}
	fmt.Fprintf(&b, "Diagnostics: %d\n", len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		fmt.Fprintf(&b, "  %s\n", d)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCallTrees writes the tree of the calls followed from each entry point to w
func (r *Result) WriteCallTrees(w io.Writer) error {
	var b strings.Builder
	for _, root := range r.Roots {
		if root.CallTree == nil {
			continue
		}
		fmt.Fprintf(&b, "%s %s (%d functions):\n", root.Kind, root.Name, root.CallTree.Size())
		root.CallTree.Walk(func(depth int, n *graphutil.Tree[string]) {
			fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", depth+1), n.Label)
		})
	}
	_, err := io.WriteString(w, b.String())
	return err
}
