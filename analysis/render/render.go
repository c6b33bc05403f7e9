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

// Package render writes Graphviz representations of the interaction graph and of the call graph of the program
// model, and dumps the SSA form of the loaded Go packages.
package render

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/awslabs/ar-os-tools/analysis/program"
	"github.com/awslabs/ar-os-tools/internal/graphutil"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/types/typeutil"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

// Options controls what is rendered
type Options struct {
	// ExcludedKinds are the kinds of nodes that are not rendered, along with their edges
	ExcludedKinds []osmodel.Kind
	// Arguments adds the resolved arguments of the system calls to the edge labels
	Arguments bool
	// Isolated renders nodes without any edge
	Isolated bool
}

var nodeShapes = map[osmodel.Kind]string{
	osmodel.KindRTOS:      "doubleoctagon",
	osmodel.KindFunction:  "box",
	osmodel.KindTask:      "box",
	osmodel.KindISR:       "box",
	osmodel.KindTimer:     "component",
	osmodel.KindCoRoutine: "box",
	osmodel.KindResource:  "diamond",
	osmodel.KindSemaphore: "diamond",
	osmodel.KindQueue:     "cds",
	osmodel.KindQueueSet:  "folder",
	osmodel.KindEvent:     "ellipse",
	osmodel.KindBuffer:    "cds",
	osmodel.KindCounter:   "note",
	osmodel.KindTaskGroup: "tab",
}

// edgeColor colors the edges by the direction of the interaction
// - inbound interactions (receive, wait) are blue
// - scheduling and creation of abstractions are gray
// - all other interactions have a default color
func edgeColor(t osmodel.SyscallType) string {
	switch {
	case t.IsInbound():
		return "blue"
	case t == osmodel.SyscallCreate, t == osmodel.SyscallSchedule, t == osmodel.SyscallStartScheduler:
		return "gray40"
	}
	return "black"
}

// dotNode is the Graphviz view of an abstraction
type dotNode struct {
	n *osmodel.Node
}

func (d dotNode) ID() int64 { return int64(d.n.ID()) }

func (d dotNode) DOTID() string { return fmt.Sprintf("n%d", d.n.ID()) }

func (d dotNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: d.n.String()},
		{Key: "shape", Value: nodeShapes[d.n.Kind()]},
	}
}

// dotLine is the Graphviz view of an interaction. Several interactions can link the same pair of abstractions.
type dotLine struct {
	from, to dotNode
	e        *osmodel.Edge
	label    string
}

func (l dotLine) From() graph.Node { return l.from }

func (l dotLine) To() graph.Node { return l.to }

func (l dotLine) ReversedLine() graph.Line {
	return dotLine{from: l.to, to: l.from, e: l.e, label: l.label}
}

func (l dotLine) ID() int64 { return int64(l.e.ID()) }

func (l dotLine) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: l.label},
		{Key: "color", Value: edgeColor(l.e.SyscallType)},
	}
}

type attributes []encoding.Attribute

func (a attributes) Attributes() []encoding.Attribute { return a }

// interactionGraph adds the default attributes of the rendering to a multigraph
type interactionGraph struct {
	*multi.DirectedGraph
}

func (interactionGraph) DOTAttributers() (g, n, e encoding.Attributer) {
	return attributes{{Key: "rankdir", Value: "LR"}}, attributes{{Key: "fontname", Value: "Helvetica"}}, attributes{}
}

// BuildInteractionGraph returns the multigraph of the interactions of g that pass the filters of opts
func BuildInteractionGraph(g *osmodel.Graph, opts Options) *multi.DirectedGraph {
	excluded := map[osmodel.Kind]bool{}
	for _, k := range opts.ExcludedKinds {
		excluded[k] = true
	}
	mg := multi.NewDirectedGraph()
	for _, n := range g.Nodes() {
		if excluded[n.Kind()] || (!opts.Isolated && len(n.In())+len(n.Out()) == 0) {
			continue
		}
		mg.AddNode(dotNode{n})
	}
	for _, e := range g.Edges() {
		from, to := g.NodeByID(e.From), g.NodeByID(e.To)
		if from == nil || to == nil || excluded[from.Kind()] || excluded[to.Kind()] {
			continue
		}
		label := e.Name
		if opts.Arguments && len(e.Call.Args) > 0 {
			label = e.Call.String()
		}
		mg.SetLine(dotLine{from: dotNode{from}, to: dotNode{to}, e: e, label: label})
	}
	return mg
}

// WriteInteractionGraph writes a Graphviz representation of the interaction graph g to w
func WriteInteractionGraph(g *osmodel.Graph, opts Options, w io.Writer) error {
	b, err := dot.MarshalMulti(interactionGraph{BuildInteractionGraph(g, opts)}, "interactions", "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal interaction graph: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return nil
}

// InteractionGraphToFile writes the Graphviz representation of g in filename
func InteractionGraphToFile(g *osmodel.Graph, opts Options, filename string) error {
	return toFile(filename, func(w io.Writer) error { return WriteInteractionGraph(g, opts, w) })
}

// WriteCallgraph writes a Graphviz representation of the call graph of the program model to w
func WriteCallgraph(cg program.CallGraph, w io.Writer) error {
	b, err := dot.Marshal(graphutil.NewCallgraphIterator(cg), "callgraph", "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal callgraph: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return nil
}

// CallgraphToFile writes the Graphviz representation of the call graph in filename
func CallgraphToFile(cg program.CallGraph, filename string) error {
	return toFile(filename, func(w io.Writer) error { return WriteCallgraph(cg, w) })
}

func toFile(filename string, write func(w io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	return w.Flush()
}

// OutputSsaPackages writes the ssa representation of the packages provided in dirName.
// Each package is written in its own folder.
func OutputSsaPackages(p *ssa.Program, pkgs []*ssa.Package, dirName string) error {
	if len(pkgs) == 0 {
		return fmt.Errorf("no package to write")
	}
	if err := os.MkdirAll(dirName, 0700); err != nil {
		return fmt.Errorf("could not create directory %s: %v", dirName, err)
	}
	for _, pkg := range pkgs {
		// Make a directory corresponding to the package path minus last elt
		appendDirPath, _ := filepath.Split(pkg.Pkg.Path())
		fullDirPath := dirName
		if appendDirPath != "" {
			fullDirPath = filepath.Join(fullDirPath, appendDirPath)
			if err := os.MkdirAll(fullDirPath, 0700); err != nil {
				return fmt.Errorf("could not create directory %s: %v", fullDirPath, err)
			}
		}
		filename := filepath.Join(fullDirPath, pkg.Pkg.Name()+".ssa")
		if err := toFile(filename, func(w io.Writer) error { return writePackage(p, pkg, w) }); err != nil {
			return err
		}
	}
	return nil
}

func writeAnons(b *bytes.Buffer, f *ssa.Function) {
	for _, anon := range f.AnonFuncs {
		ssa.WriteFunction(b, anon)
		writeAnons(b, anon)
	}
}

func writePackage(p *ssa.Program, pkg *ssa.Package, w io.Writer) error {
	var b bytes.Buffer
	ssa.WritePackage(&b, pkg)
	for _, member := range pkg.Members {
		switch m := member.(type) {
		case *ssa.Function:
			ssa.WriteFunction(&b, m)
			writeAnons(&b, m)
		case *ssa.Global:
			fmt.Fprintf(&b, "%s\n", m.String())
		case *ssa.Type:
			for _, sel := range typeutil.IntuitiveMethodSet(m.Type(), &p.MethodSets) {
				if fn := p.MethodValue(sel); fn != nil {
					ssa.WriteFunction(&b, fn)
				}
			}
		}
	}
	_, err := b.WriteTo(w)
	return err
}
