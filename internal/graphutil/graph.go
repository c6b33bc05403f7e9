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

package graphutil

import (
	"sort"

	"github.com/awslabs/ar-os-tools/analysis/program"
	"gonum.org/v1/gonum/graph"
)

// CGraph is a view of the call graph of a program that works with existing graph libraries. It implements
// yourbasic's graph.Iterator and Gonum's graph.Directed. Node ids are function ids.
type CGraph struct {
	// The order of the graph
	order int

	// Program is the call graph the CGraph was constructed from
	Program program.CallGraph

	// IDMap maps from node IDs to CNodes
	IDMap map[int64]CNode

	// Keys are all the node IDs, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means that function x calls function y
	Edges map[int64]map[int64]bool
}

// NewCallgraphIterator returns the view of the call graph of cg. The edges are the ordinary calls of the blocks of
// each function.
func NewCallgraphIterator(cg program.CallGraph) CGraph {
	functions := cg.Functions()
	n := len(functions)
	idmap := make(map[int64]CNode, n)
	edges := make(map[int64]map[int64]bool, n)
	keys := make([]int64, 0, n)
	order := 0
	for _, f := range functions {
		id := int64(f.ID)
		keys = append(keys, id)
		if int(id) >= order {
			order = int(id) + 1
		}
		idmap[id] = CNode{f}
		edges[id] = map[int64]bool{}
		for _, abbID := range f.ABBs {
			abb := cg.ABB(abbID)
			if abb != nil && abb.CallType == program.Call && abb.Callee != program.NoFunction {
				edges[id][int64(abb.Callee)] = true
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return CGraph{
		order:   order,
		Program: cg,
		IDMap:   idmap,
		Edges:   edges,
		Keys:    keys,
	}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The subgraph's order, Program and IDMap are the same as in origin, meaning that node indices will stay consistent
// across subgraphs.
func Subgraph(original CGraph, include []int64) CGraph {
	keep := make(map[int64]bool, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	keys := make([]int64, len(include))

	for j, i := range include {
		keys[j] = i
		keep[i] = true
	}

	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if keep[e] {
				edges[i][e] = true
			}
		}
	}

	return CGraph{
		order:   original.Order(),
		Program: original.Program,
		IDMap:   original.IDMap,
		Edges:   edges,
		Keys:    keys,
	}
}

// Order implements the order of the graph.Iterator interface for the CGraph
func (c CGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the CGraph
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	succ, ok := c.Edges[int64(v)]
	if !ok {
		return false
	}
	for _, w := range sortedKeys(succ) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// Successors returns the ids of the functions called by v, sorted
func (c CGraph) Successors(v int64) []int64 {
	return sortedKeys(c.Edges[v])
}

func sortedKeys(m map[int64]bool) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface
func (c CGraph) Node(v int64) graph.Node {
	if n, ok := c.IDMap[v]; ok {
		return n
	}
	return nil
}

// Nodes returns the set of nodes in the graph
func (c CGraph) Nodes() graph.Nodes {
	return &NodeSet{
		nodes: c.IDMap,
		ids:   append([]int64(nil), c.Keys...),
		cur:   -1,
	}
}

// From returns the set of nodes called by the id
func (c CGraph) From(id int64) graph.Nodes {
	return &NodeSet{
		nodes: c.IDMap,
		ids:   sortedKeys(c.Edges[id]),
		cur:   -1,
	}
}

// To returns the set of nodes calling the id
func (c CGraph) To(id int64) graph.Nodes {
	var keys []int64
	for _, k := range c.Keys {
		if c.Edges[k][id] {
			keys = append(keys, k)
		}
	}
	return &NodeSet{
		nodes: c.IDMap,
		ids:   keys,
		cur:   -1,
	}
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c CGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.Edges[xid][yid] || c.Edges[yid][xid]
}

// HasEdgeFromTo returns whether xid calls yid
func (c CGraph) HasEdgeFromTo(xid, yid int64) bool {
	return c.Edges[xid][yid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c CGraph) Edge(uid, vid int64) graph.Edge {
	if c.Edges[uid][vid] {
		return CEdge{from: c.IDMap[uid], to: c.IDMap[vid]}
	}
	return nil
}

// *************** Nodes implementation **********************

// CNode is a wrapper around a *program.Function that implements the graph.Node interface
type CNode struct {
	Function *program.Function
}

// ID returns the id of the node
func (n CNode) ID() int64 {
	return int64(n.Function.ID)
}

// DOTID returns the name of the function, used as node identifier when the graph is marshalled to Graphviz
func (n CNode) DOTID() string {
	return n.String()
}

func (n CNode) String() string {
	if n.Function == nil {
		return ""
	}
	return n.Function.Name
}

// NodeSet implements the graph.Nodes interface, an iterator over a set of nodes
type NodeSet struct {
	// nodes is the set of nodes in the iterator
	nodes map[int64]CNode

	// ids is the set of node ids in the iterator
	ids []int64

	// cur is the current index of the iterator. The current node is nodes[ids[cur]]. The iterator starts before the
	// first node.
	cur int
}

// Next moves the current node to the next, and returns true if such a node exists. Otherwise, returns false
// and the current node has not changed.
func (ns *NodeSet) Next() bool {
	if ns.cur < len(ns.ids)-1 {
		ns.cur++
		return true
	}
	return false
}

// Len returns the number of nodes remaining in the iterator
func (ns *NodeSet) Len() int {
	return len(ns.ids) - ns.cur - 1
}

// Reset resets the iterator to its start
func (ns *NodeSet) Reset() {
	ns.cur = -1
}

// Node return the current node in the set
func (ns *NodeSet) Node() graph.Node {
	if ns.cur < 0 || ns.cur >= len(ns.ids) {
		return nil
	}
	return ns.nodes[ns.ids[ns.cur]]
}

// *************** Edge implementation **********************

// CEdge implements the graph.Edge interface
type CEdge struct {
	from CNode
	to   CNode
}

// From returns the origin of the edge
func (e CEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e CEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e CEdge) ReversedEdge() graph.Edge {
	return CEdge{from: e.to, to: e.from}
}
