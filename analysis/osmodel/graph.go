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

package osmodel

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateNode is returned when adding a node whose name and kind are already in the graph
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode is returned when an edge references a node that is not in the graph
	ErrUnknownNode = errors.New("unknown node")
)

// Graph is the abstraction graph: the arena of nodes and interaction edges. Nodes and edges reference each other by
// index. Removal leaves a tombstone so that indices stay valid.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	nodes []*Node
	edges []*Edge
	index map[Key]NodeID
	// byKind lists the live nodes of each kind in insertion order
	byKind map[Kind][]NodeID
}

// New returns an empty graph
func New() *Graph {
	return &Graph{
		index:  map[Key]NodeID{},
		byKind: map[Kind][]NodeID{},
	}
}

// AddNode adds n to the graph and returns its index. It fails with ErrDuplicateNode if a node with the same name and
// kind exists. n must not belong to another graph.
func (g *Graph) AddNode(n *Node) (NodeID, error) {
	if n == nil || n.Data == nil {
		return NoNode, fmt.Errorf("node without data")
	}
	if id, ok := g.index[n.key]; ok {
		other := g.nodes[id]
		if other.Name == n.Name && other.Kind() == n.Kind() {
			return NoNode, fmt.Errorf("%w: %s", ErrDuplicateNode, n)
		}
		// Distinct identities hashed to the same key
		return NoNode, fmt.Errorf("key collision between %s and %s", other, n)
	}
	id := NodeID(len(g.nodes))
	n.id = id
	n.in = nil
	n.out = nil
	g.nodes = append(g.nodes, n)
	g.index[n.key] = id
	g.byKind[n.Kind()] = append(g.byKind[n.Kind()], id)
	return id, nil
}

// Node returns the node with key k, or nil
func (g *Graph) Node(k Key) *Node {
	if id, ok := g.index[k]; ok {
		return g.nodes[id]
	}
	return nil
}

// Lookup returns the node named name of kind k, or nil
func (g *Graph) Lookup(name string, k Kind) *Node {
	n := g.Node(KeyOf(name, k))
	if n != nil && n.Name == name && n.Kind() == k {
		return n
	}
	return nil
}

// NodeByID returns the node at index id, or nil if the index is invalid or the node was removed
func (g *Graph) NodeByID(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// NodesOfKind returns a snapshot of the nodes of kind k, in insertion order. Adding nodes to the graph does not
// change a snapshot already returned.
func (g *Graph) NodesOfKind(k Kind) []*Node {
	ids := g.byKind[k]
	res := make([]*Node, 0, len(ids))
	for _, id := range ids {
		res = append(res, g.nodes[id])
	}
	return res
}

// Nodes returns a snapshot of all the nodes of the graph, in insertion order
func (g *Graph) Nodes() []*Node {
	res := make([]*Node, 0, len(g.index))
	for _, n := range g.nodes {
		if n != nil {
			res = append(res, n)
		}
	}
	return res
}

// NumNodes returns the number of live nodes
func (g *Graph) NumNodes() int { return len(g.index) }

// RTOS returns the RTOS singleton, or nil if the graph has none
func (g *Graph) RTOS() *Node {
	if ids := g.byKind[KindRTOS]; len(ids) > 0 {
		return g.nodes[ids[0]]
	}
	return nil
}

// AddEdge adds e to the graph and attaches it to its endpoints. It returns the index of the edge.
func (g *Graph) AddEdge(e *Edge) (EdgeID, error) {
	from := g.NodeByID(e.From)
	if from == nil {
		return -1, fmt.Errorf("%w: edge source %d", ErrUnknownNode, e.From)
	}
	to := g.NodeByID(e.To)
	if to == nil {
		return -1, fmt.Errorf("%w: edge target %d", ErrUnknownNode, e.To)
	}
	id := EdgeID(len(g.edges))
	e.id = id
	g.edges = append(g.edges, e)
	from.out = append(from.out, id)
	to.in = append(to.in, id)
	return id, nil
}

// Edge returns the edge at index id, or nil if the index is invalid or the edge was removed
func (g *Graph) Edge(id EdgeID) *Edge {
	if id < 0 || int(id) >= len(g.edges) {
		return nil
	}
	return g.edges[id]
}

// Edges returns a snapshot of all the live edges, in insertion order
func (g *Graph) Edges() []*Edge {
	res := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if e != nil {
			res = append(res, e)
		}
	}
	return res
}

// InEdges returns the live incoming edges of n
func (g *Graph) InEdges(n *Node) []*Edge {
	return g.resolveEdges(n.in)
}

// OutEdges returns the live outgoing edges of n
func (g *Graph) OutEdges(n *Node) []*Edge {
	return g.resolveEdges(n.out)
}

func (g *Graph) resolveEdges(ids []EdgeID) []*Edge {
	res := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		if e := g.Edge(id); e != nil {
			res = append(res, e)
		}
	}
	return res
}

// RemoveNode removes the node at id. The edges referencing the node are not removed; the caller is responsible for
// removing them with RemoveEdge.
func (g *Graph) RemoveNode(id NodeID) bool {
	n := g.NodeByID(id)
	if n == nil {
		return false
	}
	g.nodes[id] = nil
	delete(g.index, n.key)
	ids := g.byKind[n.Kind()]
	for i, x := range ids {
		if x == id {
			// copy so that snapshots are not affected
			g.byKind[n.Kind()] = append(append([]NodeID{}, ids[:i]...), ids[i+1:]...)
			break
		}
	}
	return true
}

// RemoveEdge removes the edge at id and detaches it from its endpoints that are still in the graph
func (g *Graph) RemoveEdge(id EdgeID) bool {
	e := g.Edge(id)
	if e == nil {
		return false
	}
	g.edges[id] = nil
	if from := g.NodeByID(e.From); from != nil {
		from.out = removeID(from.out, id)
	}
	if to := g.NodeByID(e.To); to != nil {
		to.in = removeID(to.in, id)
	}
	return true
}

func removeID(ids []EdgeID, id EdgeID) []EdgeID {
	res := make([]EdgeID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			res = append(res, x)
		}
	}
	return res
}
