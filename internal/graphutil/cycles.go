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

	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph/topo"
)

// CallCycles returns the elementary cycles of the call graph cg, including the functions that call themselves
// directly. Each cycle starts and ends with its smallest function id. The result is sorted.
//
// The cycles are enumerated with Johnson's algorithm ("Finding All The Elementary Circuits of a Directed Graph",
// 1975): for each function s in increasing order, the circuits through s are searched in the strongly connected
// component of s within the functions not smaller than s.
func CallCycles(cg CGraph) [][]int64 {
	f := &cycleFinder{}
	for i, start := range cg.Keys {
		sub := Subgraph(cg, cg.Keys[i:])
		comp := componentOf(sub, start)
		if len(comp) == 1 && !sub.Edges[start][start] {
			continue
		}
		f.reset(Subgraph(sub, comp))
		f.circuit(start, start)
	}
	sort.Slice(f.cycles, func(i, j int) bool { return slices.Compare(f.cycles[i], f.cycles[j]) < 0 })
	return f.cycles
}

// componentOf returns the sorted ids of the strongly connected component of g containing v
func componentOf(g CGraph, v int64) []int64 {
	for _, c := range graph.StrongComponents(g) {
		if !slices.Contains(c, int(v)) {
			continue
		}
		ids := make([]int64, len(c))
		for i, x := range c {
			ids[i] = int64(x)
		}
		slices.Sort(ids)
		return ids
	}
	return []int64{v}
}

type cycleFinder struct {
	g       CGraph
	blocked map[int64]bool
	// waiting[w] are the functions to unblock when w is unblocked
	waiting map[int64]map[int64]bool
	path    []int64
	cycles  [][]int64
}

func (f *cycleFinder) reset(g CGraph) {
	f.g = g
	f.blocked = map[int64]bool{}
	f.waiting = map[int64]map[int64]bool{}
	f.path = f.path[:0]
}

// circuit extends the current path with v and records every cycle back to start. It returns true if one was found.
func (f *cycleFinder) circuit(v int64, start int64) bool {
	found := false
	f.path = append(f.path, v)
	f.blocked[v] = true
	for _, w := range f.g.Successors(v) {
		if w == start {
			f.cycles = append(f.cycles, append(slices.Clone(f.path), start))
			found = true
		} else if !f.blocked[w] && f.circuit(w, start) {
			found = true
		}
	}
	if found {
		f.unblock(v)
	} else {
		for _, w := range f.g.Successors(v) {
			if f.waiting[w] == nil {
				f.waiting[w] = map[int64]bool{}
			}
			f.waiting[w][v] = true
		}
	}
	f.path = f.path[:len(f.path)-1]
	return found
}

func (f *cycleFinder) unblock(u int64) {
	f.blocked[u] = false
	for w := range f.waiting[u] {
		delete(f.waiting[u], w)
		if f.blocked[w] {
			f.unblock(w)
		}
	}
}

// RecursiveFunctions returns the set of functions of cg that can call themselves, directly or through other
// functions
func RecursiveFunctions(cg CGraph) map[int64]bool {
	res := map[int64]bool{}
	for _, scc := range topo.TarjanSCC(cg) {
		if len(scc) > 1 {
			for _, f := range scc {
				res[f.ID()] = true
			}
		} else if len(scc) == 1 && cg.Edges[scc[0].ID()][scc[0].ID()] {
			res[scc[0].ID()] = true
		}
	}
	return res
}
