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
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/awslabs/ar-os-tools/analysis/program"
	"github.com/awslabs/ar-os-tools/internal/funcutil"
	"github.com/minio/highwayhash"
	"golang.org/x/exp/slices"
)

var pathHashKey = []byte("ar-os-tools/values/callpath/v1.0")

// A CallPath is an ordered sequence of call edges identifying an interprocedural context, from the outermost caller
// to the innermost callee. The empty path is the context of values that are not mediated by any call.
//
// Append mutates the path in place; use Copy before appending to a path that is shared between branches.
type CallPath struct {
	edges []program.CallEdgeID
}

// NewCallPath returns the path made of the edges provided, in order
func NewCallPath(edges ...program.CallEdgeID) CallPath {
	return CallPath{edges: append([]program.CallEdgeID(nil), edges...)}
}

// Len returns the number of edges of the path
func (p CallPath) Len() int { return len(p.edges) }

// IsEmpty returns true for the empty path
func (p CallPath) IsEmpty() bool { return len(p.edges) == 0 }

// Edges returns a copy of the edges of the path
func (p CallPath) Edges() []program.CallEdgeID {
	return append([]program.CallEdgeID(nil), p.edges...)
}

// Last returns the innermost edge of the path
func (p CallPath) Last() (program.CallEdgeID, bool) {
	if len(p.edges) == 0 {
		return -1, false
	}
	return p.edges[len(p.edges)-1], true
}

// Append pushes e at the end of the path
func (p *CallPath) Append(e program.CallEdgeID) {
	p.edges = append(p.edges, e)
}

// PopFront removes the outermost edge of the path. It does nothing on the empty path.
func (p *CallPath) PopFront() {
	if len(p.edges) == 0 {
		return
	}
	p.edges = p.edges[1:]
}

// PopBack removes the innermost edge of the path. It does nothing on the empty path.
func (p *CallPath) PopBack() {
	if len(p.edges) == 0 {
		return
	}
	p.edges = p.edges[:len(p.edges)-1]
}

// IsRecursive returns true if an edge appears more than once in the path
func (p CallPath) IsRecursive() bool {
	seen := make(map[program.CallEdgeID]bool, len(p.edges))
	for _, e := range p.edges {
		if seen[e] {
			return true
		}
		seen[e] = true
	}
	return false
}

// Contains returns true if e is an edge of the path
func (p CallPath) Contains(e program.CallEdgeID) bool {
	return slices.Contains(p.edges, e)
}

// Equal returns true if the paths have the same edges in the same order
func (p CallPath) Equal(q CallPath) bool {
	return slices.Equal(p.edges, q.edges)
}

// Hash returns a hash of the sequence of edges. Equal paths have equal hashes.
func (p CallPath) Hash() uint64 {
	h, err := highwayhash.New64(pathHashKey)
	if err != nil {
		// the key has the right size
		panic(err)
	}
	var buf [8]byte
	for _, e := range p.edges {
		binary.LittleEndian.PutUint64(buf[:], uint64(e))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Key returns a string identifying the path, usable as a map key. Equal paths have equal keys.
func (p CallPath) Key() string {
	var b strings.Builder
	for i, e := range p.edges {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(int(e)))
	}
	return b.String()
}

// Copy returns a path with the same edges that does not share storage with p
func (p CallPath) Copy() CallPath {
	return NewCallPath(p.edges...)
}

// Reversed returns a new path with the edges of p in reverse order
func (p CallPath) Reversed() CallPath {
	r := p.Copy()
	funcutil.Reverse(r.edges)
	return r
}

func (p CallPath) String() string {
	return "[" + p.Key() + "]"
}
