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
	"strings"
	"testing"
)

func TestTreeAncestors(t *testing.T) {
	root := NewTree("main")
	a := root.AddChild("a")
	b := a.AddChild("b")
	root.AddChild("c")
	chain := b.Ancestors(-1)
	if len(chain) != 3 || Label(chain[0]) != "main" || Label(chain[2]) != "b" {
		t.Errorf("unexpected ancestors %v", chain)
	}
	if last := b.Ancestors(2); len(last) != 2 || Label(last[0]) != "a" {
		t.Errorf("unexpected 2 closest ancestors")
	}
	if len(root.Children) != 2 {
		t.Errorf("root should have 2 children")
	}
}

func TestTreeWalk(t *testing.T) {
	root := NewTree("main")
	a := root.AddChild("a")
	a.AddChild("b")
	root.AddChild("c")
	var lines []string
	root.Walk(func(depth int, n *Tree[string]) {
		lines = append(lines, strings.Repeat(" ", depth)+n.Label)
	})
	if got := strings.Join(lines, ","); got != "main, a,  b, c" {
		t.Errorf("unexpected walk order %q", got)
	}
	if root.Size() != 4 || a.Size() != 2 {
		t.Errorf("unexpected sizes %d %d", root.Size(), a.Size())
	}
}
