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

package funcutil

import (
	"strconv"
	"testing"

	"golang.org/x/exp/slices"
)

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, strconv.Itoa)
	if !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Errorf("unexpected %v", got)
	}
	if len(Map[int, string](nil, strconv.Itoa)) != 0 {
		t.Errorf("map of nil should be empty")
	}
}

func TestSetToOrderedSlice(t *testing.T) {
	got := SetToOrderedSlice(map[string]bool{"b": true, "a": true, "c": false})
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("unexpected %v", got)
	}
}

func TestReverse(t *testing.T) {
	for _, c := range []struct{ in, out []int }{
		{nil, nil},
		{[]int{1}, []int{1}},
		{[]int{1, 2}, []int{2, 1}},
		{[]int{1, 2, 3}, []int{3, 2, 1}},
	} {
		Reverse(c.in)
		if !slices.Equal(c.in, c.out) {
			t.Errorf("expected %v, got %v", c.out, c.in)
		}
	}
}
