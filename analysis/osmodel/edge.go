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

import "fmt"

// EdgeID is the index of an edge in the arena of its Graph. IDs are never reused.
type EdgeID int

// An Edge is an interaction between two abstractions, caused by a system call
type Edge struct {
	id EdgeID

	From NodeID
	To   NodeID

	// Name is the name of the system call, possibly rewritten to the specific operation of a multiplexed call
	Name string

	// SyscallType is the action category of the system call
	SyscallType SyscallType

	// ABB is the index of the block containing the system call in the program model
	ABB int

	// Path is the key of the call path, from the root of the detection, along which the call was reached
	Path string

	// Call holds the arguments of the call, narrowed to Path
	Call CallData
}

// ID returns the index of the edge in its graph
func (e *Edge) ID() EdgeID { return e.id }

func (e *Edge) String() string {
	return fmt.Sprintf("#%d %d -[%s]-> %d", e.id, e.From, e.Name, e.To)
}
