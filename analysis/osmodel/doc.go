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

/*
Package osmodel contains the abstraction graph: the OS abstractions of an application (RTOS, tasks, ISRs, timers,
resources, queues, semaphores, events...) and the interactions between them.

Nodes are a closed sum type. The kind of a node is the dynamic type of its Data payload:

	n := osmodel.NewNode("TaskA", &osmodel.TaskData{Function: "TaskA_body", Priority: 2})
	id, err := g.AddNode(n)

Nodes and edges live in arenas owned by the Graph and reference each other by index (NodeID, EdgeID). The identity of
a node is the Key computed from its name and kind; a graph holds at most one node per identity.

The package also defines the values attached to edges: literals resolved for system call arguments (Literal,
ArgValues, CallData), and the vocabulary shared with the program model (Kind, SyscallType).
*/
package osmodel
