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
Package interactions detects the interactions between the OS abstractions of an application and records them as
edges of the abstraction graph.

The Detector walks the call graph from the entry function of the program and from the function of every task, ISR and
timer. Each system call met is matched against the abstractions of the graph using the value of its handler argument
in the calling context; receive and wait calls produce an edge from the target to the caller's abstraction, all other
calls an edge from the caller's abstraction to the target.

Problems specific to one call are reported as Diagnostic values and the edge is left out. Problems that invalidate
the whole graph abort the detection with a *FatalError.
*/
package interactions
