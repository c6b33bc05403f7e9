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

// Package program defines the views of the analyzed program consumed by the interaction detection: the call graph,
// made of functions, atomic basic blocks (ABBs) and call edges, and the value-flow graph.
//
// Program is an in-memory implementation of both views. It is built either programmatically, from a program model
// file (see Parse), or from Go code by the frontend package.
package program
