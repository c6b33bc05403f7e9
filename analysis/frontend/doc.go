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

// Package frontend builds the inputs of the interaction detection from a Go application: the graph of OS abstractions
// declared in the configuration, and the program model lowered from the SSA form of the application packages.
//
// The OS API is expected to be visible as ordinary Go functions (typically stubs or cgo wrappers) whose names match
// the system call catalog of the configuration.
package frontend
