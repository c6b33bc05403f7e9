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

// Package values resolves the literal values of call arguments in a call-path sensitive way.
//
// A CallPath is an interprocedural context. An Argument maps contexts to literals and answers lookups with the most
// specific context it knows. The Walker fills Arguments by walking the value-flow graph backwards from a use, and the
// Resolver caches the Arguments of each call.
package values
