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
	"fmt"

	"github.com/awslabs/ar-os-tools/analysis/program"
)

// A Resolver computes the Arguments of calls and caches them per block
type Resolver struct {
	walker        *Walker
	entryFunction string
	cache         map[program.ABBID]*Arguments
}

// NewResolver returns a resolver over the program views provided. entryFunction is recorded in the resolved
// arguments.
func NewResolver(cg program.CallGraph, vf program.ValueFlow, entryFunction string) *Resolver {
	return &Resolver{
		walker:        NewWalker(cg, vf),
		entryFunction: entryFunction,
		cache:         map[program.ABBID]*Arguments{},
	}
}

// Arguments returns the resolved arguments of the call of abb, for all contexts
func (r *Resolver) Arguments(abb *program.ABB) (*Arguments, error) {
	if args, ok := r.cache[abb.ID]; ok {
		return args, nil
	}
	args := &Arguments{EntryFunction: r.entryFunction, Args: make([]*Argument, len(abb.Args))}
	for i, v := range abb.Args {
		a, err := r.walker.Resolve(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, abb.CallName, err)
		}
		args.Args[i] = a
	}
	if abb.Return != program.NoValue {
		a, err := r.walker.Resolve(abb.Return)
		if err != nil {
			return nil, fmt.Errorf("return value of %s: %w", abb.CallName, err)
		}
		args.ReturnValue = a
	}
	r.cache[abb.ID] = args
	return args, nil
}
