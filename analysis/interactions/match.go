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

package interactions

import (
	"fmt"

	"github.com/awslabs/ar-os-tools/analysis/config"
	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/awslabs/ar-os-tools/analysis/program"
	"github.com/awslabs/ar-os-tools/analysis/values"
	"github.com/awslabs/ar-os-tools/internal/graphutil"
)

// matchTarget returns the abstraction addressed by the syscall of abb in the current context, or nil if there is
// none. Failures to resolve or match the handler are reported as diagnostics.
//
// The candidate kinds of the syscall other than the RTOS are tried in order. The RTOS singleton is the fallback
// target of the syscalls listing the RTOS kind when none of them matches. The rtos-fallback policy "unmatched" also uses the RTOS
// when the handler names no abstraction at all, and "never" restricts the RTOS kind to syscalls that have no
// handler argument or address the RTOS by name.
func (d *Detector) matchTarget(st *walkState, abb *program.ABB, args *values.Arguments,
	tree *graphutil.Tree[string]) (*osmodel.Node, error) {
	policy := d.cfg.RTOSFallback
	hasHandler := abb.HandlerIndex >= 0

	handler := ""
	if hasHandler {
		var ok bool
		handler, ok = d.resolveHandler(st, abb, args, tree)
		if !ok {
			if policy == config.FallbackUnmatched && abb.HasTarget(osmodel.KindRTOS) {
				return d.rtos()
			}
			return nil, nil
		}
		if policy == config.FallbackUnmatched && !d.handlerExists(handler) {
			return d.rtos()
		}
	}

	if hasHandler {
		for _, k := range abb.Targets {
			if k == osmodel.KindRTOS {
				continue
			}
			for _, n := range d.graph.NodesOfKind(k) {
				if n.HandlerName == handler {
					return n, nil
				}
			}
		}
	}
	if abb.HasTarget(osmodel.KindRTOS) &&
		(policy != config.FallbackNever || !hasHandler || handler == osmodel.RTOSName) {
		return d.rtos()
	}

	d.diagnoseAt(st, abb, tree, NoMatchingTarget, handler,
		fmt.Sprintf("no abstraction of kind %v", abb.Targets))
	return nil, nil
}

// resolveHandler returns the handler name of the syscall in the current context and true, or false if the handler
// argument is not a string in that context
func (d *Detector) resolveHandler(st *walkState, abb *program.ABB, args *values.Arguments,
	tree *graphutil.Tree[string]) (string, bool) {
	arg := args.Get(abb.HandlerIndex)
	if arg == nil {
		d.diagnoseAt(st, abb, tree, UnresolvedHandler, "",
			fmt.Sprintf("call has no argument %d", abb.HandlerIndex))
		return "", false
	}
	vals, err := arg.Values(st.path)
	if err != nil {
		d.diagnoseAt(st, abb, tree, UnresolvedHandler, "", err.Error())
		return "", false
	}
	handler, ok := vals[0].AsString()
	if !ok {
		d.diagnoseAt(st, abb, tree, NonStringHandler, "", fmt.Sprintf("handler argument is %s", vals[0]))
		return "", false
	}
	if len(vals) > 1 {
		d.diagnoseAt(st, abb, tree, AmbiguousHandler, handler,
			fmt.Sprintf("%d values reach the handler argument", len(vals)))
	}
	return handler, true
}

// handlerExists returns true if some abstraction of the graph has the handler name provided
func (d *Detector) handlerExists(handler string) bool {
	for _, n := range d.graph.Nodes() {
		if n.HandlerName == handler {
			return true
		}
	}
	return false
}

// schedulerResource adds the scheduler resource to the graph the first time a receive syscall addresses it. The
// OSEK scheduler can be taken as a resource without being declared.
func (d *Detector) schedulerResource(st *walkState, abb *program.ABB, args *values.Arguments) error {
	if abb.SyscallType != osmodel.SyscallReceive || !abb.HasTarget(osmodel.KindResource) || abb.HandlerIndex < 0 {
		return nil
	}
	name := config.SchedulerResourceName
	if d.graph.Lookup(name, osmodel.KindResource) != nil {
		return nil
	}
	arg := args.Get(abb.HandlerIndex)
	if arg == nil {
		return nil
	}
	v, err := arg.Value(st.path)
	if err != nil {
		return nil
	}
	if s, ok := v.AsString(); !ok || s != name {
		return nil
	}
	res := osmodel.NewNode(name, &osmodel.ResourceData{
		Type:     osmodel.BinaryMutex,
		Creation: osmodel.CreatedAfterScheduler,
	})
	if _, err := d.graph.AddNode(res); err != nil {
		return fatal("scheduler resource creation", err)
	}
	d.logger.Debugf("Added scheduler resource %s", name)
	return nil
}
