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

	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/awslabs/ar-os-tools/analysis/program"
)

// queueSetMemberKinds are the kinds of abstraction that can be added to a queue set, in lookup order
var queueSetMemberKinds = []osmodel.Kind{osmodel.KindResource, osmodel.KindQueue, osmodel.KindSemaphore}

// populateQueueSets adds to each queue set the abstractions added to it by the "add" syscalls targeting it. The
// member is the first argument of the call.
func (d *Detector) populateQueueSets() {
	for _, qs := range d.graph.NodesOfKind(osmodel.KindQueueSet) {
		data, ok := qs.Data.(*osmodel.QueueSetData)
		if !ok {
			continue
		}
		for _, e := range d.graph.InEdges(qs) {
			if e.SyscallType != osmodel.SyscallAdd {
				continue
			}
			diag := Diagnostic{Kind: QueueSetMember, Root: qs.Name, Syscall: e.Name}
			v, ok := e.Call.Arg(0).Single()
			if !ok {
				diag.Message = fmt.Sprintf("member is not a single value: %s", e.Call.Arg(0))
				d.diagnose(diag)
				continue
			}
			name, ok := v.AsString()
			if !ok {
				diag.Message = fmt.Sprintf("member is not a string: %s", v)
				d.diagnose(diag)
				continue
			}
			member := d.lookupAny(name, queueSetMemberKinds)
			if member == nil {
				diag.Handler = name
				diag.Message = "element could not be added to queue set"
				d.diagnose(diag)
				continue
			}
			data.AddMember(member.ID())
			d.result.QueueSetMembers++
		}
	}
}

func (d *Detector) lookupAny(name string, kinds []osmodel.Kind) *osmodel.Node {
	for _, k := range kinds {
		if n := d.graph.Lookup(name, k); n != nil {
			return n
		}
	}
	return nil
}

// extractAppMode stores in the RTOS the application mode the scheduler is started in: the argument of the
// start-scheduler syscalls of the entry function. All the values reaching that argument, along every call path,
// must be the same string.
func (d *Detector) extractAppMode() error {
	rtos, err := d.rtos()
	if err != nil {
		return err
	}
	appmode := ""
	for _, e := range d.graph.OutEdges(d.entry) {
		if e.SyscallType != osmodel.SyscallStartScheduler {
			continue
		}
		abb := d.cg.ABB(program.ABBID(e.ABB))
		if abb == nil || len(abb.Args) != 1 {
			return fatal("appmode extraction",
				fmt.Errorf("%w: %s does not have exactly one argument", ErrAmbiguousAppMode, e.Name))
		}
		args, err := d.resolver.Arguments(abb)
		if err != nil {
			return fatal("appmode extraction", err)
		}
		all := args.Get(0).All()
		if len(all) != 1 {
			return fatal("appmode extraction",
				fmt.Errorf("%w: %d values reach the argument of %s", ErrAmbiguousAppMode, len(all), e.Name))
		}
		mode, ok := all[0].AsString()
		if !ok {
			return fatal("appmode extraction",
				fmt.Errorf("%w: argument of %s is %s", ErrAmbiguousAppMode, e.Name, all[0]))
		}
		if appmode != "" && appmode != mode {
			return fatal("appmode extraction",
				fmt.Errorf("%w: %s and %s", ErrAmbiguousAppMode, appmode, mode))
		}
		appmode = mode
	}

	if appmode == "" {
		d.logger.Warnf("Application mode could not be determined: no start-scheduler call in %s", d.entry.Name)
		return nil
	}
	if data, ok := rtos.Data.(*osmodel.RTOSData); ok {
		data.AppMode = appmode
	}
	d.result.AppMode = appmode
	return nil
}
