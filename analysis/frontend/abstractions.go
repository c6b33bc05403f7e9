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

package frontend

import (
	"fmt"

	"github.com/awslabs/ar-os-tools/analysis/config"
	"github.com/awslabs/ar-os-tools/analysis/osmodel"
)

// Abstractions returns the graph of the OS abstractions declared in the instances of cfg. The graph always contains
// exactly one RTOS node; an instance of kind "rtos" names it, otherwise it is named "RTOS".
func Abstractions(cfg *config.Config) (*osmodel.Graph, error) {
	g := osmodel.New()
	hasRTOS := false
	for _, inst := range cfg.Instances {
		k, err := osmodel.ParseKind(inst.Kind)
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", inst.Name, err)
		}
		if k == osmodel.KindRTOS {
			if hasRTOS {
				return nil, fmt.Errorf("instance %s: more than one rtos instance", inst.Name)
			}
			hasRTOS = true
		}
		n := osmodel.NewNode(inst.Name, instanceData(cfg, k, inst))
		if inst.Handler != "" && k != osmodel.KindRTOS {
			n.HandlerName = inst.Handler
		}
		if _, err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	if !hasRTOS {
		rtos := osmodel.NewNode(osmodel.RTOSName, &osmodel.RTOSData{Variant: string(cfg.OS)})
		if _, err := g.AddNode(rtos); err != nil {
			return nil, err
		}
	}
	return g, nil
}

//gocyclo:ignore
func instanceData(cfg *config.Config, k osmodel.Kind, inst config.InstanceSpec) osmodel.Data {
	switch k {
	case osmodel.KindRTOS:
		return &osmodel.RTOSData{Variant: string(cfg.OS)}
	case osmodel.KindTask:
		return &osmodel.TaskData{Function: inst.Function, Priority: inst.Priority, Autostart: inst.Autostart}
	case osmodel.KindISR:
		return &osmodel.ISRData{Function: inst.Function, Category: inst.Category, Priority: inst.Priority}
	case osmodel.KindTimer:
		return &osmodel.TimerData{Callback: inst.Function, Period: inst.Period, AutoReload: inst.AutoReload}
	case osmodel.KindCoRoutine:
		return &osmodel.CoRoutineData{Function: inst.Function, Priority: inst.Priority}
	case osmodel.KindResource:
		r := &osmodel.ResourceData{Type: osmodel.BinaryMutex, Creation: osmodel.CreatedBeforeScheduler}
		if inst.Type == "recursive" {
			r.Type = osmodel.RecursiveMutex
		}
		return r
	case osmodel.KindSemaphore:
		return &osmodel.SemaphoreData{
			Counting:     inst.Type == "counting",
			MaxCount:     inst.MaxCount,
			InitialCount: inst.Initial,
		}
	case osmodel.KindQueue:
		return &osmodel.QueueData{Length: inst.Length, ItemSize: inst.ItemSize}
	case osmodel.KindQueueSet:
		return &osmodel.QueueSetData{Length: inst.Length}
	case osmodel.KindEvent:
		return &osmodel.EventData{Mask: inst.Mask}
	case osmodel.KindBuffer:
		return &osmodel.BufferData{Message: inst.Type == "message", Size: inst.Length}
	case osmodel.KindCounter:
		return &osmodel.CounterData{MaxAllowed: inst.MaxCount, TicksPerBase: inst.TicksPerBase, MinCycle: inst.MinCycle}
	case osmodel.KindTaskGroup:
		return &osmodel.TaskGroupData{Tasks: append([]string(nil), inst.Tasks...)}
	default:
		return osmodel.EmptyData(k)
	}
}
