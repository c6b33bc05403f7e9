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

import (
	"fmt"
	"strings"
)

// Kind is the discriminant of the abstraction node variants
type Kind uint8

const (
	KindRTOS Kind = iota + 1
	KindFunction
	KindTask
	KindISR
	KindTimer
	KindCoRoutine
	KindResource
	KindSemaphore
	KindQueue
	KindQueueSet
	KindEvent
	KindBuffer
	KindCounter
	KindTaskGroup
)

var kindNames = map[Kind]string{
	KindRTOS:      "rtos",
	KindFunction:  "function",
	KindTask:      "task",
	KindISR:       "isr",
	KindTimer:     "timer",
	KindCoRoutine: "coroutine",
	KindResource:  "resource",
	KindSemaphore: "semaphore",
	KindQueue:     "queue",
	KindQueueSet:  "queueset",
	KindEvent:     "event",
	KindBuffer:    "buffer",
	KindCounter:   "counter",
	KindTaskGroup: "taskgroup",
}

// Kinds returns all the abstraction kinds, in declaration order
func Kinds() []Kind {
	return []Kind{KindRTOS, KindFunction, KindTask, KindISR, KindTimer, KindCoRoutine, KindResource, KindSemaphore,
		KindQueue, KindQueueSet, KindEvent, KindBuffer, KindCounter, KindTaskGroup}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind returns the kind named s. Names are case-insensitive; "alarm" is accepted for timers and "mutex" for
// resources.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "alarm":
		return KindTimer, nil
	case "mutex":
		return KindResource, nil
	case "eventgroup":
		return KindEvent, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown abstraction kind %q", s)
}

// ParseKinds parses all the names of a list of kinds
func ParseKinds(names []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(names))
	for _, name := range names {
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// SyscallType is the action category of a system call
type SyscallType uint8

const (
	SyscallUndefined SyscallType = iota
	SyscallCreate
	SyscallDestroy
	SyscallReceive
	SyscallCommit
	SyscallWait
	SyscallAdd
	SyscallSchedule
	SyscallActivate
	SyscallStartScheduler
	SyscallEndScheduler
	SyscallEnable
	SyscallDisable
)

var syscallTypeNames = map[SyscallType]string{
	SyscallUndefined:      "undefined",
	SyscallCreate:         "create",
	SyscallDestroy:        "destroy",
	SyscallReceive:        "receive",
	SyscallCommit:         "commit",
	SyscallWait:           "wait",
	SyscallAdd:            "add",
	SyscallSchedule:       "schedule",
	SyscallActivate:       "activate",
	SyscallStartScheduler: "start-scheduler",
	SyscallEndScheduler:   "end-scheduler",
	SyscallEnable:         "enable",
	SyscallDisable:        "disable",
}

func (t SyscallType) String() string {
	if s, ok := syscallTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("syscall(%d)", uint8(t))
}

// ParseSyscallType returns the syscall type named s. The empty string is the undefined type.
func ParseSyscallType(s string) (SyscallType, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if name == "" {
		return SyscallUndefined, nil
	}
	for t, n := range syscallTypeNames {
		if n == name {
			return t, nil
		}
	}
	return SyscallUndefined, fmt.Errorf("unknown syscall type %q", s)
}

// IsInbound returns true when data or control flows from the addressed abstraction into the calling one, i.e. the
// interaction edge is directed from the target to the caller
func (t SyscallType) IsInbound() bool {
	return t == SyscallReceive || t == SyscallWait
}
