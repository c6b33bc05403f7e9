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

// NodeID is the index of a node in the arena of its Graph. IDs are never reused.
type NodeID int

// NoNode is the invalid node index
const NoNode NodeID = -1

// A Node is an OS abstraction. The variant-specific fields are in Data, whose dynamic type determines the kind of the
// node.
type Node struct {
	id  NodeID
	key Key

	// Name is the name of the abstraction, unique per kind
	Name string

	// HandlerName is the string constant by which system calls address the abstraction
	HandlerName string

	// Data is the variant payload
	Data Data

	in  []EdgeID
	out []EdgeID
}

// NewNode returns a node with the payload provided. The handler name defaults to the node's name, except for the RTOS
// singleton which is always addressed as "RTOS".
func NewNode(name string, data Data) *Node {
	handler := name
	if data.Kind() == KindRTOS {
		handler = RTOSName
	}
	return &Node{
		id:          NoNode,
		key:         KeyOf(name, data.Kind()),
		Name:        name,
		HandlerName: handler,
		Data:        data,
	}
}

// ID returns the index of the node in its graph, or NoNode if the node has not been added to a graph
func (n *Node) ID() NodeID { return n.id }

// Key returns the identity of the node, a hash of its name and kind
func (n *Node) Key() Key { return n.key }

// Kind returns the kind of the node
func (n *Node) Kind() Kind { return n.Data.Kind() }

// In returns the indices of the incoming edges of the node. The slice must not be modified.
func (n *Node) In() []EdgeID { return n.in }

// Out returns the indices of the outgoing edges of the node. The slice must not be modified.
func (n *Node) Out() []EdgeID { return n.out }

func (n *Node) String() string {
	return n.Kind().String() + ":" + n.Name
}

// EntryFunction returns the name of the function the abstraction executes (definition function of tasks, ISRs and
// co-routines, callback of timers, the function itself for function nodes) and true, or false when the abstraction
// does not execute code.
func (n *Node) EntryFunction() (string, bool) {
	switch d := n.Data.(type) {
	case *FunctionData:
		return n.Name, true
	case *TaskData:
		return d.Function, d.Function != ""
	case *ISRData:
		return d.Function, d.Function != ""
	case *TimerData:
		return d.Callback, d.Callback != ""
	case *CoRoutineData:
		return d.Function, d.Function != ""
	default:
		return "", false
	}
}

// RTOSName is the name and handler name of the RTOS singleton
const RTOSName = "RTOS"

// Data is the variant payload of a node. The set of implementations is closed.
type Data interface {
	Kind() Kind
	isData()
}

// ResourceType distinguishes the mutex flavours of resources
type ResourceType uint8

const (
	BinaryMutex ResourceType = iota
	RecursiveMutex
)

// CreationTime records whether an abstraction exists before or after the scheduler starts
type CreationTime uint8

const (
	CreatedBeforeScheduler CreationTime = iota
	CreatedAfterScheduler
)

type RTOSData struct {
	// Variant is the OS variant, e.g. "osek" or "freertos"
	Variant string
	// AppMode is the application mode the scheduler is started in (OSEK)
	AppMode string
}

type FunctionData struct{}

type TaskData struct {
	Function  string
	Priority  int
	Autostart bool
}

type ISRData struct {
	Function string
	Category int
	Priority int
}

type TimerData struct {
	Callback   string
	Period     int
	AutoReload bool
}

type CoRoutineData struct {
	Function string
	Priority int
}

type ResourceData struct {
	Type     ResourceType
	Creation CreationTime
}

type SemaphoreData struct {
	Counting     bool
	MaxCount     int
	InitialCount int
}

type QueueData struct {
	Length   int
	ItemSize int
}

type QueueSetData struct {
	Length int
	// Members are the queues, semaphores and resources added to the set
	Members []NodeID
}

// AddMember adds id to the members of the set, if it is not already a member
func (q *QueueSetData) AddMember(id NodeID) {
	for _, m := range q.Members {
		if m == id {
			return
		}
	}
	q.Members = append(q.Members, id)
}

type EventData struct {
	Mask uint64
}

type BufferData struct {
	// Message is true for message buffers, false for stream buffers
	Message bool
	Size    int
}

type CounterData struct {
	MaxAllowed   int
	TicksPerBase int
	MinCycle     int
}

type TaskGroupData struct {
	Tasks []string
}

func (*RTOSData) Kind() Kind      { return KindRTOS }
func (*FunctionData) Kind() Kind  { return KindFunction }
func (*TaskData) Kind() Kind      { return KindTask }
func (*ISRData) Kind() Kind       { return KindISR }
func (*TimerData) Kind() Kind     { return KindTimer }
func (*CoRoutineData) Kind() Kind { return KindCoRoutine }
func (*ResourceData) Kind() Kind  { return KindResource }
func (*SemaphoreData) Kind() Kind { return KindSemaphore }
func (*QueueData) Kind() Kind     { return KindQueue }
func (*QueueSetData) Kind() Kind  { return KindQueueSet }
func (*EventData) Kind() Kind     { return KindEvent }
func (*BufferData) Kind() Kind    { return KindBuffer }
func (*CounterData) Kind() Kind   { return KindCounter }
func (*TaskGroupData) Kind() Kind { return KindTaskGroup }

func (*RTOSData) isData()      {}
func (*FunctionData) isData()  {}
func (*TaskData) isData()      {}
func (*ISRData) isData()       {}
func (*TimerData) isData()     {}
func (*CoRoutineData) isData() {}
func (*ResourceData) isData()  {}
func (*SemaphoreData) isData() {}
func (*QueueData) isData()     {}
func (*QueueSetData) isData()  {}
func (*EventData) isData()     {}
func (*BufferData) isData()    {}
func (*CounterData) isData()   {}
func (*TaskGroupData) isData() {}

// EmptyData returns a zero payload of kind k, or nil if k is not a valid kind
func EmptyData(k Kind) Data {
	switch k {
	case KindRTOS:
		return &RTOSData{}
	case KindFunction:
		return &FunctionData{}
	case KindTask:
		return &TaskData{}
	case KindISR:
		return &ISRData{}
	case KindTimer:
		return &TimerData{}
	case KindCoRoutine:
		return &CoRoutineData{}
	case KindResource:
		return &ResourceData{}
	case KindSemaphore:
		return &SemaphoreData{}
	case KindQueue:
		return &QueueData{}
	case KindQueueSet:
		return &QueueSetData{}
	case KindEvent:
		return &EventData{}
	case KindBuffer:
		return &BufferData{}
	case KindCounter:
		return &CounterData{}
	case KindTaskGroup:
		return &TaskGroupData{}
	default:
		return nil
	}
}
