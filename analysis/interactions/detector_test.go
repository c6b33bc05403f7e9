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
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/awslabs/ar-os-tools/analysis/config"
	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"github.com/awslabs/ar-os-tools/analysis/program"
	"github.com/awslabs/ar-os-tools/analysis/values"
)

type fixture struct {
	t   *testing.T
	cfg *config.Config
	p   *program.Program
	g   *osmodel.Graph
}

func newFixture(t *testing.T, os config.OSVariant, fallback config.FallbackPolicy) *fixture {
	yml := fmt.Sprintf("options:\n  os: %s\n  log-level: 1\n  rtos-fallback: %s\n", os, fallback)
	cfg, err := config.LoadFromBytes("test.yaml", []byte(yml))
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}
	f := &fixture{t: t, cfg: cfg, p: program.New(), g: osmodel.New()}
	f.fn("main")
	f.node("OS", &osmodel.RTOSData{Variant: string(os)})
	return f
}

func (f *fixture) fn(name string, params ...string) *program.Function {
	fn, err := f.p.AddFunction(name)
	if err != nil {
		f.t.Fatal(err)
	}
	for _, p := range params {
		f.p.AddParam(fn.ID, p)
	}
	return fn
}

func (f *fixture) function(name string) *program.Function {
	fn := f.p.FunctionByName(name)
	if fn == nil {
		f.t.Fatalf("no function %s", name)
	}
	return fn
}

func (f *fixture) str(s string) program.ValueID { return f.p.AddConstant(osmodel.Str(s)) }

func (f *fixture) int(i int64) program.ValueID { return f.p.AddConstant(osmodel.Int(i)) }

func (f *fixture) param(fn string, i int) program.ValueID { return f.function(fn).Params[i] }

func (f *fixture) syscall(fn string, name string, args ...program.ValueID) *program.ABB {
	info, ok, err := program.Classify(f.cfg, name)
	if !ok || err != nil {
		f.t.Fatalf("%s is not a valid syscall: %v", name, err)
	}
	return f.p.AddSyscall(f.function(fn).ID, name, info, args, false)
}

func (f *fixture) call(caller string, callee string, args ...program.ValueID) *program.ABB {
	abb, err := f.p.AddCall(f.function(caller).ID, f.function(callee).ID, args, false)
	if err != nil {
		f.t.Fatal(err)
	}
	return abb
}

func (f *fixture) node(name string, data osmodel.Data) *osmodel.Node {
	n := osmodel.NewNode(name, data)
	if _, err := f.g.AddNode(n); err != nil {
		f.t.Fatal(err)
	}
	return n
}

func (f *fixture) run() (*Result, error) {
	return NewDetector(f.cfg, nil, f.p, f.p, f.g).Run()
}

func (f *fixture) mustRun() *Result {
	res, err := f.run()
	if err != nil {
		f.t.Fatalf("detection failed: %v", err)
	}
	return res
}

func (f *fixture) edges() []*osmodel.Edge {
	return f.g.Edges()
}

func TestWaitEdgeDirection(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("TaskA_func")
	f.syscall("TaskA_func", "WaitEvent", f.str("EVT1"))
	task := f.node("TaskA", &osmodel.TaskData{Function: "TaskA_func"})
	evt := f.node("EVT1", &osmodel.EventData{Mask: 1})

	res := f.mustRun()
	edges := f.edges()
	if len(edges) != 1 {
		t.Fatalf("expected exactly one edge, got %v", edges)
	}
	e := edges[0]
	if e.From != evt.ID() || e.To != task.ID() || e.Name != "WaitEvent" {
		t.Errorf("expected EVT1 -[WaitEvent]-> TaskA, got %v", e)
	}
	if len(f.g.InEdges(task)) != 1 || len(f.g.OutEdges(evt)) != 1 {
		t.Errorf("edge not attached to its endpoints")
	}
	if v, ok := e.Call.Arg(0).Single(); !ok || v != osmodel.Str("EVT1") {
		t.Errorf("edge should carry the resolved argument, got %v", e.Call)
	}
	if !res.Complete() {
		t.Errorf("unexpected diagnostics %v", res.Diagnostics)
	}
}

func TestCommitEdgeDirection(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("TaskA_func")
	f.syscall("TaskA_func", "ActivateTask", f.str("TaskB"))
	taskA := f.node("TaskA", &osmodel.TaskData{Function: "TaskA_func"})
	taskB := f.node("TaskB", &osmodel.TaskData{})

	res := f.mustRun()
	edges := f.edges()
	if len(edges) != 1 || edges[0].From != taskA.ID() || edges[0].To != taskB.ID() {
		t.Fatalf("expected TaskA -[ActivateTask]-> TaskB, got %v", edges)
	}
	// TaskB has no function
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != MissingFunction {
		t.Errorf("expected a missing function diagnostic, got %v", res.Diagnostics)
	}
}

func TestTimerGenericCommandRename(t *testing.T) {
	f := newFixture(t, config.FreeRTOS, config.FallbackCandidates)
	f.fn("vTask")
	f.syscall("vTask", "xTimerGenericCommand", f.str("tmr"), f.int(1), f.int(0))
	f.syscall("vTask", "xTimerGenericCommand", f.str("tmr"), f.int(42), f.int(0))
	f.syscall("vTask", "xTaskGenericNotify", f.str("other"), f.int(0), f.int(2))
	f.node("task", &osmodel.TaskData{Function: "vTask"})
	f.node("other", &osmodel.TaskData{})
	f.node("tmr", &osmodel.TimerData{Period: 10})

	f.mustRun()
	edges := f.edges()
	if len(edges) != 3 {
		t.Fatalf("expected 3 edges, got %v", edges)
	}
	if edges[0].Name != "tmrCOMMAND_START" || edges[0].Call.Name != "tmrCOMMAND_START" {
		t.Errorf("expected tmrCOMMAND_START, got %s", edges[0].Name)
	}
	if edges[1].Name != "xTimerGenericCommand" {
		t.Errorf("unknown command code should keep the generic name, got %s", edges[1].Name)
	}
	if edges[2].Name != "xTaskNotifyIncrement" {
		t.Errorf("expected xTaskNotifyIncrement, got %s", edges[2].Name)
	}
}

func TestSpecificSyscallName(t *testing.T) {
	for _, tt := range []struct {
		name     string
		code     osmodel.Literal
		expected string
	}{
		{"xTimerGenericCommand", osmodel.Int(3), "tmrCOMMAND_STOP"},
		{"prvxTimerGenericCommandFromISR", osmodel.Int(7), "tmrCOMMAND_START_FROM_ISR"},
		{"MPU_xTaskGenericNotify", osmodel.Int(1), "xTaskNotifySetBits"},
		{"xTimerGenericCommand", osmodel.Str("3"), "xTimerGenericCommand"},
		{"xQueueGenericSend", osmodel.Int(1), "xQueueGenericSend"},
	} {
		args := []osmodel.ArgValues{{}, {}, {}}
		switch {
		case strings.Contains(tt.name, "Timer"):
			args[1] = osmodel.ArgValues{Values: []osmodel.Literal{tt.code}}
		default:
			args[2] = osmodel.ArgValues{Values: []osmodel.Literal{tt.code}}
		}
		if got := specificSyscallName(osmodel.CallData{Name: tt.name, Args: args}); got != tt.expected {
			t.Errorf("%s(%v): expected %s, got %s", tt.name, tt.code, tt.expected, got)
		}
	}
}

func TestCallCycleTerminates(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("A")
	f.fn("B")
	f.syscall("A", "ActivateTask", f.str("T"))
	f.call("A", "B")
	f.syscall("B", "SetEvent", f.str("T"))
	f.call("B", "A")
	f.call("main", "A")
	f.node("T", &osmodel.TaskData{})
	f.node("R", &osmodel.TaskData{Function: "A"})

	res := f.mustRun()
	// from main: A and B once each; from R: A and B once each
	if n := len(f.edges()); n != 4 {
		t.Fatalf("expected 4 edges, got %d: %v", n, f.edges())
	}
	for _, r := range res.Roots {
		if r.Name == "R" && (r.Edges != 2 || r.Syscalls != 2) {
			t.Errorf("root R should have 2 syscalls and 2 edges, got %+v", r)
		}
	}
	if len(res.RecursiveFunctions) != 2 || res.RecursiveFunctions[0] != "A" {
		t.Errorf("A and B should be reported as recursive, got %v", res.RecursiveFunctions)
	}
	if len(res.Cycles) != 1 || strings.Join(res.Cycles[0], ",") != "A,B,A" {
		t.Errorf("expected cycle A,B,A, got %v", res.Cycles)
	}
}

func TestSameCallSiteVisitedOnce(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("helper")
	f.syscall("helper", "Schedule")
	f.fn("twice")
	f.call("twice", "helper")
	f.call("main", "twice")
	f.call("main", "twice")

	res := f.mustRun()
	// the second call of twice is another call site, but the call site in twice was already followed
	if n := len(f.edges()); n != 1 {
		t.Errorf("expected 1 edge, got %d", n)
	}
	if res.Roots[0].Calls != 3 {
		t.Errorf("expected 3 calls followed, got %d", res.Roots[0].Calls)
	}
}

func TestCallTrees(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("helper")
	f.syscall("helper", "Schedule")
	f.fn("twice")
	f.call("twice", "helper")
	f.call("main", "twice")
	f.call("main", "twice")

	res := f.mustRun()
	if n := res.Roots[0].CallTree.Size(); n != 4 {
		t.Errorf("expected 4 nodes in the call tree of main, got %d", n)
	}
	var b strings.Builder
	if err := res.WriteCallTrees(&b); err != nil {
		t.Fatal(err)
	}
	expected := "function main (4 functions):\n  main\n    twice\n      helper\n    twice\n"
	if b.String() != expected {
		t.Errorf("expected\n%s\ngot\n%s", expected, b.String())
	}
}

func TestRTOSFallbackCandidates(t *testing.T) {
	f := newFixture(t, config.FreeRTOS, config.FallbackCandidates)
	f.fn("vTask")
	f.syscall("vTask", "vTaskSuspend", f.str("nope"))
	f.node("task", &osmodel.TaskData{Function: "vTask"})

	res := f.mustRun()
	edges := f.edges()
	if len(edges) != 1 || edges[0].To != f.g.RTOS().ID() {
		t.Fatalf("expected an edge to the RTOS, got %v", edges)
	}
	if !res.Complete() {
		t.Errorf("fallback to the RTOS should be silent, got %v", res.Diagnostics)
	}
}

func TestRTOSCandidateListedFirst(t *testing.T) {
	f := newFixture(t, config.FreeRTOS, config.FallbackCandidates)
	yml := "options:\n  os: freertos\n  log-level: 1\n" +
		"syscalls:\n  - name: vTaskSuspend\n    type: schedule\n    targets: [rtos, task]\n    handler-arg: 0\n"
	cfg, err := config.LoadFromBytes("test.yaml", []byte(yml))
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}
	f.cfg = cfg
	f.fn("vWorker")
	f.fn("vOther")
	f.syscall("vWorker", "vTaskSuspend", f.str("Other"))
	f.syscall("vWorker", "vTaskSuspend", f.str("nope"))
	worker := f.node("Worker", &osmodel.TaskData{Function: "vWorker"})
	other := f.node("Other", &osmodel.TaskData{Function: "vOther"})

	res := f.mustRun()
	edges := f.edges()
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %v", edges)
	}
	if edges[0].From != worker.ID() || edges[0].To != other.ID() {
		t.Errorf("a matching task should be preferred to the RTOS, got %v", edges[0])
	}
	if edges[1].To != f.g.RTOS().ID() {
		t.Errorf("an unmatched handler should fall back to the RTOS, got %v", edges[1])
	}
	if !res.Complete() {
		t.Errorf("expected no diagnostics, got %v", res.Diagnostics)
	}
}

func TestRTOSFallbackNever(t *testing.T) {
	f := newFixture(t, config.FreeRTOS, config.FallbackNever)
	f.fn("vTask")
	f.syscall("vTask", "vTaskSuspend", f.str("nope"))
	f.syscall("vTask", "vTaskDelay", f.int(10))
	f.node("task", &osmodel.TaskData{Function: "vTask"})

	res := f.mustRun()
	edges := f.edges()
	// vTaskDelay has no handler argument and still addresses the RTOS
	if len(edges) != 1 || edges[0].Name != "vTaskDelay" {
		t.Fatalf("expected only the vTaskDelay edge, got %v", edges)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != NoMatchingTarget ||
		res.Diagnostics[0].Handler != "nope" {
		t.Errorf("expected a no matching target diagnostic, got %v", res.Diagnostics)
	}
}

func TestRTOSFallbackUnmatched(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackUnmatched)
	f.fn("TaskA_func")
	f.syscall("TaskA_func", "WaitEvent", f.str("nope"))
	f.syscall("TaskA_func", "WaitEvent", f.str("TaskA"))
	f.node("TaskA", &osmodel.TaskData{Function: "TaskA_func"})

	res := f.mustRun()
	edges := f.edges()
	// "nope" names nothing: RTOS. "TaskA" names a task, which is not a candidate of WaitEvent.
	if len(edges) != 1 || edges[0].From != f.g.RTOS().ID() {
		t.Fatalf("expected one edge from the RTOS, got %v", edges)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != NoMatchingTarget {
		t.Errorf("expected a no matching target diagnostic, got %v", res.Diagnostics)
	}
}

func TestNonStringHandler(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("TaskA_func")
	f.syscall("TaskA_func", "WaitEvent", f.int(3))
	f.node("TaskA", &osmodel.TaskData{Function: "TaskA_func"})
	f.node("EVT1", &osmodel.EventData{})

	res := f.mustRun()
	if len(f.edges()) != 0 {
		t.Errorf("no edge should be created")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != NonStringHandler ||
		res.Diagnostics[0].Root != "TaskA" || res.Diagnostics[0].Function != "TaskA_func" {
		t.Errorf("expected a non string handler diagnostic, got %v", res.Diagnostics)
	}
}

func TestUnresolvedHandler(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("TaskA_func")
	f.fn("wait_for", "evt")
	f.call("TaskA_func", "wait_for", f.p.AddValue(f.function("TaskA_func").ID, "computed"))
	f.syscall("wait_for", "WaitEvent", f.param("wait_for", 0))
	f.node("TaskA", &osmodel.TaskData{Function: "TaskA_func"})

	res := f.mustRun()
	if len(f.edges()) != 0 {
		t.Errorf("no edge should be created")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != UnresolvedHandler {
		t.Fatalf("expected an unresolved handler diagnostic, got %v", res.Diagnostics)
	}
	if chain := strings.Join(res.Diagnostics[0].CallChain, ">"); chain != "TaskA_func>wait_for" {
		t.Errorf("unexpected call chain %s", chain)
	}
}

func TestContextSensitiveHandlers(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("wait_for", "evt")
	f.syscall("wait_for", "WaitEvent", f.param("wait_for", 0))
	f.fn("TaskA_func")
	f.call("TaskA_func", "wait_for", f.str("EVT1"))
	f.fn("TaskB_func")
	f.call("TaskB_func", "wait_for", f.str("EVT2"))
	taskA := f.node("TaskA", &osmodel.TaskData{Function: "TaskA_func"})
	taskB := f.node("TaskB", &osmodel.TaskData{Function: "TaskB_func"})
	evt1 := f.node("EVT1", &osmodel.EventData{})
	evt2 := f.node("EVT2", &osmodel.EventData{})

	res := f.mustRun()
	edges := f.edges()
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %v", edges)
	}
	if edges[0].From != evt1.ID() || edges[0].To != taskA.ID() {
		t.Errorf("expected EVT1 -> TaskA, got %v", edges[0])
	}
	if edges[1].From != evt2.ID() || edges[1].To != taskB.ID() {
		t.Errorf("expected EVT2 -> TaskB, got %v", edges[1])
	}
	// the narrowed arguments only hold the value of the context
	if len(edges[1].Call.Arg(0).Values) != 1 {
		t.Errorf("narrowed argument should have one value, got %v", edges[1].Call)
	}
	if !res.Complete() {
		t.Errorf("unexpected diagnostics %v", res.Diagnostics)
	}
}

func TestCreateSyscallsIgnored(t *testing.T) {
	f := newFixture(t, config.FreeRTOS, config.FallbackCandidates)
	f.syscall("main", "xTaskCreate", f.str("vTask"), f.str("task"))
	f.node("task", &osmodel.TaskData{Function: "vTask"})
	f.fn("vTask")

	res := f.mustRun()
	if len(f.edges()) != 0 || res.Roots[0].Syscalls != 0 {
		t.Errorf("creation syscalls should be ignored")
	}
}

func TestNoEntryPoint(t *testing.T) {
	cfg, _ := config.LoadFromBytes("test.yaml", []byte("options:\n  log-level: 1\n  entry-point: app_main\n"))
	p := program.New()
	_, err := NewDetector(cfg, nil, p, p, osmodel.New()).Run()
	var fe *FatalError
	if !errors.As(err, &fe) || !errors.Is(err, ErrNoEntryPoint) {
		t.Errorf("expected a fatal missing entry point error, got %v", err)
	}
}

func TestNoRTOS(t *testing.T) {
	cfg, _ := config.LoadFromBytes("test.yaml", []byte("options:\n  log-level: 1\n"))
	p := program.New()
	main, _ := p.AddFunction("main")
	info, _, _ := program.Classify(cfg, "vTaskDelay")
	p.AddSyscall(main.ID, "vTaskDelay", info, nil, false)
	_, err := NewDetector(cfg, nil, p, p, osmodel.New()).Run()
	if !errors.Is(err, ErrNoRTOS) {
		t.Errorf("expected missing RTOS error, got %v", err)
	}
}

func TestCallSiteMismatchIsFatal(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("wait_for", "evt")
	f.syscall("wait_for", "WaitEvent", f.param("wait_for", 0))
	abb := f.call("main", "wait_for", f.str("EVT1"))
	f.p.AddCallEdge(f.function("main").ID, f.function("wait_for").ID, abb.CallSite)
	f.node("EVT1", &osmodel.EventData{})

	_, err := f.run()
	var fe *FatalError
	if !errors.As(err, &fe) || !errors.Is(err, values.ErrCallSiteMismatch) {
		t.Errorf("expected a fatal call site mismatch, got %v", err)
	}
}

func TestSchedulerResource(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("TaskA_func")
	f.syscall("TaskA_func", "GetResource", f.str(config.SchedulerResourceName))
	f.syscall("TaskA_func", "ReleaseResource", f.str(config.SchedulerResourceName))
	task := f.node("TaskA", &osmodel.TaskData{Function: "TaskA_func"})

	res := f.mustRun()
	sched := f.g.Lookup(config.SchedulerResourceName, osmodel.KindResource)
	if sched == nil {
		t.Fatalf("scheduler resource should have been created")
	}
	if data := sched.Data.(*osmodel.ResourceData); data.Type != osmodel.BinaryMutex {
		t.Errorf("scheduler resource should be a binary mutex")
	}
	edges := f.edges()
	if len(edges) != 2 || edges[0].From != sched.ID() || edges[1].From != task.ID() {
		t.Errorf("expected RES_SCHEDULER -> TaskA and TaskA -> RES_SCHEDULER, got %v", edges)
	}
	if !res.Complete() {
		t.Errorf("unexpected diagnostics %v", res.Diagnostics)
	}
}

func TestQueueSetPopulation(t *testing.T) {
	f := newFixture(t, config.FreeRTOS, config.FallbackCandidates)
	f.syscall("main", "xQueueAddToSet", f.str("q1"), f.str("set1"))
	f.syscall("main", "xQueueAddToSet", f.str("missing"), f.str("set1"))
	f.syscall("main", "xQueueAddToSet", f.str("sem"), f.str("set1"))
	q1 := f.node("q1", &osmodel.QueueData{Length: 2})
	sem := f.node("sem", &osmodel.SemaphoreData{MaxCount: 1})
	set := f.node("set1", &osmodel.QueueSetData{Length: 3})

	res := f.mustRun()
	members := set.Data.(*osmodel.QueueSetData).Members
	if len(members) != 2 || members[0] != q1.ID() || members[1] != sem.ID() {
		t.Errorf("expected members q1 and sem, got %v", members)
	}
	if res.QueueSetMembers != 2 {
		t.Errorf("expected 2 members in the result, got %d", res.QueueSetMembers)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != QueueSetMember {
		t.Errorf("expected a queue set member diagnostic, got %v", res.Diagnostics)
	}
}

func TestAppMode(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.syscall("main", "StartOS", f.str("OSDEFAULTAPPMODE"))

	res := f.mustRun()
	if res.AppMode != "OSDEFAULTAPPMODE" {
		t.Errorf("expected OSDEFAULTAPPMODE, got %q", res.AppMode)
	}
	if mode := f.g.RTOS().Data.(*osmodel.RTOSData).AppMode; mode != "OSDEFAULTAPPMODE" {
		t.Errorf("appmode not stored in the RTOS, got %q", mode)
	}
	var b strings.Builder
	if err := res.WriteReport(&b, f.g); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "function:main -[StartOS]-> rtos:OS") ||
		!strings.Contains(b.String(), "Application mode: OSDEFAULTAPPMODE") {
		t.Errorf("unexpected report:\n%s", b.String())
	}
}

func TestAmbiguousAppMode(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	f.fn("start", "mode")
	f.syscall("start", "StartOS", f.param("start", 0))
	f.call("main", "start", f.str("MODE_A"))
	f.call("main", "start", f.str("MODE_B"))

	_, err := f.run()
	if !errors.Is(err, ErrAmbiguousAppMode) {
		t.Errorf("expected an ambiguous appmode error, got %v", err)
	}
}

func TestMissingAppMode(t *testing.T) {
	f := newFixture(t, config.OSEK, config.FallbackCandidates)
	res := f.mustRun()
	if res.AppMode != "" || !res.Complete() {
		t.Errorf("a missing appmode should only be a warning, got %q %v", res.AppMode, res.Diagnostics)
	}
}
