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

package export

import (
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-os-tools/analysis/interactions"
	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func sampleGraph(t *testing.T) *osmodel.Graph {
	g := osmodel.New()
	rtos, _ := g.AddNode(osmodel.NewNode(osmodel.RTOSName, &osmodel.RTOSData{Variant: "osek"}))
	task, _ := g.AddNode(osmodel.NewNode("TaskA", &osmodel.TaskData{Function: "TaskA", Priority: 2}))
	event, _ := g.AddNode(osmodel.NewNode("EV_DATA", &osmodel.EventData{Mask: 1}))
	for _, e := range []*osmodel.Edge{
		{From: event, To: task, Name: "WaitEvent", SyscallType: osmodel.SyscallWait, ABB: 3, Path: "0.2",
			Call: osmodel.CallData{Name: "WaitEvent", Args: []osmodel.ArgValues{
				{Values: []osmodel.Literal{osmodel.Str("EV_DATA"), osmodel.Str("EV_OTHER")}},
			}}},
		{From: task, To: rtos, Name: "TerminateTask", SyscallType: osmodel.SyscallDestroy, ABB: 5},
	} {
		if _, err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func queryInt(t *testing.T, conn *sqlite.Conn, query string) int64 {
	var n int64
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("query %q failed: %v", query, err)
	}
	return n
}

func queryText(t *testing.T, conn *sqlite.Conn, query string) string {
	var s string
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			s = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("query %q failed: %v", query, err)
	}
	return s
}

func TestWriteDB(t *testing.T) {
	g := sampleGraph(t)
	res := &interactions.Result{
		AppMode: "OSDEFAULTAPPMODE",
		Diagnostics: []interactions.Diagnostic{
			{Kind: interactions.UnresolvedHandler, Root: "TaskB", Syscall: "ActivateTask",
				CallChain: []string{"TaskB", "helper"}},
		},
		Roots: []*interactions.RootStats{{Name: "TaskA", Kind: osmodel.KindTask, Function: "TaskA", Calls: 1, Edges: 2}},
	}
	path := filepath.Join(t.TempDir(), "interactions.sqlite")
	if err := WriteDB(path, g, res); err != nil {
		t.Fatalf("WriteDB failed: %v", err)
	}
	// writing twice replaces the database
	if err := WriteDB(path, g, res); err != nil {
		t.Fatalf("second WriteDB failed: %v", err)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if n := queryInt(t, conn, "SELECT count(*) FROM nodes"); n != 3 {
		t.Errorf("expected 3 nodes, got %d", n)
	}
	if n := queryInt(t, conn, "SELECT count(*) FROM edges"); n != 2 {
		t.Errorf("expected 2 edges, got %d", n)
	}
	if n := queryInt(t, conn, "SELECT count(*) FROM arguments WHERE position = 0"); n != 2 {
		t.Errorf("expected both alternatives of the argument, got %d", n)
	}
	src := queryText(t, conn, `SELECT n.name FROM edges e JOIN nodes n ON e.source = n.id WHERE e.name = 'WaitEvent'`)
	if src != "EV_DATA" {
		t.Errorf("wait edges go from the event, got %q", src)
	}
	if s := queryText(t, conn, "SELECT syscall_type FROM edges WHERE name = 'TerminateTask'"); s != "destroy" {
		t.Errorf("unexpected syscall type %q", s)
	}
	if s := queryText(t, conn, "SELECT call_chain FROM diagnostics"); s != "TaskB -> helper" {
		t.Errorf("unexpected call chain %q", s)
	}
	if s := queryText(t, conn, "SELECT value FROM meta WHERE key = 'app_mode'"); s != "OSDEFAULTAPPMODE" {
		t.Errorf("unexpected app mode %q", s)
	}
	if s := queryText(t, conn, "SELECT value FROM meta WHERE key = 'complete'"); s != "false" {
		t.Errorf("a result with diagnostics is not complete, got %q", s)
	}
	if s := queryText(t, conn, "SELECT properties FROM nodes WHERE name = 'TaskA'"); s == "" {
		t.Errorf("expected task properties")
	}
}

func TestWriteDBWithoutResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.sqlite")
	if err := WriteDB(path, sampleGraph(t), nil); err != nil {
		t.Fatal(err)
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if n := queryInt(t, conn, "SELECT count(*) FROM meta"); n != 0 {
		t.Errorf("expected no meta rows, got %d", n)
	}
}
