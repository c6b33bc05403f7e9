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

// Package export writes the interaction graph and the outcome of the detection to a SQLite database, so that the
// interactions of an application can be queried with SQL.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/awslabs/ar-os-tools/analysis/interactions"
	"github.com/awslabs/ar-os-tools/analysis/osmodel"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE nodes (
    id INTEGER PRIMARY KEY,
    kind TEXT NOT NULL,
    name TEXT NOT NULL,
    handler TEXT NOT NULL,
    key TEXT NOT NULL,
    properties TEXT
);

CREATE TABLE edges (
    id INTEGER PRIMARY KEY,
    source INTEGER NOT NULL REFERENCES nodes(id),
    target INTEGER NOT NULL REFERENCES nodes(id),
    name TEXT NOT NULL,
    syscall_type TEXT NOT NULL,
    abb INTEGER,
    path TEXT
);

CREATE TABLE arguments (
    edge INTEGER NOT NULL REFERENCES edges(id),
    position INTEGER NOT NULL,
    alternative INTEGER NOT NULL,
    kind TEXT NOT NULL,
    value TEXT
);

CREATE TABLE diagnostics (
    kind TEXT NOT NULL,
    root TEXT,
    function TEXT,
    syscall TEXT,
    handler TEXT,
    call_chain TEXT,
    message TEXT
);

CREATE TABLE roots (
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    function TEXT NOT NULL,
    calls INTEGER NOT NULL,
    syscalls INTEGER NOT NULL,
    edges INTEGER NOT NULL
);

CREATE TABLE meta (
    key TEXT PRIMARY KEY,
    value TEXT
);

CREATE INDEX idx_edges_source ON edges(source);
CREATE INDEX idx_edges_target ON edges(target);
CREATE INDEX idx_nodes_kind ON nodes(kind);
`

// WriteDB writes the nodes and edges of g and the result of the detection to a new SQLite database at path. An
// existing file at path is replaced. res may be nil.
func WriteDB(path string, g *osmodel.Graph, res *interactions.Result) error {
	_ = os.Remove(path) // ignore if doesn't exist

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return writeAll(conn, g, res)
}

func writeAll(conn *sqlite.Conn, g *osmodel.Graph, res *interactions.Result) (err error) {
	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer endFn(&err)

	if err = insertNodes(conn, g); err != nil {
		return err
	}
	if err = insertEdges(conn, g); err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	if err = insertDiagnostics(conn, res.Diagnostics); err != nil {
		return err
	}
	if err = insertRoots(conn, res.Roots); err != nil {
		return err
	}
	return insertMeta(conn, res)
}

func insertNodes(conn *sqlite.Conn, g *osmodel.Graph) error {
	stmt, err := conn.Prepare(`INSERT INTO nodes (id, kind, name, handler, key, properties) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare node insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, n := range g.Nodes() {
		stmt.BindInt64(1, int64(n.ID()))
		stmt.BindText(2, n.Kind().String())
		stmt.BindText(3, n.Name)
		stmt.BindText(4, n.HandlerName)
		stmt.BindText(5, fmt.Sprintf("%016x", uint64(n.Key())))
		bindTextOrNull(stmt, 6, propsJSON(n.Data))
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert node %s: %w", n, err)
		}
		_ = stmt.Reset()
	}
	return nil
}

func insertEdges(conn *sqlite.Conn, g *osmodel.Graph) error {
	stmt, err := conn.Prepare(`INSERT INTO edges (id, source, target, name, syscall_type, abb, path)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare edge insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	argStmt, err := conn.Prepare(`INSERT INTO arguments (edge, position, alternative, kind, value)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare argument insert: %w", err)
	}
	defer func() { _ = argStmt.Finalize() }()

	for _, e := range g.Edges() {
		stmt.BindInt64(1, int64(e.ID()))
		stmt.BindInt64(2, int64(e.From))
		stmt.BindInt64(3, int64(e.To))
		stmt.BindText(4, e.Name)
		stmt.BindText(5, e.SyscallType.String())
		stmt.BindInt64(6, int64(e.ABB))
		bindTextOrNull(stmt, 7, e.Path)
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert edge %s: %w", e, err)
		}
		_ = stmt.Reset()

		for pos, arg := range e.Call.Args {
			for alt, lit := range arg.Values {
				argStmt.BindInt64(1, int64(e.ID()))
				argStmt.BindInt64(2, int64(pos))
				argStmt.BindInt64(3, int64(alt))
				argStmt.BindText(4, literalKind(lit))
				bindLiteral(argStmt, 5, lit)
				if _, err := argStmt.Step(); err != nil {
					return fmt.Errorf("insert argument %d of edge %s: %w", pos, e, err)
				}
				_ = argStmt.Reset()
			}
		}
	}
	return nil
}

func insertDiagnostics(conn *sqlite.Conn, diags []interactions.Diagnostic) error {
	stmt, err := conn.Prepare(`INSERT INTO diagnostics (kind, root, function, syscall, handler, call_chain, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare diagnostic insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, d := range diags {
		stmt.BindText(1, d.Kind.String())
		bindTextOrNull(stmt, 2, d.Root)
		bindTextOrNull(stmt, 3, d.Function)
		bindTextOrNull(stmt, 4, d.Syscall)
		bindTextOrNull(stmt, 5, d.Handler)
		bindTextOrNull(stmt, 6, strings.Join(d.CallChain, " -> "))
		bindTextOrNull(stmt, 7, d.Message)
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert diagnostic: %w", err)
		}
		_ = stmt.Reset()
	}
	return nil
}

func insertRoots(conn *sqlite.Conn, roots []*interactions.RootStats) error {
	stmt, err := conn.Prepare(`INSERT INTO roots (name, kind, function, calls, syscalls, edges) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare root insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, r := range roots {
		stmt.BindText(1, r.Name)
		stmt.BindText(2, r.Kind.String())
		stmt.BindText(3, r.Function)
		stmt.BindInt64(4, int64(r.Calls))
		stmt.BindInt64(5, int64(r.Syscalls))
		stmt.BindInt64(6, int64(r.Edges))
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert root %s: %w", r.Name, err)
		}
		_ = stmt.Reset()
	}
	return nil
}

func insertMeta(conn *sqlite.Conn, res *interactions.Result) error {
	meta := map[string]string{
		"app_mode":            res.AppMode,
		"complete":            fmt.Sprintf("%t", res.Complete()),
		"queue_set_members":   fmt.Sprintf("%d", res.QueueSetMembers),
		"recursive_functions": strings.Join(res.RecursiveFunctions, ","),
	}
	for k, v := range meta {
		if err := sqlitex.Execute(conn, `INSERT INTO meta (key, value) VALUES (?, ?)`,
			&sqlitex.ExecOptions{Args: []any{k, v}}); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return nil
}

func propsJSON(d osmodel.Data) string {
	b, err := json.Marshal(d)
	if err != nil || string(b) == "{}" {
		return ""
	}
	return string(b)
}

func literalKind(l osmodel.Literal) string {
	switch l.Kind {
	case osmodel.StringLiteral:
		return "string"
	case osmodel.IntLiteral:
		return "int"
	case osmodel.FloatLiteral:
		return "float"
	default:
		return "null"
	}
}

func bindLiteral(stmt *sqlite.Stmt, param int, l osmodel.Literal) {
	switch l.Kind {
	case osmodel.StringLiteral:
		stmt.BindText(param, l.Str)
	case osmodel.IntLiteral:
		stmt.BindInt64(param, l.Int)
	case osmodel.FloatLiteral:
		stmt.BindFloat(param, l.Float)
	default:
		stmt.BindNull(param)
	}
}

func bindTextOrNull(stmt *sqlite.Stmt, param int, val string) {
	if val == "" {
		stmt.BindNull(param)
	} else {
		stmt.BindText(param, val)
	}
}
