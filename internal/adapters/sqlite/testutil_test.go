// Package sqlite_test contains integration tests for the SQLite table store.
//
// Tests open real database files through setupTestStore. Rows written behind
// the store's back, as another process would, go through seedRows.
package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/shiftdesk/internal/adapters/sqlite"
	"github.com/example/shiftdesk/internal/ports/secondary"
)

var testDef = secondary.TableDef{
	Name:    "requests",
	Columns: []string{"id", "worker_id", "status"},
}

// setupTestStore opens a store on a fresh database file.
func setupTestStore(t *testing.T) (*sqlite.TableStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shiftdesk.db")
	store, err := sqlite.OpenTableStore(path)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store, path
}

// openRaw opens a second, independent connection pool on path.
func openRaw(t *testing.T, path string) *sql.DB {
	t.Helper()

	raw, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		t.Fatalf("failed to open raw db: %v", err)
	}
	t.Cleanup(func() {
		raw.Close()
	})
	return raw
}

// seedRows inserts rows directly with SQL, bypassing the store.
func seedRows(t *testing.T, raw *sql.DB, def secondary.TableDef, rows ...secondary.Row) {
	t.Helper()

	cols := make([]string, len(def.Columns))
	marks := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		cols[i] = `"` + c + `"`
		marks[i] = "?"
	}
	stmt := fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`, def.Name, strings.Join(cols, ", "), strings.Join(marks, ", "))

	for _, row := range rows {
		args := make([]any, len(row))
		for i, c := range row {
			args[i] = c
		}
		if _, err := raw.Exec(stmt, args...); err != nil {
			t.Fatalf("failed to seed %s: %v", def.Name, err)
		}
	}
}

func openTable(t *testing.T, store *sqlite.TableStore, def secondary.TableDef) secondary.Table {
	t.Helper()
	table, err := store.Open(context.Background(), def)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return table
}

func collect(t *testing.T, table secondary.Table) []secondary.Row {
	t.Helper()
	var rows []secondary.Row
	for row, err := range table.Scan(context.Background()) {
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		rows = append(rows, row)
	}
	return rows
}
