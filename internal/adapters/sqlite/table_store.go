// Package sqlite contains the SQLite implementation of the table store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/shiftdesk/internal/ports/secondary"
)

// seqColumn keeps insertion order; it is never exposed as a table column.
const seqColumn = "_seq"

// markTable holds one high-water mark per logical table.
const markTable = "_high_water"

// TableStore implements secondary.TableStore with one SQL table per logical
// table inside a single database file.
type TableStore struct {
	db   *sql.DB
	path string

	mu     sync.Mutex
	tables map[string]*Table
}

// OpenTableStore opens (or creates) the database at path. Every pooled
// connection gets WAL mode and a busy timeout so cooperating processes wait
// instead of failing on a locked database.
func OpenTableStore(path string) (*TableStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewTableStore(db, path), nil
}

// NewTableStore wraps an open database.
func NewTableStore(db *sql.DB, path string) *TableStore {
	return &TableStore{db: db, path: path, tables: make(map[string]*Table)}
}

// Open creates the SQL table for def if needed and adds any column def
// gained since the table was created.
func (s *TableStore) Open(ctx context.Context, def secondary.TableDef) (secondary.Table, error) {
	cols := make([]string, 0, len(def.Columns)+1)
	cols = append(cols, quote(seqColumn)+" INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, c := range def.Columns {
		cols = append(cols, quote(c)+" TEXT NOT NULL DEFAULT ''")
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(def.Name), strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return nil, &secondary.StorageError{Op: "open", Table: def.Name, Err: err}
	}
	markDDL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (table_name TEXT PRIMARY KEY, mark INTEGER NOT NULL)", quote(markTable))
	if _, err := s.db.ExecContext(ctx, markDDL); err != nil {
		return nil, &secondary.StorageError{Op: "open", Table: def.Name, Err: err}
	}

	existing, err := s.columns(ctx, def.Name)
	if err != nil {
		return nil, &secondary.StorageError{Op: "open", Table: def.Name, Err: err}
	}
	for _, c := range def.Columns {
		if existing[c] {
			continue
		}
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT NOT NULL DEFAULT ''", quote(def.Name), quote(c))
		if _, err := s.db.ExecContext(ctx, alter); err != nil {
			return nil, &secondary.StorageError{Op: "upgrade", Table: def.Name, Err: err}
		}
	}

	t := newTable(s.db, def)
	s.mu.Lock()
	s.tables[def.Name] = t
	s.mu.Unlock()
	return t, nil
}

func (s *TableStore) columns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quote(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// SnapshotSources returns the database file as a single source.
func (s *TableStore) SnapshotSources() []secondary.SnapshotSource {
	return []secondary.SnapshotSource{&databaseSource{db: s.db, path: s.path}}
}

// Close closes the database.
func (s *TableStore) Close() error {
	return s.db.Close()
}

// Table implements secondary.Table on one SQL table.
type Table struct {
	db  *sql.DB
	def secondary.TableDef

	selectSQL string
	insertSQL string
}

func newTable(db *sql.DB, def secondary.TableDef) *Table {
	quoted := make([]string, len(def.Columns))
	marks := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		quoted[i] = quote(c)
		marks[i] = "?"
	}
	cols := strings.Join(quoted, ", ")

	return &Table{
		db:        db,
		def:       def,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", cols, quote(def.Name), quote(seqColumn)),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(def.Name), cols, strings.Join(marks, ", ")),
	}
}

// Def returns the table definition.
func (t *Table) Def() secondary.TableDef {
	return t.def
}

// Append inserts a row.
func (t *Table) Append(ctx context.Context, row secondary.Row) error {
	if err := t.checkWidth(row); err != nil {
		return t.fail("append", err)
	}
	if _, err := t.db.ExecContext(ctx, t.insertSQL, cellArgs(row)...); err != nil {
		return t.fail("append", err)
	}
	return nil
}

// Scan streams rows in insertion order.
func (t *Table) Scan(ctx context.Context) iter.Seq2[secondary.Row, error] {
	return func(yield func(secondary.Row, error) bool) {
		rows, err := t.db.QueryContext(ctx, t.selectSQL)
		if err != nil {
			yield(nil, t.fail("scan", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			row := make(secondary.Row, len(t.def.Columns))
			dest := make([]any, len(row))
			for i := range row {
				dest[i] = &row[i]
			}
			if err := rows.Scan(dest...); err != nil {
				yield(nil, t.fail("scan", err))
				return
			}
			if !yield(row, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, t.fail("scan", err))
		}
	}
}

// Overwrite replaces every row in one transaction.
func (t *Table) Overwrite(ctx context.Context, rows []secondary.Row) error {
	for _, row := range rows {
		if err := t.checkWidth(row); err != nil {
			return t.fail("overwrite", err)
		}
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return t.fail("overwrite", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", quote(t.def.Name))); err != nil {
		return t.fail("overwrite", err)
	}

	stmt, err := tx.PrepareContext(ctx, t.insertSQL)
	if err != nil {
		return t.fail("overwrite", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, cellArgs(row)...); err != nil {
			return t.fail("overwrite", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return t.fail("overwrite", err)
	}
	return nil
}

// HighWater returns the recorded mark, zero when the table has none yet.
func (t *Table) HighWater(ctx context.Context) (int64, error) {
	var mark int64
	err := t.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT mark FROM %s WHERE table_name = ?", quote(markTable)), t.def.Name,
	).Scan(&mark)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, t.fail("read mark", err)
	}
	return mark, nil
}

// SetHighWater raises the mark to id. A lower id leaves it unchanged.
func (t *Table) SetHighWater(ctx context.Context, id int64) error {
	upsert := fmt.Sprintf(
		"INSERT INTO %s (table_name, mark) VALUES (?, ?) ON CONFLICT(table_name) DO UPDATE SET mark = max(mark, excluded.mark)",
		quote(markTable))
	if _, err := t.db.ExecContext(ctx, upsert, t.def.Name, id); err != nil {
		return t.fail("write mark", err)
	}
	return nil
}

func (t *Table) checkWidth(row secondary.Row) error {
	if len(row) != len(t.def.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.def.Columns))
	}
	return nil
}

func (t *Table) fail(op string, err error) error {
	return &secondary.StorageError{Op: op, Table: t.def.Name, Err: err}
}

// databaseSource snapshots the whole database with VACUUM INTO, which
// produces a consistent copy while other connections keep writing.
type databaseSource struct {
	db   *sql.DB
	path string
}

func (d *databaseSource) Name() string {
	return strings.TrimSuffix(filepath.Base(d.path), filepath.Ext(d.path))
}

func (d *databaseSource) Snapshot(ctx context.Context, dst string) error {
	if _, err := d.db.ExecContext(ctx, "VACUUM INTO ?", dst); err != nil {
		return &secondary.StorageError{Op: "snapshot", Table: d.Name(), Err: err}
	}
	return nil
}

func cellArgs(row secondary.Row) []any {
	args := make([]any, len(row))
	for i, c := range row {
		args[i] = c
	}
	return args
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

var (
	_ secondary.TableStore = (*TableStore)(nil)
	_ secondary.Table      = (*Table)(nil)
)
