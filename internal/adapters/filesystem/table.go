package filesystem

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/example/shiftdesk/internal/ports/secondary"
)

// TableExt is the file extension of CSV table files.
const TableExt = ".csv"

// SeqExt is the extension of the sidecar holding a table's high-water mark.
const SeqExt = ".seq"

// TableStore implements secondary.TableStore with one CSV file per table.
// The first line of each file is the header.
type TableStore struct {
	dir string

	mu     sync.Mutex
	tables map[string]*CSVTable
}

// NewTableStore creates a CSV table store rooted at dir.
func NewTableStore(dir string) (*TableStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create table directory: %w", err)
	}
	return &TableStore{dir: dir, tables: make(map[string]*CSVTable)}, nil
}

// Open returns the table for def, creating the file with its header if it
// does not exist. A file whose header is a prefix of def.Columns is upgraded
// by padding every row.
func (s *TableStore) Open(ctx context.Context, def secondary.TableDef) (secondary.Table, error) {
	t := &CSVTable{
		def:     def,
		path:    filepath.Join(s.dir, def.Name+TableExt),
		seqPath: filepath.Join(s.dir, def.Name+SeqExt),
	}
	if err := t.ensure(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tables[def.Name] = t
	s.mu.Unlock()
	return t, nil
}

// SnapshotSources returns every opened table, sorted by name.
func (s *TableStore) SnapshotSources() []secondary.SnapshotSource {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	slices.Sort(names)

	sources := make([]secondary.SnapshotSource, 0, len(names))
	for _, name := range names {
		sources = append(sources, s.tables[name])
	}
	return sources
}

// Close is a no-op; table files are opened per operation.
func (s *TableStore) Close() error {
	return nil
}

// CSVTable implements secondary.Table on a single CSV file.
// Every mutation rewrites the file through a temp file and a rename.
type CSVTable struct {
	def     secondary.TableDef
	path    string
	seqPath string
}

// Def returns the table definition.
func (t *CSVTable) Def() secondary.TableDef {
	return t.def
}

// Path returns the table file path.
func (t *CSVTable) Path() string {
	return t.path
}

// Name implements secondary.SnapshotSource.
func (t *CSVTable) Name() string {
	return t.def.Name
}

// Append adds a row at the end of the table.
func (t *CSVTable) Append(ctx context.Context, row secondary.Row) error {
	if err := t.checkWidth(row); err != nil {
		return t.fail("append", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(t.path)
	if err != nil {
		return t.fail("append", err)
	}
	defer src.Close()

	err = writeAtomic(t.path, func(w io.Writer) error {
		var tail tailWriter
		if _, err := io.Copy(io.MultiWriter(w, &tail), src); err != nil {
			return fmt.Errorf("copy existing rows: %w", err)
		}
		// Hand-edited files may lack the final newline.
		if tail.last != 0 && tail.last != '\n' {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(row); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return t.fail("append", err)
	}
	return nil
}

// Scan returns a lazy sequence over the rows currently in the file.
// Short rows are padded to the column count.
func (t *CSVTable) Scan(ctx context.Context) iter.Seq2[secondary.Row, error] {
	return func(yield func(secondary.Row, error) bool) {
		f, err := os.Open(t.path)
		if err != nil {
			yield(nil, t.fail("scan", err))
			return
		}
		defer f.Close()

		r := newReader(f)
		header, err := r.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			yield(nil, t.fail("scan", err))
			return
		}
		if !slices.Equal(header, t.def.Columns) {
			yield(nil, t.fail("scan", fmt.Errorf("unexpected header %v", header)))
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			record, err := r.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, t.fail("scan", err))
				return
			}
			row, err := t.normalize(record)
			if err != nil {
				yield(nil, t.fail("scan", err))
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Overwrite replaces every row of the table.
func (t *CSVTable) Overwrite(ctx context.Context, rows []secondary.Row) error {
	for _, row := range rows {
		if err := t.checkWidth(row); err != nil {
			return t.fail("overwrite", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeAtomic(t.path, t.writeRows(rows)); err != nil {
		return t.fail("overwrite", err)
	}
	return nil
}

// HighWater reads the table's sidecar mark. A missing sidecar reads as zero.
func (t *CSVTable) HighWater(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(t.seqPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, t.fail("read mark", err)
	}
	mark, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, t.fail("read mark", fmt.Errorf("corrupt %s: %w", filepath.Base(t.seqPath), err))
	}
	return mark, nil
}

// SetHighWater rewrites the sidecar when id is above the current mark.
func (t *CSVTable) SetHighWater(ctx context.Context, id int64) error {
	current, err := t.HighWater(ctx)
	if err != nil {
		return err
	}
	if id <= current {
		return nil
	}
	err = writeAtomic(t.seqPath, func(w io.Writer) error {
		_, err := io.WriteString(w, strconv.FormatInt(id, 10)+"\n")
		return err
	})
	if err != nil {
		return t.fail("write mark", err)
	}
	return nil
}

// Snapshot copies the table file to dst. dst must not exist.
func (t *CSVTable) Snapshot(ctx context.Context, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(t.path)
	if err != nil {
		return t.fail("snapshot", err)
	}
	defer src.Close()

	created, err := createExclusive(dst, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
	if err != nil {
		return t.fail("snapshot", err)
	}
	if !created {
		return t.fail("snapshot", fmt.Errorf("%s already exists", dst))
	}
	return nil
}

// ensure creates the file or upgrades an older header.
func (t *CSVTable) ensure(ctx context.Context) error {
	header, err := t.readHeader()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if _, err := createExclusive(t.path, t.writeRows(nil)); err != nil {
			return t.fail("open", err)
		}
		return nil
	case errors.Is(err, io.EOF):
		// Empty file left by an interrupted tool: give it a header.
		return t.Overwrite(ctx, nil)
	case err != nil:
		return t.fail("open", err)
	}

	switch {
	case slices.Equal(header, t.def.Columns):
		return nil
	case len(header) < len(t.def.Columns) && slices.Equal(header, t.def.Columns[:len(header)]):
		return t.upgrade(ctx, len(header))
	default:
		return t.fail("open", fmt.Errorf("header %v does not match columns %v", header, t.def.Columns))
	}
}

// upgrade rewrites a file written with the first width columns only.
func (t *CSVTable) upgrade(ctx context.Context, width int) error {
	f, err := os.Open(t.path)
	if err != nil {
		return t.fail("upgrade", err)
	}
	defer f.Close()

	r := newReader(f)
	if _, err := r.Read(); err != nil {
		return t.fail("upgrade", err)
	}
	records, err := r.ReadAll()
	if err != nil {
		return t.fail("upgrade", err)
	}

	rows := make([]secondary.Row, 0, len(records))
	for _, record := range records {
		if len(record) > width {
			return t.fail("upgrade", fmt.Errorf("row %v wider than header", record))
		}
		row, err := t.normalize(record)
		if err != nil {
			return t.fail("upgrade", err)
		}
		rows = append(rows, row)
	}
	return t.Overwrite(ctx, rows)
}

func (t *CSVTable) readHeader() ([]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return newReader(f).Read()
}

func (t *CSVTable) writeRows(rows []secondary.Row) func(w io.Writer) error {
	return func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.def.Columns); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
}

func (t *CSVTable) normalize(record []string) (secondary.Row, error) {
	n := len(t.def.Columns)
	if len(record) > n {
		return nil, fmt.Errorf("row has %d cells, table has %d columns", len(record), n)
	}
	row := make(secondary.Row, n)
	copy(row, record)
	return row, nil
}

func (t *CSVTable) checkWidth(row secondary.Row) error {
	if len(row) != len(t.def.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.def.Columns))
	}
	return nil
}

func (t *CSVTable) fail(op string, err error) error {
	return &secondary.StorageError{Op: op, Table: t.def.Name, Err: err}
}

// tailWriter remembers the last byte written through it.
type tailWriter struct {
	last byte
}

func (tw *tailWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		tw.last = p[len(p)-1]
	}
	return len(p), nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

var (
	_ secondary.TableStore     = (*TableStore)(nil)
	_ secondary.Table          = (*CSVTable)(nil)
	_ secondary.SnapshotSource = (*CSVTable)(nil)
)
