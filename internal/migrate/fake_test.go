package migrate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB is an in-memory stand-in for one PostgreSQL database. It serves
// fetches from sources, applies the upsert statements this package renders
// to tables, and answers COUNT(*) from tables.
type fakeDB struct {
	mu sync.Mutex

	sources  map[string]RowSet
	fetchErr map[string]error
	countErr map[string]error
	tables   map[string]map[string]Row

	// failRow, if set, rejects a row before it is staged.
	failRow func(table string, row Row) error
	// failCommit, if set, is checked for each staged row at commit; an
	// error discards the whole transaction.
	failCommit func(table string, row Row) error
	beginErr   error

	begins, commits, rollbacks int
	closed                     bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		sources:  map[string]RowSet{},
		fetchErr: map[string]error{},
		countErr: map[string]error{},
		tables:   map[string]map[string]Row{},
	}
}

var (
	fromTableRE = regexp.MustCompile(`FROM "([^"]+)"`)
	insertRE    = regexp.MustCompile(`^INSERT INTO "([^"]+)" \(([^)]*)\) VALUES \([^)]*\) ON CONFLICT \(([^)]*)\) DO (UPDATE|NOTHING)`)
)

func splitIdents(list string) []string {
	parts := strings.Split(list, ", ")
	for i, p := range parts {
		parts[i] = strings.Trim(p, `"`)
	}
	return parts
}

func (db *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	m := fromTableRE.FindStringSubmatch(sql)
	if m == nil {
		return nil, fmt.Errorf("fake: unsupported query %q", sql)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.fetchErr[m[1]]; err != nil {
		return nil, err
	}
	set := db.sources[m[1]]
	values := make([][]any, len(set.Rows))
	for i, row := range set.Rows {
		vals := make([]any, len(set.Columns))
		for j, c := range set.Columns {
			vals[j] = row[c]
		}
		values[i] = vals
	}
	return &fakeRows{cols: set.Columns, values: values}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	m := fromTableRE.FindStringSubmatch(sql)
	if m == nil {
		return fakeRow{err: fmt.Errorf("fake: unsupported query %q", sql)}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.countErr[m[1]]; err != nil {
		return fakeRow{err: err}
	}
	return fakeRow{n: int64(len(db.tables[m[1]]))}
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.beginErr != nil {
		return nil, db.beginErr
	}
	db.begins++
	return &fakeTx{db: db}, nil
}

func (db *fakeDB) Close() {
	db.mu.Lock()
	db.closed = true
	db.mu.Unlock()
}

func (db *fakeDB) row(table, key string) (Row, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	r, ok := db.tables[table][key]
	return r, ok
}

func (db *fakeDB) seed(table, key string, row Row) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.tables[table] == nil {
		db.tables[table] = map[string]Row{}
	}
	db.tables[table][key] = row
}

func (db *fakeDB) snapshot(table string) map[string]Row {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make(map[string]Row, len(db.tables[table]))
	for k, r := range db.tables[table] {
		cp := make(Row, len(r))
		for c, v := range r {
			cp[c] = v
		}
		out[k] = cp
	}
	return out
}

type stagedWrite struct {
	table string
	key   string
	row   Row
}

type fakeTx struct {
	pgx.Tx
	db     *fakeDB
	staged []stagedWrite
	done   bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m := insertRE.FindStringSubmatch(sql)
	if m == nil {
		return pgconn.CommandTag{}, fmt.Errorf("fake: unsupported statement %q", sql)
	}
	table, cols, keys, action := m[1], splitIdents(m[2]), splitIdents(m[3]), m[4]

	row := make(Row, len(cols))
	for i, c := range cols {
		row[c] = args[i]
	}
	if tx.db.failRow != nil {
		if err := tx.db.failRow(table, row); err != nil {
			return pgconn.CommandTag{}, err
		}
	}

	key := rowKey(row, keys)
	_, exists := tx.db.row(table, key)
	if exists && action == "NOTHING" {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}

	tx.staged = append(tx.staged, stagedWrite{table: table, key: key, row: row})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true

	db := tx.db
	if db.failCommit != nil {
		for _, w := range tx.staged {
			if err := db.failCommit(w.table, w.row); err != nil {
				tx.staged = nil
				return err
			}
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.commits++
	for _, w := range tx.staged {
		if db.tables[w.table] == nil {
			db.tables[w.table] = map[string]Row{}
		}
		db.tables[w.table][w.key] = w.row
	}
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.staged = nil

	tx.db.mu.Lock()
	tx.db.rollbacks++
	tx.db.mu.Unlock()
	return nil
}

type fakeRows struct {
	pgx.Rows
	cols   []string
	values [][]any
	i      int
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.values) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.values[r.i-1], nil }
func (r *fakeRows) Err() error             { return nil }
func (r *fakeRows) Close()                 {}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

type fakeRow struct {
	n   int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	p, ok := dest[0].(*int64)
	if !ok {
		return errors.New("fake: count scans into *int64")
	}
	*p = r.n
	return nil
}

// connector serves fakes by DSN.
func connector(dbs map[string]*fakeDB, errs map[string]error) Connector {
	return func(_ context.Context, dsn string) (Conn, error) {
		if err := errs[dsn]; err != nil {
			return nil, err
		}
		db, ok := dbs[dsn]
		if !ok {
			return nil, fmt.Errorf("fake: unknown dsn %q", dsn)
		}
		return db, nil
	}
}
