// Package migrate copies a fixed set of tables from a remote PostgreSQL
// database into a local one.
//
// Every row is upserted in its own transaction, so a bad row is rolled back
// and skipped without touching rows committed before it. A run always
// reaches the final verification pass and reports what it managed to copy.
//
// # Flow
//
//  1. [Runner.Run] connects to both databases; failure here is fatal.
//  2. For each [TableSpec] in plan order: [Fetch] from the remote, then
//     [Upserter.UpsertRows] or [Upserter.UpsertRelations] into the local.
//  3. [Verify] counts destination rows per table.
package migrate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier runs read-only statements. Satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner starts transactions. Satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Conn is one side of a migration.
type Conn interface {
	Querier
	TxBeginner
	Close()
}

// Connector opens a Conn for a connection string.
type Connector func(ctx context.Context, dsn string) (Conn, error)

// Row is one source row keyed by column name.
type Row map[string]any

// RowSet is a fetched result: rows plus the column order the source reported.
type RowSet struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (s RowSet) Len() int { return len(s.Rows) }

// columns returns the insert column list: the reported order when known,
// otherwise the sorted keys of the first row.
func (s RowSet) columns() []string {
	if len(s.Columns) > 0 {
		return s.Columns
	}
	if len(s.Rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(s.Rows[0]))
	for c := range s.Rows[0] {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// RowFailure describes one row that could not be upserted.
type RowFailure struct {
	Key    string // key column value(s), "|" separated
	Code   string // dberr code
	Reason string
	Hint   string // dberr.Format: message, code and suggested action
}

// TableResult is the outcome of copying one table.
type TableResult struct {
	Table     string
	Fetched   int   // rows read from the remote
	Committed int64 // rows committed locally (relations: rows actually inserted)
	Failures  []RowFailure
	Err       error // fetch failure; the table was skipped
	Duration  time.Duration
}

// Attempted returns how many rows an upsert was tried for.
func (r TableResult) Attempted() int {
	if r.Err != nil {
		return 0
	}
	return r.Fetched
}

// Partial reports whether some rows failed or the table was skipped.
func (r TableResult) Partial() bool {
	return r.Err != nil || len(r.Failures) > 0
}

// TableCount is a destination row count from the verification pass.
type TableCount struct {
	Table string
	Count int64
	Err   error
}

// Summary aggregates a whole run.
type Summary struct {
	Tables   []TableResult
	Counts   []TableCount
	Duration time.Duration
}

// TotalFetched is the number of records processed across all tables.
func (s *Summary) TotalFetched() int {
	n := 0
	for _, t := range s.Tables {
		n += t.Fetched
	}
	return n
}

// TotalCommitted sums committed rows across tables.
func (s *Summary) TotalCommitted() int64 {
	var n int64
	for _, t := range s.Tables {
		n += t.Committed
	}
	return n
}

// TotalFailed sums failed rows across tables.
func (s *Summary) TotalFailed() int {
	n := 0
	for _, t := range s.Tables {
		n += len(t.Failures)
	}
	return n
}

// Partial reports whether any table was skipped or had failed rows.
func (s *Summary) Partial() bool {
	for _, t := range s.Tables {
		if t.Partial() {
			return true
		}
	}
	return false
}

// rowKey renders the key column values of row for logs.
func rowKey(row Row, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = keyValue(row[k])
	}
	return strings.Join(parts, "|")
}

// keyValue formats one key value. pgx decodes uuid columns into [16]byte.
func keyValue(v any) string {
	switch v := v.(type) {
	case [16]byte:
		return uuid.UUID(v).String()
	case uuid.UUID:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
