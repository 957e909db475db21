package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/nightnice-admin/internal/dberr"
	"github.com/JonMunkholm/nightnice-admin/internal/logging"
	"github.com/jackc/pgx/v5"
)

const rollbackTimeout = 5 * time.Second

// Upserter writes rows one transaction at a time. The zero value applies
// no per-row timeout.
type Upserter struct {
	RowTimeout time.Duration
}

// UpsertRows upserts set into table with a zero-value Upserter.
func UpsertRows(ctx context.Context, db TxBeginner, table string, set RowSet, conflictColumn string) TableResult {
	return (&Upserter{}).UpsertRows(ctx, db, table, set, conflictColumn)
}

// UpsertRelations inserts relation rows with a zero-value Upserter.
func UpsertRelations(ctx context.Context, db TxBeginner, table string, set RowSet, keyColumns []string) TableResult {
	return (&Upserter{}).UpsertRelations(ctx, db, table, set, keyColumns)
}

// UpsertRows inserts each row of set into table, overwriting every other
// column when conflictColumn already exists. Each row commits on its own;
// a failing row is rolled back, logged and counted, and the next row is
// attempted. Committed counts rows whose transaction committed.
func (u *Upserter) UpsertRows(ctx context.Context, db TxBeginner, table string, set RowSet, conflictColumn string) TableResult {
	cols := set.columns()
	query := buildUpsertSQL(table, cols, conflictColumn)
	return u.run(ctx, db, table, set, cols, query, []string{conflictColumn}, false)
}

// UpsertRelations inserts each row of set into a composite-key table. An
// existing key is left untouched and is not an error. Committed counts rows
// actually inserted.
func (u *Upserter) UpsertRelations(ctx context.Context, db TxBeginner, table string, set RowSet, keyColumns []string) TableResult {
	cols := set.columns()
	query := buildRelationSQL(table, cols, keyColumns)
	return u.run(ctx, db, table, set, cols, query, keyColumns, true)
}

func (u *Upserter) run(ctx context.Context, db TxBeginner, table string, set RowSet, cols []string, query string, keys []string, countAffected bool) TableResult {
	logger := logging.WithFields(ctx, "table", table)
	start := time.Now()
	result := TableResult{Table: table, Fetched: set.Len()}

	for i, row := range set.Rows {
		if ctx.Err() != nil {
			logger.Warn("upsert interrupted", "remaining", set.Len()-i)
			break
		}

		args := make([]any, len(cols))
		for j, c := range cols {
			args[j] = row[c]
		}

		affected, err := u.execRow(ctx, db, query, args)
		if err != nil {
			key := rowKey(row, keys)
			code := dberr.Code(err)
			result.Failures = append(result.Failures, RowFailure{
				Key:    key,
				Code:   code,
				Reason: dberr.Detail(err),
				Hint:   dberr.Format(err),
			})
			logger.Error("row upsert failed",
				"row", i+1,
				"key", key,
				"code", code,
				"error", err,
			)
			continue
		}

		if countAffected {
			result.Committed += affected
		} else {
			result.Committed++
		}
	}

	result.Duration = time.Since(start)
	return result
}

// execRow runs query in a fresh transaction and commits it. On any error the
// transaction is rolled back before returning.
func (u *Upserter) execRow(ctx context.Context, db TxBeginner, query string, args []any) (int64, error) {
	if u.RowTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.RowTimeout)
		defer cancel()
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		rollback(ctx, tx)
		return 0, fmt.Errorf("exec: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		rollback(ctx, tx)
		return 0, fmt.Errorf("commit: %w", err)
	}

	return tag.RowsAffected(), nil
}

// rollback aborts tx even when ctx is already done, so the connection goes
// back to the pool clean.
func rollback(ctx context.Context, tx pgx.Tx) {
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logging.FromContext(ctx).Warn("rollback failed", "error", err)
	}
}
