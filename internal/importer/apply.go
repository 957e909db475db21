package importer

import (
	"context"
	"time"

	"github.com/JonMunkholm/nightnice-admin/internal/dberr"
	"github.com/JonMunkholm/nightnice-admin/internal/logging"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement outside any explicit transaction.
// Satisfied by *pgxpool.Pool and *pgx.Conn.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// StatementFailure records one statement that errored.
type StatementFailure struct {
	RecordID string
	Kind     StatementKind
	Code     string
	Reason   string
	Hint     string // dberr.Format: message, code and suggested action
}

// ApplyResult counts the outcome of executing a script.
type ApplyResult struct {
	StoresInserted int
	StoresOrphaned int // no matching province; nothing inserted
	LinksInserted  int
	LinksSkipped   int // category or store missing
	Failures       []StatementFailure
}

// Apply executes stmts one at a time, each committing on its own. A failed
// statement is logged and counted and the rest still run. A cancelled ctx
// stops before the next statement.
func Apply(ctx context.Context, db Execer, stmts []Statement, timeout time.Duration) ApplyResult {
	logger := logging.FromContext(ctx)
	var res ApplyResult

	for _, stmt := range stmts {
		if ctx.Err() != nil {
			logger.Warn("apply interrupted", "remaining", len(stmts)-res.total())
			break
		}

		affected, err := execOne(ctx, db, stmt.SQL, timeout)
		if err != nil {
			code := dberr.Code(err)
			res.Failures = append(res.Failures, StatementFailure{
				RecordID: stmt.RecordID,
				Kind:     stmt.Kind,
				Code:     code,
				Reason:   dberr.Detail(err),
				Hint:     dberr.Format(err),
			})
			logger.Error("statement failed",
				"kind", stmt.Kind.String(),
				"key", stmt.RecordID,
				"code", code,
				"error", err,
			)
			continue
		}

		switch {
		case stmt.Kind == StoreInsert && affected > 0:
			res.StoresInserted++
		case stmt.Kind == StoreInsert:
			res.StoresOrphaned++
		case affected > 0:
			res.LinksInserted++
		default:
			res.LinksSkipped++
		}
	}

	return res
}

func (r ApplyResult) total() int {
	return r.StoresInserted + r.StoresOrphaned + r.LinksInserted + r.LinksSkipped + len(r.Failures)
}

func execOne(ctx context.Context, db Execer, sql string, timeout time.Duration) (int64, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	tag, err := db.Exec(ctx, sql)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
