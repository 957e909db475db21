package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type fakeExecer struct {
	calls int
	exec  func(sql string) (pgconn.CommandTag, error)
}

func (f *fakeExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.calls++
	return f.exec(sql)
}

func TestApply(t *testing.T) {
	recs := sampleRecords()
	recs = append(recs, StoreRecord{
		ID:       "33333333-3333-4333-8333-333333333333",
		Province: "กรุงเทพมหานคร",
		Name:     "Broken",
		Slug:     "broken",
		Category: "bar",
	})

	db := &fakeExecer{exec: func(sql string) (pgconn.CommandTag, error) {
		switch {
		case strings.Contains(sql, "'Broken'"):
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		case strings.Contains(sql, "ไม่มีจังหวัดนี้"):
			return pgconn.NewCommandTag("INSERT 0 0"), nil
		case strings.Contains(sql, `"StoreCategories"`) && !strings.Contains(sql, "11111111"):
			return pgconn.NewCommandTag("INSERT 0 0"), nil
		default:
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		}
	}}

	res := Apply(context.Background(), db, BuildStatements(recs), time.Second)

	if db.calls != 6 {
		t.Errorf("calls = %d, want every statement attempted", db.calls)
	}
	if res.StoresInserted != 1 || res.StoresOrphaned != 1 {
		t.Errorf("inserted=%d orphaned=%d, want 1/1", res.StoresInserted, res.StoresOrphaned)
	}
	if res.LinksInserted != 1 || res.LinksSkipped != 2 {
		t.Errorf("links inserted=%d skipped=%d, want 1/2", res.LinksInserted, res.LinksSkipped)
	}
	if len(res.Failures) != 1 || res.Failures[0].Code != "DB001" || res.Failures[0].Kind != StoreInsert {
		t.Errorf("failures = %+v", res.Failures)
	}
	if len(res.Failures) == 1 && !strings.Contains(res.Failures[0].Hint, "(Code: DB001)") {
		t.Errorf("Hint = %q", res.Failures[0].Hint)
	}
}

func TestApply_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	db := &fakeExecer{exec: func(string) (pgconn.CommandTag, error) {
		cancel()
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}}

	res := Apply(ctx, db, BuildStatements(sampleRecords()), 0)
	if db.calls != 1 || res.StoresInserted != 1 {
		t.Errorf("calls=%d inserted=%d, want to stop after the first statement", db.calls, res.StoresInserted)
	}
}

func TestApply_Timeout(t *testing.T) {
	db := &fakeExecer{exec: func(string) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("timeout: context deadline exceeded")
	}}

	res := Apply(context.Background(), db, BuildStatements(sampleRecords()[:1]), time.Millisecond)
	if len(res.Failures) != 2 || res.Failures[0].Code != "DB006" {
		t.Errorf("failures = %+v", res.Failures)
	}
}
