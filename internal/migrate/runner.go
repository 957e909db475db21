package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/nightnice-admin/internal/logging"
	"golang.org/x/sync/errgroup"
)

// State is the runner's position in a run.
type State int

const (
	StateNotStarted State = iota
	StateConnectedBoth
	StateFetching
	StateUpserting
	StateVerified
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateConnectedBoth:
		return "connected_both"
	case StateFetching:
		return "fetching"
	case StateUpserting:
		return "upserting"
	case StateVerified:
		return "verified"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Runner copies a plan of tables from RemoteURL to LocalURL.
type Runner struct {
	Connect   Connector
	RemoteURL string
	LocalURL  string
	Plan      []TableSpec
	Upserter  Upserter

	// OnState, if set, observes every transition. table is empty outside
	// the per-table states.
	OnState func(table string, s State)

	mu    sync.Mutex
	state State
}

// State returns the current state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(table string, s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()

	if r.OnState != nil {
		r.OnState(table, s)
	}
}

// Run connects to both databases, copies every table in the plan and
// verifies destination counts. Only a connect failure, an invalid plan or
// cancellation returns an error; per-table and per-row problems are
// recorded in the Summary. Both connections are closed before returning.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	if err := ValidatePlan(r.Plan); err != nil {
		r.setState("", StateFailed)
		return nil, err
	}

	remote, local, err := r.connectBoth(ctx)
	if err != nil {
		r.setState("", StateFailed)
		return nil, err
	}
	defer func() {
		remote.Close()
		local.Close()
		r.setState("", StateClosed)
	}()
	r.setState("", StateConnectedBoth)
	logger.Info("connected to both databases")

	summary := &Summary{}
	for _, spec := range r.Plan {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("migration interrupted before %s: %w", spec.Name, err)
		}
		summary.Tables = append(summary.Tables, r.copyTable(ctx, remote, local, spec, logger))
	}

	summary.Counts = Verify(ctx, local, TableNames(r.Plan))
	for _, c := range summary.Counts {
		if c.Err != nil {
			logger.Warn("verification count failed", "table", c.Table, "error", c.Err)
		}
	}
	summary.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("migration interrupted: %w", err)
	}
	return summary, nil
}

func (r *Runner) copyTable(ctx context.Context, remote Querier, local TxBeginner, spec TableSpec, logger *slog.Logger) TableResult {
	start := time.Now()

	r.setState(spec.Name, StateFetching)
	set, err := Fetch(ctx, remote, spec.Query)
	if err != nil {
		logger.Error("fetch failed, skipping table", "table", spec.Name, "error", err)
		return TableResult{Table: spec.Name, Err: err, Duration: time.Since(start)}
	}
	logger.Info("fetched", "table", spec.Name, "rows", set.Len())

	r.setState(spec.Name, StateUpserting)
	var result TableResult
	switch spec.Kind {
	case KindRelation:
		result = r.Upserter.UpsertRelations(ctx, local, spec.Name, set, spec.KeyColumns)
	default:
		result = r.Upserter.UpsertRows(ctx, local, spec.Name, set, spec.ConflictColumn)
	}
	result.Duration = time.Since(start)

	r.setState(spec.Name, StateVerified)
	logger.Info("table copied",
		"table", spec.Name,
		"fetched", result.Fetched,
		"committed", result.Committed,
		"failed", len(result.Failures),
		"duration", result.Duration.Round(time.Millisecond),
	)
	return result
}

// connectBoth opens the remote and local connections concurrently. If
// either fails, whichever succeeded is closed.
func (r *Runner) connectBoth(ctx context.Context) (remote, local Conn, err error) {
	if r.Connect == nil {
		return nil, nil, fmt.Errorf("no connector configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := r.Connect(gctx, r.RemoteURL)
		if err != nil {
			return fmt.Errorf("connect remote: %w", err)
		}
		remote = c
		return nil
	})
	g.Go(func() error {
		c, err := r.Connect(gctx, r.LocalURL)
		if err != nil {
			return fmt.Errorf("connect local: %w", err)
		}
		local = c
		return nil
	})

	if err := g.Wait(); err != nil {
		if remote != nil {
			remote.Close()
		}
		if local != nil {
			local.Close()
		}
		return nil, nil, err
	}
	return remote, local, nil
}
