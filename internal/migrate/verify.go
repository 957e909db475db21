package migrate

import (
	"context"
	"fmt"
)

// Verify counts rows in each destination table. A failed count is recorded
// on its entry and does not stop the pass.
func Verify(ctx context.Context, q Querier, tables []string) []TableCount {
	counts := make([]TableCount, 0, len(tables))
	for _, table := range tables {
		tc := TableCount{Table: table}
		if err := q.QueryRow(ctx, countSQL(table)).Scan(&tc.Count); err != nil {
			tc.Count = -1
			tc.Err = fmt.Errorf("count %s: %w", table, err)
		}
		counts = append(counts, tc)
	}
	return counts
}
