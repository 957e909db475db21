package migrate

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Fetch runs query against q and materializes every row. Columns follow the
// order the server reports them in.
func Fetch(ctx context.Context, q Querier, query string, args ...any) (RowSet, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return RowSet{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var set RowSet
	for rows.Next() {
		if set.Columns == nil {
			set.Columns = fieldNames(rows.FieldDescriptions())
		}
		vals, err := rows.Values()
		if err != nil {
			return RowSet{}, fmt.Errorf("read row %d: %w", len(set.Rows)+1, err)
		}
		row := make(Row, len(set.Columns))
		for i, c := range set.Columns {
			if i < len(vals) {
				row[c] = vals[i]
			}
		}
		set.Rows = append(set.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return RowSet{}, fmt.Errorf("iterate rows: %w", err)
	}

	if set.Columns == nil {
		set.Columns = fieldNames(rows.FieldDescriptions())
	}
	return set, nil
}

func fieldNames(fields []pgconn.FieldDescription) []string {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
