package migrate

import (
	"fmt"
	"strings"
)

// quoteIdentifier double-quotes a table or column name, doubling any
// embedded quotes. Mixed-case names like "StoreId" need this.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ph, ", ")
}

// buildUpsertSQL renders an insert that overwrites every non-conflict
// column with the incoming value on conflict. When the conflict column is
// the only column the update degenerates to DO NOTHING.
func buildUpsertSQL(table string, columns []string, conflictColumn string) string {
	var sets []string
	for _, c := range columns {
		if c == conflictColumn {
			continue
		}
		q := quoteIdentifier(c)
		sets = append(sets, q+" = EXCLUDED."+q)
	}

	action := "NOTHING"
	if len(sets) > 0 {
		action = "UPDATE SET " + strings.Join(sets, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO %s",
		quoteIdentifier(table),
		quoteList(columns),
		placeholders(len(columns)),
		quoteIdentifier(conflictColumn),
		action,
	)
}

// buildRelationSQL renders an insert that is a no-op when the composite
// key already exists.
func buildRelationSQL(table string, columns, keyColumns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		quoteIdentifier(table),
		quoteList(columns),
		placeholders(len(columns)),
		quoteList(keyColumns),
	)
}

func countSQL(table string) string {
	return "SELECT COUNT(*) FROM " + quoteIdentifier(table)
}
