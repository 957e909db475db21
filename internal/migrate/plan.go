package migrate

import (
	"fmt"
	"strings"
)

// TableKind selects the upsert strategy for a table.
type TableKind int

const (
	// KindEntity tables have a single-column primary key; conflicts update
	// every other column.
	KindEntity TableKind = iota
	// KindRelation tables have a composite key; conflicts are no-ops.
	KindRelation
)

func (k TableKind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindRelation:
		return "relation"
	default:
		return fmt.Sprintf("TableKind(%d)", int(k))
	}
}

// TableSpec describes how one table is copied.
type TableSpec struct {
	Name           string // table name, quoted when rendered
	Query          string // source SELECT, including filter and ordering
	Kind           TableKind
	ConflictColumn string   // KindEntity
	KeyColumns     []string // KindRelation
	DependsOn      []string // tables that must be copied earlier
}

// keys returns the columns identifying a row of this table.
func (s TableSpec) keys() []string {
	if s.Kind == KindRelation {
		return s.KeyColumns
	}
	return []string{s.ConflictColumn}
}

// DefaultPlan returns the eight directory tables in dependency order.
// eventsLimit caps the Events fetch.
func DefaultPlan(eventsLimit int) []TableSpec {
	return []TableSpec{
		{
			Name:           "Regions",
			Query:          `SELECT * FROM "Regions" ORDER BY "SortOrder"`,
			ConflictColumn: "Id",
		},
		{
			Name:           "Provinces",
			Query:          `SELECT * FROM "Provinces" ORDER BY "SortOrder"`,
			ConflictColumn: "Id",
			DependsOn:      []string{"Regions"},
		},
		{
			Name:           "Categories",
			Query:          `SELECT * FROM "Categories" ORDER BY "SortOrder"`,
			ConflictColumn: "Id",
		},
		{
			Name:           "Stores",
			Query:          `SELECT * FROM "Stores" WHERE "IsActive" = true ORDER BY "IsFeatured" DESC, "CreatedAt" DESC`,
			ConflictColumn: "Id",
			DependsOn:      []string{"Provinces"},
		},
		{
			Name:       "StoreCategories",
			Query:      `SELECT * FROM "StoreCategories"`,
			Kind:       KindRelation,
			KeyColumns: []string{"StoreId", "CategoryId"},
			DependsOn:  []string{"Stores", "Categories"},
		},
		{
			Name:           "StoreImages",
			Query:          `SELECT * FROM "StoreImages" ORDER BY "SortOrder"`,
			ConflictColumn: "Id",
			DependsOn:      []string{"Stores"},
		},
		{
			Name:           "Advertisements",
			Query:          `SELECT * FROM "Advertisements" WHERE "IsActive" = true AND "EndDate" > CURRENT_TIMESTAMP ORDER BY "Priority" DESC`,
			ConflictColumn: "Id",
		},
		{
			Name:           "Events",
			Query:          fmt.Sprintf(`SELECT * FROM "Events" WHERE "IsActive" = true ORDER BY "StartDate" DESC LIMIT %d`, eventsLimit),
			ConflictColumn: "Id",
			DependsOn:      []string{"Stores"},
		},
	}
}

// ValidatePlan checks that table names are unique, key columns are set for
// each kind, and every dependency is copied before its dependents.
func ValidatePlan(plan []TableSpec) error {
	var errs []string
	seen := make(map[string]bool, len(plan))

	for i, spec := range plan {
		if spec.Name == "" {
			errs = append(errs, fmt.Sprintf("table %d: name is required", i))
			continue
		}
		if seen[spec.Name] {
			errs = append(errs, fmt.Sprintf("%s: listed twice", spec.Name))
		}
		if strings.TrimSpace(spec.Query) == "" {
			errs = append(errs, fmt.Sprintf("%s: query is required", spec.Name))
		}

		switch spec.Kind {
		case KindEntity:
			if spec.ConflictColumn == "" {
				errs = append(errs, fmt.Sprintf("%s: conflict column is required", spec.Name))
			}
		case KindRelation:
			if len(spec.KeyColumns) < 2 {
				errs = append(errs, fmt.Sprintf("%s: relation needs a composite key", spec.Name))
			}
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown kind %s", spec.Name, spec.Kind))
		}

		for _, dep := range spec.DependsOn {
			if !seen[dep] {
				errs = append(errs, fmt.Sprintf("%s: depends on %s, which is not copied earlier", spec.Name, dep))
			}
		}
		seen[spec.Name] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid plan:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// TableNames returns the plan's table names in order.
func TableNames(plan []TableSpec) []string {
	names := make([]string, len(plan))
	for i, s := range plan {
		names[i] = s.Name
	}
	return names
}
