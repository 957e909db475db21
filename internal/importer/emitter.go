package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column length limits in the Stores table.
const (
	maxNameLen      = 200
	maxSlugLen      = 200
	maxPhoneLen     = 20
	maxGoogleMapLen = 500
	maxLineIDLen    = 100
	maxBannerLen    = 500
)

// StatementKind tells store inserts from category links.
type StatementKind int

const (
	StoreInsert StatementKind = iota
	CategoryLink
)

func (k StatementKind) String() string {
	switch k {
	case StoreInsert:
		return "store"
	case CategoryLink:
		return "category"
	default:
		return fmt.Sprintf("StatementKind(%d)", int(k))
	}
}

// Statement is one generated SQL statement, terminated by ";".
type Statement struct {
	RecordID string
	Kind     StatementKind
	SQL      string
}

// QuoteLiteral renders value as a SQL string literal. nil yields NULL. The
// value is truncated to maxLen runes (0 = unlimited) before quotes are
// doubled, so the literal always parses back to the truncated value.
func QuoteLiteral(value *string, maxLen int) string {
	if value == nil {
		return "NULL"
	}
	s := *value
	if maxLen > 0 {
		if r := []rune(s); len(r) > maxLen {
			s = string(r[:maxLen])
		}
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ParseLiteral reverses QuoteLiteral.
func ParseLiteral(lit string) (*string, error) {
	if lit == "NULL" {
		return nil, nil
	}
	if len(lit) < 2 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return nil, fmt.Errorf("not a string literal: %q", lit)
	}

	body := lit[1 : len(lit)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\'' {
			if i+1 >= len(body) || body[i+1] != '\'' {
				return nil, errors.New("unescaped quote in literal")
			}
			i++
		}
		b.WriteByte(body[i])
	}

	s := b.String()
	return &s, nil
}

func quote(s string) string { return QuoteLiteral(&s, 0) }

// formatCoordinate renders a coordinate as a bare decimal, NULL when absent
// or zero.
func formatCoordinate(v *float64) string {
	if v == nil || *v == 0 {
		return "NULL"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

const storeInsertSQL = `INSERT INTO "Stores" ("Id", "ProvinceId", "Name", "Slug", "Description", "Phone", "Address", "Latitude", "Longitude", "GoogleMapUrl", "LineId", "BannerUrl", "IsActive", "IsFeatured", "Facilities", "CreatedAt", "UpdatedAt")
SELECT
    %s::uuid,
    p."Id",
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    true,
    false,
    ARRAY[]::text[],
    NOW(),
    NOW()
FROM "Provinces" p
WHERE p."Name" = %s;`

const categoryLinkSQL = `INSERT INTO "StoreCategories" ("StoreId", "CategoryId")
SELECT %s::uuid, c."Id"
FROM "Categories" c
WHERE c."Slug" = %s
AND EXISTS (SELECT 1 FROM "Stores" WHERE "Id" = %s::uuid);`

func storeStatement(rec StoreRecord) Statement {
	name, slug := rec.Name, rec.Slug
	return Statement{
		RecordID: rec.ID,
		Kind:     StoreInsert,
		SQL: fmt.Sprintf(storeInsertSQL,
			quote(rec.ID),
			QuoteLiteral(&name, maxNameLen),
			QuoteLiteral(&slug, maxSlugLen),
			QuoteLiteral(rec.Description, 0),
			QuoteLiteral(rec.Phone, maxPhoneLen),
			QuoteLiteral(rec.Address, 0),
			formatCoordinate(rec.Latitude),
			formatCoordinate(rec.Longitude),
			QuoteLiteral(rec.GoogleMapURL, maxGoogleMapLen),
			QuoteLiteral(rec.LineID, maxLineIDLen),
			QuoteLiteral(rec.BannerURL, maxBannerLen),
			quote(rec.Province),
		),
	}
}

func categoryStatement(rec StoreRecord) Statement {
	return Statement{
		RecordID: rec.ID,
		Kind:     CategoryLink,
		SQL:      fmt.Sprintf(categoryLinkSQL, quote(rec.ID), quote(rec.Category), quote(rec.ID)),
	}
}

// BuildStatements returns every store insert followed by every category
// link, in record order.
func BuildStatements(records []StoreRecord) []Statement {
	stmts := make([]Statement, 0, 2*len(records))
	for _, rec := range records {
		stmts = append(stmts, storeStatement(rec))
	}
	for _, rec := range records {
		stmts = append(stmts, categoryStatement(rec))
	}
	return stmts
}

// Emitter writes the import script. The script has no surrounding
// transaction; each statement stands alone.
type Emitter struct {
	Generator string // named in the header comment
}

// Write renders records as a SQL script to w.
func (e *Emitter) Write(w io.Writer, records []StoreRecord) error {
	return e.WriteStatements(w, BuildStatements(records))
}

// WriteStatements renders already-built statements as a SQL script to w.
func (e *Emitter) WriteStatements(w io.Writer, stmts []Statement) error {
	generator := e.Generator
	if generator == "" {
		generator = "importstores"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- Auto-generated store import SQL\n-- Generated by %s\n\n", generator)
	fmt.Fprint(bw, "-- No transaction to allow partial success\n\n")

	fmt.Fprint(bw, "-- Insert stores\n")
	for _, s := range stmts {
		if s.Kind == StoreInsert {
			fmt.Fprintf(bw, "\n%s\n", s.SQL)
		}
	}

	fmt.Fprint(bw, "\n-- Insert store categories\n")
	for _, s := range stmts {
		if s.Kind == CategoryLink {
			fmt.Fprintf(bw, "\n%s\n", s.SQL)
		}
	}

	fmt.Fprint(bw, "\n-- Done\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}
