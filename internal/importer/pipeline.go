// Package importer turns the venue workbook into an SQL import script.
//
// Each sheet is one province. Every row with a Name becomes a StoreRecord
// with a fresh id, a run-unique slug, a canonical category and, when one is
// found on disk, a banner image copied into the uploads tree. The script
// inserts stores through a join on "Provinces", so a sheet whose label
// matches no province yields orphaned inserts that add nothing.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/JonMunkholm/nightnice-admin/internal/catalog"
	"github.com/JonMunkholm/nightnice-admin/internal/config"
	"github.com/JonMunkholm/nightnice-admin/internal/database"
	"github.com/JonMunkholm/nightnice-admin/internal/logging"
	"github.com/google/uuid"
)

// Summary reports what an import run produced.
type Summary struct {
	Sheets           int
	Rows             int // data rows seen, blank ones included
	Skipped          int // rows without a Name
	Records          int
	BannersFound     int
	BannersCopied    int
	BannersUnchanged int
	BannerErrors     int
	UnknownProvinces []string
	Categories       map[string]int
	OutputPath       string
	Apply            *ApplyResult
}

// CategoryCounts returns per-category record counts sorted by slug.
func (s *Summary) CategoryCounts() []string {
	slugs := make([]string, 0, len(s.Categories))
	for slug := range s.Categories {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	out := make([]string, len(slugs))
	for i, slug := range slugs {
		out[i] = fmt.Sprintf("%s=%d", slug, s.Categories[slug])
	}
	return out
}

// Builder turns sheets into records. A Builder owns its slug registry, so
// one Builder serves exactly one run.
type Builder struct {
	Images *ImageResolver // nil disables banner lookup
	NewID  func() string

	slugs *catalog.SlugRegistry
}

// NewBuilder returns a Builder using random UUIDs.
func NewBuilder(images *ImageResolver) *Builder {
	return &Builder{
		Images: images,
		NewID:  uuid.NewString,
		slugs:  catalog.NewSlugRegistry(),
	}
}

// Build converts every non-blank row of every sheet into a StoreRecord, in
// sheet order then row order.
func (b *Builder) Build(ctx context.Context, sheets []Sheet) ([]StoreRecord, *Summary, error) {
	summary := &Summary{Categories: make(map[string]int)}
	var records []StoreRecord

	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return records, summary, fmt.Errorf("import interrupted at sheet %q: %w", sheet.Name, err)
		}

		logger := logging.WithFields(ctx, "sheet", sheet.Name)
		summary.Sheets++
		summary.Rows += len(sheet.Rows)

		province := catalog.MapProvince(sheet.Name)
		if !catalog.IsKnownProvince(sheet.Name) {
			logger.Warn("sheet label is not a known province; its stores will not be inserted",
				"province", province)
			summary.UnknownProvinces = append(summary.UnknownProvinces, sheet.Name)
		}

		if !sheet.Header.Has(ColName) {
			logger.Warn("sheet has no Name column, skipping", "rows", len(sheet.Rows))
			summary.Skipped += len(sheet.Rows)
			continue
		}

		before := len(records)
		for i, row := range sheet.Rows {
			rec, ok := b.record(ctx, sheet, province, i, row, summary)
			if !ok {
				summary.Skipped++
				continue
			}
			records = append(records, rec)
			summary.Categories[rec.Category]++
		}

		logger.Info("sheet processed", "province", province, "stores", len(records)-before)
	}

	summary.Records = len(records)
	if b.Images != nil {
		summary.BannersCopied = b.Images.Copied()
		summary.BannersUnchanged = b.Images.Skipped()
	}
	return records, summary, nil
}

func (b *Builder) record(ctx context.Context, sheet Sheet, province string, i int, row []string, summary *Summary) (StoreRecord, bool) {
	h := sheet.Header
	name := h.Get(row, ColName)
	if name == "" {
		return StoreRecord{}, false
	}

	rec := StoreRecord{
		ID:           b.NewID(),
		Province:     province,
		Sheet:        sheet.Name,
		Row:          i,
		Name:         name,
		Slug:         b.slugs.Assign(name),
		Description:  optionalText(h.Get(row, ColDescription)),
		Phone:        optionalText(h.Get(row, ColPhone)),
		Address:      optionalText(h.Get(row, ColAddress)),
		Latitude:     parseCoordinate(h.Get(row, ColLatitude)),
		Longitude:    parseCoordinate(h.Get(row, ColLongitude)),
		GoogleMapURL: optionalText(h.Get(row, ColGoogleMap)),
		LineID:       optionalText(h.Get(row, ColLine)),
		Category:     catalog.MapCategory(h.Get(row, ColType)),
	}

	if b.Images != nil {
		if src, ok := b.Images.Resolve(sheet.Name, i); ok {
			summary.BannersFound++
			webPath, err := b.Images.CopyBanner(src, rec.ID)
			if err != nil {
				summary.BannerErrors++
				logging.WithFields(ctx, "sheet", sheet.Name, "row", i+1).
					Error("banner copy failed; store kept without banner", "src", src, "error", err)
			} else {
				rec.BannerURL = &webPath
			}
		}
	}

	return rec, true
}

// Run reads the configured workbook, writes the SQL script and, when
// cfg.Apply is set, executes it. Only setup and I/O failures are returned
// as errors.
func Run(ctx context.Context, cfg *config.ImportConfig) (*Summary, error) {
	logger := logging.FromContext(ctx)

	logger.Info("reading workbook", "path", cfg.Workbook)
	sheets, err := OpenWorkbook(cfg.Workbook)
	if err != nil {
		return nil, err
	}

	images := NewImageResolver(cfg.ImageRoots, cfg.UploadsDir, cfg.UploadsURLPrefix)
	records, summary, err := NewBuilder(images).Build(ctx, sheets)
	if err != nil {
		return summary, err
	}
	logger.Info("records built", "stores", len(records), "banners", summary.BannersFound)

	stmts := BuildStatements(records)
	if err := writeScript(cfg.OutputSQL, stmts); err != nil {
		return summary, err
	}
	summary.OutputPath = cfg.OutputSQL
	logger.Info("script written", "path", cfg.OutputSQL, "statements", len(stmts))

	if !cfg.Apply {
		return summary, nil
	}

	pool, err := database.Open(ctx, cfg.DatabaseURL, cfg.Database)
	if err != nil {
		return summary, fmt.Errorf("open %s: %w", database.Describe(cfg.DatabaseURL), err)
	}
	defer pool.Close()

	logger.Info("applying script", "database", database.Describe(cfg.DatabaseURL))
	res := Apply(ctx, pool, stmts, cfg.StatementTimeout)
	summary.Apply = &res

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("apply interrupted: %w", err)
	}
	return summary, nil
}

func writeScript(path string, stmts []Statement) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create script: %w", err)
	}

	emitter := &Emitter{Generator: "importstores"}
	if err := emitter.WriteStatements(f, stmts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close script: %w", err)
	}
	return nil
}
