package importer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Image extensions in lookup order.
var imageExtensions = []string{"jpg", "jpeg", "png", "webp"}

// ImageResolver finds banner images on disk and copies them into the
// uploads tree. Files are named "<row+1> <sheet label>.<ext>" inside a
// folder named after the sheet under one of Roots.
type ImageResolver struct {
	Roots      []string
	UploadsDir string
	URLPrefix  string // web path of UploadsDir, e.g. "/uploads/stores"

	copied  int
	skipped int
}

// NewImageResolver returns a resolver searching roots in order.
func NewImageResolver(roots []string, uploadsDir, urlPrefix string) *ImageResolver {
	return &ImageResolver{
		Roots:      roots,
		UploadsDir: uploadsDir,
		URLPrefix:  strings.TrimRight(urlPrefix, "/"),
	}
}

// candidateNames lists file names for a row in match order: pattern-major,
// extension-minor.
func candidateNames(label string, rowIndex int) []string {
	n := strconv.Itoa(rowIndex + 1)
	stems := []string{
		n + " " + label,
		n + "  " + label,
		n + " " + strings.TrimSpace(label),
	}

	names := make([]string, 0, len(stems)*len(imageExtensions))
	for _, stem := range stems {
		for _, ext := range imageExtensions {
			names = append(names, stem+"."+ext)
		}
	}
	return names
}

// Resolve returns the first existing image for row rowIndex of the sheet
// labelled label. Roots are tried in order, then name patterns, then
// extensions. A missing image is not an error.
func (r *ImageResolver) Resolve(label string, rowIndex int) (string, bool) {
	names := candidateNames(label, rowIndex)

	for _, root := range r.Roots {
		dir := filepath.Join(root, label)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		for _, name := range names {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				return p, true
			}
		}
	}
	return "", false
}

// CopyBanner copies src to <UploadsDir>/<recordID>/banner<ext> and returns
// its web path. An existing destination with identical content is left
// alone.
func (r *ImageResolver) CopyBanner(src, recordID string) (string, error) {
	ext := filepath.Ext(src)
	name := "banner" + ext
	dir := filepath.Join(r.UploadsDir, recordID)
	dst := filepath.Join(dir, name)
	webPath := r.URLPrefix + "/" + recordID + "/" + name

	same, err := sameContent(src, dst)
	if err != nil {
		return "", err
	}
	if same {
		r.skipped++
		return webPath, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := copyFile(src, dst); err != nil {
		return "", err
	}

	r.copied++
	return webPath, nil
}

// Copied returns how many files were written.
func (r *ImageResolver) Copied() int { return r.copied }

// Skipped returns how many copies were skipped because the destination
// already matched.
func (r *ImageResolver) Skipped() int { return r.skipped }

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create banner: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy image: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close banner: %w", err)
	}
	return nil
}

// sameContent reports whether dst exists with the same size and xxh3
// digest as src.
func sameContent(src, dst string) (bool, error) {
	dstInfo, err := os.Stat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat banner: %w", err)
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat image: %w", err)
	}
	if srcInfo.Size() != dstInfo.Size() {
		return false, nil
	}

	a, err := fileDigest(src)
	if err != nil {
		return false, err
	}
	b, err := fileDigest(dst)
	if err != nil {
		return false, err
	}
	return a == b, nil
}

func fileDigest(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum64(), nil
}
