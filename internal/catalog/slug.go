package catalog

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength is the rune limit applied before any uniqueness suffix.
const MaxSlugLength = 100

// PlaceholderSlug replaces names that contain no usable characters.
const PlaceholderSlug = "store"

// SlugRegistry tracks slugs handed out during one generation run.
// The zero value is not usable; call NewSlugRegistry.
type SlugRegistry struct {
	seen map[string]struct{}
}

// NewSlugRegistry returns an empty registry.
func NewSlugRegistry() *SlugRegistry {
	return &SlugRegistry{seen: make(map[string]struct{})}
}

// Assign derives a slug from name, suffixes it with -1, -2, ... until it is
// unused in this run, registers it and returns it.
func (r *SlugRegistry) Assign(name string) string {
	base := Slugify(name)

	slug := base
	for n := 1; r.Has(slug); n++ {
		slug = base + "-" + strconv.Itoa(n)
	}

	r.seen[slug] = struct{}{}
	return slug
}

// Has reports whether slug was already assigned.
func (r *SlugRegistry) Has(slug string) bool {
	_, ok := r.seen[slug]
	return ok
}

// Len returns the number of assigned slugs.
func (r *SlugRegistry) Len() int {
	return len(r.seen)
}

// Slugify lowercases name, drops disallowed runes, joins words with hyphens
// and truncates to MaxSlugLength. It does not consult any registry.
func Slugify(name string) string {
	lowered := strings.ToLower(norm.NFC.String(name))

	var kept strings.Builder
	kept.Grow(len(lowered))
	for _, r := range lowered {
		if IsSlugRune(r) || unicode.IsSpace(r) {
			kept.WriteRune(r)
		}
	}

	// strings.Fields splits on whitespace runs and drops the ends.
	slug := strings.Join(strings.Fields(kept.String()), "-")

	if runes := []rune(slug); len(runes) > MaxSlugLength {
		slug = string(runes[:MaxSlugLength])
	}

	if slug == "" {
		return PlaceholderSlug
	}
	return slug
}

// IsSlugRune reports whether r may appear in a slug: word characters
// (letters, numbers, underscore), the Thai block and the hyphen.
func IsSlugRune(r rune) bool {
	switch {
	case r == '_' || r == '-':
		return true
	case r >= 0x0E00 && r <= 0x0E7F:
		return true
	case unicode.IsLetter(r) || unicode.IsNumber(r):
		return true
	}
	return false
}
