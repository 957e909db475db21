package catalog

import (
	"fmt"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"
)

// ============================================================================
// Slug Tests
// ============================================================================

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Test Bar", "test-bar"},
		{"punctuation dropped", "Bob's Bar & Grill!", "bobs-bar-grill"},
		{"whitespace collapsed", "  Sky   Lounge \t 99 ", "sky-lounge-99"},
		{"hyphen kept", "Roof-Top Bar", "roof-top-bar"},
		{"underscore kept", "bar_one", "bar_one"},
		{"thai kept", "ร้าน เหล้า ดี", "ร้าน-เหล้า-ดี"},
		{"thai with marks", "บาร์ค็อกเทล", "บาร์ค็อกเทล"},
		{"mixed", "Tipsy ทิปซี่ (Bangkok)", "tipsy-ทิปซี่-bangkok"},
		{"only symbols", "!!!", PlaceholderSlug},
		{"empty", "", PlaceholderSlug},
		{"only spaces", "   ", PlaceholderSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	long := strings.Repeat("ก", MaxSlugLength+50)
	got := Slugify(long)
	if n := utf8.RuneCountInString(got); n != MaxSlugLength {
		t.Errorf("rune length = %d, want %d", n, MaxSlugLength)
	}
}

func TestSlugify_CharacterSet(t *testing.T) {
	inputs := []string{
		"Test Bar", "Bob's \"Bar\"", "<script>alert(1)</script>", "ร้าน/บาร์ #1",
		"a b", "emoji 🍺 bar", "tab\tsep", "DROP TABLE \"Stores\";--",
		strings.Repeat("x y ", 80),
	}

	for _, in := range inputs {
		got := Slugify(in)
		if utf8.RuneCountInString(got) > MaxSlugLength {
			t.Errorf("Slugify(%q) longer than %d runes", in, MaxSlugLength)
		}
		for _, r := range got {
			if !IsSlugRune(r) {
				t.Errorf("Slugify(%q) = %q contains disallowed rune %q", in, got, r)
			}
			if unicode.IsUpper(r) {
				t.Errorf("Slugify(%q) = %q contains upper-case rune %q", in, got, r)
			}
		}
	}
}

func TestSlugRegistry_Suffixes(t *testing.T) {
	reg := NewSlugRegistry()

	got := []string{
		reg.Assign("bar"),
		reg.Assign("bar"),
		reg.Assign("Bar"),
		reg.Assign("bar!"),
	}
	want := []string{"bar", "bar-1", "bar-2", "bar-3"}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Assign #%d = %q, want %q", i, got[i], want[i])
		}
	}
	if reg.Len() != 4 {
		t.Errorf("Len() = %d, want 4", reg.Len())
	}
}

func TestSlugRegistry_SkipsTakenSuffix(t *testing.T) {
	reg := NewSlugRegistry()

	// "bar 1" slugs to "bar-1", which the second "bar" must then skip.
	if got := reg.Assign("bar 1"); got != "bar-1" {
		t.Fatalf("Assign(bar 1) = %q", got)
	}
	if got := reg.Assign("bar"); got != "bar" {
		t.Fatalf("Assign(bar) = %q", got)
	}
	if got := reg.Assign("bar"); got != "bar-2" {
		t.Errorf("Assign(bar) again = %q, want %q", got, "bar-2")
	}
}

func TestSlugRegistry_Unique(t *testing.T) {
	reg := NewSlugRegistry()
	seen := make(map[string]bool)

	names := []string{"", "!!", "store", "Store", "store 1", "Test Bar", "test-bar", "test bar"}
	for i := 0; i < 30; i++ {
		names = append(names, fmt.Sprintf("Bar %d", i%5))
	}

	for _, n := range names {
		s := reg.Assign(n)
		if seen[s] {
			t.Fatalf("slug %q assigned twice", s)
		}
		seen[s] = true
	}
}

// ============================================================================
// Category Tests
// ============================================================================

func TestMapCategory_TableEntries(t *testing.T) {
	for label, want := range categories {
		if got := MapCategory(label); got != want {
			t.Errorf("MapCategory(%q) = %q, want %q", label, got, want)
		}
	}
}

func TestMapCategory_Examples(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"บาร์", CategoryBar},
		{"  บาร์  ", CategoryBar},
		{"ผับ", CategoryPub},
		{"ไนท์คลับ", CategoryPub},
		{"ผับ/ร้านอาหาร", CategoryLateNightRestaurant},
		{"คาราโอเกะ", CategoryLiquorStore},
		{"", DefaultCategory},
		{"nan", DefaultCategory},
		{"สปา", DefaultCategory},
	}

	for _, tt := range tests {
		if got := MapCategory(tt.label); got != tt.want {
			t.Errorf("MapCategory(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestMapCategory_Total(t *testing.T) {
	labels := []string{"", " ", "unknown", "BAR", "บาร์x", "\x00", strings.Repeat("z", 1000)}
	for label := range categories {
		labels = append(labels, label, label+"?")
	}

	for _, l := range labels {
		if got := MapCategory(l); !IsCanonicalCategory(got) {
			t.Errorf("MapCategory(%q) = %q, not canonical", l, got)
		}
	}
}

func TestCanonicalCategories(t *testing.T) {
	cats := CanonicalCategories()
	if len(cats) != 4 {
		t.Fatalf("len = %d, want 4", len(cats))
	}
	cats[0] = "mutated"
	if CanonicalCategories()[0] != CategoryLiquorStore {
		t.Error("CanonicalCategories must return a copy")
	}
	if IsCanonicalCategory("karaoke") {
		t.Error("karaoke is not canonical")
	}
}

// ============================================================================
// Province Tests
// ============================================================================

func TestMapProvince(t *testing.T) {
	tests := []struct {
		label string
		want  string
		known bool
	}{
		{"กรุงเทพ", "กรุงเทพมหานคร", true},
		{"ชลบุรี", "ชลบุรี", true},
		{"นราธิวาาส", "นราธิวาส", true},
		{"นราธิวาส", "นราธิวาส", true},
		{" เชียงใหม่ ", "เชียงใหม่", true},
		{"Sheet1", "Sheet1", false},
		{"นครปฐม", "นครปฐม", false},
	}

	for _, tt := range tests {
		if got := MapProvince(tt.label); got != tt.want {
			t.Errorf("MapProvince(%q) = %q, want %q", tt.label, got, tt.want)
		}
		if got := IsKnownProvince(tt.label); got != tt.known {
			t.Errorf("IsKnownProvince(%q) = %v, want %v", tt.label, got, tt.known)
		}
	}
}
