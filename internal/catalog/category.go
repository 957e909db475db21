package catalog

// Canonical category slugs, matching the Categories seed data.
const (
	CategoryLiquorStore         = "liquor-store"
	CategoryBar                 = "bar"
	CategoryPub                 = "pub"
	CategoryLateNightRestaurant = "late-night-restaurant"

	// DefaultCategory is used for any type label missing from the table.
	DefaultCategory = CategoryBar
)

var canonicalCategories = []string{
	CategoryLiquorStore,
	CategoryBar,
	CategoryPub,
	CategoryLateNightRestaurant,
}

// categories collapses the free-text "Type" column into canonical slugs.
// Lookups trim the label first, so the padded variants are kept only to
// document what the workbook actually contains.
var categories = map[string]string{
	// bar
	"บาร์":        CategoryBar,
	"บาร์ ":       CategoryBar,
	" บาร์":       CategoryBar,
	"บาร์์":       CategoryBar,
	"บาร์ค็อกเทล": CategoryBar,
	"บาร์ค๊อกเทล": CategoryBar,
	"ค็อกเทลบาร์": CategoryBar,
	"บาร์วิสกี้":  CategoryBar,
	"บาร์ไวน์":    CategoryBar,
	"บาร์เบียร์":  CategoryBar,
	"บาร์โรงแรม":  CategoryBar,
	"บาร์โฮส":     CategoryBar,
	"บาร์เกย์":    CategoryBar,
	"ที่พัก/บาร์": CategoryBar,
	"คาเฟ่/บาร์":  CategoryBar,
	"ลานเบียร์":   CategoryBar,
	"โรงเบียร์":   CategoryBar,

	// pub
	"ผับ":      CategoryPub,
	"ไนท์คลับ": CategoryPub,
	"สถานบันเทิงยามค่ำคืน": CategoryPub,

	// late-night restaurant
	"บาร์/ร้านอาหาร":        CategoryLateNightRestaurant,
	"บาร์ค๊อกเทล/ร้านอาหาร": CategoryLateNightRestaurant,
	"ผับ/ร้านอาหาร":         CategoryLateNightRestaurant,
	"อาหารและเครื่องดื่ม":   CategoryLateNightRestaurant,

	// liquor store / karaoke
	"คาราโอเกะ":      CategoryLiquorStore,
	"คาราโอเกะบาร์":  CategoryLiquorStore,
	"คาราโอเกะ/บาร์": CategoryLiquorStore,
}

// MapCategory returns the canonical category slug for a raw type label.
// It is total: unknown or empty labels resolve to DefaultCategory.
func MapCategory(label string) string {
	if slug, ok := categories[normalizeLabel(label)]; ok {
		return slug
	}
	return DefaultCategory
}

// IsCanonicalCategory reports whether slug is one of the fixed category slugs.
func IsCanonicalCategory(slug string) bool {
	for _, c := range canonicalCategories {
		if c == slug {
			return true
		}
	}
	return false
}

// CanonicalCategories returns the fixed category slugs in seed order.
func CanonicalCategories() []string {
	out := make([]string, len(canonicalCategories))
	copy(out, canonicalCategories)
	return out
}
