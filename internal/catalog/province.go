// Package catalog holds the static label tables and slug rules used to turn
// free-text spreadsheet values into canonical directory identifiers.
package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// provinces maps spreadsheet sheet labels to the province name stored in the
// Provinces table. Several labels may share one canonical name, including
// known misspellings.
var provinces = map[string]string{
	// Central and East
	"กรุงเทพ":         "กรุงเทพมหานคร",
	"ชลบุรี":          "ชลบุรี",
	"ปทุมธานี":        "ปทุมธานี",
	"นนทบุรี":         "นนทบุรี",
	"ระยอง":           "ระยอง",
	"สมุทรปราการ":     "สมุทรปราการ",
	"พระนครศรีอยุธยา": "พระนครศรีอยุธยา",
	"ลพบุรี":          "ลพบุรี",
	"สิงห์บุรี":       "สิงห์บุรี",
	"ชัยนาท":          "ชัยนาท",
	"สระบุรี":         "สระบุรี",
	"จันทบุรี":        "จันทบุรี",
	"ตราด":            "ตราด",
	"ฉะเชิงเทรา":      "ฉะเชิงเทรา",
	"ปราจีนบุรี":      "ปราจีนบุรี",
	"นครนายก":         "นครนายก",
	"สระแก้ว":         "สระแก้ว",
	"สมุทรสาคร":       "สมุทรสาคร",
	"สมุทรสงคราม":     "สมุทรสงคราม",

	// North
	"เชียงใหม่":  "เชียงใหม่",
	"เชียงราย":   "เชียงราย",
	"ลำปาง":      "ลำปาง",
	"ลำพูน":      "ลำพูน",
	"แพร่":       "แพร่",
	"น่าน":       "น่าน",
	"พะเยา":      "พะเยา",
	"แม่ฮ่องสอน": "แม่ฮ่องสอน",
	"อุตรดิตถ์":  "อุตรดิตถ์",
	"ตาก":        "ตาก",
	"สุโขทัย":    "สุโขทัย",
	"พิษณุโลก":   "พิษณุโลก",
	"พิจิตร":     "พิจิตร",
	"เพชรบูรณ์":  "เพชรบูรณ์",
	"นครสวรรค์":  "นครสวรรค์",
	"อุทัยธานี":  "อุทัยธานี",
	"กำแพงเพชร":  "กำแพงเพชร",

	// Northeast
	"ขอนแก่น":     "ขอนแก่น",
	"อุดรธานี":    "อุดรธานี",
	"นครราชสีมา":  "นครราชสีมา",
	"อุบลราชธานี": "อุบลราชธานี",
	"บุรีรัมย์":   "บุรีรัมย์",
	"สุรินทร์":    "สุรินทร์",
	"ศรีสะเกษ":    "ศรีสะเกษ",
	"มหาสารคาม":   "มหาสารคาม",
	"ชัยภูมิ":     "ชัยภูมิ",
	"เลย":         "เลย",
	"สกลนคร":      "สกลนคร",
	"หนองคาย":     "หนองคาย",
	"บึงกาฬ":      "บึงกาฬ",
	"กาฬสินธุ์":   "กาฬสินธุ์",

	// South
	"ภูเก็ต":        "ภูเก็ต",
	"สงขลา":         "สงขลา",
	"สุราษฎร์ธานี":  "สุราษฎร์ธานี",
	"กระบี่":        "กระบี่",
	"นครศรีธรรมราช": "นครศรีธรรมราช",
	"ตรัง":          "ตรัง",
	"พังงา":         "พังงา",
	"ชุมพร":         "ชุมพร",
	"ระนอง":         "ระนอง",
	"พัทลุง":        "พัทลุง",
	"สตูล":          "สตูล",
	"ยะลา":          "ยะลา",
	"ปัตตานี":       "ปัตตานี",
	"นราธิวาาส":     "นราธิวาส", // misspelled sheet name in the source workbook
	"นราธิวาส":      "นราธิวาส",
}

// MapProvince returns the canonical province name for a sheet label.
// Unknown labels pass through unchanged; an insert for such a label matches
// no Provinces row and becomes an orphan.
func MapProvince(label string) string {
	if name, ok := provinces[normalizeLabel(label)]; ok {
		return name
	}
	return label
}

// IsKnownProvince reports whether label has an explicit table entry.
func IsKnownProvince(label string) bool {
	_, ok := provinces[normalizeLabel(label)]
	return ok
}

// normalizeLabel trims and NFC-normalizes a raw label before lookup.
func normalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
