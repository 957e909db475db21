package importer

// StoreRecord is one venue read from the workbook, ready to be emitted.
// Optional fields are nil when the cell was blank.
type StoreRecord struct {
	ID           string
	Province     string // canonical province name
	Sheet        string // raw sheet label the row came from
	Row          int    // 0-based data row within the sheet
	Name         string
	Slug         string
	Description  *string
	Phone        *string
	Address      *string
	Latitude     *float64
	Longitude    *float64
	GoogleMapURL *string
	LineID       *string
	BannerURL    *string
	Category     string
}
