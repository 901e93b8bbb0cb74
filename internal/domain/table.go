package domain

// Canonical column names. The output schema is a fixed, ordered superset of
// every field a source can contribute; rows always conform to this order.
const (
	ColSite          = "site_name"
	ColListingType   = "listing_type"
	ColPropertyType  = "property_type"
	ColStatus        = "status"
	ColCurrency      = "currency"
	ColPrice         = "price"
	ColPricePerSqFt  = "price_per_sqft"
	ColBeds          = "beds"
	ColBaths         = "baths"
	ColSquareFeet    = "square_feet"
	ColLotSize       = "lot_size"
	ColLotUnit       = "lot_unit"
	ColYearBuilt     = "year_built"
	ColStories       = "stories"
	ColAgentName     = "agent_name"
	ColMlsID         = "mls_id"
	ColDescription   = "description"
	ColImgSrc        = "img_src"
	ColLatitude      = "latitude"
	ColLongitude     = "longitude"
	ColPostedTime    = "posted_time"
	ColStreetAddress = "street_address"
	ColUnit          = "unit"
	ColCity          = "city"
	ColState         = "state"
	ColZip           = "zip_code"
	ColCountry       = "country"
	ColURL           = "property_url"
	ColUnitsForSale  = "units_for_sale"
)

// Columns is the canonical column order for output tables.
func Columns() []string {
	return []string{
		ColSite, ColListingType, ColPropertyType, ColStatus, ColCurrency,
		ColPrice, ColPricePerSqFt, ColBeds, ColBaths, ColSquareFeet,
		ColLotSize, ColLotUnit, ColYearBuilt, ColStories, ColAgentName,
		ColMlsID, ColDescription, ColImgSrc, ColLatitude, ColLongitude,
		ColPostedTime, ColStreetAddress, ColUnit, ColCity, ColState,
		ColZip, ColCountry, ColURL, ColUnitsForSale,
	}
}

// DedupColumns is the composite key identifying one physical listing.
func DedupColumns() []string {
	return []string{ColStreetAddress, ColCity, ColUnit}
}

// Table is a plain columnar dataset: an ordered column list plus rows of
// cells. A nil cell is an absent value.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable projects listings onto the canonical column order.
func NewTable(listings []Listing) Table {
	cols := Columns()
	t := Table{Columns: cols, Rows: make([][]any, 0, len(listings))}
	for _, l := range listings {
		cells := l.Cells()
		row := make([]any, len(cols))
		for i, c := range cols {
			if v, ok := cells[c]; ok {
				row[i] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ColumnIndex returns the position of col, or -1.
func (t Table) ColumnIndex(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Empty reports whether the table has no rows or only all-nil rows.
func (t Table) Empty() bool {
	for _, row := range t.Rows {
		for _, cell := range row {
			if cell != nil {
				return false
			}
		}
	}
	return true
}
