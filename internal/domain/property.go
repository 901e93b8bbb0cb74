package domain

// SiteName identifies one external listing site.
type SiteName string

const (
	SiteRedfin  SiteName = "redfin"
	SiteRealtor SiteName = "realtor.com"
	SiteZillow  SiteName = "zillow"
)

// KnownSites maps the accepted site-name strings (lowercased) to their
// identifiers. Callers pass this set around explicitly; there is no
// process-wide registry.
var KnownSites = map[string]SiteName{
	"redfin":      SiteRedfin,
	"realtor.com": SiteRealtor,
	"zillow":      SiteZillow,
}

type ListingType string

const (
	ForSale ListingType = "for_sale"
	ForRent ListingType = "for_rent"
	Sold    ListingType = "sold"
)

// ParseListingType validates a listing-type string.
func ParseListingType(s string) (ListingType, error) {
	switch ListingType(s) {
	case ForSale, ForRent, Sold:
		return ListingType(s), nil
	}
	return "", &InvalidListingTypeError{Value: s}
}

// PropertyType is the site-dependent property classification.
type PropertyType string

const (
	SingleFamily PropertyType = "single_family"
	Condo        PropertyType = "condo"
	Townhouse    PropertyType = "townhouse"
	MultiFamily  PropertyType = "multi_family"
	Land         PropertyType = "land"
	Mobile       PropertyType = "mobile"
	Other        PropertyType = "other"
)

// PropertyTypeFromCode maps Redfin's integer property-type codes.
func PropertyTypeFromCode(code int) *PropertyType {
	var pt PropertyType
	switch code {
	case 1:
		pt = SingleFamily
	case 2:
		pt = Condo
	case 3:
		pt = Townhouse
	case 4:
		pt = MultiFamily
	case 5:
		pt = Land
	case 6:
		pt = Other
	case 13:
		pt = Mobile
	default:
		return nil
	}
	return &pt
}

type Address struct {
	StreetAddress *string
	Unit          *string
	City          *string
	State         *string
	Zip           *string
	Country       *string
}

// Property is the canonical single-unit listing record. Optional fields are
// pointers; nil means the source payload did not carry the value.
type Property struct {
	Site          SiteName
	ListingType   ListingType
	PropertyType  *PropertyType
	Status        *string
	Currency      *string
	Price         *float64
	PricePerSqFt  *float64
	Beds          *float64
	Baths         *float64
	SquareFeet    *float64
	LotSize       *float64
	LotUnit       *string
	YearBuilt     *int
	Stories       *int
	AgentName     *string
	MlsID         *string
	Description   *string
	ImgSrc        *string
	Latitude      *float64
	Longitude     *float64
	PostedTime    *string
	URL           *string
	Address       Address
}

// Building is Redfin's multi-unit listing variant.
type Building struct {
	Site         SiteName
	ListingType  ListingType
	UnitsForSale *int
	URL          *string
	Address      Address
}

// Listing is the tagged "property or building" variant. Both project into the
// same canonical table row; fields the variant lacks render as nil cells.
type Listing interface {
	Cells() map[string]any
}

func (p Property) Cells() map[string]any {
	cells := map[string]any{
		ColSite:        string(p.Site),
		ColListingType: string(p.ListingType),
	}
	if p.PropertyType != nil {
		cells[ColPropertyType] = string(*p.PropertyType)
	}
	putStr(cells, ColStatus, p.Status)
	putStr(cells, ColCurrency, p.Currency)
	putF64(cells, ColPrice, p.Price)
	putF64(cells, ColPricePerSqFt, p.PricePerSqFt)
	putF64(cells, ColBeds, p.Beds)
	putF64(cells, ColBaths, p.Baths)
	putF64(cells, ColSquareFeet, p.SquareFeet)
	putF64(cells, ColLotSize, p.LotSize)
	putStr(cells, ColLotUnit, p.LotUnit)
	putInt(cells, ColYearBuilt, p.YearBuilt)
	putInt(cells, ColStories, p.Stories)
	putStr(cells, ColAgentName, p.AgentName)
	putStr(cells, ColMlsID, p.MlsID)
	putStr(cells, ColDescription, p.Description)
	putStr(cells, ColImgSrc, p.ImgSrc)
	putF64(cells, ColLatitude, p.Latitude)
	putF64(cells, ColLongitude, p.Longitude)
	putStr(cells, ColPostedTime, p.PostedTime)
	putStr(cells, ColURL, p.URL)
	p.Address.fill(cells)
	return cells
}

func (b Building) Cells() map[string]any {
	cells := map[string]any{
		ColSite:        string(b.Site),
		ColListingType: string(b.ListingType),
	}
	putInt(cells, ColUnitsForSale, b.UnitsForSale)
	putStr(cells, ColURL, b.URL)
	b.Address.fill(cells)
	return cells
}

func (a Address) fill(cells map[string]any) {
	putStr(cells, ColStreetAddress, a.StreetAddress)
	putStr(cells, ColUnit, a.Unit)
	putStr(cells, ColCity, a.City)
	putStr(cells, ColState, a.State)
	putStr(cells, ColZip, a.Zip)
	putStr(cells, ColCountry, a.Country)
}

func putStr(cells map[string]any, col string, v *string) {
	if v != nil {
		cells[col] = *v
	}
}

func putF64(cells map[string]any, col string, v *float64) {
	if v != nil {
		cells[col] = *v
	}
}

func putInt(cells map[string]any, col string, v *int) {
	if v != nil {
		cells[col] = *v
	}
}
