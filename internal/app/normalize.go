package app

import (
	"strconv"
	"strings"

	"propharvest/internal/domain"
)

/********** alias registries (single source of truth) **********/

// One registry covers every site's spelling of a logical field. Paths are
// dot-separated; each step is resolved through unwrap, so a value that arrives
// either bare or inside a {"value": ...} wrapper (Redfin area vs address
// search) is handled by one rule, not per-field special cases.
var propertyAliases = map[string][]string{
	"street": {
		"streetLine", "streetAddress.assembledAddress",
		"location.address.line", "address.line",
		"addressStreet", "address.streetAddress",
	},
	"unit": {"location.address.unit", "address.unit", "addressUnit"},
	"city": {"city", "location.address.city", "address.city", "addressCity"},
	"state": {
		"state", "location.address.state_code", "address.state_code",
		"address.state", "addressState",
	},
	"zip": {
		"zip", "location.address.postal_code", "address.postal_code",
		"address.zipcode", "addressZipcode",
	},
	"country":  {"location.address.country", "address.country", "country"},
	"status":   {"mlsStatus", "status", "statusText"},
	"currency": {"currency", "price_currency", "hdpData.homeInfo.currency"},
	"price": {
		"price", "list_price", "basic.price", "basic.sold_price",
		"unformattedPrice", "hdpData.homeInfo.price",
	},
	"price_per_sqft": {"pricePerSqFt", "price_per_sqft"},
	"beds":           {"beds", "description.beds", "basic.beds", "hdpData.homeInfo.bedrooms"},
	"baths":          {"baths", "description.baths", "basic.baths", "hdpData.homeInfo.bathrooms"},
	"sqft":           {"sqFt", "description.sqft", "basic.sqft", "hdpData.homeInfo.livingArea"},
	"lot_size": {
		"lotSize", "description.lot_sqft", "basic.lot_sqft",
		"public_record.lot_size", "hdpData.homeInfo.lotAreaValue",
	},
	"lot_unit":   {"lotSizeUnit", "hdpData.homeInfo.lotAreaUnit"},
	"year_built": {"yearBuilt", "description.year_built", "details.year_built"},
	"stories":    {"stories", "description.stories", "details.stories"},
	"agent":      {"listingAgent", "advertisers.0.name", "agent_name"},
	"mls_id":     {"mlsId", "source.id", "property_id", "mls_id"},
	"description": {
		"listingRemarks", "description.text", "remarks",
	},
	"img_src":     {"imgSrc", "primary_photo.href", "photos.0.href"},
	"latitude":    {"latLong.latitude", "location.address.coordinate.lat", "hdpData.homeInfo.latitude", "latitude"},
	"longitude":   {"latLong.longitude", "location.address.coordinate.lon", "hdpData.homeInfo.longitude", "longitude"},
	// Redfin's timeOnRedfin is a time-on-market duration, not a timestamp;
	// it must never feed this field.
	"posted_time": {"list_date", "hdpData.homeInfo.datePriceChanged", "posted_time"},
	"url":         {"url", "detailUrl", "permalink", "details.permalink"},
}

/********** tiny helpers **********/

// unwrap resolves the bare-scalar vs nested {"value": ...} shape variance.
func unwrap(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			return inner
		}
	}
	return v
}

// lookupAny walks a dot path through nested maps (and numeric indexes through
// slices), unwrapping value-wrappers at every step. Returns nil when the path
// does not resolve.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		cur = unwrap(cur)
		switch obj := cur.(type) {
		case map[string]any:
			v, ok := obj[part]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(obj) {
				return nil
			}
			cur = obj[i]
		default:
			return nil
		}
	}
	return unwrap(cur)
}

// firstStr returns the first non-empty string for a named alias set.
func firstStr(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return &s
			}
		case float64:
			s := strconv.FormatFloat(v, 'f', -1, 64)
			return &s
		}
	}
	return nil
}

// firstF64 returns the first numeric value (float64/int/numeric string) for a
// named alias set.
func firstF64(m map[string]any, aliases map[string][]string, key string) *float64 {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func firstInt(m map[string]any, aliases map[string][]string, key string) *int {
	if f := firstF64(m, aliases, key); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, sep)
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Sites link their listings relative to the web frontend, not the API host.
var siteBaseURL = map[domain.SiteName]string{
	domain.SiteRedfin: "https://www.redfin.com",
	domain.SiteZillow: "https://www.zillow.com",
}

const realtorDetailBase = "https://www.realtor.com/realestateandhomes-detail/"

// absoluteURL resolves a site-relative listing link against the site's public
// base. Realtor payloads carry a bare permalink slug rather than a path;
// already-absolute links pass through untouched.
func absoluteURL(site domain.SiteName, u *string) *string {
	if u == nil || strings.HasPrefix(*u, "http") {
		return u
	}
	var abs string
	switch {
	case site == domain.SiteRealtor:
		abs = realtorDetailBase + strings.TrimPrefix(*u, "/")
	case strings.HasPrefix(*u, "/"):
		base, ok := siteBaseURL[site]
		if !ok {
			return u
		}
		abs = base + *u
	default:
		return u
	}
	return &abs
}

/********** normalizer **********/

// SiteContext is the per-source context a raw payload is normalized under.
type SiteContext struct {
	Site        domain.SiteName
	ListingType domain.ListingType
}

// Normalize maps one raw site payload into the canonical listing variant.
// Absent source fields stay absent; nothing is defaulted. A payload with no
// address block at all fails with MalformedRecordError.
func Normalize(raw domain.RawListing, sc SiteContext) (domain.Listing, error) {
	if raw.Kind == domain.KindBuilding {
		return normalizeBuilding(raw.Payload, sc)
	}
	return normalizeProperty(raw.Payload, sc)
}

func normalizeProperty(p map[string]any, sc SiteContext) (domain.Listing, error) {
	addr := domain.Address{
		StreetAddress: firstStr(p, propertyAliases, "street"),
		Unit:          firstStr(p, propertyAliases, "unit"),
		City:          firstStr(p, propertyAliases, "city"),
		State:         firstStr(p, propertyAliases, "state"),
		Zip:           firstStr(p, propertyAliases, "zip"),
		Country:       firstStr(p, propertyAliases, "country"),
	}
	if addr.StreetAddress == nil && addr.City == nil && addr.Zip == nil {
		return nil, &domain.MalformedRecordError{Site: sc.Site, Reason: "payload has no address block"}
	}

	price := firstF64(p, propertyAliases, "price")
	sqft := firstF64(p, propertyAliases, "sqft")

	// Prefer the site-reported figure; derive only when both inputs exist.
	ppsf := firstF64(p, propertyAliases, "price_per_sqft")
	if ppsf == nil && price != nil && sqft != nil && *sqft != 0 {
		d := *price / *sqft
		ppsf = &d
	}

	var propType *domain.PropertyType
	switch v := lookupAny(p, "propertyType").(type) {
	case float64:
		propType = domain.PropertyTypeFromCode(int(v))
	case string:
		if s := strings.TrimSpace(strings.ToLower(v)); s != "" {
			pt := domain.PropertyType(s)
			propType = &pt
		}
	}

	return domain.Property{
		Site:         sc.Site,
		ListingType:  sc.ListingType,
		PropertyType: propType,
		Status:       firstStr(p, propertyAliases, "status"),
		Currency:     firstStr(p, propertyAliases, "currency"),
		Price:        price,
		PricePerSqFt: ppsf,
		Beds:         firstF64(p, propertyAliases, "beds"),
		Baths:        firstF64(p, propertyAliases, "baths"),
		SquareFeet:   sqft,
		LotSize:      firstF64(p, propertyAliases, "lot_size"),
		LotUnit:      firstStr(p, propertyAliases, "lot_unit"),
		YearBuilt:    firstInt(p, propertyAliases, "year_built"),
		Stories:      firstInt(p, propertyAliases, "stories"),
		AgentName:    firstStr(p, propertyAliases, "agent"),
		MlsID:        firstStr(p, propertyAliases, "mls_id"),
		Description:  firstStr(p, propertyAliases, "description"),
		ImgSrc:       firstStr(p, propertyAliases, "img_src"),
		Latitude:     firstF64(p, propertyAliases, "latitude"),
		Longitude:    firstF64(p, propertyAliases, "longitude"),
		PostedTime:   firstStr(p, propertyAliases, "posted_time"),
		URL:          absoluteURL(sc.Site, firstStr(p, propertyAliases, "url")),
		Address:      addr,
	}, nil
}

func normalizeBuilding(b map[string]any, sc SiteContext) (domain.Listing, error) {
	addrObj, ok := lookupAny(b, "address").(map[string]any)
	if !ok {
		return nil, &domain.MalformedRecordError{Site: sc.Site, Reason: "building payload has no address block"}
	}

	get := func(key string) string {
		if s, ok := lookupAny(addrObj, key).(string); ok {
			return s
		}
		return ""
	}

	street := joinNonEmpty(" ",
		get("streetNumber"),
		get("directionalPrefix"),
		get("streetName"),
		get("streetType"),
	)
	unit := joinNonEmpty(" ", get("unitType"), get("unitValue"))

	var units *int
	if f, ok := lookupAny(b, "numUnitsForSale").(float64); ok {
		n := int(f)
		units = &n
	}

	return domain.Building{
		Site:         sc.Site,
		ListingType:  sc.ListingType,
		UnitsForSale: units,
		URL:          absoluteURL(sc.Site, firstStr(b, propertyAliases, "url")),
		Address: domain.Address{
			StreetAddress: ptrStr(street),
			Unit:          ptrStr(unit),
			City:          ptrStr(get("city")),
			State:         ptrStr(joinNonEmpty(" ", get("stateOrProvinceCode"))),
			Zip:           ptrStr(get("postalCode")),
			Country:       ptrStr(get("countryCode")),
		},
	}, nil
}
