// Package propharvest aggregates real-estate listings from multiple property
// sites into one deduplicated tabular dataset.
package propharvest

import (
	"context"
	"strings"

	"propharvest/internal/adapters/fetch"
	"propharvest/internal/adapters/realtor"
	"propharvest/internal/adapters/redfin"
	"propharvest/internal/adapters/zillow"
	"propharvest/internal/app"
	"propharvest/internal/domain"
)

// Re-exports so callers outside the module can name the core types.
type (
	Table       = domain.Table
	SiteName    = domain.SiteName
	SiteClient  = domain.SiteClient
	ListingType = domain.ListingType
)

var (
	ErrInvalidSite        = domain.ErrInvalidSite
	ErrInvalidListingType = domain.ErrInvalidListingType
	ErrNoResultsFound     = domain.ErrNoResultsFound
)

// Input is one scrape request. An empty SiteNames means every known site; an
// empty ListingType means for_sale.
type Input struct {
	Location      string
	SiteNames     []string
	ListingType   string
	Radius        *float64
	SoldLastXDays *int
	Proxy         string
	RPS           int
}

// NewSiteClients builds the default adapter set. The returned map is plain
// call-time configuration; callers may add or replace entries.
func NewSiteClients(rps int, proxy string) (map[SiteName]SiteClient, error) {
	clients := make(map[SiteName]SiteClient, len(domain.KnownSites))
	for _, site := range domain.KnownSites {
		hc, err := fetch.New(string(site), rps, proxy)
		if err != nil {
			return nil, err
		}
		switch site {
		case domain.SiteRedfin:
			clients[site] = redfin.New(hc, "")
		case domain.SiteRealtor:
			clients[site] = realtor.New(hc, "", "")
		case domain.SiteZillow:
			clients[site] = zillow.New(hc, "")
		}
	}
	return clients, nil
}

// ScrapeProperty validates the request, fans it out across the requested
// sites, and returns the merged, deduplicated dataset. Validation errors are
// raised before any network activity.
func ScrapeProperty(ctx context.Context, in Input) (Table, error) {
	sites, lt, err := ValidateRequest(in.SiteNames, in.ListingType)
	if err != nil {
		return Table{}, err
	}

	clients, err := NewSiteClients(in.RPS, in.Proxy)
	if err != nil {
		return Table{}, err
	}

	res, err := app.NewCollector(clients).Collect(ctx, domain.SearchInput{
		Location:      in.Location,
		ListingType:   lt,
		Radius:        in.Radius,
		SoldLastXDays: in.SoldLastXDays,
	}, sites)
	if err != nil {
		return Table{}, err
	}
	return res.Table, nil
}

// ValidateRequest resolves site names and the listing type, defaulting an
// empty site list to all known sites and an empty listing type to for_sale.
func ValidateRequest(siteNames []string, listingType string) ([]SiteName, ListingType, error) {
	if listingType == "" {
		listingType = string(domain.ForSale)
	}
	lt, err := domain.ParseListingType(listingType)
	if err != nil {
		return nil, "", err
	}

	if len(siteNames) == 0 {
		sites := make([]SiteName, 0, len(domain.KnownSites))
		for _, site := range domain.KnownSites {
			sites = append(sites, site)
		}
		return sites, lt, nil
	}

	sites := make([]SiteName, 0, len(siteNames))
	for _, name := range siteNames {
		site, ok := domain.KnownSites[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, "", &domain.InvalidSiteError{Value: name}
		}
		sites = append(sites, site)
	}
	return sites, lt, nil
}
