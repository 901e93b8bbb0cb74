package redfin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"propharvest/internal/adapters/fetch"
	"propharvest/internal/domain"
)

const (
	// Stingray responses are guarded with a "{}&&" prefix before the JSON body.
	jsonGuard   = "{}&&"
	defaultBase = "https://www.redfin.com"
)

// Client scrapes Redfin's unofficial stingray API. Brittle by nature; all it
// promises is raw payloads or an error.
type Client struct {
	base string
	hc   *fetch.Client
}

func New(hc *fetch.Client, base string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{base: base, hc: hc}
}

func (c *Client) Site() domain.SiteName { return domain.SiteRedfin }

// Search resolves the location first; an exact address match goes through the
// single-home details endpoint, anything else through the region GIS search.
func (c *Client) Search(ctx context.Context, in domain.SearchInput) ([]domain.RawListing, error) {
	regionID, regionType, err := c.locate(ctx, in.Location)
	if err != nil {
		return nil, err
	}

	if regionType == "address" {
		return c.searchAddress(ctx, regionID)
	}
	return c.searchArea(ctx, regionID, regionType)
}

// locate runs the autocomplete endpoint and maps Redfin's match type onto a
// GIS region type (4 -> zip region 2, 2 -> city region 6, 1 -> address).
func (c *Client) locate(ctx context.Context, location string) (id, regionType string, err error) {
	u := fmt.Sprintf("%s/stingray/do/location-autocomplete?v=2&al=1&location=%s",
		c.base, url.QueryEscape(location))

	var resp struct {
		Payload struct {
			ExactMatch *struct {
				ID   string `json:"id"`
				Type string `json:"type"`
			} `json:"exactMatch"`
			Sections []struct {
				Rows []struct {
					ID   string `json:"id"`
					Type string `json:"type"`
				} `json:"rows"`
			} `json:"sections"`
		} `json:"payload"`
	}
	if err := c.hc.GetPrefixedJSON(ctx, u, jsonGuard, nil, &resp); err != nil {
		return "", "", err
	}

	var matchID, matchType string
	switch {
	case resp.Payload.ExactMatch != nil:
		matchID, matchType = resp.Payload.ExactMatch.ID, resp.Payload.ExactMatch.Type
	case len(resp.Payload.Sections) > 0 && len(resp.Payload.Sections[0].Rows) > 0:
		row := resp.Payload.Sections[0].Rows[0]
		matchID, matchType = row.ID, row.Type
	default:
		return "", "", fmt.Errorf("location %q: %w", location, domain.ErrNoResultsFound)
	}

	// IDs come as "<kind>_<id>".
	if i := strings.LastIndexByte(matchID, '_'); i >= 0 {
		matchID = matchID[i+1:]
	}

	switch matchType {
	case "4":
		return matchID, "2", nil // zip
	case "2":
		return matchID, "6", nil // city
	case "1":
		return matchID, "address", nil
	}
	return "", "", fmt.Errorf("location %q: unsupported match type %s: %w", location, matchType, domain.ErrNoResultsFound)
}

func (c *Client) searchArea(ctx context.Context, regionID, regionType string) ([]domain.RawListing, error) {
	u := fmt.Sprintf("%s/stingray/api/gis?al=1&region_id=%s&region_type=%s", c.base, regionID, regionType)

	var resp struct {
		Payload struct {
			Homes     []map[string]any          `json:"homes"`
			Buildings map[string]map[string]any `json:"buildings"`
		} `json:"payload"`
	}
	if err := c.hc.GetPrefixedJSON(ctx, u, jsonGuard, nil, &resp); err != nil {
		return nil, err
	}

	raws := make([]domain.RawListing, 0, len(resp.Payload.Homes)+len(resp.Payload.Buildings))
	for _, home := range resp.Payload.Homes {
		raws = append(raws, domain.RawListing{Payload: home, Kind: domain.KindProperty, Mode: domain.ModeArea})
	}
	for _, building := range resp.Payload.Buildings {
		raws = append(raws, domain.RawListing{Payload: building, Kind: domain.KindBuilding, Mode: domain.ModeArea})
	}
	return raws, nil
}

// searchAddress fetches the aboveTheFold details panel for one home and
// returns its address section, which carries the assembled street address.
func (c *Client) searchAddress(ctx context.Context, homeID string) ([]domain.RawListing, error) {
	u := fmt.Sprintf("%s/stingray/api/home/details/aboveTheFold?propertyId=%s&accessLevel=3", c.base, homeID)

	var resp struct {
		Payload struct {
			AddressSectionInfo map[string]any `json:"addressSectionInfo"`
		} `json:"payload"`
	}
	if err := c.hc.GetPrefixedJSON(ctx, u, jsonGuard, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Payload.AddressSectionInfo == nil {
		return nil, fmt.Errorf("home %s: %w", homeID, domain.ErrNoResultsFound)
	}
	return []domain.RawListing{
		{Payload: resp.Payload.AddressSectionInfo, Kind: domain.KindProperty, Mode: domain.ModeAddress},
	}, nil
}
