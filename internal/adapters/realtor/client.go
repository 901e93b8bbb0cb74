package realtor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"propharvest/internal/adapters/fetch"
	"propharvest/internal/domain"
)

const (
	defaultSearchURL  = "https://www.realtor.com/api/v1/rdc_search_srp?client_id=rdc-search-new-communities&schema=vesta"
	defaultSuggestURL = "https://parser-external.geo.moveaws.com/suggest"

	pageSize = 200
	// Offset pages fetch concurrently, bounded so one area search cannot
	// monopolize the host.
	pageWorkers = 10
)

// Client scrapes Realtor.com through its geo-suggest and GraphQL search
// endpoints.
type Client struct {
	searchURL  string
	suggestURL string
	hc         *fetch.Client
}

func New(hc *fetch.Client, searchURL, suggestURL string) *Client {
	if searchURL == "" {
		searchURL = defaultSearchURL
	}
	if suggestURL == "" {
		suggestURL = defaultSuggestURL
	}
	return &Client{searchURL: searchURL, suggestURL: suggestURL, hc: hc}
}

func (c *Client) Site() domain.SiteName { return domain.SiteRealtor }

func (c *Client) Search(ctx context.Context, in domain.SearchInput) ([]domain.RawListing, error) {
	loc, err := c.suggest(ctx, in)
	if err != nil {
		return nil, err
	}

	if loc["area_type"] == "address" {
		id, _ := loc["mpr_id"].(string)
		return c.searchAddress(ctx, id)
	}
	return c.searchArea(ctx, in.ListingType, loc)
}

// suggest resolves the free-text location. A nil autocomplete list means the
// location itself matched nothing.
func (c *Client) suggest(ctx context.Context, in domain.SearchInput) (map[string]any, error) {
	q := url.Values{}
	q.Set("input", in.Location)
	q.Set("client_id", strings.ReplaceAll(string(in.ListingType), "_", "-"))
	q.Set("limit", "1")
	q.Set("area_types", "city,state,county,postal_code,address,street,neighborhood,school,school_district,university,park")

	headers := map[string]string{
		"origin":  "https://www.realtor.com",
		"referer": "https://www.realtor.com/",
	}

	var resp struct {
		Autocomplete []map[string]any `json:"autocomplete"`
	}
	if err := c.hc.GetJSON(ctx, c.suggestURL+"?"+q.Encode(), headers, &resp); err != nil {
		return nil, err
	}
	if len(resp.Autocomplete) == 0 {
		return nil, fmt.Errorf("location %q: %w", in.Location, domain.ErrNoResultsFound)
	}
	return resp.Autocomplete[0], nil
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// searchArea pages through home_search results. The first request only reads
// the total; the offset windows then fetch through a small worker pool. Page
// order is not preserved.
func (c *Client) searchArea(ctx context.Context, lt domain.ListingType, loc map[string]any) ([]domain.RawListing, error) {
	vars := map[string]any{
		"city":        loc["city"],
		"county":      loc["county"],
		"state_code":  loc["state_code"],
		"postal_code": loc["postal_code"],
		"offset":      0,
	}

	total, _, err := c.searchPage(ctx, lt, vars)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	numPages := (total + pageSize - 1) / pageSize
	pages := make([][]domain.RawListing, numPages)
	errs := make([]error, numPages)

	sem := semaphore.NewWeighted(pageWorkers)
	var wg sync.WaitGroup
	for p := 0; p < numPages; p++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			defer sem.Release(1)

			pageVars := make(map[string]any, len(vars))
			for k, v := range vars {
				pageVars[k] = v
			}
			pageVars["offset"] = p * pageSize
			_, results, err := c.searchPage(ctx, lt, pageVars)
			if err != nil {
				errs[p] = err
				return
			}
			pages[p] = results
		}(p)
	}
	wg.Wait()

	var raws []domain.RawListing
	for p := range pages {
		if errs[p] != nil {
			return nil, fmt.Errorf("offset %d: %w", p*pageSize, errs[p])
		}
		raws = append(raws, pages[p]...)
	}
	return raws, nil
}

func (c *Client) searchPage(ctx context.Context, lt domain.ListingType, vars map[string]any) (int, []domain.RawListing, error) {
	req := gqlRequest{
		Query:     fmt.Sprintf(areaQuery, string(lt)),
		Variables: vars,
	}

	var resp struct {
		Data struct {
			HomeSearch struct {
				Total   int              `json:"total"`
				Results []map[string]any `json:"results"`
			} `json:"home_search"`
		} `json:"data"`
	}
	if err := c.hc.PostJSON(ctx, c.searchURL, req, nil, &resp); err != nil {
		return 0, nil, err
	}

	raws := make([]domain.RawListing, 0, len(resp.Data.HomeSearch.Results))
	for _, r := range resp.Data.HomeSearch.Results {
		raws = append(raws, domain.RawListing{Payload: r, Kind: domain.KindProperty, Mode: domain.ModeArea})
	}
	return resp.Data.HomeSearch.Total, raws, nil
}

func (c *Client) searchAddress(ctx context.Context, propertyID string) ([]domain.RawListing, error) {
	req := gqlRequest{
		Query:     addressQuery,
		Variables: map[string]any{"property_id": propertyID},
	}

	var resp struct {
		Data struct {
			Property map[string]any `json:"property"`
		} `json:"data"`
	}
	if err := c.hc.PostJSON(ctx, c.searchURL, req, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Property == nil {
		return nil, fmt.Errorf("property %s: %w", propertyID, domain.ErrNoResultsFound)
	}
	return []domain.RawListing{
		{Payload: resp.Data.Property, Kind: domain.KindProperty, Mode: domain.ModeAddress},
	}, nil
}
