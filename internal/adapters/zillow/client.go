package zillow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"propharvest/internal/adapters/fetch"
	"propharvest/internal/domain"
)

const defaultBase = "https://www.zillow.com"

// Client scrapes Zillow's search page state endpoint. Like the other site
// adapters it only promises raw payloads or an error.
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

func (c *Client) Site() domain.SiteName { return domain.SiteZillow }

func (c *Client) Search(ctx context.Context, in domain.SearchInput) ([]domain.RawListing, error) {
	state := map[string]any{
		"usersSearchTerm": in.Location,
		"isMapVisible":    false,
		"filterState":     filterState(in),
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("searchQueryState", string(stateJSON))
	q.Set("wants", `{"cat1":["listResults","mapResults"]}`)
	u := fmt.Sprintf("%s/search/GetSearchPageState.htm?%s", c.base, q.Encode())

	headers := map[string]string{
		"origin":  "https://www.zillow.com",
		"referer": "https://www.zillow.com/",
	}

	var resp struct {
		Cat1 struct {
			SearchResults struct {
				ListResults []map[string]any `json:"listResults"`
				MapResults  []map[string]any `json:"mapResults"`
			} `json:"searchResults"`
		} `json:"cat1"`
	}
	if err := c.hc.GetJSON(ctx, u, headers, &resp); err != nil {
		return nil, err
	}

	results := resp.Cat1.SearchResults.ListResults
	if len(results) == 0 {
		results = resp.Cat1.SearchResults.MapResults
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("location %q: %w", in.Location, domain.ErrNoResultsFound)
	}

	raws := make([]domain.RawListing, 0, len(results))
	for _, r := range results {
		raws = append(raws, domain.RawListing{Payload: r, Kind: domain.KindProperty, Mode: domain.ModeArea})
	}
	return raws, nil
}

// filterState maps the listing type and options onto Zillow's filter flags.
func filterState(in domain.SearchInput) map[string]any {
	fs := map[string]any{}
	switch in.ListingType {
	case domain.ForRent:
		fs["isForRent"] = map[string]any{"value": true}
		fs["isForSaleByAgent"] = map[string]any{"value": false}
		fs["isForSaleByOwner"] = map[string]any{"value": false}
	case domain.Sold:
		fs["isRecentlySold"] = map[string]any{"value": true}
		fs["isForSaleByAgent"] = map[string]any{"value": false}
		fs["isForSaleByOwner"] = map[string]any{"value": false}
		if in.SoldLastXDays != nil {
			fs["doz"] = map[string]any{"value": fmt.Sprintf("%d", *in.SoldLastXDays)}
		}
	default:
		fs["isForSaleByAgent"] = map[string]any{"value": true}
	}
	return fs
}
