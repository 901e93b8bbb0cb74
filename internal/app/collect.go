package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"propharvest/internal/adapters/observability"
	"propharvest/internal/domain"
)

// Collector fans a query out across site adapters and assembles one merged
// dataset. The site map is explicit call-time configuration, not a global
// registry.
type Collector struct {
	clients map[domain.SiteName]domain.SiteClient
}

func NewCollector(clients map[domain.SiteName]domain.SiteClient) *Collector {
	return &Collector{clients: clients}
}

// Sites lists the configured site identifiers.
func (c *Collector) Sites() []domain.SiteName {
	out := make([]domain.SiteName, 0, len(c.clients))
	for s := range c.clients {
		out = append(out, s)
	}
	return out
}

// CollectResult is a possibly-partial collection: the merged table plus the
// per-source errors of the adapters that failed.
type CollectResult struct {
	Table        domain.Table
	SourceErrors map[domain.SiteName]error
	Skipped      int
}

// Collect runs the query against the requested sites. One requested site is
// invoked synchronously; several run concurrently, one goroutine per site,
// joined over a channel in completion order. A single site's failure never
// aborts its siblings; only all sites failing fails the collection.
func (c *Collector) Collect(ctx context.Context, in domain.SearchInput, sites []domain.SiteName) (CollectResult, error) {
	res := CollectResult{SourceErrors: map[domain.SiteName]error{}}

	if len(sites) == 1 {
		t, skipped, err := c.collectOne(ctx, sites[0], in)
		if err != nil {
			return res, fmt.Errorf("%s: %w", sites[0], err)
		}
		res.Table = Merge(t)
		res.Skipped = skipped
		return res, nil
	}

	type outcome struct {
		site    domain.SiteName
		table   domain.Table
		skipped int
		err     error
	}
	results := make(chan outcome, len(sites))
	for _, site := range sites {
		go func(site domain.SiteName) {
			t, skipped, err := c.collectOne(ctx, site, in)
			results <- outcome{site: site, table: t, skipped: skipped, err: err}
		}(site)
	}

	tables := make([]domain.Table, 0, len(sites))
	for range sites {
		o := <-results
		if o.err != nil {
			log.Warn().Str("site", string(o.site)).Err(o.err).Msg("source failed, continuing with siblings")
			observability.ObserveSourceFailure(string(o.site))
			res.SourceErrors[o.site] = o.err
			continue
		}
		res.Skipped += o.skipped
		tables = append(tables, o.table)
	}

	if len(tables) == 0 {
		return res, fmt.Errorf("all %d sources failed: %w", len(sites), domain.ErrNoResultsFound)
	}
	res.Table = Merge(tables...)
	return res, nil
}

// collectOne runs a single adapter and normalizes its output into one table.
// Malformed records are skipped and counted, not fatal to the source.
func (c *Collector) collectOne(ctx context.Context, site domain.SiteName, in domain.SearchInput) (domain.Table, int, error) {
	client, ok := c.clients[site]
	if !ok {
		return domain.Table{}, 0, &domain.InvalidSiteError{Value: string(site)}
	}

	raws, err := client.Search(ctx, in)
	if err != nil {
		return domain.Table{}, 0, err
	}

	sc := SiteContext{Site: site, ListingType: in.ListingType}
	listings := make([]domain.Listing, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		l, err := Normalize(raw, sc)
		if err != nil {
			var malformed *domain.MalformedRecordError
			if errors.As(err, &malformed) {
				skipped++
				log.Debug().Str("site", string(site)).Err(err).Msg("skipping malformed record")
				observability.ObserveScrapeRecord(string(site), "skipped")
				continue
			}
			return domain.Table{}, skipped, err
		}
		observability.ObserveScrapeRecord(string(site), "normalized")
		listings = append(listings, l)
	}
	return domain.NewTable(listings), skipped, nil
}
