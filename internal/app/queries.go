package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"propharvest/internal/domain"
)

// QueryService wraps the collector with a cache-aside layer for the API. The
// cache key covers every input that changes the result set.
type QueryService struct {
	collector *Collector
	repo      domain.DatasetRepository
	cache     domain.Cache
	cacheTTL  time.Duration
}

func NewQueryService(c *Collector, repo domain.DatasetRepository, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{collector: c, repo: repo, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) Scrape(ctx context.Context, in domain.SearchInput, sites []domain.SiteName) (domain.Table, error) {
	key := scrapeKey(in, sites)
	var t domain.Table
	if ok, _ := s.cache.Get(ctx, key, &t); ok {
		return t, nil
	}

	res, err := s.collector.Collect(ctx, in, sites)
	if err != nil {
		return domain.Table{}, err
	}
	_ = s.cache.Set(ctx, key, res.Table, int(s.cacheTTL.Seconds()))
	return res.Table, nil
}

func (s *QueryService) GetDataset(ctx context.Context, id string) (domain.Dataset, error) {
	return s.repo.GetDataset(ctx, id)
}

func (s *QueryService) ListDatasets(ctx context.Context, limit int) ([]domain.Dataset, error) {
	return s.repo.ListDatasets(ctx, limit)
}

func scrapeKey(in domain.SearchInput, sites []domain.SiteName) string {
	names := make([]string, 0, len(sites))
	for _, s := range sites {
		names = append(names, string(s))
	}
	sort.Strings(names)

	parts := []string{
		"scrape",
		strings.ToLower(in.Location),
		string(in.ListingType),
		strings.Join(names, "+"),
	}
	if in.Radius != nil {
		parts = append(parts, fmt.Sprintf("r%.1f", *in.Radius))
	}
	if in.SoldLastXDays != nil {
		parts = append(parts, fmt.Sprintf("d%d", *in.SoldLastXDays))
	}
	return strings.Join(parts, ":")
}
