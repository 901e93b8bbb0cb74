package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"propharvest/internal/app"
	"propharvest/internal/domain"
)

// ---- fakes ----

type fakeSite struct {
	name  domain.SiteName
	raws  []domain.RawListing
	calls int
}

func (f *fakeSite) Site() domain.SiteName { return f.name }
func (f *fakeSite) Search(ctx context.Context, in domain.SearchInput) ([]domain.RawListing, error) {
	f.calls++
	return f.raws, nil
}

type fakeRepo struct{ ds domain.Dataset }

func (f *fakeRepo) SaveDataset(ctx context.Context, ds domain.Dataset) error { return nil }
func (f *fakeRepo) GetDataset(ctx context.Context, id string) (domain.Dataset, error) {
	if id != f.ds.ID {
		return domain.Dataset{}, domain.ErrNotFound
	}
	return f.ds, nil
}
func (f *fakeRepo) ListDatasets(ctx context.Context, limit int) ([]domain.Dataset, error) {
	return []domain.Dataset{f.ds}, nil
}

type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error { return nil }

// ---- tests ----

func TestScrape_CacheMissThenHit(t *testing.T) {
	var payload map[string]any
	_ = json.Unmarshal([]byte(`{"streetLine": "1 A St", "city": "Austin", "state": "TX", "zip": "78701"}`), &payload)

	site := &fakeSite{name: domain.SiteRedfin, raws: []domain.RawListing{
		{Payload: payload, Kind: domain.KindProperty, Mode: domain.ModeArea},
	}}
	collector := app.NewCollector(map[domain.SiteName]domain.SiteClient{domain.SiteRedfin: site})
	cache := &fakeCache{}
	q := app.NewQueryService(collector, &fakeRepo{}, cache, 10*time.Minute)

	in := domain.SearchInput{Location: "Austin, TX", ListingType: domain.ForSale}
	sites := []domain.SiteName{domain.SiteRedfin}

	// Miss (first time, populates cache).
	t1, err := q.Scrape(context.Background(), in, sites)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(t1.Rows) != 1 {
		t.Fatalf("rows: %d", len(t1.Rows))
	}
	if site.calls != 1 {
		t.Fatalf("search calls: %d", site.calls)
	}

	// Hit (served from cache; no new search calls).
	t2, err := q.Scrape(context.Background(), in, sites)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(t2.Rows) != 1 {
		t.Fatalf("rows: %d", len(t2.Rows))
	}
	if site.calls != 1 {
		t.Fatalf("expected cached result, got %d search calls", site.calls)
	}
}

func TestScrape_CacheKeyVariesWithSites(t *testing.T) {
	var payload map[string]any
	_ = json.Unmarshal([]byte(`{"streetLine": "1 A St", "city": "Austin", "state": "TX", "zip": "78701"}`), &payload)

	redfin := &fakeSite{name: domain.SiteRedfin, raws: []domain.RawListing{
		{Payload: payload, Kind: domain.KindProperty, Mode: domain.ModeArea},
	}}
	zillow := &fakeSite{name: domain.SiteZillow}
	collector := app.NewCollector(map[domain.SiteName]domain.SiteClient{
		domain.SiteRedfin: redfin,
		domain.SiteZillow: zillow,
	})
	q := app.NewQueryService(collector, &fakeRepo{}, &fakeCache{}, 10*time.Minute)

	in := domain.SearchInput{Location: "Austin, TX", ListingType: domain.ForSale}

	if _, err := q.Scrape(context.Background(), in, []domain.SiteName{domain.SiteRedfin}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if _, err := q.Scrape(context.Background(), in, []domain.SiteName{domain.SiteRedfin, domain.SiteZillow}); err != nil {
		t.Fatalf("err: %v", err)
	}
	// Different site sets must not share a cache entry.
	if redfin.calls != 2 {
		t.Fatalf("expected a fresh scrape for the wider site set, got %d calls", redfin.calls)
	}
}

func TestGetDataset(t *testing.T) {
	ds := domain.Dataset{ID: "d-1", Location: "Austin, TX", ListingType: domain.ForSale, RowCount: 3}
	q := app.NewQueryService(nil, &fakeRepo{ds: ds}, &fakeCache{}, time.Minute)

	got, err := q.GetDataset(context.Background(), "d-1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got.ID != "d-1" || got.RowCount != 3 {
		t.Fatalf("unexpected dataset: %+v", got)
	}

	if _, err := q.GetDataset(context.Background(), "missing"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
