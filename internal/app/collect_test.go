package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"propharvest/internal/domain"
)

// ---- fakes ----

type fakeSite struct {
	name  domain.SiteName
	raws  []domain.RawListing
	err   error
	calls int32
}

func (f *fakeSite) Site() domain.SiteName { return f.name }

func (f *fakeSite) Search(ctx context.Context, in domain.SearchInput) ([]domain.RawListing, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.raws, nil
}

func rawProperty(t *testing.T, street, city string, price float64) domain.RawListing {
	t.Helper()
	raw := fmt.Sprintf(`{"streetLine": %q, "city": %q, "state": "TX", "zip": "78701", "price": %f}`, street, city, price)
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad raw: %v", err)
	}
	return domain.RawListing{Payload: m, Kind: domain.KindProperty, Mode: domain.ModeArea}
}

func searchInput() domain.SearchInput {
	return domain.SearchInput{Location: "Austin, TX", ListingType: domain.ForSale}
}

// ---- tests ----

func TestCollect_SingleSource(t *testing.T) {
	site := &fakeSite{name: domain.SiteRedfin, raws: []domain.RawListing{
		rawProperty(t, "1 A St", "Austin", 100),
		rawProperty(t, "2 A St", "Austin", 200),
	}}
	c := NewCollector(map[domain.SiteName]domain.SiteClient{domain.SiteRedfin: site})

	res, err := c.Collect(context.Background(), searchInput(), []domain.SiteName{domain.SiteRedfin})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(res.Table.Rows) != 2 {
		t.Fatalf("rows: %d", len(res.Table.Rows))
	}
	if atomic.LoadInt32(&site.calls) != 1 {
		t.Fatalf("expected one search call, got %d", site.calls)
	}
	// Within-source listing order is preserved.
	i := res.Table.ColumnIndex(domain.ColStreetAddress)
	if res.Table.Rows[0][i] != "1 A St" || res.Table.Rows[1][i] != "2 A St" {
		t.Fatalf("order not preserved: %v", res.Table.Rows)
	}
}

func TestCollect_MultiSourceIsUnionBeforeDedup(t *testing.T) {
	redfin := &fakeSite{name: domain.SiteRedfin, raws: []domain.RawListing{
		rawProperty(t, "1 A St", "Austin", 100),
	}}
	realtor := &fakeSite{name: domain.SiteRealtor, raws: []domain.RawListing{
		rawProperty(t, "2 B St", "Austin", 200),
		rawProperty(t, "3 C St", "Austin", 300),
	}}
	c := NewCollector(map[domain.SiteName]domain.SiteClient{
		domain.SiteRedfin:  redfin,
		domain.SiteRealtor: realtor,
	})

	res, err := c.Collect(context.Background(), searchInput(),
		[]domain.SiteName{domain.SiteRedfin, domain.SiteRealtor})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	// No address triples overlap: row count equals the sum of both sources.
	if len(res.Table.Rows) != 3 {
		t.Fatalf("rows: %d", len(res.Table.Rows))
	}
}

func TestCollect_OverlappingAddressesDeduped(t *testing.T) {
	redfin := &fakeSite{name: domain.SiteRedfin, raws: []domain.RawListing{
		rawProperty(t, "123 Main St", "Springfield", 100),
		rawProperty(t, "9 J St", "Springfield", 150),
	}}
	realtor := &fakeSite{name: domain.SiteRealtor, raws: []domain.RawListing{
		rawProperty(t, "123 Main St", "Springfield", 100),
	}}
	c := NewCollector(map[domain.SiteName]domain.SiteClient{
		domain.SiteRedfin:  redfin,
		domain.SiteRealtor: realtor,
	})

	res, err := c.Collect(context.Background(), searchInput(),
		[]domain.SiteName{domain.SiteRedfin, domain.SiteRealtor})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	// Strictly fewer rows than the sum whenever a triple overlaps.
	if len(res.Table.Rows) != 2 {
		t.Fatalf("rows: %d, want 2 after dedup", len(res.Table.Rows))
	}
}

func TestCollect_PartialFailureSurvives(t *testing.T) {
	ok := &fakeSite{name: domain.SiteRedfin, raws: []domain.RawListing{
		rawProperty(t, "1 A St", "Austin", 100),
	}}
	down := &fakeSite{name: domain.SiteZillow, err: errors.New("connection refused")}
	c := NewCollector(map[domain.SiteName]domain.SiteClient{
		domain.SiteRedfin: ok,
		domain.SiteZillow: down,
	})

	res, err := c.Collect(context.Background(), searchInput(),
		[]domain.SiteName{domain.SiteRedfin, domain.SiteZillow})
	if err != nil {
		t.Fatalf("one source failing must not fail the collection: %v", err)
	}
	if len(res.Table.Rows) != 1 {
		t.Fatalf("rows: %d", len(res.Table.Rows))
	}
	if _, ok := res.SourceErrors[domain.SiteZillow]; !ok {
		t.Fatalf("failed source must be recorded: %+v", res.SourceErrors)
	}
}

func TestCollect_AllSourcesFailing(t *testing.T) {
	c := NewCollector(map[domain.SiteName]domain.SiteClient{
		domain.SiteRedfin: &fakeSite{name: domain.SiteRedfin, err: domain.ErrNoResultsFound},
		domain.SiteZillow: &fakeSite{name: domain.SiteZillow, err: errors.New("boom")},
	})

	_, err := c.Collect(context.Background(), searchInput(),
		[]domain.SiteName{domain.SiteRedfin, domain.SiteZillow})
	if !errors.Is(err, domain.ErrNoResultsFound) {
		t.Fatalf("expected ErrNoResultsFound, got %v", err)
	}
}

func TestCollect_SingleSourceNoResultsPropagates(t *testing.T) {
	c := NewCollector(map[domain.SiteName]domain.SiteClient{
		domain.SiteRedfin: &fakeSite{name: domain.SiteRedfin, err: domain.ErrNoResultsFound},
	})

	_, err := c.Collect(context.Background(), searchInput(), []domain.SiteName{domain.SiteRedfin})
	if !errors.Is(err, domain.ErrNoResultsFound) {
		t.Fatalf("expected ErrNoResultsFound, got %v", err)
	}
}

func TestCollect_MalformedRecordsSkippedNotFatal(t *testing.T) {
	var noAddress map[string]any
	_ = json.Unmarshal([]byte(`{"price": 1}`), &noAddress)

	site := &fakeSite{name: domain.SiteRedfin, raws: []domain.RawListing{
		rawProperty(t, "1 A St", "Austin", 100),
		{Payload: noAddress, Kind: domain.KindProperty, Mode: domain.ModeArea},
		rawProperty(t, "2 A St", "Austin", 200),
	}}
	c := NewCollector(map[domain.SiteName]domain.SiteClient{domain.SiteRedfin: site})

	res, err := c.Collect(context.Background(), searchInput(), []domain.SiteName{domain.SiteRedfin})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(res.Table.Rows) != 2 {
		t.Fatalf("rows: %d", len(res.Table.Rows))
	}
	if res.Skipped != 1 {
		t.Fatalf("skipped: %d", res.Skipped)
	}
}

func TestCollect_UnknownSiteInMap(t *testing.T) {
	c := NewCollector(map[domain.SiteName]domain.SiteClient{})

	_, err := c.Collect(context.Background(), searchInput(), []domain.SiteName{domain.SiteRedfin})
	if !errors.Is(err, domain.ErrInvalidSite) {
		t.Fatalf("expected ErrInvalidSite, got %v", err)
	}
}
