package realtor_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"propharvest/internal/adapters/fetch"
	"propharvest/internal/adapters/realtor"
	"propharvest/internal/domain"
)

func newClient(t *testing.T, searchURL, suggestURL string) *realtor.Client {
	t.Helper()
	hc, err := fetch.New("realtor.com", 100, "")
	if err != nil {
		t.Fatalf("fetch client: %v", err)
	}
	return realtor.New(hc, searchURL, suggestURL)
}

func suggestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Errorf("limit: %s", got)
		}
		_, _ = w.Write([]byte(body))
	}))
}

func TestSearch_AreaPagination(t *testing.T) {
	suggest := suggestServer(t, `{"autocomplete": [{"area_type": "city", "city": "Austin", "state_code": "TX"}]}`)
	defer suggest.Close()

	var calls int32
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !strings.Contains(req.Query, "status: for_sale") {
			t.Errorf("listing type not interpolated: %s", req.Query)
		}

		offset := int(req.Variables["offset"].(float64))
		// 450 results total -> pages at offsets 0, 200, 400.
		results := make([]map[string]any, 0, 200)
		count := 200
		if offset == 400 {
			count = 50
		}
		for i := 0; i < count; i++ {
			results = append(results, map[string]any{
				"property_id": "P",
				"location":    map[string]any{"address": map[string]any{"line": "x", "city": "Austin"}},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"home_search": map[string]any{
				"total":   450,
				"results": results,
			}},
		})
	}))
	defer search.Close()

	raws, err := newClient(t, search.URL, suggest.URL).Search(context.Background(), domain.SearchInput{
		Location: "Austin, TX", ListingType: domain.ForSale,
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	// First call reads the total, then one call per offset window.
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Fatalf("search calls: %d, want 4", got)
	}
	// The total probe's results are discarded; the offset-0 worker refetches
	// that window, so every listing appears exactly once.
	if len(raws) != 450 {
		t.Fatalf("raws: %d, want 450", len(raws))
	}
	for _, raw := range raws {
		if raw.Kind != domain.KindProperty || raw.Mode != domain.ModeArea {
			t.Fatalf("raw context: %+v", raw)
		}
	}
}

func TestSearch_AddressLookup(t *testing.T) {
	suggest := suggestServer(t, `{"autocomplete": [{"area_type": "address", "mpr_id": "M123"}]}`)
	defer suggest.Close()

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables map[string]any `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if got := req.Variables["property_id"]; got != "M123" {
			t.Errorf("property_id: %v", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"property": map[string]any{
				"property_id": "M123",
				"address":     map[string]any{"line": "70 Rainey St", "city": "Austin"},
				"basic":       map[string]any{"price": 601000.0, "sqft": 1001.0},
			}},
		})
	}))
	defer search.Close()

	raws, err := newClient(t, search.URL, suggest.URL).Search(context.Background(), domain.SearchInput{
		Location: "70 Rainey St, Austin, TX", ListingType: domain.ForSale,
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(raws) != 1 || raws[0].Mode != domain.ModeAddress {
		t.Fatalf("raws: %+v", raws)
	}
}

func TestSearch_NoAutocompleteMatch(t *testing.T) {
	suggest := suggestServer(t, `{"autocomplete": null}`)
	defer suggest.Close()

	_, err := newClient(t, "http://unused.invalid", suggest.URL).Search(context.Background(), domain.SearchInput{
		Location: "Nowhere, ZZ", ListingType: domain.ForSale,
	})
	if !errors.Is(err, domain.ErrNoResultsFound) {
		t.Fatalf("expected ErrNoResultsFound, got %v", err)
	}
}

func TestSearch_ZeroTotal(t *testing.T) {
	suggest := suggestServer(t, `{"autocomplete": [{"area_type": "postal_code", "postal_code": "00000"}]}`)
	defer suggest.Close()

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"home_search": map[string]any{"total": 0, "results": []any{}}},
		})
	}))
	defer search.Close()

	raws, err := newClient(t, search.URL, suggest.URL).Search(context.Background(), domain.SearchInput{
		Location: "00000", ListingType: domain.Sold,
	})
	if err != nil {
		t.Fatalf("zero results is not an error: %v", err)
	}
	if len(raws) != 0 {
		t.Fatalf("raws: %d", len(raws))
	}
}
