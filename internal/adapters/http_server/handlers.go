// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"propharvest/internal/app"
	"propharvest/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/properties", h.scrape)
	s.mux.Get("/v1/datasets", h.listDatasets)
	s.mux.Get("/v1/datasets/{id}", h.getDataset)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) scrape(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		writeProblem(w, http.StatusBadRequest, "Missing location", "location query parameter is required")
		return
	}

	ltStr := r.URL.Query().Get("listing_type")
	if ltStr == "" {
		ltStr = string(domain.ForSale)
	}
	lt, err := domain.ParseListingType(ltStr)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid listing type", err.Error())
		return
	}

	var sites []domain.SiteName
	if raw := r.URL.Query().Get("sites"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			site, ok := domain.KnownSites[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				writeProblem(w, http.StatusBadRequest, "Invalid site", (&domain.InvalidSiteError{Value: name}).Error())
				return
			}
			sites = append(sites, site)
		}
	} else {
		for _, site := range domain.KnownSites {
			sites = append(sites, site)
		}
	}

	in := domain.SearchInput{Location: location, ListingType: lt}
	if rs := r.URL.Query().Get("radius"); rs != "" {
		f, err := strconv.ParseFloat(rs, 64)
		if err != nil || f <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid radius", "radius must be a positive number")
			return
		}
		in.Radius = &f
	}
	if ds := r.URL.Query().Get("sold_within_days"); ds != "" {
		n, err := strconv.Atoi(ds)
		if err != nil || n <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid sold_within_days", "sold_within_days must be a positive integer")
			return
		}
		in.SoldLastXDays = &n
	}

	table, err := h.Q.Scrape(r.Context(), in, sites)
	if err != nil {
		if errors.Is(err, domain.ErrNoResultsFound) {
			writeProblem(w, http.StatusNotFound, "No results", "no source returned results for this location")
			return
		}
		log.Error().Err(err).Str("location", location).Msg("scrape failed")
		writeProblem(w, http.StatusBadGateway, "Scrape failed", "all sources failed")
		return
	}

	writeWithETag(w, r, table)
}

func (h *Handlers) getDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ds, err := h.Q.GetDataset(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "dataset not found")
			return
		}
		log.Error().Err(err).Str("id", id).Msg("get dataset failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeWithETag(w, r, datasetResponse(ds))
}

func (h *Handlers) listDatasets(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	dss, err := h.Q.ListDatasets(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list datasets failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]map[string]any, 0, len(dss))
	for _, ds := range dss {
		out = append(out, datasetSummary(ds))
	}
	writeWithETag(w, r, out)
}

func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func datasetResponse(ds domain.Dataset) map[string]any {
	out := datasetSummary(ds)
	out["table"] = ds.Table
	return out
}

func datasetSummary(ds domain.Dataset) map[string]any {
	return map[string]any{
		"id":           ds.ID,
		"location":     ds.Location,
		"listing_type": ds.ListingType,
		"sites":        ds.Sites,
		"rows":         ds.RowCount,
		"created_at":   ds.CreatedAt,
	}
}
