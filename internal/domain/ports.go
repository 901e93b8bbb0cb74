package domain

import (
	"context"
	"time"
)

// RawKind tags which listing variant a raw payload represents.
type RawKind string

const (
	KindProperty RawKind = "property"
	KindBuilding RawKind = "building"
)

// QueryMode distinguishes an area search from a direct single-address lookup.
// Some sites emit the same logical field in a different shape per mode.
type QueryMode string

const (
	ModeArea    QueryMode = "area"
	ModeAddress QueryMode = "address"
)

// RawListing is one site-specific listing payload plus the context needed to
// normalize it.
type RawListing struct {
	Payload map[string]any
	Kind    RawKind
	Mode    QueryMode
}

// SearchInput carries the shared query parameters. Option semantics beyond
// pass-through (radius, sold window) belong to the individual adapter.
type SearchInput struct {
	Location      string
	ListingType   ListingType
	Radius        *float64
	SoldLastXDays *int
}

// SiteClient is the external collaborator contract: zero or more raw listing
// payloads, or failure. ErrNoResultsFound means the location matched nothing.
type SiteClient interface {
	Site() SiteName
	Search(ctx context.Context, in SearchInput) ([]RawListing, error)
}

// Dataset is one persisted scrape run.
type Dataset struct {
	ID          string
	Location    string
	ListingType ListingType
	Sites       []string
	Table       Table
	RowCount    int
	CreatedAt   time.Time
}

type DatasetRepository interface {
	SaveDataset(ctx context.Context, ds Dataset) error
	GetDataset(ctx context.Context, id string) (Dataset, error)
	ListDatasets(ctx context.Context, limit int) ([]Dataset, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
