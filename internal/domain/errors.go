package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSite and ErrInvalidListingType are input-validation failures,
	// raised before any network activity.
	ErrInvalidSite        = errors.New("invalid site")
	ErrInvalidListingType = errors.New("invalid listing type")

	// ErrNoResultsFound means a source matched nothing for the location. At
	// the collection level it is fatal only when every source fails.
	ErrNoResultsFound = errors.New("no results found")

	// ErrNotFound is returned by read paths when a stored dataset is missing.
	ErrNotFound = errors.New("not found")
)

type InvalidSiteError struct{ Value string }

func (e *InvalidSiteError) Error() string {
	return fmt.Sprintf("provided site %q does not exist", e.Value)
}

func (e *InvalidSiteError) Unwrap() error { return ErrInvalidSite }

type InvalidListingTypeError struct{ Value string }

func (e *InvalidListingTypeError) Error() string {
	return fmt.Sprintf("provided listing type %q does not exist", e.Value)
}

func (e *InvalidListingTypeError) Unwrap() error { return ErrInvalidListingType }

// MalformedRecordError marks one raw payload that could not be normalized
// (structurally required keys missing). The caller skips the record.
type MalformedRecordError struct {
	Site   SiteName
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: malformed record: %s", e.Site, e.Reason)
}
