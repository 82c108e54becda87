package fbref

import (
	"errors"
	"fmt"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

var (
	// ErrListingUnavailable means the schedule table could not be shown.
	ErrListingUnavailable = errors.New("fixture listing unavailable")
	// ErrDetailNotLoaded means the match report page is not the current page.
	ErrDetailNotLoaded = errors.New("match report not loaded")
	// ErrTitleFormat means the page title is not "<Home> vs. <Away> Match Report".
	ErrTitleFormat = errors.New("unexpected match title")
)

// FatalError ends the run. Artifacts written so far stay on disk.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// FixtureError abandons one fixture; the run moves on to the next one.
type FixtureError struct {
	Entry models.FixtureEntry
	State State // state the pipeline was in when it failed
	Err   error
}

func (e *FixtureError) Error() string {
	return fmt.Sprintf("fixture %s failed in %s: %v", e.Entry, e.State, e.Err)
}

func (e *FixtureError) Unwrap() error { return e.Err }

// Facet skip reasons, also used as metric labels.
const (
	ReasonNoControl = "no_control"
	ReasonTimeout   = "timeout"
	ReasonMalformed = "malformed"
)

// FacetError records a facet of one panel that produced no rows.
type FacetError struct {
	Block  models.StatBlock
	Facet  models.Facet
	Reason string
	Err    error
}

func (e *FacetError) Error() string {
	return fmt.Sprintf("facet %s of %s block %s skipped (%s): %v", e.Facet.Name, e.Block.Kind, e.Block.BlockID, e.Reason, e.Err)
}

func (e *FacetError) Unwrap() error { return e.Err }

// IsFatal reports whether err must end the run.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
