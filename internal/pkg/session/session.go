// Package session defines the page session capability the scraper drives:
// one current page that can be loaded, queried, waited on, clicked and
// navigated back from.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by WaitFor when the selector did not match in time.
var ErrTimeout = errors.New("session: wait timed out")

// Element is a node of the current page.
type Element interface {
	// Text returns the rendered text of the element, trimmed.
	Text(ctx context.Context) (string, error)
	// Attr returns the value of an attribute and whether it is present.
	Attr(ctx context.Context, name string) (string, bool, error)
	// Find returns the descendants matching a CSS selector, in document order.
	Find(ctx context.Context, selector string) ([]Element, error)
}

// Session is a single browsing session. Only one page is current at a time
// and implementations are not safe for concurrent use.
type Session interface {
	Load(ctx context.Context, url string) error
	// WaitFor blocks until selector matches at least one element or timeout
	// elapses, in which case it returns an error wrapping ErrTimeout.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// Query returns every element matching selector without waiting.
	Query(ctx context.Context, selector string) ([]Element, error)
	// Click activates el programmatically (element.click()), not through a
	// synthetic pointer event, so overlays cannot intercept it.
	Click(ctx context.Context, el Element) error
	Back(ctx context.Context) error
}

// IsTimeout reports whether err is a wait timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// First returns the first element matching selector, or nil if none does.
func First(ctx context.Context, s Session, selector string) (Element, error) {
	els, err := s.Query(ctx, selector)
	if err != nil || len(els) == 0 {
		return nil, err
	}
	return els[0], nil
}

// FindFirst is First for descendants of el.
func FindFirst(ctx context.Context, el Element, selector string) (Element, error) {
	els, err := el.Find(ctx, selector)
	if err != nil || len(els) == 0 {
		return nil, err
	}
	return els[0], nil
}
