// Package static implements session.Session over parsed HTML documents.
// Pages never change after load, so client-side facet switches are no-ops
// and waits resolve immediately against the document.
package static

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
)

// commentMarkers matches HTML comment delimiters. The site ships several
// stats tables inside comments and reveals them with JavaScript.
var commentMarkers = regexp.MustCompile(`<!--|-->`)

// Options configures a static Session.
type Options struct {
	// KeepComments disables unwrapping of commented-out markup.
	KeepComments bool
}

type page struct {
	url *url.URL
	doc *goquery.Document
}

// Session is a session.Session backed by goquery documents.
type Session struct {
	fetcher Fetcher
	opts    Options
	history []page
	clicks  []string
}

var _ session.Session = (*Session)(nil)

// New creates a static session that loads pages through fetcher.
func New(fetcher Fetcher, opts Options) *Session {
	return &Session{fetcher: fetcher, opts: opts}
}

func (s *Session) current() (page, error) {
	if len(s.history) == 0 {
		return page{}, fmt.Errorf("static session: no page loaded")
	}
	return s.history[len(s.history)-1], nil
}

// Load fetches and parses rawURL and makes it the current page.
func (s *Session) Load(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	body, err := s.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return fmt.Errorf("fetch %s: %w", u, err)
	}
	if !s.opts.KeepComments {
		body = commentMarkers.ReplaceAll(body, nil)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse html %s: %w", u, err)
	}
	doc.Url = u

	s.history = append(s.history, page{url: u, doc: doc})
	slog.Debug("Static page loaded", "url", u.String(), "bytes", len(body))
	return nil
}

// WaitFor checks the current document once; a document never gains nodes
// later, so a miss is reported as a timeout straight away.
func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.current()
	if err != nil {
		return err
	}
	if p.doc.Find(selector).Length() > 0 {
		return nil
	}
	return fmt.Errorf("%w: %q not present after %s", session.ErrTimeout, selector, timeout)
}

func (s *Session) Query(ctx context.Context, selector string) ([]session.Element, error) {
	p, err := s.current()
	if err != nil {
		return nil, err
	}
	return wrap(p.doc.Find(selector)), nil
}

// Click follows plain links and records every other activation.
func (s *Session) Click(ctx context.Context, el session.Element) error {
	e, ok := el.(*element)
	if !ok {
		return fmt.Errorf("static session: foreign element %T", el)
	}

	if show, ok := e.sel.Attr("data-show"); ok {
		s.clicks = append(s.clicks, show)
		return nil
	}

	href, ok := e.sel.Attr("href")
	if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		s.clicks = append(s.clicks, goquery.NodeName(e.sel))
		return nil
	}

	p, err := s.current()
	if err != nil {
		return err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return fmt.Errorf("parse href %q: %w", href, err)
	}
	target := p.url.ResolveReference(ref).String()
	s.clicks = append(s.clicks, target)
	return s.Load(ctx, target)
}

func (s *Session) Back(ctx context.Context) error {
	if len(s.history) < 2 {
		return fmt.Errorf("static session: no previous page")
	}
	s.history = s.history[:len(s.history)-1]
	return nil
}

// URL returns the address of the current page, or "" when nothing is loaded.
func (s *Session) URL() string {
	p, err := s.current()
	if err != nil {
		return ""
	}
	return p.url.String()
}

// Clicks returns what every Click call activated, in order: the data-show
// target for client-side switches, the resolved URL for followed links.
func (s *Session) Clicks() []string {
	return append([]string(nil), s.clicks...)
}

type element struct {
	sel *goquery.Selection
}

func wrap(sel *goquery.Selection) []session.Element {
	out := make([]session.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &element{sel: s})
	})
	return out
}

func (e *element) Text(ctx context.Context) (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e *element) Attr(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *element) Find(ctx context.Context, selector string) ([]session.Element, error) {
	return wrap(e.sel.Find(selector)), nil
}
