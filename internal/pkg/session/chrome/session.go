// Package chrome implements session.Session on a headless Chrome driven
// through the DevTools protocol.
package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

// Options configures the browser process.
type Options struct {
	ShowWindow  bool
	UserAgent   string
	ExecPath    string
	UserDataDir string
	// RemoteURL attaches to an already running browser (ws:// or http://)
	// instead of starting one.
	RemoteURL string
	// Debug forwards chromedp protocol logs to slog at debug level.
	Debug bool
}

// Session owns one browser tab.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	tmpDir  string
}

var _ session.Session = (*Session)(nil)

// New starts (or attaches to) a browser and opens a tab. The tab lives
// until Close is called or parent is cancelled.
func New(parent context.Context, opts Options) (*Session, error) {
	s := &Session{}

	var allocCtx context.Context
	var cancel context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, cancel = chromedp.NewRemoteAllocator(parent, opts.RemoteURL)
	} else {
		dataDir := opts.UserDataDir
		if dataDir == "" {
			dir, err := os.MkdirTemp("", "fplstats_chrome_")
			if err != nil {
				return nil, fmt.Errorf("create chrome temp dir: %w", err)
			}
			s.tmpDir = dir
			dataDir = dir
		}
		userAgent := opts.UserAgent
		if userAgent == "" {
			userAgent = defaultUserAgent
		}

		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", !opts.ShowWindow),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.UserDataDir(dataDir),
			chromedp.UserAgent(userAgent),
		)
		if opts.ExecPath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
		}
		allocCtx, cancel = chromedp.NewExecAllocator(parent, allocOpts...)
	}
	s.cancels = append(s.cancels, cancel)

	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		if opts.Debug {
			slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
		}
	}))
	s.cancels = append(s.cancels, cancel)
	s.ctx = ctx

	// Run with no actions starts the browser and the tab.
	if err := chromedp.Run(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return s, nil
}

// Close shuts the tab and the browser down.
func (s *Session) Close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	s.cancels = nil
	if s.tmpDir != "" {
		_ = os.RemoveAll(s.tmpDir)
	}
}

// bind ties a caller context to the tab: cancellation and deadlines come
// from ctx, the browser target from the session.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	if deadline, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		tctx, dcancel = context.WithDeadline(tctx, deadline)
		return tctx, func() { stop(); dcancel(); cancel() }
	}
	return tctx, func() { stop(); cancel() }
}

func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	tctx, cancel := s.bind(ctx)
	defer cancel()
	return chromedp.Run(tctx, actions...)
}

func (s *Session) Load(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("chromedp navigate %s: %w", url, err)
	}
	return nil
}

func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.run(wctx, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(wctx.Err(), context.DeadlineExceeded)) {
		return fmt.Errorf("%w: %q not present after %s", session.ErrTimeout, selector, timeout)
	}
	return fmt.Errorf("chromedp wait %q: %w", selector, err)
}

func (s *Session) Query(ctx context.Context, selector string) ([]session.Element, error) {
	return s.nodes(ctx, selector)
}

func (s *Session) nodes(ctx context.Context, selector string, opts ...chromedp.QueryOption) ([]session.Element, error) {
	var nodes []*cdp.Node
	opts = append([]chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}, opts...)
	if err := s.run(ctx, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("chromedp query %q: %w", selector, err)
	}
	out := make([]session.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &element{s: s, node: n})
	}
	return out, nil
}

// Click calls element.click() in the page, which is not intercepted by
// overlays the way a dispatched mouse event is.
func (s *Session) Click(ctx context.Context, el session.Element) error {
	e, ok := el.(*element)
	if !ok {
		return fmt.Errorf("chrome session: foreign element %T", el)
	}
	if _, err := e.call(ctx, "function() { this.click(); }", false); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (s *Session) Back(ctx context.Context) error {
	if err := s.run(ctx, chromedp.NavigateBack()); err != nil {
		return fmt.Errorf("chromedp navigate back: %w", err)
	}
	return nil
}

type element struct {
	s    *Session
	node *cdp.Node
}

// call runs fn with this bound to the element and returns its JSON result.
func (e *element) call(ctx context.Context, fn string, returnByValue bool) ([]byte, error) {
	var out []byte
	err := e.s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(e.node.BackendNodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve node: %w", err)
		}
		res, exc, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(returnByValue).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		if res != nil {
			out = []byte(res.Value)
		}
		return nil
	}))
	return out, err
}

func (e *element) Text(ctx context.Context) (string, error) {
	raw, err := e.call(ctx, "function() { return this.innerText || this.textContent || ''; }", true)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	var text string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", fmt.Errorf("decode text: %w", err)
		}
	}
	return strings.TrimSpace(text), nil
}

func (e *element) Attr(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.node.Attribute(name)
	return v, ok, nil
}

func (e *element) Find(ctx context.Context, selector string) ([]session.Element, error) {
	return e.s.nodes(ctx, selector, chromedp.FromNode(e.node))
}
