package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Fetcher returns the raw HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Pages is an in-memory Fetcher keyed by absolute URL.
type Pages map[string]string

func (p Pages) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, ok := p[rawURL]
	if !ok {
		return nil, fmt.Errorf("page %s: %w", rawURL, os.ErrNotExist)
	}
	return []byte(body), nil
}

// FileFetcher serves file:// URLs from disk.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "file" {
		return nil, fmt.Errorf("file fetcher: unsupported scheme %q", u.Scheme)
	}
	return os.ReadFile(u.Path)
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

// HTTPFetcher downloads pages over HTTP(S) and falls back to FileFetcher
// for file:// URLs.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-GB,en;q=0.9").
		// Set explicitly so the transport leaves decoding to decodeBody.
		SetHeader("Accept-Encoding", "gzip, deflate, br, zstd")
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "file://") {
		return FileFetcher{}.Fetch(ctx, rawURL)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	raw := resp.RawResponse
	defer raw.Body.Close()

	if raw.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(raw.Body, 200))
		return nil, fmt.Errorf("unexpected status %d: %s", raw.StatusCode, string(b))
	}
	return decodeBody(raw)
}

// decodeBody reads the body and decompresses it based on Content-Encoding.
func decodeBody(resp *http.Response) ([]byte, error) {
	enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch {
	case strings.Contains(enc, "br"):
		return io.ReadAll(brotli.NewReader(resp.Body))
	case strings.Contains(enc, "zstd"):
		r, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case strings.Contains(enc, "deflate"):
		// HTTP "deflate" is zlib-wrapped.
		r, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case strings.Contains(enc, "gzip"):
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return io.ReadAll(resp.Body)
	}
}
