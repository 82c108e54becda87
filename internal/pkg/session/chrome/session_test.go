package chrome

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
)

var withChrome = flag.String("with-chromedp", "", "remote Chrome DevTools URL, or \"local\" to start a browser")

const reportPage = `<html><body>
<h1>Crystal Palace vs. Liverpool Match Report</h1>
<div id="overlay" style="position:fixed;inset:0;z-index:10"></div>
<a id="tab" data-show=".assoc_stats_x_passing" href="#"
   onclick="document.body.insertAdjacentHTML('beforeend','<div id=div_stats_x_passing><span>ok</span></div>'); return false;">Passing</a>
</body></html>`

func newTestSession(t *testing.T) *Session {
	t.Helper()
	if *withChrome == "" {
		t.Skip("--with-chromedp not set")
	}
	opts := Options{}
	if *withChrome != "local" {
		opts.RemoteURL = *withChrome
	}
	s, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestChromeSessionFacetSwitch(t *testing.T) {
	s := newTestSession(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, reportPage)
	}))
	defer srv.Close()

	ctx := context.Background()
	require.NoError(t, s.Load(ctx, srv.URL))
	require.NoError(t, s.WaitFor(ctx, "h1", 5*time.Second))

	h1, err := session.First(ctx, s, "h1")
	require.NoError(t, err)
	title, err := h1.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Crystal Palace vs. Liverpool Match Report", title)

	err = s.WaitFor(ctx, "#div_stats_x_passing", 200*time.Millisecond)
	assert.True(t, session.IsTimeout(err), "region must not exist before the click: %v", err)

	tab, err := session.First(ctx, s, `a[data-show=".assoc_stats_x_passing"]`)
	require.NoError(t, err)
	show, ok, err := tab.Attr(ctx, "data-show")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ".assoc_stats_x_passing", show)

	require.NoError(t, s.Click(ctx, tab), "programmatic click must pass the overlay")
	require.NoError(t, s.WaitFor(ctx, "#div_stats_x_passing", 5*time.Second))

	region, err := session.First(ctx, s, "#div_stats_x_passing")
	require.NoError(t, err)
	spans, err := region.Find(ctx, "span")
	require.NoError(t, err)
	require.Len(t, spans, 1)
}
