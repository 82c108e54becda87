package static

import (
	"context"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/config"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
)

func init() {
	session.Register(config.ModeStatic, func(ctx context.Context, cfg config.BrowserConfig) (session.Session, func(), error) {
		return New(NewHTTPFetcher(cfg.FetchTimeout, cfg.UserAgent), Options{}), func() {}, nil
	})
}
