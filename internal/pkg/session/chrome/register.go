package chrome

import (
	"context"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/config"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
)

func init() {
	session.Register(config.ModeChrome, open)
}

func open(ctx context.Context, cfg config.BrowserConfig) (session.Session, func(), error) {
	s, err := New(ctx, Options{
		ShowWindow:  cfg.ShowWindow,
		UserAgent:   cfg.UserAgent,
		ExecPath:    cfg.ExecPath,
		UserDataDir: cfg.UserDataDir,
		RemoteURL:   cfg.RemoteURL,
		Debug:       cfg.Debug,
	})
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
