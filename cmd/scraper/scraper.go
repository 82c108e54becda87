package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/tahseenmorshed/FPLStats/internal/parser/parsers/fbref"
	pkgconfig "github.com/tahseenmorshed/FPLStats/internal/pkg/config"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/export"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/health"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/notify"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/performance"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/storage"
)

// runScraper wires the collaborators around the fbref run controller.
// Only a fatal run error is returned.
func runScraper(ctx context.Context, cfg *pkgconfig.Config, out io.Writer) error {
	tracker := performance.NewTracker()
	if cfg.Metrics.Port > 0 {
		if err := health.Run(ctx, health.AddrFor(cfg.Metrics.Port), serviceName, tracker, cfg.Metrics.ReadHeaderTimeout); err != nil {
			return err
		}
	}

	sink, err := export.NewFileSink(cfg.Scraper.OutputDir)
	if err != nil {
		return err
	}

	mirrors, closeMirrors, err := storage.OpenConfigured(cfg)
	if err != nil {
		return err
	}
	defer closeMirrors()

	var notifier notify.Notifier
	if cfg.Telegram.BotToken != "" {
		tn, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			slog.Warn("Telegram notifications disabled", "error", err)
		} else {
			notifier = tn
		}
	}

	sess, release, err := session.Open(ctx, cfg.Browser)
	if err != nil {
		return err
	}
	defer release()

	parser, err := fbref.NewParser(cfg.Scraper, sess, fbref.Options{
		Sink:    sink,
		Namer:   export.MatchdayName,
		Mirrors: mirrors,
		Tracker: tracker,
	})
	if err != nil {
		return err
	}

	rng := models.PeriodRange{
		Start: models.Period(cfg.Scraper.StartPeriod),
		End:   models.Period(cfg.Scraper.EndPeriod),
	}
	summary, runErr := parser.Run(ctx, rng)
	if runErr != nil && isCancelled(runErr) {
		slog.Warn("Run interrupted", "error", runErr)
	}

	tracker.PrintSummary(out)

	if cfg.Scraper.WriteManifest {
		exporter := export.NewExporter(rng)
		for _, res := range summary.Results {
			exporter.Add(fixtureExport(res))
		}
		if path, err := exporter.WriteFile(cfg.Scraper.OutputDir, runErr); err != nil {
			slog.Error("Failed to write manifest", "error", err)
		} else {
			slog.Info("Manifest written", "path", path)
		}
	}

	if notifier != nil {
		// The run context may already be cancelled; the report still goes out.
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := notifier.NotifyRun(nctx, runReport(summary, runErr)); err != nil {
			slog.Error("Failed to send run notification", "error", err)
		}
	}

	return runErr
}

func runReport(s *fbref.RunSummary, runErr error) notify.RunReport {
	return notify.RunReport{
		Range:    s.Range,
		Fixtures: len(s.Results),
		Written:  s.Written,
		Skipped:  s.Skipped,
		Failed:   s.Failed,
		Rows:     s.Rows,
		Duration: s.Duration,
		Err:      runErr,
	}
}

func fixtureExport(res fbref.FixtureResult) export.FixtureExport {
	fe := export.FixtureExport{
		Row:      res.Entry.Row,
		Period:   int(res.Entry.Period),
		HomeTeam: res.Fixture.HomeTeam,
		AwayTeam: res.Fixture.AwayTeam,
		Artifact: res.Artifact,
		Rows:     res.Rows,
		Status:   res.Outcome(),
	}
	for _, s := range res.Skipped {
		fe.Skipped = append(fe.Skipped, s.Block.BlockID+"/"+s.Facet.Key)
	}
	if res.Err != nil {
		fe.Error = res.Err.Error()
	}
	return fe
}
