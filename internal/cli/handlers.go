package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BartekS5/feedsync/internal/config"
	"github.com/BartekS5/feedsync/internal/etl"
	"github.com/BartekS5/feedsync/pkg/logger"
	"github.com/BartekS5/feedsync/pkg/models"
)

const pushTimeout = 10 * time.Second

func runFeed(ctx context.Context, cfg *config.Config, feed string, opts *Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.Validate(feed, opts.DryRun); err != nil {
		return err
	}
	fc, err := cfg.FeedByName(feed)
	if err != nil {
		return err
	}

	client := etl.NewHTTPClient(cfg.HTTPTimeout)

	switch feed {
	case config.FeedDShield:
		p := etl.NewPipeline[string, models.AttackerRecord](feed,
			etl.NewLineFetcher(fc.URL, client),
			etl.NewAttackerNormalizer(),
			newLoader[models.AttackerRecord](cfg, fc),
			opts.DryRun)
		return execute(ctx, cfg, p)
	case config.FeedTrivia:
		p := etl.NewPipeline[json.RawMessage, models.TriviaRecord](feed,
			etl.NewTriviaFetcher(fc.URL, client),
			etl.NewTriviaNormalizer(),
			newLoader[models.TriviaRecord](cfg, fc),
			opts.DryRun)
		return execute(ctx, cfg, p)
	default:
		return fmt.Errorf("unknown feed %q", feed)
	}
}

func newLoader[R models.SQLRow](cfg *config.Config, fc config.FeedConfig) etl.Loader[R] {
	if cfg.Store == config.StoreSQLServer {
		return etl.NewSQLLoader[R](cfg.SQLConnString, fc.Collection, cfg.StoreTimeout)
	}
	return etl.NewMongoLoader[R](cfg.MongoConnString, fc.Database, fc.Collection, cfg.ReplaceStrategy, cfg.StoreTimeout)
}

func execute[E, R any](ctx context.Context, cfg *config.Config, p *etl.Pipeline[E, R]) error {
	report, runErr := p.Run(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := p.Metrics.Push(pushCtx, cfg.PushgatewayURL); err != nil {
			logger.Warnf("Could not push metrics: %v", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("%s sync %s: %w", report.Feed, report.Outcome, runErr)
	}
	return nil
}
