package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"txdash/internal/amqp"
	"txdash/internal/backend"
	"txdash/internal/cli"
	"txdash/internal/log"
	"txdash/internal/query"
	"txdash/internal/services"
	"txdash/internal/store"
	"txdash/internal/store/memory"
	"txdash/internal/store/sqlite"
	"txdash/internal/worker"
)

type seedCmd struct {
	From        string        `help:"Dataset file or http(s) URL; the bundled sample when empty."`
	FromBackend bool          `name:"from-backend" help:"Read from the configured DATA_BACKEND (e.g. sheets) instead of --from."`
	DB          string        `name:"db" help:"SQLite database path (default SQLITE_DB_PATH)."`
	Every       time.Duration `help:"Keep re-importing at this interval until interrupted."`
}

func (c *seedCmd) Run(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, origin, closeSrc, err := c.source(ctx, a)
	if err != nil {
		return err
	}
	defer closeSrc()

	dbPath := c.DB
	if dbPath == "" {
		dbPath = a.cfg.SQLiteDBPath
	}
	repo, err := sqlite.NewSQLiteRepository(dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	proc := services.NewSyncProcessor(src, repo, services.SyncProcessorConfig{PollInterval: c.Every})
	if c.Every > 0 {
		if err := proc.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return proc.Stop(stopCtx)
	}

	res, err := proc.SyncOnce(ctx)
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "Dataset seeded",
		log.FieldOperation, log.OpSeed,
		log.FieldRecordCount, res.Records,
		"origin", origin,
		"db", dbPath)
	_, err = fmt.Fprintf(a.out, "seeded %d records from %s into %s\n", res.Records, origin, dbPath)
	return err
}

func (c *seedCmd) source(ctx context.Context, a *app) (store.Source, string, func(), error) {
	noop := func() {}
	if c.FromBackend {
		bcfg, err := backend.FromAppConfig(a.cfg)
		if err != nil {
			return nil, "", noop, err
		}
		if bcfg.Type == backend.SQLiteBackend {
			return nil, "", noop, errors.New("--from-backend cannot seed SQLite from itself")
		}
		result, err := backend.NewFactory(a.logger.Logger).CreateBackend(ctx, bcfg)
		if err != nil {
			return nil, "", noop, err
		}
		return result.Source, bcfg.Type.String(), func() { result.Close() }, nil
	}

	var (
		src *memory.Store
		err error
	)
	switch {
	case c.From == "":
		src, err = memory.NewDefault()
	case strings.HasPrefix(c.From, "http://"), strings.HasPrefix(c.From, "https://"):
		src, err = memory.NewFromURL(ctx, c.From, nil)
	default:
		src, err = memory.NewFromFile(c.From)
	}
	if err != nil {
		return nil, "", noop, err
	}
	return src, src.Origin(), noop, nil
}

type listCmd struct {
	Search  string `help:"Case-insensitive text matched against title, description and price."`
	Page    int    `default:"1" help:"Page number, starting at 1."`
	PerPage int    `name:"per-page" default:"10" help:"Items per page."`
}

func (c *listCmd) Run(a *app) error {
	if c.PerPage < 1 {
		return errors.New("--per-page must be at least 1")
	}
	svc, cleanup, err := a.service(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()

	return a.printJSON(svc.List(query.ListParams{Search: c.Search, Page: c.Page, PageSize: c.PerPage}))
}

type reportCmd struct {
	Month int    `required:"" help:"Month number, 1-12."`
	Kind  string `default:"combined" enum:"statistics,bar-chart,pie-chart,combined" help:"Report to print (statistics, bar-chart, pie-chart, combined)."`
}

func (c *reportCmd) Run(a *app) error {
	svc, cleanup, err := a.service(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()

	var report any
	switch c.Kind {
	case "statistics":
		report, err = svc.Statistics(c.Month)
	case "bar-chart":
		report, err = svc.Histogram(c.Month)
	case "pie-chart":
		report, err = svc.Categories(c.Month)
	default:
		report, err = svc.Combined(c.Month)
	}
	if err != nil {
		return fmt.Errorf("%s report for month %d: %w", c.Kind, c.Month, err)
	}
	return a.printJSON(report)
}

type publishCmd struct {
	Concurrency int `default:"4" help:"Months computed in parallel."`
}

func (c *publishCmd) Run(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := a.amqpClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	svc, cleanup, err := a.service(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := worker.NewReportWorker(svc, client, c.Concurrency).PublishAll(ctx)
	fmt.Fprintf(a.out, "published %d monthly reports\n", n)
	return err
}

type watchCmd struct{}

func (c *watchCmd) Run(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := a.amqpClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.ConsumeReports(ctx, func(msg *amqp.MonthlyReportMessage) error {
		return a.printJSON(msg)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) service(ctx context.Context) (*query.Service, func(), error) {
	st, result, err := cli.OpenStore(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return query.NewService(st), func() { result.Close() }, nil
}

func (a *app) amqpClient(ctx context.Context) (*amqp.Client, error) {
	if a.cfg.AMQPURL == "" {
		return nil, errors.New("AMQP_URL is not set")
	}
	return amqp.NewClient(ctx, a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
