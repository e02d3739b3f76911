package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rubiojr/fueldetour/internal/pricedb"
	"github.com/rubiojr/fueldetour/internal/server"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API and keep the price database up to date",
		Flags: []cli.Flag{
			dbFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to the configuration)",
			},
			&cli.BoolFlag{
				Name:  "no-update",
				Usage: "Do not refresh the price database in the background",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}

	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := server.NewLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := pricedb.NewStorage(ctx, dbPath(c, cfg), logger.Logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	fetcher := newFetcher(cfg)
	srv := server.New(cfg, server.Options{
		Locator:  newLocator(cfg, snapshotSource(storage, fetcher, logger.Logger), logger.Logger),
		Geocoder: newGeocoder(cfg, logger.Logger),
	}, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})
	if !c.Bool("no-update") {
		g.Go(func() error {
			return storage.Watch(ctx, fetcher, cfg.Prices.UpdateInterval, cfg.Prices.RetentionDays)
		})
	}
	return g.Wait()
}
