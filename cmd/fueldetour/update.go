package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rubiojr/fueldetour/internal/pricedb"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Update the fuel price database",
		Flags: []cli.Flag{
			dbFlag(),
			&cli.StringFlag{
				Name:  "since",
				Usage: "Also fetch every missing day since this date (YYYY-MM-DD)",
			},
			&cli.IntFlag{
				Name:  "retention",
				Usage: "Delete snapshots older than this many days, 0 keeps everything (defaults to the configuration)",
			},
		},
		Action: updateAction,
	}
}

func updateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c)
	ctx := context.Background()

	storage, err := pricedb.NewStorage(ctx, dbPath(c, cfg), logger)
	if err != nil {
		return fmt.Errorf("error initializing storage: %w", err)
	}
	defer storage.Close()

	fetcher := newFetcher(cfg)
	if since := c.String("since"); since != "" {
		start, err := time.Parse(dateLayout, since)
		if err != nil {
			return fmt.Errorf("invalid since date: %w", err)
		}
		err = storage.Backfill(ctx, fetcher, start, time.Now().AddDate(0, 0, -1))
		if err != nil {
			return err
		}
	} else if err := storage.Update(ctx, fetcher); err != nil {
		return fmt.Errorf("error updating prices: %w", err)
	}

	retention := cfg.Prices.RetentionDays
	if c.IsSet("retention") {
		retention = c.Int("retention")
	}
	if retention > 0 {
		deleted, err := storage.DeleteOldRecords(ctx, retention)
		if err != nil {
			return err
		}
		if deleted > 0 {
			if err := storage.VacuumDatabase(ctx); err != nil {
				return err
			}
			fmt.Printf("Deleted %d snapshots older than %d days\n", deleted, retention)
		}
	}

	last, err := storage.LastUpdateDate(ctx)
	if err != nil {
		return err
	}
	if last == nil {
		return pricedb.ErrNoData
	}
	fmt.Println("Prices updated, latest snapshot:", last.Format(dateLayout))
	return nil
}
