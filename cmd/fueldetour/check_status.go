package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rubiojr/fueldetour/internal/pricedb"
	"github.com/urfave/cli/v2"
)

func checkStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-status",
		Usage: "Check for days with missing fuel prices",
		Flags: []cli.Flag{
			dbFlag(),
			&cli.StringFlag{
				Name:  "start",
				Usage: "Start date (YYYY-MM-DD), defaults to the start of the retention window",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "End date (YYYY-MM-DD)",
			},
		},
		Action: checkStatusAction,
	}
}

func checkStatusAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx := context.Background()

	storage, err := pricedb.NewStorage(ctx, dbPath(c, cfg), newLogger(c))
	if err != nil {
		return err
	}
	defer storage.Close()

	allDates, err := storage.GetAllDates(ctx)
	if err != nil {
		return err
	}
	if len(allDates) == 0 {
		fmt.Println("No dates found in database.")
		return nil
	}

	startDate := pricedb.FirstSnapshotDate
	if cfg.Prices.RetentionDays > 0 {
		startDate = time.Now().AddDate(0, 0, -cfg.Prices.RetentionDays)
	}
	if c.String("start") != "" {
		startDate, err = time.Parse(dateLayout, c.String("start"))
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
	}

	endDate := time.Now()
	if c.String("end") != "" {
		endDate, err = time.Parse(dateLayout, c.String("end"))
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	}

	fmt.Printf("Checking for missing days in range: %s to %s\n", startDate.Format(dateLayout), endDate.Format(dateLayout))

	missing, err := storage.MissingDates(ctx, startDate, endDate)
	if err != nil {
		return err
	}

	if len(missing) == 0 {
		fmt.Println("No missing days in the given range.")
		return nil
	}
	fmt.Println("Missing days:")
	for _, m := range missing {
		fmt.Println(m.Format(dateLayout))
	}
	return nil
}
