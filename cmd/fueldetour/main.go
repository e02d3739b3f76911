package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rubiojr/fueldetour/internal/config"
	"github.com/rubiojr/fueldetour/internal/translations"
	"github.com/rubiojr/fueldetour/pkg/api"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "fueldetour",
		Usage: "Find out whether driving to a cheaper fuel station pays off",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file (YAML)",
				EnvVars: []string{"FUELDETOUR_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: "Language of messages and reports (es, en)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log debug messages to stderr",
			},
		},
		Commands: []*cli.Command{
			calcCommand(),
			reportCommand(),
			pressCommand(),
			provinceCommand(),
			nearbyCommand(),
			updateCommand(),
			checkStatusCommand(),
			serveCommand(),
		},
	}
}

// loadConfig reads the --config file over the defaults and applies the
// global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("lang") {
		cfg.Lang = translations.GetLanguage(c.String("lang"))
	}
	return cfg, nil
}

func newLogger(c *cli.Context) *slog.Logger {
	if c.Bool("debug") {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "db",
		Usage: "Database file (defaults to prices.db from the configuration)",
	}
}

func dateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "date",
		Usage: "Read the snapshot stored for this day (YYYY-MM-DD) instead of the latest one",
	}
}

func snapshotDate(c *cli.Context) (time.Time, error) {
	date, err := time.Parse(dateLayout, c.String("date"))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", c.String("date"), err)
	}
	return date, nil
}

func dbPath(c *cli.Context, cfg *config.Config) string {
	if c.IsSet("db") {
		return c.String("db")
	}
	return cfg.Prices.DB
}

func newFetcher(cfg *config.Config) *api.FuelPriceAPI {
	return api.NewFuelPriceAPI(api.WithBaseURL(cfg.Prices.APIURL))
}
