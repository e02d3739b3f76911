package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rubiojr/fueldetour/internal/config"
	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/internal/pricedb"
	"github.com/rubiojr/fueldetour/internal/province"
	"github.com/rubiojr/fueldetour/internal/translations"
	"github.com/rubiojr/fueldetour/pkg/api"
	"github.com/urfave/cli/v2"
)

func provinceCommand() *cli.Command {
	return &cli.Command{
		Name:  "province",
		Usage: "Show the average fuel prices of the province around a position",
		Flags: append(inputFlags(),
			dbFlag(),
			dateFlag(),
			&cli.Float64Flag{
				Name:  "lat",
				Usage: "Latitude of the location",
			},
			&cli.Float64Flag{
				Name:  "long",
				Usage: "Longitude of the location",
			},
			&cli.StringFlag{
				Name:  "location",
				Usage: "Place name to geocode",
			},
			&cli.BoolFlag{
				Name:  "live",
				Usage: "Query the official service instead of the local database",
			},
			&cli.StringFlag{
				Name:  "apply",
				Usage: "Use the average price of this fuel type for both stations and recompute",
			},
		),
		Action: provinceAction,
	}
}

func provinceAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	t := translations.GetTranslations(cfg.Lang)
	logger := newLogger(c)
	ctx := context.Background()

	if c.Bool("live") && c.IsSet("date") {
		return errors.New("--date reads the local database and cannot be combined with --live")
	}

	fetcher := newFetcher(cfg)
	var source province.Source = province.SourceFunc(fetcher.FetchPrices)
	if !c.Bool("live") {
		storage, err := pricedb.NewStorage(ctx, dbPath(c, cfg), logger)
		if err != nil {
			return fmt.Errorf("error initializing storage: %w", err)
		}
		defer storage.Close()
		source = snapshotSource(storage, fetcher, logger)

		if c.IsSet("date") {
			date, err := snapshotDate(c)
			if err != nil {
				return err
			}
			source = province.SourceFunc(func(ctx context.Context) (*api.GasStationList, error) {
				return storage.GetPrices(ctx, date)
			})
		}
	}
	locator := newLocator(cfg, source, logger)

	var report *province.Report
	switch {
	case c.String("location") != "":
		var place province.Place
		report, place, err = province.LookupPlace(ctx, newGeocoder(cfg, logger), locator, c.String("location"))
		if place.Name != "" {
			fmt.Println("Location found:", place.Name)
		}
	case c.IsSet("lat") && c.IsSet("long"):
		report, err = locator.Lookup(ctx, c.Float64("lat"), c.Float64("long"))
	default:
		return errors.New("location or latitude and longitude are required")
	}
	if err != nil {
		return fmt.Errorf("%s: %w", t.Failure(detour.Classify(err)), err)
	}

	printProvince(report, t)

	if !c.IsSet("apply") {
		return nil
	}

	fuelType := api.ParseFuelType(c.String("apply"))
	price, ok := report.Price(fuelType)
	if !ok {
		return fmt.Errorf("no %s price in %s", fuelType, report.Province)
	}

	form, err := formFromFlags(c, cfg, t)
	if err != nil {
		return err
	}
	if err := form.ApplyPrice(price); err != nil {
		return err
	}

	fmt.Println()
	printInputs(form, t)
	if !form.Valid() {
		return invalidForm(form, t)
	}
	printResult(form.Result(), t)
	return nil
}

func printProvince(r *province.Report, t translations.Translations) {
	fmt.Printf("%s: %s (%s), %d %s\n\n", t.Province, r.Province, r.ProvinceID, r.Stations, t.StationsWithin)
	for _, fuelType := range api.FuelTypes {
		if price, ok := r.Price(fuelType); ok {
			fmt.Printf("  %-20s %s\n", fuelType, price)
		}
	}

	fmt.Printf("\n%s:\n", t.Sources)
	for _, c := range r.Citations {
		fmt.Printf("  %s <%s>\n", c.Title, c.URI)
	}
}

func newLocator(cfg *config.Config, source province.Source, logger *slog.Logger) *province.Locator {
	return province.NewLocator(source, province.Options{
		Enabled:       cfg.Location.Enabled,
		MaxDistanceKm: cfg.Prices.NearestMaxKm,
		Timeout:       cfg.Prices.LookupTimeout,
		SourceURI:     cfg.Prices.APIURL,
	}, logger)
}

func newGeocoder(cfg *config.Config, logger *slog.Logger) *province.Geocoder {
	return province.NewGeocoder(cfg.Location.Nominatim, logger).WithTimeout(cfg.Location.Timeout)
}

// snapshotSource reads the latest stored snapshot and falls back to the
// official service while the database is still empty.
func snapshotSource(storage *pricedb.Storage, fetcher pricedb.Fetcher, logger *slog.Logger) province.Source {
	return province.SourceFunc(func(ctx context.Context) (*api.GasStationList, error) {
		prices, err := storage.LatestPrices(ctx)
		if errors.Is(err, pricedb.ErrNoData) {
			logger.Debug("No stored snapshot, querying the service")
			return fetcher.FetchPrices(ctx)
		}
		return prices, err
	})
}
