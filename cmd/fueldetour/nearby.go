package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/internal/pricedb"
	"github.com/rubiojr/fueldetour/internal/translations"
	"github.com/rubiojr/fueldetour/pkg/api"
	"github.com/urfave/cli/v2"
)

const (
	defaultRadiusKm = 5.0
	metersPerKm     = 1000.0
)

func nearbyCommand() *cli.Command {
	return &cli.Command{
		Name:  "nearby",
		Usage: "List nearby stations and whether the detour to each one pays off",
		Flags: append(inputFlags(),
			dbFlag(),
			dateFlag(),
			&cli.StringFlag{
				Name:  "location",
				Usage: "Location to search",
			},
			&cli.Float64Flag{
				Name:  "lat",
				Usage: "Latitude of the location",
			},
			&cli.Float64Flag{
				Name:  "long",
				Usage: "Longitude of the location",
			},
			&cli.Float64Flag{
				Name:    "radius",
				Aliases: []string{"r"},
				Usage:   "Search radius in kilometers",
				Value:   defaultRadiusKm,
			},
			&cli.StringFlag{
				Name:  "fuel",
				Usage: "Fuel type to compare",
				Value: string(api.Gasolina95),
			},
		),
		Action: nearbyAction,
	}
}

func nearbyAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	t := translations.GetTranslations(cfg.Lang)
	logger := newLogger(c)
	ctx := context.Background()

	lat, lng := c.Float64("lat"), c.Float64("long")
	if loc := c.String("location"); loc != "" {
		place, err := newGeocoder(cfg, logger).Geocode(ctx, loc)
		if err != nil {
			return fmt.Errorf("%s: %w", t.Failure(detour.Classify(err)), err)
		}
		fmt.Println("Location found:", place.Name)
		lat, lng = place.Lat, place.Lng
	} else if !c.IsSet("lat") || !c.IsSet("long") {
		return errors.New("location or latitude and longitude are required")
	}

	form, err := formFromFlags(c, cfg, t)
	if err != nil {
		return err
	}

	storage, err := pricedb.NewStorage(ctx, dbPath(c, cfg), logger)
	if err != nil {
		return fmt.Errorf("error initializing storage: %w", err)
	}
	defer storage.Close()

	radius := c.Float64("radius")
	var nearbyStations []*api.GasStation
	if c.IsSet("date") {
		date, err := snapshotDate(c)
		if err != nil {
			return err
		}
		prices, err := storage.GetPrices(ctx, date)
		if err != nil {
			return fmt.Errorf("error reading snapshot: %w", err)
		}
		nearbyStations = prices.Within(lat, lng, radius*metersPerKm)
	} else {
		nearbyStations, err = storage.NearbyPrices(ctx, lat, lng, radius*metersPerKm)
		if err != nil {
			return fmt.Errorf("error fetching nearby stations: %w", err)
		}
	}

	stations := make([]api.StationWithDistance, 0, len(nearbyStations))
	for _, station := range nearbyStations {
		distance, ok := station.DistanceTo(lat, lng)
		if !ok {
			continue
		}
		stations = append(stations, api.StationWithDistance{Station: station, Distance: distance})
	}

	if len(stations) == 0 {
		fmt.Printf("%s %g km\n", t.NoStationsFound, radius)
		return nil
	}

	fuelType := api.ParseFuelType(c.String("fuel"))
	api.RankByPrice(stations, fuelType)

	p := t.Printer()
	for i, s := range stations {
		station := s.Station
		distanceKm := s.Distance / metersPerKm
		fmt.Printf("%d. %s (%s)\n", i+1, station.Rotulo, station.Direccion)
		fmt.Printf("   Municipio: %s\n", station.Municipio)
		p.Printf("   Distance: %.2f km\n", distanceKm)

		price := station.Price(fuelType)
		if price == 0 {
			fmt.Printf("   %s: -\n\n", fuelType)
			continue
		}
		p.Printf("   %s: %.3f €/l\n", fuelType, price)

		data := form.Data()
		data.PriceOffRoad = price
		if issue := detour.Validate(detour.PriceOffRoad, price, data); issue != detour.IssueNone {
			fmt.Printf("   %s\n\n", t.Issue(issue))
			continue
		}
		result := detour.Compute(data)
		verdict := "✗"
		if result.Worthwhile(distanceKm) {
			verdict = "✓"
		}
		p.Printf("   %s %+.2f €\n\n", verdict, result.NetGain(distanceKm))
	}

	fmt.Printf("Found %d stations within %g km radius\n", len(stations), radius)
	return nil
}
