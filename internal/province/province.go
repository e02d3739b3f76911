// Package province looks up the average fuel prices of the province a
// position belongs to, using the official station price list.
package province

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/pkg/api"
)

const (
	metersPerKm                        = 1000.0
	decimalBase                        = 10
	defaultReducePrecisionDecimalPlace = 2
	cacheExpiry                        = 30 * time.Minute
	cacheCleanup                       = 90 * time.Minute
)

// ErrOutsideCoverage is returned when no station is close enough to the
// position to tell its province.
var ErrOutsideCoverage = errors.New("no fuel station near the position")

// Source provides the latest national price list.
type Source interface {
	LatestPrices(ctx context.Context) (*api.GasStationList, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*api.GasStationList, error)

func (f SourceFunc) LatestPrices(ctx context.Context) (*api.GasStationList, error) {
	return f(ctx)
}

// Citation points to where the prices come from.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Report is the outcome of a province lookup.
type Report struct {
	Province   string                   `json:"province"`
	ProvinceID string                   `json:"provinceId"`
	Prices     map[api.FuelType]string  `json:"prices"`
	Averages   map[api.FuelType]float64 `json:"-"`
	Stations   int                      `json:"stations"`
	Citations  []Citation               `json:"citations"`
}

// Price returns the formatted average price of fuelType and whether the
// province has any station selling it.
func (r *Report) Price(fuelType api.FuelType) (string, bool) {
	p, ok := r.Prices[fuelType]
	return p, ok
}

// Options configures a Locator.
type Options struct {
	// Enabled false makes every lookup fail with permission denied.
	Enabled bool
	// MaxDistanceKm bounds how far the nearest station may be.
	MaxDistanceKm float64
	// Timeout bounds a single lookup, 0 for none.
	Timeout time.Duration
	// SourceURI is cited as the origin of the prices.
	SourceURI string
}

// Locator resolves positions to province price reports.
type Locator struct {
	source Source
	opts   Options
	cache  *cache.Cache
	log    *slog.Logger
}

func NewLocator(source Source, opts Options, logger *slog.Logger) *Locator {
	if opts.SourceURI == "" {
		opts.SourceURI = api.DefaultBaseURL
	}
	return &Locator{
		source: source,
		opts:   opts,
		cache:  cache.New(cacheExpiry, cacheCleanup),
		log:    logger,
	}
}

// Lookup returns the average prices of the province around lat, lng.
// Failures wrap a detour.Failure so callers can show a status.
func (l *Locator) Lookup(ctx context.Context, lat, lng float64) (*Report, error) {
	if !l.opts.Enabled {
		return nil, errLocationDisabled()
	}

	roundedLat, roundedLng := reduceLocationPrecision(lat, lng, defaultReducePrecisionDecimalPlace)
	cacheKey := fmt.Sprintf("province_%f_%f", roundedLat, roundedLng)
	if cached, found := l.cache.Get(cacheKey); found {
		l.log.Debug("Using cached data", "key", cacheKey)
		return cached.(*Report), nil
	}

	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	prices, err := l.source.LatestPrices(ctx)
	if err != nil {
		return nil, detour.NewFailure(fmt.Errorf("error fetching prices: %w", err))
	}

	report, err := l.build(prices, lat, lng)
	if err != nil {
		return nil, detour.NewFailure(err)
	}

	l.cache.Set(cacheKey, report, cache.DefaultExpiration)
	l.log.Debug("Province resolved", "province", report.Province, "stations", report.Stations)
	return report, nil
}

// Enabled reports whether location lookups are allowed.
func (l *Locator) Enabled() bool {
	return l.opts.Enabled
}

func errLocationDisabled() error {
	return detour.NewFailure(fmt.Errorf("province lookup: %w", detour.ErrPermissionDenied))
}

func (l *Locator) build(prices *api.GasStationList, lat, lng float64) (*Report, error) {
	nearest, distance, ok := prices.Nearest(lat, lng)
	if !ok || distance > l.opts.MaxDistanceKm*metersPerKm {
		return nil, ErrOutsideCoverage
	}

	report := &Report{
		Province:   nearest.Provincia,
		ProvinceID: nearest.IDProvincia,
		Prices:     make(map[api.FuelType]string),
		Averages:   make(map[api.FuelType]float64),
		Citations: []Citation{{
			Title: api.DatasetTitle,
			URI:   l.opts.SourceURI,
		}},
	}

	sums := make(map[api.FuelType]float64)
	counts := make(map[api.FuelType]int)
	for i := range prices.ListaEESSPrecio {
		station := &prices.ListaEESSPrecio[i]
		if station.IDProvincia != nearest.IDProvincia {
			continue
		}
		report.Stations++
		for _, fuelType := range api.FuelTypes {
			if p := station.Price(fuelType); p > 0 {
				sums[fuelType] += p
				counts[fuelType]++
			}
		}
	}

	for fuelType, n := range counts {
		avg := sums[fuelType] / float64(n)
		report.Averages[fuelType] = avg
		report.Prices[fuelType] = FormatPrice(avg)
	}
	return report, nil
}

// FormatPrice renders a €/l price the way the official feed writes it.
func FormatPrice(p float64) string {
	return detour.FormatDisplay(math.Round(p*1000)/1000) + " €/l"
}

func reduceLocationPrecision(lat, lng float64, decimalPlaces int) (roundedLat, roundedLng float64) {
	factor := math.Pow(decimalBase, float64(decimalPlaces))
	roundedLat = math.Round(lat*factor) / factor
	roundedLng = math.Round(lng*factor) / factor
	return
}
