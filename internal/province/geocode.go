package province

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/gominatim"
	"github.com/patrickmn/go-cache"
	"github.com/rubiojr/fueldetour/internal/detour"
)

// DefaultNominatimServer is the public OpenStreetMap geocoder.
const DefaultNominatimServer = "https://nominatim.openstreetmap.org/"

// Place is a geocoded position.
type Place struct {
	Name string
	Lat  float64
	Lng  float64
}

// Citation credits the geocoder for the position.
func (p Place) Citation(server string) Citation {
	return Citation{Title: "OpenStreetMap Nominatim: " + p.Name, URI: server}
}

// SearchFunc runs a Nominatim search.
type SearchFunc func(q gominatim.SearchQuery) ([]gominatim.SearchResult, error)

// Geocoder resolves place names to coordinates through Nominatim.
type Geocoder struct {
	server  string
	search  SearchFunc
	timeout time.Duration
	cache   *cache.Cache
	log     *slog.Logger
}

// NewGeocoder returns a Geocoder using server, the public instance when
// empty.
func NewGeocoder(server string, logger *slog.Logger) *Geocoder {
	if server == "" {
		server = DefaultNominatimServer
	}
	return &Geocoder{
		server: server,
		search: func(q gominatim.SearchQuery) ([]gominatim.SearchResult, error) {
			gominatim.SetServer(server)
			return q.Get()
		},
		cache: cache.New(cacheExpiry, cacheCleanup),
		log:   logger,
	}
}

// WithSearch replaces the Nominatim search, for tests and proxies.
func (g *Geocoder) WithSearch(search SearchFunc) *Geocoder {
	g.search = search
	return g
}

// WithTimeout bounds every search to d, 0 for none.
func (g *Geocoder) WithTimeout(d time.Duration) *Geocoder {
	g.timeout = d
	return g
}

// Server returns the Nominatim server in use.
func (g *Geocoder) Server() string {
	return g.server
}

// Geocode returns the first match for name. The Nominatim client has no
// context support, so cancellation abandons the request rather than
// aborting it.
func (g *Geocoder) Geocode(ctx context.Context, name string) (Place, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Place{}, detour.NewFailure(fmt.Errorf("geocoding: %w", detour.ErrUnsupported))
	}

	if cached, ok := g.cache.Get(name); ok {
		g.log.Debug("Using cached data", "key", name)
		return cached.(Place), nil
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type outcome struct {
		results []gominatim.SearchResult
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		results, err := g.search(gominatim.SearchQuery{Q: name})
		done <- outcome{results, err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		return Place{}, detour.NewFailure(fmt.Errorf("geocoding %q: %w", name, ctx.Err()))
	case out = <-done:
	}

	if out.err != nil {
		return Place{}, detour.NewFailure(fmt.Errorf("geocoding error: %w", out.err))
	}
	if len(out.results) == 0 {
		return Place{}, detour.NewFailure(fmt.Errorf("no results found for location: %s", name))
	}

	place, err := resultToPlace(out.results[0])
	if err != nil {
		return Place{}, detour.NewFailure(err)
	}

	g.cache.Set(name, place, cache.DefaultExpiration)
	return place, nil
}

func resultToPlace(result gominatim.SearchResult) (Place, error) {
	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("%w: latitude %q", detour.ErrParse, result.Lat)
	}

	lng, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("%w: longitude %q", detour.ErrParse, result.Lon)
	}

	return Place{Name: result.DisplayName, Lat: lat, Lng: lng}, nil
}

// LookupPlace geocodes name and looks up its province, citing the
// geocoder alongside the price source. Nothing is sent to the geocoder
// while location lookups are disabled.
func LookupPlace(ctx context.Context, g *Geocoder, l *Locator, name string) (*Report, Place, error) {
	if !l.Enabled() {
		return nil, Place{}, errLocationDisabled()
	}

	place, err := g.Geocode(ctx, name)
	if err != nil {
		return nil, Place{}, err
	}

	report, err := l.Lookup(ctx, place.Lat, place.Lng)
	if err != nil {
		return nil, place, err
	}

	withPlace := *report
	withPlace.Citations = append(append([]Citation(nil), report.Citations...), place.Citation(g.server))
	return &withPlace, place, nil
}
