package province

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/muesli/gominatim"
	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testPrices() *api.GasStationList {
	return &api.GasStationList{
		ResultadoConsulta: api.ApiResultOK,
		ListaEESSPrecio: []api.GasStation{
			{IDEESS: "1", Provincia: "MADRID", IDProvincia: "28", Latitud: "40,4168", Longitud: "-3,7038",
				PrecioGasolina95E5: "1,699", PrecioGasoleoA: "1,559"},
			{IDEESS: "2", Provincia: "MADRID", IDProvincia: "28", Latitud: "40,5000", Longitud: "-3,6000",
				PrecioGasolina95E5: "1,599", PrecioGasoleoA: ""},
			{IDEESS: "3", Provincia: "TOLEDO", IDProvincia: "45", Latitud: "39,8628", Longitud: "-4,0273",
				PrecioGasolina95E5: "1,499", PrecioGasoleoA: "1,399"},
		},
	}
}

type countingSource struct {
	calls int
	list  *api.GasStationList
	err   error
	delay time.Duration
}

func (s *countingSource) LatestPrices(ctx context.Context) (*api.GasStationList, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.list, s.err
}

func defaultOptions() Options {
	return Options{Enabled: true, MaxDistanceKm: 50, SourceURI: "https://example.test/prices"}
}

func TestLocator_Lookup(t *testing.T) {
	src := &countingSource{list: testPrices()}
	l := NewLocator(src, defaultOptions(), discard)

	report, err := l.Lookup(context.Background(), 40.42, -3.70)
	require.NoError(t, err)

	assert.Equal(t, "MADRID", report.Province)
	assert.Equal(t, "28", report.ProvinceID)
	assert.Equal(t, 2, report.Stations)

	price, ok := report.Price(api.Gasolina95)
	require.True(t, ok)
	assert.Equal(t, "1,649 €/l", price)

	price, ok = report.Price(api.GasoleoA)
	require.True(t, ok)
	assert.Equal(t, "1,559 €/l", price)

	_, ok = report.Price(api.Hidrogeno)
	assert.False(t, ok)

	require.Len(t, report.Citations, 1)
	assert.Equal(t, "https://example.test/prices", report.Citations[0].URI)
	assert.Equal(t, api.DatasetTitle, report.Citations[0].Title)
}

func TestLocator_LookupIsCached(t *testing.T) {
	src := &countingSource{list: testPrices()}
	l := NewLocator(src, defaultOptions(), discard)

	_, err := l.Lookup(context.Background(), 40.4168, -3.7038)
	require.NoError(t, err)
	_, err = l.Lookup(context.Background(), 40.4171, -3.7041)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
}

func TestLocator_Failures(t *testing.T) {
	tests := []struct {
		name string
		src  *countingSource
		opts func(*Options)
		lat  float64
		lng  float64
		want detour.FailureKind
	}{
		{
			name: "disabled",
			src:  &countingSource{list: testPrices()},
			opts: func(o *Options) { o.Enabled = false },
			lat:  40.4, lng: -3.7,
			want: detour.FailurePermissionDenied,
		},
		{
			name: "outside coverage",
			src:  &countingSource{list: testPrices()},
			lat:  28.1, lng: -15.4,
			want: detour.FailureGeneric,
		},
		{
			name: "source error",
			src:  &countingSource{err: errors.New("boom")},
			lat:  40.4, lng: -3.7,
			want: detour.FailureGeneric,
		},
		{
			name: "timeout",
			src:  &countingSource{list: testPrices(), delay: time.Second},
			opts: func(o *Options) { o.Timeout = 10 * time.Millisecond },
			lat:  40.4, lng: -3.7,
			want: detour.FailureTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			_, err := NewLocator(tt.src, opts, discard).Lookup(context.Background(), tt.lat, tt.lng)
			require.Error(t, err)
			assert.Equal(t, tt.want, detour.Classify(err))
		})
	}
}

func TestLocator_OutsideCoverageError(t *testing.T) {
	l := NewLocator(&countingSource{list: testPrices()}, defaultOptions(), discard)
	_, err := l.Lookup(context.Background(), 28.1, -15.4)
	assert.ErrorIs(t, err, ErrOutsideCoverage)
}

func TestSourceFunc(t *testing.T) {
	var src Source = SourceFunc(func(ctx context.Context) (*api.GasStationList, error) {
		return testPrices(), nil
	})
	list, err := src.LatestPrices(context.Background())
	require.NoError(t, err)
	assert.Len(t, list.ListaEESSPrecio, 3)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1,599 €/l", FormatPrice(1.599))
	assert.Equal(t, "1,6 €/l", FormatPrice(1.60004))
}

func TestGeocoder_Geocode(t *testing.T) {
	calls := 0
	g := NewGeocoder("", discard).WithSearch(func(q gominatim.SearchQuery) ([]gominatim.SearchResult, error) {
		calls++
		assert.Equal(t, "Toledo", q.Q)
		return []gominatim.SearchResult{{DisplayName: "Toledo, Castilla-La Mancha, España", Lat: "39.8628", Lon: "-4.0273"}}, nil
	})

	place, err := g.Geocode(context.Background(), " Toledo ")
	require.NoError(t, err)
	assert.Equal(t, 39.8628, place.Lat)
	assert.Equal(t, -4.0273, place.Lng)
	assert.Equal(t, DefaultNominatimServer, g.Server())

	_, err = g.Geocode(context.Background(), "Toledo")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestGeocoder_Failures(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		search SearchFunc
		want   detour.FailureKind
	}{
		{"empty", "  ", nil, detour.FailureUnsupported},
		{"no results", "Atlantis", func(gominatim.SearchQuery) ([]gominatim.SearchResult, error) {
			return nil, nil
		}, detour.FailureGeneric},
		{"bad coordinates", "Somewhere", func(gominatim.SearchQuery) ([]gominatim.SearchResult, error) {
			return []gominatim.SearchResult{{Lat: "north", Lon: "-3"}}, nil
		}, detour.FailureParse},
		{"search error", "Madrid", func(gominatim.SearchQuery) ([]gominatim.SearchResult, error) {
			return nil, errors.New("503")
		}, detour.FailureGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGeocoder("https://nominatim.example.test/", discard)
			if tt.search != nil {
				g.WithSearch(tt.search)
			}
			_, err := g.Geocode(context.Background(), tt.query)
			require.Error(t, err)
			assert.Equal(t, tt.want, detour.Classify(err))
		})
	}
}

func TestGeocoder_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	g := NewGeocoder("", discard).WithSearch(func(gominatim.SearchQuery) ([]gominatim.SearchResult, error) {
		<-release
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := g.Geocode(ctx, "Madrid")
	require.Error(t, err)
	assert.Equal(t, detour.FailureTimeout, detour.Classify(err))
}

func TestLookupPlace(t *testing.T) {
	g := NewGeocoder("https://nominatim.example.test/", discard).WithSearch(func(gominatim.SearchQuery) ([]gominatim.SearchResult, error) {
		return []gominatim.SearchResult{{DisplayName: "Toledo", Lat: "39.86", Lon: "-4.03"}}, nil
	})
	l := NewLocator(&countingSource{list: testPrices()}, defaultOptions(), discard)

	report, place, err := LookupPlace(context.Background(), g, l, "Toledo")
	require.NoError(t, err)
	assert.Equal(t, "Toledo", place.Name)
	assert.Equal(t, "TOLEDO", report.Province)
	require.Len(t, report.Citations, 2)
	assert.Equal(t, "https://nominatim.example.test/", report.Citations[1].URI)

	// The cached report is not modified by the extra citation.
	cached, err := l.Lookup(context.Background(), 39.86, -4.03)
	require.NoError(t, err)
	assert.Len(t, cached.Citations, 1)
}

func TestLookupPlace_Disabled(t *testing.T) {
	searches := 0
	g := NewGeocoder("", discard).WithSearch(func(gominatim.SearchQuery) ([]gominatim.SearchResult, error) {
		searches++
		return []gominatim.SearchResult{{DisplayName: "Toledo", Lat: "39.86", Lon: "-4.03"}}, nil
	})
	src := &countingSource{list: testPrices()}
	opts := defaultOptions()
	opts.Enabled = false
	l := NewLocator(src, opts, discard)
	assert.False(t, l.Enabled())

	_, _, err := LookupPlace(context.Background(), g, l, "Toledo")
	require.Error(t, err)
	assert.Equal(t, detour.FailurePermissionDenied, detour.Classify(err))
	assert.Zero(t, searches)
	assert.Zero(t, src.calls)
}

func TestGeocoder_WithTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	g := NewGeocoder("", discard).WithTimeout(10 * time.Millisecond).WithSearch(func(gominatim.SearchQuery) ([]gominatim.SearchResult, error) {
		<-release
		return nil, nil
	})

	_, err := g.Geocode(context.Background(), "Madrid")
	assert.Equal(t, detour.FailureTimeout, detour.Classify(err))
}
