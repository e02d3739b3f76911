// Package api provides types and functions to interact with the Spanish government
// fuel price API, fetch fuel station data, and perform geospatial queries.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
)

const (
	ApiResultOK    = "OK"
	DefaultTimeout = 30 * time.Second
	DefaultBaseURL = "https://sedeaplicaciones.minetur.gob.es/ServiciosRESTCarburantes/PreciosCarburantes"

	// DatasetTitle names the official price dataset when citing it.
	DatasetTitle = "Ministerio para la Transición Ecológica - Precios de carburantes en estaciones de servicio"
)

// FuelPriceAPI provides methods to fetch fuel price data from the official API.
type FuelPriceAPI struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a FuelPriceAPI.
type Option func(*FuelPriceAPI)

// WithBaseURL points the client to another service root.
func WithBaseURL(u string) Option {
	return func(api *FuelPriceAPI) {
		api.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(api *FuelPriceAPI) {
		api.httpClient = c
	}
}

// NewFuelPriceAPI creates a new FuelPriceAPI client with default settings.
func NewFuelPriceAPI(opts ...Option) *FuelPriceAPI {
	api := &FuelPriceAPI{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(api)
	}
	return api
}

// BaseURL returns the service root the client talks to.
func (api *FuelPriceAPI) BaseURL() string {
	return api.baseURL
}

// FetchPricesForDate fetches fuel station prices for a specific date.
func (api *FuelPriceAPI) FetchPricesForDate(ctx context.Context, date time.Time) (*GasStationList, error) {
	return api.fetch(ctx, fmt.Sprintf("%s/EstacionesTerrestresHist/%s", api.baseURL, date.Format("02-01-2006")))
}

// FetchPrices fetches the latest available fuel station prices.
func (api *FuelPriceAPI) FetchPrices(ctx context.Context) (*GasStationList, error) {
	return api.fetch(ctx, api.baseURL+"/EstacionesTerrestres/")
}

// FetchProvincePrices fetches the latest prices of the stations of one
// province, identified by its two digit IDProvincia.
func (api *FuelPriceAPI) FetchProvincePrices(ctx context.Context, provinceID string) (*GasStationList, error) {
	return api.fetch(ctx, fmt.Sprintf("%s/EstacionesTerrestres/FiltroProvincia/%s", api.baseURL, provinceID))
}

// NearbyPrices returns a list of gas stations within a given distance (meters) from the specified coordinates.
func (api *FuelPriceAPI) NearbyPrices(ctx context.Context, lat, lng, distance float64) ([]*GasStation, error) {
	prices, err := api.FetchPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching current prices: %w", err)
	}

	return prices.Within(lat, lng, distance), nil
}

func (api *FuelPriceAPI) fetch(ctx context.Context, url string) (*GasStationList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := api.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var pricesResponse GasStationList
	if err := json.Unmarshal(body, &pricesResponse); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}

	return &pricesResponse, nil
}

// Within returns the stations of the list that are at most distance
// meters away from the given coordinates.
func (l *GasStationList) Within(lat, lng, distance float64) []*GasStation {
	var nearbyStations []*GasStation
	for i := range l.ListaEESSPrecio {
		station := &l.ListaEESSPrecio[i]
		d, ok := station.DistanceTo(lat, lng)
		if ok && d <= distance {
			nearbyStations = append(nearbyStations, station)
		}
	}
	return nearbyStations
}

// Nearest returns the station closest to the given coordinates and its
// distance in meters. ok is false when no station has usable coordinates.
func (l *GasStationList) Nearest(lat, lng float64) (nearest *GasStation, distance float64, ok bool) {
	for i := range l.ListaEESSPrecio {
		station := &l.ListaEESSPrecio[i]
		d, valid := station.DistanceTo(lat, lng)
		if !valid {
			continue
		}
		if !ok || d < distance {
			nearest, distance, ok = station, d, true
		}
	}
	return nearest, distance, ok
}

// DistanceTo returns the haversine distance in meters from the station
// to the given coordinates. ok is false when the station coordinates
// cannot be parsed.
func (s *GasStation) DistanceTo(lat, lng float64) (float64, bool) {
	stationLat, err := ParseLatLong(s.Latitud)
	if err != nil {
		return 0, false
	}

	stationLng, err := ParseLatLong(s.Longitud)
	if err != nil {
		return 0, false
	}

	return gpx.Distance2D(lat, lng, stationLat, stationLng, true), true
}

// ParseLatLong parses a latitude or longitude string (with comma or dot) to float64.
func ParseLatLong(s string) (float64, error) {
	s = strings.Replace(s, ",", ".", 1)
	m, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return m, nil
}
