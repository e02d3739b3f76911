package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleList = `{
	"Fecha": "19/10/2026 8:00:00",
	"ListaEESSPrecio": [
		{"IDEESS": "1", "Rótulo": "REPSOL", "Latitud": "40,416800", "Longitud (WGS84)": "-3,703800",
		 "Provincia": "MADRID", "IDProvincia": "28", "Precio Gasolina 95 E5": "1,699", "Precio Gasoleo A": "1,559"},
		{"IDEESS": "2", "Rótulo": "BALLENOIL", "Latitud": "40,420000", "Longitud (WGS84)": "-3,700000",
		 "Provincia": "MADRID", "IDProvincia": "28", "Precio Gasolina 95 E5": "1,589", "Precio Gasoleo A": ""},
		{"IDEESS": "3", "Rótulo": "CEPSA", "Latitud": "41,387400", "Longitud (WGS84)": "2,168600",
		 "Provincia": "BARCELONA", "IDProvincia": "08", "Precio Gasolina 95 E5": "1,659", "Precio Gasoleo A": "1,529"},
		{"IDEESS": "4", "Rótulo": "SIN COORDENADAS", "Latitud": "", "Longitud (WGS84)": "",
		 "Provincia": "MADRID", "IDProvincia": "28", "Precio Gasolina 95 E5": "1,499"}
	],
	"Nota": "",
	"ResultadoConsulta": "OK"
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *FuelPriceAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFuelPriceAPI(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
}

func TestFuelPriceAPI_FetchPrices(t *testing.T) {
	var gotPath string
	api := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(sampleList))
	})

	prices, err := api.FetchPrices(context.Background())
	if err != nil {
		t.Fatalf("FetchPrices() failed: %v", err)
	}

	if gotPath != "/EstacionesTerrestres/" {
		t.Errorf("unexpected request path %q", gotPath)
	}

	if prices.ResultadoConsulta != ApiResultOK {
		t.Errorf("Expected ResultadoConsulta to be 'OK', got '%s'", prices.ResultadoConsulta)
	}

	if len(prices.ListaEESSPrecio) != 4 {
		t.Fatalf("Expected 4 stations, got %d", len(prices.ListaEESSPrecio))
	}

	station := prices.ListaEESSPrecio[0]
	if station.IDEESS != "1" || station.Rotulo != "REPSOL" || station.Longitud != "-3,703800" {
		t.Errorf("unexpected first station: %+v", station)
	}
}

func TestFuelPriceAPI_FetchPricesForDate(t *testing.T) {
	var gotPath string
	api := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(sampleList))
	})

	date := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	if _, err := api.FetchPricesForDate(context.Background(), date); err != nil {
		t.Fatalf("FetchPricesForDate() failed: %v", err)
	}

	if gotPath != "/EstacionesTerrestresHist/18-10-2026" {
		t.Errorf("unexpected request path %q", gotPath)
	}
}

func TestFuelPriceAPI_FetchProvincePrices(t *testing.T) {
	var gotPath string
	api := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(sampleList))
	})

	if _, err := api.FetchProvincePrices(context.Background(), "28"); err != nil {
		t.Fatalf("FetchProvincePrices() failed: %v", err)
	}

	if gotPath != "/EstacionesTerrestres/FiltroProvincia/28" {
		t.Errorf("unexpected request path %q", gotPath)
	}
}

func TestFuelPriceAPI_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}},
		{"json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>maintenance</html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestServer(t, tt.handler)
			if _, err := api.FetchPrices(context.Background()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFuelPriceAPI_ContextCancelled(t *testing.T) {
	api := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleList))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := api.FetchPrices(ctx); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestFuelPriceAPI_NearbyPrices(t *testing.T) {
	api := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleList))
	})

	// Madrid, Puerta del Sol
	lat := 40.4168
	lng := -3.7038

	stations, err := api.NearbyPrices(context.Background(), lat, lng, 5000)
	if err != nil {
		t.Fatalf("NearbyPrices() failed: %v", err)
	}

	if len(stations) != 2 {
		t.Fatalf("Expected 2 stations near Madrid, got %d", len(stations))
	}

	smallerStations, err := api.NearbyPrices(context.Background(), lat, lng, 100)
	if err != nil {
		t.Fatalf("NearbyPrices() with smaller radius failed: %v", err)
	}

	if len(smallerStations) != 1 || smallerStations[0].IDEESS != "1" {
		t.Errorf("Expected only station 1 within 100m, got %d stations", len(smallerStations))
	}
}

func TestGasStationList_Nearest(t *testing.T) {
	var list GasStationList
	if _, _, ok := list.Nearest(40, -3); ok {
		t.Error("empty list should have no nearest station")
	}

	api := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleList))
	})
	prices, err := api.FetchPrices(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	station, distance, ok := prices.Nearest(41.39, 2.17)
	if !ok {
		t.Fatal("expected a nearest station")
	}
	if station.IDEESS != "3" {
		t.Errorf("expected station 3, got %s", station.IDEESS)
	}
	if distance > 1000 {
		t.Errorf("expected station 3 within 1km, got %.0fm", distance)
	}
}

func TestRankByPrice(t *testing.T) {
	cheap := &GasStation{IDEESS: "cheap", PrecioGasoleoA: "1,459"}
	pricey := &GasStation{IDEESS: "pricey", PrecioGasoleoA: "1,609"}
	none := &GasStation{IDEESS: "none", PrecioGasoleoA: ""}
	tieFar := &GasStation{IDEESS: "tie-far", PrecioGasoleoA: "1,459"}

	stations := []StationWithDistance{
		{Station: none, Distance: 10},
		{Station: pricey, Distance: 20},
		{Station: tieFar, Distance: 900},
		{Station: cheap, Distance: 300},
	}
	RankByPrice(stations, GasoleoA)

	want := []string{"cheap", "tie-far", "pricey", "none"}
	for i, id := range want {
		if stations[i].Station.IDEESS != id {
			t.Errorf("position %d: expected %s, got %s", i, id, stations[i].Station.IDEESS)
		}
	}
}

func TestParseFuelType(t *testing.T) {
	tests := []struct {
		input    string
		expected FuelType
	}{
		{"gasolina95", Gasolina95},
		{"Gasolina95E5", Gasolina95},
		{"gasoleo", GasoleoA},
		{"diesel", GasoleoA},
		{"gasoleoPremium", GasoleoPremium},
		{"glp", GLP},
		{"gasnatural", GNC},
		{"unknown", Gasolina95},
	}

	for _, test := range tests {
		if got := ParseFuelType(test.input); got != test.expected {
			t.Errorf("ParseFuelType(%q) = %s, expected %s", test.input, got, test.expected)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1,599", 1.599},
		{"1.599", 1.599},
		{" 1,459 ", 1.459},
		{"", 0},
		{"-", 0},
		{"n/a", 0},
	}

	for _, test := range tests {
		if got := ParsePrice(test.input); got != test.expected {
			t.Errorf("ParsePrice(%q) = %f, expected %f", test.input, got, test.expected)
		}
	}

	station := &GasStation{PrecioGasolina98E5: "1,789", PrecioHidrogeno: "15,000"}
	if got := station.Price(Gasolina98); got != 1.789 {
		t.Errorf("Price(gasolina98) = %f, expected 1.789", got)
	}
	if got := station.Price(Hidrogeno); got != 15 {
		t.Errorf("Price(hidrogeno) = %f, expected 15", got)
	}
	if got := station.Price(GasoleoA); got != 0 {
		t.Errorf("Price(gasoleoA) = %f, expected 0", got)
	}
}

func TestParseLatLong(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		hasError bool
	}{
		{"40.4168", 40.4168, false},
		{"40,4168", 40.4168, false}, // Spanish decimal format
		{"-3.7038", -3.7038, false},
		{"-3,7038", -3.7038, false}, // Spanish decimal format
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, test := range tests {
		result, err := ParseLatLong(test.input)

		if test.hasError {
			if err == nil {
				t.Errorf("ParseLatLong(%q) expected error but got none", test.input)
			}
		} else {
			if err != nil {
				t.Errorf("ParseLatLong(%q) unexpected error: %v", test.input, err)
			}
			if result != test.expected {
				t.Errorf("ParseLatLong(%q) = %f, expected %f", test.input, result, test.expected)
			}
		}
	}
}

func BenchmarkGasStationList_Within(b *testing.B) {
	list := &GasStationList{}
	for i := 0; i < 10000; i++ {
		list.ListaEESSPrecio = append(list.ListaEESSPrecio, GasStation{Latitud: "40,4168", Longitud: "-3,7038"})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		list.Within(40.4168, -3.7038, 5000.0)
	}
}
