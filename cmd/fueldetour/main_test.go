package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/internal/pricedb"
	"github.com/rubiojr/fueldetour/internal/translations"
	"github.com/rubiojr/fueldetour/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(args ...string) error {
	return newApp().Run(append([]string{"fueldetour"}, args...))
}

func TestCalc(t *testing.T) {
	require.NoError(t, run("calc", "--on", "1,699", "--off", "1.599", "--liters", "25", "--consumption", "18", "--chart", "--advice"))
}

func TestCalc_Invalid(t *testing.T) {
	err := run("--lang", "en", "calc", "--off", "2")
	assert.EqualError(t, err, translations.GetEnglishTranslations().FixErrors)
}

func TestCalc_RejectedText(t *testing.T) {
	assert.Error(t, run("calc", "--liters", "12a"))
}

func TestCalc_Config(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lang: en\ndefaults:\n  price_off_road: 1.9\n"), 0o644))

	err := run("--config", path, "calc")
	assert.EqualError(t, err, translations.GetEnglishTranslations().FixErrors)
}

func TestReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, run("report", "--out", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(data[:5]))
}

func TestPress(t *testing.T) {
	require.NoError(t, run("press", "--field", "consumption", "--down", "--hold", "100ms"))
	assert.Error(t, run("press", "--field", "octane"))
}

func TestFieldByFlag(t *testing.T) {
	field, ok := fieldByFlag("liters")
	assert.True(t, ok)
	assert.Equal(t, detour.LitersToRefuel, field)

	_, ok = fieldByFlag("octane")
	assert.False(t, ok)
}

func TestCheckStatus_EmptyDatabase(t *testing.T) {
	require.NoError(t, run("check-status", "--db", filepath.Join(t.TempDir(), "prices.db")))
}

// seedSnapshot stores a one-station snapshot in Madrid for 2024-03-01
// and returns the database path.
func seedSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.db")

	data, err := json.Marshal(api.GasStationList{
		ResultadoConsulta: api.ApiResultOK,
		ListaEESSPrecio: []api.GasStation{
			{IDEESS: "1", Rotulo: "REPSOL", Provincia: "MADRID", IDProvincia: "28",
				Latitud: "40,4168", Longitud: "-3,7038", PrecioGasolina95E5: "1,599"},
		},
	})
	require.NoError(t, err)

	ctx := context.Background()
	storage, err := pricedb.NewStorage(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, storage.SavePrices(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), data))
	require.NoError(t, storage.Close())
	return path
}

func TestNearby_Date(t *testing.T) {
	db := seedSnapshot(t)
	at := []string{"--db", db, "--lat", "40.4168", "--long", "-3.7038", "--on", "1,699"}

	require.NoError(t, run(append([]string{"nearby", "--date", "2024-03-01"}, at...)...))

	err := run(append([]string{"nearby", "--date", "2024-03-02"}, at...)...)
	assert.ErrorIs(t, err, pricedb.ErrNoData)

	assert.Error(t, run(append([]string{"nearby", "--date", "01/03/2024"}, at...)...))
}

func TestProvince_Date(t *testing.T) {
	db := seedSnapshot(t)
	at := []string{"--db", db, "--lat", "40.4168", "--long", "-3.7038"}

	require.NoError(t, run(append([]string{"province", "--date", "2024-03-01"}, at...)...))

	err := run(append([]string{"province", "--date", "2024-03-02"}, at...)...)
	assert.ErrorIs(t, err, pricedb.ErrNoData)

	assert.Error(t, run(append([]string{"province", "--live", "--date", "2024-03-01"}, at...)...))
}
