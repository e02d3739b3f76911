// Package pricedb keeps daily snapshots of the national fuel price list
// in SQLite, with an in-memory cache in front of the latest snapshot.
package pricedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/patrickmn/go-cache"
	"github.com/rubiojr/fueldetour/pkg/api"
)

const (
	dateLayout         = "2006-01-02"
	lastPricesKey      = "last_price"
	deleteRecordsPause = 50
	deleteBatchSize    = 1000
)

const (
	defaultCacheExpirationMinutes = 10
	defaultCacheCleanupMinutes    = 30
	defaultSleepMs                = 200
	defaultCacheSize              = -1024 * 1024 // negative value for pages
	defaultPageSize               = 4096
)

// FirstSnapshotDate is the oldest day the historic endpoint serves.
var FirstSnapshotDate = time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC)

// ErrNoData is returned when no snapshot is stored yet.
var ErrNoData = errors.New("no data available")

// Fetcher retrieves price lists from the official service.
type Fetcher interface {
	FetchPrices(ctx context.Context) (*api.GasStationList, error)
	FetchPricesForDate(ctx context.Context, date time.Time) (*api.GasStationList, error)
}

type Storage struct {
	db    *sql.DB
	cache *cache.Cache
	log   *slog.Logger
}

// NewStorage opens (creating when needed) the snapshot database at dbPath.
func NewStorage(ctx context.Context, dbPath string, logger *slog.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := configureSQLitePragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	c := cache.New(defaultCacheExpirationMinutes*time.Minute, defaultCacheCleanupMinutes*time.Minute)

	return &Storage{
		db:    db,
		cache: c,
		log:   logger,
	}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS fuel_prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT UNIQUE NOT NULL,
		data BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fuel_prices_date ON fuel_prices(date);
	`

	_, err := db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}
	return nil
}

func configureSQLitePragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []struct {
		stmt string
		what string
	}{
		{"PRAGMA busy_timeout = 10000;", "busy timeout"},
		{"PRAGMA journal_mode = WAL;", "journal mode"},
		{"PRAGMA auto_vacuum = INCREMENTAL;", "auto vacuum"},
		{"PRAGMA temp_store = FILE;", "temp store"},
		{"PRAGMA mmap_size = 0;", "mmap size"},
		// Conservative memory limit (64MB)
		{"PRAGMA soft_heap_limit = 67108864;", "soft heap limit"},
		{"PRAGMA synchronous = NORMAL;", "synchronous"},
		{fmt.Sprintf("PRAGMA cache_size = %d;", defaultCacheSize), "cache size"},
		{fmt.Sprintf("PRAGMA page_size = %d;", defaultPageSize), "page size"},
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.stmt); err != nil {
			return fmt.Errorf("error setting %s: %w", p.what, err)
		}
	}
	return nil
}

func (s *Storage) Close() error {
	if s.cache != nil {
		s.cache.Flush()
	}
	return s.db.Close()
}

// SavePrices stores the raw JSON snapshot for date, replacing any
// snapshot already stored for that day.
func (s *Storage) SavePrices(ctx context.Context, date time.Time, data []byte) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO fuel_prices (date, data) VALUES (?, ?)", date.Format(dateLayout), data)
	if err != nil {
		return fmt.Errorf("error inserting data: %w", err)
	}

	s.cache.Flush()
	return nil
}

func (s *Storage) HasDate(ctx context.Context, date time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fuel_prices WHERE date = ?", date.Format(dateLayout)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("error checking date existence: %w", err)
	}
	return count > 0, nil
}

// GetAllDates returns all dates present in the fuel_prices table, sorted ascending.
func (s *Storage) GetAllDates(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date FROM fuel_prices ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("error querying dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, fmt.Errorf("error scanning date: %w", err)
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			continue
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error: %w", err)
	}
	return dates, nil
}

// MissingDates lists the days between start and end, both included,
// without a stored snapshot.
func (s *Storage) MissingDates(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	dates, err := s.GetAllDates(ctx)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		stored[d.Format(dateLayout)] = struct{}{}
	}

	var missing []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if _, ok := stored[d.Format(dateLayout)]; !ok {
			missing = append(missing, d)
		}
	}
	return missing, nil
}

// LatestPrices returns the most recent snapshot.
func (s *Storage) LatestPrices(ctx context.Context) (*api.GasStationList, error) {
	if cachedData, found := s.cache.Get(lastPricesKey); found {
		s.log.Debug("Using cached data", "key", lastPricesKey)
		return cachedData.(*api.GasStationList), nil
	}

	var jsonData []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM fuel_prices ORDER BY date DESC LIMIT 1").Scan(&jsonData)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("error querying database: %w", err)
	}

	var pricesResponse api.GasStationList
	if err := json.Unmarshal(jsonData, &pricesResponse); err != nil {
		return nil, fmt.Errorf("error unmarshaling data: %w", err)
	}

	s.cache.Set(lastPricesKey, &pricesResponse, cache.DefaultExpiration)

	return &pricesResponse, nil
}

// GetPrices returns the snapshot stored for date.
func (s *Storage) GetPrices(ctx context.Context, date time.Time) (*api.GasStationList, error) {
	dateStr := date.Format(dateLayout)

	var jsonData []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM fuel_prices WHERE date = ?", dateStr).Scan(&jsonData)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w for date %s", ErrNoData, dateStr)
		}
		return nil, fmt.Errorf("error querying database: %w", err)
	}

	var pricesResponse api.GasStationList
	if err := json.Unmarshal(jsonData, &pricesResponse); err != nil {
		return nil, fmt.Errorf("error unmarshaling data: %w", err)
	}
	return &pricesResponse, nil
}

// LastUpdateDate returns the day of the latest snapshot, nil when the
// database is empty.
func (s *Storage) LastUpdateDate(ctx context.Context) (*time.Time, error) {
	var dateStr string
	err := s.db.QueryRowContext(ctx, "SELECT date FROM fuel_prices ORDER BY date DESC LIMIT 1").Scan(&dateStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying last update date: %w", err)
	}

	lastUpdate, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("error parsing date %s: %w", dateStr, err)
	}

	return &lastUpdate, nil
}

// NearbyPrices returns the stations of the latest snapshot within
// distance meters of the given coordinates.
func (s *Storage) NearbyPrices(ctx context.Context, lat, lng, distance float64) ([]*api.GasStation, error) {
	cacheKey := fmt.Sprintf("nearby_prices_%f_%f_%f", lat, lng, distance)

	if cachedData, found := s.cache.Get(cacheKey); found {
		s.log.Debug("Using cached data", "key", cacheKey)
		return cachedData.([]*api.GasStation), nil
	}
	s.log.Debug("Fetching data from database, cached data not found", "key", cacheKey)

	pricesResponse, err := s.LatestPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting last price: %w", err)
	}

	nearbyStations := pricesResponse.Within(lat, lng, distance)
	s.cache.Set(cacheKey, nearbyStations, cache.DefaultExpiration)

	return nearbyStations, nil
}

// Update stores today's snapshot fetched from f.
func (s *Storage) Update(ctx context.Context, f Fetcher) error {
	pricesResponse, err := f.FetchPrices(ctx)
	if err != nil {
		return err
	}

	return s.save(ctx, time.Now(), pricesResponse)
}

// Backfill fetches and stores every missing day between start and end,
// then today's snapshot. Days the service cannot provide are skipped.
func (s *Storage) Backfill(ctx context.Context, f Fetcher, start, end time.Time) error {
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return err
		}

		day := date.Format(dateLayout)
		hasDate, err := s.HasDate(ctx, date)
		if err != nil {
			s.log.Debug("error checking if date exists", "date", day, "error", err)
			continue
		}
		if hasDate {
			continue
		}

		s.log.Debug("fetching data for", "date", day)

		pricesResponse, err := f.FetchPricesForDate(ctx, date)
		if err != nil {
			s.log.Debug("Error fetching prices for date", "date", day, "error", err)
			continue
		}

		if err := s.save(ctx, date, pricesResponse); err != nil {
			s.log.Debug("error saving data for", "date", day, "error", err)
			continue
		}
		s.log.Debug("Saved data for", "date", day)
		time.Sleep(time.Duration(defaultSleepMs) * time.Millisecond)
	}

	if err := s.Update(ctx, f); err != nil {
		return fmt.Errorf("error saving data for today: %w", err)
	}

	s.log.Info("Successfully saved data for today")
	return nil
}

func (s *Storage) save(ctx context.Context, date time.Time, pricesResponse *api.GasStationList) error {
	if pricesResponse.ResultadoConsulta != api.ApiResultOK {
		return fmt.Errorf("API returned non-OK result: %s", pricesResponse.ResultadoConsulta)
	}

	data, err := json.Marshal(pricesResponse)
	if err != nil {
		return fmt.Errorf("error marshaling data: %w", err)
	}

	return s.SavePrices(ctx, date, data)
}

// DeleteOldRecords removes snapshots older than daysOld days, one row at
// a time to keep memory usage flat on small hosts.
func (s *Storage) DeleteOldRecords(ctx context.Context, daysOld int) (int, error) {
	cutoffDate := time.Now().AddDate(0, 0, -daysOld).Format(dateLayout)

	s.log.Info("Starting cleanup of old records", "cutoff_date", cutoffDate)

	deletedCount := 0
	for {
		var rowid int64
		err := s.db.QueryRowContext(ctx, "SELECT ROWID FROM fuel_prices WHERE date < ? ORDER BY ROWID LIMIT 1", cutoffDate).Scan(&rowid)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return deletedCount, fmt.Errorf("error querying fuel_prices ROWID: %w", err)
		}

		if _, err = s.db.ExecContext(ctx, "DELETE FROM fuel_prices WHERE ROWID = ?", rowid); err != nil {
			return deletedCount, fmt.Errorf("error deleting fuel_prices record: %w", err)
		}

		deletedCount++
		if deletedCount%deleteBatchSize == 0 {
			s.log.Debug("Deleted fuel_prices records", "count", deletedCount)
			time.Sleep(deleteRecordsPause * time.Millisecond)
		}
	}

	if deletedCount > 0 {
		s.cache.Flush()
	}
	s.log.Info("Completed fuel_prices cleanup", "deleted_count", deletedCount)
	return deletedCount, nil
}

func (s *Storage) VacuumDatabase(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "PRAGMA incremental_vacuum(1000)")
	if err != nil {
		return fmt.Errorf("error performing incremental vacuum: %w", err)
	}

	return nil
}

// Watch stores a fresh snapshot right away and then every interval,
// pruning snapshots older than retentionDays (0 keeps everything). Failed
// refreshes are logged and retried on the next tick. Watch returns nil
// once ctx is done.
func (s *Storage) Watch(ctx context.Context, f Fetcher, interval time.Duration, retentionDays int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.Update(ctx, f); err != nil {
			s.log.Error("Error updating prices", "error", err)
		} else {
			s.log.Info("Price update completed successfully")
		}

		if retentionDays > 0 {
			if _, err := s.DeleteOldRecords(ctx, retentionDays); err != nil {
				s.log.Error("Error deleting old records", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
