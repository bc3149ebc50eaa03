package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Dialect names as registered with goqu.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// DB is the process-wide store handle. Dialect tells the query builders
// which SQL flavour the connection speaks.
type DB struct {
	*sql.DB
	Dialect string
}

var (
	instance *DB
	initErr  error
	once     sync.Once
)

// Init opens the shared handle once per process. Later calls return the
// same handle regardless of databaseURL.
func Init(ctx context.Context, databaseURL string) (*DB, error) {
	once.Do(func() {
		instance, initErr = Open(ctx, databaseURL)
	})
	return instance, initErr
}

// Open connects, pings and migrates a fresh handle.
func Open(ctx context.Context, databaseURL string) (*DB, error) {
	driver, dialect, dsn := resolve(databaseURL)

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		log.Error().Err(err).Str("driver", driver).Msg("failed to open database")
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		log.Error().Err(err).Str("driver", driver).Msg("failed to ping database")
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Debug().Str("dialect", dialect).Msg("database connection successful")

	if err := migrate(ctx, conn, dialect); err != nil {
		log.Error().Err(err).Msg("failed to run migrations")
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("dialect", dialect).Msg("migrations completed successfully")

	return &DB{DB: conn, Dialect: dialect}, nil
}

func resolve(databaseURL string) (driver, dialect, dsn string) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return "pgx", DialectPostgres, databaseURL
	}
	return "sqlite", DialectSQLite, formatSQLitePath(databaseURL)
}

// formatSQLitePath turns a bare path (or an existing file: URI) into a
// modernc DSN. Parameters already present in the URI win over the defaults.
// See: https://pkg.go.dev/modernc.org/sqlite#pkg-overview
func formatSQLitePath(path string) string {
	path = strings.TrimPrefix(path, "file:")
	path, rawQuery, _ := strings.Cut(path, "?")
	if path == "" {
		path = "shorty.db"
	}

	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		params = url.Values{}
	}

	setDefault := func(key, value string) {
		if !params.Has(key) {
			params.Set(key, value)
		}
	}
	setDefault("cache", "shared")
	setDefault("mode", "rwc")
	setDefault("_time_format", "sqlite")
	if !params.Has("_pragma") {
		params.Set("_pragma", "busy_timeout(5000)")
		params.Add("_pragma", "foreign_keys(1)")
		params.Add("_pragma", "journal_mode(WAL)")
		params.Add("_pragma", "synchronous(NORMAL)")
	}

	return "file:" + path + "?" + params.Encode()
}
