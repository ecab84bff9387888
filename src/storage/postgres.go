package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"

	_ "github.com/lib/pq"
)

var schemaUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresDB keeps every table in a schema named after the executable.
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: schemaUnsafe.ReplaceAllString(name, "_"),
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return helpers.NewDatabaseError("open postgres", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping postgres", err)
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return helpers.NewDatabaseError("create schema "+d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	if err := d.RegisterSymbols(d.Config.Dashboard.Symbols); err != nil {
		d.Logger.Error("PostgresDB: Failed to register symbols: %v", err)
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table(name string) string {
	return fmt.Sprintf(`"%s"."%s"`, d.Schema, name)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	queries := []struct {
		name  string
		query string
	}{
		{"preferences", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);`, d.table("preferences"))},
		{"symbols", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				symbol TEXT PRIMARY KEY,
				name TEXT,
				sector TEXT,
				updated_at TIMESTAMPTZ NOT NULL
			);`, d.table("symbols"))},
		{"snapshot_quotes", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				refresh_id BIGINT NOT NULL,
				source TEXT NOT NULL,
				symbol TEXT NOT NULL,
				price NUMERIC(18,2),
				change NUMERIC(18,2),
				change_percent NUMERIC(18,2),
				open NUMERIC(18,2),
				high NUMERIC(18,2),
				low NUMERIC(18,2),
				previous_close NUMERIC(18,2),
				volume BIGINT,
				market_cap TEXT,
				created_at BIGINT NOT NULL
			);`, d.table("snapshot_quotes"))},
	}

	for _, q := range queries {
		if _, err := d.DB.Exec(q.query); err != nil {
			return helpers.NewDatabaseError("create "+q.name, err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) GetPreference(key string) (string, bool, error) {
	var value string
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, d.table("preferences"))
	err := d.DB.QueryRow(query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, helpers.NewDatabaseError("get preference "+key, err)
	}
	return value, true, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SetPreference(key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, d.table("preferences"))
	if _, err := d.DB.Exec(query, key, value, time.Now().UTC()); err != nil {
		return helpers.NewDatabaseError("set preference "+key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveSnapshot(snapshot *models.MSnapshot) error {
	if snapshot.Len() == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewDatabaseError("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %s (refresh_id, source, symbol, price, change, change_percent, open, high, low, previous_close, volume, market_cap, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, d.table("snapshot_quotes")))
	if err != nil {
		return helpers.NewDatabaseError("prepare snapshot", err)
	}
	defer stmt.Close()

	createdAt := snapshotTime(snapshot)
	for _, q := range snapshot.Quotes {
		_, err := stmt.Exec(int64(snapshot.ID), snapshot.Source, q.Symbol,
			q.Price, q.Change, q.ChangePercent, q.Open, q.High, q.Low, q.PreviousClose,
			utils.ParseVolume(q.Volume), q.MarketCap, createdAt)
		if err != nil {
			return helpers.NewDatabaseError("save quote "+q.Symbol, err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	cutoff := retentionCutoff(d.Config)

	query := fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, d.table("snapshot_quotes"))
	res, err := d.DB.Exec(query, cutoff)
	if err != nil {
		return helpers.NewDatabaseError("cleanup snapshot_quotes", err)
	}

	n, _ := res.RowsAffected()
	d.Logger.Info("Cleanup completed: removed %d snapshot rows older than %d", n, cutoff)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
