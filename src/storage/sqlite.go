package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath
	if dsn == "" {
		dsn = DefaultSQLitePath
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewDatabaseError("open sqlite", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping sqlite", err)
	}

	// One writer at a time; WAL lets readers proceed.
	db.SetMaxOpenConns(1)
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	if err := d.RegisterSymbols(d.Config.Dashboard.Symbols); err != nil {
		return err
	}

	d.Logger.Info("SQLite initialized (%s)", dsn)
	return nil
}

// -----------------------------------------------------------------------------

// createTables only creates what is missing: preferences must survive restarts.
func (d *AsyncSQLiteDB) createTables() error {
	queries := map[string]string{
		"preferences": `
			CREATE TABLE IF NOT EXISTS preferences (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			);`,
		"symbols": `
			CREATE TABLE IF NOT EXISTS symbols (
				symbol TEXT PRIMARY KEY,
				name TEXT,
				sector TEXT,
				updated_at INTEGER NOT NULL
			);`,
		"snapshot_quotes": `
			CREATE TABLE IF NOT EXISTS snapshot_quotes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				refresh_id INTEGER NOT NULL,
				source TEXT NOT NULL,
				symbol TEXT NOT NULL,
				price TEXT,
				change TEXT,
				change_percent TEXT,
				open TEXT,
				high TEXT,
				low TEXT,
				previous_close TEXT,
				volume INTEGER,
				market_cap TEXT,
				created_at INTEGER NOT NULL
			);`,
	}

	for _, table := range []string{"preferences", "symbols", "snapshot_quotes"} {
		if _, err := d.DB.Exec(queries[table]); err != nil {
			return helpers.NewDatabaseError(fmt.Sprintf("create %s", table), err)
		}
	}

	if _, err := d.DB.Exec(`CREATE INDEX IF NOT EXISTS idx_snapshot_quotes_created ON snapshot_quotes (created_at)`); err != nil {
		return helpers.NewDatabaseError("create snapshot_quotes index", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) GetPreference(key string) (string, bool, error) {
	var value string
	err := d.DB.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, helpers.NewDatabaseError("get preference "+key, err)
	}
	return value, true, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SetPreference(key, value string) error {
	_, err := d.DB.Exec(`
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Unix())
	if err != nil {
		return helpers.NewDatabaseError("set preference "+key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// RegisterSymbols upserts the tracked symbol descriptors.
func (d *AsyncSQLiteDB) RegisterSymbols(symbols []models.MSymbol) error {
	if len(symbols) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewDatabaseError("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO symbols (symbol, name, sector, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return helpers.NewDatabaseError("prepare symbols", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Unix()
	for _, s := range symbols {
		if _, err := stmt.Exec(s.Ticker, s.Name, s.Sector, now); err != nil {
			return helpers.NewDatabaseError("register "+s.Ticker, err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveSnapshot(snapshot *models.MSnapshot) error {
	if snapshot.Len() == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewDatabaseError("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO snapshot_quotes (refresh_id, source, symbol, price, change, change_percent, open, high, low, previous_close, volume, market_cap, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return helpers.NewDatabaseError("prepare snapshot", err)
	}
	defer stmt.Close()

	createdAt := snapshotTime(snapshot)
	for _, q := range snapshot.Quotes {
		_, err := stmt.Exec(snapshot.ID, snapshot.Source, q.Symbol,
			q.Price, q.Change, q.ChangePercent, q.Open, q.High, q.Low, q.PreviousClose,
			utils.ParseVolume(q.Volume), q.MarketCap, createdAt)
		if err != nil {
			return helpers.NewDatabaseError("save quote "+q.Symbol, err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// CleanupOldData removes snapshot rows past the retention window.
func (d *AsyncSQLiteDB) CleanupOldData() error {
	cutoff := retentionCutoff(d.Config)

	res, err := d.DB.Exec("DELETE FROM snapshot_quotes WHERE created_at < ?", cutoff)
	if err != nil {
		return helpers.NewDatabaseError("cleanup snapshot_quotes", err)
	}

	n, _ := res.RowsAffected()
	d.Logger.Info("Cleanup completed: removed %d snapshot rows older than %d", n, cutoff)
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
