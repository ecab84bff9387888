package storage

import (
	"strings"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"
)

const DefaultSQLitePath = "dashboard.db"

// -----------------------------------------------------------------------------

// NewDatabase picks the backend named by storage.db_type. It does not
// connect; call Initialize.
func NewDatabase(cfg *models.MConfig, log *logger.Logger) (interfaces.IDatabase, error) {
	switch strings.ToLower(cfg.Storage.DBType) {
	case "", "sqlite":
		return NewAsyncSQLiteDB(cfg, log)
	case "postgres", "postgresql":
		return NewPostgresDB(cfg, log)
	default:
		return nil, helpers.NewConfigurationError("unsupported db_type %q", cfg.Storage.DBType)
	}
}

// -----------------------------------------------------------------------------

func retentionCutoff(cfg *models.MConfig) int64 {
	days := cfg.Storage.RetentionDays
	if days <= 0 {
		days = utils.DefaultRetentionDays
	}
	return time.Now().UTC().AddDate(0, 0, -days).Unix()
}

func snapshotTime(s *models.MSnapshot) int64 {
	if s.CreatedAt.IsZero() {
		return time.Now().UTC().Unix()
	}
	return s.CreatedAt.UTC().Unix()
}
