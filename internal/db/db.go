package db

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arencloud/surveyboard/internal/config"
	"github.com/arencloud/surveyboard/internal/errs"
	"github.com/arencloud/surveyboard/internal/logging"
	"github.com/arencloud/surveyboard/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the export-job database and migrates its schema.
func Open(cfg *config.Config, logger logging.Logger) (*gorm.DB, error) {
	// Configure GORM to use our structured logger so SQL logs are not plain text
	var gormLevel gormlogger.LogLevel
	switch strings.ToLower(logging.GetLevel()) {
	case "debug":
		gormLevel = gormlogger.Info // log SQL traces at debug level
	case "error", "fatal":
		gormLevel = gormlogger.Error
	default:
		gormLevel = gormlogger.Warn
	}

	var dialector gorm.Dialector
	driver := strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if driver == "postgres" || driver == "postgresql" {
		if cfg.DBDsn == "" {
			return nil, &os.PathError{Op: "open", Path: "DATABASE_URL/DB_DSN", Err: os.ErrInvalid}
		}
		dialector = postgres.Open(cfg.DBDsn)
		logger.Info("db connect", "driver", "postgres")
	} else {
		if cfg.DBPath != ":memory:" && !strings.HasPrefix(cfg.DBPath, "file:") {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, errs.Wrap(err, "create db dir")
			}
		}
		dialector = sqlite.Open(cfg.DBPath)
		logger.Info("db connect", "driver", "sqlite", "path", cfg.DBPath)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(logger, gormLevel)})
	if err != nil {
		return nil, errs.Wrapf(err, "open %s", driver)
	}
	if err := gdb.AutoMigrate(&models.ExportJob{}); err != nil {
		return nil, errs.Wrap(err, "migrate export jobs")
	}
	return gdb, nil
}
