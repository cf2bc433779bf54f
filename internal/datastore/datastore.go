// Package datastore persists zone occupancy and exhibit lists through gorm.
//
// Two repositories share one *gorm.DB:
//
//	db, err := datastore.Open(&settings.Database, log)
//	occupancy := datastore.NewOccupancyRepository(db, datastore.WithLogger(log))
//	ledger := datastore.NewExhibitionLedger(db, datastore.WithLogger(log))
//
// SQLite, MySQL and PostgreSQL are supported. Every read goes to the database;
// nothing is cached between calls.
package datastore

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
)

const (
	defaultSlowQueryThreshold = 200 * time.Millisecond
	sqliteBusyTimeoutMs       = 5000
	mysqlDialTimeout          = 10 * time.Second
)

// Open connects to the configured database and applies pool settings.
// It does not migrate; call Migrate separately.
func Open(cfg *conf.DatabaseSettings, log logger.Logger) (*gorm.DB, error) {
	if log == nil {
		log = logger.Global().Module("datastore")
	}

	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	slow := cfg.SlowQueryThreshold
	if slow <= 0 {
		slow = defaultSlowQueryThreshold
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.NewGormLoggerAdapter(log, slow),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, dbError(err, "open", errors.PriorityCritical, "driver", cfg.Driver)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, dbError(err, "open", errors.PriorityCritical, "driver", cfg.Driver)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	log.Info("database opened", logger.String("driver", cfg.Driver))
	return db, nil
}

func newDialector(cfg *conf.DatabaseSettings) (gorm.Dialector, error) {
	switch cfg.Driver {
	case conf.DriverSQLite:
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case conf.DriverMySQL:
		dsn, err := mysqlDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return gormmysql.Open(dsn), nil
	case conf.DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, validationError(fmt.Sprintf("unsupported database driver %q", cfg.Driver), "driver", cfg.Driver)
	}
}

// sqliteDSN enables WAL and takes the write lock at BEGIN, so concurrent
// transactions queue on the busy timeout instead of failing mid-transaction.
func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?cache=shared&_txlock=immediate"
	}
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprint(sqliteBusyTimeoutMs))
	q.Set("_journal_mode", "WAL")
	q.Set("_txlock", "immediate")
	return "file:" + filepath.Clean(path) + "?" + q.Encode()
}

// mysqlDSN validates a go-sql-driver DSN and fills in what the schema relies on:
// parsed DATETIME columns, UTC, utf8mb4, and a dial timeout. Explicit values win.
func mysqlDSN(dsn string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", validationError("invalid mysql dsn: "+err.Error(), "driver", conf.DriverMySQL)
	}
	mc.ParseTime = true
	if mc.Timeout == 0 {
		mc.Timeout = mysqlDialTimeout
	}
	if !dsnHasParam(dsn, "charset") {
		if mc.Params == nil {
			mc.Params = map[string]string{}
		}
		mc.Params["charset"] = "utf8mb4"
	}
	return mc.FormatDSN(), nil
}

// dsnHasParam reports whether the raw DSN query names key. The driver keeps
// some parameters, charset among them, out of Config.Params.
func dsnHasParam(dsn, key string) bool {
	path := dsn[strings.LastIndex(dsn, "/")+1:]
	i := strings.IndexByte(path, '?')
	if i < 0 {
		return false
	}
	q, err := url.ParseQuery(path[i+1:])
	if err != nil {
		return false
	}
	return q.Has(key)
}

// Migrate creates or updates the occupancy and exhibition tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&OccupancyRecord{}, &Exhibit{}); err != nil {
		return dbError(err, "migrate", errors.PriorityCritical)
	}
	return nil
}

// Ping verifies the database connection is alive.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "ping", errors.PriorityMedium)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dbError(err, "ping", errors.PriorityMedium)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "close", errors.PriorityLow)
	}
	return sqlDB.Close()
}
