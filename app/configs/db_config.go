package configs

import (
	"fmt"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const retryDelay = 5 * time.Second

func dialector(env ENV) (gorm.Dialector, string) {
	switch env.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			env.DBHost, env.DBUser, env.DBPassword, env.DBName, env.DBPort,
		)
		return postgres.Open(dsn), fmt.Sprintf("postgres://%s@%s:%s/%s", env.DBUser, env.DBHost, env.DBPort, env.DBName)
	default:
		cfg := mysqldriver.NewConfig()
		cfg.User = env.DBUser
		cfg.Passwd = env.DBPassword
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(env.DBHost, env.DBPort)
		cfg.DBName = env.DBName
		cfg.ParseTime = true
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return mysql.Open(cfg.FormatDSN()), fmt.Sprintf("mysql://%s@%s/%s", cfg.User, cfg.Addr, cfg.DBName)
	}
}

// OpenConnection opens the configured database, retrying while it comes up.
func OpenConnection(env ENV, logger zerolog.Logger) (*gorm.DB, error) {
	dial, target := dialector(env)

	gormCfg := &gorm.Config{
		Logger:         NewGormLogger(logger, env.Debug),
		TranslateError: true,
	}

	var lastErr error
	for i := 0; i < env.DBRetries; i++ {
		logger.Info().Str("target", target).Msgf("connecting to database (attempt %d/%d)", i+1, env.DBRetries)

		db, err := gorm.Open(dial, gormCfg)
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					logger.Info().Msg("database connection successful")
					return db, nil
				}
			}
			lastErr = pingErr
			logger.Warn().Err(pingErr).Dur("retry_in", retryDelay).Msg("failed to ping database")
		} else {
			lastErr = err
			logger.Warn().Err(err).Dur("retry_in", retryDelay).Msg("failed to open gorm connection")
		}

		if i < env.DBRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", target, env.DBRetries, lastErr)
}

type gormWriter struct {
	logger zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Info().Msgf(format, args...)
}

// NewGormLogger routes gorm's query log through zerolog. SQL is only traced
// in debug mode; slow queries and errors are always reported.
func NewGormLogger(logger zerolog.Logger, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(gormWriter{logger: logger.With().Str("component", "gorm").Logger()}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
