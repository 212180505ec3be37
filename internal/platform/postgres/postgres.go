package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Driver selects the database/sql driver behind GORM.
type Driver string

const (
	// DriverPGX uses the pgx stdlib driver bundled with the GORM dialector.
	DriverPGX Driver = "pgx"
	// DriverPQ uses lib/pq, registered as "postgres".
	DriverPQ Driver = "pq"
)

const uniqueViolationCode = "23505"

// ParseDriver maps a configuration value to a Driver. Empty means pgx.
func ParseDriver(raw string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DriverPGX:
		return DriverPGX, nil
	case DriverPQ, "postgres", "lib/pq":
		return DriverPQ, nil
	default:
		return "", fmt.Errorf("unsupported postgres driver %q", raw)
	}
}

// Connect opens a PostgreSQL connection via GORM using pgx and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	return ConnectWithDriver(ctx, dsn, DriverPGX)
}

// ConnectWithDriver opens a PostgreSQL connection via GORM on the given driver and verifies connectivity.
func ConnectWithDriver(ctx context.Context, dsn string, driver Driver) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	dialector, err := newDialector(dsn, driver)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// ConnectFromConfig dials PostgreSQL and returns the DB plus a cleanup function.
// When dsn is empty or the connection fails, it logs and returns nil with a no-op cleanup.
func ConnectFromConfig(ctx context.Context, logger *slog.Logger, dsn string, driver Driver) (*gorm.DB, func()) {
	if strings.TrimSpace(dsn) == "" {
		if logger != nil {
			logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		}
		return nil, func() {}
	}
	db, err := ConnectWithDriver(ctx, dsn, driver)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		if logger != nil {
			logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("postgres connection established", slog.String("driver", string(driver)))
	}
	return db, func() { _ = sqlDB.Close() }
}

// IsUniqueViolation reports whether err is a unique constraint violation from
// either driver, translated or raw.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}

func newDialector(dsn string, driver Driver) (gorm.Dialector, error) {
	switch driver {
	case "", DriverPGX:
		return postgres.Open(dsn), nil
	case DriverPQ:
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn}), nil
	default:
		return nil, fmt.Errorf("unsupported postgres driver %q", driver)
	}
}
