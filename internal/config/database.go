package config

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSN is the go-sql-driver connection string for the storefront database.
func (c *Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	mc.DBName = c.DBName
	mc.ParseTime = true
	return mc.FormatDSN()
}

// OpenDB opens the database and pings it until it answers, giving up after
// DBConnectAttempts tries or when ctx is done.
func OpenDB(ctx context.Context, c *Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", c.DBName, err)
	}

	attempts := max(c.DBConnectAttempts, 1)
	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			logger.Info().Msgf("Connected to DB %s", c.DBName)
			return db, nil
		}
		if attempt == attempts {
			break
		}
		logger.Warn().Err(err).Msgf("DB %s not ready (attempt %d/%d)", c.DBName, attempt, attempts)

		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(c.DBRetryDelay):
		}
	}

	db.Close()
	return nil, fmt.Errorf("db %s at %s:%s unreachable after %d attempts: %w", c.DBName, c.DBHost, c.DBPort, attempts, err)
}
