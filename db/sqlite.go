// Package db opens the staging store and runs migrations. Local runs
// use a file-backed SQLite database; URL DSNs go through the libsql
// connector for remote stores.
package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	glebsqlite "github.com/glebarez/sqlite"
	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/regraft/models"
)

// Connect establishes a database connection and runs migrations.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	if !isURL(dsn) {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		token := os.Getenv("REGRAFT_LIBSQL_AUTH_TOKEN")
		if token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("creating libsql connector: %w", err)
		}
		conn = sql.OpenDB(connector)
		dialector = gormsqlite.New(gormsqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		})
	} else {
		dialector = glebsqlite.Open(dsn)
	}

	database, err := gorm.Open(dialector, config)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("connecting to %s: %w", dsn, err)
	}

	if err := database.AutoMigrate(&models.Stage{}, &models.Apply{}); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return database, nil
}

func isURL(dsn string) bool {
	return strings.Contains(dsn, "://")
}
