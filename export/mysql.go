package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const mysqlCreateTableTmpl = `CREATE TABLE IF NOT EXISTS xspec (
		ID          BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		Identifier  VARCHAR(255) NOT NULL,
		Source      VARCHAR(255) NOT NULL,
		FreqLow     DOUBLE,
		FreqHigh    DOUBLE,
		Flux        DOUBLE,
		FluxErr     DOUBLE,
		WhiteNoise  DOUBLE,
		Created     BIGINT
	);`

type MySQL struct {
	DB *sql.DB
}

func (m *MySQL) Write(ctx context.Context, records <-chan Record) error {
	_, err := writeSQL(ctx, m.DB, mysqlCreateTableTmpl, records)
	return err
}

// MySQLConfig builds the driver configuration for a TCP server. The
// password is read from passwordFile when it is not empty.
func MySQLConfig(server, user, passwordFile, dbName string) (*mysql.Config, error) {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Net = "tcp"
	cfg.Addr = server
	cfg.DBName = dbName
	if passwordFile != "" {
		pass, err := os.ReadFile(passwordFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read MySQL password file %q: %s", passwordFile, err)
		}
		cfg.Passwd = strings.TrimSpace(string(pass))
	}
	return cfg, nil
}

// OpenMySQL opens a connection pool for cfg.
func OpenMySQL(cfg *mysql.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to open MySQL DB %q: %s", cfg.Addr, err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	return db, nil
}
