package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// createDB creates the application database on the server pointed to by the
// configured URL. It connects to the maintenance `postgres` database since the
// target may not exist yet.
func (cli *commandLine) createDB() error {
	if cli.conf.Database.URL == "" {
		return errors.New("database URL is not configured")
	}
	u, err := url.Parse(cli.conf.Database.URL)
	if err != nil {
		return errors.Wrap(err, "parsing database URL")
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return errors.New("database URL has no database name")
	}
	u.Path = "/postgres"

	db, err := sqlx.Open("postgres", u.String())
	if err != nil {
		return errors.Wrap(err, "opening maintenance database")
	}
	defer func() { _ = db.Close() }()

	var exists bool
	if err = db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, dbName); err != nil {
		return errors.Wrap(err, "checking database existence")
	}
	if exists {
		logger.Printf("database %q already exists", dbName)
		return nil
	}
	if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName))); err != nil {
		return errors.Wrap(err, "creating database")
	}
	logger.Printf("database %q created", dbName)
	return nil
}
