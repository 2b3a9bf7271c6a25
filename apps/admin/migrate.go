package main

import (
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kelasi/storage/database"
)

var gooseRunFunc = func(db *sqlx.DB, command string, args ...string) error { // mockable
	return database.RunGoose(db, command, args...)
}

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.getDB()
	if err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(db, args[0], arguments...)
}
