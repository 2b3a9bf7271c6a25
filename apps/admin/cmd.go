package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/user"
	"github.com/trezcool/kelasi/storage/database"
	"github.com/trezcool/kelasi/storage/database/pgrepos"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	dbOpenFunc       = database.Open     // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf *core.Config
	db   *sqlx.DB

	usrRepo user.Repository
	stdRepo student.Repository
	crsRepo course.Repository
}

// getDB opens the connection pool on first use; createdb runs without it.
func (cli *commandLine) getDB() (*sqlx.DB, error) {
	if cli.db == nil {
		db, err := dbOpenFunc(cli.conf)
		if err != nil {
			return nil, err
		}
		cli.db = db
	}
	return cli.db, nil
}

func (cli *commandLine) initRepos() error {
	if cli.usrRepo != nil {
		return nil
	}
	db, err := cli.getDB()
	if err != nil {
		return err
	}
	cli.usrRepo = pgrepos.NewUserRepository(db)
	cli.stdRepo = pgrepos.NewStudentRepository(db)
	cli.crsRepo = pgrepos.NewCourseRepository(db)
	return nil
}

func (cli *commandLine) close() {
	if cli.db != nil {
		_ = cli.db.Close()
	}
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb - create the application database if it does not exist")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  addadmin -username USERNAME - add an admin user or reset their password")
	fmt.Println("  seed - load the demo courses and students")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminUname := addAdminCmd.String("username", "", "The admin's username. The password will be prompted next.")

	switch args[1] {
	case "createdb":
		return cli.createDB()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminUname == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addAdminUname, string(pwd))
	case "seed":
		return cli.seed()
	default:
		cli.printUsage()
		return errHelp
	}
}
