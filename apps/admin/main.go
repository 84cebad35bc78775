package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/muchiri/karibu/core"
	"github.com/muchiri/karibu/core/campus"
	emailsvc "github.com/muchiri/karibu/services/email"
	logsvc "github.com/muchiri/karibu/services/logger"
	"github.com/muchiri/karibu/storage/database"
	sqlxrepos "github.com/muchiri/karibu/storage/database/sqlx"
)

var logger *log.Logger

type dbMigrator struct {
	db *sqlx.DB
}

func (m dbMigrator) Migrate() error { return database.Migrate(m.db) }

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	campusSvc := campus.NewService(
		sqlxrepos.NewBoundaryStore(db),
		sqlxrepos.NewLocationRegistry(db),
		sqlxrepos.NewVisibleCache(db),
		logsvc.NewConsoleLogger(logger),
		emailsvc.NewConsoleService(conf),
		conf,
	)

	// start CLI
	cli := commandLine{
		campusSvc: campusSvc,
		migrate:   dbMigrator{db: db},
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
