package main

import (
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/bcg0006/plockly-core/internal/config"
)

func main() {
	var migrationsPath string
	var down bool
	flag.StringVar(&migrationsPath, "migrations", "migrations", "path to migrations directory")
	flag.BoolVar(&down, "down", false, "roll back one migration instead of applying all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	m, err := migrate.New("file://"+migrationsPath, cfg.Database.URL)
	if err != nil {
		log.Fatalf("open migrator: %v", err)
	}
	defer m.Close()

	if down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("no migrations to apply")
			return
		}
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")
}
