package main

import (
	"flag"
	"log"

	"github.com/pressly/goose/v3"

	"github.com/noah-isme/school-portal-api/migrations"
	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/database"
)

const usage = "usage: migrate [up|down|status|version|redo|reset]"

func main() {
	flag.Parse()
	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}
	switch command {
	case "up", "down", "status", "version", "redo", "reset":
	default:
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose dialect: %v", err)
	}
	if err := goose.Run(command, db.DB, ".", flag.Args()[min(1, flag.NArg()):]...); err != nil {
		log.Fatalf("migrate %s: %v", command, err)
	}
}
