package main

import (
	"database/sql"
	"fmt"
	"log"

	"torrent-catalog/migrations"
	"torrent-catalog/pkg/config"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/pflag"
)

func main() {
	var (
		dir     = pflag.String("dir", ".", "directory with migration files inside the embedded set, or on disk with --from-disk")
		command = pflag.String("command", "up", "migration command (up, down, status, create)")
		name    = pflag.String("name", "", "name for new migration (used with create command)")
		onDisk  = pflag.Bool("from-disk", false, "read migrations from --dir on disk instead of the embedded set")
	)
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set dialect: %v", err)
	}
	if !*onDisk && *command != "create" {
		goose.SetBaseFS(migrations.FS)
	}

	switch *command {
	case "create":
		if *name == "" {
			log.Fatal("Name is required for create command")
		}
		if err := goose.Create(db, *dir, *name, "sql"); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
		fmt.Printf("Created migration: %s\n", *name)
	case "up":
		if err := goose.Up(db, *dir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		fmt.Println("Migrations applied successfully")
	case "down":
		if err := goose.Down(db, *dir); err != nil {
			log.Fatalf("Failed to rollback migrations: %v", err)
		}
		fmt.Println("Migrations rolled back successfully")
	case "status":
		if err := goose.Status(db, *dir); err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}
	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}
