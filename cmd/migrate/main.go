package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ManuelReschke/bizdir/internal/pkg/env"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	user := env.GetEnv("DB_USER", "bizdir")
	host := env.GetEnv("DB_HOST", "db")
	port := env.GetEnv("DB_PORT", "3306")
	name := env.GetEnv("DB_NAME", "bizdir")
	dbURL := fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true&parseTime=true",
		user, env.GetEnv("DB_PASSWORD", "bizdir"), host, port, name)
	log.Printf("[Migrate] connecting to %s@%s:%s/%s", user, host, port, name)

	m, err := migrate.New("file://"+env.GetEnv("MIGRATIONS_DIR", "migrations"), dbURL)
	if err != nil {
		log.Fatalf("[Migrate] init failed: %v", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("[Migrate] close: %v, %v", sourceErr, dbErr)
		}
	}()

	switch os.Args[1] {
	case "up":
		report(m.Up(), "all migrations applied", "database is already up to date")

	case "down":
		if err := m.Steps(-1); err != nil {
			log.Fatalf("[Migrate] rolling back the last migration failed: %v", err)
		}
		log.Println("[Migrate] last migration rolled back")

	case "goto":
		version := versionArg()
		report(m.Migrate(version),
			fmt.Sprintf("migrated to version %d", version),
			fmt.Sprintf("database is already at version %d", version))

	case "force":
		version := versionArg()
		if err := m.Force(int(version)); err != nil {
			log.Fatalf("[Migrate] forcing version %d failed: %v", version, err)
		}
		log.Printf("[Migrate] version forced to %d", version)

	case "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			log.Println("[Migrate] no migrations applied yet")
		case err != nil:
			log.Fatalf("[Migrate] reading version failed: %v", err)
		case dirty:
			log.Printf("[Migrate] current version: %d (dirty)", version)
		default:
			log.Printf("[Migrate] current version: %d", version)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func report(err error, done, unchanged string) {
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Printf("[Migrate] %s", unchanged)
	case err != nil:
		log.Fatalf("[Migrate] %v", err)
	default:
		log.Printf("[Migrate] %s", done)
	}
}

func versionArg() uint {
	if len(os.Args) < 3 {
		log.Fatal("[Migrate] please pass a version number")
	}
	v, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil {
		log.Fatalf("[Migrate] invalid version: %v", err)
	}
	return uint(v)
}

func printUsage() {
	fmt.Println("Usage: go run ./cmd/migrate [command]")
	fmt.Println("Commands:")
	fmt.Println("  up      - apply all pending migrations")
	fmt.Println("  down    - roll back the last migration")
	fmt.Println("  goto N  - migrate to version N")
	fmt.Println("  force N - mark version N as applied after a failed run")
	fmt.Println("  status  - print the current version")
}
