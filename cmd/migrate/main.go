// Command migrate applies the case-tracker schema in migrations/.
package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	infraconfig "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/config"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/config"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

const migrationsPath = "file://migrations"

const usage = "Usage: migrate <up|down|version>"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		return exitFailure
	}

	direction := args[0]
	switch direction {
	case "up", "down", "version":
	default:
		fmt.Fprintf(os.Stderr, "Invalid command: %q\n%s\n", direction, usage)
		return exitFailure
	}

	cfg, cfgErr := config.Load(infraconfig.GetConfigPath(config.DefaultPath))
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", cfgErr)
		return exitFailure
	}

	m, newErr := migrate.New(migrationsPath, migrateURL(&cfg.Database))
	if newErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to create migrate instance: %v\n", newErr)
		return exitFailure
	}
	defer func() { _, _ = m.Close() }()

	if direction == "version" {
		return printVersion(m)
	}

	if migrateErr := runMigration(m, direction); migrateErr != nil {
		fmt.Fprintf(os.Stderr, "Migration %s failed: %v\n", direction, migrateErr)
		return exitFailure
	}

	fmt.Printf("Migration %s completed successfully\n", direction)
	return exitSuccess
}

// migrateURL renders the database config as a postgres:// URL with the
// credentials escaped.
func migrateURL(db *config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     db.Host + ":" + strconv.Itoa(db.Port),
		Path:     "/" + db.Database,
		RawQuery: url.Values{"sslmode": {db.SSLMode}}.Encode(),
	}
	return u.String()
}

func runMigration(m *migrate.Migrate, direction string) error {
	var err error
	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to apply")
		return nil
	}
	return err
}

func printVersion(m *migrate.Migrate) int {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return exitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read version: %v\n", err)
		return exitFailure
	}

	fmt.Printf("Version %d (dirty: %t)\n", version, dirty)
	return exitSuccess
}
