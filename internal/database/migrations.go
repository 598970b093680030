package database

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed migrations
var embeddedMigrations embed.FS

// RunMigrations executes every pending SQL file for the active dialect.
// An empty migrationsPath uses the migrations compiled into the binary;
// otherwise files are read from <migrationsPath>/<dialect subdir>.
func (db *DB) RunMigrations(migrationsPath string) error {
	var source fs.FS
	dir := db.Dialect.MigrationsSubdir()
	if migrationsPath == "" {
		source = embeddedMigrations
		dir = path.Join("migrations", dir)
	} else {
		source = os.DirFS(migrationsPath)
	}

	if _, err := db.Exec(db.Dialect.CreateMigrationsTableQuery()); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := fs.Glob(source, path.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		filename := path.Base(file)

		hasRun, err := db.hasMigrationRun(filename)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if hasRun {
			continue
		}

		content, err := fs.ReadFile(source, file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		if err := db.executeMigration(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		if _, err := db.Exec("INSERT INTO migrations (filename) VALUES (?)", filename); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}

		log.Printf("Migration completed: %s", filename)
	}

	return nil
}

func (db *DB) hasMigrationRun(filename string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// executeMigration runs each statement separately; the MySQL and Postgres
// drivers reject multi-statement Exec calls by default
func (db *DB) executeMigration(content string) error {
	for _, stmt := range strings.Split(content, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
