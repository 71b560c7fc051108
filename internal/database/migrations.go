package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RunMigrations applies every *.up.sql file in migrationsDir in lexical order,
// recording applied files in schema_migrations so reruns are safe.
func RunMigrations(migrationsDir string) error {
	if _, err := DB.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (filename TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return err
	}

	var upMigrations []string
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".up.sql") {
			upMigrations = append(upMigrations, file.Name())
		}
	}

	sort.Strings(upMigrations)

	for _, migrationFile := range upMigrations {
		var applied bool
		err := DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, migrationFile).Scan(&applied)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		log.Printf("Running migration: %s", migrationFile)
		content, err := os.ReadFile(filepath.Join(migrationsDir, migrationFile))
		if err != nil {
			return err
		}

		if _, err := DB.Exec(string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", migrationFile, err)
		}

		if _, err := DB.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, migrationFile); err != nil {
			return err
		}
	}

	log.Println("Migrations completed successfully")
	return nil
}
