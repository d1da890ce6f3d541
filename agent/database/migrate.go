package database

import (
	"database/sql"
	"log"

	"whale-watcher/agent/internal/models"

	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// MigrateDatabase handles database migrations using GORM's AutoMigrate and
// raw SQL as a fallback.
func MigrateDatabase(db *gorm.DB, dsn string) {
	log.Println("Running GORM migrations...")
	err := db.AutoMigrate(&models.Watcher{}, &models.FilterRow{}, &models.KnownToken{})
	if err != nil {
		log.Fatalf("Failed to perform GORM migrations: %v", err)
	}
	log.Println("GORM migrations executed successfully.")

	dbSQL, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to the database with SQL: %v", err)
	}
	defer dbSQL.Close()

	executeSQLMigrations(dbSQL)
}

// executeSQLMigrations performs raw SQL migrations as a fallback.
func executeSQLMigrations(db *sql.DB) {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS watchers (
            id SERIAL PRIMARY KEY,
            telegram_user_id BIGINT UNIQUE NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS filter_rows (
            id SERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            filter_type TEXT NOT NULL,
            filter_value TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_filter_user ON filter_rows (user_id, filter_type);`,
		`CREATE TABLE IF NOT EXISTS known_tokens (
            id SERIAL PRIMARY KEY,
            mint TEXT UNIQUE NOT NULL,
            symbol TEXT DEFAULT '',
            first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
	}

	for _, query := range queries {
		_, err := db.Exec(query)
		if err != nil {
			log.Fatalf("Failed to execute query: %s, error: %v", query, err)
		}
	}
	log.Println("Raw SQL migrations executed successfully.")
}
