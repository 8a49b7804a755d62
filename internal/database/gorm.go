package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGormDB opens a gorm handle on the same sqlite file used by the raw
// layer. The batch ingestion path runs through gorm for its transaction
// and retry plumbing; reads and single-row writes stay on database/sql.
func NewGormDB(dbPath string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// NewTestDB opens an in-memory sqlite database for tests.
func NewTestDB() (*gorm.DB, error) {
	return gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// MigrateSchema creates the comps table on a gorm handle. Used by tests
// that exercise the ingestion path without the raw layer.
func MigrateSchema(db *gorm.DB) error {
	return db.Exec(`
		CREATE TABLE IF NOT EXISTS comps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id INTEGER NOT NULL,
			address TEXT NOT NULL,
			sold_price REAL NOT NULL,
			price_per_sqft REAL DEFAULT 0,
			zestimate REAL,
			rent_zestimate REAL,
			beds INTEGER DEFAULT 0,
			baths REAL DEFAULT 0,
			sqft INTEGER DEFAULT 0,
			year_built INTEGER DEFAULT 0,
			property_type TEXT,
			lot_size TEXT,
			has_pool BOOLEAN DEFAULT 0,
			parking_spaces INTEGER,
			sold_date TEXT,
			description TEXT,
			latitude REAL,
			longitude REAL,
			geocoding_attempted BOOLEAN DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_comps_subject_address
		ON comps(subject_id, LOWER(address));
	`).Error
}
