package database

import "fmt"

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS subjects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT NOT NULL,
			purchase_price REAL DEFAULT 0,
			beds INTEGER DEFAULT 0,
			baths REAL DEFAULT 0,
			sqft INTEGER DEFAULT 0,
			year_built INTEGER DEFAULT 0,
			property_type TEXT,
			units INTEGER DEFAULT 0,
			latitude REAL,
			longitude REAL,
			description TEXT,
			days_on_market INTEGER,
			zillow_link TEXT,
			geocoding_attempted BOOLEAN DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create subjects table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS comps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id INTEGER NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
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
	`)
	if err != nil {
		return fmt.Errorf("failed to create comps table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS comp_photos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			comp_id INTEGER NOT NULL REFERENCES comps(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			is_primary BOOLEAN DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create comp_photos table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS telegram_config (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			is_enabled BOOLEAN DEFAULT 0,
			bot_token TEXT NOT NULL,
			chat_id TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create telegram_config table: %v", err)
	}

	// Case-insensitive address de-duplication within a subject's comp set
	_, err = d.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_comps_subject_address
		ON comps(subject_id, LOWER(address));
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_comps_coordinates
		ON comps(latitude, longitude);
	`)
	if err != nil {
		return err
	}

	return nil
}
