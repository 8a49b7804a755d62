package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"compscout/server/internal/geocoding"
	"compscout/server/internal/models"
)

var (
	ErrCompNotFound     = errors.New("comp not found")
	ErrPhotoNotFound    = errors.New("photo not found")
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrDuplicateAddress = errors.New("comp with this address already exists")
	ErrInvalidComp      = errors.New("comp requires a positive sold price and a non-empty address")
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

// CreateSubject inserts a new subject property and sets its ID.
func (d *Database) CreateSubject(s *models.SubjectProperty) error {
	result, err := d.db.Exec(`
		INSERT INTO subjects
		(address, purchase_price, beds, baths, sqft, year_built, property_type,
		 units, latitude, longitude, description, days_on_market, zillow_link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.Address, s.PurchasePrice, s.Beds, s.Baths, s.Sqft, s.YearBuilt,
		s.PropertyType, s.Units, s.Latitude, s.Longitude, s.Description,
		s.DaysOnMarket, s.ZillowLink,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subject: %w", err)
	}

	s.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get subject ID: %w", err)
	}
	return nil
}

// GetSubject returns a subject by id, or ErrSubjectNotFound.
func (d *Database) GetSubject(id int64) (*models.SubjectProperty, error) {
	var s models.SubjectProperty
	var propertyType, description, zillowLink sql.NullString
	var daysOnMarket sql.NullInt64
	var latitude, longitude sql.NullFloat64
	var createdAt, updatedAt sql.NullString

	err := d.db.QueryRow(`
		SELECT id, address, purchase_price, beds, baths, sqft, year_built,
		       property_type, units, latitude, longitude, description,
		       days_on_market, zillow_link,
		       COALESCE(created_at, CURRENT_TIMESTAMP),
		       COALESCE(updated_at, CURRENT_TIMESTAMP)
		FROM subjects
		WHERE id = ?
	`, id).Scan(
		&s.ID, &s.Address, &s.PurchasePrice, &s.Beds, &s.Baths, &s.Sqft,
		&s.YearBuilt, &propertyType, &s.Units, &latitude, &longitude,
		&description, &daysOnMarket, &zillowLink, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSubjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subject: %w", err)
	}

	if propertyType.Valid {
		s.PropertyType = propertyType.String
	}
	if description.Valid {
		s.Description = description.String
	}
	if zillowLink.Valid {
		s.ZillowLink = zillowLink.String
	}
	if daysOnMarket.Valid {
		dom := int(daysOnMarket.Int64)
		s.DaysOnMarket = &dom
	}
	if latitude.Valid {
		lat := latitude.Float64
		s.Latitude = &lat
	}
	if longitude.Valid {
		lon := longitude.Float64
		s.Longitude = &lon
	}
	if createdAt.Valid {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			s.CreatedAt = t
		}
	}
	if updatedAt.Valid {
		if t, err := time.Parse(time.RFC3339, updatedAt.String); err == nil {
			s.UpdatedAt = t
		}
	}

	return &s, nil
}

// UpdateSubject rewrites a subject's fields in place.
func (d *Database) UpdateSubject(s *models.SubjectProperty) error {
	result, err := d.db.Exec(`
		UPDATE subjects
		SET address = ?, purchase_price = ?, beds = ?, baths = ?, sqft = ?,
		    year_built = ?, property_type = ?, units = ?, latitude = ?,
		    longitude = ?, description = ?, days_on_market = ?,
		    zillow_link = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		s.Address, s.PurchasePrice, s.Beds, s.Baths, s.Sqft, s.YearBuilt,
		s.PropertyType, s.Units, s.Latitude, s.Longitude, s.Description,
		s.DaysOnMarket, s.ZillowLink, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

// InsertComp admits a comp into a subject's comp set. The admission
// invariant (positive sold price, non-empty address) and case-insensitive
// address de-duplication are enforced here, not in the valuation engine.
func (d *Database) InsertComp(c *models.ComparableSale) error {
	if c.SoldPrice <= 0 || strings.TrimSpace(c.Address) == "" {
		return ErrInvalidComp
	}

	var exists bool
	err := d.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM comps
			WHERE subject_id = ? AND LOWER(address) = LOWER(?)
		)
	`, c.SubjectID, c.Address).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate comp: %w", err)
	}
	if exists {
		return ErrDuplicateAddress
	}

	result, err := d.db.Exec(`
		INSERT INTO comps
		(subject_id, address, sold_price, price_per_sqft, zestimate,
		 rent_zestimate, beds, baths, sqft, year_built, property_type,
		 lot_size, has_pool, parking_spaces, sold_date, description,
		 latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.SubjectID, c.Address, c.SoldPrice, c.PricePerSqft, c.Zestimate,
		c.RentZestimate, c.Beds, c.Baths, c.Sqft, c.YearBuilt,
		c.PropertyType, c.LotSize, c.HasPool, c.ParkingSpaces, c.SoldDate,
		c.Description, c.Latitude, c.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comp: %w", err)
	}

	c.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get comp ID: %w", err)
	}
	return nil
}

// UpdateComp mutates a comp's fields in place without changing identity.
func (d *Database) UpdateComp(c *models.ComparableSale) error {
	if c.SoldPrice <= 0 || strings.TrimSpace(c.Address) == "" {
		return ErrInvalidComp
	}

	result, err := d.db.Exec(`
		UPDATE comps
		SET address = ?, sold_price = ?, price_per_sqft = ?, zestimate = ?,
		    rent_zestimate = ?, beds = ?, baths = ?, sqft = ?,
		    year_built = ?, property_type = ?, lot_size = ?, has_pool = ?,
		    parking_spaces = ?, sold_date = ?, description = ?,
		    latitude = ?, longitude = ?
		WHERE id = ?
	`,
		c.Address, c.SoldPrice, c.PricePerSqft, c.Zestimate,
		c.RentZestimate, c.Beds, c.Baths, c.Sqft, c.YearBuilt,
		c.PropertyType, c.LotSize, c.HasPool, c.ParkingSpaces, c.SoldDate,
		c.Description, c.Latitude, c.Longitude, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update comp: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCompNotFound
	}
	return nil
}

// DeleteComp removes a comp and its photos.
func (d *Database) DeleteComp(id int64) error {
	result, err := d.db.Exec("DELETE FROM comps WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete comp: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCompNotFound
	}
	return nil
}

// GetComp returns a single comp with its photos.
func (d *Database) GetComp(id int64) (*models.ComparableSale, error) {
	rows, err := d.db.Query(compSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query comp: %w", err)
	}
	defer rows.Close()

	comps, err := scanComps(rows)
	if err != nil {
		return nil, err
	}
	if len(comps) == 0 {
		return nil, ErrCompNotFound
	}

	comp := comps[0]
	if err := d.attachPhotos([]*models.ComparableSale{&comp}); err != nil {
		return nil, err
	}
	return &comp, nil
}

// GetCompsBySubject returns all comps for a subject, oldest first.
func (d *Database) GetCompsBySubject(subjectID int64) ([]models.ComparableSale, error) {
	rows, err := d.db.Query(compSelect+" WHERE subject_id = ? ORDER BY id", subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comps: %w", err)
	}
	defer rows.Close()

	comps, err := scanComps(rows)
	if err != nil {
		return nil, err
	}

	refs := make([]*models.ComparableSale, len(comps))
	for i := range comps {
		refs[i] = &comps[i]
	}
	if err := d.attachPhotos(refs); err != nil {
		return nil, err
	}
	return comps, nil
}

const compSelect = `
	SELECT id, subject_id, address, sold_price, price_per_sqft, zestimate,
	       rent_zestimate, beds, baths, sqft, year_built, property_type,
	       lot_size, has_pool, parking_spaces, sold_date, description,
	       latitude, longitude,
	       COALESCE(created_at, CURRENT_TIMESTAMP) as created_at
	FROM comps`

func scanComps(rows *sql.Rows) ([]models.ComparableSale, error) {
	var comps []models.ComparableSale
	for rows.Next() {
		var c models.ComparableSale
		var propertyType, lotSize, soldDate, description sql.NullString
		var zestimate, rentZestimate sql.NullFloat64
		var parkingSpaces sql.NullInt64
		var latitude, longitude sql.NullFloat64
		var createdAt sql.NullString

		err := rows.Scan(
			&c.ID, &c.SubjectID, &c.Address, &c.SoldPrice, &c.PricePerSqft,
			&zestimate, &rentZestimate, &c.Beds, &c.Baths, &c.Sqft,
			&c.YearBuilt, &propertyType, &lotSize, &c.HasPool,
			&parkingSpaces, &soldDate, &description, &latitude, &longitude,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comp: %w", err)
		}

		if propertyType.Valid {
			c.PropertyType = propertyType.String
		}
		if lotSize.Valid {
			c.LotSize = lotSize.String
		}
		if soldDate.Valid {
			c.SoldDate = soldDate.String
		}
		if description.Valid {
			c.Description = description.String
		}
		if zestimate.Valid {
			z := zestimate.Float64
			c.Zestimate = &z
		}
		if rentZestimate.Valid {
			rz := rentZestimate.Float64
			c.RentZestimate = &rz
		}
		if parkingSpaces.Valid {
			ps := int(parkingSpaces.Int64)
			c.ParkingSpaces = &ps
		}
		if latitude.Valid {
			lat := latitude.Float64
			c.Latitude = &lat
		}
		if longitude.Valid {
			lon := longitude.Float64
			c.Longitude = &lon
		}
		if createdAt.Valid {
			if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
				c.CreatedAt = t
			}
		}

		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comps: %w", err)
	}
	return comps, nil
}

func (d *Database) attachPhotos(comps []*models.ComparableSale) error {
	if len(comps) == 0 {
		return nil
	}

	byID := make(map[int64]*models.ComparableSale, len(comps))
	args := make([]interface{}, len(comps))
	placeholders := make([]string, len(comps))
	for i, c := range comps {
		byID[c.ID] = c
		args[i] = c.ID
		placeholders[i] = "?"
	}

	rows, err := d.db.Query(`
		SELECT id, comp_id, url, is_primary
		FROM comp_photos
		WHERE comp_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY is_primary DESC, id
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.CompID, &p.URL, &p.IsPrimary); err != nil {
			return fmt.Errorf("failed to scan photo: %w", err)
		}
		if comp, ok := byID[p.CompID]; ok {
			comp.Photos = append(comp.Photos, p)
		}
	}
	return rows.Err()
}

// AddPhoto attaches a photo to a comp.
func (d *Database) AddPhoto(p *models.Photo) error {
	result, err := d.db.Exec(`
		INSERT INTO comp_photos (comp_id, url, is_primary)
		VALUES (?, ?, ?)
	`, p.CompID, p.URL, p.IsPrimary)
	if err != nil {
		return fmt.Errorf("failed to insert photo: %w", err)
	}

	p.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get photo ID: %w", err)
	}
	return nil
}

// DeletePhoto detaches a photo from its comp.
func (d *Database) DeletePhoto(id int64) error {
	result, err := d.db.Exec("DELETE FROM comp_photos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

// ListSubjectIDs returns the ids of every subject on file.
func (d *Database) ListSubjectIDs() ([]int64, error) {
	rows, err := d.db.Query("SELECT id FROM subjects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query subject ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan subject id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateMissingCoordinates geocodes comps and subjects that have no
// coordinates yet. Each record is attempted once; failures are marked so
// they are not retried on every pass.
func (d *Database) UpdateMissingCoordinates(geocoder *geocoding.Geocoder) (int, error) {
	rows, err := d.db.Query(`
		SELECT id, address
		FROM comps
		WHERE (latitude IS NULL OR longitude IS NULL)
		AND geocoding_attempted = 0
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to query comps needing geocoding: %w", err)
	}

	type pending struct {
		id      int64
		address string
	}
	var comps []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.address); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan comp: %w", err)
		}
		comps = append(comps, p)
	}
	rows.Close()

	var updated int
	for _, p := range comps {
		lat, lon, err := geocoder.GeocodeAddress(p.address)
		if err != nil {
			_, markErr := d.db.Exec(
				"UPDATE comps SET geocoding_attempted = 1 WHERE id = ?", p.id)
			if markErr != nil {
				return updated, fmt.Errorf("failed to mark geocoding attempt: %w", markErr)
			}
			continue
		}

		_, err = d.db.Exec(`
			UPDATE comps
			SET latitude = ?, longitude = ?, geocoding_attempted = 1
			WHERE id = ?
		`, lat, lon, p.id)
		if err != nil {
			return updated, fmt.Errorf("failed to update comp coordinates: %w", err)
		}
		updated++
	}

	subjRows, err := d.db.Query(`
		SELECT id, address
		FROM subjects
		WHERE (latitude IS NULL OR longitude IS NULL)
		AND geocoding_attempted = 0
	`)
	if err != nil {
		return updated, fmt.Errorf("failed to query subjects needing geocoding: %w", err)
	}

	var subjects []pending
	for subjRows.Next() {
		var p pending
		if err := subjRows.Scan(&p.id, &p.address); err != nil {
			subjRows.Close()
			return updated, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, p)
	}
	subjRows.Close()

	for _, p := range subjects {
		lat, lon, err := geocoder.GeocodeAddress(p.address)
		if err != nil {
			_, markErr := d.db.Exec(
				"UPDATE subjects SET geocoding_attempted = 1 WHERE id = ?", p.id)
			if markErr != nil {
				return updated, fmt.Errorf("failed to mark geocoding attempt: %w", markErr)
			}
			continue
		}

		_, err = d.db.Exec(`
			UPDATE subjects
			SET latitude = ?, longitude = ?, geocoding_attempted = 1
			WHERE id = ?
		`, lat, lon, p.id)
		if err != nil {
			return updated, fmt.Errorf("failed to update subject coordinates: %w", err)
		}
		updated++
	}

	return updated, nil
}

// GetTelegramConfig returns the stored Telegram configuration, or nil
// when none has been saved.
func (d *Database) GetTelegramConfig() (*models.TelegramConfig, error) {
	var config models.TelegramConfig
	var createdAt, updatedAt sql.NullString

	err := d.db.QueryRow(`
		SELECT id, is_enabled, bot_token, chat_id,
		       COALESCE(created_at, CURRENT_TIMESTAMP),
		       COALESCE(updated_at, CURRENT_TIMESTAMP)
		FROM telegram_config
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&config.ID, &config.IsEnabled, &config.BotToken, &config.ChatID,
		&createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query telegram config: %w", err)
	}

	if createdAt.Valid {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			config.CreatedAt = t
		}
	}
	if updatedAt.Valid {
		if t, err := time.Parse(time.RFC3339, updatedAt.String); err == nil {
			config.UpdatedAt = t
		}
	}

	return &config, nil
}

// UpdateTelegramConfig replaces the stored Telegram configuration.
func (d *Database) UpdateTelegramConfig(request *models.TelegramConfigRequest) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM telegram_config"); err != nil {
		return fmt.Errorf("failed to clear telegram config: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO telegram_config (is_enabled, bot_token, chat_id)
		VALUES (?, ?, ?)
	`, request.IsEnabled, request.BotToken, request.ChatID)
	if err != nil {
		return fmt.Errorf("failed to insert telegram config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
