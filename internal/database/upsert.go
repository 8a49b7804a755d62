package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"compscout/server/internal/models"
)

// UpsertComps inserts a batch of extracted comps inside a gorm
// transaction. Comps whose address already exists for the subject
// (case-insensitive) are ignored rather than merged; records failing
// the admission invariant are skipped.
func UpsertComps(tx *gorm.DB, comps []*models.ComparableSale) error {
	for _, c := range comps {
		if c.SoldPrice <= 0 || strings.TrimSpace(c.Address) == "" {
			continue
		}

		result := tx.Exec(`
			INSERT OR IGNORE INTO comps
			(subject_id, address, sold_price, price_per_sqft, zestimate,
			 rent_zestimate, beds, baths, sqft, year_built, property_type,
			 lot_size, has_pool, parking_spaces, sold_date, description,
			 latitude, longitude)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			c.SubjectID, c.Address, c.SoldPrice, c.PricePerSqft,
			c.Zestimate, c.RentZestimate, c.Beds, c.Baths, c.Sqft,
			c.YearBuilt, c.PropertyType, c.LotSize, c.HasPool,
			c.ParkingSpaces, c.SoldDate, c.Description,
			c.Latitude, c.Longitude,
		)
		if result.Error != nil {
			return fmt.Errorf("failed to upsert comp %q: %w", c.Address, result.Error)
		}
	}
	return nil
}
