package models

import "time"

// ComparableSale is a sold (or actively listed) property used as a market
// reference when estimating a subject property's value. Zero values for
// Sqft, Beds and YearBuilt mean "unknown", not zero magnitude.
type ComparableSale struct {
	ID            int64    `json:"id"`
	SubjectID     int64    `json:"subject_id"`
	Address       string   `json:"address"`
	SoldPrice     float64  `json:"sold_price"`
	PricePerSqft  float64  `json:"price_per_sqft"`
	Zestimate     *float64 `json:"zestimate"`
	RentZestimate *float64 `json:"rent_zestimate"`
	Beds          int      `json:"beds"`
	Baths         float64  `json:"baths"`
	Sqft          int      `json:"sqft"`
	YearBuilt     int      `json:"year_built"`
	PropertyType  string   `json:"property_type"`
	LotSize       string   `json:"lot_size"`
	HasPool       bool     `json:"has_pool"`
	ParkingSpaces *int     `json:"parking_spaces"`
	SoldDate      string   `json:"sold_date"`
	Description   string   `json:"description"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Photos        []Photo  `json:"photos"`

	CreatedAt time.Time `json:"created_at"`
}

// Photo is listing media owned by a single comp.
type Photo struct {
	ID        int64  `json:"id"`
	CompID    int64  `json:"comp_id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

// SubjectProperty is the property being valued.
type SubjectProperty struct {
	ID            int64    `json:"id"`
	Address       string   `json:"address"`
	PurchasePrice float64  `json:"purchase_price"`
	Beds          int      `json:"beds"`
	Baths         float64  `json:"baths"`
	Sqft          int      `json:"sqft"`
	YearBuilt     int      `json:"year_built"`
	PropertyType  string   `json:"property_type"`
	Units         int      `json:"units"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Description   string   `json:"description"`
	DaysOnMarket  *int     `json:"days_on_market"`
	ZillowLink    string   `json:"zillow_link"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
