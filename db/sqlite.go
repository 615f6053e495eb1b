package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rumahcerdas/pricing"
	"rumahcerdas/property"
)

var database *sql.DB

// InitDB opens the SQLite catalogue and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS listings (
        id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        village TEXT,
        sub_district TEXT,
        address TEXT,
        description TEXT,
        land_area REAL NOT NULL,
        building_area REAL NOT NULL,
        bedrooms INTEGER DEFAULT 2,
        bathrooms INTEGER DEFAULT 1,
        carports INTEGER DEFAULT 0,
        year_built INTEGER DEFAULT 2020,
        floors INTEGER DEFAULT 1,
        school_distance REAL DEFAULT 1000,
        hospital_distance REAL DEFAULT 2000,
        market_distance REAL DEFAULT 1500,
        road_type TEXT,
        condition TEXT,
        certificate TEXT,
        zone TEXT,
        price REAL,
        latitude REAL,
        longitude REAL,
        seller_name TEXT,
        seller_phone TEXT,
        images TEXT,
        status TEXT DEFAULT 'available',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        land_area REAL,
        building_area REAL,
        zone TEXT,
        predicted_price REAL,
        confidence TEXT,
        basis TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_path TEXT,
        mae REAL,
        r2 REAL,
        data_points INTEGER,
        trained_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `

	_, err = database.Exec(query)
	return err
}

// SaveListing inserts or replaces a catalogue listing.
func SaveListing(l property.Listing) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	images, err := json.Marshal(l.Images)
	if err != nil {
		return err
	}
	_, err = database.Exec(`
        INSERT OR REPLACE INTO listings (
            id, title, village, sub_district, address, description,
            land_area, building_area, bedrooms, bathrooms, carports,
            year_built, floors, school_distance, hospital_distance, market_distance,
            road_type, condition, certificate, zone,
            price, latitude, longitude, seller_name, seller_phone, images, status, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Title, l.Village, l.SubDistrict, l.Address, l.Description,
		l.LandArea, l.BuildingArea, l.Bedrooms, l.Bathrooms, l.Carports,
		l.YearBuilt, l.Floors, l.SchoolDistance, l.HospitalDistance, l.MarketDistance,
		string(l.RoadType), string(l.Condition), string(l.Certificate), string(l.Zone),
		l.Price, l.Latitude, l.Longitude, l.SellerName, l.SellerPhone, string(images), string(l.Status), l.CreatedAt)
	return err
}

// ListingFilter narrows QueryListings. Zero values mean "no filter".
type ListingFilter struct {
	MinPrice      float64
	MaxPrice      float64
	SubDistrict   string
	OnlyAvailable bool
	Limit         int
}

// QueryListings returns catalogue listings, newest first.
func QueryListings(filter ListingFilter) ([]property.Listing, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}

	query := `
        SELECT id, title, village, sub_district, address, description,
               land_area, building_area, bedrooms, bathrooms, carports,
               year_built, floors, school_distance, hospital_distance, market_distance,
               road_type, condition, certificate, zone,
               price, latitude, longitude, seller_name, seller_phone, images, status, created_at
        FROM listings`
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	if filter.MinPrice > 0 {
		conditions = append(conditions, "price >= ?")
		args = append(args, filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		conditions = append(conditions, "price <= ?")
		args = append(args, filter.MaxPrice)
	}
	if filter.SubDistrict != "" {
		conditions = append(conditions, "LOWER(sub_district) = LOWER(?)")
		args = append(args, strings.TrimSpace(filter.SubDistrict))
	}
	if filter.OnlyAvailable {
		conditions = append(conditions, "status = ?")
		args = append(args, string(property.StatusAvailable))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]property.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// GetListing fetches a single listing. sql.ErrNoRows when absent.
func GetListing(id string) (property.Listing, error) {
	if database == nil {
		return property.Listing{}, errors.New("database not initialized")
	}
	row := database.QueryRow(`
        SELECT id, title, village, sub_district, address, description,
               land_area, building_area, bedrooms, bathrooms, carports,
               year_built, floors, school_distance, hospital_distance, market_distance,
               road_type, condition, certificate, zone,
               price, latitude, longitude, seller_name, seller_phone, images, status, created_at
        FROM listings WHERE id = ?`, id)
	return scanListing(row)
}

// DeleteListing removes a listing, reporting whether it existed.
func DeleteListing(id string) (bool, error) {
	if database == nil {
		return false, errors.New("database not initialized")
	}
	result, err := database.Exec(`DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SavePrediction logs a served estimate for operability.
func SavePrediction(attrs property.Attributes, result pricing.Result) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO predictions (land_area, building_area, zone, predicted_price, confidence, basis, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		attrs.LandArea, attrs.BuildingArea, string(attrs.Zone),
		result.Price, string(result.Confidence), result.Basis, time.Now().UTC())
	return err
}

type TrainingLog struct {
	ModelPath  string    `json:"model_path"`
	MAE        float64   `json:"mae"`
	R2         float64   `json:"r2"`
	DataPoints int       `json:"data_points"`
	TrainedAt  time.Time `json:"trained_at"`
}

func SaveTrainingLog(log TrainingLog) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_log (model_path, mae, r2, data_points, trained_at)
        VALUES (?, ?, ?, ?, ?)`,
		log.ModelPath, log.MAE, log.R2, log.DataPoints, log.TrainedAt)
	return err
}

func LoadTrainingLog() ([]TrainingLog, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT model_path, mae, r2, data_points, trained_at
        FROM training_log
        ORDER BY trained_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		if err := rows.Scan(&log.ModelPath, &log.MAE, &log.R2, &log.DataPoints, &log.TrainedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (property.Listing, error) {
	var l property.Listing
	var roadType, condition, certificate, zone, status string
	var price, latitude, longitude sql.NullFloat64
	var images sql.NullString
	err := row.Scan(&l.ID, &l.Title, &l.Village, &l.SubDistrict, &l.Address, &l.Description,
		&l.LandArea, &l.BuildingArea, &l.Bedrooms, &l.Bathrooms, &l.Carports,
		&l.YearBuilt, &l.Floors, &l.SchoolDistance, &l.HospitalDistance, &l.MarketDistance,
		&roadType, &condition, &certificate, &zone,
		&price, &latitude, &longitude, &l.SellerName, &l.SellerPhone, &images, &status, &l.CreatedAt)
	if err != nil {
		return property.Listing{}, err
	}
	l.RoadType = property.ParseRoadType(roadType)
	l.Condition = property.ParseCondition(condition)
	l.Certificate = property.ParseCertificate(certificate)
	l.Zone = property.ParseZone(zone)
	l.Status = property.Status(status)
	if price.Valid {
		l.Price = price.Float64
	}
	if latitude.Valid {
		l.Latitude = latitude.Float64
	}
	if longitude.Valid {
		l.Longitude = longitude.Float64
	}
	if images.Valid && images.String != "" {
		_ = json.Unmarshal([]byte(images.String), &l.Images)
	}
	return l, nil
}
