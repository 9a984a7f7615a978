package dbhelper

import (
	"fmt"

	"database/sql"

	"github.com/google/uuid"

	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/models"
)

const vendorColumns = `id, name, owner_name, email, college_id, latitude, longitude, created_at`

func scanVendor(row rowScanner) (models.Vendor, error) {
	var v models.Vendor
	err := row.Scan(&v.ID, &v.Name, &v.OwnerName, &v.Email, &v.CollegeID,
		&v.Latitude, &v.Longitude, &v.CreatedAt)
	return v, err
}

func CreateVendor(v models.Vendor, hashedPassword string) (uuid.UUID, error) {
	var id uuid.UUID
	err := database.Sosika.QueryRow(`
		INSERT INTO vendors (name, owner_name, email, college_id, latitude, longitude, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		v.Name, v.OwnerName, v.Email, v.CollegeID, v.Latitude, v.Longitude,
		hashedPassword).Scan(&id)
	return id, err
}

func GetVendorByName(name string) (models.Vendor, string, error) {
	var v models.Vendor
	var hashedPassword string
	err := database.Sosika.QueryRow(`
		SELECT `+vendorColumns+`, password FROM vendors WHERE name = $1`, name).
		Scan(&v.ID, &v.Name, &v.OwnerName, &v.Email, &v.CollegeID, &v.Latitude,
			&v.Longitude, &v.CreatedAt, &hashedPassword)
	return v, hashedPassword, err
}

func GetVendor(id uuid.UUID) (models.Vendor, error) {
	row := database.Sosika.QueryRow(`SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
	return scanVendor(row)
}

func ListVendors() ([]models.Vendor, error) {
	rows, err := database.Sosika.Query(`SELECT ` + vendorColumns + ` FROM vendors ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func GetVendorLocation(id uuid.UUID) (*models.GeoPoint, error) {
	var p models.GeoPoint
	err := database.Sosika.QueryRow(`SELECT latitude, longitude FROM vendors WHERE id = $1`, id).
		Scan(&p.Lat, &p.Lng)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetVendorContact returns what notifications need: the vendor's email.
func GetVendorContact(id uuid.UUID) (string, error) {
	var email string
	err := database.Sosika.QueryRow(`SELECT email FROM vendors WHERE id = $1`, id).Scan(&email)
	return email, err
}

// UpdateVendor patches only the provided fields.
func UpdateVendor(id uuid.UUID, name, ownerName, email *string, collegeID *uuid.UUID, lat, lng *float64, hashedPassword *string) error {
	query := `UPDATE vendors SET `
	var params []interface{}
	addField := func(column string, value interface{}) {
		if len(params) > 0 {
			query += ", "
		}
		params = append(params, value)
		query += fmt.Sprintf("%s = $%d", column, len(params))
	}

	if name != nil {
		addField("name", *name)
	}
	if ownerName != nil {
		addField("owner_name", *ownerName)
	}
	if email != nil {
		addField("email", *email)
	}
	if collegeID != nil {
		addField("college_id", *collegeID)
	}
	if lat != nil {
		addField("latitude", *lat)
	}
	if lng != nil {
		addField("longitude", *lng)
	}
	if hashedPassword != nil {
		addField("password", *hashedPassword)
	}
	if len(params) == 0 {
		return nil
	}

	params = append(params, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(params))

	res, err := database.Sosika.Exec(query, params...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
