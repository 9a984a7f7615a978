package dbhelper

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/models"
)

func CreateUser(tx *sql.Tx, name, email, hashedPassword string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(`INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`,
		name, email, hashedPassword).Scan(&id)
	return id, err
}

func IsUserExists(email string) (bool, error) {
	var count int
	err := database.Sosika.QueryRow(`SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER($1)`, email).Scan(&count)
	return count > 0, err
}

func AssignRole(tx *sql.Tx, userID uuid.UUID, role models.Role) error {
	_, err := tx.Exec(`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role)
	return err
}

func GetUserByPassword(email, password string) (uuid.UUID, string, error) {
	var id uuid.UUID
	var hashedPassword string
	var name string

	err := database.Sosika.QueryRow(`
		SELECT id, name, password FROM users
		WHERE LOWER(email) = LOWER($1) AND archived_at IS NULL`, email).
		Scan(&id, &name, &hashedPassword)
	if err != nil {
		return uuid.Nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) != nil {
		return uuid.Nil, "", fmt.Errorf("incorrect password")
	}

	return id, name, nil
}

func GetUserRoles(userID uuid.UUID) ([]string, error) {
	rows, err := database.Sosika.Query(`
		SELECT role FROM user_roles
		WHERE user_id = $1 AND archived_at IS NULL`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func GetUserProfile(userID uuid.UUID) (models.User, error) {
	var u models.User
	err := database.Sosika.QueryRow(`
		SELECT id, name, email, phone_number, college_id, custom_address, latitude, longitude, created_at
		FROM users
		WHERE id = $1 AND archived_at IS NULL`, userID).
		Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.CollegeID, &u.CustomAddress,
			&u.Latitude, &u.Longitude, &u.CreatedAt)
	return u, err
}

// UpdateUserProfile patches only the provided fields.
func UpdateUserProfile(userID uuid.UUID, name, email, phoneNumber, customAddress *string, collegeID *uuid.UUID) error {
	query := `UPDATE users SET `
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
	if email != nil {
		addField("email", *email)
	}
	if phoneNumber != nil {
		addField("phone_number", *phoneNumber)
	}
	if customAddress != nil {
		addField("custom_address", *customAddress)
	}
	if collegeID != nil {
		addField("college_id", *collegeID)
	}
	if len(params) == 0 {
		return nil
	}

	params = append(params, userID)
	query += fmt.Sprintf(" WHERE id = $%d AND archived_at IS NULL", len(params))

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

func UpdateUserLocation(userID uuid.UUID, lat, lng float64) error {
	res, err := database.Sosika.Exec(`
		UPDATE users SET latitude = $1, longitude = $2 WHERE id = $3 AND archived_at IS NULL`,
		lat, lng, userID)
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

func GetUserLocation(userID uuid.UUID) (*models.GeoPoint, error) {
	var lat, lng sql.NullFloat64
	err := database.Sosika.QueryRow(`
		SELECT latitude, longitude FROM users WHERE id = $1 AND archived_at IS NULL`, userID).
		Scan(&lat, &lng)
	if err != nil {
		return nil, err
	}
	if !lat.Valid || !lng.Valid {
		return nil, nil
	}
	return &models.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}, nil
}
