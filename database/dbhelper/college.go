package dbhelper

import (
	"github.com/google/uuid"

	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/models"
)

func CreateCollege(name, address string) (uuid.UUID, error) {
	var id uuid.UUID
	err := database.Sosika.QueryRow(`
		INSERT INTO colleges (name, address) VALUES ($1, $2) RETURNING id`,
		name, address).Scan(&id)
	return id, err
}

func ListColleges() ([]models.College, error) {
	rows, err := database.Sosika.Query(`SELECT id, name, address FROM colleges ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colleges []models.College
	for rows.Next() {
		var c models.College
		if err := rows.Scan(&c.ID, &c.Name, &c.Address); err != nil {
			return nil, err
		}
		colleges = append(colleges, c)
	}
	return colleges, rows.Err()
}
