package dbhelper

import (
	"github.com/google/uuid"

	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/models"
)

const menuItemColumns = `id, vendor_id, name, description, price, is_available, created_at`

func scanMenuItem(row rowScanner) (models.MenuItem, error) {
	var m models.MenuItem
	err := row.Scan(&m.ID, &m.VendorID, &m.Name, &m.Description, &m.Price,
		&m.IsAvailable, &m.CreatedAt)
	return m, err
}

func CreateMenuItem(m models.MenuItem) (uuid.UUID, error) {
	var id uuid.UUID
	err := database.Sosika.QueryRow(`
		INSERT INTO menu_items (vendor_id, name, description, price, is_available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		m.VendorID, m.Name, m.Description, m.Price, m.IsAvailable).Scan(&id)
	return id, err
}

func GetMenuItem(id uuid.UUID) (models.MenuItem, error) {
	row := database.Sosika.QueryRow(`SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id)
	return scanMenuItem(row)
}

func ListMenuItems() ([]models.MenuItem, error) {
	return queryMenuItems(`SELECT ` + menuItemColumns + ` FROM menu_items ORDER BY created_at DESC`)
}

func ListMenuItemsByVendor(vendorID uuid.UUID) ([]models.MenuItem, error) {
	return queryMenuItems(`SELECT `+menuItemColumns+` FROM menu_items WHERE vendor_id = $1 ORDER BY created_at DESC`, vendorID)
}

func queryMenuItems(query string, params ...interface{}) ([]models.MenuItem, error) {
	rows, err := database.Sosika.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func UpdateMenuItemAvailability(id uuid.UUID, isAvailable bool) (models.MenuItem, error) {
	row := database.Sosika.QueryRow(`
		UPDATE menu_items SET is_available = $1
		WHERE id = $2
		RETURNING `+menuItemColumns, isAvailable, id)
	return scanMenuItem(row)
}

func UpdateMenuItemPrice(id uuid.UUID, price float64) (models.MenuItem, error) {
	row := database.Sosika.QueryRow(`
		UPDATE menu_items SET price = $1
		WHERE id = $2
		RETURNING `+menuItemColumns, price, id)
	return scanMenuItem(row)
}

func DeleteMenuItem(id uuid.UUID) (int64, error) {
	res, err := database.Sosika.Exec(`DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
