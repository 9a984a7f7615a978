package dbhelper

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/models"
)

const courierColumns = `id, full_name, phone_number, email, latitude, longitude,
	transport_type, college_id, is_active, created_at`

func scanDeliveryPerson(row rowScanner) (models.DeliveryPerson, error) {
	var dp models.DeliveryPerson
	err := row.Scan(&dp.ID, &dp.FullName, &dp.PhoneNumber, &dp.Email, &dp.Latitude,
		&dp.Longitude, &dp.TransportType, &dp.CollegeID, &dp.IsActive, &dp.CreatedAt)
	return dp, err
}

func CreateDeliveryPerson(dp models.DeliveryPerson, hashedPassword string) (uuid.UUID, error) {
	var id uuid.UUID
	err := database.Sosika.QueryRow(`
		INSERT INTO delivery_person (full_name, phone_number, latitude, longitude, transport_type, college_id, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		dp.FullName, dp.PhoneNumber, dp.Latitude, dp.Longitude, dp.TransportType,
		dp.CollegeID, hashedPassword).Scan(&id)
	return id, err
}

func GetDeliveryPersonByName(fullName string) (models.DeliveryPerson, string, error) {
	var dp models.DeliveryPerson
	var hashedPassword string
	err := database.Sosika.QueryRow(`
		SELECT `+courierColumns+`, password FROM delivery_person WHERE full_name = $1`, fullName).
		Scan(&dp.ID, &dp.FullName, &dp.PhoneNumber, &dp.Email, &dp.Latitude, &dp.Longitude,
			&dp.TransportType, &dp.CollegeID, &dp.IsActive, &dp.CreatedAt, &hashedPassword)
	return dp, hashedPassword, err
}

func GetDeliveryPerson(id uuid.UUID) (models.DeliveryPerson, error) {
	row := database.Sosika.QueryRow(`SELECT `+courierColumns+` FROM delivery_person WHERE id = $1`, id)
	return scanDeliveryPerson(row)
}

func ListDeliveryPersons() ([]models.DeliveryPerson, error) {
	rows, err := database.Sosika.Query(`SELECT ` + courierColumns + ` FROM delivery_person ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var couriers []models.DeliveryPerson
	for rows.Next() {
		dp, err := scanDeliveryPerson(rows)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, dp)
	}
	return couriers, rows.Err()
}

// ToggleActive flips the active-for-dispatch flag and returns the new value.
func ToggleActive(id uuid.UUID) (bool, error) {
	var isActive bool
	err := database.Sosika.QueryRow(`
		UPDATE delivery_person SET is_active = NOT is_active
		WHERE id = $1
		RETURNING is_active`, id).Scan(&isActive)
	return isActive, err
}

func UpdateDeliveryLocation(id uuid.UUID, lat, lng float64) error {
	res, err := database.Sosika.Exec(`
		UPDATE delivery_person SET latitude = $1, longitude = $2 WHERE id = $3`, lat, lng, id)
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

// HasActiveDeliveryPersons reports whether anyone is currently flagged
// active for dispatch. Queried fresh at broadcast time, never cached.
func HasActiveDeliveryPersons() (bool, error) {
	var active bool
	err := database.Sosika.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM delivery_person WHERE is_active = true)`).Scan(&active)
	return active, err
}

// ListAssignedOrders returns the courier's current active assignments.
func ListAssignedOrders(courierID uuid.UUID) ([]models.Order, error) {
	rows, err := database.Sosika.Query(`
		SELECT `+orderColumns+` FROM orders
		WHERE delivery_person_id = $1 AND order_status IN ($2, $3)
		ORDER BY order_datetime DESC`,
		courierID, models.StatusAssigned, models.StatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, ord)
	}
	return orders, rows.Err()
}

// UpdateDeliveryPerson patches only the provided fields.
func UpdateDeliveryPerson(id uuid.UUID, fullName, phoneNumber, email *string) error {
	query := `UPDATE delivery_person SET `
	var params []interface{}
	addField := func(column string, value interface{}) {
		if len(params) > 0 {
			query += ", "
		}
		params = append(params, value)
		query += fmt.Sprintf("%s = $%d", column, len(params))
	}

	if fullName != nil {
		addField("full_name", *fullName)
	}
	if phoneNumber != nil {
		addField("phone_number", *phoneNumber)
	}
	if email != nil {
		addField("email", *email)
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
