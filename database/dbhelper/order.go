package dbhelper

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/models"
)

const orderColumns = `id, user_id, vendor_id, delivery_person_id, order_status, delivery_fee,
	total_amount, requested_datetime, requested_asap, delivery_rating, vendor_rating, order_datetime`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (models.Order, error) {
	var ord models.Order
	err := row.Scan(&ord.ID, &ord.UserID, &ord.VendorID, &ord.DeliveryPersonID, &ord.Status,
		&ord.DeliveryFee, &ord.TotalAmount, &ord.RequestedDatetime, &ord.RequestedASAP,
		&ord.DeliveryRating, &ord.VendorRating, &ord.CreatedAt)
	return ord, err
}

func CreateOrder(tx *sql.Tx, ord models.Order) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(`
		INSERT INTO orders (user_id, vendor_id, order_status, delivery_fee, total_amount, requested_datetime, requested_asap)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		ord.UserID, ord.VendorID, ord.Status, ord.DeliveryFee, ord.TotalAmount,
		ord.RequestedDatetime, ord.RequestedASAP).Scan(&id)
	return id, err
}

func InsertOrderItems(tx *sql.Tx, orderID uuid.UUID, items []models.OrderItem) error {
	for _, item := range items {
		_, err := tx.Exec(`
			INSERT INTO order_menu_item (order_id, menu_item_id, quantity, price, total_amount)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, item.MenuItemID, item.Quantity, item.Price, item.TotalAmount)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetOrderForUpdate locks the order row so that racing status changes and
// courier accepts on the same order are serialized by the store.
func GetOrderForUpdate(tx *sql.Tx, orderID uuid.UUID) (models.Order, error) {
	row := tx.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	return scanOrder(row)
}

// CourierHasActiveOrder is the accept-time guard: a courier may hold at most
// one order in an active status.
func CourierHasActiveOrder(tx *sql.Tx, courierID uuid.UUID) (bool, error) {
	var busy bool
	err := tx.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE delivery_person_id = $1 AND order_status IN ($2, $3)
		)`, courierID, models.StatusAssigned, models.StatusInProgress).Scan(&busy)
	return busy, err
}

func AssignCourier(tx *sql.Tx, orderID, courierID uuid.UUID) error {
	_, err := tx.Exec(`
		UPDATE orders SET order_status = $1, delivery_person_id = $2 WHERE id = $3`,
		models.StatusAssigned, courierID, orderID)
	return err
}

func UpdateOrderStatus(tx *sql.Tx, orderID uuid.UUID, status models.OrderStatus) error {
	_, err := tx.Exec(`UPDATE orders SET order_status = $1 WHERE id = $2`, status, orderID)
	return err
}

// GetOrder returns the order with its items, pickup/dropoff coordinates and
// the customer's phone number.
func GetOrder(orderID uuid.UUID) (models.OrderDetail, error) {
	var detail models.OrderDetail
	var pickupLat, pickupLng, dropoffLat, dropoffLng sql.NullFloat64

	row := database.Sosika.QueryRow(`
		SELECT o.id, o.user_id, o.vendor_id, o.delivery_person_id, o.order_status, o.delivery_fee,
		       o.total_amount, o.requested_datetime, o.requested_asap, o.delivery_rating, o.vendor_rating, o.order_datetime,
		       v.latitude, v.longitude, u.latitude, u.longitude, u.phone_number
		FROM orders o
		JOIN vendors v ON o.vendor_id = v.id
		JOIN users u ON o.user_id = u.id
		WHERE o.id = $1`, orderID)

	err := row.Scan(&detail.ID, &detail.UserID, &detail.VendorID, &detail.DeliveryPersonID,
		&detail.Status, &detail.DeliveryFee, &detail.TotalAmount, &detail.RequestedDatetime,
		&detail.RequestedASAP, &detail.DeliveryRating, &detail.VendorRating, &detail.CreatedAt,
		&pickupLat, &pickupLng, &dropoffLat, &dropoffLng, &detail.UserPhone)
	if err != nil {
		return detail, err
	}

	if pickupLat.Valid && pickupLng.Valid {
		detail.PickupLocation = &models.GeoPoint{Lat: pickupLat.Float64, Lng: pickupLng.Float64}
	}
	if dropoffLat.Valid && dropoffLng.Valid {
		detail.DropoffLocation = &models.GeoPoint{Lat: dropoffLat.Float64, Lng: dropoffLng.Float64}
	}

	detail.Items, err = ListOrderItems(orderID)
	return detail, err
}

type OrderFilter struct {
	UserID           *uuid.UUID
	VendorID         *uuid.UUID
	DeliveryPersonID *uuid.UUID
	Status           models.OrderStatus
	FromDate         *time.Time
	ToDate           *time.Time
}

func ListOrders(filter OrderFilter) ([]models.OrderDetail, error) {
	query := `
		SELECT o.id, o.user_id, o.vendor_id, o.delivery_person_id, o.order_status, o.delivery_fee,
		       o.total_amount, o.requested_datetime, o.requested_asap, o.delivery_rating, o.vendor_rating, o.order_datetime,
		       u.phone_number
		FROM orders o
		JOIN users u ON o.user_id = u.id
		WHERE 1=1`

	var params []interface{}
	addParam := func(clause string, value interface{}) {
		params = append(params, value)
		query += fmt.Sprintf(clause, len(params))
	}

	if filter.UserID != nil {
		addParam(` AND o.user_id = $%d`, *filter.UserID)
	}
	if filter.VendorID != nil {
		addParam(` AND o.vendor_id = $%d`, *filter.VendorID)
	}
	if filter.DeliveryPersonID != nil {
		addParam(` AND o.delivery_person_id = $%d`, *filter.DeliveryPersonID)
	}
	if filter.Status != "" {
		addParam(` AND o.order_status = $%d`, filter.Status)
	}
	if filter.FromDate != nil {
		addParam(` AND o.order_datetime >= $%d`, *filter.FromDate)
	}
	if filter.ToDate != nil {
		addParam(` AND o.order_datetime <= $%d`, *filter.ToDate)
	}

	query += ` ORDER BY o.order_datetime DESC`

	rows, err := database.Sosika.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []models.OrderDetail
	for rows.Next() {
		var d models.OrderDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.VendorID, &d.DeliveryPersonID, &d.Status,
			&d.DeliveryFee, &d.TotalAmount, &d.RequestedDatetime, &d.RequestedASAP,
			&d.DeliveryRating, &d.VendorRating, &d.CreatedAt, &d.UserPhone); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attachItems(details)
}

// attachItems loads the line items for every order in one query.
func attachItems(details []models.OrderDetail) ([]models.OrderDetail, error) {
	if len(details) == 0 {
		return details, nil
	}

	ids := make([]string, 0, len(details))
	index := make(map[uuid.UUID]int, len(details))
	for i, d := range details {
		ids = append(ids, d.ID.String())
		index[d.ID] = i
	}

	rows, err := database.Sosika.Query(`
		SELECT id, order_id, menu_item_id, quantity, price, total_amount
		FROM order_menu_item
		WHERE order_id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity,
			&item.Price, &item.TotalAmount); err != nil {
			return nil, err
		}
		i := index[item.OrderID]
		details[i].Items = append(details[i].Items, item)
	}
	return details, rows.Err()
}

func ListVendorOrders(vendorID uuid.UUID, status models.OrderStatus) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE vendor_id = $1`
	params := []interface{}{vendorID}
	if status != "" {
		query += ` AND order_status = $2`
		params = append(params, status)
	}
	query += ` ORDER BY order_datetime DESC`

	rows, err := database.Sosika.Query(query, params...)
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

// ListUnassignedInProgress returns the orders the courier pool may still pick
// up: in progress with no courier attached.
func ListUnassignedInProgress() ([]models.OrderDetail, error) {
	rows, err := database.Sosika.Query(`
		SELECT o.id, o.user_id, o.vendor_id, o.delivery_person_id, o.order_status, o.delivery_fee,
		       o.total_amount, o.requested_datetime, o.requested_asap, o.delivery_rating, o.vendor_rating, o.order_datetime,
		       u.phone_number
		FROM orders o
		JOIN users u ON o.user_id = u.id
		WHERE o.order_status = $1 AND o.delivery_person_id IS NULL
		ORDER BY o.order_datetime DESC`, models.StatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []models.OrderDetail
	for rows.Next() {
		var d models.OrderDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.VendorID, &d.DeliveryPersonID, &d.Status,
			&d.DeliveryFee, &d.TotalAmount, &d.RequestedDatetime, &d.RequestedASAP,
			&d.DeliveryRating, &d.VendorRating, &d.CreatedAt, &d.UserPhone); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attachItems(details)
}

// SetRatings stores both ratings on the order row. Re-rating overwrites.
func SetRatings(orderID uuid.UUID, deliveryRating, vendorRating int) (models.Order, error) {
	row := database.Sosika.QueryRow(`
		UPDATE orders SET delivery_rating = $1, vendor_rating = $2
		WHERE id = $3
		RETURNING `+orderColumns, deliveryRating, vendorRating, orderID)
	return scanOrder(row)
}

// GetOrderTracking returns the order status and, when a courier is assigned,
// the courier's last reported location.
func GetOrderTracking(orderID uuid.UUID) (models.OrderStatus, *models.GeoPoint, error) {
	var status models.OrderStatus
	var courierID *uuid.UUID
	err := database.Sosika.QueryRow(`
		SELECT order_status, delivery_person_id FROM orders WHERE id = $1`, orderID).
		Scan(&status, &courierID)
	if err != nil {
		return "", nil, err
	}
	if courierID == nil {
		return status, nil, nil
	}

	var loc models.GeoPoint
	err = database.Sosika.QueryRow(`
		SELECT latitude, longitude FROM delivery_person WHERE id = $1`, *courierID).
		Scan(&loc.Lat, &loc.Lng)
	if err == sql.ErrNoRows {
		return status, nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return status, &loc, nil
}
