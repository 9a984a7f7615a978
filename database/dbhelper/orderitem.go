package dbhelper

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/models"
)

func InsertOrderItem(tx *sql.Tx, item models.OrderItem) (models.OrderItem, error) {
	err := tx.QueryRow(`
		INSERT INTO order_menu_item (order_id, menu_item_id, quantity, price, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		item.OrderID, item.MenuItemID, item.Quantity, item.Price, item.TotalAmount).
		Scan(&item.ID)
	return item, err
}

func ListOrderItems(orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := database.Sosika.Query(`
		SELECT id, order_id, menu_item_id, quantity, price, total_amount
		FROM order_menu_item
		WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity,
			&item.Price, &item.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetOrderItem also resolves the menu item's name and description for the
// response payload.
func GetOrderItem(id uuid.UUID) (models.OrderItem, string, string, error) {
	var item models.OrderItem
	var name, description string
	err := database.Sosika.QueryRow(`
		SELECT omi.id, omi.order_id, omi.menu_item_id, omi.quantity, omi.price, omi.total_amount,
		       mi.name, mi.description
		FROM order_menu_item omi
		JOIN menu_items mi ON omi.menu_item_id = mi.id
		WHERE omi.id = $1`, id).
		Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity, &item.Price,
			&item.TotalAmount, &name, &description)
	return item, name, description, err
}

// UpdateOrderItemQuantity keeps the price snapshot and recomputes the line
// total from it. Returns sql.ErrNoRows when the item does not exist.
func UpdateOrderItemQuantity(tx *sql.Tx, id uuid.UUID, quantity int) (models.OrderItem, error) {
	var item models.OrderItem
	var price float64
	err := tx.QueryRow(`SELECT price FROM order_menu_item WHERE id = $1`, id).Scan(&price)
	if err != nil {
		return item, err
	}

	row := tx.QueryRow(`
		UPDATE order_menu_item SET quantity = $1, total_amount = $2
		WHERE id = $3
		RETURNING id, order_id, menu_item_id, quantity, price, total_amount`,
		quantity, float64(quantity)*price, id)
	err = row.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity,
		&item.Price, &item.TotalAmount)
	return item, err
}

// DeleteOrderItem removes the item and reports which order owned it so the
// caller can recompute the order total in the same transaction.
func DeleteOrderItem(tx *sql.Tx, id uuid.UUID) (uuid.UUID, error) {
	var orderID uuid.UUID
	err := tx.QueryRow(`DELETE FROM order_menu_item WHERE id = $1 RETURNING order_id`, id).
		Scan(&orderID)
	return orderID, err
}

// RecomputeOrderTotal restores the order invariant
// total_amount = sum(item totals) + delivery_fee. An order with no items
// left keeps its delivery fee as the total.
func RecomputeOrderTotal(tx *sql.Tx, orderID uuid.UUID) error {
	_, err := tx.Exec(`
		UPDATE orders o
		SET total_amount = COALESCE((
			SELECT SUM(total_amount) FROM order_menu_item WHERE order_id = o.id
		), 0) + o.delivery_fee
		WHERE o.id = $1`, orderID)
	return err
}
