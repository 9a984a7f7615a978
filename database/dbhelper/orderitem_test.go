package dbhelper

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosika-app/sosika-backend/database"
)

func TestRecomputeOrderTotal(t *testing.T) {
	mock := newMockDB(t)
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders o\s+SET total_amount = COALESCE`).
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		return RecomputeOrderTotal(tx, orderID)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderItemQuantityRecomputesLineTotal(t *testing.T) {
	mock := newMockDB(t)
	itemID := uuid.New()
	orderID := uuid.New()
	menuItemID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT price FROM order_menu_item WHERE id = $1`)).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(5.0))
	mock.ExpectQuery(`UPDATE order_menu_item SET quantity`).
		WithArgs(3, 15.0, itemID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "menu_item_id",
			"quantity", "price", "total_amount"}).
			AddRow(itemID, orderID, menuItemID, 3, 5.0, 15.0))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		item, err := UpdateOrderItemQuantity(tx, itemID, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, item.Quantity)
		assert.Equal(t, 15.0, item.TotalAmount)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderItemQuantityMissingItem(t *testing.T) {
	mock := newMockDB(t)
	itemID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT price FROM order_menu_item WHERE id = $1`)).
		WithArgs(itemID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := database.Tx(func(tx *sql.Tx) error {
		_, err := UpdateOrderItemQuantity(tx, itemID, 2)
		return err
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderItemReturnsOwningOrder(t *testing.T) {
	mock := newMockDB(t)
	itemID := uuid.New()
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM order_menu_item WHERE id = $1 RETURNING order_id`)).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(orderID))
	mock.ExpectExec(`UPDATE orders o\s+SET total_amount = COALESCE`).
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		got, err := DeleteOrderItem(tx, itemID)
		require.NoError(t, err)
		assert.Equal(t, orderID, got)
		return RecomputeOrderTotal(tx, got)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
