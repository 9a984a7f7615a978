package dbhelper

import (
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/models"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	old := database.Sosika
	database.Sosika = db
	t.Cleanup(func() {
		database.Sosika = old
		db.Close()
	})
	return mock
}

func TestCourierHasActiveOrder(t *testing.T) {
	mock := newMockDB(t)
	courierID := uuid.New()

	for _, busy := range []bool{true, false} {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(courierID, models.StatusAssigned, models.StatusInProgress).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(busy))
		mock.ExpectCommit()

		err := database.Tx(func(tx *sql.Tx) error {
			got, err := CourierHasActiveOrder(tx, courierID)
			require.NoError(t, err)
			assert.Equal(t, busy, got)
			return nil
		})
		require.NoError(t, err)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignCourierUniqueViolationRollsBack(t *testing.T) {
	mock := newMockDB(t)
	orderID := uuid.New()
	courierID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders SET order_status`).
		WithArgs(models.StatusAssigned, courierID, orderID).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := database.Tx(func(tx *sql.Tx) error {
		return AssignCourier(tx, orderID, courierID)
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderForUpdateLocksRow(t *testing.T) {
	mock := newMockDB(t)
	orderID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "vendor_id", "delivery_person_id",
		"order_status", "delivery_fee", "total_amount", "requested_datetime",
		"requested_asap", "delivery_rating", "vendor_rating", "order_datetime"}).
		AddRow(orderID, uuid.New(), uuid.New(), nil, "pending", 2.0, 15.0, nil,
			true, nil, nil, time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(orderID).
		WillReturnRows(rows)
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		ord, err := GetOrderForUpdate(tx, orderID)
		require.NoError(t, err)
		assert.Equal(t, orderID, ord.ID)
		assert.Equal(t, models.StatusPending, ord.Status)
		assert.Nil(t, ord.DeliveryPersonID)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRollsBackOnError(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := fmt.Errorf("boom")
	err := database.Tx(func(tx *sql.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(fmt.Errorf("plain error")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestSetRatingsIsIdempotent(t *testing.T) {
	mock := newMockDB(t)
	orderID := uuid.New()
	userID := uuid.New()
	vendorID := uuid.New()

	ratedRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "user_id", "vendor_id", "delivery_person_id",
			"order_status", "delivery_fee", "total_amount", "requested_datetime",
			"requested_asap", "delivery_rating", "vendor_rating", "order_datetime"}).
			AddRow(orderID, userID, vendorID, nil, "completed", 2.0, 15.0, nil,
				true, 5, 4, time.Now())
	}

	// Re-rating with the same values overwrites and yields the same result.
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE orders SET delivery_rating = $1, vendor_rating = $2`)).
			WithArgs(5, 4, orderID).
			WillReturnRows(ratedRow())
	}

	first, err := SetRatings(orderID, 5, 4)
	require.NoError(t, err)
	require.NotNil(t, first.DeliveryRating)
	require.NotNil(t, first.VendorRating)
	assert.Equal(t, 5, *first.DeliveryRating)
	assert.Equal(t, 4, *first.VendorRating)

	second, err := SetRatings(orderID, 5, 4)
	require.NoError(t, err)
	require.NotNil(t, second.DeliveryRating)
	require.NotNil(t, second.VendorRating)
	assert.Equal(t, *first.DeliveryRating, *second.DeliveryRating)
	assert.Equal(t, *first.VendorRating, *second.VendorRating)

	assert.NoError(t, mock.ExpectationsWereMet())
}
