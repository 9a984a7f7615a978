package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
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

func lockedOrderRow(orderID uuid.UUID, courierID *uuid.UUID, status models.OrderStatus) *sqlmock.Rows {
	var courier interface{}
	if courierID != nil {
		courier = *courierID
	}
	return sqlmock.NewRows([]string{"id", "user_id", "vendor_id", "delivery_person_id",
		"order_status", "delivery_fee", "total_amount", "requested_datetime",
		"requested_asap", "delivery_rating", "vendor_rating", "order_datetime"}).
		AddRow(orderID, uuid.New(), uuid.New(), courier, status, 2.0, 15.0, nil,
			true, nil, nil, time.Now())
}

func TestAcceptOrderRejectsBusyCourier(t *testing.T) {
	mock := newMockDB(t)
	orderID := uuid.New()
	courierID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(courierID, models.StatusAssigned, models.StatusInProgress).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	rec := doRequest(AcceptOrder(nil), "PUT", "/api/orders/x/accept",
		`{"delivery_person_id":"`+courierID.String()+`"}`,
		map[string]string{"orderId": orderID.String()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already assigned to an active order")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptOrderRejectsAlreadyAssignedOrder(t *testing.T) {
	mock := newMockDB(t)
	orderID := uuid.New()
	courierID := uuid.New()
	otherCourier := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(courierID, models.StatusAssigned, models.StatusInProgress).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(orderID).
		WillReturnRows(lockedOrderRow(orderID, &otherCourier, models.StatusAssigned))
	mock.ExpectRollback()

	rec := doRequest(AcceptOrder(nil), "PUT", "/api/orders/x/accept",
		`{"delivery_person_id":"`+courierID.String()+`"}`,
		map[string]string{"orderId": orderID.String()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already assigned or completed/cancelled")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptOrderRejectsTerminalOrder(t *testing.T) {
	mock := newMockDB(t)
	orderID := uuid.New()
	courierID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(courierID, models.StatusAssigned, models.StatusInProgress).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(orderID).
		WillReturnRows(lockedOrderRow(orderID, nil, models.StatusCompleted))
	mock.ExpectRollback()

	rec := doRequest(AcceptOrder(nil), "PUT", "/api/orders/x/accept",
		`{"delivery_person_id":"`+courierID.String()+`"}`,
		map[string]string{"orderId": orderID.String()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already assigned or completed/cancelled")
	assert.NoError(t, mock.ExpectationsWereMet())
}
