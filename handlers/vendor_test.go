package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sosika-app/sosika-backend/models"
)

func TestConfirmOrderRequiresAssignedCourier(t *testing.T) {
	mock := newMockDB(t)
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(orderID).
		WillReturnRows(lockedOrderRow(orderID, nil, models.StatusInProgress))
	mock.ExpectRollback()

	rec := doRequest(ConfirmOrder, "PUT", "/api/orders/x/confirm", "",
		map[string]string{"orderId": orderID.String()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No delivery person assigned yet")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmOrderRequiresAssignedState(t *testing.T) {
	mock := newMockDB(t)

	for _, status := range []models.OrderStatus{models.StatusVendorConfirmed,
		models.StatusCompleted, models.StatusCancelled} {
		orderID := uuid.New()
		courierID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(orderID).
			WillReturnRows(lockedOrderRow(orderID, &courierID, status))
		mock.ExpectRollback()

		rec := doRequest(ConfirmOrder, "PUT", "/api/orders/x/confirm", "",
			map[string]string{"orderId": orderID.String()})

		assert.Equal(t, http.StatusBadRequest, rec.Code, "status %s", status)
		assert.Contains(t, rec.Body.String(), "Order is not in assigned state")
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}
