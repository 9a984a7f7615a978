package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func doRequest(h http.HandlerFunc, method, target, body string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestPlaceOrderRejectsEmptyItems(t *testing.T) {
	body := `{"user_id":"` + uuid.NewString() + `","vendor_id":"` + uuid.NewString() + `","order_items":[]}`
	rec := doRequest(PlaceOrder(nil), "POST", "/api/orders", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least one item")
}

func TestPlaceOrderRejectsZeroQuantity(t *testing.T) {
	body := `{"user_id":"` + uuid.NewString() + `","vendor_id":"` + uuid.NewString() +
		`","order_items":[{"menu_item_id":"` + uuid.NewString() + `","quantity":0,"price":5}]}`
	rec := doRequest(PlaceOrder(nil), "POST", "/api/orders", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity must be greater than 0")
}

func TestPlaceOrderRejectsNegativeDeliveryFee(t *testing.T) {
	body := `{"user_id":"` + uuid.NewString() + `","vendor_id":"` + uuid.NewString() +
		`","delivery_fee":-1,"order_items":[{"menu_item_id":"` + uuid.NewString() + `","quantity":1,"price":5}]}`
	rec := doRequest(PlaceOrder(nil), "POST", "/api/orders", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderRequiresParties(t *testing.T) {
	body := `{"order_items":[{"menu_item_id":"` + uuid.NewString() + `","quantity":1,"price":5}]}`
	rec := doRequest(PlaceOrder(nil), "POST", "/api/orders", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user_id and vendor_id are required")
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	rec := doRequest(UpdateOrderStatus(nil, nil), "PATCH", "/api/orders/x/status",
		`{"order_status":"delivered"}`, map[string]string{"id": uuid.NewString()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown order status")
}

func TestUpdateOrderStatusRejectsBadOrderID(t *testing.T) {
	rec := doRequest(UpdateOrderStatus(nil, nil), "PATCH", "/api/orders/x/status",
		`{"order_status":"completed"}`, map[string]string{"id": "not-a-uuid"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateOrderRejectsOutOfRangeRatings(t *testing.T) {
	vars := map[string]string{"id": uuid.NewString()}

	for _, body := range []string{
		`{"delivery_rating":0,"vendor_rating":3}`,
		`{"delivery_rating":3,"vendor_rating":6}`,
		`{"delivery_rating":-1,"vendor_rating":-1}`,
	} {
		rec := doRequest(RateOrder, "PATCH", "/api/orders/x/ratings", body, vars)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "between 1 and 5")
	}
}

func TestAcceptOrderRequiresCourier(t *testing.T) {
	rec := doRequest(AcceptOrder(nil), "PUT", "/api/orders/x/accept",
		`{}`, map[string]string{"orderId": uuid.NewString()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "delivery_person_id is required")
}

func TestAcceptOrderRejectsBadOrderID(t *testing.T) {
	rec := doRequest(AcceptOrder(nil), "PUT", "/api/orders/x/accept",
		`{"delivery_person_id":"`+uuid.NewString()+`"}`, map[string]string{"orderId": "nope"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmOrderRejectsBadOrderID(t *testing.T) {
	rec := doRequest(ConfirmOrder, "PUT", "/api/orders/x/confirm", "",
		map[string]string{"orderId": "nope"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderItemRejectsZeroQuantity(t *testing.T) {
	body := `{"order_id":"` + uuid.NewString() + `","menu_item_id":"` + uuid.NewString() + `","quantity":0,"price":5}`
	rec := doRequest(CreateOrderItem, "POST", "/api/order-menu-items", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Quantity must be greater than 0")
}

func TestBulkCreateOrderItemsRejectsEmptyList(t *testing.T) {
	rec := doRequest(BulkCreateOrderItems, "POST", "/api/order-menu-items/order/x/bulk",
		`{"items":[]}`, map[string]string{"orderId": uuid.NewString()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "items are required")
}
