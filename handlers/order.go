package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sosika-app/sosika-backend/config"
	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/database/dbhelper"
	"github.com/sosika-app/sosika-backend/models"
	"github.com/sosika-app/sosika-backend/notifications"
	"github.com/sosika-app/sosika-backend/realtime"
)

// PlaceOrder creates an order with its line items in one transaction and
// then notifies the vendor outside of it. A notification failure never rolls
// the order back.
func PlaceOrder(notifier *notifications.Notifier) http.HandlerFunc {
	type orderItemInput struct {
		MenuItemID uuid.UUID `json:"menu_item_id"`
		Quantity   int       `json:"quantity"`
		Price      float64   `json:"price"`
	}
	type request struct {
		UserID            uuid.UUID        `json:"user_id"`
		VendorID          uuid.UUID        `json:"vendor_id"`
		DeliveryFee       float64          `json:"delivery_fee"`
		RequestedDatetime *time.Time       `json:"requested_datetime"`
		RequestedASAP     bool             `json:"requested_asap"`
		OrderItems        []orderItemInput `json:"order_items"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.UserID == uuid.Nil || req.VendorID == uuid.Nil {
			http.Error(w, "user_id and vendor_id are required", http.StatusBadRequest)
			return
		}
		if len(req.OrderItems) == 0 {
			http.Error(w, "order must contain at least one item", http.StatusBadRequest)
			return
		}
		if req.DeliveryFee < 0 {
			http.Error(w, "delivery fee cannot be negative", http.StatusBadRequest)
			return
		}

		items := make([]models.OrderItem, 0, len(req.OrderItems))
		for _, in := range req.OrderItems {
			if in.Quantity <= 0 {
				http.Error(w, "quantity must be greater than 0", http.StatusBadRequest)
				return
			}
			items = append(items, models.OrderItem{
				MenuItemID:  in.MenuItemID,
				Quantity:    in.Quantity,
				Price:       in.Price,
				TotalAmount: float64(in.Quantity) * in.Price,
			})
		}

		var orderID uuid.UUID
		txErr := database.Tx(func(tx *sql.Tx) error {
			var err error
			orderID, err = dbhelper.CreateOrder(tx, models.Order{
				UserID:            req.UserID,
				VendorID:          req.VendorID,
				Status:            models.StatusPending,
				DeliveryFee:       req.DeliveryFee,
				TotalAmount:       models.OrderTotal(items, req.DeliveryFee),
				RequestedDatetime: req.RequestedDatetime,
				RequestedASAP:     req.RequestedASAP,
			})
			if err != nil {
				return err
			}
			return dbhelper.InsertOrderItems(tx, orderID, items)
		})
		if txErr != nil {
			if dbhelper.IsUniqueViolation(txErr) {
				http.Error(w, "this menu item already exists in the order", http.StatusBadRequest)
				return
			}
			logrus.WithError(txErr).Error("order creation failed")
			http.Error(w, "failed to create order", http.StatusInternalServerError)
			return
		}

		// The request context dies with the response; notifications get
		// their own.
		go func() {
			email, err := dbhelper.GetVendorContact(req.VendorID)
			if err != nil {
				logrus.WithError(err).Errorf("failed to look up vendor %s for notification", req.VendorID)
				return
			}
			notifier.Email(email, "New Order!",
				fmt.Sprintf("A new order has been placed with ID: %s.", orderID))
			notifier.PushToVendor(context.Background(), req.VendorID, "You have a new Order!",
				fmt.Sprintf("User %s has placed an order.", req.UserID))
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":  "Order created successfully",
			"order_id": orderID,
		})
	}
}

func GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	detail, err := dbhelper.GetOrder(orderID)
	if err == sql.ErrNoRows {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to fetch order")
		http.Error(w, "failed to fetch order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

func ListOrders(w http.ResponseWriter, r *http.Request) {
	var filter dbhelper.OrderFilter
	query := r.URL.Query()

	parseID := func(key string) (*uuid.UUID, bool) {
		raw := query.Get(key)
		if raw == "" {
			return nil, true
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid "+key, http.StatusBadRequest)
			return nil, false
		}
		return &id, true
	}

	var ok bool
	if filter.UserID, ok = parseID("user_id"); !ok {
		return
	}
	if filter.VendorID, ok = parseID("vendor_id"); !ok {
		return
	}
	if filter.DeliveryPersonID, ok = parseID("delivery_person_id"); !ok {
		return
	}

	if status := query.Get("status"); status != "" {
		if !models.OrderStatus(status).IsValid() {
			http.Error(w, "unknown order status", http.StatusBadRequest)
			return
		}
		filter.Status = models.OrderStatus(status)
	}

	parseDate := func(key string) (*time.Time, bool) {
		raw := query.Get(key)
		if raw == "" {
			return nil, true
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid "+key, http.StatusBadRequest)
			return nil, false
		}
		return &t, true
	}

	if filter.FromDate, ok = parseDate("from_date"); !ok {
		return
	}
	if filter.ToDate, ok = parseDate("to_date"); !ok {
		return
	}

	orders, err := dbhelper.ListOrders(filter)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch orders")
		http.Error(w, "failed to fetch orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

func ListVendorOrders(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(mux.Vars(r)["vendorId"])
	if err != nil {
		http.Error(w, "invalid vendor ID", http.StatusBadRequest)
		return
	}

	status := models.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		http.Error(w, "unknown order status", http.StatusBadRequest)
		return
	}

	orders, err := dbhelper.ListVendorOrders(vendorID, status)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch vendor orders")
		http.Error(w, "failed to fetch orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// UpdateOrderStatus is the generic status mutation path. Every change goes
// through the order transition table (unless the free policy is configured)
// and is broadcast to the interested rooms after commit.
func UpdateOrderStatus(rt *realtime.Hub, notifier *notifications.Notifier) http.HandlerFunc {
	type request struct {
		OrderStatus models.OrderStatus `json:"order_status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "invalid order ID", http.StatusBadRequest)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !req.OrderStatus.IsValid() {
			http.Error(w, "unknown order status", http.StatusBadRequest)
			return
		}

		var ord models.Order
		txErr := database.Tx(func(tx *sql.Tx) error {
			var err error
			ord, err = dbhelper.GetOrderForUpdate(tx, orderID)
			if err != nil {
				return err
			}
			if config.Policy == config.PolicyStrict && !ord.Status.CanTransition(req.OrderStatus) {
				return errInvalidTransition
			}
			return dbhelper.UpdateOrderStatus(tx, orderID, req.OrderStatus)
		})
		if txErr == sql.ErrNoRows {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		} else if txErr == errInvalidTransition {
			http.Error(w, fmt.Sprintf("cannot transition order from %s to %s", ord.Status, req.OrderStatus),
				http.StatusBadRequest)
			return
		} else if txErr != nil {
			logrus.WithError(txErr).Error("failed to update order status")
			http.Error(w, "failed to update order status", http.StatusInternalServerError)
			return
		}

		pickup, dropoff := orderLocations(ord)
		broadcastStatusChange(rt, notifier, ord, req.OrderStatus, pickup, dropoff)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"orderId":          orderID,
			"status":           req.OrderStatus,
			"pickup_location":  pickup,
			"dropoff_location": dropoff,
		})
	}
}

var errInvalidTransition = errors.New("invalid status transition")

// orderLocations fetches the broadcast coordinates; either side may be
// missing without failing the status change.
func orderLocations(ord models.Order) (pickup, dropoff *models.GeoPoint) {
	pickup, err := dbhelper.GetVendorLocation(ord.VendorID)
	if err != nil {
		logrus.WithError(err).Errorf("failed to fetch vendor location for order %s", ord.ID)
	}
	dropoff, err = dbhelper.GetUserLocation(ord.UserID)
	if err != nil {
		logrus.WithError(err).Errorf("failed to fetch user location for order %s", ord.ID)
	}
	return pickup, dropoff
}

func broadcastStatusChange(rt *realtime.Hub, notifier *notifications.Notifier,
	ord models.Order, status models.OrderStatus, pickup, dropoff *models.GeoPoint) {

	rt.Emit(realtime.VendorRoom(ord.VendorID), "orderUpdated", map[string]interface{}{
		"orderId": ord.ID,
		"status":  status,
	})

	if status == models.StatusInProgress {
		go notifier.PushToUser(context.Background(), ord.UserID, "Order Update",
			fmt.Sprintf("Your order #%s is in progress", ord.ID))

		// The active pool is queried fresh at broadcast time, never cached.
		active, err := dbhelper.HasActiveDeliveryPersons()
		if err != nil {
			logrus.WithError(err).Error("failed to check for active delivery persons")
		} else if active {
			rt.Emit(realtime.PoolRoom, "newOrderAvailable", map[string]interface{}{
				"orderId":          ord.ID,
				"status":           status,
				"pickup_location":  pickup,
				"dropoff_location": dropoff,
			})
		}
	}

	if ord.DeliveryPersonID == nil {
		return
	}
	switch status {
	case models.StatusAssigned:
		rt.Emit(realtime.DeliveryRoom(*ord.DeliveryPersonID), "orderAssigned", map[string]interface{}{
			"orderId":          ord.ID,
			"status":           status,
			"pickup_location":  pickup,
			"dropoff_location": dropoff,
		})
	case models.StatusCompleted:
		rt.Emit(realtime.DeliveryRoom(*ord.DeliveryPersonID), "orderCompleted", map[string]interface{}{
			"orderId": ord.ID,
			"status":  status,
		})
	}
}

// RateOrder stores both ratings on the order. Re-rating overwrites.
func RateOrder(w http.ResponseWriter, r *http.Request) {
	type request struct {
		DeliveryRating int `json:"delivery_rating"`
		VendorRating   int `json:"vendor_rating"`
	}

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.DeliveryRating < 1 || req.DeliveryRating > 5 || req.VendorRating < 1 || req.VendorRating > 5 {
		http.Error(w, "ratings must be between 1 and 5", http.StatusBadRequest)
		return
	}

	ord, err := dbhelper.SetRatings(orderID, req.DeliveryRating, req.VendorRating)
	if err == sql.ErrNoRows {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to add ratings")
		http.Error(w, "failed to add ratings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ord)
}

// GetOrderTracking returns the order status plus the assigned courier's live
// location, when there is one.
func GetOrderTracking(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	status, location, err := dbhelper.GetOrderTracking(orderID)
	if err == sql.ErrNoRows {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to fetch order tracking")
		http.Error(w, "failed to fetch order status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":            status,
		"delivery_location": location,
	})
}

func ListUnassignedOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := dbhelper.ListUnassignedInProgress()
	if err != nil {
		logrus.WithError(err).Error("failed to fetch unassigned orders")
		http.Error(w, "failed to fetch in-progress orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}
