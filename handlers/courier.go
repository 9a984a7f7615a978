package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/database/dbhelper"
	"github.com/sosika-app/sosika-backend/models"
	"github.com/sosika-app/sosika-backend/realtime"
	"github.com/sosika-app/sosika-backend/utils"
)

var (
	errCourierBusy        = errors.New("courier already has an active order")
	errOrderNotAcceptable = errors.New("order not in an acceptable state")
)

// AcceptOrder is the courier-assignment race entry point. Both guards and
// the assignment write run in one transaction with the order row locked, so
// two couriers racing on the same order, or one courier racing itself across
// two orders, cannot both win.
func AcceptOrder(rt *realtime.Hub) http.HandlerFunc {
	type request struct {
		DeliveryPersonID uuid.UUID `json:"delivery_person_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
		if err != nil {
			http.Error(w, "invalid order ID", http.StatusBadRequest)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeliveryPersonID == uuid.Nil {
			http.Error(w, "delivery_person_id is required", http.StatusBadRequest)
			return
		}

		var ord models.Order
		txErr := database.Tx(func(tx *sql.Tx) error {
			busy, err := dbhelper.CourierHasActiveOrder(tx, req.DeliveryPersonID)
			if err != nil {
				return err
			}
			if busy {
				return errCourierBusy
			}

			ord, err = dbhelper.GetOrderForUpdate(tx, orderID)
			if err != nil {
				return err
			}
			if !ord.Status.Acceptable() {
				return errOrderNotAcceptable
			}

			return dbhelper.AssignCourier(tx, orderID, req.DeliveryPersonID)
		})
		switch {
		case txErr == sql.ErrNoRows:
			http.Error(w, "order not found", http.StatusNotFound)
			return
		case txErr == errCourierBusy || dbhelper.IsUniqueViolation(txErr):
			// The unique index is the backstop for races the guard query
			// cannot see.
			http.Error(w, "You are already assigned to an active order. Complete or cancel it before accepting a new one.",
				http.StatusBadRequest)
			return
		case txErr == errOrderNotAcceptable:
			http.Error(w, "Order is either already assigned or completed/cancelled. Cannot accept.",
				http.StatusBadRequest)
			return
		case txErr != nil:
			logrus.WithError(txErr).Error("failed to assign order")
			http.Error(w, "failed to assign order", http.StatusInternalServerError)
			return
		}

		pickup, dropoff := orderLocations(ord)

		rt.Emit(realtime.OrderRoom(orderID), "orderAssigned", map[string]interface{}{
			"orderId":          orderID,
			"status":           models.StatusAssigned,
			"deliveryPersonId": req.DeliveryPersonID,
		})
		rt.Emit(realtime.VendorRoom(ord.VendorID), "orderUpdated", map[string]interface{}{
			"orderId": orderID,
			"status":  models.StatusAssigned,
		})
		rt.Emit(realtime.DeliveryRoom(req.DeliveryPersonID), "orderAssigned", map[string]interface{}{
			"orderId":          orderID,
			"status":           models.StatusAssigned,
			"pickup_location":  pickup,
			"dropoff_location": dropoff,
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":  "Order assigned successfully",
			"order_id": orderID,
			"status":   models.StatusAssigned,
		})
	}
}

func RegisterDeliveryPerson(w http.ResponseWriter, r *http.Request) {
	type request struct {
		FullName      string    `json:"fullName"`
		PhoneNumber   string    `json:"phoneNumber"`
		Latitude      float64   `json:"latitude"`
		Longitude     float64   `json:"longitude"`
		TransportType string    `json:"transportType"`
		CollegeID     uuid.UUID `json:"collegeId"`
		Password      string    `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.FullName == "" || req.PhoneNumber == "" || req.Password == "" || req.CollegeID == uuid.Nil {
		http.Error(w, "all fields are required", http.StatusBadRequest)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	id, err := dbhelper.CreateDeliveryPerson(models.DeliveryPerson{
		FullName:      req.FullName,
		PhoneNumber:   req.PhoneNumber,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		TransportType: req.TransportType,
		CollegeID:     req.CollegeID,
	}, hashedPassword)
	if err != nil {
		logrus.WithError(err).Error("failed to register delivery person")
		http.Error(w, "failed to register delivery person", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":            "Delivery person registered successfully",
		"delivery_person_id": id,
	})
}

func LoginDeliveryPerson(w http.ResponseWriter, r *http.Request) {
	type request struct {
		FullName string `json:"fullName"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.FullName == "" || req.Password == "" {
		http.Error(w, "all fields are required", http.StatusBadRequest)
		return
	}

	dp, hashedPassword, err := dbhelper.GetDeliveryPersonByName(req.FullName)
	if err == sql.ErrNoRows || (err == nil && !utils.CheckPassword(hashedPassword, req.Password)) {
		http.Error(w, "invalid name or password", http.StatusBadRequest)
		return
	} else if err != nil {
		logrus.WithError(err).Error("delivery person login failed")
		http.Error(w, "error logging in delivery person", http.StatusInternalServerError)
		return
	}

	accessToken, err := utils.GenerateAccessToken(dp.ID, []string{string(models.RoleDelivery)})
	if err != nil {
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":                 "Delivery person login successful",
		"token":                   accessToken,
		"deliveryPersonId":        dp.ID,
		"deliveryPersonName":      dp.FullName,
		"deliveryPersonLatitude":  dp.Latitude,
		"deliveryPersonLongitude": dp.Longitude,
	})
}

func ListDeliveryPersons(w http.ResponseWriter, r *http.Request) {
	couriers, err := dbhelper.ListDeliveryPersons()
	if err != nil {
		logrus.WithError(err).Error("failed to fetch delivery persons")
		http.Error(w, "failed to fetch delivery persons", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(couriers)
}

func GetDeliveryPerson(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid delivery person ID", http.StatusBadRequest)
		return
	}

	dp, err := dbhelper.GetDeliveryPerson(id)
	if err == sql.ErrNoRows {
		http.Error(w, "delivery person not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to fetch delivery person")
		http.Error(w, "error fetching delivery person details", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dp)
}

func UpdateDeliveryPerson(w http.ResponseWriter, r *http.Request) {
	type request struct {
		FullName    *string `json:"fullName"`
		PhoneNumber *string `json:"phoneNumber"`
		Email       *string `json:"email"`
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid delivery person ID", http.StatusBadRequest)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.FullName == nil && req.PhoneNumber == nil && req.Email == nil {
		http.Error(w, "no field to update", http.StatusBadRequest)
		return
	}

	err = dbhelper.UpdateDeliveryPerson(id, req.FullName, req.PhoneNumber, req.Email)
	if err == sql.ErrNoRows {
		http.Error(w, "delivery person not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to update delivery person")
		http.Error(w, "error updating profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Profile Updated Successfully"})
}

// ToggleActive flips the courier's active-for-dispatch flag.
func ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid delivery person ID", http.StatusBadRequest)
		return
	}

	isActive, err := dbhelper.ToggleActive(id)
	if err == sql.ErrNoRows {
		http.Error(w, "delivery person not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to toggle active status")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Status updated",
		"is_active": isActive,
	})
}

func UpdateDeliveryLocation(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid delivery person ID", http.StatusBadRequest)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		http.Error(w, "latitude and longitude are required", http.StatusBadRequest)
		return
	}

	err = dbhelper.UpdateDeliveryLocation(id, *req.Latitude, *req.Longitude)
	if err == sql.ErrNoRows {
		http.Error(w, "delivery person not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to update courier location")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Location updated successfully"})
}

// ListCourierOrders returns the courier's current active assignments.
func ListCourierOrders(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid delivery person ID", http.StatusBadRequest)
		return
	}

	orders, err := dbhelper.ListAssignedOrders(id)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch assigned orders")
		http.Error(w, "failed to fetch assigned orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}
