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
	"github.com/sosika-app/sosika-backend/utils"
)

var (
	errNoCourierAssigned = errors.New("no courier assigned")
	errNotAssignedState  = errors.New("order not in assigned state")
)

// ConfirmOrder moves an order from assigned to vendor_confirmed. Once
// confirmed, the courier can no longer be reassigned.
func ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	txErr := database.Tx(func(tx *sql.Tx) error {
		ord, err := dbhelper.GetOrderForUpdate(tx, orderID)
		if err != nil {
			return err
		}
		if ord.DeliveryPersonID == nil {
			return errNoCourierAssigned
		}
		if ord.Status != models.StatusAssigned {
			return errNotAssignedState
		}
		return dbhelper.UpdateOrderStatus(tx, orderID, models.StatusVendorConfirmed)
	})
	switch {
	case txErr == sql.ErrNoRows:
		http.Error(w, "order not found", http.StatusNotFound)
		return
	case txErr == errNoCourierAssigned:
		http.Error(w, "No delivery person assigned yet", http.StatusBadRequest)
		return
	case txErr == errNotAssignedState:
		http.Error(w, "Order is not in assigned state", http.StatusBadRequest)
		return
	case txErr != nil:
		logrus.WithError(txErr).Error("failed to confirm order")
		http.Error(w, "failed to confirm order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Order confirmed by vendor"})
}

func RegisterVendor(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name      string    `json:"name"`
		OwnerName string    `json:"ownerName"`
		Email     string    `json:"email"`
		CollegeID uuid.UUID `json:"collegeId"`
		Latitude  float64   `json:"latitude"`
		Longitude float64   `json:"longitude"`
		Password  string    `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.OwnerName == "" || req.Email == "" || req.CollegeID == uuid.Nil || req.Password == "" {
		http.Error(w, "all fields are required", http.StatusBadRequest)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	id, err := dbhelper.CreateVendor(models.Vendor{
		Name:      req.Name,
		OwnerName: req.OwnerName,
		Email:     req.Email,
		CollegeID: req.CollegeID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}, hashedPassword)
	if err != nil {
		logrus.WithError(err).Error("failed to register vendor")
		http.Error(w, "error registering vendor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Vendor registered successfully",
		"vendor_id": id,
	})
}

func LoginVendor(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Password == "" {
		http.Error(w, "all fields are required", http.StatusBadRequest)
		return
	}

	vendor, hashedPassword, err := dbhelper.GetVendorByName(req.Name)
	if err == sql.ErrNoRows || (err == nil && !utils.CheckPassword(hashedPassword, req.Password)) {
		http.Error(w, "invalid name or password", http.StatusBadRequest)
		return
	} else if err != nil {
		logrus.WithError(err).Error("vendor login failed")
		http.Error(w, "error logging in vendor", http.StatusInternalServerError)
		return
	}

	accessToken, err := utils.GenerateAccessToken(vendor.ID, []string{string(models.RoleVendor)})
	if err != nil {
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Vendor login successful",
		"token":      accessToken,
		"vendorId":   vendor.ID,
		"vendorName": vendor.Name,
	})
}

func ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := dbhelper.ListVendors()
	if err != nil {
		logrus.WithError(err).Error("failed to fetch vendors")
		http.Error(w, "error fetching vendors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vendors)
}

func GetVendor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid vendor ID", http.StatusBadRequest)
		return
	}

	vendor, err := dbhelper.GetVendor(id)
	if err == sql.ErrNoRows {
		http.Error(w, "vendor not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to fetch vendor")
		http.Error(w, "error fetching vendor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vendor)
}

func UpdateVendor(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name      *string    `json:"name"`
		OwnerName *string    `json:"ownerName"`
		Email     *string    `json:"email"`
		CollegeID *uuid.UUID `json:"collegeId"`
		Latitude  *float64   `json:"latitude"`
		Longitude *float64   `json:"longitude"`
		Password  *string    `json:"password"`
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid vendor ID", http.StatusBadRequest)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	var hashedPassword *string
	if req.Password != nil {
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			http.Error(w, "failed to hash password", http.StatusInternalServerError)
			return
		}
		hashedPassword = &hashed
	}

	if req.Name == nil && req.OwnerName == nil && req.Email == nil && req.CollegeID == nil &&
		req.Latitude == nil && req.Longitude == nil && hashedPassword == nil {
		http.Error(w, "no fields to update", http.StatusBadRequest)
		return
	}

	err = dbhelper.UpdateVendor(id, req.Name, req.OwnerName, req.Email, req.CollegeID,
		req.Latitude, req.Longitude, hashedPassword)
	if err == sql.ErrNoRows {
		http.Error(w, "vendor not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to update vendor")
		http.Error(w, "error updating vendor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Vendor updated successfully"})
}
