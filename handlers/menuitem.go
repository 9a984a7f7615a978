package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sosika-app/sosika-backend/database/dbhelper"
	"github.com/sosika-app/sosika-backend/models"
)

func CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	type request struct {
		VendorID    uuid.UUID `json:"vendor_id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Price       float64   `json:"price"`
		IsAvailable bool      `json:"is_available"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.VendorID == uuid.Nil || req.Name == "" {
		http.Error(w, "vendor_id and name are required", http.StatusBadRequest)
		return
	}
	if req.Price < 0 {
		http.Error(w, "price cannot be negative", http.StatusBadRequest)
		return
	}

	id, err := dbhelper.CreateMenuItem(models.MenuItem{
		VendorID:    req.VendorID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		logrus.WithError(err).Error("failed to create menu item")
		http.Error(w, "failed to create menu item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "Menu item created successfully",
		"menu_item_id": id,
	})
}

func ListMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := dbhelper.ListMenuItems()
	if err != nil {
		logrus.WithError(err).Error("failed to fetch menu items")
		http.Error(w, "failed to fetch menu items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func ListVendorMenuItems(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(mux.Vars(r)["vendorId"])
	if err != nil {
		http.Error(w, "invalid vendor ID", http.StatusBadRequest)
		return
	}

	items, err := dbhelper.ListMenuItemsByVendor(vendorID)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch vendor menu items")
		http.Error(w, "failed to fetch menu items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid menu item ID", http.StatusBadRequest)
		return
	}

	item, err := dbhelper.GetMenuItem(id)
	if err == sql.ErrNoRows {
		http.Error(w, "menu item not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to fetch menu item")
		http.Error(w, "failed to fetch menu item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func UpdateMenuItemAvailability(w http.ResponseWriter, r *http.Request) {
	type request struct {
		IsAvailable *bool `json:"is_available"`
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid menu item ID", http.StatusBadRequest)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsAvailable == nil {
		http.Error(w, "is_available is required", http.StatusBadRequest)
		return
	}

	item, err := dbhelper.UpdateMenuItemAvailability(id, *req.IsAvailable)
	if err == sql.ErrNoRows {
		http.Error(w, "menu item not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to update menu item availability")
		http.Error(w, "failed to update menu item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func UpdateMenuItemPrice(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Price *float64 `json:"price"`
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid menu item ID", http.StatusBadRequest)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Price == nil {
		http.Error(w, "price is required", http.StatusBadRequest)
		return
	}
	if *req.Price < 0 {
		http.Error(w, "price cannot be negative", http.StatusBadRequest)
		return
	}

	item, err := dbhelper.UpdateMenuItemPrice(id, *req.Price)
	if err == sql.ErrNoRows {
		http.Error(w, "menu item not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to update menu item price")
		http.Error(w, "failed to update menu item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid menu item ID", http.StatusBadRequest)
		return
	}

	affected, err := dbhelper.DeleteMenuItem(id)
	if err != nil {
		logrus.WithError(err).Error("failed to delete menu item")
		http.Error(w, "failed to delete menu item", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.Error(w, "menu item not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Menu item deleted successfully"})
}
