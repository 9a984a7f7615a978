package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/database/dbhelper"
	"github.com/sosika-app/sosika-backend/models"
)

// Every line-item mutation below recomputes the owning order's total inside
// the same transaction, keeping total_amount = sum(items) + delivery_fee.

func CreateOrderItem(w http.ResponseWriter, r *http.Request) {
	type request struct {
		OrderID    uuid.UUID `json:"order_id"`
		MenuItemID uuid.UUID `json:"menu_item_id"`
		Quantity   int       `json:"quantity"`
		Price      float64   `json:"price"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.OrderID == uuid.Nil || req.MenuItemID == uuid.Nil {
		http.Error(w, "order_id and menu_item_id are required", http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		http.Error(w, "Quantity must be greater than 0", http.StatusBadRequest)
		return
	}

	var item models.OrderItem
	txErr := database.Tx(func(tx *sql.Tx) error {
		var err error
		item, err = dbhelper.InsertOrderItem(tx, models.OrderItem{
			OrderID:     req.OrderID,
			MenuItemID:  req.MenuItemID,
			Quantity:    req.Quantity,
			Price:       req.Price,
			TotalAmount: float64(req.Quantity) * req.Price,
		})
		if err != nil {
			return err
		}
		return dbhelper.RecomputeOrderTotal(tx, req.OrderID)
	})
	if txErr != nil {
		if dbhelper.IsUniqueViolation(txErr) {
			http.Error(w, "This menu item already exists in the order", http.StatusBadRequest)
			return
		}
		logrus.WithError(txErr).Error("failed to create order menu item")
		http.Error(w, "failed to create order menu item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func ListOrderItems(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	items, err := dbhelper.ListOrderItems(orderID)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch order menu items")
		http.Error(w, "failed to fetch order menu items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func GetOrderItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid order menu item ID", http.StatusBadRequest)
		return
	}

	item, name, description, err := dbhelper.GetOrderItem(id)
	if err == sql.ErrNoRows {
		http.Error(w, "order menu item not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to fetch order menu item")
		http.Error(w, "failed to fetch order menu item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":           item.ID,
		"order_id":     item.OrderID,
		"menu_item_id": item.MenuItemID,
		"quantity":     item.Quantity,
		"price":        item.Price,
		"total_amount": item.TotalAmount,
		"item_name":    name,
		"description":  description,
	})
}

func UpdateOrderItem(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Quantity int `json:"quantity"`
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid order menu item ID", http.StatusBadRequest)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		http.Error(w, "Quantity must be greater than 0", http.StatusBadRequest)
		return
	}

	var item models.OrderItem
	txErr := database.Tx(func(tx *sql.Tx) error {
		var err error
		item, err = dbhelper.UpdateOrderItemQuantity(tx, id, req.Quantity)
		if err != nil {
			return err
		}
		return dbhelper.RecomputeOrderTotal(tx, item.OrderID)
	})
	if txErr == sql.ErrNoRows {
		http.Error(w, "order menu item not found", http.StatusNotFound)
		return
	} else if txErr != nil {
		logrus.WithError(txErr).Error("failed to update order menu item")
		http.Error(w, "failed to update order menu item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func DeleteOrderItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid order menu item ID", http.StatusBadRequest)
		return
	}

	txErr := database.Tx(func(tx *sql.Tx) error {
		orderID, err := dbhelper.DeleteOrderItem(tx, id)
		if err != nil {
			return err
		}
		return dbhelper.RecomputeOrderTotal(tx, orderID)
	})
	if txErr == sql.ErrNoRows {
		http.Error(w, "order menu item not found", http.StatusNotFound)
		return
	} else if txErr != nil {
		logrus.WithError(txErr).Error("failed to delete order menu item")
		http.Error(w, "failed to delete order menu item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Order menu item deleted successfully"})
}

func BulkCreateOrderItems(w http.ResponseWriter, r *http.Request) {
	type itemInput struct {
		MenuItemID uuid.UUID `json:"menu_item_id"`
		Quantity   int       `json:"quantity"`
		Price      float64   `json:"price"`
	}
	type request struct {
		Items []itemInput `json:"items"`
	}

	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		http.Error(w, "items are required", http.StatusBadRequest)
		return
	}
	for _, in := range req.Items {
		if in.Quantity <= 0 {
			http.Error(w, "Quantity must be greater than 0", http.StatusBadRequest)
			return
		}
	}

	var created []models.OrderItem
	txErr := database.Tx(func(tx *sql.Tx) error {
		for _, in := range req.Items {
			item, err := dbhelper.InsertOrderItem(tx, models.OrderItem{
				OrderID:     orderID,
				MenuItemID:  in.MenuItemID,
				Quantity:    in.Quantity,
				Price:       in.Price,
				TotalAmount: float64(in.Quantity) * in.Price,
			})
			if err != nil {
				return err
			}
			created = append(created, item)
		}
		return dbhelper.RecomputeOrderTotal(tx, orderID)
	})
	if txErr != nil {
		if dbhelper.IsUniqueViolation(txErr) {
			http.Error(w, "This menu item already exists in the order", http.StatusBadRequest)
			return
		}
		logrus.WithError(txErr).Error("failed to create order menu items")
		http.Error(w, "failed to create order menu items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}
