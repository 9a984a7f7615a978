package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID                uuid.UUID   `db:"id" json:"id"`
	UserID            uuid.UUID   `db:"user_id" json:"user_id"`
	VendorID          uuid.UUID   `db:"vendor_id" json:"vendor_id"`
	DeliveryPersonID  *uuid.UUID  `db:"delivery_person_id" json:"delivery_person_id,omitempty"`
	Status            OrderStatus `db:"order_status" json:"order_status"`
	DeliveryFee       float64     `db:"delivery_fee" json:"delivery_fee"`
	TotalAmount       float64     `db:"total_amount" json:"total_amount"`
	RequestedDatetime *time.Time  `db:"requested_datetime" json:"requested_datetime,omitempty"`
	RequestedASAP     bool        `db:"requested_asap" json:"requested_asap"`
	DeliveryRating    *int        `db:"delivery_rating" json:"delivery_rating,omitempty"`
	VendorRating      *int        `db:"vendor_rating" json:"vendor_rating,omitempty"`
	CreatedAt         time.Time   `db:"order_datetime" json:"order_datetime"`
}

type OrderItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OrderID     uuid.UUID `db:"order_id" json:"order_id"`
	MenuItemID  uuid.UUID `db:"menu_item_id" json:"menu_item_id"`
	Quantity    int       `db:"quantity" json:"quantity"`
	Price       float64   `db:"price" json:"price"` // unit price snapshot at order time
	TotalAmount float64   `db:"total_amount" json:"total_amount"`
}

// GeoPoint is a latitude/longitude pair used in tracking payloads.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OrderDetail is an order joined with its items and the pickup/dropoff
// coordinates needed by tracking clients.
type OrderDetail struct {
	Order
	Items           []OrderItem `json:"items"`
	PickupLocation  *GeoPoint   `json:"pickup_location,omitempty"`
	DropoffLocation *GeoPoint   `json:"dropoff_location,omitempty"`
	UserPhone       *string     `json:"user_phone,omitempty"`
}

// OrderTotal is the one total formula used everywhere: item totals plus the
// delivery fee.
func OrderTotal(items []OrderItem, deliveryFee float64) float64 {
	var sum float64
	for _, item := range items {
		sum += item.TotalAmount
	}
	return sum + deliveryFee
}
