package models

import (
	"time"

	"github.com/google/uuid"
)

type College struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Name    string    `db:"name" json:"name"`
	Address string    `db:"address" json:"address"`
}

type Vendor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerName string    `db:"owner_name" json:"owner_name"`
	Email     string    `db:"email" json:"email"`
	CollegeID uuid.UUID `db:"college_id" json:"college_id"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	Password  string    `db:"password" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type MenuItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	VendorID    uuid.UUID `db:"vendor_id" json:"vendor_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
