package models

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryPerson struct {
	ID            uuid.UUID `db:"id" json:"id"`
	FullName      string    `db:"full_name" json:"full_name"`
	PhoneNumber   string    `db:"phone_number" json:"phone_number"`
	Email         *string   `db:"email" json:"email,omitempty"`
	Latitude      float64   `db:"latitude" json:"latitude"`
	Longitude     float64   `db:"longitude" json:"longitude"`
	TransportType string    `db:"transport_type" json:"transport_type"`
	CollegeID     uuid.UUID `db:"college_id" json:"college_id"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	Password      string    `db:"password" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
