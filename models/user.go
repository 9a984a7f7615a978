package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleVendor   Role = "vendor"
	RoleDelivery Role = "delivery"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser || r == RoleVendor || r == RoleDelivery
}

type User struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	PhoneNumber   *string    `db:"phone_number" json:"phone_number,omitempty"`
	Password      string     `db:"password" json:"-"`
	CollegeID     *uuid.UUID `db:"college_id" json:"college_id,omitempty"`
	CustomAddress *string    `db:"custom_address" json:"custom_address,omitempty"`
	Latitude      *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude     *float64   `db:"longitude" json:"longitude,omitempty"`
	Roles         []UserRole `db:"-" json:"roles"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	ArchivedAt    *time.Time `db:"archived_at" json:"archived_at,omitempty"`
}

type UserRole struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
