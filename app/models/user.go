package models

import "time"

// Membership roles, in decreasing order of privilege.
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// StoreMembership links an identity to a store with a role.
type StoreMembership struct {
	ID        int64     `gorm:"primaryKey"                json:"id"`
	UserID    string    `gorm:"size:64;not null;unique"   json:"user_id"`
	StoreID   *int64    `gorm:"index"                     json:"store_id"`
	Role      string    `gorm:"size:20;not null;index"    json:"role"`
	CreatedAt time.Time `                                 json:"created_at"`
}

func (StoreMembership) TableName() string { return "store_users" }

// User is an identity merged with its store membership.
type User struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role"`
	StoreID   *int64     `json:"store_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
