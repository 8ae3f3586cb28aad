package models

import "time"

// RoleAdmin is the only role value that grants administrative capability.
const RoleAdmin = "admin"

// Profile is the per-principal role record, keyed by the principal id.
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Role      string    `json:"role" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for the Profile model.
func (Profile) TableName() string {
	return "profiles"
}

// IsAdmin reports whether the profile grants admin access.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// AdminSummary is the projection returned by the admin listing.
type AdminSummary struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
