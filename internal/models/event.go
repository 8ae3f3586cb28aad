package models

import "time"

// Event is a show listing.
type Event struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Title     string    `json:"title" gorm:"not null"`
	Venue     string    `json:"venue"`
	City      string    `json:"city"`
	StartsAt  time.Time `json:"starts_at" gorm:"not null;index"`
	TicketURL string    `json:"ticket_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for the Event model.
func (Event) TableName() string {
	return "events"
}

// All returns every model managed by migrations.
func All() []any {
	return []any{&User{}, &Profile{}, &Setting{}, &Event{}}
}
