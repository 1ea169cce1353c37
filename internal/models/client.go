// Package models defines the firm's domain entities.
//
// IDs are plain strings so that every store implementation (SurrealDB,
// in-memory) and the HTTP layer share one shape.
package models

import "time"

// Client statuses.
const (
	ClientActive   = "active"
	ClientInactive = "inactive"
	ClientProspect = "prospect"
)

// Note is a dated annotation on a client's profile.
type Note struct {
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Client represents a firm client (person or company).
type Client struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	CompanyName  string    `json:"companyName,omitempty"`
	Status       string    `json:"status"`
	Notes        []Note    `json:"notes"`
	TotalMatters int       `json:"totalMatters"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// ValidClientStatus reports whether s is a known client status.
func ValidClientStatus(s string) bool {
	switch s {
	case ClientActive, ClientInactive, ClientProspect:
		return true
	}
	return false
}
