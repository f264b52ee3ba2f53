package domain

import "time"

// User is a reader identified by their platform identity.
// ExternalID is the opaque, stable identifier assigned by the chat platform;
// it is the only key callers ever supply. ID is our surrogate key.
type User struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id"`
	DisplayName string    `json:"display_name,omitempty"`
	ProfileURL  string    `json:"profile_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
