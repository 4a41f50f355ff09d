package domain

import "time"

// User carries the slice of identity this core needs for authorization checks
// and notifications. Account management lives in the identity service.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
