// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. ID and CreatedAt are assigned by the store.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
