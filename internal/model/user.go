// Package model defines domain entities for the application.
package model

import "time"

// User is identified by the email address the identity provider reports.
// Name and image are refreshed on every successful login.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
