package model

import "time"

// User is a dispatcher account. Every write endpoint sits behind one.
type User struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
