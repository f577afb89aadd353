package users

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns journal entries.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PinHash      string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPin reports whether the user has configured an unlock PIN.
func (u User) HasPin() bool {
	return u.PinHash != ""
}

// Registration is the input for creating an account.
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}
