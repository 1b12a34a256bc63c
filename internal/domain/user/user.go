package user

import (
	"errors"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"omitempty,max=80"`
	LastName  string `json:"lastName" binding:"omitempty,max=80"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Update is the storage-level partial merge; the password has already been
// hashed by the caller. Nil fields keep their stored values.
type Update struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
}

// pointer fields so absent keys are distinguishable from zero values;
// only present fields overwrite on update.
type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
	FirstName *string `json:"firstName" binding:"omitempty,max=80"`
	LastName  *string `json:"lastName" binding:"omitempty,max=80"`
}
