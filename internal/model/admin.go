package model

import "time"

// Admin is a staff account able to operate the booking console. Members
// (User) never authenticate; only admins do.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique login email.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or SUPERADMIN.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Admin struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken models a stored admin session token. Only the SHA-256 hash
// of the raw token is persisted.
type RefreshToken struct {
	ID        uint64
	AdminID   uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
