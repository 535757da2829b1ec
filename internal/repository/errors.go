// Package repository implements the MySQL persistence layer the store
// writes through. Sentinel errors let handlers distinguish failure cases
// without inspecting driver-specific messages.
package repository

import "errors"

// ErrEmailExists is returned when an admin registration collides with an
// existing login email. Handlers should translate this into 409.
var ErrEmailExists = errors.New("email already exists")

// ErrAdminNotFound is returned when an admin lookup yields no rows.
var ErrAdminNotFound = errors.New("admin not found")
