package users

import "errors"

var (
	// ErrUserNotFound is returned when no user exists for the given id or email
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a user whose id is already taken
	ErrUserExists = errors.New("user already exists")

	// ErrMissingID is returned when a user record has no id
	ErrMissingID = errors.New("user id is required")
)
