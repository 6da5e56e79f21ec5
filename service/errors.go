package service

import "errors"

// Sentinel errors returned by the operations layer. Handlers pick the HTTP
// status by category: validation and conflict map to 400, auth to 401,
// not-found to 404, anything else to 500. The messages are the only error
// detail ever shown to a client.
var (
	// validation
	ErrEmailOrPhoneRequired = errors.New("email or phone number is required")
	ErrPasswordRequired     = errors.New("password is required")

	// conflict
	ErrEmailExists   = errors.New("user with this email already exists")
	ErrPhoneExists   = errors.New("user with this phone number already exists")
	ErrUsernameTaken = errors.New("username is already taken")
	ErrUserExists    = errors.New("user already exists")

	// auth
	ErrInvalidCredentials = errors.New("invalid email/phone")
	ErrInvalidPassword    = errors.New("invalid password")

	// not found
	ErrImageNotFound = errors.New("image not found")
)

// IsValidation reports whether err belongs to the validation category.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmailOrPhoneRequired) || errors.Is(err, ErrPasswordRequired)
}

// IsConflict reports whether err belongs to the uniqueness-conflict category.
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailExists) || errors.Is(err, ErrPhoneExists) ||
		errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrUserExists)
}

// IsAuth reports whether err belongs to the bad-credentials category.
func IsAuth(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrInvalidPassword)
}
