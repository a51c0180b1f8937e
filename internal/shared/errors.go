package shared

import "errors"

var (
	// Track catalog errors
	ErrTrackNotFound      = errors.New("track not found")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrMissingColumn      = errors.New("missing csv column")

	// Race session errors
	ErrSessionNotFound = errors.New("race session not found")
	ErrNoTrackSelected = errors.New("no track selected")
	ErrResultNotFound  = errors.New("race result not found")

	// Authentication errors
	ErrInvalidCredentials = errors.New("username/password is incorrect")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotPreauthorized   = errors.New("email not preauthorized to register")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrNothingToUpdate    = errors.New("new values not different from current values")

	// Input validation errors
	ErrInvalidInput = errors.New("invalid input")
)
