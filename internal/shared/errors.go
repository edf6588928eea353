package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Provider authentication errors
	ErrAuthExchange = fmt.Errorf("credential exchange failed")
	ErrTimeout      = fmt.Errorf("operation timed out")

	// Catalog errors
	ErrCatalogRequest = fmt.Errorf("catalog request failed")
	ErrTrackNotFound  = fmt.Errorf("track not found")

	// Account errors
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrInvalidToken       = fmt.Errorf("invalid token")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserExists         = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
