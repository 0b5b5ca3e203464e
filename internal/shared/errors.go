package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthMissing        = fmt.Errorf("not signed in")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrAuthFailed         = fmt.Errorf("authentication failed")

	// Sync errors
	ErrRemoteUnavailable = fmt.Errorf("remote unavailable")
	ErrNotFound          = fmt.Errorf("record not found")

	// Local storage errors
	ErrLocalStorage  = fmt.Errorf("local storage failure")
	ErrKeyNotFound   = fmt.Errorf("key not found")
	ErrQuotaExceeded = fmt.Errorf("storage quota exceeded")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrUnknownDataset  = fmt.Errorf("unknown dataset")
)
