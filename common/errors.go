package common

import "errors"

var (

	// store errors
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrCreationFailed = errors.New("creation failed")
	ErrUpdateFailed   = errors.New("update failed")

	// action errors
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientCredits = errors.New("insufficient credits")

	// webhook errors
	ErrVerificationFailed = errors.New("verification failed")

	ErrConfiguration = errors.New("configuration error")
)

// Known reports whether err belongs to the application's error taxonomy.
func Known(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrCreationFailed,
		ErrUpdateFailed,
		ErrUnauthenticated,
		ErrUnauthorized,
		ErrInvalidInput,
		ErrInsufficientCredits,
		ErrVerificationFailed,
		ErrConfiguration,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
