package usecase

import "errors"

// Validation errors. Handlers answer them with 400.
var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEmptyText       = errors.New("text must not be empty")
	ErrNothingToUpdate = errors.New("nothing to update")
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrInvalidSize     = errors.New("size must not be negative")
	ErrUploadsDisabled = errors.New("file uploads are disabled")
)

// Authorization errors for owner-or-moderator operations.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role")
)

// IsValidation reports whether err should be answered with 400.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidRating,
		ErrEmptyText,
		ErrNothingToUpdate,
		ErrEmptyTitle,
		ErrInvalidSize,
		ErrUploadsDisabled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
