package usecase

import "errors"

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBanned      = errors.New("account is banned")
	ErrInvalidRole        = errors.New("invalid role")
	ErrForbidden          = errors.New("insufficient role")
)
