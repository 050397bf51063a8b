package settings

import "errors"

var (
	// ErrInvalidKey indicates the key is empty or contains invalid characters.
	ErrInvalidKey = errors.New("settings: invalid key")
	// ErrAlreadyRegistered indicates the same key is registered more than once.
	ErrAlreadyRegistered = errors.New("settings: already registered")
	// ErrInvalidValue indicates a value fails parsing or validation.
	ErrInvalidValue = errors.New("settings: invalid value")
	// ErrInvalidConfig indicates a registration-time configuration error.
	ErrInvalidConfig = errors.New("settings: invalid config")
	// ErrNotFound indicates the key is not registered.
	ErrNotFound = errors.New("settings: key not found")
)
