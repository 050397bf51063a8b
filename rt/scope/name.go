package scope

import (
	"errors"
	"fmt"
	"strings"
)

// normalizeName trims whitespace and validates the result.
func normalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if err := validateName(n); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidName, name, err)
	}
	return n, nil
}

func validateName(name string) error {
	if name == "" {
		return errors.New("empty")
	}
	// Allowed: [A-Za-z0-9._-]
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			if c == '/' {
				return errors.New("contains '/' (not allowed)")
			}
			if strings.ContainsRune(" \t\r\n", rune(c)) {
				return errors.New("contains whitespace (not allowed)")
			}
			return errors.New("contains invalid char (allowed: [A-Za-z0-9._-])")
		}
	}
	return nil
}
