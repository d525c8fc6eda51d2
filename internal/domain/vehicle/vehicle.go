package vehicle

import (
	"errors"
	"strings"
)

// Vehicle is the domain entity corresponding to the `vehicles` table.
type Vehicle struct {
	ID           int64
	Registration string // unique, matched case-insensitively
}

var ErrNotFound = errors.New("vehicle not found")

// NormalizeRegistration trims and uppercases a registration number so
// lookups and display use one canonical form.
func NormalizeRegistration(reg string) string {
	return strings.ToUpper(strings.TrimSpace(reg))
}
