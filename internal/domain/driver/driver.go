package driver

import "errors"

// Driver is the domain entity corresponding to the `drivers` table.
type Driver struct {
	ID   int64
	Name string
}

// ErrNotFound is returned when no driver matches a name fragment.
var ErrNotFound = errors.New("driver not found")
