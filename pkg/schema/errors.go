package schema

import "errors"

// ErrInvalidSchema is returned when a schema file cannot be parsed or fails
// validation.
var ErrInvalidSchema = errors.New("pgquery/schema: invalid schema")

// ErrCyclicSchema is returned when foreign keys form a cycle, so no table
// creation order exists.
var ErrCyclicSchema = errors.New("pgquery/schema: cyclic references")

// IsInvalidSchemaErr returns true if err is or wraps ErrInvalidSchema.
func IsInvalidSchemaErr(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}

// IsCyclicSchemaErr returns true if err is or wraps ErrCyclicSchema.
func IsCyclicSchemaErr(err error) bool {
	return errors.Is(err, ErrCyclicSchema)
}
