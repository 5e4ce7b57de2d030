package schema

import "errors"

// Validation errors returned by schema declaration and point construction.
// All of them are reported synchronously; transport errors never originate here.
var (
	// ErrTypeMismatch is returned when a value does not match the declared field type
	ErrTypeMismatch = errors.New("value type mismatch")

	// ErrNullValue is returned when a non-nullable tag or field has no value
	ErrNullValue = errors.New("null value for non-nullable column")

	// ErrUnknownColumn is returned when a value references no declared tag or field
	ErrUnknownColumn = errors.New("unknown tag or field")

	// ErrDuplicateColumn is returned when a measurement declares the same name twice
	ErrDuplicateColumn = errors.New("duplicate tag or field name")

	// ErrInvalidChoice is returned when a choice field holds a value outside its option set
	ErrInvalidChoice = errors.New("value not in declared options")

	// ErrInvalidOptions is returned when a choice field declares an empty or duplicated option set
	ErrInvalidOptions = errors.New("invalid choice options")

	// ErrUnresolvedName is returned when a measurement name template references a missing tag
	ErrUnresolvedName = errors.New("unresolved measurement name template")
)
