package schema

import "fmt"

// Tag declares a string-valued indexed dimension of a measurement
type Tag struct {
	name     string
	nullable bool
}

// NewTag declares a nullable tag
func NewTag(name string) Tag {
	return Tag{name: name, nullable: true}
}

// NotNull marks the tag as required at write time
func (t Tag) NotNull() Tag {
	t.nullable = false
	return t
}

// Name returns the declared tag name
func (t Tag) Name() string { return t.name }

// Nullable reports whether the tag may be absent at write time
func (t Tag) Nullable() bool { return t.nullable }

// Validate checks a caller-supplied tag value. Tags are always strings.
func (t Tag) Validate(value interface{}) (string, error) {
	if value == nil {
		if !t.nullable {
			return "", fmt.Errorf("tag %q: %w", t.name, ErrNullValue)
		}
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("tag %q: expected string, got %T: %w", t.name, value, ErrTypeMismatch)
	}
	return s, nil
}
