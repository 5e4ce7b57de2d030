package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// templateTagPattern matches "(tagname)" segments in a measurement name template
var templateTagPattern = regexp.MustCompile(`\(([^()]+)\)`)

// Measurement is the schema definition of an InfluxDB measurement: a name
// template plus a fixed set of declared tags and fields. The name template
// may reference tag values, e.g. "meter_(city)" resolves against the "city"
// tag of each point.
type Measurement struct {
	template     string
	templateTags []string

	tags   map[string]Tag
	fields map[string]Field

	// declaration order, used for stable column ordering in frames and queries
	tagOrder   []string
	fieldOrder []string
}

// NewMeasurement declares a measurement schema. Tag and field names must be
// unique across both sets; choice fields carry their own declaration errors
// which are surfaced here.
func NewMeasurement(nameTemplate string, tags []Tag, fields []Field) (*Measurement, error) {
	if nameTemplate == "" {
		return nil, fmt.Errorf("measurement name template must not be empty")
	}

	m := &Measurement{
		template: nameTemplate,
		tags:     make(map[string]Tag, len(tags)),
		fields:   make(map[string]Field, len(fields)),
	}

	seen := make(map[string]bool, len(tags)+len(fields))
	for _, tag := range tags {
		if tag.Name() == "" {
			return nil, fmt.Errorf("measurement %q: tag with empty name", nameTemplate)
		}
		if seen[tag.Name()] {
			return nil, fmt.Errorf("measurement %q: tag %q: %w", nameTemplate, tag.Name(), ErrDuplicateColumn)
		}
		seen[tag.Name()] = true
		m.tags[tag.Name()] = tag
		m.tagOrder = append(m.tagOrder, tag.Name())
	}
	for _, field := range fields {
		if field.err != nil {
			return nil, fmt.Errorf("measurement %q: %w", nameTemplate, field.err)
		}
		if field.Name() == "" {
			return nil, fmt.Errorf("measurement %q: field with empty name", nameTemplate)
		}
		if seen[field.Name()] {
			return nil, fmt.Errorf("measurement %q: field %q: %w", nameTemplate, field.Name(), ErrDuplicateColumn)
		}
		seen[field.Name()] = true
		m.fields[field.Name()] = field
		m.fieldOrder = append(m.fieldOrder, field.Name())
	}

	for _, match := range templateTagPattern.FindAllStringSubmatch(nameTemplate, -1) {
		tagName := match[1]
		if _, ok := m.tags[tagName]; !ok {
			return nil, fmt.Errorf("measurement %q: name template references undeclared tag %q: %w",
				nameTemplate, tagName, ErrUnresolvedName)
		}
		m.templateTags = append(m.templateTags, tagName)
	}

	return m, nil
}

// MustMeasurement is NewMeasurement that panics on declaration errors,
// for package-level schema variables
func MustMeasurement(nameTemplate string, tags []Tag, fields []Field) *Measurement {
	m, err := NewMeasurement(nameTemplate, tags, fields)
	if err != nil {
		panic(err)
	}
	return m
}

// NameTemplate returns the raw measurement name template
func (m *Measurement) NameTemplate() string {
	return m.template
}

// IsDynamic reports whether the measurement name depends on tag values
func (m *Measurement) IsDynamic() bool {
	return len(m.templateTags) > 0
}

// TemplateTags returns the tag names referenced by the name template
func (m *Measurement) TemplateTags() []string {
	return append([]string(nil), m.templateTags...)
}

// ResolveName substitutes tag values into the name template. Every referenced
// tag must have a non-empty value in the given map.
func (m *Measurement) ResolveName(tagValues map[string]string) (string, error) {
	name := m.template
	for _, tagName := range m.templateTags {
		value, ok := tagValues[tagName]
		if !ok || value == "" {
			return "", fmt.Errorf("name template %q needs a value for tag %q: %w",
				m.template, tagName, ErrUnresolvedName)
		}
		name = strings.ReplaceAll(name, "("+tagName+")", value)
	}
	return name, nil
}

// TagNames returns tag names in declaration order
func (m *Measurement) TagNames() []string {
	return append([]string(nil), m.tagOrder...)
}

// FieldNames returns field names in declaration order
func (m *Measurement) FieldNames() []string {
	return append([]string(nil), m.fieldOrder...)
}

// Tag returns the tag descriptor with the given name
func (m *Measurement) Tag(name string) (Tag, bool) {
	tag, ok := m.tags[name]
	return tag, ok
}

// Field returns the field descriptor with the given name
func (m *Measurement) Field(name string) (Field, bool) {
	field, ok := m.fields[name]
	return field, ok
}

// HasColumn reports whether name is a declared tag or field
func (m *Measurement) HasColumn(name string) bool {
	if _, ok := m.tags[name]; ok {
		return true
	}
	_, ok := m.fields[name]
	return ok
}
