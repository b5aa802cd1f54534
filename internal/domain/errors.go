package domain

import "fmt"

// ConfigurationError reports an unsupported or unresolvable configuration
// value, such as an unknown house system or timezone identifier. It is fatal
// for the single request and never retried at this layer.
type ConfigurationError struct {
	Setting string
	Value   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %q is not supported", e.Setting, e.Value)
}

// MissingCoordinateError reports that the selected provider mandates a birth
// coordinate but the birth data carries none. Raised before any network
// attempt.
type MissingCoordinateError struct{}

func (e *MissingCoordinateError) Error() string {
	return "birth coordinate required by provider but absent"
}

// MappingError reports a malformed or incomplete provider response. Field
// names the offending provider field. A mapping error is fatal for the chart
// and must never reach the cache.
type MappingError struct {
	Field  string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map provider response: field %q: %s", e.Field, e.Reason)
}

// PersistenceError reports a serialization or storage-layer failure while
// saving a chart. Duplicate subjects are not errors; saves upsert.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("chart persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
