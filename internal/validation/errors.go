package validation

import (
	"sort"
	"strings"
)

// Errors collects per-field validation messages keyed by the JSON field name.
type Errors struct {
	Fields map[string]string
}

// NewErrors returns an empty collector.
func NewErrors() *Errors {
	return &Errors{Fields: map[string]string{}}
}

// Add records msg for field, keeping the first message reported for it.
func (e *Errors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Merge copies all messages of other into e.
func (e *Errors) Merge(other *Errors) {
	if other == nil {
		return
	}
	for f, m := range other.Fields {
		e.Add(f, m)
	}
}

// Empty reports whether no field failed.
func (e *Errors) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Err returns e as an error, or nil when nothing failed.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
