// File: entry.go
// Title: Log Entry Structure
// Description: The record a Formatter renders and the field sets loggers
//              merge into it.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive log entry structure
// - 2026-10-19 v0.2.0: User and correlation context dropped, request ID kept
// - 2026-10-19 v0.3.0: Entries assembled from the logger state in one place

package log

import (
	"time"
)

// Entry is one log record as handed to a Formatter
type Entry struct {
	Timestamp time.Time
	Level     Level
	Logger    string
	RequestID string
	Message   string
	Fields    Fields
	Error     error
}

// Fields holds the key-value pairs of a structured entry
type Fields map[string]interface{}

// Field returns a field set with a single pair
func Field(key string, value interface{}) Fields {
	return Fields{key: value}
}

// Clone returns a copy of f. A nil set stays nil.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	return f.with()
}

// with returns a new set holding f and then every extra set; later keys win
func (f Fields) with(extra ...Fields) Fields {
	size := len(f)
	for _, e := range extra {
		size += len(e)
	}
	out := make(Fields, size)
	for k, v := range f {
		out[k] = v
	}
	for _, e := range extra {
		for k, v := range e {
			out[k] = v
		}
	}
	return out
}

// NewEntry returns an entry stamped with the current time
func NewEntry(level Level, message string) *Entry {
	return &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    Fields{},
	}
}

// entry builds the record for one call: the logger's name, request ID and
// persistent fields, overlaid by the call's own fields
func (l *Logger) entry(level Level, message string, err error, fields []Fields) *Entry {
	e := NewEntry(level, message)
	e.Logger = l.name
	e.RequestID = l.requestID
	e.Error = err
	e.Fields = l.contextFields.with(fields...)
	return e
}
