// Package ident generates message identifiers and display timestamps.
package ident

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewMessageID returns a unique, lexicographically sortable message id.
func NewMessageID() string {
	return ulid.Make().String()
}

// Stamp formats t the way chat clients display it.
func Stamp(t time.Time) string {
	return t.Format("15:04")
}
