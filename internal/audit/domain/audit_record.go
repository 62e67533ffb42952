package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Action is the kind of access an audit record captures.
type Action string

const (
	ActionRead  Action = "READ"
	ActionWrite Action = "WRITE"
)

// Column limits of testable.audits.
const (
	MaxEntityNameLength = 64
	MaxPayloadLength    = 8192
)

var (
	ErrInvalidEntityName = errors.New("audit: entity name must be 1 to 64 characters")
	ErrInvalidAction     = errors.New("audit: action must be READ or WRITE")
	ErrPayloadTooLarge   = errors.New("audit: payload exceeds 8192 characters")
	ErrInvalidCharacters = errors.New("audit: entity name and payload must be valid UTF-8 XML characters")
)

// Valid reports whether a is READ or WRITE.
func (a Action) Valid() bool {
	return a == ActionRead || a == ActionWrite
}

// ParseAction maps "READ"/"WRITE" to an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", ErrInvalidAction
	}
	return a, nil
}

// AuditRecord is one entry of the append-only audit log. EntityID is a soft reference to the
// tracked instance and may be nil; Payload is nil when no snapshot was captured.
type AuditRecord struct {
	ID         uuid.UUID
	EntityName string
	EntityID   *uuid.UUID
	Action     Action
	Payload    *string
	Timestamp  time.Time
}

// Validate checks the record against the column limits.
func (r *AuditRecord) Validate() error {
	if n := utf8.RuneCountInString(r.EntityName); n == 0 || n > MaxEntityNameLength {
		return ErrInvalidEntityName
	}
	if !r.Action.Valid() {
		return ErrInvalidAction
	}
	if r.Payload != nil && utf8.RuneCountInString(*r.Payload) > MaxPayloadLength {
		return ErrPayloadTooLarge
	}
	if !ValidText(r.EntityName) || (r.Payload != nil && !ValidText(*r.Payload)) {
		return ErrInvalidCharacters
	}
	return nil
}

// ValidText reports whether s is valid UTF-8 made only of characters XML 1.0 can carry
// (tab, LF, CR, U+0020-U+D7FF, U+E000-U+FFFD, U+10000-U+10FFFF).
func ValidText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= utf8.MaxRune:
		default:
			return false
		}
	}
	return true
}
