package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityName is the audit entity kind for votes.
const EntityName = "VoteEntity"

// ErrNotFound is returned when a vote id does not exist.
var ErrNotFound = errors.New("vote: not found")

// Vote is a candidate/party submission as received from a client. It is also the audit
// payload snapshot for vote reads and writes.
type Vote struct {
	Candidate string `json:"candidate"`
	Party     string `json:"party"`
}

// VoteRecord is a persisted vote. It is never mutated or deleted.
type VoteRecord struct {
	ID        uuid.UUID
	Candidate string
	Party     string
	Timestamp time.Time
}

// Vote returns the candidate/party snapshot of the record.
func (r *VoteRecord) Vote() Vote {
	return Vote{Candidate: r.Candidate, Party: r.Party}
}

// Result is the number of votes a party received.
type Result struct {
	Party     string `json:"party"`
	VoteCount int    `json:"voteCount"`
}

// FieldError describes one invalid field of a Vote.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field error of a rejected Vote.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return "vote: validation failed: " + strings.Join(msgs, "; ")
}

// Validate returns the field errors of v, or nil when v is valid. Candidate and party must be
// non-empty; whitespace counts as content.
func Validate(v Vote) []FieldError {
	var errs []FieldError
	if v.Candidate == "" {
		errs = append(errs, FieldError{Field: "candidate", Message: "Candidate must not be empty"})
	}
	if v.Party == "" {
		errs = append(errs, FieldError{Field: "party", Message: "Party must not be empty"})
	}
	return errs
}
