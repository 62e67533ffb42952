// Package report renders the audit log as an indented XML document and parses it back.
package report

import (
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/google/uuid"

	"votetrail/backend/internal/audit/domain"
)

// ArgumentError reports a missing required argument. It is a programming error.
type ArgumentError struct {
	Param string
}

func (e *ArgumentError) Error() string {
	return "report: " + e.Param + " must not be nil"
}

type auditReport struct {
	XMLName xml.Name     `xml:"AuditReport"`
	Entries []auditEntry `xml:"AuditEntry"`
}

type auditEntry struct {
	ID         string  `xml:"Id,attr"`
	EntityID   string  `xml:"EntityId,attr"`
	Action     string  `xml:"Action,attr"`
	Timestamp  string  `xml:"Timestamp,attr"`
	EntityName string  `xml:"EntityName"`
	Payload    *string `xml:"Payload,omitempty"`
}

// GenerateReport renders records as an XML document, one AuditEntry per record in the given
// order. Ids are written as 32 hex digits, timestamps as RFC 3339 in UTC. An absent entity id
// is written as an empty attribute and an absent payload omits the Payload element.
// A nil slice or a nil element yields an *ArgumentError and no output. Text XML cannot carry
// fails with domain.ErrInvalidCharacters instead of being replaced.
func GenerateReport(records []*domain.AuditRecord) (string, error) {
	if records == nil {
		return "", &ArgumentError{Param: "records"}
	}
	doc := auditReport{Entries: make([]auditEntry, 0, len(records))}
	for i, r := range records {
		if r == nil {
			return "", &ArgumentError{Param: fmt.Sprintf("records[%d]", i)}
		}
		if !domain.ValidText(r.EntityName) || (r.Payload != nil && !domain.ValidText(*r.Payload)) {
			return "", fmt.Errorf("report: records[%d]: %w", i, domain.ErrInvalidCharacters)
		}
		e := auditEntry{
			ID:         formatID(r.ID),
			Action:     string(r.Action),
			Timestamp:  r.Timestamp.UTC().Format(time.RFC3339Nano),
			EntityName: r.EntityName,
			Payload:    r.Payload,
		}
		if r.EntityID != nil {
			e.EntityID = formatID(*r.EntityID)
		}
		doc.Entries = append(doc.Entries, e)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("report: encode: %w", err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// ParseReport reads a document produced by GenerateReport back into audit records.
func ParseReport(doc string) ([]*domain.AuditRecord, error) {
	var parsed auditReport
	if err := xml.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, fmt.Errorf("report: decode: %w", err)
	}
	out := make([]*domain.AuditRecord, 0, len(parsed.Entries))
	for i, e := range parsed.Entries {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return nil, fmt.Errorf("report: entry %d: id: %w", i, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("report: entry %d: timestamp: %w", i, err)
		}
		action, err := domain.ParseAction(e.Action)
		if err != nil {
			return nil, fmt.Errorf("report: entry %d: %w", i, err)
		}
		rec := &domain.AuditRecord{
			ID:         id,
			EntityName: e.EntityName,
			Action:     action,
			Payload:    e.Payload,
			Timestamp:  ts.UTC(),
		}
		if e.EntityID != "" {
			eid, err := uuid.Parse(e.EntityID)
			if err != nil {
				return nil, fmt.Errorf("report: entry %d: entity id: %w", i, err)
			}
			rec.EntityID = &eid
		}
		out = append(out, rec)
	}
	return out, nil
}

func formatID(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}
