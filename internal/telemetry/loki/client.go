// Package loki pushes committed audit records to Grafana Loki.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	auditdomain "votetrail/backend/internal/audit/domain"
	telemetrydomain "votetrail/backend/internal/telemetry/domain"
)

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single stream with labels and log entries.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // each entry is [timestamp_ns, log_line]
}

// labelSanitize replaces characters that are invalid in Loki label values.
var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:]`)

// Emitter pushes audit records to Loki, one line of AuditEvent JSON per record, labelled by
// entity and action.
type Emitter struct {
	baseURL string
	client  *http.Client
}

// NewEmitter returns an Emitter for the Loki at baseURL (e.g. http://localhost:3100).
// Returns nil when baseURL is empty (push disabled).
func NewEmitter(baseURL string, client *http.Client) *Emitter {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Emitter{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

// Emit pushes rec as one log line.
func (e *Emitter) Emit(ctx context.Context, rec *auditdomain.AuditRecord) error {
	if e == nil || rec == nil {
		return nil
	}
	return e.PushEvent(ctx, telemetrydomain.FromRecord(rec))
}

// PushEvent pushes an already converted event, e.g. one read back from the Kafka audit topic.
func (e *Emitter) PushEvent(ctx context.Context, ev *telemetrydomain.AuditEvent) error {
	if e == nil || ev == nil {
		return nil
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	labels := map[string]string{
		"entity": ev.EntityName,
		"action": ev.Action,
	}
	return e.push(ctx, ev.Timestamp, string(line), labels)
}

func (e *Emitter) push(ctx context.Context, timestamp time.Time, line string, labels map[string]string) error {
	streamLabels := make(map[string]string, len(labels)+1)
	streamLabels["job"] = telemetrydomain.Source
	for k, v := range labels {
		sanitized := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_")
		if sanitized != "" {
			streamLabels[k] = sanitized
		}
	}
	body := PushRequest{
		Streams: []Stream{{
			Stream: streamLabels,
			Values: [][]string{{strconv.FormatInt(timestamp.UnixNano(), 10), line}},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/loki/api/v1/push", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}
