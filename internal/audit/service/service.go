// Package service serves the audit log to the HTTP layer: listing and the XML report.
package service

import (
	"context"
	"fmt"
	"time"

	"votetrail/backend/internal/audit/domain"
	"votetrail/backend/internal/audit/report"
	auditrepo "votetrail/backend/internal/audit/repository"
)

// ReportObserver times report generation. *metrics.Metrics satisfies it.
type ReportObserver interface {
	ObserveReportGenerate(start time.Time)
}

// Service reads the audit log. Its reads are not themselves audited.
type Service struct {
	repo     auditrepo.Repository
	observer ReportObserver
}

// NewService returns an audit query service. observer may be nil.
func NewService(repo auditrepo.Repository, observer ReportObserver) *Service {
	return &Service{repo: repo, observer: observer}
}

// List returns every audit record, newest first.
func (s *Service) List(ctx context.Context) ([]*domain.AuditRecord, error) {
	return s.repo.ListNewestFirst(ctx)
}

// Report renders every audit record, oldest first, as the XML report.
func (s *Service) Report(ctx context.Context) (string, error) {
	start := time.Now()
	records, err := s.repo.ListOldestFirst(ctx)
	if err != nil {
		return "", err
	}
	if records == nil {
		records = []*domain.AuditRecord{}
	}
	doc, err := report.GenerateReport(records)
	if err != nil {
		return "", fmt.Errorf("audit report: %w", err)
	}
	if s.observer != nil {
		s.observer.ObserveReportGenerate(start)
	}
	return doc, nil
}
