// Package reporting exposes the compliance engine over the current agreement
// snapshot. Findings and scores are derived values: recomputed on every call,
// never stored.
package reporting

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"baatrack/internal/compliance"
	"baatrack/internal/domain"
	"baatrack/internal/ports"
)

type Service struct {
	repo     ports.AgreementRepository
	analyzer *compliance.Analyzer
	clock    clockwork.Clock
}

func New(repo ports.AgreementRepository, analyzer *compliance.Analyzer, clock clockwork.Clock) *Service {
	return &Service{repo: repo, analyzer: analyzer, clock: clock}
}

func (s *Service) Issues(ctx context.Context) ([]domain.ComplianceIssue, error) {
	ags, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load agreements: %w", err)
	}
	return s.analyzer.Analyze(ags, s.clock.Now()), nil
}

func (s *Service) Summary(ctx context.Context) (ports.ComplianceSummary, error) {
	ags, err := s.repo.List(ctx)
	if err != nil {
		return ports.ComplianceSummary{}, fmt.Errorf("load agreements: %w", err)
	}
	now := s.clock.Now()

	out := ports.ComplianceSummary{
		OrganizationScore: compliance.ScoreOrganization(ags, now),
		Agreements:        make([]ports.AgreementScore, 0, len(ags)),
	}
	for _, ag := range ags {
		out.Agreements = append(out.Agreements, ports.AgreementScore{
			ID:    ag.ID,
			Name:  ag.Name,
			Score: compliance.ScoreAgreement(ag, now),
		})
	}
	return out, nil
}
