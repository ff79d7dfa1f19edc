// Package agreements implements portfolio CRUD on top of the agreement
// repository: create with an initial version, versioned updates, soft delete.
package agreements

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"baatrack/internal/domain"
	"baatrack/internal/ports"
)

var ErrInvalid = errString("invalid agreement")

type errString string

func (e errString) Error() string { return string(e) }

// DefaultRetentionYears is assumed when the free-text retention term cannot
// be parsed. HIPAA's minimum record-retention period is six years.
const DefaultRetentionYears = 6

type Service struct {
	repo  ports.AgreementRepository
	clock clockwork.Clock
	log   *slog.Logger
}

func New(repo ports.AgreementRepository, clock clockwork.Clock, log *slog.Logger) *Service {
	return &Service{repo: repo, clock: clock, log: log}
}

func (s *Service) Create(ctx context.Context, in ports.AgreementInput) (domain.Agreement, error) {
	if err := validate(in); err != nil {
		return domain.Agreement{}, err
	}

	terms := in.Terms
	if terms.DataRetention == "" {
		terms.DataRetention = fmt.Sprintf("%d years", DefaultRetentionYears)
	}
	author := in.Author
	if author == "" {
		author = "system"
	}

	ag := domain.Agreement{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Type:               in.Type,
		Counterparty:       in.Counterparty,
		EffectiveDate:      in.EffectiveDate,
		ExpirationDate:     in.ExpirationDate,
		Status:             domain.StatusActive,
		Signature:          domain.SignatureUnsigned,
		BreachNotification: terms.BreachNotificationHours,
		Terms:              terms,
		Versions: []domain.Version{{
			Number:  1,
			Date:    s.clock.Now(),
			Author:  author,
			Changes: "Initial agreement created",
		}},
		CurrentVersion: 1,
		EmailAlerts:    in.EmailAlerts,
		Extracted:      in.Extracted,
	}
	if err := s.repo.Create(ctx, ag); err != nil {
		return domain.Agreement{}, fmt.Errorf("create agreement: %w", err)
	}
	s.log.Info("agreement created", "id", ag.ID, "name", ag.Name, "type", ag.Type)
	return ag, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Agreement, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Agreement, error) {
	return s.repo.List(ctx)
}

// Update applies the changes, appends a new version entry, and bumps the
// current version pointer. The existing version history is never rewritten.
func (s *Service) Update(ctx context.Context, id string, in ports.AgreementUpdate) (domain.Agreement, error) {
	if err := validate(in.AgreementInput); err != nil {
		return domain.Agreement{}, err
	}

	ag, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Agreement{}, err
	}

	if years := RetentionYears(in.Terms.DataRetention); years < DefaultRetentionYears {
		s.log.Warn("data retention below HIPAA minimum", "id", id, "retention", in.Terms.DataRetention)
	}

	changes := in.Changes
	if changes == "" {
		changes = "Agreement updated"
	}
	author := in.Author
	if author == "" {
		author = "system"
	}

	ag.Name = in.Name
	ag.Type = in.Type
	ag.Counterparty = in.Counterparty
	ag.EffectiveDate = in.EffectiveDate
	ag.ExpirationDate = in.ExpirationDate
	ag.Status = in.Status
	ag.Signature = in.Signature
	ag.Terms = in.Terms
	ag.BreachNotification = in.Terms.BreachNotificationHours
	ag.EmailAlerts = in.EmailAlerts
	ag.CurrentVersion++
	ag.Versions = append(ag.Versions, domain.Version{
		Number:  ag.CurrentVersion,
		Date:    s.clock.Now(),
		Author:  author,
		Changes: changes,
	})

	if err := s.repo.Update(ctx, ag); err != nil {
		return domain.Agreement{}, fmt.Errorf("update agreement: %w", err)
	}
	s.log.Info("agreement updated", "id", ag.ID, "version", ag.CurrentVersion)
	return ag, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.log.Info("agreement deleted", "id", id)
	return nil
}

func validate(in ports.AgreementInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	switch in.Type {
	case domain.TypeCoveredEntity, domain.TypeBusinessAssociate, domain.TypeSubcontractor:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, in.Type)
	}
	if in.EffectiveDate.IsZero() || in.ExpirationDate.IsZero() {
		return fmt.Errorf("%w: effective and expiration dates are required", ErrInvalid)
	}
	if !in.ExpirationDate.After(in.EffectiveDate) {
		return fmt.Errorf("%w: expiration date must be after effective date", ErrInvalid)
	}
	if in.Terms.BreachNotificationHours <= 0 {
		return fmt.Errorf("%w: breach notification hours must be positive", ErrInvalid)
	}
	if in.Terms.TerminationNotice <= 0 {
		return fmt.Errorf("%w: termination notice days must be positive", ErrInvalid)
	}
	switch in.Terms.SubcontractorApproval {
	case domain.ApprovalRequired, domain.ApprovalNotification, domain.ApprovalNotApplicable:
	default:
		return fmt.Errorf("%w: unknown subcontractor approval %q", ErrInvalid, in.Terms.SubcontractorApproval)
	}
	return nil
}

// RetentionYears extracts the leading year count from a free-text retention
// term such as "7 years". The field is display text, so the parse is
// best-effort: anything unrecognizable falls back to DefaultRetentionYears
// rather than erroring.
func RetentionYears(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return DefaultRetentionYears
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return DefaultRetentionYears
	}
	return n
}
