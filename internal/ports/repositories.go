package ports

import (
	"context"
	"time"

	"baatrack/internal/domain"
)

// AgreementRepository stores agreement records and their version history.
// Reads exclude soft-deleted rows; the compliance engine never sees them.
type AgreementRepository interface {
	Create(ctx context.Context, ag domain.Agreement) error
	Get(ctx context.Context, id string) (domain.Agreement, error)
	List(ctx context.Context) ([]domain.Agreement, error)
	// Update rewrites the agreement row, inserts the newest entry of
	// ag.Versions, and bumps current_version in one transaction.
	Update(ctx context.Context, ag domain.Agreement) error
	SoftDelete(ctx context.Context, id string) error
	// ListExpiring returns active agreements with email alerts enabled whose
	// expiration date falls on or before the horizon.
	ListExpiring(ctx context.Context, horizon time.Time) ([]domain.Agreement, error)
}
