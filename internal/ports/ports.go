package ports

import (
	"context"
	"time"

	"baatrack/internal/domain"
)

// ErrNotFound is returned by repositories and services when the requested
// agreement does not exist or was soft-deleted.
var ErrNotFound = errString("not found")

type errString string

func (e errString) Error() string { return string(e) }

// AgreementInput carries the caller-supplied fields for creating an agreement.
type AgreementInput struct {
	Name           string
	Type           domain.AgreementType
	Counterparty   string
	EffectiveDate  time.Time
	ExpirationDate time.Time
	Terms          domain.ComplianceTerms
	EmailAlerts    bool
	Author         string
	Extracted      *domain.ExtractedData
}

// AgreementUpdate carries the fields for a versioned update. The version
// history entry is built from Author and Changes.
type AgreementUpdate struct {
	AgreementInput
	Status    domain.AgreementStatus
	Signature domain.SignatureStatus
	Changes   string
}

// Agreements manages the agreement portfolio.
type Agreements interface {
	Create(ctx context.Context, in AgreementInput) (domain.Agreement, error)
	Get(ctx context.Context, id string) (domain.Agreement, error)
	List(ctx context.Context) ([]domain.Agreement, error)
	Update(ctx context.Context, id string, in AgreementUpdate) (domain.Agreement, error)
	Delete(ctx context.Context, id string) error
}

// AgreementScore pairs an agreement with its compliance score.
type AgreementScore struct {
	ID    string
	Name  string
	Score int
}

// ComplianceSummary is the aggregate scoring view for the organization.
type ComplianceSummary struct {
	OrganizationScore int
	Agreements        []AgreementScore
}

// ComplianceReporter computes findings and scores from the current agreement
// set. Results are derived values, recomputed on every call; callers must not
// persist them as authoritative state.
type ComplianceReporter interface {
	Issues(ctx context.Context) ([]domain.ComplianceIssue, error)
	Summary(ctx context.Context) (ComplianceSummary, error)
}

// ExtractionResult is the structured agreement data pulled from document text.
type ExtractionResult struct {
	Name           string
	Type           domain.AgreementType
	Counterparty   string
	EffectiveDate  time.Time
	ExpirationDate time.Time
	Terms          domain.ComplianceTerms
	Confidence     int // 0-100
	Method         string
}

// Extractor pulls structured agreement fields from raw document text.
type Extractor interface {
	Extract(ctx context.Context, text string) (ExtractionResult, error)
}
