package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baatrack/internal/compliance"
	"baatrack/internal/domain"
)

type stubRepo struct {
	agreements []domain.Agreement
	err        error
}

func (r *stubRepo) Create(context.Context, domain.Agreement) error { return nil }
func (r *stubRepo) Get(context.Context, string) (domain.Agreement, error) {
	return domain.Agreement{}, nil
}
func (r *stubRepo) List(context.Context) ([]domain.Agreement, error) {
	return r.agreements, r.err
}
func (r *stubRepo) Update(context.Context, domain.Agreement) error { return nil }
func (r *stubRepo) SoftDelete(context.Context, string) error       { return nil }
func (r *stubRepo) ListExpiring(context.Context, time.Time) ([]domain.Agreement, error) {
	return nil, nil
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func agreement(name string, typ domain.AgreementType, breach int) domain.Agreement {
	return domain.Agreement{
		ID:                 name,
		Name:               name,
		Type:               typ,
		EffectiveDate:      testNow.AddDate(-1, 0, 0),
		ExpirationDate:     testNow.AddDate(1, 0, 0),
		Status:             domain.StatusActive,
		Signature:          domain.SignatureFullyExecuted,
		BreachNotification: breach,
		Terms: domain.ComplianceTerms{
			BreachNotificationHours: breach,
			AuditRights:             true,
			SubcontractorApproval:   domain.ApprovalRequired,
		},
	}
}

func newService(repo *stubRepo) *Service {
	return New(repo, compliance.New(nil), clockwork.NewFakeClockAt(testNow))
}

func TestIssues(t *testing.T) {
	repo := &stubRepo{agreements: []domain.Agreement{
		agreement("Slow Sub", domain.TypeSubcontractor, 72),
		agreement("Fast BA", domain.TypeBusinessAssociate, 24),
	}}
	issues, err := newService(repo).Issues(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.CategoryCascade, issues[0].Category)
	assert.Equal(t, domain.SeverityCritical, issues[0].Severity)
}

func TestIssues_RepoError(t *testing.T) {
	repo := &stubRepo{err: errors.New("connection reset")}
	_, err := newService(repo).Issues(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load agreements")
}

func TestSummary(t *testing.T) {
	unsigned := agreement("Pending BA", domain.TypeBusinessAssociate, 24)
	unsigned.Signature = domain.SignaturePending
	repo := &stubRepo{agreements: []domain.Agreement{
		agreement("Clean BA", domain.TypeBusinessAssociate, 24),
		unsigned,
	}}

	summary, err := newService(repo).Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Agreements, 2)
	assert.Equal(t, "Clean BA", summary.Agreements[0].Name)
	assert.Equal(t, 100, summary.Agreements[0].Score)
	assert.Equal(t, 75, summary.Agreements[1].Score)
	assert.Equal(t, 88, summary.OrganizationScore)
}

func TestSummary_EmptyPortfolio(t *testing.T) {
	summary, err := newService(&stubRepo{}).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, summary.OrganizationScore)
	assert.Empty(t, summary.Agreements)
}
