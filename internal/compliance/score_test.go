package compliance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"baatrack/internal/domain"
)

func TestScoreAgreement(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Agreement)
		want   int
	}{
		{"fully compliant", func(*domain.Agreement) {}, 100},
		{"pending signature", func(a *domain.Agreement) {
			a.Signature = domain.SignaturePending
		}, 75},
		{"unsigned", func(a *domain.Agreement) {
			a.Signature = domain.SignatureUnsigned
		}, 75},
		{"expired status", func(a *domain.Agreement) {
			a.Status = domain.StatusExpired
		}, 70},
		{"expiring in 20 days", func(a *domain.Agreement) {
			a.ExpirationDate = days(20)
		}, 85},
		{"expiring in 31 days keeps full score", func(a *domain.Agreement) {
			a.ExpirationDate = days(31)
		}, 100},
		{"missing audit rights on sensitive type", func(a *domain.Agreement) {
			a.Terms.AuditRights = false
		}, 90},
		{"slow breach window", func(a *domain.Agreement) {
			a.BreachNotification = 96
		}, 90},
		{"72 hours exactly keeps full score", func(a *domain.Agreement) {
			a.BreachNotification = 72
		}, 100},
		{"deductions stack", func(a *domain.Agreement) {
			a.Signature = domain.SignatureUnsigned
			a.Status = domain.StatusExpired
			a.Terms.AuditRights = false
		}, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ag := compliant("Scored BAA", domain.TypeBusinessAssociate)
			tt.mutate(&ag)
			assert.Equal(t, tt.want, ScoreAgreement(ag, now))
		})
	}
}

func TestScoreAgreement_EveryDeductionStacked(t *testing.T) {
	ag := compliant("Worst Case Sub", domain.TypeSubcontractor)
	ag.Signature = domain.SignatureUnsigned // -25
	ag.Status = domain.StatusExpired        // -30
	ag.ExpirationDate = days(10)            // -15
	ag.Terms.AuditRights = false            // -10
	ag.BreachNotification = 120             // -10
	got := ScoreAgreement(ag, now)
	assert.Equal(t, 10, got)
	assert.GreaterOrEqual(t, got, 0)
	assert.LessOrEqual(t, got, 100)
}

func TestScoreAgreement_CoveredEntityAuditExempt(t *testing.T) {
	ag := compliant("Regional Health CE", domain.TypeCoveredEntity)
	ag.Terms.AuditRights = false
	assert.Equal(t, 100, ScoreAgreement(ag, now))
}

func TestScoreOrganization(t *testing.T) {
	full := compliant("Full", domain.TypeBusinessAssociate)
	pending := compliant("Pending", domain.TypeBusinessAssociate)
	pending.Signature = domain.SignaturePending // 75

	// (100 + 75) / 2 = 87.5, rounds to 88.
	got := ScoreOrganization([]domain.Agreement{full, pending}, now)
	assert.Equal(t, 88, got)
}

func TestScoreOrganization_MatchesMeanOfAgreementScores(t *testing.T) {
	ags := []domain.Agreement{
		compliant("A", domain.TypeBusinessAssociate),
		compliant("B", domain.TypeSubcontractor),
		compliant("C", domain.TypeCoveredEntity),
	}
	ags[0].Signature = domain.SignatureUnsigned
	ags[1].Terms.AuditRights = false
	ags[1].BreachNotification = 96

	sum := 0
	for _, ag := range ags {
		sum += ScoreAgreement(ag, now)
	}
	want := int(math.Round(float64(sum) / float64(len(ags))))
	assert.Equal(t, want, ScoreOrganization(ags, now))
}

func TestScoreOrganization_EmptyPortfolio(t *testing.T) {
	assert.Equal(t, 100, ScoreOrganization(nil, now))
}
