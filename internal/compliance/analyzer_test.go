package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baatrack/internal/domain"
)

// Fixed instant with a time-of-day component, so the tests exercise the
// whole-day truncation rather than relying on midnight inputs.
var now = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func days(n int) time.Time {
	return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func compliant(name string, typ domain.AgreementType) domain.Agreement {
	return domain.Agreement{
		ID:                 name,
		Name:               name,
		Type:               typ,
		Counterparty:       name + " Inc",
		EffectiveDate:      days(-365),
		ExpirationDate:     days(365),
		Status:             domain.StatusActive,
		Signature:          domain.SignatureFullyExecuted,
		BreachNotification: 24,
		Terms: domain.ComplianceTerms{
			BreachNotificationHours: 24,
			AuditRights:             true,
			SubcontractorApproval:   domain.ApprovalRequired,
			DataRetention:           "7 years",
			TerminationNotice:       30,
		},
		CurrentVersion: 1,
	}
}

func TestAnalyze_CleanPortfolio(t *testing.T) {
	in := []domain.Agreement{
		compliant("Acme Hosting BAA", domain.TypeBusinessAssociate),
		compliant("Regional Health CE", domain.TypeCoveredEntity),
	}
	issues := New(nil).Analyze(in, now)
	assert.Empty(t, issues)
}

func TestAnalyze_CascadeViolation(t *testing.T) {
	sub := compliant("Offsite Backup Sub", domain.TypeSubcontractor)
	sub.BreachNotification = 48
	ba := compliant("Acme Hosting BAA", domain.TypeBusinessAssociate)
	ba.BreachNotification = 24

	issues := New(nil).Analyze([]domain.Agreement{sub, ba}, now)
	require.Len(t, issues, 1)

	got := issues[0]
	assert.Equal(t, domain.SeverityCritical, got.Severity)
	assert.Equal(t, CategoryCascade, got.Category)
	assert.Equal(t, []string{"Offsite Backup Sub", "Acme Hosting BAA"}, got.AffectedAgreements)
	assert.Contains(t, got.Description, "48 hours")
	assert.Contains(t, got.Description, "24 hours")
	assert.Contains(t, got.Recommendation, "24 hours or less")
}

func TestAnalyze_CascadeChecksEveryPair(t *testing.T) {
	// One slow subcontractor against two faster business associates must
	// produce one finding per exceeded BA, not a deduplicated one.
	slow := compliant("Slow Sub", domain.TypeSubcontractor)
	slow.BreachNotification = 72
	fast := compliant("Fast Sub", domain.TypeSubcontractor)
	fast.BreachNotification = 12
	ba1 := compliant("BA One", domain.TypeBusinessAssociate)
	ba1.BreachNotification = 24
	ba2 := compliant("BA Two", domain.TypeBusinessAssociate)
	ba2.BreachNotification = 48

	issues := New(nil).Analyze([]domain.Agreement{slow, fast, ba1, ba2}, now)
	require.Len(t, issues, 2)
	assert.Equal(t, []string{"Slow Sub", "BA One"}, issues[0].AffectedAgreements)
	assert.Equal(t, []string{"Slow Sub", "BA Two"}, issues[1].AffectedAgreements)
}

func TestAnalyze_CascadeEqualWindowsPass(t *testing.T) {
	sub := compliant("Sub", domain.TypeSubcontractor)
	sub.BreachNotification = 24
	ba := compliant("BA", domain.TypeBusinessAssociate)
	ba.BreachNotification = 24

	issues := New(nil).Analyze([]domain.Agreement{sub, ba}, now)
	assert.Empty(t, issues)
}

func TestAnalyze_Expiration(t *testing.T) {
	tests := []struct {
		name     string
		expires  time.Time
		want     int // expected issue count
		severity domain.IssueSeverity
		daysText string
	}{
		{"expires in 25 days is critical", days(25), 1, domain.SeverityCritical, "25 days"},
		{"expires in 30 days is critical", days(30), 1, domain.SeverityCritical, "30 days"},
		{"expires in 31 days is warning", days(31), 1, domain.SeverityWarning, "31 days"},
		{"expires in 60 days is warning", days(60), 1, domain.SeverityWarning, "60 days"},
		{"expires in 90 days is warning", days(90), 1, domain.SeverityWarning, "90 days"},
		{"expires in 91 days not flagged", days(91), 0, "", ""},
		{"expires today not flagged", days(0), 0, "", ""},
		{"already expired not flagged", days(-5), 0, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ag := compliant("Imaging Vendor BAA", domain.TypeBusinessAssociate)
			ag.ExpirationDate = tt.expires

			issues := New(nil).Analyze([]domain.Agreement{ag}, now)
			require.Len(t, issues, tt.want)
			if tt.want == 0 {
				return
			}
			assert.Equal(t, tt.severity, issues[0].Severity)
			assert.Equal(t, CategoryExpiration, issues[0].Category)
			assert.Contains(t, issues[0].Description, tt.daysText)
			assert.Contains(t, issues[0].Description, tt.expires.Format("2006-01-02"))
		})
	}
}

func TestAnalyze_ExpirationIgnoresTimeOfDay(t *testing.T) {
	// 30 days out at 23:59 is still 30 whole days from a 10:30 "now".
	ag := compliant("Lab Services BAA", domain.TypeBusinessAssociate)
	ag.ExpirationDate = days(30).Add(23*time.Hour + 59*time.Minute)

	issues := New(nil).Analyze([]domain.Agreement{ag}, now)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityCritical, issues[0].Severity)
	assert.Contains(t, issues[0].Description, "30 days")
}

func TestAnalyze_AuditRights(t *testing.T) {
	tests := []struct {
		name string
		typ  domain.AgreementType
		want int
	}{
		{"business associate flagged", domain.TypeBusinessAssociate, 1},
		{"subcontractor flagged", domain.TypeSubcontractor, 1},
		{"covered entity exempt", domain.TypeCoveredEntity, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ag := compliant("Billing Vendor", tt.typ)
			ag.Terms.AuditRights = false

			issues := New(nil).Analyze([]domain.Agreement{ag}, now)
			require.Len(t, issues, tt.want)
			if tt.want == 0 {
				return
			}
			assert.Equal(t, domain.SeverityWarning, issues[0].Severity)
			assert.Equal(t, CategoryAuditRights, issues[0].Category)
			assert.Contains(t, issues[0].Description, "Billing Vendor Inc")
		})
	}
}

func TestAnalyze_SubcontractorOversight(t *testing.T) {
	ba := compliant("Acme Hosting BAA", domain.TypeBusinessAssociate)
	ba.Terms.SubcontractorApproval = domain.ApprovalNotApplicable
	sub := compliant("Offsite Backup Sub", domain.TypeSubcontractor)

	issues := New(nil).Analyze([]domain.Agreement{ba, sub}, now)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityWarning, issues[0].Severity)
	assert.Equal(t, CategorySubcontractor, issues[0].Category)
	assert.Equal(t, []string{"Acme Hosting BAA"}, issues[0].AffectedAgreements)
}

func TestAnalyze_SubcontractorOversightNeedsAnySub(t *testing.T) {
	ba := compliant("Acme Hosting BAA", domain.TypeBusinessAssociate)
	ba.Terms.SubcontractorApproval = domain.ApprovalNotApplicable

	issues := New(nil).Analyze([]domain.Agreement{ba}, now)
	assert.Empty(t, issues)
}

func TestAnalyze_CriticalSortsBeforeWarning(t *testing.T) {
	// Audit-rights warning (rule 3) comes from an earlier input record than
	// the expiration critical (rule 2), but must sort after it.
	noAudit := compliant("No Audit BAA", domain.TypeBusinessAssociate)
	noAudit.Terms.AuditRights = false
	expiring := compliant("Expiring BAA", domain.TypeBusinessAssociate)
	expiring.ExpirationDate = days(10)

	issues := New(nil).Analyze([]domain.Agreement{noAudit, expiring}, now)
	require.Len(t, issues, 2)
	assert.Equal(t, domain.SeverityCritical, issues[0].Severity)
	assert.Equal(t, CategoryExpiration, issues[0].Category)
	assert.Equal(t, domain.SeverityWarning, issues[1].Severity)
	assert.Equal(t, CategoryAuditRights, issues[1].Category)
}

func TestAnalyze_EqualSeverityKeepsRuleOrder(t *testing.T) {
	expiring := compliant("Expiring BAA", domain.TypeBusinessAssociate)
	expiring.ExpirationDate = days(60)
	noAudit := compliant("No Audit Sub", domain.TypeSubcontractor)
	noAudit.Terms.AuditRights = false

	issues := New(nil).Analyze([]domain.Agreement{noAudit, expiring}, now)
	require.Len(t, issues, 2)
	assert.Equal(t, CategoryExpiration, issues[0].Category)
	assert.Equal(t, CategoryAuditRights, issues[1].Category)
}

func TestAnalyze_Idempotent(t *testing.T) {
	sub := compliant("Sub", domain.TypeSubcontractor)
	sub.BreachNotification = 96
	sub.Terms.AuditRights = false
	ba := compliant("BA", domain.TypeBusinessAssociate)
	ba.ExpirationDate = days(45)

	in := []domain.Agreement{sub, ba}
	a := New(nil)
	first := a.Analyze(in, now)
	second := a.Analyze(in, now)
	assert.Equal(t, first, second)
}

func TestAnalyze_DoesNotMutateInput(t *testing.T) {
	sub := compliant("Sub", domain.TypeSubcontractor)
	sub.BreachNotification = 96
	ba := compliant("BA", domain.TypeBusinessAssociate)
	in := []domain.Agreement{sub, ba}
	want := []domain.Agreement{sub, ba}

	New(nil).Analyze(in, now)
	assert.Equal(t, want, in)
}

func TestAnalyze_BadDateDoesNotSuppressOtherFindings(t *testing.T) {
	broken := compliant("Broken Dates BAA", domain.TypeBusinessAssociate)
	broken.ExpirationDate = time.Time{}
	broken.Terms.AuditRights = false
	expiring := compliant("Expiring BAA", domain.TypeBusinessAssociate)
	expiring.ExpirationDate = days(20)

	issues := New(nil).Analyze([]domain.Agreement{broken, expiring}, now)
	require.Len(t, issues, 2)
	assert.Equal(t, CategoryExpiration, issues[0].Category)
	assert.Equal(t, []string{"Expiring BAA"}, issues[0].AffectedAgreements)
	assert.Equal(t, CategoryAuditRights, issues[1].Category)
	assert.Equal(t, []string{"Broken Dates BAA"}, issues[1].AffectedAgreements)
}

func TestAnalyze_AffectedNamesComeFromInput(t *testing.T) {
	sub := compliant("Sub", domain.TypeSubcontractor)
	sub.BreachNotification = 96
	sub.Terms.AuditRights = false
	ba := compliant("BA", domain.TypeBusinessAssociate)
	ba.Terms.SubcontractorApproval = domain.ApprovalNotApplicable
	ba.ExpirationDate = days(15)
	in := []domain.Agreement{sub, ba}

	names := map[string]bool{"Sub": true, "BA": true}
	for _, issue := range New(nil).Analyze(in, now) {
		require.NotEmpty(t, issue.AffectedAgreements)
		for _, n := range issue.AffectedAgreements {
			assert.True(t, names[n], "unknown agreement name %q", n)
		}
	}
}
