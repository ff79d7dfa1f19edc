package compliance

import (
	"math"
	"time"

	"baatrack/internal/domain"
)

// Score deductions. Each is independently triggerable; the result is floored
// at zero.
const (
	deductUnsigned       = 25
	deductExpired        = 30
	deductExpiringSoon   = 15
	deductNoAuditRights  = 10
	deductSlowBreach     = 10
	breachHoursThreshold = 72
)

// ScoreAgreement computes the 0-100 compliance score for a single agreement.
// Deductions: not fully executed, expired status, expiring within 30 days,
// sensitive type without audit rights, breach window above 72 hours.
func ScoreAgreement(ag domain.Agreement, now time.Time) int {
	score := 100
	if ag.Signature != domain.SignatureFullyExecuted {
		score -= deductUnsigned
	}
	if ag.Status == domain.StatusExpired {
		score -= deductExpired
	}
	if hasValidExpiration(ag.ExpirationDate) {
		if d := DaysUntil(ag.ExpirationDate, now); d > 0 && d <= expirationCritical {
			score -= deductExpiringSoon
		}
	}
	if ag.Type.Sensitive() && !ag.Terms.AuditRights {
		score -= deductNoAuditRights
	}
	if ag.BreachNotification > breachHoursThreshold {
		score -= deductSlowBreach
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ScoreOrganization returns the rounded mean of all per-agreement scores.
// An empty portfolio scores 100: nothing to be out of compliance with.
func ScoreOrganization(agreements []domain.Agreement, now time.Time) int {
	if len(agreements) == 0 {
		return 100
	}
	sum := 0
	for _, ag := range agreements {
		sum += ScoreAgreement(ag, now)
	}
	return int(math.Round(float64(sum) / float64(len(agreements))))
}
