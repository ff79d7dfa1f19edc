// Package compliance implements the rule-based compliance engine: cross-entity
// rule evaluation over a snapshot of agreements, plus the per-agreement and
// organization-wide scoring model. Everything here is pure; callers inject
// "now" and hand in an already-filtered snapshot.
package compliance

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"baatrack/internal/domain"
)

// Rule categories as they appear in findings.
const (
	CategoryCascade       = "Breach Notification Cascade"
	CategoryExpiration    = "Agreement Expiration"
	CategoryAuditRights   = "Audit Rights"
	CategorySubcontractor = "Subcontractor Management"
)

// Expiration thresholds in days.
const (
	expirationHorizon  = 90
	expirationCritical = 30
)

// Analyzer evaluates compliance rules over agreement snapshots. It holds no
// state beyond a logger and is safe for concurrent use.
type Analyzer struct {
	log *slog.Logger
}

// New returns an Analyzer. A nil logger disables the per-agreement
// diagnostics emitted when a record is skipped by date-dependent rules.
func New(log *slog.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Analyze runs all rule checks against the snapshot and returns findings
// ordered critical-first. Within a severity, issues keep the order the rules
// discovered them in. The input is never mutated; calling twice with the same
// snapshot and now yields an identical list.
func (a *Analyzer) Analyze(agreements []domain.Agreement, now time.Time) []domain.ComplianceIssue {
	issues := a.checkCascade(agreements)
	issues = append(issues, a.checkExpiration(agreements, now)...)
	issues = append(issues, a.checkAuditRights(agreements)...)
	issues = append(issues, a.checkSubcontractorOversight(agreements)...)

	sort.SliceStable(issues, func(i, j int) bool {
		return severityRank(issues[i].Severity) < severityRank(issues[j].Severity)
	})
	return issues
}

func severityRank(s domain.IssueSeverity) int {
	if s == domain.SeverityCritical {
		return 0
	}
	return 1
}

// checkCascade flags every (subcontractor, business associate) pair where the
// subcontractor's breach-notification window is laxer than the business
// associate's. The full cross product is checked deliberately: liability
// flows downstream, so any subcontractor slower than any business associate
// in the portfolio is a gap the covered entity cannot close contractually.
func (a *Analyzer) checkCascade(agreements []domain.Agreement) []domain.ComplianceIssue {
	var subs, bas []domain.Agreement
	for _, ag := range agreements {
		switch ag.Type {
		case domain.TypeSubcontractor:
			subs = append(subs, ag)
		case domain.TypeBusinessAssociate:
			bas = append(bas, ag)
		}
	}

	var issues []domain.ComplianceIssue
	for _, sub := range subs {
		for _, ba := range bas {
			if sub.BreachNotification <= ba.BreachNotification {
				continue
			}
			issues = append(issues, domain.ComplianceIssue{
				Severity: domain.SeverityCritical,
				Category: CategoryCascade,
				Description: fmt.Sprintf("%s allows %d hours for breach notification, but %s requires notification within %d hours",
					sub.Name, sub.BreachNotification, ba.Name, ba.BreachNotification),
				Recommendation: fmt.Sprintf("Amend %s to require breach notification within %d hours or less",
					sub.Name, ba.BreachNotification),
				AffectedAgreements: []string{sub.Name, ba.Name},
			})
		}
	}
	return issues
}

// checkExpiration flags agreements expiring within the 90-day horizon.
// Already-expired agreements and unparseable dates are skipped.
func (a *Analyzer) checkExpiration(agreements []domain.Agreement, now time.Time) []domain.ComplianceIssue {
	var issues []domain.ComplianceIssue
	for _, ag := range agreements {
		if !hasValidExpiration(ag.ExpirationDate) {
			if a.log != nil {
				a.log.Warn("skipping agreement with unusable expiration date", "agreement", ag.Name)
			}
			continue
		}
		days := DaysUntil(ag.ExpirationDate, now)
		if days <= 0 || days > expirationHorizon {
			continue
		}
		sev := domain.SeverityWarning
		if days <= expirationCritical {
			sev = domain.SeverityCritical
		}
		issues = append(issues, domain.ComplianceIssue{
			Severity: sev,
			Category: CategoryExpiration,
			Description: fmt.Sprintf("%s expires in %d days (on %s)",
				ag.Name, days, ag.ExpirationDate.Format("2006-01-02")),
			Recommendation:     "Begin the renewal process at least 60 days before expiration",
			AffectedAgreements: []string{ag.Name},
		})
	}
	return issues
}

// checkAuditRights flags business-associate and subcontractor agreements that
// fail to grant audit access. Covered-entity agreements are exempt: the
// covered entity is the party granted audit rights, not the one granting them.
func (a *Analyzer) checkAuditRights(agreements []domain.Agreement) []domain.ComplianceIssue {
	var issues []domain.ComplianceIssue
	for _, ag := range agreements {
		if !ag.Type.Sensitive() || ag.Terms.AuditRights {
			continue
		}
		issues = append(issues, domain.ComplianceIssue{
			Severity: domain.SeverityWarning,
			Category: CategoryAuditRights,
			Description: fmt.Sprintf("%s with %s does not grant audit rights",
				ag.Name, ag.Counterparty),
			Recommendation:     "Add an audit-rights clause granting access to records of PHI use and disclosure",
			AffectedAgreements: []string{ag.Name},
		})
	}
	return issues
}

// checkSubcontractorOversight flags business-associate agreements with no
// subcontractor-approval terms while the organization holds any subcontractor
// agreement at all. The existence check is organization-wide rather than
// scoped to the specific business associate's own subcontractors.
func (a *Analyzer) checkSubcontractorOversight(agreements []domain.Agreement) []domain.ComplianceIssue {
	hasSubs := false
	for _, ag := range agreements {
		if ag.Type == domain.TypeSubcontractor {
			hasSubs = true
			break
		}
	}
	if !hasSubs {
		return nil
	}

	var issues []domain.ComplianceIssue
	for _, ag := range agreements {
		if ag.Type != domain.TypeBusinessAssociate || ag.Terms.SubcontractorApproval != domain.ApprovalNotApplicable {
			continue
		}
		issues = append(issues, domain.ComplianceIssue{
			Severity: domain.SeverityWarning,
			Category: CategorySubcontractor,
			Description: fmt.Sprintf("%s has no subcontractor approval terms, but the organization has active subcontractor agreements",
				ag.Name),
			Recommendation:     "Update the agreement to require approval or notification before subcontractors handle PHI",
			AffectedAgreements: []string{ag.Name},
		})
	}
	return issues
}
