package domain

import "time"

// Core domain models used internally. HTTP request/response types live in the
// http adapter; keep these decoupled where helpful.

// AgreementType drives which cross-entity compliance rules apply.
type AgreementType string

const (
	TypeCoveredEntity     AgreementType = "covered-entity"
	TypeBusinessAssociate AgreementType = "business-associate"
	TypeSubcontractor     AgreementType = "subcontractor"
)

// Sensitive reports whether agreements of this type handle PHI on behalf of
// another party and are therefore expected to grant audit rights.
func (t AgreementType) Sensitive() bool {
	return t == TypeBusinessAssociate || t == TypeSubcontractor
}

// AgreementStatus is the lifecycle state of an agreement.
type AgreementStatus string

const (
	StatusActive     AgreementStatus = "active"
	StatusDraft      AgreementStatus = "draft"
	StatusExpired    AgreementStatus = "expired"
	StatusTerminated AgreementStatus = "terminated"
)

// SignatureStatus is the e-signature state. No transition logic lives here;
// it is a plain enum field set by the signing collaborator.
type SignatureStatus string

const (
	SignatureUnsigned      SignatureStatus = "unsigned"
	SignaturePending       SignatureStatus = "pending"
	SignatureFullyExecuted SignatureStatus = "fully-executed"
)

// SubcontractorApproval is the subcontractor-oversight term of an agreement.
type SubcontractorApproval string

const (
	ApprovalRequired      SubcontractorApproval = "required"
	ApprovalNotification  SubcontractorApproval = "notification"
	ApprovalNotApplicable SubcontractorApproval = "not-applicable"
)

// ComplianceTerms is the embedded one-to-one value object holding the
// negotiated compliance clauses of an agreement.
type ComplianceTerms struct {
	BreachNotificationHours int
	AuditRights             bool
	SubcontractorApproval   SubcontractorApproval
	// DataRetention is free text (e.g. "7 years"); opaque to the analyzer.
	DataRetention     string
	TerminationNotice int // days
}

// Version is one entry of an agreement's append-only version history.
type Version struct {
	Number  int
	Date    time.Time
	Author  string
	Changes string
}

// ExtractedData records provenance when terms came from document extraction.
// Informational only; compliance rules never read it.
type ExtractedData struct {
	Confidence int // 0-100
	Method     string
}

// Agreement is the unit of compliance analysis.
type Agreement struct {
	ID           string
	Name         string
	Type         AgreementType
	Counterparty string
	// Calendar dates, no time-of-day semantics.
	EffectiveDate  time.Time
	ExpirationDate time.Time
	Status         AgreementStatus
	Signature      SignatureStatus
	// BreachNotification mirrors Terms.BreachNotificationHours; it is the
	// flattened value used for cross-entity comparison.
	BreachNotification int
	Terms              ComplianceTerms
	Versions           []Version
	CurrentVersion     int
	EmailAlerts        bool
	Extracted          *ExtractedData
}

// IssueSeverity orders compliance findings: critical before warning.
type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityWarning  IssueSeverity = "warning"
)

// ComplianceIssue is a single analyzer finding. Issues are transient and
// recomputed from current state on every analysis; they have no identity or
// lifecycle of their own and are never persisted.
type ComplianceIssue struct {
	Severity           IssueSeverity
	Category           string
	Description        string
	Recommendation     string
	AffectedAgreements []string
}
