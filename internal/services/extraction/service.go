// Package extraction pulls structured agreement fields out of uploaded
// document text with an LLM completion call. The compliance engine treats
// extracted terms exactly like manually entered ones; confidence is recorded
// as provenance only.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"baatrack/internal/domain"
	"baatrack/internal/ports"
)

const systemPrompt = `You extract fields from HIPAA Business Associate Agreements.
Given the text of an agreement, respond with ONLY a JSON object, no prose:
{
  "name": string,
  "type": "covered-entity" | "business-associate" | "subcontractor",
  "counterparty": string,
  "effective_date": "YYYY-MM-DD",
  "expiration_date": "YYYY-MM-DD",
  "breach_notification_hours": number,
  "audit_rights": boolean,
  "subcontractor_approval": "required" | "notification" | "not-applicable",
  "data_retention": string,
  "termination_notice_days": number,
  "confidence": number between 0 and 100
}
Use null for fields the document does not state.`

type extractionPayload struct {
	Name                    string `json:"name"`
	Type                    string `json:"type"`
	Counterparty            string `json:"counterparty"`
	EffectiveDate           string `json:"effective_date"`
	ExpirationDate          string `json:"expiration_date"`
	BreachNotificationHours int    `json:"breach_notification_hours"`
	AuditRights             bool   `json:"audit_rights"`
	SubcontractorApproval   string `json:"subcontractor_approval"`
	DataRetention           string `json:"data_retention"`
	TerminationNoticeDays   int    `json:"termination_notice_days"`
	Confidence              int    `json:"confidence"`
}

type Service struct {
	provider Provider
	log      *slog.Logger
}

func New(provider Provider, log *slog.Logger) *Service {
	return &Service{provider: provider, log: log}
}

func (s *Service) Extract(ctx context.Context, text string) (ports.ExtractionResult, error) {
	if strings.TrimSpace(text) == "" {
		return ports.ExtractionResult{}, fmt.Errorf("document text is empty")
	}

	content, err := s.provider.Complete(ctx, systemPrompt, text)
	if err != nil {
		return ports.ExtractionResult{}, fmt.Errorf("extraction call: %w", err)
	}

	raw := extractJSON(content)
	if raw == "" {
		return ports.ExtractionResult{}, fmt.Errorf("no JSON found in model response: %s", truncate(content, 200))
	}
	var p extractionPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ports.ExtractionResult{}, fmt.Errorf("parsing extraction payload: %w", err)
	}

	out := ports.ExtractionResult{
		Name:         p.Name,
		Type:         domain.AgreementType(p.Type),
		Counterparty: p.Counterparty,
		Terms: domain.ComplianceTerms{
			BreachNotificationHours: p.BreachNotificationHours,
			AuditRights:             p.AuditRights,
			SubcontractorApproval:   domain.SubcontractorApproval(p.SubcontractorApproval),
			DataRetention:           p.DataRetention,
			TerminationNotice:       p.TerminationNoticeDays,
		},
		Confidence: clampConfidence(p.Confidence),
		Method:     s.provider.Name(),
	}

	// Dates the model could not read stay zero; downstream validation and
	// the analyzer's date rules both tolerate that.
	out.EffectiveDate = parseDate(p.EffectiveDate)
	out.ExpirationDate = parseDate(p.ExpirationDate)

	s.log.Info("document extracted", "name", out.Name, "confidence", out.Confidence, "method", out.Method)
	return out, nil
}

// Disabled stands in when no extraction model is configured; every call
// fails with a clear error instead of reaching for a missing provider.
type Disabled struct{}

func (Disabled) Extract(context.Context, string) (ports.ExtractionResult, error) {
	return ports.ExtractionResult{}, fmt.Errorf("document extraction is not configured (set EXTRACTION_MODEL)")
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// extractJSON returns the first JSON object in the content, tolerating
// markdown code fences around it.
func extractJSON(content string) string {
	if i := strings.Index(content, "```"); i >= 0 {
		rest := content[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			content = rest[:j]
		}
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}
