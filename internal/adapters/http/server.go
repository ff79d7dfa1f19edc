package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"baatrack/internal/domain"
	"baatrack/internal/ports"
	agsvc "baatrack/internal/services/agreements"
)

const dateFormat = "2006-01-02"

type Server struct {
	agreements ports.Agreements
	reports    ports.ComplianceReporter
	extractor  ports.Extractor
	log        *slog.Logger
}

func New(agreements ports.Agreements, reports ports.ComplianceReporter, extractor ports.Extractor, log *slog.Logger) *Server {
	return &Server{agreements: agreements, reports: reports, extractor: extractor, log: log}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/agreements", func(r chi.Router) {
		r.Post("/", s.handleCreateAgreement)
		r.Get("/", s.handleListAgreements)
		r.Get("/{id}", s.handleGetAgreement)
		r.Put("/{id}", s.handleUpdateAgreement)
		r.Delete("/{id}", s.handleDeleteAgreement)
	})

	r.Route("/compliance", func(r chi.Router) {
		r.Get("/issues", s.handleComplianceIssues)
		r.Get("/summary", s.handleComplianceSummary)
	})

	r.Post("/extraction", s.handleExtraction)
	return r
}

// Wire types. Dates travel as YYYY-MM-DD strings; field names follow the
// public API's camelCase convention.

type termsPayload struct {
	BreachNotificationHours int    `json:"breachNotificationHours"`
	AuditRights             bool   `json:"auditRights"`
	SubcontractorApproval   string `json:"subcontractorApproval"`
	DataRetention           string `json:"dataRetention"`
	TerminationNotice       int    `json:"terminationNotice"`
}

type agreementRequest struct {
	Name           string       `json:"name"`
	Type           string       `json:"type"`
	Counterparty   string       `json:"counterparty"`
	EffectiveDate  string       `json:"effectiveDate"`
	ExpirationDate string       `json:"expirationDate"`
	Status         string       `json:"status,omitempty"`
	Signature      string       `json:"signatureStatus,omitempty"`
	Terms          termsPayload `json:"complianceTerms"`
	EmailAlerts    bool         `json:"emailAlerts"`
	Author         string       `json:"author,omitempty"`
	Changes        string       `json:"changes,omitempty"`
}

type versionPayload struct {
	Number  int    `json:"number"`
	Date    string `json:"date"`
	Author  string `json:"author"`
	Changes string `json:"changes"`
}

type extractedPayload struct {
	Confidence int    `json:"confidence"`
	Method     string `json:"method"`
}

type agreementResponse struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Type               string            `json:"type"`
	Counterparty       string            `json:"counterparty"`
	EffectiveDate      string            `json:"effectiveDate"`
	ExpirationDate     string            `json:"expirationDate"`
	Status             string            `json:"status"`
	SignatureStatus    string            `json:"signatureStatus"`
	BreachNotification int               `json:"breachNotification"`
	Terms              termsPayload      `json:"complianceTerms"`
	Versions           []versionPayload  `json:"versions"`
	CurrentVersion     int               `json:"currentVersion"`
	EmailAlerts        bool              `json:"emailAlerts"`
	Extracted          *extractedPayload `json:"extractedData,omitempty"`
}

type issuePayload struct {
	Type               string   `json:"type"`
	Category           string   `json:"category"`
	Description        string   `json:"description"`
	Recommendation     string   `json:"recommendation"`
	AffectedAgreements []string `json:"affectedAgreements"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateAgreement(w http.ResponseWriter, r *http.Request) {
	var req agreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ag, err := s.agreements.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(ag))
}

func (s *Server) handleListAgreements(w http.ResponseWriter, r *http.Request) {
	ags, err := s.agreements.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]agreementResponse, 0, len(ags))
	for _, ag := range ags {
		out = append(out, toResponse(ag))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAgreement(w http.ResponseWriter, r *http.Request) {
	ag, err := s.agreements.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(ag))
}

func (s *Server) handleUpdateAgreement(w http.ResponseWriter, r *http.Request) {
	var req agreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	upd := ports.AgreementUpdate{
		AgreementInput: in,
		Status:         domain.AgreementStatus(req.Status),
		Signature:      domain.SignatureStatus(req.Signature),
		Changes:        req.Changes,
	}
	if upd.Status == "" {
		upd.Status = domain.StatusActive
	}
	if upd.Signature == "" {
		upd.Signature = domain.SignatureUnsigned
	}
	ag, err := s.agreements.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(ag))
}

func (s *Server) handleDeleteAgreement(w http.ResponseWriter, r *http.Request) {
	if err := s.agreements.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleComplianceIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.reports.Issues(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]issuePayload, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issuePayload{
			Type:               string(issue.Severity),
			Category:           issue.Category,
			Description:        issue.Description,
			Recommendation:     issue.Recommendation,
			AffectedAgreements: issue.AffectedAgreements,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleComplianceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Summary(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	type scorePayload struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Score int    `json:"score"`
	}
	scores := make([]scorePayload, 0, len(summary.Agreements))
	for _, a := range summary.Agreements {
		scores = append(scores, scorePayload(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"organizationScore": summary.OrganizationScore,
		"agreements":        scores,
	})
}

func (s *Server) handleExtraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	res, err := s.extractor.Extract(r.Context(), req.Text)
	if err != nil {
		s.log.Error("extraction failed", "err", err)
		writeError(w, http.StatusBadGateway, "extraction failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":           res.Name,
		"type":           string(res.Type),
		"counterparty":   res.Counterparty,
		"effectiveDate":  formatDate(res.EffectiveDate),
		"expirationDate": formatDate(res.ExpirationDate),
		"complianceTerms": termsPayload{
			BreachNotificationHours: res.Terms.BreachNotificationHours,
			AuditRights:             res.Terms.AuditRights,
			SubcontractorApproval:   string(res.Terms.SubcontractorApproval),
			DataRetention:           res.Terms.DataRetention,
			TerminationNotice:       res.Terms.TerminationNotice,
		},
		"confidence": res.Confidence,
		"method":     res.Method,
	})
}

func (req agreementRequest) toInput() (ports.AgreementInput, error) {
	effective, err := time.Parse(dateFormat, req.EffectiveDate)
	if err != nil {
		return ports.AgreementInput{}, fmt.Errorf("effectiveDate must be YYYY-MM-DD")
	}
	expiration, err := time.Parse(dateFormat, req.ExpirationDate)
	if err != nil {
		return ports.AgreementInput{}, fmt.Errorf("expirationDate must be YYYY-MM-DD")
	}
	return ports.AgreementInput{
		Name:           req.Name,
		Type:           domain.AgreementType(req.Type),
		Counterparty:   req.Counterparty,
		EffectiveDate:  effective,
		ExpirationDate: expiration,
		Terms: domain.ComplianceTerms{
			BreachNotificationHours: req.Terms.BreachNotificationHours,
			AuditRights:             req.Terms.AuditRights,
			SubcontractorApproval:   domain.SubcontractorApproval(req.Terms.SubcontractorApproval),
			DataRetention:           req.Terms.DataRetention,
			TerminationNotice:       req.Terms.TerminationNotice,
		},
		EmailAlerts: req.EmailAlerts,
		Author:      req.Author,
	}, nil
}

func toResponse(ag domain.Agreement) agreementResponse {
	out := agreementResponse{
		ID:                 ag.ID,
		Name:               ag.Name,
		Type:               string(ag.Type),
		Counterparty:       ag.Counterparty,
		EffectiveDate:      formatDate(ag.EffectiveDate),
		ExpirationDate:     formatDate(ag.ExpirationDate),
		Status:             string(ag.Status),
		SignatureStatus:    string(ag.Signature),
		BreachNotification: ag.BreachNotification,
		Terms: termsPayload{
			BreachNotificationHours: ag.Terms.BreachNotificationHours,
			AuditRights:             ag.Terms.AuditRights,
			SubcontractorApproval:   string(ag.Terms.SubcontractorApproval),
			DataRetention:           ag.Terms.DataRetention,
			TerminationNotice:       ag.Terms.TerminationNotice,
		},
		Versions:       make([]versionPayload, 0, len(ag.Versions)),
		CurrentVersion: ag.CurrentVersion,
		EmailAlerts:    ag.EmailAlerts,
	}
	for _, v := range ag.Versions {
		out.Versions = append(out.Versions, versionPayload{
			Number:  v.Number,
			Date:    v.Date.Format(time.RFC3339),
			Author:  v.Author,
			Changes: v.Changes,
		})
	}
	if ag.Extracted != nil {
		out.Extracted = &extractedPayload{
			Confidence: ag.Extracted.Confidence,
			Method:     ag.Extracted.Method,
		}
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "agreement not found")
	case errors.Is(err, agsvc.ErrInvalid):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
