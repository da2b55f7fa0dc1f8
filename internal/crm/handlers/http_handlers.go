// Package handlers exposes the CRM REST API and the HTTP server that
// carries it, translating between wire requests and the service layer.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/crm/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CRMController defines the business logic interface the HTTP handlers invoke.
type CRMController interface {
	CreateCompany(input *models.CompanyInput) (*models.Company, error)
	GetCompany(id string) (*models.Company, error)
	GetCompanies() []models.Company
	UpdateCompany(id string, update *models.CompanyUpdate) (*models.Company, error)
	DeleteCompany(id string) error

	CreateContact(input *models.ContactInput) (*models.Contact, error)
	GetContact(id string) (*models.Contact, error)
	GetContacts() []models.ContactWithCompany
	GetContactsByCompany(companyID string) []models.Contact
	UpdateContact(id string, update *models.ContactUpdate) (*models.Contact, error)
	DeleteContact(id string) error

	CreateDeal(input *models.DealInput) (*models.Deal, error)
	GetDeal(id string) (*models.DealWithRelations, error)
	GetDeals() []models.DealWithRelations
	GetDealsByStage(stage models.DealStage) ([]models.DealWithRelations, error)
	UpdateDeal(id string, update *models.DealUpdate) (*models.Deal, error)
	DeleteDeal(id string) error

	CreateActivity(input *models.ActivityInput) (*models.Activity, error)
	GetActivity(id string) (*models.Activity, error)
	GetActivities() []models.ActivityWithRelations
	GetActivitiesByDeal(dealID string) []models.ActivityWithRelations
	GetActivitiesByContact(contactID string) []models.ActivityWithRelations
	UpdateActivity(id string, update *models.ActivityUpdate) (*models.Activity, error)
	DeleteActivity(id string) error

	Metrics() models.Metrics
	DealCountsByStage() map[models.DealStage]int
}

// Handler maps REST requests onto a CRMController.
type Handler struct {
	service CRMController
	logger  *zap.Logger
	started time.Time
}

// NewHandler constructs a Handler with the given service and logger.
func NewHandler(service CRMController, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("http_handler"),
		started: time.Now(),
	}
}

// RegisterRoutes wires every endpoint to the mux, instrumenting each
// route for the HTTP metrics.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	instrumented := func(route string, fn http.HandlerFunc) {
		mux.Handle(route, observability.InstrumentHandler(route, fn))
	}

	instrumented("/health", h.health)
	mux.Handle("/metrics", h.scrapeMetrics())

	instrumented("/api/companies", h.companies)
	instrumented("/api/companies/", h.companyByID)
	instrumented("/api/contacts", h.contacts)
	instrumented("/api/contacts/", h.contactByID)
	instrumented("/api/deals", h.deals)
	instrumented("/api/deals/", h.dealByID)
	instrumented("/api/activities", h.activities)
	instrumented("/api/activities/", h.activityByID)
	instrumented("/api/metrics", h.businessMetrics)

	instrumented("/api/export/deals", h.exportDeals)
	instrumented("/api/export/contacts", h.exportContacts)
	instrumented("/api/export/companies", h.exportCompanies)
}

// health reports liveness plus process uptime for container probes.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.started).Seconds(),
	})
}

// scrapeMetrics refreshes the business gauges from the store and then
// serves the prometheus registry.
func (h *Handler) scrapeMetrics() http.Handler {
	prom := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observability.RecordBusinessMetrics(h.service.Metrics(), h.service.DealCountsByStage())
		prom.ServeHTTP(w, r)
	})
}

func (h *Handler) businessMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}
	writeJSON(w, http.StatusOK, h.service.Metrics())
}

func (h *Handler) companies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.service.GetCompanies())
	case http.MethodPost:
		var input models.CompanyInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "unable to parse body")
			return
		}
		company, err := h.service.CreateCompany(&input)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, company)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) companyByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/companies/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing company id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		company, err := h.service.GetCompany(id)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, company)
	case http.MethodPut:
		var update models.CompanyUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, "unable to parse body")
			return
		}
		company, err := h.service.UpdateCompany(id, &update)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, company)
	case http.MethodDelete:
		if err := h.service.DeleteCompany(id); err != nil {
			h.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) contacts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if companyID := r.URL.Query().Get("companyId"); companyID != "" {
			writeJSON(w, http.StatusOK, h.service.GetContactsByCompany(companyID))
			return
		}
		writeJSON(w, http.StatusOK, h.service.GetContacts())
	case http.MethodPost:
		var input models.ContactInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "unable to parse body")
			return
		}
		contact, err := h.service.CreateContact(&input)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, contact)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) contactByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/contacts/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing contact id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		contact, err := h.service.GetContact(id)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, contact)
	case http.MethodPut:
		var update models.ContactUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, "unable to parse body")
			return
		}
		contact, err := h.service.UpdateContact(id, &update)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, contact)
	case http.MethodDelete:
		if err := h.service.DeleteContact(id); err != nil {
			h.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) deals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if stage := r.URL.Query().Get("stage"); stage != "" {
			deals, err := h.service.GetDealsByStage(models.DealStage(stage))
			if err != nil {
				h.writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, deals)
			return
		}
		writeJSON(w, http.StatusOK, h.service.GetDeals())
	case http.MethodPost:
		var input models.DealInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "unable to parse body")
			return
		}
		deal, err := h.service.CreateDeal(&input)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, deal)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) dealByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/deals/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing deal id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		deal, err := h.service.GetDeal(id)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deal)
	case http.MethodPut:
		var req dealUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "unable to parse body")
			return
		}
		update, err := req.toUpdate()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		deal, err := h.service.UpdateDeal(id, update)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deal)
	case http.MethodDelete:
		if err := h.service.DeleteDeal(id); err != nil {
			h.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if dealID := r.URL.Query().Get("dealId"); dealID != "" {
			writeJSON(w, http.StatusOK, h.service.GetActivitiesByDeal(dealID))
			return
		}
		if contactID := r.URL.Query().Get("contactId"); contactID != "" {
			writeJSON(w, http.StatusOK, h.service.GetActivitiesByContact(contactID))
			return
		}
		writeJSON(w, http.StatusOK, h.service.GetActivities())
	case http.MethodPost:
		var input models.ActivityInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "unable to parse body")
			return
		}
		activity, err := h.service.CreateActivity(&input)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, activity)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/activities/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing activity id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		activity, err := h.service.GetActivity(id)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, activity)
	case http.MethodPut:
		var req activityUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "unable to parse body")
			return
		}
		update, err := req.toUpdate()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		activity, err := h.service.UpdateActivity(id, update)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, activity)
	case http.MethodDelete:
		if err := h.service.DeleteActivity(id); err != nil {
			h.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

// writeServiceError maps domain errors to HTTP responses. NotFound is a
// normal outcome, not a fault; anything unrecognized is a 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, e.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(r *http.Request, prefix string) string {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
