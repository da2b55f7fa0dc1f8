package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gartstein/crm/internal/crm/controller"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/crm/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// nopProducer drops all events; handler tests don't assert on Kafka.
type nopProducer struct{}

func (nopProducer) Produce(events.EventType, string, interface{}) {}

func newTestMux(t *testing.T) (*http.ServeMux, *store.Store) {
	t.Helper()
	crmStore := store.New()
	svc := controller.NewService(crmStore, nopProducer{}, zaptest.NewLogger(t))
	handler := NewHandler(svc, zaptest.NewLogger(t))

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux, crmStore
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "healthy", body["status"])
}

func TestCompanyLifecycle(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/companies", models.CompanyInput{
		Name:     "TechCorp",
		Website:  "https://techcorp.com",
		Industry: "Technology",
		Size:     models.SizeMedium,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Company](t, rec)
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, mux, http.MethodGet, "/api/companies/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.Name, decode[models.Company](t, rec).Name)

	rec = doJSON(t, mux, http.MethodPut, "/api/companies/"+created.ID, map[string]string{
		"industry": "Software",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Company](t, rec)
	assert.Equal(t, "Software", updated.Industry)
	assert.Equal(t, "https://techcorp.com", updated.Website, "unsupplied fields untouched")

	rec = doJSON(t, mux, http.MethodDelete, "/api/companies/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/api/companies/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCompanyNotFound(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/api/companies/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCompanyValidation(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/companies", models.CompanyInput{
		Website: "https://nameless.example",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDealAndFetchJoined(t *testing.T) {
	mux, crmStore := newTestMux(t)
	company := crmStore.CreateCompany(&models.CompanyInput{Name: "TechCorp"})
	contact := crmStore.CreateContact(&models.ContactInput{
		FirstName: "Sarah", LastName: "Johnson", Email: "sarah@techcorp.com",
	})

	rec := doJSON(t, mux, http.MethodPost, "/api/deals", map[string]interface{}{
		"title":     "Enterprise License",
		"value":     "125000.00",
		"stage":     "qualified",
		"companyId": company.ID,
		"contactId": contact.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Deal](t, rec)
	assert.Equal(t, models.DefaultProbability, created.Probability)

	rec = doJSON(t, mux, http.MethodGet, "/api/deals/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	joined := decode[models.DealWithRelations](t, rec)
	assert.Equal(t, company.Name, joined.Company.Name)
	assert.Equal(t, contact.Email, joined.Contact.Email)
}

func TestDealStageFilter(t *testing.T) {
	mux, crmStore := newTestMux(t)
	crmStore.Seed()

	rec := doJSON(t, mux, http.MethodGet, "/api/deals?stage=qualified", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deals := decode[[]models.DealWithRelations](t, rec)
	require.Len(t, deals, 1)
	assert.Equal(t, models.StageQualified, deals[0].Stage)

	rec = doJSON(t, mux, http.MethodGet, "/api/deals?stage=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDanglingDealHiddenFromAPI(t *testing.T) {
	mux, crmStore := newTestMux(t)
	crmStore.Seed()

	rec := doJSON(t, mux, http.MethodDelete, "/api/companies/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/deals/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "joined read drops the dangling deal")

	rec = doJSON(t, mux, http.MethodGet, "/api/deals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.DealWithRelations](t, rec), 4)
}

func TestUpdateDealClearsDateViaNull(t *testing.T) {
	mux, crmStore := newTestMux(t)
	crmStore.Seed()

	// Seeded deal 3 is closed_won with an actual close date.
	rec := doJSON(t, mux, http.MethodPut, "/api/deals/3", json.RawMessage(`{"actualCloseDate":null}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[models.Deal](t, rec).ActualCloseDate)
}

func TestCreateDealRejectsBadProbability(t *testing.T) {
	mux, crmStore := newTestMux(t)
	crmStore.Seed()

	rec := doJSON(t, mux, http.MethodPost, "/api/deals", map[string]interface{}{
		"title":       "Impossible",
		"value":       "1.00",
		"stage":       "lead",
		"probability": 150,
		"companyId":   "1",
		"contactId":   "1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactsListIncludesCompany(t *testing.T) {
	mux, crmStore := newTestMux(t)
	crmStore.Seed()
	crmStore.CreateContact(&models.ContactInput{
		FirstName: "Max", LastName: "Free", Email: "max@example.com",
	})

	rec := doJSON(t, mux, http.MethodGet, "/api/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	contacts := decode[[]models.ContactWithCompany](t, rec)
	require.Len(t, contacts, 6)

	require.NotNil(t, contacts[0].Company)
	assert.Equal(t, "TechCorp Inc.", contacts[0].Company.Name)
	assert.Nil(t, contacts[5].Company, "companyless contact serializes without a company")
}

func TestActivityFiltersByQuery(t *testing.T) {
	mux, crmStore := newTestMux(t)
	crmStore.Seed()

	rec := doJSON(t, mux, http.MethodGet, "/api/activities?dealId=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	byDeal := decode[[]models.ActivityWithRelations](t, rec)
	require.Len(t, byDeal, 1)
	assert.Equal(t, "Discovery Call", byDeal[0].Title)

	rec = doJSON(t, mux, http.MethodGet, "/api/activities?contactId=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]models.ActivityWithRelations](t, rec), 1)
}

func TestBusinessMetricsEndpoint(t *testing.T) {
	mux, crmStore := newTestMux(t)
	crmStore.Seed()

	rec := doJSON(t, mux, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)

	// Decimal money fields serialize as strings; ratios as numbers.
	assert.Equal(t, "501300", body["pipelineValue"])
	assert.Equal(t, 100.0, body["conversionRate"])
	assert.NotNil(t, body["avgDealSize"])
	assert.NotNil(t, body["salesVelocity"])
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPatch, "/api/companies/1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
