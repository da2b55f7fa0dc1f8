package store

import (
	"testing"
	"time"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDealInput() *models.DealInput {
	return &models.DealInput{
		Title:     "Enterprise License",
		Value:     decimal.RequireFromString("125000.00"),
		Stage:     models.StageLead,
		CompanyID: "c1",
		ContactID: "p1",
	}
}

func TestCreateCompanyThenGet(t *testing.T) {
	s := New()

	created := s.CreateCompany(&models.CompanyInput{Name: "TechCorp"})
	require.NotEmpty(t, created.ID, "create should assign an id")
	require.False(t, created.CreatedAt.IsZero(), "create should stamp creation time")

	retrieved, err := s.GetCompany(created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *retrieved, "get should return the created record")
	assert.Empty(t, retrieved.Website, "absent optional fields normalize to empty")
	assert.Empty(t, retrieved.Size)
}

func TestGetCompanyNotFound(t *testing.T) {
	s := New()

	_, err := s.GetCompany("missing")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestDeleteCompanyIsNotIdempotent(t *testing.T) {
	s := New()
	company := s.CreateCompany(&models.CompanyInput{Name: "TechCorp"})

	require.NoError(t, s.DeleteCompany(company.ID))

	_, err := s.GetCompany(company.ID)
	assert.ErrorIs(t, err, e.ErrNotFound, "deleted record should be gone")

	assert.ErrorIs(t, s.DeleteCompany(company.ID), e.ErrNotFound,
		"second delete should report nothing removed")
}

func TestUpdateCompanyMergesOnlySuppliedFields(t *testing.T) {
	s := New()
	company := s.CreateCompany(&models.CompanyInput{
		Name:     "TechCorp",
		Website:  "https://techcorp.com",
		Industry: "Technology",
	})

	updated, err := s.UpdateCompany(company.ID, &models.CompanyUpdate{
		Industry: utils.Ptr("Software"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Software", updated.Industry)
	assert.Equal(t, company.Name, updated.Name, "unsupplied field should be untouched")
	assert.Equal(t, company.Website, updated.Website)
	assert.Equal(t, company.CreatedAt, updated.CreatedAt, "createdAt is immutable")
}

func TestUpdateCompanyNotFoundNeverUpserts(t *testing.T) {
	s := New()

	_, err := s.UpdateCompany("missing", &models.CompanyUpdate{Name: utils.Ptr("Ghost")})
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.Empty(t, s.GetCompanies(), "update must not create records")
}

func TestCreateContactNormalizesOptionals(t *testing.T) {
	s := New()

	contact := s.CreateContact(&models.ContactInput{
		FirstName: "Sarah",
		LastName:  "Johnson",
		Email:     "sarah@techcorp.com",
	})

	retrieved, err := s.GetContact(contact.ID)
	require.NoError(t, err)
	assert.Equal(t, *contact, *retrieved)
	assert.Empty(t, retrieved.CompanyID, "a contact need not belong to a company")
	assert.Empty(t, retrieved.Phone)
}

func TestCreateDealDefaults(t *testing.T) {
	s := New()

	deal := s.CreateDeal(newDealInput())

	assert.Equal(t, models.DefaultProbability, deal.Probability,
		"probability defaults when unspecified")
	assert.Nil(t, deal.ExpectedCloseDate)
	assert.Nil(t, deal.ActualCloseDate)
	assert.Equal(t, deal.CreatedAt, deal.UpdatedAt, "timestamps equal on insert")
}

func TestCreateDealExplicitZeroProbability(t *testing.T) {
	s := New()

	input := newDealInput()
	input.Probability = utils.Ptr(0)
	deal := s.CreateDeal(input)

	assert.Equal(t, 0, deal.Probability, "explicit zero must survive defaulting")
}

func TestUpdateDealRestampsUpdatedAt(t *testing.T) {
	s := New()
	deal := s.CreateDeal(newDealInput())

	updated, err := s.UpdateDeal(deal.ID, &models.DealUpdate{Probability: utils.Ptr(60)})
	require.NoError(t, err)

	assert.Equal(t, 60, updated.Probability)
	assert.Equal(t, deal.Title, updated.Title)
	assert.Equal(t, deal.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(deal.UpdatedAt),
		"updatedAt is restamped on every update")

	// An update that changes nothing still restamps.
	again, err := s.UpdateDeal(deal.ID, &models.DealUpdate{})
	require.NoError(t, err)
	assert.False(t, again.UpdatedAt.Before(updated.UpdatedAt))
}

func TestUpdateDealClearsNullableDate(t *testing.T) {
	s := New()
	input := newDealInput()
	deal := s.CreateDeal(input)

	withDate, err := s.UpdateDeal(deal.ID, &models.DealUpdate{
		ActualCloseDate: utils.Ptr(utils.Ptr(deal.CreatedAt.AddDate(0, 0, 3))),
	})
	require.NoError(t, err)
	require.NotNil(t, withDate.ActualCloseDate)

	cleared, err := s.UpdateDeal(deal.ID, &models.DealUpdate{
		ActualCloseDate: utils.Ptr((*time.Time)(nil)),
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.ActualCloseDate, "explicit null clears the date")
}

func TestDeleteDealLeavesOtherStoresAlone(t *testing.T) {
	s := New()
	company := s.CreateCompany(&models.CompanyInput{Name: "TechCorp"})
	contact := s.CreateContact(&models.ContactInput{FirstName: "Sarah", LastName: "Johnson", Email: "s@t.com"})

	input := newDealInput()
	input.CompanyID = company.ID
	input.ContactID = contact.ID
	deal := s.CreateDeal(input)

	require.NoError(t, s.DeleteDeal(deal.ID))

	_, err := s.GetCompany(company.ID)
	assert.NoError(t, err)
	_, err = s.GetContact(contact.ID)
	assert.NoError(t, err)
}

func TestCreateActivityDefaults(t *testing.T) {
	s := New()

	activity := s.CreateActivity(&models.ActivityInput{
		Type:  models.ActivityCall,
		Title: "Discovery Call",
	})

	retrieved, err := s.GetActivity(activity.ID)
	require.NoError(t, err)
	assert.Equal(t, *activity, *retrieved)
	assert.False(t, retrieved.Completed, "completed defaults to false")
	assert.Nil(t, retrieved.DueDate)
	assert.Empty(t, retrieved.DealID, "an activity may be fully unlinked")
}

func TestListOrderIsStable(t *testing.T) {
	s := New()
	first := s.CreateCompany(&models.CompanyInput{Name: "First"})
	second := s.CreateCompany(&models.CompanyInput{Name: "Second"})
	third := s.CreateCompany(&models.CompanyInput{Name: "Third"})

	require.NoError(t, s.DeleteCompany(second.ID))
	fourth := s.CreateCompany(&models.CompanyInput{Name: "Fourth"})

	var ids []string
	for _, company := range s.GetCompanies() {
		ids = append(ids, company.ID)
	}
	assert.Equal(t, []string{first.ID, third.ID, fourth.ID}, ids)
}

func TestSeedPopulatesAllStores(t *testing.T) {
	s := New()
	s.Seed()

	assert.Len(t, s.GetCompanies(), 5)
	assert.Len(t, s.GetContacts(), 5)
	assert.Len(t, s.GetDeals(), 5)
	assert.Len(t, s.GetActivities(), 4)
}
