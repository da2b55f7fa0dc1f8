// Package store implements the in-memory relational store backing the
// CRM: one map-backed entity store per kind (company, contact, deal,
// activity), read-time relation resolution, and derived pipeline
// analytics. State is volatile and lives for the process lifetime.
package store

import (
	"time"

	"sync"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/google/uuid"
)

// Store owns all CRM entities. A single store-wide RWMutex keeps every
// operation atomic, matching the run-to-completion semantics the
// resolver and analytics depend on; insertion-order slices give list
// calls a stable ordering for the process lifetime.
type Store struct {
	mu sync.RWMutex

	companies  map[string]models.Company
	contacts   map[string]models.Contact
	deals      map[string]models.Deal
	activities map[string]models.Activity

	companyOrder  []string
	contactOrder  []string
	dealOrder     []string
	activityOrder []string
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		companies:  make(map[string]models.Company),
		contacts:   make(map[string]models.Contact),
		deals:      make(map[string]models.Deal),
		activities: make(map[string]models.Activity),
	}
}

// CreateCompany inserts a new company, assigning id and creation time.
func (s *Store) CreateCompany(input *models.CompanyInput) *models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()

	company := models.Company{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Website:     input.Website,
		Industry:    input.Industry,
		Size:        input.Size,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}
	s.companies[company.ID] = company
	s.companyOrder = append(s.companyOrder, company.ID)
	return &company
}

// GetCompany returns the company for id, or ErrNotFound.
func (s *Store) GetCompany(id string) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, ok := s.companies[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	return &company, nil
}

// GetCompanies returns every company currently held.
func (s *Store) GetCompanies() []models.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Company, 0, len(s.companies))
	for _, id := range s.companyOrder {
		out = append(out, s.companies[id])
	}
	return out
}

// UpdateCompany merges the supplied fields onto an existing company.
// Fields absent from the update are untouched. Never creates.
func (s *Store) UpdateCompany(id string, update *models.CompanyUpdate) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, ok := s.companies[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	if update.Name != nil {
		company.Name = *update.Name
	}
	if update.Website != nil {
		company.Website = *update.Website
	}
	if update.Industry != nil {
		company.Industry = *update.Industry
	}
	if update.Size != nil {
		company.Size = *update.Size
	}
	if update.Description != nil {
		company.Description = *update.Description
	}
	s.companies[id] = company
	return &company, nil
}

// DeleteCompany removes the company if present. There is no cascade:
// deals, contacts and activities referencing it keep their ids and go
// dangling until resolved.
func (s *Store) DeleteCompany(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[id]; !ok {
		return e.ErrNotFound
	}
	delete(s.companies, id)
	s.companyOrder = removeID(s.companyOrder, id)
	return nil
}

// CreateContact inserts a new contact, assigning id and creation time.
func (s *Store) CreateContact(input *models.ContactInput) *models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact := models.Contact{
		ID:        uuid.NewString(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Title:     input.Title,
		CompanyID: input.CompanyID,
		LinkedIn:  input.LinkedIn,
		Notes:     input.Notes,
		CreatedAt: time.Now().UTC(),
	}
	s.contacts[contact.ID] = contact
	s.contactOrder = append(s.contactOrder, contact.ID)
	return &contact
}

// GetContact returns the bare contact for id, or ErrNotFound.
func (s *Store) GetContact(id string) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contact, ok := s.contacts[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	return &contact, nil
}

// UpdateContact merges the supplied fields onto an existing contact.
func (s *Store) UpdateContact(id string, update *models.ContactUpdate) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, ok := s.contacts[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	if update.FirstName != nil {
		contact.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		contact.LastName = *update.LastName
	}
	if update.Email != nil {
		contact.Email = *update.Email
	}
	if update.Phone != nil {
		contact.Phone = *update.Phone
	}
	if update.Title != nil {
		contact.Title = *update.Title
	}
	if update.CompanyID != nil {
		contact.CompanyID = *update.CompanyID
	}
	if update.LinkedIn != nil {
		contact.LinkedIn = *update.LinkedIn
	}
	if update.Notes != nil {
		contact.Notes = *update.Notes
	}
	s.contacts[id] = contact
	return &contact, nil
}

// DeleteContact removes the contact if present. No cascade.
func (s *Store) DeleteContact(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[id]; !ok {
		return e.ErrNotFound
	}
	delete(s.contacts, id)
	s.contactOrder = removeID(s.contactOrder, id)
	return nil
}

// CreateDeal inserts a new deal, assigning id, creation and update
// timestamps (equal on insert) and defaulting probability.
func (s *Store) CreateDeal(input *models.DealInput) *models.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	probability := models.DefaultProbability
	if input.Probability != nil {
		probability = *input.Probability
	}
	deal := models.Deal{
		ID:                uuid.NewString(),
		Title:             input.Title,
		Value:             input.Value,
		Stage:             input.Stage,
		Probability:       probability,
		ExpectedCloseDate: input.ExpectedCloseDate,
		ActualCloseDate:   input.ActualCloseDate,
		CompanyID:         input.CompanyID,
		ContactID:         input.ContactID,
		Notes:             input.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.deals[deal.ID] = deal
	s.dealOrder = append(s.dealOrder, deal.ID)
	return &deal
}

// GetRawDeal returns the bare deal for id without resolving relations,
// or ErrNotFound. A deal whose company or contact has been deleted is
// still retrievable here.
func (s *Store) GetRawDeal(id string) (*models.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deal, ok := s.deals[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	return &deal, nil
}

// UpdateDeal merges the supplied fields onto an existing deal and
// restamps UpdatedAt regardless of which fields changed. CreatedAt is
// immutable after insert.
func (s *Store) UpdateDeal(id string, update *models.DealUpdate) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deal, ok := s.deals[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	if update.Title != nil {
		deal.Title = *update.Title
	}
	if update.Value != nil {
		deal.Value = *update.Value
	}
	if update.Stage != nil {
		deal.Stage = *update.Stage
	}
	if update.Probability != nil {
		deal.Probability = *update.Probability
	}
	if update.ExpectedCloseDate != nil {
		deal.ExpectedCloseDate = *update.ExpectedCloseDate
	}
	if update.ActualCloseDate != nil {
		deal.ActualCloseDate = *update.ActualCloseDate
	}
	if update.CompanyID != nil {
		deal.CompanyID = *update.CompanyID
	}
	if update.ContactID != nil {
		deal.ContactID = *update.ContactID
	}
	if update.Notes != nil {
		deal.Notes = *update.Notes
	}
	deal.UpdatedAt = time.Now().UTC()
	s.deals[id] = deal
	return &deal, nil
}

// DeleteDeal removes the deal if present. No cascade.
func (s *Store) DeleteDeal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deals[id]; !ok {
		return e.ErrNotFound
	}
	delete(s.deals, id)
	s.dealOrder = removeID(s.dealOrder, id)
	return nil
}

// CreateActivity inserts a new activity, assigning id and creation time
// and defaulting the completed flag to false.
func (s *Store) CreateActivity(input *models.ActivityInput) *models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := false
	if input.Completed != nil {
		completed = *input.Completed
	}
	activity := models.Activity{
		ID:          uuid.NewString(),
		Type:        input.Type,
		Title:       input.Title,
		Description: input.Description,
		DealID:      input.DealID,
		ContactID:   input.ContactID,
		CompanyID:   input.CompanyID,
		Completed:   completed,
		DueDate:     input.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	s.activities[activity.ID] = activity
	s.activityOrder = append(s.activityOrder, activity.ID)
	return &activity
}

// GetActivity returns the bare activity for id, or ErrNotFound.
func (s *Store) GetActivity(id string) (*models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity, ok := s.activities[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	return &activity, nil
}

// UpdateActivity merges the supplied fields onto an existing activity.
func (s *Store) UpdateActivity(id string, update *models.ActivityUpdate) (*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity, ok := s.activities[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	if update.Type != nil {
		activity.Type = *update.Type
	}
	if update.Title != nil {
		activity.Title = *update.Title
	}
	if update.Description != nil {
		activity.Description = *update.Description
	}
	if update.DealID != nil {
		activity.DealID = *update.DealID
	}
	if update.ContactID != nil {
		activity.ContactID = *update.ContactID
	}
	if update.CompanyID != nil {
		activity.CompanyID = *update.CompanyID
	}
	if update.Completed != nil {
		activity.Completed = *update.Completed
	}
	if update.DueDate != nil {
		activity.DueDate = *update.DueDate
	}
	s.activities[id] = activity
	return &activity, nil
}

// DeleteActivity removes the activity if present.
func (s *Store) DeleteActivity(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activities[id]; !ok {
		return e.ErrNotFound
	}
	delete(s.activities, id)
	s.activityOrder = removeID(s.activityOrder, id)
	return nil
}

func removeID(order []string, id string) []string {
	for i, candidate := range order {
		if candidate == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
