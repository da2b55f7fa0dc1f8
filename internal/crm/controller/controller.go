// Package controller implements the business logic layer for the CRM,
// validating inputs, orchestrating the entity stores and publishing
// change events.
package controller

import (
	"fmt"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/models"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, entityID string, payload interface{})
}

// Storage defines the store surface the service depends on. The
// concrete implementation is the in-memory relational store; anything
// durable would implement the same contract.
type Storage interface {
	CreateCompany(input *models.CompanyInput) *models.Company
	GetCompany(id string) (*models.Company, error)
	GetCompanies() []models.Company
	UpdateCompany(id string, update *models.CompanyUpdate) (*models.Company, error)
	DeleteCompany(id string) error

	CreateContact(input *models.ContactInput) *models.Contact
	GetContact(id string) (*models.Contact, error)
	GetContacts() []models.ContactWithCompany
	GetContactsByCompany(companyID string) []models.Contact
	UpdateContact(id string, update *models.ContactUpdate) (*models.Contact, error)
	DeleteContact(id string) error

	CreateDeal(input *models.DealInput) *models.Deal
	GetRawDeal(id string) (*models.Deal, error)
	GetDeal(id string) (*models.DealWithRelations, error)
	GetDeals() []models.DealWithRelations
	GetDealsByStage(stage models.DealStage) []models.DealWithRelations
	UpdateDeal(id string, update *models.DealUpdate) (*models.Deal, error)
	DeleteDeal(id string) error

	CreateActivity(input *models.ActivityInput) *models.Activity
	GetActivity(id string) (*models.Activity, error)
	GetActivities() []models.ActivityWithRelations
	GetActivitiesByDeal(dealID string) []models.ActivityWithRelations
	GetActivitiesByContact(contactID string) []models.ActivityWithRelations
	UpdateActivity(id string, update *models.ActivityUpdate) (*models.Activity, error)
	DeleteActivity(id string) error

	Metrics() models.Metrics
	DealCountsByStage() map[models.DealStage]int
}

// Service provides methods to manage CRM entities via store operations
// and event production.
type Service struct {
	store    Storage
	producer EventProducer
	logger   *zap.Logger
}

// NewService constructs a Service with a store, an event producer and a logger.
func NewService(store Storage, producer EventProducer, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		producer: producer,
		logger:   logger.Named("crm_service"),
	}
}

// CreateCompany validates and inserts a company, then fires an event.
func (s *Service) CreateCompany(input *models.CompanyInput) (*models.Company, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", e.ErrInvalidInput)
	}
	if input.Size != "" && !input.Size.Valid() {
		return nil, fmt.Errorf("%w: unknown company size %q", e.ErrInvalidInput, input.Size)
	}

	company := s.store.CreateCompany(input)
	go func() {
		s.producer.Produce(events.CompanyCreated, company.ID, company)
	}()
	return company, nil
}

// GetCompany retrieves a company by id.
func (s *Service) GetCompany(id string) (*models.Company, error) {
	return s.store.GetCompany(id)
}

// GetCompanies lists all companies.
func (s *Service) GetCompanies() []models.Company {
	return s.store.GetCompanies()
}

// UpdateCompany applies a partial update and fires an event.
func (s *Service) UpdateCompany(id string, update *models.CompanyUpdate) (*models.Company, error) {
	if update.Name != nil && *update.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be cleared", e.ErrInvalidInput)
	}
	if update.Size != nil && *update.Size != "" && !update.Size.Valid() {
		return nil, fmt.Errorf("%w: unknown company size %q", e.ErrInvalidInput, *update.Size)
	}

	company, err := s.store.UpdateCompany(id, update)
	if err != nil {
		return nil, err
	}
	go func() {
		s.producer.Produce(events.CompanyUpdated, company.ID, company)
	}()
	return company, nil
}

// DeleteCompany removes a company and fires a deletion event. Records
// referencing it are left in place and resolved lazily.
func (s *Service) DeleteCompany(id string) error {
	company, err := s.store.GetCompany(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCompany(id); err != nil {
		return err
	}
	go func() {
		s.producer.Produce(events.CompanyDeleted, id, company)
	}()
	return nil
}

// CreateContact validates and inserts a contact, then fires an event.
func (s *Service) CreateContact(input *models.ContactInput) (*models.Contact, error) {
	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", e.ErrInvalidInput)
	}
	if input.Email == "" {
		return nil, fmt.Errorf("%w: email is required", e.ErrInvalidInput)
	}

	contact := s.store.CreateContact(input)
	go func() {
		s.producer.Produce(events.ContactCreated, contact.ID, contact)
	}()
	return contact, nil
}

// GetContact retrieves a bare contact by id.
func (s *Service) GetContact(id string) (*models.Contact, error) {
	return s.store.GetContact(id)
}

// GetContacts lists all contacts with their companies attached.
func (s *Service) GetContacts() []models.ContactWithCompany {
	return s.store.GetContacts()
}

// GetContactsByCompany lists the contacts belonging to a company.
func (s *Service) GetContactsByCompany(companyID string) []models.Contact {
	return s.store.GetContactsByCompany(companyID)
}

// UpdateContact applies a partial update and fires an event.
func (s *Service) UpdateContact(id string, update *models.ContactUpdate) (*models.Contact, error) {
	if update.Email != nil && *update.Email == "" {
		return nil, fmt.Errorf("%w: email cannot be cleared", e.ErrInvalidInput)
	}

	contact, err := s.store.UpdateContact(id, update)
	if err != nil {
		return nil, err
	}
	go func() {
		s.producer.Produce(events.ContactUpdated, contact.ID, contact)
	}()
	return contact, nil
}

// DeleteContact removes a contact and fires a deletion event.
func (s *Service) DeleteContact(id string) error {
	contact, err := s.store.GetContact(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteContact(id); err != nil {
		return err
	}
	go func() {
		s.producer.Produce(events.ContactDeleted, id, contact)
	}()
	return nil
}

// CreateDeal validates and inserts a deal, then fires an event. The
// store does not enforce referential integrity, so the company and
// contact references are only checked for presence, not existence;
// dangling references surface at resolve time.
func (s *Service) CreateDeal(input *models.DealInput) (*models.Deal, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", e.ErrInvalidInput)
	}
	if !input.Stage.Valid() {
		return nil, fmt.Errorf("%w: unknown stage %q", e.ErrInvalidInput, input.Stage)
	}
	if input.Probability != nil && (*input.Probability < 0 || *input.Probability > 100) {
		return nil, fmt.Errorf("%w: probability must be within [0,100]", e.ErrInvalidInput)
	}
	if input.CompanyID == "" || input.ContactID == "" {
		return nil, fmt.Errorf("%w: company and contact references are required", e.ErrInvalidInput)
	}
	if input.Value.IsNegative() {
		return nil, fmt.Errorf("%w: value cannot be negative", e.ErrInvalidInput)
	}

	deal := s.store.CreateDeal(input)
	go func() {
		s.producer.Produce(events.DealCreated, deal.ID, deal)
	}()
	return deal, nil
}

// GetRawDeal retrieves a bare deal by id, dangling references included.
func (s *Service) GetRawDeal(id string) (*models.Deal, error) {
	return s.store.GetRawDeal(id)
}

// GetDeal retrieves a deal joined with its company and contact.
func (s *Service) GetDeal(id string) (*models.DealWithRelations, error) {
	return s.store.GetDeal(id)
}

// GetDeals lists all fully resolvable deals with relations.
func (s *Service) GetDeals() []models.DealWithRelations {
	return s.store.GetDeals()
}

// GetDealsByStage lists resolvable deals in the given stage.
func (s *Service) GetDealsByStage(stage models.DealStage) ([]models.DealWithRelations, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("%w: unknown stage %q", e.ErrInvalidInput, stage)
	}
	return s.store.GetDealsByStage(stage), nil
}

// UpdateDeal applies a partial update and fires an event.
func (s *Service) UpdateDeal(id string, update *models.DealUpdate) (*models.Deal, error) {
	if update.Title != nil && *update.Title == "" {
		return nil, fmt.Errorf("%w: title cannot be cleared", e.ErrInvalidInput)
	}
	if update.Stage != nil && !update.Stage.Valid() {
		return nil, fmt.Errorf("%w: unknown stage %q", e.ErrInvalidInput, *update.Stage)
	}
	if update.Probability != nil && (*update.Probability < 0 || *update.Probability > 100) {
		return nil, fmt.Errorf("%w: probability must be within [0,100]", e.ErrInvalidInput)
	}
	if update.Value != nil && update.Value.IsNegative() {
		return nil, fmt.Errorf("%w: value cannot be negative", e.ErrInvalidInput)
	}

	deal, err := s.store.UpdateDeal(id, update)
	if err != nil {
		return nil, err
	}
	go func() {
		s.producer.Produce(events.DealUpdated, deal.ID, deal)
	}()
	return deal, nil
}

// DeleteDeal removes a deal and fires a deletion event.
func (s *Service) DeleteDeal(id string) error {
	deal, err := s.store.GetRawDeal(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDeal(id); err != nil {
		return err
	}
	go func() {
		s.producer.Produce(events.DealDeleted, id, deal)
	}()
	return nil
}

// CreateActivity validates and inserts an activity, then fires an event.
func (s *Service) CreateActivity(input *models.ActivityInput) (*models.Activity, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", e.ErrInvalidInput)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", e.ErrInvalidInput, input.Type)
	}

	activity := s.store.CreateActivity(input)
	go func() {
		s.producer.Produce(events.ActivityCreated, activity.ID, activity)
	}()
	return activity, nil
}

// GetActivity retrieves a bare activity by id.
func (s *Service) GetActivity(id string) (*models.Activity, error) {
	return s.store.GetActivity(id)
}

// GetActivities lists all activities with their relations attached.
func (s *Service) GetActivities() []models.ActivityWithRelations {
	return s.store.GetActivities()
}

// GetActivitiesByDeal lists the activities attached to a deal.
func (s *Service) GetActivitiesByDeal(dealID string) []models.ActivityWithRelations {
	return s.store.GetActivitiesByDeal(dealID)
}

// GetActivitiesByContact lists the activities attached to a contact.
func (s *Service) GetActivitiesByContact(contactID string) []models.ActivityWithRelations {
	return s.store.GetActivitiesByContact(contactID)
}

// UpdateActivity applies a partial update and fires an event.
func (s *Service) UpdateActivity(id string, update *models.ActivityUpdate) (*models.Activity, error) {
	if update.Title != nil && *update.Title == "" {
		return nil, fmt.Errorf("%w: title cannot be cleared", e.ErrInvalidInput)
	}
	if update.Type != nil && !update.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", e.ErrInvalidInput, *update.Type)
	}

	activity, err := s.store.UpdateActivity(id, update)
	if err != nil {
		return nil, err
	}
	go func() {
		s.producer.Produce(events.ActivityUpdated, activity.ID, activity)
	}()
	return activity, nil
}

// DeleteActivity removes an activity and fires a deletion event.
func (s *Service) DeleteActivity(id string) error {
	activity, err := s.store.GetActivity(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteActivity(id); err != nil {
		return err
	}
	go func() {
		s.producer.Produce(events.ActivityDeleted, id, activity)
	}()
	return nil
}

// Metrics returns the derived pipeline analytics.
func (s *Service) Metrics() models.Metrics {
	return s.store.Metrics()
}

// DealCountsByStage returns deal counts per stage for the gauges.
func (s *Service) DealCountsByStage() map[models.DealStage]int {
	return s.store.DealCountsByStage()
}
