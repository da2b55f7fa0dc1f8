package store

import (
	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/models"
)

// Joined views are recomputed on every call and never stored. Deals use
// a strict join: a deal is meaningless without its company and contact,
// so one with a dangling reference is dropped from list results and
// reported as not found on single reads. Contacts and activities use
// left joins: an unresolvable reference yields an absent relation, not
// an error.

// GetDeals returns every deal whose company and contact both resolve,
// each joined with its relations.
func (s *Store) GetDeals() []models.DealWithRelations {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DealWithRelations, 0, len(s.deals))
	for _, id := range s.dealOrder {
		deal := s.deals[id]
		company, haveCompany := s.companies[deal.CompanyID]
		contact, haveContact := s.contacts[deal.ContactID]
		if !haveCompany || !haveContact {
			continue
		}
		out = append(out, models.DealWithRelations{
			Deal:    deal,
			Company: company,
			Contact: contact,
		})
	}
	return out
}

// GetDeal returns the deal joined with its company and contact, or
// ErrNotFound if the deal does not exist or either relation dangles.
func (s *Store) GetDeal(id string) (*models.DealWithRelations, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deal, ok := s.deals[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	company, haveCompany := s.companies[deal.CompanyID]
	contact, haveContact := s.contacts[deal.ContactID]
	if !haveCompany || !haveContact {
		return nil, e.ErrNotFound
	}
	return &models.DealWithRelations{
		Deal:    deal,
		Company: company,
		Contact: contact,
	}, nil
}

// GetDealsByStage returns the joined deals whose stage matches exactly.
func (s *Store) GetDealsByStage(stage models.DealStage) []models.DealWithRelations {
	deals := s.GetDeals()
	out := make([]models.DealWithRelations, 0, len(deals))
	for _, deal := range deals {
		if deal.Stage == stage {
			out = append(out, deal)
		}
	}
	return out
}

// GetContacts returns every contact, each with its company attached
// when the reference is present and resolvable.
func (s *Store) GetContacts() []models.ContactWithCompany {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ContactWithCompany, 0, len(s.contacts))
	for _, id := range s.contactOrder {
		contact := s.contacts[id]
		joined := models.ContactWithCompany{Contact: contact}
		if contact.CompanyID != "" {
			if company, ok := s.companies[contact.CompanyID]; ok {
				joined.Company = &company
			}
		}
		out = append(out, joined)
	}
	return out
}

// GetContactsByCompany returns the bare contacts referencing companyID.
func (s *Store) GetContactsByCompany(companyID string) []models.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Contact, 0)
	for _, id := range s.contactOrder {
		contact := s.contacts[id]
		if contact.CompanyID == companyID {
			out = append(out, contact)
		}
	}
	return out
}

// GetActivities returns every activity with its deal, contact and
// company attached independently when resolvable.
func (s *Store) GetActivities() []models.ActivityWithRelations {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ActivityWithRelations, 0, len(s.activities))
	for _, id := range s.activityOrder {
		activity := s.activities[id]
		joined := models.ActivityWithRelations{Activity: activity}
		if activity.DealID != "" {
			if deal, ok := s.deals[activity.DealID]; ok {
				joined.Deal = &deal
			}
		}
		if activity.ContactID != "" {
			if contact, ok := s.contacts[activity.ContactID]; ok {
				joined.Contact = &contact
			}
		}
		if activity.CompanyID != "" {
			if company, ok := s.companies[activity.CompanyID]; ok {
				joined.Company = &company
			}
		}
		out = append(out, joined)
	}
	return out
}

// GetActivitiesByDeal returns the joined activities referencing dealID.
func (s *Store) GetActivitiesByDeal(dealID string) []models.ActivityWithRelations {
	activities := s.GetActivities()
	out := make([]models.ActivityWithRelations, 0, len(activities))
	for _, activity := range activities {
		if activity.DealID == dealID {
			out = append(out, activity)
		}
	}
	return out
}

// GetActivitiesByContact returns the joined activities referencing contactID.
func (s *Store) GetActivitiesByContact(contactID string) []models.ActivityWithRelations {
	activities := s.GetActivities()
	out := make([]models.ActivityWithRelations, 0, len(activities))
	for _, activity := range activities {
		if activity.ContactID == contactID {
			out = append(out, activity)
		}
	}
	return out
}
