package store

import (
	"time"

	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

// Seed populates the store with a small demo book of business so a
// fresh process has something to show on the dashboard. Fixture ids
// are short literals, not uuids, which keeps cross-references legible.
func (s *Store) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	companies := []models.Company{
		{ID: "1", Name: "TechCorp Inc.", Website: "https://techcorp.com", Industry: "Technology", Size: models.SizeMedium, Description: "Leading tech solutions provider", CreatedAt: now},
		{ID: "2", Name: "DataFlow Systems", Website: "https://dataflow.com", Industry: "Software", Size: models.SizeSmall, Description: "Data analytics platform", CreatedAt: now},
		{ID: "3", Name: "CloudStart Solutions", Website: "https://cloudstart.com", Industry: "Cloud Services", Size: models.SizeLarge, Description: "Cloud infrastructure provider", CreatedAt: now},
		{ID: "4", Name: "InnovateLabs", Website: "https://innovatelabs.com", Industry: "R&D", Size: models.SizeMicro, Description: "Innovation and research lab", CreatedAt: now},
		{ID: "5", Name: "GlobalTech Ltd.", Website: "https://globaltech.com", Industry: "Technology", Size: models.SizeEnterprise, Description: "Global technology conglomerate", CreatedAt: now},
	}

	contacts := []models.Contact{
		{ID: "1", FirstName: "Sarah", LastName: "Johnson", Email: "sarah@techcorp.com", Phone: "+1-555-0101", Title: "VP of Sales", CompanyID: "1", LinkedIn: "https://linkedin.com/in/sarah-johnson", Notes: "Key decision maker", CreatedAt: now},
		{ID: "2", FirstName: "Mike", LastName: "Chen", Email: "mike@dataflow.com", Phone: "+1-555-0102", Title: "CTO", CompanyID: "2", LinkedIn: "https://linkedin.com/in/mike-chen", Notes: "Technical lead", CreatedAt: now},
		{ID: "3", FirstName: "Emily", LastName: "Rodriguez", Email: "emily@cloudstart.com", Phone: "+1-555-0103", Title: "CEO", CompanyID: "3", LinkedIn: "https://linkedin.com/in/emily-rodriguez", Notes: "Final approver", CreatedAt: now},
		{ID: "4", FirstName: "David", LastName: "Park", Email: "david@innovatelabs.com", Phone: "+1-555-0104", Title: "Founder", CompanyID: "4", LinkedIn: "https://linkedin.com/in/david-park", Notes: "Innovation focused", CreatedAt: now},
		{ID: "5", FirstName: "Lisa", LastName: "Wilson", Email: "lisa@globaltech.com", Phone: "+1-555-0105", Title: "Director of Procurement", CompanyID: "5", LinkedIn: "https://linkedin.com/in/lisa-wilson", Notes: "Budget holder", CreatedAt: now},
	}

	deals := []models.Deal{
		{ID: "1", Title: "Enterprise Software License", Value: decimal.RequireFromString("125000.00"), Stage: models.StageNegotiation, Probability: 85, ExpectedCloseDate: utils.Ptr(date(2024, time.January, 15)), CompanyID: "1", ContactID: "1", Notes: "Large enterprise deal", CreatedAt: now, UpdatedAt: now},
		{ID: "2", Title: "Analytics Platform Implementation", Value: decimal.RequireFromString("89500.00"), Stage: models.StageProposal, Probability: 72, ExpectedCloseDate: utils.Ptr(date(2024, time.January, 20)), CompanyID: "2", ContactID: "2", Notes: "Complex technical requirements", CreatedAt: now, UpdatedAt: now},
		{ID: "3", Title: "Cloud Migration Services", Value: decimal.RequireFromString("67200.00"), Stage: models.StageClosedWon, Probability: 100, ExpectedCloseDate: utils.Ptr(date(2023, time.December, 15)), ActualCloseDate: utils.Ptr(date(2023, time.December, 10)), CompanyID: "3", ContactID: "3", Notes: "Successfully closed", CreatedAt: now, UpdatedAt: now},
		{ID: "4", Title: "Innovation Consulting", Value: decimal.RequireFromString("52800.00"), Stage: models.StageQualified, Probability: 45, ExpectedCloseDate: utils.Ptr(date(2024, time.February, 1)), CompanyID: "4", ContactID: "4", Notes: "Good fit for services", CreatedAt: now, UpdatedAt: now},
		{ID: "5", Title: "Global IT Infrastructure", Value: decimal.RequireFromString("234000.00"), Stage: models.StageLead, Probability: 25, ExpectedCloseDate: utils.Ptr(date(2024, time.March, 1)), CompanyID: "5", ContactID: "5", Notes: "Initial discussions", CreatedAt: now, UpdatedAt: now},
	}

	activities := []models.Activity{
		{ID: "1", Type: models.ActivityCall, Title: "Discovery Call", Description: "Initial needs assessment call", DealID: "1", ContactID: "1", CompanyID: "1", Completed: true, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "2", Type: models.ActivityEmail, Title: "Proposal Follow-up", Description: "Following up on sent proposal", DealID: "2", ContactID: "2", CompanyID: "2", Completed: true, CreatedAt: now.Add(-4 * time.Hour)},
		{ID: "3", Type: models.ActivityMeeting, Title: "Contract Signing", Description: "Final contract signing meeting", DealID: "3", ContactID: "3", CompanyID: "3", Completed: true, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "4", Type: models.ActivityCall, Title: "Technical Discussion", Description: "Discussing technical requirements", DealID: "4", ContactID: "4", CompanyID: "4", Completed: false, DueDate: utils.Ptr(now.Add(24 * time.Hour)), CreatedAt: now.Add(-6 * time.Hour)},
	}

	for _, company := range companies {
		s.companies[company.ID] = company
		s.companyOrder = append(s.companyOrder, company.ID)
	}
	for _, contact := range contacts {
		s.contacts[contact.ID] = contact
		s.contactOrder = append(s.contactOrder, contact.ID)
	}
	for _, deal := range deals {
		s.deals[deal.ID] = deal
		s.dealOrder = append(s.dealOrder, deal.ID)
	}
	for _, activity := range activities {
		s.activities[activity.ID] = activity
		s.activityOrder = append(s.activityOrder, activity.ID)
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
