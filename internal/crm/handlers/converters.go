package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gartstein/crm/internal/crm/models"
	"github.com/shopspring/decimal"
)

// Partial-update requests for entities with nullable dates. encoding/json
// cannot distinguish an absent field from an explicit null through a
// plain pointer, so the date fields come in as raw messages: nil means
// untouched, "null" means clear.

type dealUpdateRequest struct {
	Title             *string           `json:"title"`
	Value             *decimal.Decimal  `json:"value"`
	Stage             *models.DealStage `json:"stage"`
	Probability       *int              `json:"probability"`
	ExpectedCloseDate json.RawMessage   `json:"expectedCloseDate"`
	ActualCloseDate   json.RawMessage   `json:"actualCloseDate"`
	CompanyID         *string           `json:"companyId"`
	ContactID         *string           `json:"contactId"`
	Notes             *string           `json:"notes"`
}

func (r *dealUpdateRequest) toUpdate() (*models.DealUpdate, error) {
	update := &models.DealUpdate{
		Title:       r.Title,
		Value:       r.Value,
		Stage:       r.Stage,
		Probability: r.Probability,
		CompanyID:   r.CompanyID,
		ContactID:   r.ContactID,
		Notes:       r.Notes,
	}

	expected, err := parseNullableDate(r.ExpectedCloseDate, "expectedCloseDate")
	if err != nil {
		return nil, err
	}
	update.ExpectedCloseDate = expected

	actual, err := parseNullableDate(r.ActualCloseDate, "actualCloseDate")
	if err != nil {
		return nil, err
	}
	update.ActualCloseDate = actual

	return update, nil
}

type activityUpdateRequest struct {
	Type        *models.ActivityType `json:"type"`
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	DealID      *string              `json:"dealId"`
	ContactID   *string              `json:"contactId"`
	CompanyID   *string              `json:"companyId"`
	Completed   *bool                `json:"completed"`
	DueDate     json.RawMessage      `json:"dueDate"`
}

func (r *activityUpdateRequest) toUpdate() (*models.ActivityUpdate, error) {
	update := &models.ActivityUpdate{
		Type:        r.Type,
		Title:       r.Title,
		Description: r.Description,
		DealID:      r.DealID,
		ContactID:   r.ContactID,
		CompanyID:   r.CompanyID,
		Completed:   r.Completed,
	}

	due, err := parseNullableDate(r.DueDate, "dueDate")
	if err != nil {
		return nil, err
	}
	update.DueDate = due

	return update, nil
}

// parseNullableDate turns a raw JSON field into the store's
// double-pointer representation: nil = untouched, *nil = cleared,
// **t = set.
func parseNullableDate(raw json.RawMessage, field string) (**time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	if string(raw) == "null" {
		cleared := (*time.Time)(nil)
		return &cleared, nil
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("invalid %s: %v", field, err)
	}
	set := &t
	return &set, nil
}
