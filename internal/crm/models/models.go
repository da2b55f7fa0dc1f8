// Package models defines the core domain models for the CRM:
// Company, Contact, Deal and Activity, their insert/update shapes,
// the fixed enumerations, and the relation-joined view types.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DealStage represents the pipeline position of a deal.
type DealStage string

const (
	StageLead        DealStage = "lead"
	StageQualified   DealStage = "qualified"
	StageProposal    DealStage = "proposal"
	StageNegotiation DealStage = "negotiation"
	StageClosedWon   DealStage = "closed_won"
	StageClosedLost  DealStage = "closed_lost"
)

// Stages lists every valid stage in pipeline order.
var Stages = []DealStage{
	StageLead, StageQualified, StageProposal,
	StageNegotiation, StageClosedWon, StageClosedLost,
}

// Closed reports whether the stage is terminal. Any stage whose name
// contains "closed" is excluded from open-pipeline analytics.
func (s DealStage) Closed() bool {
	return strings.Contains(string(s), "closed")
}

// Valid reports whether s is one of the six known stages.
func (s DealStage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// ActivityType represents the kind of an activity.
type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
	ActivityTask    ActivityType = "task"
)

// ActivityTypes lists every valid activity type.
var ActivityTypes = []ActivityType{
	ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote, ActivityTask,
}

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	for _, known := range ActivityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CompanySize is the employee-count bucket of a company.
type CompanySize string

const (
	SizeMicro      CompanySize = "1-10"
	SizeSmall      CompanySize = "11-50"
	SizeMedium     CompanySize = "51-200"
	SizeLarge      CompanySize = "201-500"
	SizeEnterprise CompanySize = "500+"
)

// CompanySizes lists every valid size bucket.
var CompanySizes = []CompanySize{
	SizeMicro, SizeSmall, SizeMedium, SizeLarge, SizeEnterprise,
}

// Valid reports whether s is one of the known size buckets. The empty
// string is not valid here; callers treat absence separately.
func (s CompanySize) Valid() bool {
	for _, known := range CompanySizes {
		if s == known {
			return true
		}
	}
	return false
}

// Company is an organization deals and contacts attach to.
// Optional text fields use "" as the explicit absent marker.
type Company struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Website     string      `json:"website,omitempty"`
	Industry    string      `json:"industry,omitempty"`
	Size        CompanySize `json:"size,omitempty"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// CompanyInput carries the user-supplied fields for creating a company.
type CompanyInput struct {
	Name        string      `json:"name"`
	Website     string      `json:"website"`
	Industry    string      `json:"industry"`
	Size        CompanySize `json:"size"`
	Description string      `json:"description"`
}

// CompanyUpdate represents a partial update of a Company.
// Pointer types distinguish "not supplied" from "set to empty".
type CompanyUpdate struct {
	Name        *string      `json:"name"`
	Website     *string      `json:"website"`
	Industry    *string      `json:"industry"`
	Size        *CompanySize `json:"size"`
	Description *string      `json:"description"`
}

// Contact is a person, optionally attached to a company.
type Contact struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Title     string    `json:"title,omitempty"`
	CompanyID string    `json:"companyId,omitempty"`
	LinkedIn  string    `json:"linkedIn,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactInput carries the user-supplied fields for creating a contact.
type ContactInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Title     string `json:"title"`
	CompanyID string `json:"companyId"`
	LinkedIn  string `json:"linkedIn"`
	Notes     string `json:"notes"`
}

// ContactUpdate represents a partial update of a Contact.
type ContactUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Title     *string `json:"title"`
	CompanyID *string `json:"companyId"`
	LinkedIn  *string `json:"linkedIn"`
	Notes     *string `json:"notes"`
}

// Deal is a sales opportunity. Value is exact decimal money; it is
// serialized as a quoted decimal string to avoid float drift on the wire.
type Deal struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Value             decimal.Decimal `json:"value"`
	Stage             DealStage       `json:"stage"`
	Probability       int             `json:"probability"`
	ExpectedCloseDate *time.Time      `json:"expectedCloseDate"`
	ActualCloseDate   *time.Time      `json:"actualCloseDate"`
	CompanyID         string          `json:"companyId"`
	ContactID         string          `json:"contactId"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// DefaultProbability is assigned when a deal is created without one.
const DefaultProbability = 25

// DealInput carries the user-supplied fields for creating a deal.
// Probability is a pointer so an explicit 0 survives defaulting.
type DealInput struct {
	Title             string          `json:"title"`
	Value             decimal.Decimal `json:"value"`
	Stage             DealStage       `json:"stage"`
	Probability       *int            `json:"probability"`
	ExpectedCloseDate *time.Time      `json:"expectedCloseDate"`
	ActualCloseDate   *time.Time      `json:"actualCloseDate"`
	CompanyID         string          `json:"companyId"`
	ContactID         string          `json:"contactId"`
	Notes             string          `json:"notes"`
}

// DealUpdate represents a partial update of a Deal. Nullable dates use
// a double pointer so "clear the date" and "leave untouched" stay distinct.
type DealUpdate struct {
	Title             *string          `json:"title"`
	Value             *decimal.Decimal `json:"value"`
	Stage             *DealStage       `json:"stage"`
	Probability       *int             `json:"probability"`
	ExpectedCloseDate **time.Time      `json:"expectedCloseDate"`
	ActualCloseDate   **time.Time      `json:"actualCloseDate"`
	CompanyID         *string          `json:"companyId"`
	ContactID         *string          `json:"contactId"`
	Notes             *string          `json:"notes"`
}

// Activity is a logged or scheduled interaction, independently linkable
// to a deal, a contact and a company.
type Activity struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DealID      string       `json:"dealId,omitempty"`
	ContactID   string       `json:"contactId,omitempty"`
	CompanyID   string       `json:"companyId,omitempty"`
	Completed   bool         `json:"completed"`
	DueDate     *time.Time   `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ActivityInput carries the user-supplied fields for creating an activity.
type ActivityInput struct {
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DealID      string       `json:"dealId"`
	ContactID   string       `json:"contactId"`
	CompanyID   string       `json:"companyId"`
	Completed   *bool        `json:"completed"`
	DueDate     *time.Time   `json:"dueDate"`
}

// ActivityUpdate represents a partial update of an Activity.
type ActivityUpdate struct {
	Type        *ActivityType `json:"type"`
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	DealID      *string       `json:"dealId"`
	ContactID   *string       `json:"contactId"`
	CompanyID   *string       `json:"companyId"`
	Completed   *bool         `json:"completed"`
	DueDate     **time.Time   `json:"dueDate"`
}

// DealWithRelations is a deal joined with the company and contact it
// belongs to. The join is strict: both must resolve or the deal is not
// exposed through this view.
type DealWithRelations struct {
	Deal
	Company Company `json:"company"`
	Contact Contact `json:"contact"`
}

// ContactWithCompany is a contact with its company attached when the
// reference is present and resolvable (left join).
type ContactWithCompany struct {
	Contact
	Company *Company `json:"company,omitempty"`
}

// ActivityWithRelations is an activity with each optional relation
// attached independently when resolvable (left join on three keys).
type ActivityWithRelations struct {
	Activity
	Deal    *Deal    `json:"deal,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
	Company *Company `json:"company,omitempty"`
}

// Metrics holds the derived pipeline analytics, recomputed on demand.
type Metrics struct {
	PipelineValue  decimal.Decimal `json:"pipelineValue"`
	ConversionRate float64         `json:"conversionRate"`
	AvgDealSize    decimal.Decimal `json:"avgDealSize"`
	SalesVelocity  float64         `json:"salesVelocity"`
}
