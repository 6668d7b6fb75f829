package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a meeting record.
type Status int

const (
	StatusDraft     Status = 0
	StatusFinalized Status = 1
	StatusDiscarded Status = 9
)

// Valid reports whether s is a known status code.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusFinalized, StatusDiscarded:
		return true
	}
	return false
}

// CanTransitionTo reports whether a record in status s may move to next.
// Staying in the same non-terminal status is allowed; DISCARDED is terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusDraft || next == StatusFinalized || next == StatusDiscarded
	case StatusFinalized:
		return next == StatusFinalized || next == StatusDiscarded
	}
	return false
}

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusFinalized:
		return "finalized"
	case StatusDiscarded:
		return "discarded"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: date must be a string", ErrValidation)
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	d.Time = t
	return nil
}

// MeetingRecord is the log of one external meeting.
type MeetingRecord struct {
	ID           int64           `json:"id"`
	ContactDate  *Date           `json:"contact_date"`
	Location     string          `json:"location"`
	Title        string          `json:"title"`
	SummaryText  string          `json:"summary_text"`
	RawText      string          `json:"raw_text"`
	Details      string          `json:"details"`
	Status       Status          `json:"status"`
	DepartmentID int64           `json:"department_id"`
	OwnerID      *int64          `json:"member_id"` // nil once the author is deleted
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Owner        *Member         `json:"member,omitempty"`
	Persons      []*BusinessCard `json:"persons"`
	Companions   []*Member       `json:"companions"`
}

// OwnedBy reports whether memberID authored the record.
func (r *MeetingRecord) OwnedBy(memberID int64) bool {
	return r.OwnerID != nil && *r.OwnerID == memberID
}

// NewMeetingRecord is the input for creating a record.
type NewMeetingRecord struct {
	ContactDate  *Date   `json:"contact_date"`
	Location     string  `json:"location"`
	Title        string  `json:"title"`
	SummaryText  string  `json:"summary_text"`
	RawText      string  `json:"raw_text"`
	Details      string  `json:"details"`
	Status       Status  `json:"status"`
	PersonIDs    []int64 `json:"person_ids"`
	CompanionIDs []int64 `json:"companion_ids"`
}

// MeetingRecordPatch is a partial update. Nil fields are left untouched; a
// non-nil association list (even empty) replaces the stored set.
type MeetingRecordPatch struct {
	ContactDate  *Date    `json:"contact_date"`
	Location     *string  `json:"location"`
	Title        *string  `json:"title"`
	SummaryText  *string  `json:"summary_text"`
	RawText      *string  `json:"raw_text"`
	Details      *string  `json:"details"`
	Status       *Status  `json:"status"`
	PersonIDs    *[]int64 `json:"person_ids"`
	CompanionIDs *[]int64 `json:"companion_ids"`
}

// Apply copies the supplied content fields onto r. It does not touch status
// or associations.
func (p *MeetingRecordPatch) Apply(r *MeetingRecord) {
	if p.ContactDate != nil {
		d := *p.ContactDate
		r.ContactDate = &d
	}
	if p.Location != nil {
		r.Location = *p.Location
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.SummaryText != nil {
		r.SummaryText = *p.SummaryText
	}
	if p.RawText != nil {
		r.RawText = *p.RawText
	}
	if p.Details != nil {
		r.Details = *p.Details
	}
}

// ContactRepository defines data access for meeting records. Association
// loading is explicit: GetByID, ListByOwner and Search return records with
// Owner, Persons and Companions populated. Update never changes department or owner.
type ContactRepository interface {
	// WithTx runs fn against a repository bound to a single transaction.
	WithTx(ctx context.Context, fn func(repo ContactRepository) error) error
	Create(ctx context.Context, record *MeetingRecord) error
	GetByID(ctx context.Context, id int64) (*MeetingRecord, error)
	Update(ctx context.Context, record *MeetingRecord) error
	// ReplacePersons and ReplaceCompanions drop ids that do not resolve to rows.
	ReplacePersons(ctx context.Context, contactID int64, cardIDs []int64) error
	ReplaceCompanions(ctx context.Context, contactID int64, memberIDs []int64) error
	ListByOwner(ctx context.Context, ownerID int64, status Status, page Page) ([]*MeetingRecord, error)
	Search(ctx context.Context, departmentID int64, keyword string, page Page) ([]*MeetingRecord, int, error)
}
