package domain

import (
	"context"
	"time"
)

// Meeting represents a booked meeting occupying a time window on a single
// calendar date. Only the creator may edit or cancel it.
type Meeting struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	Start        TimeOfDay `json:"start_time"`
	End          TimeOfDay `json:"end_time"`
	Venue        string    `json:"venue"`
	DepartmentID string    `json:"department_id"`
	CreatorID    string    `json:"creator_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// ParticipantIDs is the roster (always includes the creator). Filled
	// by the repository on reads; authoritative rows live in
	// meeting_participants.
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

// Window returns the meeting's half-open time window.
func (m *Meeting) Window() TimeWindow {
	return TimeWindow{Start: m.Start, End: m.End}
}

// MeetingMember is one roster entry with display data for the members view.
type MeetingMember struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	DepartmentName string `json:"department_name"`
}

// ConflictRecord names one (participant, existing meeting) pair whose
// window overlaps a candidate booking. Returned to callers for display.
type ConflictRecord struct {
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	DepartmentName  string    `json:"department_name"`
	Date            time.Time `json:"conflicting_date"`
	Start           TimeOfDay `json:"conflicting_start"`
	End             TimeOfDay `json:"conflicting_end"`
}

// MeetingSnapshot carries the fields notifications are composed from. For
// cancellations it is captured before the delete transaction runs.
type MeetingSnapshot struct {
	Title          string
	Date           time.Time
	Start          TimeOfDay
	End            TimeOfDay
	Venue          string
	DepartmentName string
}

// MeetingRepository defines storage for meetings and their participant
// rows. Create, Replace, and Delete are each a single atomic unit: the
// meeting row and all its participant rows reach their new state together
// or not at all. Create and Replace re-run the conflict check inside the
// same (serializable) transaction as the write and return a *ConflictError
// when a concurrent booking got there first; the service-level FindConflicts
// pre-check exists only to produce a friendly report.
type MeetingRepository interface {
	Create(ctx context.Context, m *Meeting, participantIDs []string) error
	Replace(ctx context.Context, m *Meeting, participantIDs []string) error
	Delete(ctx context.Context, meetingID string) error
	GetByID(ctx context.Context, meetingID string) (*Meeting, error)
	ListByCreator(ctx context.Context, creatorID, keyword string) ([]*Meeting, error)
	ListByParticipant(ctx context.Context, userID string) ([]*Meeting, error)
	ListMembers(ctx context.Context, meetingID string) ([]*MeetingMember, error)
	ParticipantEmails(ctx context.Context, meetingID string) ([]string, error)
	// FindConflicts returns every overlap between the candidate window and
	// existing bookings of the given participants on date, ordered by
	// participant name then existing start time. excludeMeetingID, when
	// non-empty, omits that meeting (re-checking an edit against itself).
	// Read-only.
	FindConflicts(ctx context.Context, date time.Time, window TimeWindow, participantIDs []string, excludeMeetingID string) ([]ConflictRecord, error)
	// PurgeBefore deletes all meetings dated strictly before cutoff,
	// cascading their participant rows, in one transaction. Returns the
	// number of meetings removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ScheduleInput is the raw caller input for creating or rescheduling a
// meeting. Start and End accept any of the textual formats understood by
// ParseTimeOfDay; Date is an ISO 8601 calendar date.
type ScheduleInput struct {
	Title          string
	Date           string
	Start          string
	End            string
	Venue          string
	DepartmentID   string
	ParticipantIDs []string
}

// SchedulingService is the booking orchestrator: it normalizes input,
// resolves the participant set, runs the conflict check, commits or rejects,
// and triggers best-effort notification after commit.
type SchedulingService interface {
	// Schedule books a new meeting for creatorID. Fails with
	// *ValidationError or *ConflictError; on conflict no writes occur.
	Schedule(ctx context.Context, creatorID string, input ScheduleInput) (*Meeting, error)
	// Reschedule edits an existing meeting. Only the creator may edit
	// (ErrForbidden otherwise); the meeting never conflicts with its own
	// prior state.
	Reschedule(ctx context.Context, meetingID, callerID string, input ScheduleInput) (*Meeting, error)
	// Cancel deletes a meeting and its roster, then notifies participants
	// from a snapshot captured before deletion.
	Cancel(ctx context.Context, meetingID, callerID string) error
	GetMeeting(ctx context.Context, meetingID string) (*Meeting, error)
	ListCreatedBy(ctx context.Context, creatorID, keyword string) ([]*Meeting, error)
	ListScheduleFor(ctx context.Context, userID string) ([]*Meeting, error)
	ListMembers(ctx context.Context, meetingID string) ([]*MeetingMember, error)
	// PurgePastMeetings removes meetings dated before cutoff. Invoked
	// periodically by an external scheduler.
	PurgePastMeetings(ctx context.Context, cutoff time.Time) (int64, error)
}
