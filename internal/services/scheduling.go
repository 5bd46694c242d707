package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meetingscheduler/internal/domain"
)

type schedulingService struct {
	meetingRepo    domain.MeetingRepository
	userRepo       domain.UserRepository
	departmentRepo domain.DepartmentRepository
	notifier       domain.NotificationDispatcher
	contextTimeout time.Duration
}

func NewSchedulingService(meetingRepo domain.MeetingRepository,
	userRepo domain.UserRepository,
	departmentRepo domain.DepartmentRepository,
	notifier domain.NotificationDispatcher,
	timeout time.Duration,
) domain.SchedulingService {
	return &schedulingService{
		meetingRepo:    meetingRepo,
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
		notifier:       notifier,
		contextTimeout: timeout,
	}
}

// resolveParticipantSet dedupes the raw selection (preserving order) and
// appends the creator when absent. The creator is always on the roster.
func resolveParticipantSet(rawSelectedIDs []string, creatorID string) ([]string, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(rawSelectedIDs)+1)
	for _, id := range rawSelectedIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if creatorID != "" {
		if _, ok := seen[creatorID]; !ok {
			ids = append(ids, creatorID)
		}
	}
	if len(ids) == 0 {
		return nil, domain.NewValidationError("no participants")
	}
	return ids, nil
}

// normalized holds validated booking input shared by Schedule and Reschedule.
type normalized struct {
	date           time.Time
	window         domain.TimeWindow
	participantIDs []string
	emails         []string
	departmentName string
}

func (s *schedulingService) normalizeInput(ctx context.Context, creatorID string, input domain.ScheduleInput) (*normalized, error) {
	if input.Title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	date, err := domain.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}
	start, err := domain.ParseTimeOfDay(input.Start)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseTimeOfDay(input.End)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, domain.NewValidationError("start time must be before end time")
	}

	ids, err := resolveParticipantSet(input.ParticipantIDs, creatorID)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(ids))
	for _, id := range ids {
		u, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewValidationError("unknown participant: " + id)
			}
			return nil, fmt.Errorf("lookup participant: %w", err)
		}
		if !u.Eligible() {
			return nil, domain.NewValidationError("unknown participant: " + id)
		}
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}

	dept, err := s.departmentRepo.GetByID(ctx, input.DepartmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("unknown department")
		}
		return nil, fmt.Errorf("lookup department: %w", err)
	}

	return &normalized{
		date:           date,
		window:         domain.TimeWindow{Start: start, End: end},
		participantIDs: ids,
		emails:         emails,
		departmentName: dept.Name,
	}, nil
}

func (s *schedulingService) Schedule(ctx context.Context, creatorID string, input domain.ScheduleInput) (*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if creatorID == "" {
		return nil, domain.NewValidationError("creator is required")
	}
	n, err := s.normalizeInput(ctx, creatorID, input)
	if err != nil {
		return nil, err
	}

	// Friendly pre-check; the repository re-runs this inside the write
	// transaction, which is the authoritative race defense.
	conflicts, err := s.meetingRepo.FindConflicts(ctx, n.date, n.window, n.participantIDs, "")
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, &domain.ConflictError{Conflicts: conflicts}
	}

	now := time.Now()
	meeting := &domain.Meeting{
		Title:        input.Title,
		Date:         n.date,
		Start:        n.window.Start,
		End:          n.window.End,
		Venue:        input.Venue,
		DepartmentID: input.DepartmentID,
		CreatorID:    creatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.meetingRepo.Create(ctx, meeting, n.participantIDs); err != nil {
		var cErr *domain.ConflictError
		if errors.As(err, &cErr) {
			return nil, cErr
		}
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	s.notifier.Notify(ctx, n.emails, domain.NotificationCreated, snapshotOf(meeting, n.departmentName))
	return meeting, nil
}

func (s *schedulingService) Reschedule(ctx context.Context, meetingID, callerID string, input domain.ScheduleInput) (*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	if existing.CreatorID != callerID {
		return nil, domain.ErrForbidden
	}

	n, err := s.normalizeInput(ctx, existing.CreatorID, input)
	if err != nil {
		return nil, err
	}

	// The edited meeting is excluded so it never conflicts with its own
	// prior window; every other meeting is still checked.
	conflicts, err := s.meetingRepo.FindConflicts(ctx, n.date, n.window, n.participantIDs, meetingID)
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, &domain.ConflictError{Conflicts: conflicts}
	}

	meeting := &domain.Meeting{
		ID:           meetingID,
		Title:        input.Title,
		Date:         n.date,
		Start:        n.window.Start,
		End:          n.window.End,
		Venue:        input.Venue,
		DepartmentID: input.DepartmentID,
		CreatorID:    existing.CreatorID,
		CreatedAt:    existing.CreatedAt,
	}
	if err := s.meetingRepo.Replace(ctx, meeting, n.participantIDs); err != nil {
		var cErr *domain.ConflictError
		if errors.As(err, &cErr) {
			return nil, cErr
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("replace meeting: %w", err)
	}

	s.notifier.Notify(ctx, n.emails, domain.NotificationUpdated, snapshotOf(meeting, n.departmentName))
	return meeting, nil
}

func (s *schedulingService) Cancel(ctx context.Context, meetingID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get meeting: %w", err)
	}
	if existing.CreatorID != callerID {
		return domain.ErrForbidden
	}

	// The cancellation notice needs roster emails and meeting details;
	// both are gone once the delete commits, so capture them first.
	emails, err := s.meetingRepo.ParticipantEmails(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("participant emails: %w", err)
	}
	snapshot := snapshotOf(existing, s.departmentName(ctx, existing.DepartmentID))

	if err := s.meetingRepo.Delete(ctx, meetingID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete meeting: %w", err)
	}

	s.notifier.Notify(ctx, emails, domain.NotificationCancelled, snapshot)
	return nil
}

func (s *schedulingService) GetMeeting(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	m, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	return m, nil
}

func (s *schedulingService) ListCreatedBy(ctx context.Context, creatorID, keyword string) ([]*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	meetings, err := s.meetingRepo.ListByCreator(ctx, creatorID, keyword)
	if err != nil {
		return nil, fmt.Errorf("list created meetings: %w", err)
	}
	if meetings == nil {
		meetings = []*domain.Meeting{}
	}
	return meetings, nil
}

func (s *schedulingService) ListScheduleFor(ctx context.Context, userID string) ([]*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	meetings, err := s.meetingRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list schedule: %w", err)
	}
	if meetings == nil {
		meetings = []*domain.Meeting{}
	}
	return meetings, nil
}

func (s *schedulingService) ListMembers(ctx context.Context, meetingID string) ([]*domain.MeetingMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if _, err := s.meetingRepo.GetByID(ctx, meetingID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	members, err := s.meetingRepo.ListMembers(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if members == nil {
		members = []*domain.MeetingMember{}
	}
	return members, nil
}

func (s *schedulingService) PurgePastMeetings(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	n, err := s.meetingRepo.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge past meetings: %w", err)
	}
	return n, nil
}

func snapshotOf(m *domain.Meeting, departmentName string) domain.MeetingSnapshot {
	return domain.MeetingSnapshot{
		Title:          m.Title,
		Date:           m.Date,
		Start:          m.Start,
		End:            m.End,
		Venue:          m.Venue,
		DepartmentName: departmentName,
	}
}

// departmentName is a best-effort lookup for notification labeling; a
// missing department never blocks a cancellation.
func (s *schedulingService) departmentName(ctx context.Context, departmentID string) string {
	dept, err := s.departmentRepo.GetByID(ctx, departmentID)
	if err != nil {
		return ""
	}
	return dept.Name
}
