package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"meetingscheduler/internal/domain"
)

type meetingRepository struct {
	DB *sql.DB
}

func NewMeetingRepository(db *sql.DB) domain.MeetingRepository {
	return &meetingRepository{
		DB: db,
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx, letting the conflict
// query run standalone (pre-check) or inside a write transaction (the
// authoritative check).
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const conflictQuery = `
	SELECT u.id, u.name, COALESCE(d.name, ''), m.meeting_date, m.start_time, m.end_time
	FROM meetings m
	JOIN meeting_participants mp ON mp.meeting_id = m.id
	JOIN users u ON u.id = mp.user_id
	LEFT JOIN departments d ON d.id = m.department_id
	WHERE m.meeting_date = $1
	  AND mp.user_id = ANY($2)
	  AND $3::time < m.end_time
	  AND $4::time > m.start_time
`

func findConflicts(ctx context.Context, q querier, date time.Time, window domain.TimeWindow, participantIDs []string, excludeMeetingID string) ([]domain.ConflictRecord, error) {
	query := conflictQuery
	args := []any{date, pq.Array(participantIDs), string(window.Start), string(window.End)}
	if excludeMeetingID != "" {
		query += "	  AND m.id <> $5\n"
		args = append(args, excludeMeetingID)
	}
	query += "	ORDER BY u.name, m.start_time"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	conflicts := make([]domain.ConflictRecord, 0)
	for rows.Next() {
		var c domain.ConflictRecord
		var start, end string
		if err := rows.Scan(&c.ParticipantID, &c.ParticipantName, &c.DepartmentName, &c.Date, &start, &end); err != nil {
			return nil, err
		}
		c.Start = domain.TimeOfDay(start)
		c.End = domain.TimeOfDay(end)
		conflicts = append(conflicts, c)
	}
	return conflicts, rows.Err()
}

func (r *meetingRepository) FindConflicts(ctx context.Context, date time.Time, window domain.TimeWindow, participantIDs []string, excludeMeetingID string) ([]domain.ConflictRecord, error) {
	return findConflicts(ctx, r.DB, date, window, participantIDs, excludeMeetingID)
}

// Create inserts the meeting row and one participant row per resolved id as
// a single serializable transaction. The conflict check is re-run inside the
// transaction so that two concurrent bookings overlapping for a shared
// participant cannot both commit.
func (r *meetingRepository) Create(ctx context.Context, m *domain.Meeting, participantIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	conflicts, err := findConflicts(ctx, tx, m.Date, m.Window(), participantIDs, "")
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}
	if len(conflicts) > 0 {
		return &domain.ConflictError{Conflicts: conflicts}
	}

	query := `
		INSERT INTO meetings (title, meeting_date, start_time, end_time, venue, department_id, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3::time, $4::time, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		m.Title, m.Date, string(m.Start), string(m.End), m.Venue, m.DepartmentID, m.CreatorID, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		return mapConstraintErr(err)
	}

	if err := insertParticipants(ctx, tx, m.ID, participantIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	m.ParticipantIDs = participantIDs
	return nil
}

// Replace updates the meeting row and swaps the participant set in the same
// serializable transaction, re-checking conflicts with the edited meeting
// itself excluded.
func (r *meetingRepository) Replace(ctx context.Context, m *domain.Meeting, participantIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	conflicts, err := findConflicts(ctx, tx, m.Date, m.Window(), participantIDs, m.ID)
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}
	if len(conflicts) > 0 {
		return &domain.ConflictError{Conflicts: conflicts}
	}

	query := `
		UPDATE meetings
		SET title = $1, meeting_date = $2, start_time = $3::time, end_time = $4::time, venue = $5, department_id = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		m.Title, m.Date, string(m.Start), string(m.End), m.Venue, m.DepartmentID, m.ID,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapConstraintErr(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM meeting_participants WHERE meeting_id = $1`, m.ID); err != nil {
		return fmt.Errorf("clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, m.ID, participantIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	m.ParticipantIDs = participantIDs
	return nil
}

// Delete removes participant rows before the meeting row (referential
// ordering) within one transaction.
func (r *meetingRepository) Delete(ctx context.Context, meetingID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM meeting_participants WHERE meeting_id = $1`, meetingID); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, meetingID)
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (r *meetingRepository) GetByID(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	query := `
		SELECT id, title, meeting_date, start_time, end_time, venue, department_id, creator_id, created_at, updated_at
		FROM meetings
		WHERE id = $1
	`
	m, err := scanMeeting(r.DB.QueryRowContext(ctx, query, meetingID))
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT user_id FROM meeting_participants WHERE meeting_id = $1 ORDER BY user_id`, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		m.ParticipantIDs = append(m.ParticipantIDs, id)
	}
	return m, rows.Err()
}

func (r *meetingRepository) ListByCreator(ctx context.Context, creatorID, keyword string) ([]*domain.Meeting, error) {
	query := `
		SELECT m.id, m.title, m.meeting_date, m.start_time, m.end_time, m.venue, m.department_id, m.creator_id, m.created_at, m.updated_at
		FROM meetings m
		LEFT JOIN departments d ON d.id = m.department_id
		WHERE m.creator_id = $1
	`
	args := []any{creatorID}
	if keyword != "" {
		// The title/department filter is grouped so it narrows the
		// creator's own meetings rather than widening past them.
		query += `	  AND (m.title ILIKE $2 OR d.name ILIKE $2)` + "\n"
		args = append(args, "%"+keyword+"%")
	}
	query += `	ORDER BY m.meeting_date DESC, m.start_time`
	return r.queryMeetings(ctx, query, args...)
}

func (r *meetingRepository) ListByParticipant(ctx context.Context, userID string) ([]*domain.Meeting, error) {
	query := `
		SELECT m.id, m.title, m.meeting_date, m.start_time, m.end_time, m.venue, m.department_id, m.creator_id, m.created_at, m.updated_at
		FROM meetings m
		JOIN meeting_participants mp ON mp.meeting_id = m.id
		WHERE mp.user_id = $1
		ORDER BY m.meeting_date DESC, m.start_time
	`
	return r.queryMeetings(ctx, query, userID)
}

func (r *meetingRepository) ListMembers(ctx context.Context, meetingID string) ([]*domain.MeetingMember, error) {
	query := `
		SELECT u.id, u.name, u.email, u.role, COALESCE(d.name, '')
		FROM meeting_participants mp
		JOIN users u ON u.id = mp.user_id
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE mp.meeting_id = $1
		ORDER BY u.name
	`
	rows, err := r.DB.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.MeetingMember, 0)
	for rows.Next() {
		m := &domain.MeetingMember{}
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role, &m.DepartmentName); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *meetingRepository) ParticipantEmails(ctx context.Context, meetingID string) ([]string, error) {
	query := `
		SELECT DISTINCT u.email
		FROM meeting_participants mp
		JOIN users u ON u.id = mp.user_id
		WHERE mp.meeting_id = $1 AND u.email <> ''
	`
	rows, err := r.DB.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// PurgeBefore removes all meetings dated strictly before cutoff; participant
// rows go with them via ON DELETE CASCADE, so the whole purge is one atomic
// statement.
func (r *meetingRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM meetings WHERE meeting_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge meetings: %w", err)
	}
	return result.RowsAffected()
}

func insertParticipants(ctx context.Context, tx *sql.Tx, meetingID string, participantIDs []string) error {
	query := `INSERT INTO meeting_participants (meeting_id, user_id) VALUES ($1, $2)`
	for _, userID := range participantIDs {
		if _, err := tx.ExecContext(ctx, query, meetingID, userID); err != nil {
			return mapConstraintErr(err)
		}
	}
	return nil
}

func (r *meetingRepository) queryMeetings(ctx context.Context, query string, args ...any) ([]*domain.Meeting, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	meetings := make([]*domain.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*domain.Meeting, error) {
	m := &domain.Meeting{}
	var start, end string
	err := row.Scan(&m.ID, &m.Title, &m.Date, &start, &end, &m.Venue, &m.DepartmentID, &m.CreatorID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	m.Start = domain.TimeOfDay(start)
	m.End = domain.TimeOfDay(end)
	return m, nil
}

// mapConstraintErr converts foreign-key violations (an unknown department or
// participant id slipping past service validation) into ErrNotFound; other
// storage errors pass through as fatal.
func mapConstraintErr(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return domain.ErrNotFound
	}
	return err
}
