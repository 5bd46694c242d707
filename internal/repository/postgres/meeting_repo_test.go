package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"meetingscheduler/internal/domain"
)

var testDate = time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC)

func conflictColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "name", "meeting_date", "start_time", "end_time"})
}

func meetingColumns() []string {
	return []string{"id", "title", "meeting_date", "start_time", "end_time", "venue", "department_id", "creator_id", "created_at", "updated_at"}
}

func TestMeetingRepository_FindConflicts(t *testing.T) {
	ctx := context.Background()
	window := domain.TimeWindow{Start: "10:30:00", End: "11:30:00"}

	tests := []struct {
		name    string
		exclude string
		mock    func(mock sqlmock.Sqlmock)
		want    []domain.ConflictRecord
		wantErr bool
	}{
		{
			name: "overlap reported per participant",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT u\.id, u\.name, COALESCE\(d\.name, ''\)`).
					WithArgs(testDate, pq.Array([]string{"u-1", "u-2"}), "10:30:00", "11:30:00").
					WillReturnRows(conflictColumns().
						AddRow("u-1", "Alice", "Physics", testDate, "10:00:00", "11:00:00").
						AddRow("u-2", "Bob", "Physics", testDate, "10:00:00", "11:00:00"))
			},
			want: []domain.ConflictRecord{
				{ParticipantID: "u-1", ParticipantName: "Alice", DepartmentName: "Physics", Date: testDate, Start: "10:00:00", End: "11:00:00"},
				{ParticipantID: "u-2", ParticipantName: "Bob", DepartmentName: "Physics", Date: testDate, Start: "10:00:00", End: "11:00:00"},
			},
		},
		{
			name: "no conflicts",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT u\.id, u\.name`).
					WithArgs(testDate, pq.Array([]string{"u-1", "u-2"}), "10:30:00", "11:30:00").
					WillReturnRows(conflictColumns())
			},
			want: []domain.ConflictRecord{},
		},
		{
			name:    "exclusion adds a bound meeting id",
			exclude: "m-9",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`AND m\.id <> \$5`).
					WithArgs(testDate, pq.Array([]string{"u-1", "u-2"}), "10:30:00", "11:30:00", "m-9").
					WillReturnRows(conflictColumns())
			},
			want: []domain.ConflictRecord{},
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT u\.id, u\.name`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewMeetingRepository(db)
			got, err := repo.FindConflicts(ctx, testDate, window, []string{"u-1", "u-2"}, tt.exclude)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMeetingRepository_Create(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)
	meeting := func() *domain.Meeting {
		return &domain.Meeting{
			Title:        "Budget review",
			Date:         testDate,
			Start:        "10:00:00",
			End:          "11:00:00",
			Venue:        "Room 4",
			DepartmentID: "d-1",
			CreatorID:    "u-1",
			CreatedAt:    createdAt,
			UpdatedAt:    createdAt,
		}
	}
	participants := []string{"u-1", "u-2"}

	t.Run("commits meeting and roster together", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT u\.id, u\.name`).
			WithArgs(testDate, pq.Array(participants), "10:00:00", "11:00:00").
			WillReturnRows(conflictColumns())
		mock.ExpectQuery(`INSERT INTO meetings`).
			WithArgs("Budget review", testDate, "10:00:00", "11:00:00", "Room 4", "d-1", "u-1", createdAt, createdAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("m-1"))
		mock.ExpectExec(`INSERT INTO meeting_participants`).
			WithArgs("m-1", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO meeting_participants`).
			WithArgs("m-1", "u-2").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		m := meeting()
		repo := NewMeetingRepository(db)
		require.NoError(t, repo.Create(ctx, m, participants))
		require.Equal(t, "m-1", m.ID)
		require.Equal(t, participants, m.ParticipantIDs)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in-transaction conflict aborts without writing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT u\.id, u\.name`).
			WithArgs(testDate, pq.Array(participants), "10:00:00", "11:00:00").
			WillReturnRows(conflictColumns().
				AddRow("u-2", "Bob", "Physics", testDate, "10:30:00", "11:30:00"))
		mock.ExpectRollback()

		repo := NewMeetingRepository(db)
		err = repo.Create(ctx, meeting(), participants)
		var cErr *domain.ConflictError
		require.ErrorAs(t, err, &cErr)
		require.Len(t, cErr.Conflicts, 1)
		require.Equal(t, "Bob", cErr.Conflicts[0].ParticipantName)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("participant insert failure rolls everything back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT u\.id, u\.name`).
			WillReturnRows(conflictColumns())
		mock.ExpectQuery(`INSERT INTO meetings`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("m-1"))
		mock.ExpectExec(`INSERT INTO meeting_participants`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewMeetingRepository(db)
		require.Error(t, repo.Create(ctx, meeting(), participants))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMeetingRepository_Replace(t *testing.T) {
	ctx := context.Background()
	m := &domain.Meeting{
		ID:           "m-1",
		Title:        "Budget review v2",
		Date:         testDate,
		Start:        "10:15:00",
		End:          "11:15:00",
		Venue:        "Room 5",
		DepartmentID: "d-1",
		CreatorID:    "u-1",
	}
	participants := []string{"u-1", "u-3"}

	t.Run("updates row and swaps roster in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		updatedAt := time.Date(2026, 1, 21, 8, 0, 0, 0, time.UTC)
		mock.ExpectBegin()
		mock.ExpectQuery(`AND m\.id <> \$5`).
			WithArgs(testDate, pq.Array(participants), "10:15:00", "11:15:00", "m-1").
			WillReturnRows(conflictColumns())
		mock.ExpectQuery(`UPDATE meetings`).
			WithArgs("Budget review v2", testDate, "10:15:00", "11:15:00", "Room 5", "d-1", "m-1").
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updatedAt))
		mock.ExpectExec(`DELETE FROM meeting_participants`).
			WithArgs("m-1").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO meeting_participants`).
			WithArgs("m-1", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO meeting_participants`).
			WithArgs("m-1", "u-3").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewMeetingRepository(db)
		require.NoError(t, repo.Replace(ctx, m, participants))
		require.Equal(t, updatedAt, m.UpdatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing meeting maps to not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`AND m\.id <> \$5`).
			WillReturnRows(conflictColumns())
		mock.ExpectQuery(`UPDATE meetings`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		repo := NewMeetingRepository(db)
		err = repo.Replace(ctx, m, participants)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMeetingRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes roster before meeting row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM meeting_participants`).
			WithArgs("m-1").WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM meetings`).
			WithArgs("m-1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewMeetingRepository(db)
		require.NoError(t, repo.Delete(ctx, "m-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing meeting maps to not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM meeting_participants`).
			WithArgs("m-missing").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM meetings`).
			WithArgs("m-missing").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewMeetingRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "m-missing"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMeetingRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)

	t.Run("returns meeting with roster", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, meeting_date`).
			WithArgs("m-1").
			WillReturnRows(sqlmock.NewRows(meetingColumns()).
				AddRow("m-1", "Budget review", testDate, "10:00:00", "11:00:00", "Room 4", "d-1", "u-1", createdAt, createdAt))
		mock.ExpectQuery(`SELECT user_id FROM meeting_participants`).
			WithArgs("m-1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u-1").AddRow("u-2"))

		repo := NewMeetingRepository(db)
		got, err := repo.GetByID(ctx, "m-1")
		require.NoError(t, err)
		require.Equal(t, "Budget review", got.Title)
		require.Equal(t, domain.TimeOfDay("10:00:00"), got.Start)
		require.Equal(t, []string{"u-1", "u-2"}, got.ParticipantIDs)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, meeting_date`).
			WithArgs("m-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewMeetingRepository(db)
		_, err = repo.GetByID(ctx, "m-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMeetingRepository_ListByCreator(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)

	t.Run("keyword filter stays scoped to the creator", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`AND \(m\.title ILIKE \$2 OR d\.name ILIKE \$2\)`).
			WithArgs("u-1", "%budget%").
			WillReturnRows(sqlmock.NewRows(meetingColumns()).
				AddRow("m-1", "Budget review", testDate, "10:00:00", "11:00:00", "Room 4", "d-1", "u-1", createdAt, createdAt))

		repo := NewMeetingRepository(db)
		got, err := repo.ListByCreator(ctx, "u-1", "budget")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "m-1", got[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no keyword lists all own meetings", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE m\.creator_id = \$1`).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(meetingColumns()))

		repo := NewMeetingRepository(db)
		got, err := repo.ListByCreator(ctx, "u-1", "")
		require.NoError(t, err)
		require.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMeetingRepository_ParticipantEmails(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT u\.email`).
		WithArgs("m-1").
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("alice@example.com").AddRow("bob@example.com"))

	repo := NewMeetingRepository(db)
	got, err := repo.ParticipantEmails(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, []string{"alice@example.com", "bob@example.com"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepository_PurgeBefore(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM meetings WHERE meeting_date < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	repo := NewMeetingRepository(db)
	n, err := repo.PurgeBefore(ctx, cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMapConstraintErr(t *testing.T) {
	fkErr := &pq.Error{Code: "23503"}
	require.ErrorIs(t, mapConstraintErr(fkErr), domain.ErrNotFound)

	other := errors.New("boom")
	require.Equal(t, other, mapConstraintErr(other))
}
