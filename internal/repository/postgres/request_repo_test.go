package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

var requestCols = []string{"id", "event_id", "requester_id", "created", "status"}

func TestRequestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("returns generated id", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO participation_requests`).
			WithArgs("e1", "u1", sqlmock.AnyArg(), string(domain.RequestStatusPending)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r1"))

		repo := NewRequestRepository(db)
		req := domain.NewParticipationRequest("e1", "u1", time.Now())
		require.NoError(t, repo.Create(ctx, req))
		require.Equal(t, "r1", req.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrConflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO participation_requests`).
			WillReturnError(&pq.Error{Code: pgUniqueViolation})

		repo := NewRequestRepository(db)
		req := domain.NewParticipationRequest("e1", "u1", time.Now())
		err = repo.Create(ctx, req)
		require.ErrorIs(t, err, domain.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRequestRepository_GetByIDAndRequester(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, requester_id, created, status FROM participation_requests WHERE id = \$1 AND requester_id = \$2`).
			WithArgs("r1", "u1").
			WillReturnRows(sqlmock.NewRows(requestCols).
				AddRow("r1", "e1", "u1", time.Now(), string(domain.RequestStatusConfirmed)))

		repo := NewRequestRepository(db)
		req, err := repo.GetByIDAndRequester(ctx, "r1", "u1")
		require.NoError(t, err)
		require.Equal(t, domain.RequestStatusConfirmed, req.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other requester reads as missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, requester_id, created, status FROM participation_requests`).
			WithArgs("r1", "u2").
			WillReturnError(sql.ErrNoRows)

		repo := NewRequestRepository(db)
		_, err = repo.GetByIDAndRequester(ctx, "r1", "u2")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRequestRepository_ExistsByRequesterAndEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("u1", "e1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewRequestRepository(db)
	exists, err := repo.ExistsByRequesterAndEvent(context.Background(), "u1", "e1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_ListByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input skips the query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRequestRepository(db)
		reqs, err := repo.ListByIDs(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, reqs)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("loads by id set", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, requester_id, created, status FROM participation_requests WHERE id = ANY\(\$1\)`).
			WithArgs(pq.Array([]string{"r1", "r2"})).
			WillReturnRows(sqlmock.NewRows(requestCols).
				AddRow("r1", "e1", "u1", time.Now(), string(domain.RequestStatusPending)).
				AddRow("r2", "e1", "u2", time.Now(), string(domain.RequestStatusPending)))

		repo := NewRequestRepository(db)
		reqs, err := repo.ListByIDs(ctx, []string{"r1", "r2"})
		require.NoError(t, err)
		require.Len(t, reqs, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRequestRepository_UpdateStatuses(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input is a no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRequestRepository(db)
		require.NoError(t, repo.UpdateStatuses(ctx, nil, domain.RequestStatusConfirmed))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bulk update by id set", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE participation_requests SET status = \$2 WHERE id = ANY\(\$1\)`).
			WithArgs(pq.Array([]string{"r1", "r2"}), string(domain.RequestStatusRejected)).
			WillReturnResult(sqlmock.NewResult(0, 2))

		repo := NewRequestRepository(db)
		require.NoError(t, repo.UpdateStatuses(ctx, []string{"r1", "r2"}, domain.RequestStatusRejected))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRequestRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE participation_requests SET status = \$2 WHERE id = \$1`).
		WithArgs("missing", string(domain.RequestStatusCanceled)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRequestRepository(db)
	err = repo.UpdateStatus(context.Background(), "missing", domain.RequestStatusCanceled)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
