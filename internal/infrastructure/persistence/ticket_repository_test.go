package persistence

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/infrastructure/database"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
)

func newTicketRepoWithMock(t *testing.T) (*TicketRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tm := NewTransactionManager(database.NewConnectionFromDB(db))
	return NewTicketRepository(db, tm), mock
}

func ticketRow(id string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "category_id", "creator_id", "region_id", "company_id", "subject",
		"document_path", "current_step_id", "approver_id", "status", "created_at", "updated_at",
	}).AddRow(id, "cat-1", "u-creator", nil, nil, "Broken laptop", nil, "s1", nil, constants.TicketStatusInProgress, now, now)
}

func TestTicketRepository_GetByID(t *testing.T) {
	repo, mock := newTicketRepoWithMock(t)

	sel := "SELECT id, category_id, creator_id, region_id, company_id, subject, document_path, current_step_id, approver_id, status, created_at, updated_at FROM tickets WHERE id = ?"
	assignees := "SELECT user_id FROM ticket_assignees WHERE ticket_id = ? ORDER BY position ASC"

	t.Run("LoadsTicketWithOrderedAssignees", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(sel)).WithArgs("t1").WillReturnRows(ticketRow("t1"))
		mock.ExpectQuery(regexp.QuoteMeta(assignees)).WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u-primary").AddRow("u-second"))

		ticket, err := repo.GetByID(context.Background(), "t1")
		assert.NoError(t, err)
		require.NotNil(t, ticket)
		assert.Equal(t, []string{"u-primary", "u-second"}, ticket.AssigneeIDs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingTicketIsNil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(sel)).WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "category_id", "creator_id", "region_id", "company_id", "subject",
				"document_path", "current_step_id", "approver_id", "status", "created_at", "updated_at",
			}))

		ticket, err := repo.GetByID(context.Background(), "missing")
		assert.NoError(t, err)
		assert.Nil(t, ticket)
	})
}

func TestTicketRepository_GetByIDForUpdate(t *testing.T) {
	repo, mock := newTicketRepoWithMock(t)

	locked := "SELECT id, category_id, creator_id, region_id, company_id, subject, document_path, current_step_id, approver_id, status, created_at, updated_at FROM tickets WHERE id = ? FOR UPDATE"
	assignees := "SELECT user_id FROM ticket_assignees WHERE ticket_id = ? ORDER BY position ASC"

	mock.ExpectQuery(regexp.QuoteMeta(locked)).WithArgs("t1").WillReturnRows(ticketRow("t1"))
	mock.ExpectQuery(regexp.QuoteMeta(assignees)).WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	ticket, err := repo.GetByIDForUpdate(context.Background(), "t1")
	assert.NoError(t, err)
	require.NotNil(t, ticket)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_ReplaceAssignees(t *testing.T) {
	repo, mock := newTicketRepoWithMock(t)

	del := "DELETE FROM ticket_assignees WHERE ticket_id = ?"
	ins := "INSERT INTO ticket_assignees (ticket_id, user_id, position) VALUES (?, ?, ?)"

	t.Run("InsertsInPositionOrder", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(del)).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(ins)).WithArgs("t1", "u-a", 0).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta(ins)).WithArgs("t1", "u-b", 1).WillReturnResult(sqlmock.NewResult(2, 1))

		err := repo.ReplaceAssignees(context.Background(), "t1", []string{"u-a", "u-b"})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyListOnlyClears", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(del)).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.ReplaceAssignees(context.Background(), "t1", nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTicketRepository_UpdateStep(t *testing.T) {
	repo, mock := newTicketRepoWithMock(t)

	update := "UPDATE tickets SET current_step_id = ?, approver_id = ?, status = ?, updated_at = ? WHERE id = ?"
	stepID := "s2"
	approverID := "u-boss"

	mock.ExpectExec(regexp.QuoteMeta(update)).
		WithArgs(stepID, approverID, constants.TicketStatusInProgress, sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStep(context.Background(), "t1", &stepID, &approverID, constants.TicketStatusInProgress)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_ListInProgress(t *testing.T) {
	repo, mock := newTicketRepoWithMock(t)

	list := "SELECT id, category_id, creator_id, region_id, company_id, subject, document_path, current_step_id, approver_id, status, created_at, updated_at FROM tickets WHERE current_step_id IS NOT NULL AND status != ?"
	assignees := "SELECT user_id FROM ticket_assignees WHERE ticket_id = ? ORDER BY position ASC"

	mock.ExpectQuery(regexp.QuoteMeta(list)).WithArgs(constants.TicketStatusFinished).
		WillReturnRows(ticketRow("t1"))
	mock.ExpectQuery(regexp.QuoteMeta(assignees)).WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u-a"))

	tickets, err := repo.ListInProgress(context.Background())
	assert.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, []string{"u-a"}, tickets[0].AssigneeIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_JoinsInjectedTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tm := NewTransactionManager(database.NewConnectionFromDB(db))
	repo := NewTicketRepository(db, tm)

	locked := "SELECT id, category_id, creator_id, region_id, company_id, subject, document_path, current_step_id, approver_id, status, created_at, updated_at FROM tickets WHERE id = ? FOR UPDATE"
	assignees := "SELECT user_id FROM ticket_assignees WHERE ticket_id = ? ORDER BY position ASC"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(locked)).WithArgs("t1").WillReturnRows(ticketRow("t1"))
	mock.ExpectQuery(regexp.QuoteMeta(assignees)).WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectCommit()

	err = tm.WithTransaction(func(tx *sql.Tx) error {
		ctx := tm.InjectTx(context.Background(), tx)
		ticket, err := repo.GetByIDForUpdate(ctx, "t1")
		if err != nil {
			return err
		}
		assert.NotNil(t, ticket)
		return nil
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
