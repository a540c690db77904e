package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewear/rewear-exchange/internal/model"
)

func newItemMock(t *testing.T) (*ItemRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewItemRepo(db), mock
}

func TestDeleteRefusedWhilePendingRequestsExist(t *testing.T) {
	repo, mock := newItemMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM exchange_requests`).
		WithArgs(uint64(2), uint64(2), model.RequestStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 2)
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRemovesUnreferencedItem(t *testing.T) {
	repo, mock := newItemMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM exchange_requests`).
		WithArgs(uint64(2), uint64(2), model.RequestStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM items").
		WithArgs(uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingItem(t *testing.T) {
	repo, mock := newItemMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM exchange_requests`).
		WithArgs(uint64(99), uint64(99), model.RequestStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM items").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrItemNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwnedRejectsForeignItem(t *testing.T) {
	repo, mock := newItemMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT owner_id FROM items").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(4))
	mock.ExpectRollback()

	err := repo.DeleteOwned(context.Background(), 2, 3)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwnedRemovesOwnItem(t *testing.T) {
	repo, mock := newItemMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT owner_id FROM items").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM exchange_requests`).
		WithArgs(uint64(2), uint64(2), model.RequestStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM items").
		WithArgs(uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteOwned(context.Background(), 2, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusUnknownItem(t *testing.T) {
	repo, mock := newItemMock(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.UpdateStatus(context.Background(), 7, model.ItemStatusApproved)
	assert.ErrorIs(t, err, ErrItemNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIdempotent(t *testing.T) {
	repo, mock := newItemMock(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("UPDATE items SET status = ").
		WithArgs(model.ItemStatusApproved, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateStatus(context.Background(), 7, model.ItemStatusApproved))
	require.NoError(t, mock.ExpectationsWereMet())
}
