package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewear/rewear-exchange/internal/model"
)

func newRequestMock(t *testing.T) (*RequestRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRequestRepo(db), mock
}

func TestTransitionStatusTxCompareAndSwap(t *testing.T) {
	repo, mock := newRequestMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE exchange_requests SET status = ").
		WithArgs(model.RequestStatusApproved, uint64(4), model.RequestStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.TransitionStatusTx(context.Background(), tx, 4,
		model.RequestStatusPending, model.RequestStatusApproved))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusTxAlreadySettled(t *testing.T) {
	repo, mock := newRequestMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE exchange_requests SET status = ").
		WithArgs(model.RequestStatusApproved, uint64(4), model.RequestStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	err = repo.TransitionStatusTx(context.Background(), tx, 4,
		model.RequestStatusPending, model.RequestStatusApproved)
	assert.ErrorIs(t, err, ErrAlreadySettled)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDTxNotFound(t *testing.T) {
	repo, mock := newRequestMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, item_id, requester_id, owner_id, kind, offered_item_id, offered_points, status").
		WithArgs(uint64(123)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	tx, err := repo.db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.GetByIDTx(context.Background(), tx, 123)
	assert.ErrorIs(t, err, ErrRequestNotFound)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDTxScansOfferedItem(t *testing.T) {
	repo, mock := newRequestMock(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "item_id", "requester_id", "owner_id", "kind",
		"offered_item_id", "offered_points", "status", "created_at", "updated_at",
	}).AddRow(9, 2, 3, 4, model.RequestKindSwap, 15, 0, model.RequestStatusPending, now, now)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, item_id, requester_id, owner_id, kind, offered_item_id, offered_points, status").
		WithArgs(uint64(9)).
		WillReturnRows(rows)
	mock.ExpectCommit()

	tx, err := repo.db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	req, err := repo.GetByIDTx(context.Background(), tx, 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), req.ItemID)
	assert.Equal(t, model.RequestKindSwap, req.Kind)
	require.NotNil(t, req.OfferedItemID)
	assert.Equal(t, uint64(15), *req.OfferedItemID)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	repo, mock := newRequestMock(t)

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO exchange_requests").
		WithArgs(uint64(2), uint64(3), uint64(4), model.RequestKindPoints, nil, int64(60), model.RequestStatusPending).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectQuery("SELECT created_at, updated_at FROM exchange_requests").
		WithArgs(uint64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	req := &model.ExchangeRequest{
		ItemID:        2,
		RequesterID:   3,
		OwnerID:       4,
		Kind:          model.RequestKindPoints,
		OfferedPoints: 60,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.Equal(t, uint64(31), req.ID)
	assert.Equal(t, model.RequestStatusPending, req.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListForOwnerJoinsItems(t *testing.T) {
	repo, mock := newRequestMock(t)

	rows := sqlmock.NewRows([]string{
		"id", "kind", "status", "item_id", "title", "points", "item_status",
		"requester_id", "owner_id", "offered_item_id", "offered_points", "created_at",
	}).AddRow(5, model.RequestKindPoints, model.RequestStatusPending, 2, "Wool coat", 80,
		model.ItemStatusApproved, 3, 4, nil, int64(60), "2026-08-30 10:00:00")
	mock.ExpectQuery("FROM exchange_requests r").
		WithArgs(uint64(4)).
		WillReturnRows(rows)

	details, err := repo.ListForOwner(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Wool coat", details[0].ItemTitle)
	assert.Nil(t, details[0].OfferedItemID)
	require.NoError(t, mock.ExpectationsWereMet())
}
