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

func newMock(t *testing.T) (*LedgerRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewLedgerRepo(db), mock
}

func TestDebitTxInsufficientBalance(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET points = points - ").
		WithArgs(int64(50), uint64(7), int64(50)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	err = repo.DebitTx(context.Background(), tx, 7, 50)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitTxRejectsNonPositiveAmount(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := repo.db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.DebitTx(context.Background(), tx, 7, 0), ErrInvalidRequest)
	assert.ErrorIs(t, repo.DebitTx(context.Background(), tx, 7, -10), ErrInvalidRequest)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitTxSuccess(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET points = points - ").
		WithArgs(int64(30), uint64(3), int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.DebitTx(context.Background(), tx, 3, 30))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditWritesBalanceAndLedgerRow(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET points = points \\+ ").
		WithArgs(int64(100), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO point_transactions").
		WithArgs(uint64(5), int64(100), model.TxTypeBonus, "Welcome bonus", nil).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	err := repo.Credit(context.Background(), 5, 100, model.TxTypeBonus, "Welcome bonus")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditRollsBackWhenUserMissing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET points = points \\+ ").
		WithArgs(int64(100), uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Credit(context.Background(), 99, 100, model.TxTypeBonus, "Welcome bonus")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendTransactionTxSetsID(t *testing.T) {
	repo, mock := newMock(t)

	reqID := uint64(11)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO point_transactions").
		WithArgs(uint64(2), int64(-40), model.TxTypeDebit, "Points redeemed for item #9", reqID).
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectCommit()

	tx, err := repo.db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	entry := &model.PointTransaction{
		UserID:      2,
		Amount:      -40,
		Type:        model.TxTypeDebit,
		Description: "Points redeemed for item #9",
		RequestID:   &reqID,
	}
	require.NoError(t, repo.AppendTransactionTx(context.Background(), tx, entry))
	assert.Equal(t, uint64(77), entry.ID)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUserOrdersNewestFirst(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "amount", "type", "description", "request_id", "created_at"}).
		AddRow(3, 5, -20, model.TxTypeDebit, "Points redeemed for item #4", 8, now).
		AddRow(1, 5, 100, model.TxTypeBonus, "Welcome bonus", nil, now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, user_id, amount, type, description, request_id, created_at").
		WithArgs(uint64(5)).
		WillReturnRows(rows)

	entries, err := repo.ListByUser(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(-20), entries[0].Amount)
	require.NotNil(t, entries[0].RequestID)
	assert.Equal(t, uint64(8), *entries[0].RequestID)
	assert.Nil(t, entries[1].RequestID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUserEmpty(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT id, user_id, amount, type, description, request_id, created_at").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "type", "description", "request_id", "created_at"}))

	entries, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
	require.NoError(t, mock.ExpectationsWereMet())
}
