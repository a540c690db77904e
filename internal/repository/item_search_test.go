package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewear/rewear-exchange/internal/model"
)

func TestCatalogQueryNormalizeDefaults(t *testing.T) {
	q := CatalogQuery{}
	require.NoError(t, q.Normalize())
	assert.Equal(t, model.ItemStatusApproved, q.Status)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.PageSize)
}

func TestCatalogQueryNormalizeClampsPagination(t *testing.T) {
	q := CatalogQuery{Page: -3, PageSize: 5000}
	require.NoError(t, q.Normalize())
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.PageSize)
}

func TestCatalogQueryNormalizeRejectsUnknownEnums(t *testing.T) {
	cases := []CatalogQuery{
		{Category: "unisex"},
		{Size: "XXXL"},
		{Condition: "mint"},
		{Status: "lost"},
	}
	for _, q := range cases {
		q := q
		assert.ErrorIs(t, q.Normalize(), ErrInvalidRequest)
	}
}

func TestSearchReturnsRowsAndTotal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewItemRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(model.ItemStatusApproved, "women", "%coat%", "%coat%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{
		"id", "title", "category", "type", "size", "item_condition",
		"points", "status", "created_at", "owner_id", "owner_name", "owner_email", "images",
	}).AddRow(7, "Wool coat", "women", "jacket", "M", "good",
		80, model.ItemStatusApproved, "2026-08-30 10:00:00", 4, "Dana Reed", "dana@example.com", `["a.jpg"]`)
	mock.ExpectQuery("FROM items i").
		WithArgs(model.ItemStatusApproved, "women", "%coat%", "%coat%", 20, 0).
		WillReturnRows(rows)

	out, total, err := repo.Search(context.Background(), CatalogQuery{
		Category: "women",
		Search:   "Coat",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, "Wool coat", out[0].Title)
	assert.Equal(t, []string{"a.jpg"}, out[0].Images)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchInvalidFilterSkipsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewItemRepo(db)

	_, _, err = repo.Search(context.Background(), CatalogQuery{Size: "huge"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchOwnerViewSpansAllStatuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewItemRepo(db)

	// No status filter on an owner query: a single query returns the
	// owner's listings in every status.
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("FROM items i").
		WithArgs(uint64(4), 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "category", "type", "size", "item_condition",
			"points", "status", "created_at", "owner_id", "owner_name", "owner_email", "images",
		}).AddRow(7, "Wool coat", "women", "jacket", "M", "good",
			80, model.ItemStatusPending, "2026-08-30 10:00:00", 4, "Dana Reed", "dana@example.com", `[]`).
			AddRow(8, "Linen shirt", "men", "shirt", "L", "fair",
				30, model.ItemStatusSwapped, "2026-08-29 10:00:00", 4, "Dana Reed", "dana@example.com", `[]`))

	out, total, err := repo.Search(context.Background(), CatalogQuery{OwnerID: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, out, 2)
	assert.Equal(t, model.ItemStatusPending, out[0].Status)
	assert.Equal(t, model.ItemStatusSwapped, out[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchOwnerViewOverridesStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewItemRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(model.ItemStatusPending, uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("FROM items i").
		WithArgs(model.ItemStatusPending, uint64(4), 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "category", "type", "size", "item_condition",
			"points", "status", "created_at", "owner_id", "owner_name", "owner_email", "images",
		}))

	out, total, err := repo.Search(context.Background(), CatalogQuery{
		OwnerID: 4,
		Status:  model.ItemStatusPending,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}
