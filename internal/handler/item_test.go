package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewear/rewear-exchange/internal/model"
	"github.com/rewear/rewear-exchange/internal/repository"
)

func newItemFixture(t *testing.T) (*ItemHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewItemHandler(repository.NewItemRepo(db), nil), mock
}

// itemContext builds a GET request context. A zero userID leaves the
// request anonymous, mirroring the optional-auth item detail route.
func itemContext(userID uint64, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return c, rec
}

func pendingItemRows(ownerID uint64) *sqlmock.Rows {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "owner_id", "title", "description", "category", "type", "size",
		"item_condition", "tags", "images", "points", "status", "created_at", "updated_at",
	}).AddRow(2, ownerID, "Wool coat", "Barely worn", "women", "jacket", "M",
		"good", `[]`, `[]`, 80, model.ItemStatusPending, now, now)
}

func TestGetItemOwnerSeesPending(t *testing.T) {
	h, mock := newItemFixture(t)
	mock.ExpectQuery("FROM items WHERE id").
		WithArgs(uint64(2)).
		WillReturnRows(pendingItemRows(4))

	c, rec := itemContext(4, "/v1/items/2")
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.GetItem(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]itemResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.ItemStatusPending, resp["item"].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetItemHidesPendingFromStranger(t *testing.T) {
	h, mock := newItemFixture(t)
	mock.ExpectQuery("FROM items WHERE id").
		WithArgs(uint64(2)).
		WillReturnRows(pendingItemRows(4))

	c, rec := itemContext(9, "/v1/items/2")
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.GetItem(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetItemHidesPendingFromAnonymous(t *testing.T) {
	h, mock := newItemFixture(t)
	mock.ExpectQuery("FROM items WHERE id").
		WithArgs(uint64(2)).
		WillReturnRows(pendingItemRows(4))

	c, rec := itemContext(0, "/v1/items/2")
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.GetItem(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMyItemsPassesPaginationThrough(t *testing.T) {
	h, mock := newItemFixture(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))
	mock.ExpectQuery("FROM items i").
		WithArgs(uint64(4), 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "category", "type", "size", "item_condition",
			"points", "status", "created_at", "owner_id", "owner_name", "owner_email", "images",
		}).AddRow(7, "Wool coat", "women", "jacket", "M", "good",
			80, model.ItemStatusRejected, "2026-08-30 10:00:00", 4, "Dana Reed", "dana@example.com", `[]`))

	c, rec := itemContext(4, "/v1/my-items?page=3&page_size=10")
	require.NoError(t, h.MyItems(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []repository.CatalogRow `json:"items"`
		Total int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(23), resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, model.ItemStatusRejected, resp.Items[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMyItemsRejectsUnknownStatus(t *testing.T) {
	h, mock := newItemFixture(t)

	c, rec := itemContext(4, "/v1/my-items?status=lost")
	require.NoError(t, h.MyItems(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
