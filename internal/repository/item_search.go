package repository

import (
	"context"
	"strings"

	"github.com/rewear/rewear-exchange/internal/model"
)

// CatalogQuery defines filters & pagination for browsing the catalog.
// All filter fields are optional. Status defaults to approved when
// empty so ordinary browsing only ever sees moderated listings;
// moderation and ownership views override it explicitly.
type CatalogQuery struct {
	Category  string
	Size      string
	Condition string
	Search    string
	OwnerID   uint64
	Status    string
	Page      int
	PageSize  int
}

// Normalize clamps pagination, lowercases the status and applies the
// approved default. Owner-scoped queries are the exception: an empty
// status there means every status, so owners see their whole inventory
// in one listing. It returns ErrInvalidRequest when an enumerated
// filter carries an unknown value; filter input produced by the
// natural-language search collaborator goes through the same check as
// hand-picked filters.
func (q *CatalogQuery) Normalize() error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	if q.Status == "" && q.OwnerID == 0 {
		q.Status = model.ItemStatusApproved
	}
	if q.Status != "" && !model.ValidItemStatus(q.Status) {
		return ErrInvalidRequest
	}
	if q.Category != "" && !model.ValidCategory(q.Category) {
		return ErrInvalidRequest
	}
	if q.Size != "" && !model.ValidSize(q.Size) {
		return ErrInvalidRequest
	}
	if q.Condition != "" && !model.ValidCondition(q.Condition) {
		return ErrInvalidRequest
	}
	return nil
}

// CatalogRow is one catalog listing with its owner joined.
type CatalogRow struct {
	ID         uint64   `json:"id"`
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Type       string   `json:"type"`
	Size       string   `json:"size"`
	Condition  string   `json:"condition"`
	Points     int64    `json:"points"`
	Status     string   `json:"status"`
	CreatedAt  string   `json:"created_at"`
	OwnerID    uint64   `json:"owner_id"`
	OwnerName  string   `json:"owner_name"`
	OwnerEmail string   `json:"owner_email"`
	Images     []string `json:"images"`
}

// Search returns catalog rows matching the query plus the total match
// count for pagination. Results are ordered newest first. The search
// term matches case-insensitively as a substring of title or
// description.
func (r *ItemRepo) Search(ctx context.Context, q CatalogQuery) ([]CatalogRow, int64, error) {
	if err := q.Normalize(); err != nil {
		return nil, 0, err
	}

	where := make([]string, 0, 6)
	args := make([]any, 0, 8)

	if q.Status != "" {
		where = append(where, "i.status = ?")
		args = append(args, q.Status)
	}
	if q.Category != "" {
		where = append(where, "i.category = ?")
		args = append(args, q.Category)
	}
	if q.Size != "" {
		where = append(where, "i.size = ?")
		args = append(args, q.Size)
	}
	if q.Condition != "" {
		where = append(where, "i.item_condition = ?")
		args = append(args, q.Condition)
	}
	if q.OwnerID != 0 {
		where = append(where, "i.owner_id = ?")
		args = append(args, q.OwnerID)
	}
	if q.Search != "" {
		term := "%" + strings.ToLower(q.Search) + "%"
		where = append(where, "(LOWER(i.title) LIKE ? OR LOWER(i.description) LIKE ?)")
		args = append(args, term, term)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM items i
		JOIN users u ON u.id = i.owner_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			i.id,
			i.title,
			i.category,
			i.type,
			i.size,
			i.item_condition,
			i.points,
			i.status,
			DATE_FORMAT(i.created_at, '%Y-%m-%d %T') AS created_at,
			u.id   AS owner_id,
			CONCAT(u.first_name, ' ', u.last_name) AS owner_name,
			u.email AS owner_email,
			i.images
		FROM items i
		JOIN users u ON u.id = i.owner_id
		WHERE ` + cond + `
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]CatalogRow, 0, limit)
	for rows.Next() {
		var d CatalogRow
		var images []byte
		if err := rows.Scan(
			&d.ID,
			&d.Title,
			&d.Category,
			&d.Type,
			&d.Size,
			&d.Condition,
			&d.Points,
			&d.Status,
			&d.CreatedAt,
			&d.OwnerID,
			&d.OwnerName,
			&d.OwnerEmail,
			&images,
		); err != nil {
			return nil, 0, err
		}
		if err := decodeStringList(images, &d.Images); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
