package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"syscourse/server/catalog/domain"
)

var Schema = []string{`
	CREATE TABLE IF NOT EXISTS resources (
		resource_id TEXT PRIMARY KEY,
		course_id   TEXT NOT NULL DEFAULT '',
		title       TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL DEFAULT '',
		url         TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		thumbnail   TEXT NOT NULL DEFAULT '',
		uid         TEXT NOT NULL DEFAULT '',
		duration    INTEGER,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS resources_course_id_idx ON resources(course_id)`,
}

const resourceColumns = `resource_id, course_id, title, type, url, description, thumbnail, uid, duration`

type ResourceRepository struct {
	pool *pgxpool.Pool
}

func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

func (r *ResourceRepository) List(ctx context.Context) ([]domain.Resource, error) {
	return r.query(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY title, resource_id`)
}

func (r *ResourceRepository) ListByCourse(ctx context.Context, courseID string) ([]domain.Resource, error) {
	return r.query(ctx, `SELECT `+resourceColumns+` FROM resources WHERE course_id=$1 ORDER BY created_at, resource_id`, courseID)
}

func (r *ResourceRepository) Get(ctx context.Context, resourceID string) (domain.Resource, error) {
	item, err := scanResource(r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE resource_id=$1`, resourceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Resource{}, domain.ErrNotFound
	}
	return item, err
}

func (r *ResourceRepository) Create(ctx context.Context, item domain.Resource) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO resources(`+resourceColumns+`)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, item.ResourceID, item.CourseID, item.Title, item.Type, item.URL, item.Description, item.Thumbnail, item.UID, item.Duration)
	return err
}

func (r *ResourceRepository) Delete(ctx context.Context, resourceID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE resource_id=$1`, resourceID)
	return err
}

func (r *ResourceRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Resource, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Resource, 0)
	for rows.Next() {
		item, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanResource(row pgx.Row) (domain.Resource, error) {
	var item domain.Resource
	err := row.Scan(&item.ResourceID, &item.CourseID, &item.Title, &item.Type, &item.URL, &item.Description, &item.Thumbnail, &item.UID, &item.Duration)
	item.DocumentID = item.ResourceID
	return item, err
}
