package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"syscourse/server/catalog/domain"
)

const Schema = `
	CREATE TABLE IF NOT EXISTS courses (
		course_id       TEXT PRIMARY KEY,
		title           TEXT NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT '',
		instructor      TEXT NOT NULL DEFAULT '',
		field           TEXT NOT NULL DEFAULT '',
		level           TEXT NOT NULL DEFAULT '',
		language        TEXT NOT NULL DEFAULT '',
		thumbnail_url   TEXT NOT NULL DEFAULT '',
		uid             TEXT NOT NULL DEFAULT '',
		ratings_average DOUBLE PRECISION,
		ratings_count   INTEGER,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

const courseColumns = `course_id, title, description, instructor, field, level, language, thumbnail_url, uid, ratings_average, ratings_count`

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY title, course_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Course, 0)
	for rows.Next() {
		item, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *CourseRepository) Get(ctx context.Context, courseID string) (domain.Course, error) {
	item, err := scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE course_id=$1`, courseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Course{}, domain.ErrNotFound
	}
	return item, err
}

func (r *CourseRepository) Create(ctx context.Context, item domain.Course) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO courses(`+courseColumns+`)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, item.CourseID, item.Title, item.Description, item.Instructor, item.Field, item.Level, item.Language, item.ThumbnailURL, item.UID, item.RatingsAverage, item.RatingsCount)
	return err
}

func (r *CourseRepository) Delete(ctx context.Context, courseID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE course_id=$1`, courseID)
	return err
}

func scanCourse(row pgx.Row) (domain.Course, error) {
	var item domain.Course
	err := row.Scan(&item.CourseID, &item.Title, &item.Description, &item.Instructor, &item.Field, &item.Level, &item.Language, &item.ThumbnailURL, &item.UID, &item.RatingsAverage, &item.RatingsCount)
	item.DocumentID = item.CourseID
	return item, err
}
