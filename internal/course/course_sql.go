package course

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pot-code/learniq-api/internal/infrastructure/driver"
)

type CourseSQL struct {
	Conn driver.ITransactionalDB
}

var _ CourseRepository = &CourseSQL{}

func NewCourseRepository(Conn driver.ITransactionalDB) *CourseSQL {
	return &CourseSQL{
		Conn: Conn,
	}
}

func (repo *CourseSQL) ListCourses(ctx context.Context) ([]*CourseModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    course_id, title, COALESCE(description, ''), COALESCE(image_url, ''), created_at
FROM
    courses
ORDER BY created_at ASC, course_id ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list courses")
	}
	defer rows.Close()

	var result []*CourseModel
	for rows.Next() {
		item, err := scanCourse(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan course")
		}
		result = append(result, item)
	}
	return result, errors.Wrap(rows.Err(), "list courses")
}

func (repo *CourseSQL) GetCourse(ctx context.Context, courseID string) (*CourseModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    course_id, title, COALESCE(description, ''), COALESCE(image_url, ''), created_at
FROM
    courses
WHERE
    course_id = $1
	`, courseID)
	if err != nil {
		return nil, errors.Wrapf(err, "get course %s", courseID)
	}
	defer rows.Close()

	if rows.Next() {
		item, err := scanCourse(rows)
		return item, errors.Wrap(err, "scan course")
	}
	return nil, errors.Wrapf(rows.Err(), "get course %s", courseID)
}

func (repo *CourseSQL) GetCourses(ctx context.Context, courseIDs ...string) ([]*CourseModel, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`
SELECT
    course_id, title, COALESCE(description, ''), COALESCE(image_url, ''), created_at
FROM
    courses
WHERE
    course_id IN (%s)
	`, driver.InPlaceholders(1, len(courseIDs))), driver.StringArgs(courseIDs)...)
	if err != nil {
		return nil, errors.Wrap(err, "get courses")
	}
	defer rows.Close()

	var result []*CourseModel
	for rows.Next() {
		item, err := scanCourse(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan course")
		}
		result = append(result, item)
	}
	return result, errors.Wrap(rows.Err(), "get courses")
}

func scanCourse(rows driver.ISQLRows) (*CourseModel, error) {
	item := new(CourseModel)
	var createdAt sql.NullTime
	if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.ImageURL, &createdAt); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		item.CreatedAt = &createdAt.Time
	}
	return item, nil
}

func (repo *CourseSQL) ListLessons(ctx context.Context, courseIDs ...string) ([]*LessonModel, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`
SELECT
    lesson_id, course_id, order_index, title, duration
FROM
    lessons
WHERE
    course_id IN (%s)
ORDER BY course_id ASC, order_index ASC, lesson_id ASC
	`, driver.InPlaceholders(1, len(courseIDs))), driver.StringArgs(courseIDs)...)
	if err != nil {
		return nil, errors.Wrap(err, "list lessons")
	}
	defer rows.Close()

	var result []*LessonModel
	for rows.Next() {
		item := new(LessonModel)
		var duration sql.NullInt64
		if err := rows.Scan(&item.ID, &item.CourseID, &item.OrderIndex, &item.Title, &duration); err != nil {
			return nil, errors.Wrap(err, "scan lesson")
		}
		if duration.Valid {
			d := int(duration.Int64)
			item.Duration = &d
		}
		result = append(result, item)
	}
	return result, errors.Wrap(rows.Err(), "list lessons")
}

func (repo *CourseSQL) ListCompletions(ctx context.Context, userID string, courseIDs ...string) ([]*ProgressModel, error) {
	query := `
SELECT
    user_id, course_id, lesson_id, status, completed_at
FROM
    progress
WHERE
    user_id = $1 AND status = $2
	`
	args := []interface{}{userID, StatusCompleted}
	if len(courseIDs) > 0 {
		query += fmt.Sprintf(" AND course_id IN (%s)", driver.InPlaceholders(3, len(courseIDs)))
		args = append(args, driver.StringArgs(courseIDs)...)
	}

	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list completions")
	}
	defer rows.Close()

	var result []*ProgressModel
	for rows.Next() {
		item := new(ProgressModel)
		var completedAt sql.NullTime
		if err := rows.Scan(&item.UserID, &item.CourseID, &item.LessonID, &item.Status, &completedAt); err != nil {
			return nil, errors.Wrap(err, "scan progress")
		}
		if completedAt.Valid {
			item.CompletedAt = &completedAt.Time
		}
		result = append(result, item)
	}
	return result, errors.Wrap(rows.Err(), "list completions")
}

func (repo *CourseSQL) ClearProgress(ctx context.Context, userID, courseID string) (int64, error) {
	var affected int64
	err := driver.WithTx(ctx, repo.Conn, &driver.TxOptions{
		Isolation:  sql.LevelRepeatableRead,
		AccessMode: driver.AccessReadWrite,
	}, func(tx driver.ITransactionalDB) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM progress WHERE user_id = $1 AND course_id = $2`, userID, courseID)
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	return affected, errors.Wrapf(err, "clear progress of course %s", courseID)
}
