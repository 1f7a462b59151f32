package bundle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/pot-code/learniq-api/internal/infrastructure/driver"
)

type BundleSQL struct {
	Conn driver.ITransactionalDB
}

var _ BundleRepository = &BundleSQL{}

func NewBundleRepository(Conn driver.ITransactionalDB) *BundleSQL {
	return &BundleSQL{
		Conn: Conn,
	}
}

const bundleColumns = `b.bundle_id, b.title, COALESCE(b.description, ''), COALESCE(b.image_url, ''), b.created_at`

func (repo *BundleSQL) ListBundles(ctx context.Context) ([]*BundleModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+bundleColumns+`
FROM
    bundles b
ORDER BY b.created_at ASC, b.bundle_id ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list bundles")
	}
	return scanBundles(rows)
}

func (repo *BundleSQL) GetBundles(ctx context.Context, bundleIDs ...string) ([]*BundleModel, error) {
	if len(bundleIDs) == 0 {
		return nil, nil
	}

	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`
SELECT `+bundleColumns+`
FROM
    bundles b
WHERE
    b.bundle_id IN (%s)
	`, driver.InPlaceholders(1, len(bundleIDs))), driver.StringArgs(bundleIDs)...)
	if err != nil {
		return nil, errors.Wrap(err, "get bundles")
	}
	return scanBundles(rows)
}

func (repo *BundleSQL) ListBundleCourses(ctx context.Context, bundleIDs ...string) ([]*BundleCourseModel, error) {
	if len(bundleIDs) == 0 {
		return nil, nil
	}

	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`
SELECT
    bundle_id, course_id, order_index
FROM
    bundle_courses
WHERE
    bundle_id IN (%s)
ORDER BY bundle_id ASC, order_index ASC, course_id ASC
	`, driver.InPlaceholders(1, len(bundleIDs))), driver.StringArgs(bundleIDs)...)
	if err != nil {
		return nil, errors.Wrap(err, "list bundle courses")
	}
	defer rows.Close()

	var result []*BundleCourseModel
	for rows.Next() {
		item := new(BundleCourseModel)
		if err := rows.Scan(&item.BundleID, &item.CourseID, &item.OrderIndex); err != nil {
			return nil, errors.Wrap(err, "scan bundle course")
		}
		result = append(result, item)
	}
	return result, errors.Wrap(rows.Err(), "list bundle courses")
}

func (repo *BundleSQL) ListEnrollments(ctx context.Context, userID string) ([]string, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `SELECT bundle_id FROM enrollments WHERE user_id = $1`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list enrollments")
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan enrollment")
		}
		result = append(result, id)
	}
	return result, errors.Wrap(rows.Err(), "list enrollments")
}

// RecordView upsert the view timestamp, written as delete and insert so both drivers accept it
func (repo *BundleSQL) RecordView(ctx context.Context, userID, bundleID string, at time.Time) error {
	err := driver.WithTx(ctx, repo.Conn, &driver.TxOptions{
		Isolation:  sql.LevelReadCommitted,
		AccessMode: driver.AccessReadWrite,
	}, func(tx driver.ITransactionalDB) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_bundle_views WHERE user_id = $1 AND bundle_id = $2`, userID, bundleID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO user_bundle_views(user_id, bundle_id, last_viewed_at)
VALUES($1, $2, $3)
		`, userID, bundleID, at.UTC())
		return err
	})
	return errors.Wrapf(err, "record view of bundle %s", bundleID)
}

func (repo *BundleSQL) LastViewed(ctx context.Context, userID string) (*BundleModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+bundleColumns+`
FROM
    user_bundle_views v
        JOIN
    bundles b ON (b.bundle_id = v.bundle_id)
WHERE
    v.user_id = $1
ORDER BY v.last_viewed_at DESC
LIMIT 1
	`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "last viewed bundle")
	}
	bundles, err := scanBundles(rows)
	if err != nil || len(bundles) == 0 {
		return nil, err
	}
	return bundles[0], nil
}

func scanBundles(rows driver.ISQLRows) ([]*BundleModel, error) {
	defer rows.Close()

	var result []*BundleModel
	for rows.Next() {
		item := new(BundleModel)
		var createdAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.ImageURL, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan bundle")
		}
		if createdAt.Valid {
			item.CreatedAt = &createdAt.Time
		}
		result = append(result, item)
	}
	return result, errors.Wrap(rows.Err(), "scan bundles")
}
