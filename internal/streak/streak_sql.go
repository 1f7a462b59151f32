package streak

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/pot-code/learniq-api/internal/course"
	"github.com/pot-code/learniq-api/internal/infrastructure/driver"
)

type StreakSQL struct {
	Conn driver.ITransactionalDB
}

var _ StreakRepository = &StreakSQL{}

func NewStreakRepository(Conn driver.ITransactionalDB) *StreakSQL {
	return &StreakSQL{
		Conn: Conn,
	}
}

func (repo *StreakSQL) ListCompletionTimes(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    completed_at
FROM
    progress
WHERE
    user_id = $1
        AND status = $2
        AND completed_at >= $3
ORDER BY completed_at ASC
	`, userID, course.StatusCompleted, since.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "list completion times")
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var ts sql.NullTime
		if err := rows.Scan(&ts); err != nil {
			return nil, errors.Wrap(err, "scan completion time")
		}
		if ts.Valid {
			result = append(result, ts.Time)
		}
	}
	return result, errors.Wrap(rows.Err(), "list completion times")
}
