package streak

import (
	"context"
	"time"

	"github.com/pot-code/learniq-api/internal/user"
)

// window bounds in days
const (
	DefaultWindow = 7
	MaxWindow     = 90
)

// StreakLookback how far back the streak is followed
const StreakLookback = 365

// DateLayout day key layout, days are UTC
const DateLayout = "2006-01-02"

// ActivityDay completed lessons of one UTC day
type ActivityDay struct {
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Active bool   `json:"active"`
}

type ActivityWindow struct {
	Days   []*ActivityDay `json:"days"`
	Streak int            `json:"streak"`
}

type StreakRepository interface {
	// ListCompletionTimes completion timestamps of user at or after since
	ListCompletionTimes(ctx context.Context, userID string, since time.Time) ([]time.Time, error)
}

type StreakUseCase interface {
	GetActivity(ctx context.Context, user *user.UserModel, days int) (*ActivityWindow, error)
}
