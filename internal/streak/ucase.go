package streak

import (
	"context"
	"fmt"
	"time"

	"github.com/pot-code/learniq-api/internal/domain"
	"github.com/pot-code/learniq-api/internal/user"
	"go.elastic.co/apm"
)

// StreakUseCaseImpl ...
type StreakUseCaseImpl struct {
	StreakRepository StreakRepository
	now              func() time.Time
}

var _ StreakUseCase = &StreakUseCaseImpl{}

// NewStreakUseCase ...
func NewStreakUseCase(
	StreakRepository StreakRepository,
) *StreakUseCaseImpl {
	return &StreakUseCaseImpl{StreakRepository, time.Now}
}

// GetActivity activity window of the last days days and the current streak
func (su *StreakUseCaseImpl) GetActivity(ctx context.Context, user *user.UserModel, days int) (*ActivityWindow, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "StreakUseCaseImpl.GetActivity", "service")
	defer apmSpan.End()

	if days < 1 || days > MaxWindow {
		return nil, fmt.Errorf("days must be within [1, %d]: %w", MaxWindow, domain.ErrInvalidRequest)
	}

	// one read covers both the window and the streak lookback
	today := truncateDay(su.now())
	since := today.AddDate(0, 0, -StreakLookback)
	completions, err := su.StreakRepository.ListCompletionTimes(ctx, user.ID, since)
	if err != nil {
		return nil, err
	}
	return &ActivityWindow{
		Days:   BuildWindow(days, today, completions),
		Streak: CurrentStreak(today, completions),
	}, nil
}
