package course

import (
	"context"
	"fmt"
	"sort"

	"github.com/pot-code/learniq-api/internal/domain"
	"github.com/pot-code/learniq-api/internal/infrastructure/logging"
	"github.com/pot-code/learniq-api/internal/user"
	"go.elastic.co/apm"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CourseUseCaseImpl ...
type CourseUseCaseImpl struct {
	CourseRepository CourseRepository
}

var _ CourseUseCase = &CourseUseCaseImpl{}

// NewCourseUseCase ...
func NewCourseUseCase(
	CourseRepository CourseRepository,
) *CourseUseCaseImpl {
	return &CourseUseCaseImpl{CourseRepository}
}

// ListCourses courses in creation order
func (cu *CourseUseCaseImpl) ListCourses(ctx context.Context) ([]*CourseModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.ListCourses", "service")
	defer apmSpan.End()

	return cu.CourseRepository.ListCourses(ctx)
}

// GetCourseDetail course with lessons in resume order
func (cu *CourseUseCaseImpl) GetCourseDetail(ctx context.Context, courseID string) (*CourseDetail, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.GetCourseDetail", "service")
	defer apmSpan.End()

	snap, err := cu.fetch(ctx, "", courseID)
	if err != nil {
		return nil, err
	}
	return &CourseDetail{CourseModel: snap.course, Lessons: SortLessons(snap.lessons)}, nil
}

// GetCourseProgress aggregate the learner's progress in one course
func (cu *CourseUseCaseImpl) GetCourseProgress(ctx context.Context, user *user.UserModel, courseID string) (*CourseProgress, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.GetCourseProgress", "service")
	defer apmSpan.End()

	snap, err := cu.fetch(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}
	return ComputeCourseProgress(courseID, snap.lessons, snap.completions), nil
}

// GetNavigation resolve state, resume, restart and post-completion targets
func (cu *CourseUseCaseImpl) GetNavigation(ctx context.Context, user *user.UserModel, courseID string) (*Navigation, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.GetNavigation", "service")
	defer apmSpan.End()

	snap, err := cu.fetch(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}
	return Navigate(snap.lessons, ComputeCourseProgress(courseID, snap.lessons, snap.completions)), nil
}

// Restart clear the learner's progress in the course, then point at the first lesson.
// Nothing is returned unless the clear committed
func (cu *CourseUseCaseImpl) Restart(ctx context.Context, user *user.UserModel, courseID string) (*NavigationIntent, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.Restart", "service")
	defer apmSpan.End()

	repo := cu.CourseRepository
	course, err := repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("course %s: %w", courseID, domain.ErrNotFound)
	}

	cleared, err := repo.ClearProgress(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}
	logging.ExtractLoggerFromContext(ctx).Debug("course progress cleared",
		zap.String("course.id", courseID), zap.Int64("progress.cleared", cleared))

	// recompute from the store so the answer reflects the committed clear
	snap, err := cu.fetch(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}
	target := RestartTarget(snap.lessons)
	if target == nil {
		return nil, nil
	}
	return LessonIntent(*target), nil
}

// GetProgressOverview progress of every course the learner has completed lessons in
func (cu *CourseUseCaseImpl) GetProgressOverview(ctx context.Context, user *user.UserModel) ([]*CourseProgress, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.GetProgressOverview", "service")
	defer apmSpan.End()

	repo := cu.CourseRepository
	rows, err := repo.ListCompletions(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var courseIDs []string
	for _, row := range rows {
		if !seen[row.CourseID] {
			seen[row.CourseID] = true
			courseIDs = append(courseIDs, row.CourseID)
		}
	}
	sort.Strings(courseIDs)

	lessons, err := repo.ListLessons(ctx, courseIDs...)
	if err != nil {
		return nil, err
	}
	byCourse := ComputeProgressByCourse(courseIDs, lessons, CompletionSetOf(rows))
	result := make([]*CourseProgress, 0, len(courseIDs))
	for _, id := range courseIDs {
		result = append(result, byCourse[id])
	}
	return result, nil
}

type courseSnapshot struct {
	course      *CourseModel
	lessons     []*LessonModel
	completions CompletionSet
}

// fetch load course, lessons and completions concurrently, returning only once all of them arrived.
// completions are skipped when userID is empty
func (cu *CourseUseCaseImpl) fetch(ctx context.Context, userID, courseID string) (*courseSnapshot, error) {
	repo := cu.CourseRepository
	snap := &courseSnapshot{completions: CompletionSet{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.course, err = repo.GetCourse(gctx, courseID)
		return
	})
	g.Go(func() (err error) {
		snap.lessons, err = repo.ListLessons(gctx, courseID)
		return
	})
	if userID != "" {
		g.Go(func() error {
			rows, err := repo.ListCompletions(gctx, userID, courseID)
			if err != nil {
				return err
			}
			snap.completions = CompletionSetOf(rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if snap.course == nil {
		return nil, fmt.Errorf("course %s: %w", courseID, domain.ErrNotFound)
	}
	return snap, nil
}
