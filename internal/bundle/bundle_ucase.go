package bundle

import (
	"context"
	"fmt"
	"time"

	"github.com/pot-code/learniq-api/internal/course"
	"github.com/pot-code/learniq-api/internal/domain"
	"github.com/pot-code/learniq-api/internal/infrastructure/logging"
	"github.com/pot-code/learniq-api/internal/user"
	"go.elastic.co/apm"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BundleUseCaseImpl ...
type BundleUseCaseImpl struct {
	BundleRepository BundleRepository
	CourseRepository course.CourseRepository
	now              func() time.Time
}

var _ BundleUseCase = &BundleUseCaseImpl{}

// NewBundleUseCase ...
func NewBundleUseCase(
	BundleRepository BundleRepository,
	CourseRepository course.CourseRepository,
) *BundleUseCaseImpl {
	return &BundleUseCaseImpl{BundleRepository, CourseRepository, time.Now}
}

// ListBundles bundles in creation order
func (bu *BundleUseCaseImpl) ListBundles(ctx context.Context) ([]*BundleModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "BundleUseCaseImpl.ListBundles", "service")
	defer apmSpan.End()

	return bu.BundleRepository.ListBundles(ctx)
}

// GetBundleDetail members of the bundle in display order with the learner's progress,
// the visit is remembered for Pickup
func (bu *BundleUseCaseImpl) GetBundleDetail(ctx context.Context, user *user.UserModel, bundleID string) (*BundleDetail, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "BundleUseCaseImpl.GetBundleDetail", "service")
	defer apmSpan.End()

	snap, err := bu.fetch(ctx, user.ID, []string{bundleID})
	if err != nil {
		return nil, err
	}
	bundle := snap.bundles[bundleID]
	if bundle == nil {
		return nil, fmt.Errorf("bundle %s: %w", bundleID, domain.ErrNotFound)
	}

	members := snap.liveMembers(bundleID)
	byCourse := course.ComputeProgressByCourse(members, snap.lessons, snap.completions)
	lessonsByCourse := make(map[string][]*course.LessonModel)
	for _, l := range snap.lessons {
		lessonsByCourse[l.CourseID] = append(lessonsByCourse[l.CourseID], l)
	}

	detail := &BundleDetail{Members: []*MemberCourse{}}
	var progress []*course.CourseProgress
	for _, courseID := range members {
		model := snap.courses[courseID]
		p := byCourse[courseID]
		progress = append(progress, p)
		detail.Members = append(detail.Members, &MemberCourse{
			CourseModel:   model,
			Progress:      p,
			FirstLessonID: course.RestartTarget(lessonsByCourse[courseID]),
			Next:          course.PostCompletionTarget(p),
		})
	}
	detail.BundleProgress = ComputeBundleProgress(bundle, progress)

	if err := bu.BundleRepository.RecordView(ctx, user.ID, bundleID, bu.now()); err != nil {
		logging.ExtractLoggerFromContext(ctx).Warn("failed to record bundle view",
			zap.String("bundle.id", bundleID), zap.Error(err))
	}
	return detail, nil
}

// Resume the enrolled bundle the learner progressed most in, nil without enrollments
func (bu *BundleUseCaseImpl) Resume(ctx context.Context, user *user.UserModel) (*BundleProgress, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "BundleUseCaseImpl.Resume", "service")
	defer apmSpan.End()

	enrolled, err := bu.BundleRepository.ListEnrollments(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(enrolled) == 0 {
		return nil, nil
	}

	snap, err := bu.fetch(ctx, user.ID, enrolled)
	if err != nil {
		return nil, err
	}

	live := make(map[string][]string, len(snap.bundles))
	var allCourses []string
	for id := range snap.bundles {
		live[id] = snap.liveMembers(id)
		allCourses = append(allCourses, live[id]...)
	}
	byCourse := course.ComputeProgressByCourse(allCourses, snap.lessons, snap.completions)

	candidates := make([]*BundleProgress, 0, len(snap.bundles))
	for id, bundle := range snap.bundles {
		members := make([]*course.CourseProgress, 0, len(live[id]))
		for _, courseID := range live[id] {
			members = append(members, byCourse[courseID])
		}
		candidates = append(candidates, ComputeBundleProgress(bundle, members))
	}
	return SelectMostActiveBundle(candidates), nil
}

// Pickup the bundle the learner opened last, nil when none was opened yet
func (bu *BundleUseCaseImpl) Pickup(ctx context.Context, user *user.UserModel) (*BundleModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "BundleUseCaseImpl.Pickup", "service")
	defer apmSpan.End()

	return bu.BundleRepository.LastViewed(ctx, user.ID)
}

type bundleSnapshot struct {
	bundles     map[string]*BundleModel
	members     map[string][]string // bundle id -> course ids in display order
	courses     map[string]*course.CourseModel
	lessons     []*course.LessonModel
	completions course.CompletionSet
}

// fetch load everything needed to aggregate bundleIDs in two batched rounds, each joined
// before the next starts. Nothing is aggregated from partial data
func (bu *BundleUseCaseImpl) fetch(ctx context.Context, userID string, bundleIDs []string) (*bundleSnapshot, error) {
	snap := &bundleSnapshot{
		bundles: make(map[string]*BundleModel),
		members: make(map[string][]string),
		courses: make(map[string]*course.CourseModel),
	}

	var (
		bundles     []*BundleModel
		memberships []*BundleCourseModel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bundles, err = bu.BundleRepository.GetBundles(gctx, bundleIDs...)
		return
	})
	g.Go(func() (err error) {
		memberships, err = bu.BundleRepository.ListBundleCourses(gctx, bundleIDs...)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, b := range bundles {
		snap.bundles[b.ID] = b
	}
	seen := make(map[string]bool)
	var courseIDs []string
	for _, m := range memberships {
		if snap.bundles[m.BundleID] == nil {
			continue
		}
		snap.members[m.BundleID] = append(snap.members[m.BundleID], m.CourseID)
		if !seen[m.CourseID] {
			seen[m.CourseID] = true
			courseIDs = append(courseIDs, m.CourseID)
		}
	}
	if len(courseIDs) == 0 {
		snap.completions = course.CompletionSet{}
		return snap, nil
	}

	var (
		courses []*course.CourseModel
		rows    []*course.ProgressModel
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		courses, err = bu.CourseRepository.GetCourses(gctx, courseIDs...)
		return
	})
	g.Go(func() (err error) {
		snap.lessons, err = bu.CourseRepository.ListLessons(gctx, courseIDs...)
		return
	})
	g.Go(func() (err error) {
		rows, err = bu.CourseRepository.ListCompletions(gctx, userID, courseIDs...)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, c := range courses {
		snap.courses[c.ID] = c
	}
	snap.completions = course.CompletionSetOf(rows)
	return snap, nil
}

// liveMembers member course ids of bundleID in display order, memberships pointing at a
// deleted course are left out
func (snap *bundleSnapshot) liveMembers(bundleID string) []string {
	ids := make([]string, 0, len(snap.members[bundleID]))
	for _, courseID := range snap.members[bundleID] {
		if snap.courses[courseID] != nil {
			ids = append(ids, courseID)
		}
	}
	return ids
}
