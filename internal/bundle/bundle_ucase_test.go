package bundle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pot-code/learniq-api/internal/course"
	"github.com/pot-code/learniq-api/internal/domain"
	"github.com/pot-code/learniq-api/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBundles struct {
	bundles     []*BundleModel
	memberships []*BundleCourseModel
	enrollments map[string][]string
	views       map[string]string
}

func (m *memoryBundles) ListBundles(ctx context.Context) ([]*BundleModel, error) {
	return m.bundles, nil
}

func (m *memoryBundles) GetBundles(ctx context.Context, bundleIDs ...string) ([]*BundleModel, error) {
	var result []*BundleModel
	for _, b := range m.bundles {
		for _, id := range bundleIDs {
			if b.ID == id {
				result = append(result, b)
			}
		}
	}
	return result, nil
}

func (m *memoryBundles) ListBundleCourses(ctx context.Context, bundleIDs ...string) ([]*BundleCourseModel, error) {
	var result []*BundleCourseModel
	for _, bc := range m.memberships {
		for _, id := range bundleIDs {
			if bc.BundleID == id {
				result = append(result, bc)
			}
		}
	}
	return result, nil
}

func (m *memoryBundles) ListEnrollments(ctx context.Context, userID string) ([]string, error) {
	return m.enrollments[userID], nil
}

func (m *memoryBundles) RecordView(ctx context.Context, userID, bundleID string, at time.Time) error {
	m.views[userID] = bundleID
	return nil
}

func (m *memoryBundles) LastViewed(ctx context.Context, userID string) (*BundleModel, error) {
	id, ok := m.views[userID]
	if !ok {
		return nil, nil
	}
	bundles, _ := m.GetBundles(ctx, id)
	return bundles[0], nil
}

type memoryCourses struct {
	course.CourseRepository
	courses  []*course.CourseModel
	lessons  []*course.LessonModel
	progress []*course.ProgressModel
}

func (m *memoryCourses) GetCourses(ctx context.Context, courseIDs ...string) ([]*course.CourseModel, error) {
	var result []*course.CourseModel
	for _, c := range m.courses {
		for _, id := range courseIDs {
			if c.ID == id {
				result = append(result, c)
			}
		}
	}
	return result, nil
}

func (m *memoryCourses) ListLessons(ctx context.Context, courseIDs ...string) ([]*course.LessonModel, error) {
	var result []*course.LessonModel
	for _, l := range m.lessons {
		for _, id := range courseIDs {
			if l.CourseID == id {
				result = append(result, l)
			}
		}
	}
	return result, nil
}

func (m *memoryCourses) ListCompletions(ctx context.Context, userID string, courseIDs ...string) ([]*course.ProgressModel, error) {
	var result []*course.ProgressModel
	for _, p := range m.progress {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func fixture() (*memoryBundles, *memoryCourses) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	bundles := &memoryBundles{
		bundles: []*BundleModel{
			{ID: "b1", Title: "Backend", CreatedAt: &early},
			{ID: "b2", Title: "Data", CreatedAt: &late},
		},
		memberships: []*BundleCourseModel{
			{BundleID: "b1", CourseID: "go", OrderIndex: 1},
			{BundleID: "b1", CourseID: "sql", OrderIndex: 2},
			{BundleID: "b2", CourseID: "sql", OrderIndex: 1},
		},
		enrollments: map[string][]string{"u1": {"b1", "b2"}},
		views:       map[string]string{},
	}
	courses := &memoryCourses{
		courses: []*course.CourseModel{{ID: "go", Title: "Go"}, {ID: "sql", Title: "SQL"}},
		lessons: []*course.LessonModel{
			{ID: "g1", CourseID: "go", OrderIndex: 1},
			{ID: "g2", CourseID: "go", OrderIndex: 2},
			{ID: "s1", CourseID: "sql", OrderIndex: 1},
			{ID: "s2", CourseID: "sql", OrderIndex: 2},
		},
		progress: []*course.ProgressModel{
			{UserID: "u1", CourseID: "go", LessonID: "g1", Status: course.StatusCompleted},
			{UserID: "u1", CourseID: "go", LessonID: "g2", Status: course.StatusCompleted},
			{UserID: "u1", CourseID: "sql", LessonID: "s1", Status: course.StatusCompleted},
		},
	}
	return bundles, courses
}

var learner = &user.UserModel{ID: "u1"}

func TestGetBundleDetail(t *testing.T) {
	bundles, courses := fixture()
	uc := NewBundleUseCase(bundles, courses)

	detail, err := uc.GetBundleDetail(context.Background(), learner, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Backend", detail.Title)
	assert.Equal(t, 75.0, detail.Percent)
	require.Len(t, detail.Members, 2)

	goCourse := detail.Members[0]
	assert.Equal(t, "go", goCourse.ID)
	assert.Equal(t, course.Completed, goCourse.Progress.State)
	assert.Equal(t, "g1", *goCourse.FirstLessonID)
	assert.Equal(t, course.AssistantFeature, goCourse.Next.Name)

	sqlCourse := detail.Members[1]
	assert.Equal(t, "sql", sqlCourse.ID)
	assert.Equal(t, course.LessonIntent("s2"), sqlCourse.Next)

	assert.Equal(t, "b1", bundles.views["u1"])
}

func TestGetBundleDetailNotFound(t *testing.T) {
	bundles, courses := fixture()
	uc := NewBundleUseCase(bundles, courses)

	_, err := uc.GetBundleDetail(context.Background(), learner, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, bundles.views)
}

func TestResume(t *testing.T) {
	bundles, courses := fixture()
	uc := NewBundleUseCase(bundles, courses)

	best, err := uc.Resume(context.Background(), learner)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "b1", best.ID)
	assert.Equal(t, 75.0, best.Percent)

	none, err := uc.Resume(context.Background(), &user.UserModel{ID: "stranger"})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestResumeTieGoesToEarliestBundle(t *testing.T) {
	bundles, courses := fixture()
	courses.progress = nil
	uc := NewBundleUseCase(bundles, courses)

	best, err := uc.Resume(context.Background(), learner)
	require.NoError(t, err)
	assert.Equal(t, "b1", best.ID)
}

func TestPickup(t *testing.T) {
	bundles, courses := fixture()
	uc := NewBundleUseCase(bundles, courses)
	ctx := context.Background()

	none, err := uc.Pickup(ctx, learner)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = uc.GetBundleDetail(ctx, learner, "b2")
	require.NoError(t, err)
	last, err := uc.Pickup(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, "b2", last.ID)
}

func TestResumeMatchesDetailWithDeletedCourse(t *testing.T) {
	bundles, courses := fixture()
	bundles.memberships = append(bundles.memberships, &BundleCourseModel{BundleID: "b1", CourseID: "retired", OrderIndex: 3})
	uc := NewBundleUseCase(bundles, courses)
	ctx := context.Background()

	best, err := uc.Resume(ctx, learner)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "b1", best.ID)
	assert.Equal(t, 75.0, best.Percent)
	assert.Len(t, best.Courses, 2)

	detail, err := uc.GetBundleDetail(ctx, learner, "b1")
	require.NoError(t, err)
	assert.Equal(t, best.Percent, detail.Percent)
	assert.Len(t, detail.Members, 2)
}
