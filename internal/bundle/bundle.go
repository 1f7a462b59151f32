package bundle

import (
	"context"
	"time"

	"github.com/pot-code/learniq-api/internal/course"
	"github.com/pot-code/learniq-api/internal/user"
)

type BundleModel struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// BundleCourseModel membership of a course in a bundle, OrderIndex defines display order
type BundleCourseModel struct {
	BundleID   string `json:"bundle_id"`
	CourseID   string `json:"course_id"`
	OrderIndex int    `json:"order_index"`
}

// MemberCourse a bundle member with everything needed to render and navigate it
type MemberCourse struct {
	*course.CourseModel
	Progress      *course.CourseProgress   `json:"progress"`
	FirstLessonID *string                  `json:"first_lesson_id"`
	Next          *course.NavigationIntent `json:"next"`
}

type BundleDetail struct {
	*BundleProgress
	Members []*MemberCourse `json:"members"`
}

type BundleRepository interface {
	ListBundles(ctx context.Context) ([]*BundleModel, error)
	// GetBundles returns the existing bundles among bundleIDs, in no particular order
	GetBundles(ctx context.Context, bundleIDs ...string) ([]*BundleModel, error)
	// ListBundleCourses memberships of bundleIDs ordered by bundle and order index
	ListBundleCourses(ctx context.Context, bundleIDs ...string) ([]*BundleCourseModel, error)
	ListEnrollments(ctx context.Context, userID string) ([]string, error)
	RecordView(ctx context.Context, userID, bundleID string, at time.Time) error
	// LastViewed returns nil when user never opened a bundle
	LastViewed(ctx context.Context, userID string) (*BundleModel, error)
}

type BundleUseCase interface {
	ListBundles(ctx context.Context) ([]*BundleModel, error)
	GetBundleDetail(ctx context.Context, user *user.UserModel, bundleID string) (*BundleDetail, error)
	Resume(ctx context.Context, user *user.UserModel) (*BundleProgress, error)
	Pickup(ctx context.Context, user *user.UserModel) (*BundleModel, error)
}
