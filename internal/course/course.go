package course

import (
	"context"
	"time"

	"github.com/pot-code/learniq-api/internal/user"
)

// progress row status
const (
	StatusNotStarted = "not_started"
	StatusCompleted  = "completed"
)

type CourseModel struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type LessonModel struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	OrderIndex int    `json:"order_index"`
	Title      string `json:"title"`
	Duration   *int   `json:"duration,omitempty"` // seconds
}

// ProgressModel one completion row of a learner
type ProgressModel struct {
	UserID      string     `json:"-"`
	CourseID    string     `json:"course_id"`
	LessonID    string     `json:"lesson_id"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CourseDetail course with its lessons in resume order
type CourseDetail struct {
	*CourseModel
	Lessons []*LessonModel `json:"lessons"`
}

// Navigation every place a learner can go from a course
type Navigation struct {
	Progress *CourseProgress   `json:"progress"`
	State    State             `json:"state"`
	Resume   *string           `json:"resume"`
	Restart  *string           `json:"restart"`
	Next     *NavigationIntent `json:"next"`
}

type CourseRepository interface {
	ListCourses(ctx context.Context) ([]*CourseModel, error)
	// GetCourse returns nil when the course does not exist
	GetCourse(ctx context.Context, courseID string) (*CourseModel, error)
	// GetCourses returns the existing courses among courseIDs, in no particular order
	GetCourses(ctx context.Context, courseIDs ...string) ([]*CourseModel, error)
	ListLessons(ctx context.Context, courseIDs ...string) ([]*LessonModel, error)
	// ListCompletions returns completed rows of user, restricted to courseIDs when given
	ListCompletions(ctx context.Context, userID string, courseIDs ...string) ([]*ProgressModel, error)
	// ClearProgress removes every progress row of user in the course atomically
	ClearProgress(ctx context.Context, userID, courseID string) (int64, error)
}

type CourseUseCase interface {
	ListCourses(ctx context.Context) ([]*CourseModel, error)
	GetCourseDetail(ctx context.Context, courseID string) (*CourseDetail, error)
	GetCourseProgress(ctx context.Context, user *user.UserModel, courseID string) (*CourseProgress, error)
	GetNavigation(ctx context.Context, user *user.UserModel, courseID string) (*Navigation, error)
	Restart(ctx context.Context, user *user.UserModel, courseID string) (*NavigationIntent, error)
	GetProgressOverview(ctx context.Context, user *user.UserModel) ([]*CourseProgress, error)
}
