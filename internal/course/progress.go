package course

import (
	"math"
	"sort"
)

// CompletedThreshold percent from which a course counts as completed,
// the band absorbs floating point rounding
const CompletedThreshold = 99.9

// CourseProgress derived progress of one learner in one course
type CourseProgress struct {
	CourseID       string  `json:"course_id"`
	Percent        float64 `json:"percent"`
	TotalLessons   int     `json:"total_lessons"`
	CompletedCount int     `json:"completed_lessons"`
	ActiveLessonID *string `json:"active_lesson_id"`
	State          State   `json:"state"`
}

// CompletionSet ids of completed lessons
type CompletionSet map[string]struct{}

// NewCompletionSet build a set from lesson ids
func NewCompletionSet(lessonIDs ...string) CompletionSet {
	set := make(CompletionSet, len(lessonIDs))
	for _, id := range lessonIDs {
		set[id] = struct{}{}
	}
	return set
}

// CompletionSetOf collect completed lesson ids from progress rows
func CompletionSetOf(rows []*ProgressModel) CompletionSet {
	set := make(CompletionSet, len(rows))
	for _, row := range rows {
		if row.Status == StatusCompleted {
			set[row.LessonID] = struct{}{}
		}
	}
	return set
}

// Has .
func (cs CompletionSet) Has(lessonID string) bool {
	_, ok := cs[lessonID]
	return ok
}

// SortLessons returns a copy of lessons ordered by order index, lesson id breaks ties
func SortLessons(lessons []*LessonModel) []*LessonModel {
	sorted := make([]*LessonModel, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OrderIndex != sorted[j].OrderIndex {
			return sorted[i].OrderIndex < sorted[j].OrderIndex
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// ComputeCourseProgress aggregate lessons of one course against the completed set
func ComputeCourseProgress(courseID string, lessons []*LessonModel, completions CompletionSet) *CourseProgress {
	progress := &CourseProgress{CourseID: courseID, State: NotStarted}
	if len(lessons) == 0 {
		return progress
	}

	ordered := SortLessons(lessons)
	for _, lesson := range ordered {
		if completions.Has(lesson.ID) {
			progress.CompletedCount++
		} else if progress.ActiveLessonID == nil {
			id := lesson.ID
			progress.ActiveLessonID = &id
		}
	}
	if progress.ActiveLessonID == nil {
		id := ordered[len(ordered)-1].ID
		progress.ActiveLessonID = &id
	}

	progress.TotalLessons = len(ordered)
	progress.Percent = clampPercent(100 * float64(progress.CompletedCount) / float64(progress.TotalLessons))
	progress.State = StateOf(progress.Percent)
	return progress
}

// ComputeProgressByCourse aggregate every course in courseIDs, lessons may span courses
func ComputeProgressByCourse(courseIDs []string, lessons []*LessonModel, completions CompletionSet) map[string]*CourseProgress {
	grouped := make(map[string][]*LessonModel, len(courseIDs))
	for _, lesson := range lessons {
		grouped[lesson.CourseID] = append(grouped[lesson.CourseID], lesson)
	}

	result := make(map[string]*CourseProgress, len(courseIDs))
	for _, id := range courseIDs {
		result[id] = ComputeCourseProgress(id, grouped[id], completions)
	}
	return result
}

// FirstLesson first lesson in resume order, nil when there is none
func FirstLesson(lessons []*LessonModel) *LessonModel {
	if len(lessons) == 0 {
		return nil
	}
	return SortLessons(lessons)[0]
}

func clampPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
