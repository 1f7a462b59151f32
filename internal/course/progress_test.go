package course

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lessonsOf(courseID string, n int) []*LessonModel {
	lessons := make([]*LessonModel, n)
	for i := range lessons {
		lessons[i] = &LessonModel{ID: fmt.Sprintf("L%d", i+1), CourseID: courseID, OrderIndex: i + 1}
	}
	return lessons
}

func TestComputeCourseProgress(t *testing.T) {
	t.Run("half way", func(t *testing.T) {
		p := ComputeCourseProgress("c1", lessonsOf("c1", 4), NewCompletionSet("L1", "L2"))
		assert.Equal(t, 50.0, p.Percent)
		assert.Equal(t, 4, p.TotalLessons)
		require.NotNil(t, p.ActiveLessonID)
		assert.Equal(t, "L3", *p.ActiveLessonID)
		assert.Equal(t, InProgress, p.State)
	})

	t.Run("single lesson not started", func(t *testing.T) {
		p := ComputeCourseProgress("c1", lessonsOf("c1", 1), NewCompletionSet())
		assert.Equal(t, 0.0, p.Percent)
		require.NotNil(t, p.ActiveLessonID)
		assert.Equal(t, "L1", *p.ActiveLessonID)
		assert.Equal(t, NotStarted, p.State)
	})

	t.Run("no lessons", func(t *testing.T) {
		p := ComputeCourseProgress("c1", nil, NewCompletionSet("L1"))
		assert.Equal(t, 0.0, p.Percent)
		assert.Equal(t, 0, p.TotalLessons)
		assert.Nil(t, p.ActiveLessonID)
	})

	t.Run("all completed lands on last lesson", func(t *testing.T) {
		lessons := lessonsOf("c1", 3)
		rand.Shuffle(len(lessons), func(i, j int) { lessons[i], lessons[j] = lessons[j], lessons[i] })
		p := ComputeCourseProgress("c1", lessons, NewCompletionSet("L1", "L2", "L3"))
		assert.Equal(t, 100.0, p.Percent)
		require.NotNil(t, p.ActiveLessonID)
		assert.Equal(t, "L3", *p.ActiveLessonID)
		assert.Equal(t, Completed, p.State)
	})

	t.Run("completions outside the course are ignored", func(t *testing.T) {
		p := ComputeCourseProgress("c1", lessonsOf("c1", 2), NewCompletionSet("L1", "X9", "X10"))
		assert.Equal(t, 50.0, p.Percent)
		assert.Equal(t, 1, p.CompletedCount)
	})

	t.Run("unordered input follows order index", func(t *testing.T) {
		lessons := []*LessonModel{
			{ID: "c", OrderIndex: 3},
			{ID: "a", OrderIndex: 1},
			{ID: "b", OrderIndex: 2},
		}
		p := ComputeCourseProgress("c1", lessons, NewCompletionSet("a"))
		assert.Equal(t, "b", *p.ActiveLessonID)
	})
}

func TestComputeCourseProgressBounds(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		lessons := lessonsOf("c1", r.Intn(12))
		var ids []string
		for _, l := range lessons {
			if r.Intn(2) == 0 {
				ids = append(ids, l.ID)
			}
		}
		p := ComputeCourseProgress("c1", lessons, NewCompletionSet(ids...))
		assert.True(t, p.Percent >= 0 && p.Percent <= 100, "percent %f out of range", p.Percent)
	}
}

func TestComputeCourseProgressMonotonic(t *testing.T) {
	lessons := lessonsOf("c1", 7)
	set := NewCompletionSet()
	last := ComputeCourseProgress("c1", lessons, set).Percent
	for _, i := range rand.Perm(len(lessons)) {
		set[lessons[i].ID] = struct{}{}
		p := ComputeCourseProgress("c1", lessons, set).Percent
		assert.GreaterOrEqual(t, p, last)
		last = p
	}
	assert.Equal(t, 100.0, last)
}

func TestSortLessonsTieBreak(t *testing.T) {
	lessons := []*LessonModel{
		{ID: "L9", OrderIndex: 1},
		{ID: "L2", OrderIndex: 2},
		{ID: "L1", OrderIndex: 1},
	}
	sorted := SortLessons(lessons)
	assert.Equal(t, []string{"L1", "L9", "L2"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	assert.Equal(t, "L9", lessons[0].ID, "input is not reordered")
}

func TestCompletionSetOf(t *testing.T) {
	set := CompletionSetOf([]*ProgressModel{
		{LessonID: "L1", Status: StatusCompleted},
		{LessonID: "L2", Status: StatusNotStarted},
	})
	assert.True(t, set.Has("L1"))
	assert.False(t, set.Has("L2"))
}

func TestComputeProgressByCourse(t *testing.T) {
	lessons := append(lessonsOf("c1", 2), &LessonModel{ID: "M1", CourseID: "c2", OrderIndex: 1})
	byCourse := ComputeProgressByCourse([]string{"c1", "c2", "c3"}, lessons, NewCompletionSet("L1", "M1"))
	assert.Equal(t, 50.0, byCourse["c1"].Percent)
	assert.Equal(t, 100.0, byCourse["c2"].Percent)
	assert.Equal(t, 0.0, byCourse["c3"].Percent)
	assert.Nil(t, byCourse["c3"].ActiveLessonID)
}
