package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateOf(t *testing.T) {
	assert.Equal(t, NotStarted, StateOf(0))
	assert.Equal(t, InProgress, StateOf(0.1))
	assert.Equal(t, InProgress, StateOf(99.89))
	assert.Equal(t, Completed, StateOf(99.9))
	assert.Equal(t, Completed, StateOf(100))
}

func TestResumeTarget(t *testing.T) {
	p := ComputeCourseProgress("c1", lessonsOf("c1", 3), NewCompletionSet("L1"))
	require.NotNil(t, ResumeTarget(p))
	assert.Equal(t, "L2", *ResumeTarget(p))
	assert.Nil(t, ResumeTarget(ComputeCourseProgress("c1", nil, nil)))
}

func TestRestartTarget(t *testing.T) {
	lessons := []*LessonModel{{ID: "b", OrderIndex: 2}, {ID: "a", OrderIndex: 1}}
	require.NotNil(t, RestartTarget(lessons))
	assert.Equal(t, "a", *RestartTarget(lessons))
	assert.Nil(t, RestartTarget(nil))
}

func TestPostCompletionTarget(t *testing.T) {
	lessons := lessonsOf("c1", 2)

	done := ComputeCourseProgress("c1", lessons, NewCompletionSet("L1", "L2"))
	assert.Equal(t, &NavigationIntent{Kind: IntentExternalFeature, Name: AssistantFeature}, PostCompletionTarget(done))

	half := ComputeCourseProgress("c1", lessons, NewCompletionSet("L1"))
	assert.Equal(t, &NavigationIntent{Kind: IntentLesson, ID: "L2"}, PostCompletionTarget(half))

	assert.Nil(t, PostCompletionTarget(ComputeCourseProgress("c1", nil, nil)))
}

func TestNavigate(t *testing.T) {
	lessons := lessonsOf("c1", 3)
	nav := Navigate(lessons, ComputeCourseProgress("c1", lessons, NewCompletionSet("L1")))
	assert.Equal(t, InProgress, nav.State)
	assert.Equal(t, "L2", *nav.Resume)
	assert.Equal(t, "L1", *nav.Restart)
	assert.Equal(t, LessonIntent("L2"), nav.Next)
}
