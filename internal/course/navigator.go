package course

// State where a learner stands in a course, always derived from the percent
type State string

const (
	NotStarted State = "not_started"
	InProgress State = "in_progress"
	Completed  State = "completed"
)

// navigation intent kinds
const (
	IntentLesson          = "lesson"
	IntentExternalFeature = "externalFeature"
)

// AssistantFeature feature a learner is sent to after finishing a course
const AssistantFeature = "ai-assistant"

// NavigationIntent where the client should navigate next
type NavigationIntent struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// StateOf map percent to course state
func StateOf(percent float64) State {
	switch {
	case percent >= CompletedThreshold:
		return Completed
	case percent > 0:
		return InProgress
	default:
		return NotStarted
	}
}

// ResumeTarget lesson to continue with, nil for a course without lessons
func ResumeTarget(progress *CourseProgress) *string {
	if progress == nil {
		return nil
	}
	return progress.ActiveLessonID
}

// RestartTarget first lesson of the course. The caller must clear the learner's
// progress rows of the course before navigating there
func RestartTarget(lessons []*LessonModel) *string {
	first := FirstLesson(lessons)
	if first == nil {
		return nil
	}
	id := first.ID
	return &id
}

// PostCompletionTarget send a learner who finished the course to the assistant,
// otherwise back to the resume lesson
func PostCompletionTarget(progress *CourseProgress) *NavigationIntent {
	if progress == nil {
		return nil
	}
	if StateOf(progress.Percent) == Completed {
		return &NavigationIntent{Kind: IntentExternalFeature, Name: AssistantFeature}
	}
	if resume := ResumeTarget(progress); resume != nil {
		return LessonIntent(*resume)
	}
	return nil
}

// LessonIntent navigate to lesson id
func LessonIntent(id string) *NavigationIntent {
	return &NavigationIntent{Kind: IntentLesson, ID: id}
}

// Navigate resolve every target of a course at once
func Navigate(lessons []*LessonModel, progress *CourseProgress) *Navigation {
	return &Navigation{
		Progress: progress,
		State:    StateOf(progress.Percent),
		Resume:   ResumeTarget(progress),
		Restart:  RestartTarget(lessons),
		Next:     PostCompletionTarget(progress),
	}
}
