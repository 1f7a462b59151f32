package bundle

import (
	"math"

	"github.com/pot-code/learniq-api/internal/course"
)

// BundleProgress derived progress of a learner over the member courses of a bundle
type BundleProgress struct {
	*BundleModel
	Percent float64                  `json:"percent"`
	Courses []*course.CourseProgress `json:"courses"`
}

// ComputeBundleProgress mean of member percents, 0 for a bundle without members
func ComputeBundleProgress(bundle *BundleModel, members []*course.CourseProgress) *BundleProgress {
	progress := &BundleProgress{BundleModel: bundle, Courses: members}
	if progress.Courses == nil {
		progress.Courses = []*course.CourseProgress{}
	}
	if len(members) == 0 {
		return progress
	}

	var sum float64
	for _, m := range members {
		sum += m.Percent
	}
	progress.Percent = math.Max(0, math.Min(100, sum/float64(len(members))))
	return progress
}

// SelectMostActiveBundle highest percent wins, ties go to the earliest created bundle.
// Returns nil when there is no candidate
func SelectMostActiveBundle(candidates []*BundleProgress) *BundleProgress {
	var best *BundleProgress
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if best == nil || c.Percent > best.Percent || (c.Percent == best.Percent && createdBefore(c.BundleModel, best.BundleModel)) {
			best = c
		}
	}
	return best
}

// createdBefore creation order, bundles without a timestamp go last and the id settles the rest
func createdBefore(a, b *BundleModel) bool {
	if a == nil || b == nil {
		return a != nil
	}
	switch {
	case a.CreatedAt != nil && b.CreatedAt != nil && !a.CreatedAt.Equal(*b.CreatedAt):
		return a.CreatedAt.Before(*b.CreatedAt)
	case a.CreatedAt != nil && b.CreatedAt == nil:
		return true
	case a.CreatedAt == nil && b.CreatedAt != nil:
		return false
	}
	return a.ID < b.ID
}
