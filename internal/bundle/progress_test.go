package bundle

import (
	"testing"
	"time"

	"github.com/pot-code/learniq-api/internal/course"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBundleProgress(t *testing.T) {
	empty := ComputeBundleProgress(&BundleModel{ID: "b1"}, nil)
	assert.Equal(t, 0.0, empty.Percent)
	assert.NotNil(t, empty.Courses)

	half := ComputeBundleProgress(&BundleModel{ID: "b1"}, []*course.CourseProgress{{Percent: 100}, {Percent: 0}})
	assert.Equal(t, 50.0, half.Percent)
}

func TestSelectMostActiveBundle(t *testing.T) {
	assert.Nil(t, SelectMostActiveBundle(nil))

	low := &BundleProgress{BundleModel: &BundleModel{ID: "low"}, Percent: 30}
	high := &BundleProgress{BundleModel: &BundleModel{ID: "high"}, Percent: 80}
	assert.Same(t, high, SelectMostActiveBundle([]*BundleProgress{low, high}))
	assert.Same(t, high, SelectMostActiveBundle([]*BundleProgress{high, low}))
}

func TestSelectMostActiveBundleTieBreak(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)

	older := &BundleProgress{BundleModel: &BundleModel{ID: "z", CreatedAt: &early}, Percent: 40}
	newer := &BundleProgress{BundleModel: &BundleModel{ID: "a", CreatedAt: &late}, Percent: 40}
	undated := &BundleProgress{BundleModel: &BundleModel{ID: "0"}, Percent: 40}

	for _, order := range [][]*BundleProgress{
		{older, newer, undated},
		{undated, newer, older},
		{newer, undated, older},
	} {
		require.Same(t, older, SelectMostActiveBundle(order))
	}

	sameTime := &BundleProgress{BundleModel: &BundleModel{ID: "y", CreatedAt: &early}, Percent: 40}
	assert.Same(t, sameTime, SelectMostActiveBundle([]*BundleProgress{older, sameTime}))
}
