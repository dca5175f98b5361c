package workouts_test

import (
	"testing"

	"github.com/2beens/gymbalance/internal/workouts"

	"github.com/stretchr/testify/assert"
)

func TestDetectNeglected(t *testing.T) {
	testCases := []struct {
		name     string
		rows     []workouts.VolumeRow
		expected []workouts.MuscleGroup
	}{
		{
			name: "strictly below threshold",
			rows: []workouts.VolumeRow{
				{MuscleGroup: workouts.Chest, TotalVolume: 100},
				{MuscleGroup: workouts.Back, TotalVolume: 25},
				{MuscleGroup: workouts.Legs, TotalVolume: 19},
				{MuscleGroup: workouts.Core, TotalVolume: 0},
			},
			expected: []workouts.MuscleGroup{workouts.Legs, workouts.Core},
		},
		{
			name: "exactly on threshold is not neglected",
			rows: []workouts.VolumeRow{
				{MuscleGroup: workouts.Chest, TotalVolume: 100},
				{MuscleGroup: workouts.Arms, TotalVolume: 20},
			},
			expected: []workouts.MuscleGroup{},
		},
		{
			name: "all zero",
			rows: []workouts.VolumeRow{
				{MuscleGroup: workouts.Chest, TotalVolume: 0},
				{MuscleGroup: workouts.Back, TotalVolume: 0},
			},
			expected: []workouts.MuscleGroup{},
		},
		{
			name:     "no rows",
			rows:     nil,
			expected: []workouts.MuscleGroup{},
		},
		{
			name: "single group",
			rows: []workouts.VolumeRow{
				{MuscleGroup: workouts.Legs, TotalVolume: 3000},
			},
			expected: []workouts.MuscleGroup{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, workouts.DetectNeglected(tc.rows, workouts.DefaultNeglectRatio))
		})
	}
}

func TestDetectNeglected_CustomRatio(t *testing.T) {
	rows := []workouts.VolumeRow{
		{MuscleGroup: workouts.Chest, TotalVolume: 100},
		{MuscleGroup: workouts.Back, TotalVolume: 45},
	}
	assert.Empty(t, workouts.DetectNeglected(rows, 0.2))
	assert.Equal(t, []workouts.MuscleGroup{workouts.Back}, workouts.DetectNeglected(rows, 0.5))
}

func TestSuggestion(t *testing.T) {
	assert.Equal(t, "Great balance! No muscle group looks neglected this week.", workouts.Suggestion(nil))
	assert.Equal(t, "You might be neglecting: Core", workouts.Suggestion([]workouts.MuscleGroup{workouts.Core}))
	assert.Equal(t,
		"You might be neglecting: Legs, Core",
		workouts.Suggestion([]workouts.MuscleGroup{workouts.Legs, workouts.Core}),
	)
}
