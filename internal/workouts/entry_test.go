package workouts_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/2beens/gymbalance/internal/workouts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimits_Check(t *testing.T) {
	limits := workouts.DefaultLimits

	testCases := []struct {
		name   string
		sets   int
		reps   int
		weight float64
		valid  bool
	}{
		{"lower bounds", 1, 1, 0, true},
		{"upper bounds", 20, 100, 500, true},
		{"typical", 3, 10, 62.5, true},
		{"zero sets", 0, 10, 50, false},
		{"too many sets", 21, 10, 50, false},
		{"zero reps", 3, 0, 50, false},
		{"too many reps", 3, 101, 50, false},
		{"negative weight", 3, 10, -0.5, false},
		{"too heavy", 3, 10, 500.5, false},
		{"nan weight", 3, 10, math.NaN(), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := limits.Check(tc.sets, tc.reps, tc.weight)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, workouts.ErrInputOutOfRange)
			}
		})
	}
}

func TestNewEntry(t *testing.T) {
	catalog := workouts.DefaultCatalog()
	date := time.Date(2025, 3, 4, 17, 45, 0, 0, time.UTC)

	entry, err := workouts.NewEntry(catalog, workouts.DefaultLimits, date, "Squat", 5, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), entry.Date)
	assert.Equal(t, "Squat", entry.Exercise)
	assert.Equal(t, workouts.Legs, entry.MuscleGroup)
	assert.Equal(t, 2500.0, entry.Volume)

	entry, err = workouts.NewEntry(catalog, workouts.DefaultLimits, date, "Sled Push", 2, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, workouts.Other, entry.MuscleGroup)
	assert.Equal(t, 20.0, entry.Volume)

	_, err = workouts.NewEntry(catalog, workouts.DefaultLimits, date, "Squat", 0, 5, 100)
	assert.ErrorIs(t, err, workouts.ErrInputOutOfRange)

	_, err = workouts.NewEntry(catalog, workouts.DefaultLimits, time.Time{}, "Squat", 5, 5, 100)
	assert.ErrorIs(t, err, workouts.ErrInvalidDate)
}

func TestEntry_JSON(t *testing.T) {
	entry, err := workouts.NewEntry(
		workouts.DefaultCatalog(), workouts.DefaultLimits,
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "Bench Press", 3, 8, 80,
	)
	require.NoError(t, err)

	entryBytes, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"date": "2025-01-02",
		"exercise": "Bench Press",
		"muscle_group": "Chest",
		"sets": 3,
		"reps": 8,
		"weight": 80,
		"volume": 1920
	}`, string(entryBytes))

	var decoded workouts.Entry
	require.NoError(t, json.Unmarshal(entryBytes, &decoded))
	assert.Equal(t, entry, decoded)

	err = json.Unmarshal([]byte(`{"date": "02.01.2025"}`), &decoded)
	assert.ErrorIs(t, err, workouts.ErrInvalidDate)
}
