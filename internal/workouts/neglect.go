package workouts

import (
	"fmt"
	"strings"
)

// DetectNeglected returns the groups whose volume is strictly below ratio x the top
// group volume, in row order. When the top volume is 0 nothing is neglected.
func DetectNeglected(rows []VolumeRow, ratio float64) []MuscleGroup {
	maxVolume := 0.0
	for _, r := range rows {
		if r.TotalVolume > maxVolume {
			maxVolume = r.TotalVolume
		}
	}

	threshold := ratio * maxVolume
	neglected := []MuscleGroup{}
	for _, r := range rows {
		if r.TotalVolume < threshold {
			neglected = append(neglected, r.MuscleGroup)
		}
	}

	return neglected
}

func Suggestion(neglected []MuscleGroup) string {
	if len(neglected) == 0 {
		return "Great balance! No muscle group looks neglected this week."
	}
	names := make([]string, 0, len(neglected))
	for _, g := range neglected {
		names = append(names, string(g))
	}
	return fmt.Sprintf("You might be neglecting: %s", strings.Join(names, ", "))
}
