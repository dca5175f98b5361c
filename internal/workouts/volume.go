package workouts

// Volume is sets x reps x weight. Bodyweight work (weight 0) counts with a weight of 1.
func Volume(sets, reps int, weight float64) float64 {
	effectiveWeight := weight
	if weight <= 0 {
		effectiveWeight = 1
	}
	return float64(sets) * float64(reps) * effectiveWeight
}
