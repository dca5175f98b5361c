package workouts

import (
	"sort"
	"time"

	"github.com/2beens/gymbalance/pkg"
)

type VolumeRow struct {
	MuscleGroup MuscleGroup `json:"muscle_group"`
	TotalVolume float64     `json:"total_volume"`
}

// Aggregate sums the volume per muscle group of the entries dated within [start, end]
// (both inclusive, dates only). Rows follow the catalog order; groups unknown to the
// catalog come last, in the order they first appear in entries.
func Aggregate(catalog *Catalog, entries []Entry, start, end time.Time) []VolumeRow {
	start, end = pkg.DateOnly(start), pkg.DateOnly(end)

	rows := []VolumeRow{}
	rowIndex := make(map[MuscleGroup]int)
	for _, e := range entries {
		if !InRange(e.Date, start, end) {
			continue
		}
		i, ok := rowIndex[e.MuscleGroup]
		if !ok {
			i = len(rows)
			rowIndex[e.MuscleGroup] = i
			rows = append(rows, VolumeRow{MuscleGroup: e.MuscleGroup})
		}
		rows[i].TotalVolume += e.Volume
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return catalog.Rank(rows[i].MuscleGroup) < catalog.Rank(rows[j].MuscleGroup)
	})

	return rows
}

// InRange reports whether the calendar date of t is within [start, end].
func InRange(t, start, end time.Time) bool {
	d := pkg.DateOnly(t)
	return !d.Before(pkg.DateOnly(start)) && !d.After(pkg.DateOnly(end))
}
