package workouts

import (
	"sort"
	"strings"
)

type MuscleGroup string

const (
	Chest     MuscleGroup = "Chest"
	Back      MuscleGroup = "Back"
	Legs      MuscleGroup = "Legs"
	Shoulders MuscleGroup = "Shoulders"
	Arms      MuscleGroup = "Arms"
	Core      MuscleGroup = "Core"
	// Other is assigned to exercises missing from the catalog.
	Other MuscleGroup = "Other"
)

// MuscleGroupOrder is the canonical display order.
var MuscleGroupOrder = []MuscleGroup{Chest, Back, Legs, Shoulders, Arms, Core}

var defaultExercises = map[string]MuscleGroup{
	"Bench Press":            Chest,
	"Incline Dumbbell Press": Chest,
	"Push-ups":               Chest,
	"Deadlift":               Back,
	"Barbell Row":            Back,
	"Lat Pulldown":           Back,
	"Pull-ups":               Back,
	"Squat":                  Legs,
	"Lunges":                 Legs,
	"Leg Press":              Legs,
	"Overhead Press":         Shoulders,
	"Lateral Raise":          Shoulders,
	"Biceps Curl":            Arms,
	"Hammer Curl":            Arms,
	"Triceps Pushdown":       Arms,
	"Plank":                  Core,
	"Crunches":               Core,
}

// Catalog maps exercise names to muscle groups. It is immutable once created.
type Catalog struct {
	exercises map[string]MuscleGroup
	order     []MuscleGroup
	rank      map[MuscleGroup]int
	names     []string
}

func NewCatalog(exercises map[string]MuscleGroup, order []MuscleGroup) *Catalog {
	c := &Catalog{
		exercises: make(map[string]MuscleGroup, len(exercises)),
		order:     append([]MuscleGroup{}, order...),
		rank:      make(map[MuscleGroup]int, len(order)),
	}
	for name, group := range exercises {
		c.exercises[name] = group
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	for i, group := range c.order {
		c.rank[group] = i
	}
	return c
}

// DefaultCatalog returns the built-in exercise catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultExercises, MuscleGroupOrder)
}

// Lookup returns the muscle group of the exercise, or Other for unknown exercises.
func (c *Catalog) Lookup(exercise string) MuscleGroup {
	if group, ok := c.exercises[strings.TrimSpace(exercise)]; ok {
		return group
	}
	return Other
}

// ExerciseNames returns the catalog exercises sorted by name.
func (c *Catalog) ExerciseNames() []string {
	return append([]string{}, c.names...)
}

func (c *Catalog) MuscleGroupOrder() []MuscleGroup {
	return append([]MuscleGroup{}, c.order...)
}

// Rank is the sort key of a muscle group. Groups outside the canonical order
// all share the last rank, len(order).
func (c *Catalog) Rank(group MuscleGroup) int {
	if r, ok := c.rank[group]; ok {
		return r
	}
	return len(c.order)
}
