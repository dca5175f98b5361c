package workouts

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/2beens/gymbalance/pkg"
)

// Limits are the accepted input ranges for a single entry.
type Limits struct {
	MinSets   int     `json:"min_sets" toml:"min_sets"`
	MaxSets   int     `json:"max_sets" toml:"max_sets"`
	MinReps   int     `json:"min_reps" toml:"min_reps"`
	MaxReps   int     `json:"max_reps" toml:"max_reps"`
	MinWeight float64 `json:"min_weight" toml:"min_weight"`
	MaxWeight float64 `json:"max_weight" toml:"max_weight"`
}

var DefaultLimits = Limits{
	MinSets:   1,
	MaxSets:   20,
	MinReps:   1,
	MaxReps:   100,
	MinWeight: 0,
	MaxWeight: 500,
}

// DefaultNeglectRatio: a group is neglected below this share of the top group volume.
const DefaultNeglectRatio = 0.2

func (l Limits) Check(sets, reps int, weight float64) error {
	if sets < l.MinSets || sets > l.MaxSets {
		return fmt.Errorf("%w: sets %d not in [%d, %d]", ErrInputOutOfRange, sets, l.MinSets, l.MaxSets)
	}
	if reps < l.MinReps || reps > l.MaxReps {
		return fmt.Errorf("%w: reps %d not in [%d, %d]", ErrInputOutOfRange, reps, l.MinReps, l.MaxReps)
	}
	if math.IsNaN(weight) || weight < l.MinWeight || weight > l.MaxWeight {
		return fmt.Errorf("%w: weight %g not in [%g, %g]", ErrInputOutOfRange, weight, l.MinWeight, l.MaxWeight)
	}
	return nil
}

// Entry is a single logged exercise. MuscleGroup and Volume are derived when the
// entry is created and stored as they are; they are never recomputed on read.
type Entry struct {
	Date        time.Time   `json:"date"`
	Exercise    string      `json:"exercise"`
	MuscleGroup MuscleGroup `json:"muscle_group"`
	Sets        int         `json:"sets"`
	Reps        int         `json:"reps"`
	Weight      float64     `json:"weight"`
	Volume      float64     `json:"volume"`
}

// NewEntry validates the input against limits and builds an entry with its muscle
// group looked up in the catalog and its volume computed.
func NewEntry(
	catalog *Catalog,
	limits Limits,
	date time.Time,
	exercise string,
	sets, reps int,
	weight float64,
) (Entry, error) {
	if date.IsZero() {
		return Entry{}, fmt.Errorf("%w: date not set", ErrInvalidDate)
	}
	if err := limits.Check(sets, reps, weight); err != nil {
		return Entry{}, err
	}
	// csv reading turns \r\n inside a quoted field into \n, so such names would not read back as saved
	if strings.ContainsFunc(exercise, unicode.IsControl) {
		return Entry{}, fmt.Errorf("%w: exercise name %q contains control characters", ErrInputOutOfRange, exercise)
	}

	return Entry{
		Date:        pkg.DateOnly(date),
		Exercise:    exercise,
		MuscleGroup: catalog.Lookup(exercise),
		Sets:        sets,
		Reps:        reps,
		Weight:      weight,
		Volume:      Volume(sets, reps, weight),
	}, nil
}

type entryAlias Entry

type entryJSON struct {
	entryAlias
	Date string `json:"date"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		entryAlias: entryAlias(e),
		Date:       e.Date.Format(pkg.DateLayout),
	})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := pkg.ParseDate(raw.Date)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, err)
	}
	*e = Entry(raw.entryAlias)
	e.Date = date
	return nil
}
