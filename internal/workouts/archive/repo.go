package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/gymbalance/internal/telemetry/tracing"
	"github.com/2beens/gymbalance/internal/workouts"
	"github.com/2beens/gymbalance/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Repo mirrors saved entries into postgres. The CSV file stays the source of truth;
// rows are keyed by their 1-based position in the file, so archiving is idempotent.
type Repo struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db:  db,
		now: time.Now,
	}
}

// Archive stores the entry at the given position. An entry already archived at
// that position is left as it is.
func (r *Repo) Archive(ctx context.Context, position int, entry workouts.Entry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "archiveRepo.archive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("entry.position", position))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO workout_entry
				(position, date, exercise, muscle_group, sets, reps, weight, volume, archived_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		position, entry.Date, entry.Exercise, string(entry.MuscleGroup),
		entry.Sets, entry.Reps, entry.Weight, entry.Volume, r.now(),
	)
	if pkg.IsUniqueViolationError(err) {
		log.Debugf("archive: entry at position %d already archived", position)
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert entry %d: %w", position, err)
	}

	return nil
}

// Backfill archives all entries not archived yet and returns how many were added.
func (r *Repo) Backfill(ctx context.Context, entries []workouts.Entry) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "archiveRepo.backfill")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(entries) == 0 {
		return 0, nil
	}

	archivedAt := r.now()
	batch := &pgx.Batch{}
	for i, e := range entries {
		batch.Queue(
			`INSERT INTO workout_entry
				(position, date, exercise, muscle_group, sets, reps, weight, volume, archived_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (position) DO NOTHING;`,
			i+1, e.Date, e.Exercise, string(e.MuscleGroup), e.Sets, e.Reps, e.Weight, e.Volume, archivedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer func() {
		if closeErr := results.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close batch: %w", closeErr)
		}
	}()

	added := 0
	for i := range entries {
		tag, err := results.Exec()
		if err != nil {
			return added, fmt.Errorf("backfill entry %d: %w", i+1, err)
		}
		added += int(tag.RowsAffected())
	}

	span.SetAttributes(attribute.Int("entries.added", added))
	return added, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM workout_entry;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count archived entries: %w", err)
	}
	return count, nil
}

// VolumeByMuscleGroup sums the archived volume per muscle group over [start, end].
func (r *Repo) VolumeByMuscleGroup(ctx context.Context, start, end time.Time) (_ map[workouts.MuscleGroup]float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "archiveRepo.volumeByMuscleGroup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT muscle_group, SUM(volume)
				FROM workout_entry
				WHERE date >= $1 AND date <= $2
				GROUP BY muscle_group;`,
		pkg.DateOnly(start), pkg.DateOnly(end),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	volumes := make(map[workouts.MuscleGroup]float64)
	for rows.Next() {
		var group string
		var volume float64
		if err := rows.Scan(&group, &volume); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		volumes[workouts.MuscleGroup(group)] = volume
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return volumes, nil
}
