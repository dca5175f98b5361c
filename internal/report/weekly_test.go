package report

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/2beens/gymbalance/internal/telemetry/metrics"
	"github.com/2beens/gymbalance/internal/workouts"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	count      int
	err        error
	volumes    map[workouts.MuscleGroup]float64
	volumesErr error
	gotStart   time.Time
	gotEnd     time.Time
}

func (f *fakeArchive) Count(context.Context) (int, error) {
	return f.count, f.err
}

func (f *fakeArchive) VolumeByMuscleGroup(_ context.Context, start, end time.Time) (map[workouts.MuscleGroup]float64, error) {
	f.gotStart, f.gotEnd = start, end
	return f.volumes, f.volumesErr
}

func newTestService(t *testing.T) *workouts.Service {
	t.Helper()
	return workouts.NewService(workouts.ServiceParams{
		Store: workouts.NewCSVStore(filepath.Join(t.TempDir(), "workouts.csv")),
	})
}

func TestWeeklyReporter_Run(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	metricsManager := metrics.NewTestManager()
	archive := &fakeArchive{
		count: 3,
		volumes: map[workouts.MuscleGroup]float64{
			workouts.Chest: 30,
			workouts.Legs:  3000,
			workouts.Other: 20,
		},
	}
	reporter := NewWeeklyReporter(WeeklyReporterParams{
		CronExpr:       "0 8 * * 1",
		Service:        service,
		Archive:        archive,
		MetricsManager: metricsManager,
	})
	reporter.now = func() time.Time { return time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC) }

	for _, p := range []workouts.SaveParams{
		{Date: time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC), Exercise: "Plank", Sets: 1, Reps: 1},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Exercise: "Bench Press", Sets: 3, Reps: 10, Weight: 0},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Exercise: "Squat", Sets: 3, Reps: 10, Weight: 100},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Exercise: "Sled Push", Sets: 2, Reps: 10, Weight: 0},
	} {
		_, err := service.Save(ctx, p)
		require.NoError(t, err)
	}

	summary, err := reporter.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), summary.Start)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), summary.End)
	assert.Equal(t, 3, summary.EntriesInRange)
	assert.Equal(t, []workouts.MuscleGroup{workouts.Chest, workouts.Other}, summary.Neglected)

	gauge := metricsManager.GaugeNeglectedGroups
	assert.Equal(t, 1.0, testutil.ToFloat64(gauge.WithLabelValues("Chest")))
	assert.Equal(t, 0.0, testutil.ToFloat64(gauge.WithLabelValues("Legs")))
	assert.Equal(t, 0.0, testutil.ToFloat64(gauge.WithLabelValues("Core")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gauge.WithLabelValues("Other")))
	assert.Equal(t, 0, testutil.CollectAndCount(metricsManager.CounterArchiveMismatch))
}

func TestWeeklyReporter_Run_ArchiveVolumeMismatch(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	metricsManager := metrics.NewTestManager()
	archive := &fakeArchive{
		count: 1,
		volumes: map[workouts.MuscleGroup]float64{
			workouts.Legs: 1500,
			workouts.Core: 10,
		},
	}
	reporter := NewWeeklyReporter(WeeklyReporterParams{
		CronExpr:       "0 8 * * 1",
		Service:        service,
		Archive:        archive,
		MetricsManager: metricsManager,
	})
	reporter.now = func() time.Time { return time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC) }

	for _, p := range []workouts.SaveParams{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Exercise: "Squat", Sets: 3, Reps: 10, Weight: 100},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Exercise: "Bench Press", Sets: 3, Reps: 10, Weight: 60},
	} {
		_, err := service.Save(ctx, p)
		require.NoError(t, err)
	}

	summary, err := reporter.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary.Start, archive.gotStart)
	assert.Equal(t, summary.End, archive.gotEnd)

	mismatched, err := reporter.checkArchive(ctx, summary)
	require.NoError(t, err)
	assert.ElementsMatch(t, []workouts.MuscleGroup{workouts.Chest, workouts.Legs, workouts.Core}, mismatched)

	// Run and the direct check each counted once
	counter := metricsManager.CounterArchiveMismatch
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues("Chest")))
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues("Legs")))
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues("Core")))
}

func TestWeeklyReporter_Run_ArchiveVolumeFailureIsIgnored(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	reporter := NewWeeklyReporter(WeeklyReporterParams{
		CronExpr:       "0 8 * * 1",
		Service:        newTestService(t),
		Archive:        &fakeArchive{volumesErr: errors.New("db down")},
		MetricsManager: metricsManager,
	})

	_, err := reporter.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.CollectAndCount(metricsManager.CounterArchiveMismatch))
}

func TestWeeklyReporter_Run_ArchiveCountFailureIsIgnored(t *testing.T) {
	reporter := NewWeeklyReporter(WeeklyReporterParams{
		CronExpr: "0 8 * * 1",
		Service:  newTestService(t),
		Archive:  &fakeArchive{err: errors.New("db down")},
	})

	summary, err := reporter.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, workouts.MessageNoData, summary.Message)
}

func TestWeeklyReporter_Start(t *testing.T) {
	reporter := NewWeeklyReporter(WeeklyReporterParams{
		CronExpr: "not a cron",
		Service:  newTestService(t),
	})
	assert.Error(t, reporter.Start())

	reporter = NewWeeklyReporter(WeeklyReporterParams{
		CronExpr: "0 8 * * 1",
		Service:  newTestService(t),
	})
	require.NoError(t, reporter.Start())
	reporter.Stop()
}
