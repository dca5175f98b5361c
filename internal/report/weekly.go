package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/2beens/gymbalance/internal/telemetry/metrics"
	"github.com/2beens/gymbalance/internal/workouts"
	"github.com/2beens/gymbalance/pkg"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"
)

const (
	jobTimeout      = time.Minute
	volumeTolerance = 1e-6
)

type summarizer interface {
	Catalog() *workouts.Catalog
	Summarize(ctx context.Context, start, end time.Time) (*workouts.Summary, error)
}

type archiveReader interface {
	Count(ctx context.Context) (int, error)
	VolumeByMuscleGroup(ctx context.Context, start, end time.Time) (map[workouts.MuscleGroup]float64, error)
}

type WeeklyReporterParams struct {
	CronExpr       string
	Service        summarizer
	Archive        archiveReader
	MetricsManager *metrics.Manager
}

// WeeklyReporter summarizes the last 7 days on a cron schedule, logs the suggestion
// and publishes the neglected groups as a gauge.
type WeeklyReporter struct {
	scheduler      *gocron.Scheduler
	cronExpr       string
	service        summarizer
	archive        archiveReader
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewWeeklyReporter(params WeeklyReporterParams) *WeeklyReporter {
	return &WeeklyReporter{
		scheduler:      gocron.NewScheduler(time.UTC),
		cronExpr:       params.CronExpr,
		service:        params.Service,
		archive:        params.Archive,
		metricsManager: params.MetricsManager,
		now:            time.Now,
	}
}

func (r *WeeklyReporter) Start() error {
	if _, err := r.scheduler.Cron(r.cronExpr).Do(r.runJob); err != nil {
		return fmt.Errorf("schedule weekly report [%s]: %w", r.cronExpr, err)
	}
	r.scheduler.StartAsync()
	log.Infof("weekly report scheduled: %s", r.cronExpr)
	return nil
}

func (r *WeeklyReporter) Stop() {
	r.scheduler.Stop()
}

func (r *WeeklyReporter) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := r.Run(ctx); err != nil {
		log.Errorf("weekly report: %s", err)
	}
}

// Run builds the report for the 7 days ending today.
func (r *WeeklyReporter) Run(ctx context.Context) (*workouts.Summary, error) {
	start, end := workouts.DefaultRange(r.now())
	summary, err := r.service.Summarize(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("summarize [%s, %s]: %w", start.Format(pkg.DateLayout), end.Format(pkg.DateLayout), err)
	}

	r.setNeglectedGauge(summary)

	fields := log.Fields{
		"start":            summary.Start.Format(pkg.DateLayout),
		"end":              summary.End.Format(pkg.DateLayout),
		"entries_in_range": summary.EntriesInRange,
		"total_entries":    summary.TotalEntries,
	}
	if r.archive != nil {
		if archived, err := r.archive.Count(ctx); err != nil {
			log.Warnf("weekly report: count archived entries: %s", err)
		} else {
			fields["archived_entries"] = archived
		}
		if mismatched, err := r.checkArchive(ctx, summary); err != nil {
			log.Warnf("weekly report: check archived volume: %s", err)
		} else {
			fields["archive_mismatches"] = len(mismatched)
		}
	}
	log.WithFields(fields).Infof("weekly report: %s", summary.Message)

	return summary, nil
}

// checkArchive compares the archived per-group volume of the summary range with the
// csv totals and returns the groups that differ.
func (r *WeeklyReporter) checkArchive(ctx context.Context, summary *workouts.Summary) ([]workouts.MuscleGroup, error) {
	archived, err := r.archive.VolumeByMuscleGroup(ctx, summary.Start, summary.End)
	if err != nil {
		return nil, err
	}

	var mismatched []workouts.MuscleGroup
	seen := make(map[workouts.MuscleGroup]bool, len(summary.Rows))
	for _, row := range summary.Rows {
		seen[row.MuscleGroup] = true
		if math.Abs(archived[row.MuscleGroup]-row.TotalVolume) > volumeTolerance {
			mismatched = append(mismatched, row.MuscleGroup)
		}
	}
	for group := range archived {
		if !seen[group] {
			mismatched = append(mismatched, group)
		}
	}

	for _, group := range mismatched {
		log.Warnf("weekly report: archived volume for %s is %g, csv has %g", group, archived[group], csvVolume(summary, group))
		if r.metricsManager != nil {
			r.metricsManager.CounterArchiveMismatch.WithLabelValues(string(group)).Inc()
		}
	}
	return mismatched, nil
}

func csvVolume(summary *workouts.Summary, group workouts.MuscleGroup) float64 {
	for _, row := range summary.Rows {
		if row.MuscleGroup == group {
			return row.TotalVolume
		}
	}
	return 0
}

func (r *WeeklyReporter) setNeglectedGauge(summary *workouts.Summary) {
	if r.metricsManager == nil {
		return
	}

	neglected := make(map[workouts.MuscleGroup]bool, len(summary.Neglected))
	for _, g := range summary.Neglected {
		neglected[g] = true
	}

	groups := r.service.Catalog().MuscleGroupOrder()
	for _, row := range summary.Rows {
		if r.service.Catalog().Rank(row.MuscleGroup) == len(groups) {
			groups = append(groups, row.MuscleGroup)
		}
	}
	for _, g := range groups {
		value := 0.0
		if neglected[g] {
			value = 1
		}
		r.metricsManager.GaugeNeglectedGroups.WithLabelValues(string(g)).Set(value)
	}
}
