package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymbalance/internal/telemetry/metrics"
	"github.com/2beens/gymbalance/internal/telemetry/tracing"
	"github.com/2beens/gymbalance/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

type workoutStore interface {
	LoadAll(ctx context.Context) ([]Entry, error)
	Append(ctx context.Context, entry Entry) ([]Entry, error)
	Version(ctx context.Context) (string, error)
}

type entryArchiver interface {
	Archive(ctx context.Context, position int, entry Entry) error
}

const (
	MessageNoData      = "No data yet. Add a workout entry above."
	MessageEmptyRange  = "No entries in the selected date range."
	DefaultSummaryDays = 7
	defaultCacheSizeMB = 1
)

type SaveParams struct {
	Date     time.Time
	Exercise string
	Sets     int
	Reps     int
	Weight   float64
}

type SaveConfirmation struct {
	Entry        Entry  `json:"entry"`
	TotalEntries int    `json:"total_entries"`
	Message      string `json:"message"`
}

type Summary struct {
	Start          time.Time     `json:"start"`
	End            time.Time     `json:"end"`
	Rows           []VolumeRow   `json:"rows"`
	Neglected      []MuscleGroup `json:"neglected"`
	TotalEntries   int           `json:"total_entries"`
	EntriesInRange int           `json:"entries_in_range"`
	Message        string        `json:"message"`
}

type summaryAlias Summary

type summaryJSON struct {
	summaryAlias
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		summaryAlias: summaryAlias(s),
		Start:        s.Start.Format(pkg.DateLayout),
		End:          s.End.Format(pkg.DateLayout),
	})
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	var raw summaryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := pkg.ParseDate(raw.Start)
	if err != nil {
		return fmt.Errorf("%w: start: %s", ErrInvalidDate, err)
	}
	end, err := pkg.ParseDate(raw.End)
	if err != nil {
		return fmt.Errorf("%w: end: %s", ErrInvalidDate, err)
	}
	*s = Summary(raw.summaryAlias)
	s.Start, s.End = start, end
	return nil
}

// ListParams filters listed entries by date; nil bounds are open.
type ListParams struct {
	From *time.Time
	To   *time.Time
}

type ServiceParams struct {
	Store          workoutStore
	Catalog        *Catalog
	Limits         Limits
	NeglectRatio   float64
	Cache          *SummaryCache
	Archiver       entryArchiver
	MetricsManager *metrics.Manager
}

// Service is what the web form, the JSON api and the MCP tools work with:
// it validates and saves entries and builds the weekly summaries.
type Service struct {
	store          workoutStore
	catalog        *Catalog
	limits         Limits
	neglectRatio   float64
	cache          *SummaryCache
	archiver       entryArchiver
	metricsManager *metrics.Manager
}

func NewService(params ServiceParams) *Service {
	s := &Service{
		store:          params.Store,
		catalog:        params.Catalog,
		limits:         params.Limits,
		neglectRatio:   params.NeglectRatio,
		cache:          params.Cache,
		archiver:       params.Archiver,
		metricsManager: params.MetricsManager,
	}
	if s.catalog == nil {
		s.catalog = DefaultCatalog()
	}
	if s.limits == (Limits{}) {
		s.limits = DefaultLimits
	}
	if s.neglectRatio == 0 {
		s.neglectRatio = DefaultNeglectRatio
	}
	if s.cache == nil {
		s.cache = NewSummaryCache(defaultCacheSizeMB, s.metricsManager)
	}
	return s
}

func (s *Service) Catalog() *Catalog {
	return s.catalog
}

func (s *Service) Limits() Limits {
	return s.limits
}

func (s *Service) NeglectRatio() float64 {
	return s.neglectRatio
}

func (s *Service) Save(ctx context.Context, params SaveParams) (_ *SaveConfirmation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsService.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	entry, err := NewEntry(s.catalog, s.limits, params.Date, params.Exercise, params.Sets, params.Reps, params.Weight)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("entry.exercise", entry.Exercise),
		attribute.String("entry.muscle_group", string(entry.MuscleGroup)),
	)

	all, err := s.store.Append(ctx, entry)
	if err != nil {
		s.countStorageError(err)
		return nil, fmt.Errorf("append entry: %w", err)
	}
	s.cache.Clear()

	if s.metricsManager != nil {
		s.metricsManager.CounterSavedEntries.WithLabelValues(string(entry.MuscleGroup)).Inc()
		s.metricsManager.CounterSavedVolume.WithLabelValues(string(entry.MuscleGroup)).Add(entry.Volume)
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, len(all), entry); err != nil {
			log.Errorf("archive entry %d [%s]: %s", len(all), entry.Exercise, err)
			if s.metricsManager != nil {
				s.metricsManager.CounterArchiveFailures.Inc()
			}
		}
	}

	return &SaveConfirmation{
		Entry:        entry,
		TotalEntries: len(all),
		Message: fmt.Sprintf(
			"Saved: %s on %s → %s, volume=%.0f",
			entry.Exercise, entry.Date.Format(pkg.DateLayout), entry.MuscleGroup, entry.Volume,
		),
	}, nil
}

// Summarize aggregates the volume per muscle group over [start, end] and flags the neglected groups.
func (s *Service) Summarize(ctx context.Context, start, end time.Time) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsService.summarize")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", ErrInvalidDate)
	}
	start, end = pkg.DateOnly(start), pkg.DateOnly(end)
	span.SetAttributes(
		attribute.String("summary.start", start.Format(pkg.DateLayout)),
		attribute.String("summary.end", end.Format(pkg.DateLayout)),
	)

	storeVersion, err := s.store.Version(ctx)
	if err != nil {
		log.Warnf("summarize: store version: %s", err)
		storeVersion = ""
	}
	if storeVersion != "" {
		if cached, ok := s.cache.Get(start, end, storeVersion); ok {
			span.SetAttributes(attribute.Bool("summary.cached", true))
			return cached, nil
		}
	}

	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		s.countStorageError(err)
		return nil, fmt.Errorf("load entries: %w", err)
	}

	summary := s.summarize(entries, start, end)
	if storeVersion != "" {
		s.cache.Set(start, end, storeVersion, summary)
	}

	return summary, nil
}

func (s *Service) summarize(entries []Entry, start, end time.Time) *Summary {
	rows := Aggregate(s.catalog, entries, start, end)
	neglected := DetectNeglected(rows, s.neglectRatio)

	inRange := 0
	for _, e := range entries {
		if InRange(e.Date, start, end) {
			inRange++
		}
	}

	summary := &Summary{
		Start:          start,
		End:            end,
		Rows:           rows,
		Neglected:      neglected,
		TotalEntries:   len(entries),
		EntriesInRange: inRange,
	}
	switch {
	case len(entries) == 0:
		summary.Message = MessageNoData
	case len(rows) == 0:
		summary.Message = MessageEmptyRange
	default:
		summary.Message = Suggestion(neglected)
	}

	return summary
}

// ListEntries returns the stored entries within the params date bounds, in file order.
func (s *Service) ListEntries(ctx context.Context, params ListParams) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsService.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		s.countStorageError(err)
		return nil, fmt.Errorf("load entries: %w", err)
	}

	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if params.From != nil && pkg.DateOnly(e.Date).Before(pkg.DateOnly(*params.From)) {
			continue
		}
		if params.To != nil && pkg.DateOnly(e.Date).After(pkg.DateOnly(*params.To)) {
			continue
		}
		filtered = append(filtered, e)
	}

	return filtered, nil
}

// DefaultRange is the last seven days, today included.
func DefaultRange(now time.Time) (start, end time.Time) {
	end = pkg.DateOnly(now)
	start = end.AddDate(0, 0, -(DefaultSummaryDays - 1))
	return start, end
}

func (s *Service) countStorageError(err error) {
	if errors.Is(err, ErrStorageCorrupt) && s.metricsManager != nil {
		s.metricsManager.CounterStorageCorrupt.Inc()
	}
}
