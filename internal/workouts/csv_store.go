package workouts

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymbalance/internal/telemetry/tracing"
	"github.com/2beens/gymbalance/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var csvHeader = []string{"date", "exercise", "muscle_group", "sets", "reps", "weight", "volume"}

// accepted date layouts when reading; the time of day, if any, is dropped
var csvDateLayouts = []string{
	pkg.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// CSVStore keeps all workout entries in a single CSV file.
//
// Every Append reads the whole file and rewrites it from scratch (temp file + rename),
// so the file on disk is always either the old or the new full history.
// The mutex only serializes callers within this process: a second process writing
// the same file can still lose updates.
type CSVStore struct {
	path  string
	mutex sync.Mutex
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{
		path: path,
	}
}

func (s *CSVStore) Path() string {
	return s.path
}

// LoadAll returns all entries in file order. A missing file is created with just the header.
func (s *CSVStore) LoadAll(ctx context.Context) (_ []Entry, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "csvStore.loadAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("entries.count", len(entries)))
	return entries, nil
}

// Append adds the entry at the end of the history and returns the full updated history.
func (s *CSVStore) Append(ctx context.Context, entry Entry) (_ []Entry, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "csvStore.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.loadAll()
	if err != nil {
		return nil, err
	}

	entries = append(entries, entry)
	if err := s.writeAll(entries); err != nil {
		return nil, fmt.Errorf("rewrite workouts file: %w", err)
	}

	span.SetAttributes(attribute.Int("entries.count", len(entries)))
	log.Debugf("csv store: entry [%s / %s] appended, %d entries total", entry.Exercise, entry.MuscleGroup, len(entries))

	return entries, nil
}

// Version fingerprints the current file content; it changes with every write.
func (s *CSVStore) Version(_ context.Context) (string, error) {
	stat, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "absent", nil
	}
	if err != nil {
		return "", fmt.Errorf("stat workouts file: %w", err)
	}
	return fmt.Sprintf("%d-%d", stat.ModTime().UnixNano(), stat.Size()), nil
}

func (s *CSVStore) loadAll() ([]Entry, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.writeAll(nil); err != nil {
			return nil, fmt.Errorf("init workouts file: %w", err)
		}
		log.Infof("csv store: created empty workouts file [%s]", s.path)
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open workouts file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Warnf("close workouts file: %s", err)
		}
	}()

	return readEntries(file)
}

func readEntries(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrStorageCorrupt)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %s", ErrStorageCorrupt, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !slices.Equal(header, csvHeader) {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrStorageCorrupt, header)
	}

	entries := []Entry{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrStorageCorrupt, err)
		}

		entry, err := parseRecord(record)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: %s", ErrStorageCorrupt, line, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// record columns: date,exercise,muscle_group,sets,reps,weight,volume
func parseRecord(record []string) (Entry, error) {
	date, err := parseCSVDate(record[0])
	if err != nil {
		return Entry{}, err
	}
	sets, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return Entry{}, fmt.Errorf("sets: %w", err)
	}
	reps, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return Entry{}, fmt.Errorf("reps: %w", err)
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
	if err != nil {
		return Entry{}, fmt.Errorf("weight: %w", err)
	}
	volume, err := strconv.ParseFloat(strings.TrimSpace(record[6]), 64)
	if err != nil {
		return Entry{}, fmt.Errorf("volume: %w", err)
	}

	return Entry{
		Date:        date,
		Exercise:    record[1],
		MuscleGroup: MuscleGroup(record[2]),
		Sets:        sets,
		Reps:        reps,
		Weight:      weight,
		Volume:      volume,
	}, nil
}

func parseCSVDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return pkg.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("date [%s] is not an ISO date", value)
}

func formatRecord(e Entry) []string {
	return []string{
		e.Date.Format(pkg.DateLayout),
		e.Exercise,
		string(e.MuscleGroup),
		strconv.Itoa(e.Sets),
		strconv.Itoa(e.Reps),
		strconv.FormatFloat(e.Weight, 'f', -1, 64),
		strconv.FormatFloat(e.Volume, 'f', -1, 64),
	}
}

// writeAll replaces the file with the header and all given entries.
func (s *CSVStore) writeAll(entries []Entry) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create workouts dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".workouts-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write(formatRecord(e)); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}
