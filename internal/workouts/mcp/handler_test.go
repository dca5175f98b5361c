package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/2beens/gymbalance/internal/workouts"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService implements workoutsService for tests.
type fakeService struct {
	summary    *workouts.Summary
	summaryErr error
	entries    []workouts.Entry
	listErr    error

	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeService) Catalog() *workouts.Catalog {
	return workouts.DefaultCatalog()
}

func (f *fakeService) Limits() workouts.Limits {
	return workouts.DefaultLimits
}

func (f *fakeService) Summarize(_ context.Context, start, end time.Time) (*workouts.Summary, error) {
	f.gotFrom, f.gotTo = start, end
	return f.summary, f.summaryErr
}

func (f *fakeService) ListEntries(_ context.Context, params workouts.ListParams) ([]workouts.Entry, error) {
	if params.From != nil {
		f.gotFrom = *params.From
	}
	if params.To != nil {
		f.gotTo = *params.To
	}
	return f.entries, f.listErr
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func date(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestHandler_GetExerciseCatalogTool(t *testing.T) {
	h := NewHandler(&fakeService{})
	res, _, err := h.GetExerciseCatalogTool()(context.Background(), &mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var catalog catalogResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &catalog))
	assert.Equal(t, []string{"Barbell Row", "Deadlift", "Lat Pulldown", "Pull-ups"}, catalog.Exercises["Back"])
	assert.Equal(t, []string{"Crunches", "Plank"}, catalog.Exercises["Core"])
	assert.Len(t, catalog.Exercises, 6)
	assert.Equal(t, workouts.MuscleGroupOrder, catalog.MuscleGroups)
	assert.Equal(t, 500.0, catalog.Limits.MaxWeight)
}

func TestHandler_GetWeeklySummaryTool(t *testing.T) {
	t.Run("returns_summary", func(t *testing.T) {
		svc := &fakeService{summary: &workouts.Summary{
			Start:     date(1),
			End:       date(2),
			Rows:      []workouts.VolumeRow{{MuscleGroup: workouts.Chest, TotalVolume: 30}, {MuscleGroup: workouts.Legs, TotalVolume: 3000}},
			Neglected: []workouts.MuscleGroup{workouts.Chest},
			Message:   "You might be neglecting: Chest",
		}}
		h := NewHandler(svc)
		res, _, err := h.GetWeeklySummaryTool()(context.Background(), &mcp.CallToolRequest{}, DateRangeInput{
			FromDate: "2024-01-01",
			ToDate:   "2024-01-02",
		})
		require.NoError(t, err)
		require.False(t, res.IsError)
		assert.Equal(t, date(1), svc.gotFrom)
		assert.Equal(t, date(2), svc.gotTo)

		var summary workouts.Summary
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &summary))
		assert.Equal(t, []workouts.MuscleGroup{workouts.Chest}, summary.Neglected)
		assert.Equal(t, "You might be neglecting: Chest", summary.Message)
	})

	t.Run("defaults_to_last_week", func(t *testing.T) {
		svc := &fakeService{summary: &workouts.Summary{Start: date(1), End: date(7)}}
		h := NewHandler(svc)
		h.now = func() time.Time { return time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC) }

		res, _, err := h.GetWeeklySummaryTool()(context.Background(), &mcp.CallToolRequest{}, DateRangeInput{})
		require.NoError(t, err)
		require.False(t, res.IsError)
		assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), svc.gotFrom)
		assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), svc.gotTo)
	})

	t.Run("invalid_from_date", func(t *testing.T) {
		h := NewHandler(&fakeService{})
		res, _, err := h.GetWeeklySummaryTool()(context.Background(), &mcp.CallToolRequest{}, DateRangeInput{FromDate: "bad"})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "Invalid from_date: use YYYY-MM-DD", resultText(t, res))
	})

	t.Run("storage_error", func(t *testing.T) {
		svc := &fakeService{summaryErr: errors.New("workout storage corrupt: missing header")}
		h := NewHandler(svc)
		res, _, err := h.GetWeeklySummaryTool()(context.Background(), &mcp.CallToolRequest{}, DateRangeInput{})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "Error building summary: workout storage corrupt: missing header", resultText(t, res))
	})
}

func TestHandler_ListWorkoutsTool(t *testing.T) {
	t.Run("returns_entries", func(t *testing.T) {
		svc := &fakeService{entries: []workouts.Entry{
			{Date: date(2), Exercise: "Squat", MuscleGroup: workouts.Legs, Sets: 3, Reps: 10, Weight: 100, Volume: 3000},
		}}
		h := NewHandler(svc)
		res, _, err := h.ListWorkoutsTool()(context.Background(), &mcp.CallToolRequest{}, DateRangeInput{
			FromDate: "2024-01-01",
			ToDate:   "2024-01-07",
		})
		require.NoError(t, err)
		require.False(t, res.IsError)
		assert.Equal(t, date(7), svc.gotTo)

		var entries []workouts.Entry
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &entries))
		assert.Equal(t, svc.entries, entries)
	})

	t.Run("invalid_to_date", func(t *testing.T) {
		h := NewHandler(&fakeService{})
		res, _, err := h.ListWorkoutsTool()(context.Background(), &mcp.CallToolRequest{}, DateRangeInput{ToDate: "07.01.2024"})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "Invalid to_date: use YYYY-MM-DD", resultText(t, res))
	})

	t.Run("list_error", func(t *testing.T) {
		h := NewHandler(&fakeService{listErr: errors.New("disk gone")})
		res, _, err := h.ListWorkoutsTool()(context.Background(), &mcp.CallToolRequest{}, DateRangeInput{})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "Error listing workouts: disk gone", resultText(t, res))
	})
}
