package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/2beens/gymbalance/internal/workouts"
	"github.com/2beens/gymbalance/pkg"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// workoutsService is the part of workouts.Service the tools use.
type workoutsService interface {
	Catalog() *workouts.Catalog
	Limits() workouts.Limits
	Summarize(ctx context.Context, start, end time.Time) (*workouts.Summary, error)
	ListEntries(ctx context.Context, params workouts.ListParams) ([]workouts.Entry, error)
}

// Handler turns MCP tool calls into service calls and formats the results.
type Handler struct {
	service workoutsService
	now     func() time.Time
}

func NewHandler(service workoutsService) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

type catalogResult struct {
	Exercises    map[string][]string    `json:"exercises_by_muscle_group"`
	MuscleGroups []workouts.MuscleGroup `json:"muscle_group_order"`
	Limits       workouts.Limits        `json:"limits"`
}

// GetExerciseCatalogTool returns the handler for get_exercise_catalog.
func (h *Handler) GetExerciseCatalogTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		catalog := h.service.Catalog()
		res := catalogResult{
			Exercises:    make(map[string][]string),
			MuscleGroups: catalog.MuscleGroupOrder(),
			Limits:       h.service.Limits(),
		}
		for _, name := range catalog.ExerciseNames() {
			group := string(catalog.Lookup(name))
			res.Exercises[group] = append(res.Exercises[group], name)
		}
		return jsonResult(res)
	}
}

// DateRangeInput is the input of the date range tools. Empty dates default to the last 7 days.
type DateRangeInput struct {
	FromDate string `json:"from_date,omitempty" jsonschema:"Start date (YYYY-MM-DD), defaults to 6 days ago"`
	ToDate   string `json:"to_date,omitempty" jsonschema:"End date (YYYY-MM-DD), defaults to today"`
}

func (h *Handler) parseRange(in DateRangeInput) (time.Time, time.Time, *mcp.CallToolResult) {
	from, to := workouts.DefaultRange(h.now())
	if in.FromDate != "" {
		date, err := pkg.ParseDate(in.FromDate)
		if err != nil {
			return time.Time{}, time.Time{}, errorResult("Invalid from_date: use YYYY-MM-DD")
		}
		from = date
	}
	if in.ToDate != "" {
		date, err := pkg.ParseDate(in.ToDate)
		if err != nil {
			return time.Time{}, time.Time{}, errorResult("Invalid to_date: use YYYY-MM-DD")
		}
		to = date
	}
	return from, to, nil
}

// GetWeeklySummaryTool returns the handler for get_weekly_summary.
func (h *Handler) GetWeeklySummaryTool() func(context.Context, *mcp.CallToolRequest, DateRangeInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DateRangeInput) (*mcp.CallToolResult, any, error) {
		from, to, errRes := h.parseRange(in)
		if errRes != nil {
			return errRes, nil, nil
		}
		summary, err := h.service.Summarize(ctx, from, to)
		if err != nil {
			return errorResult("Error building summary: " + err.Error()), nil, nil
		}
		return jsonResult(summary)
	}
}

// ListWorkoutsTool returns the handler for list_workouts.
func (h *Handler) ListWorkoutsTool() func(context.Context, *mcp.CallToolRequest, DateRangeInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DateRangeInput) (*mcp.CallToolResult, any, error) {
		from, to, errRes := h.parseRange(in)
		if errRes != nil {
			return errRes, nil, nil
		}
		entries, err := h.service.ListEntries(ctx, workouts.ListParams{From: &from, To: &to})
		if err != nil {
			return errorResult("Error listing workouts: " + err.Error()), nil, nil
		}
		return jsonResult(entries)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error()), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
