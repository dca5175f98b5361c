package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "gymbalance"
	serverVersion = "1.0.0"
)

// NewServer builds the MCP server exposing the workout log: catalog, weekly summary and entries.
// Served over stdio by cmd/workouts_mcp and mounted at /mcp by the main service.
func NewServer(service workoutsService) *mcp.Server {
	h := NewHandler(service)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercise_catalog",
		Description: "Returns the known exercises grouped by muscle group, the canonical muscle group order (Chest, Back, Legs, Shoulders, Arms, Core) and the accepted sets/reps/weight limits. Exercises not in the catalog are logged under Other.",
	}, h.GetExerciseCatalogTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_weekly_summary",
		Description: "Returns the total training volume (sets x reps x weight, bodyweight counted as 1 kg) per muscle group for a date range, the neglected muscle groups (below 20% of the top group) and a suggestion. Args: from_date, to_date (YYYY-MM-DD, both inclusive); defaults to the last 7 days.",
	}, h.GetWeeklySummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_workouts",
		Description: "Returns the logged workout entries (date, exercise, muscle group, sets, reps, weight, volume) in the given date range, in the order they were logged. Args: from_date, to_date (YYYY-MM-DD); defaults to the last 7 days.",
	}, h.ListWorkoutsTool())

	return s
}
