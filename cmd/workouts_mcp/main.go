// Package main runs the workouts MCP server over stdio, for local MCP clients.
// The same tools are mounted on the main service at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/2beens/gymbalance/internal/config"
	"github.com/2beens/gymbalance/internal/workouts"
	workoutsmcp "github.com/2beens/gymbalance/internal/workouts/mcp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// read only: the tools never save, so no archive or cache sizing is needed here
	service := workouts.NewService(workouts.ServiceParams{
		Store:        workouts.NewCSVStore(cfg.WorkoutsCsvPath),
		Limits:       cfg.Limits,
		NeglectRatio: cfg.NeglectRatio,
	})
	server := workoutsmcp.NewServer(service)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
