// Command schedule_probe fetches the roster and classmate-match feeds with
// a raw upstream token and prints the reconciled schedule as JSON. Useful
// for checking upstream shapes without running the full API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Anandhg36/RMIT-Hackathon/internal/service"
	"github.com/Anandhg36/RMIT-Hackathon/internal/source"
)

type staticToken string

func (s staticToken) Token(context.Context, string) (string, error) {
	return string(s), nil
}

func main() {
	baseURL := flag.String("base-url", "https://rmit.instructure.com/api/v1", "upstream API base URL")
	token := flag.String("token", os.Getenv("UPSTREAM_TOKEN"), "upstream API token")
	timeout := flag.Duration("timeout", 30*time.Second, "fetch timeout")
	flag.Parse()

	if *token == "" {
		log.Fatal("provide -token or set UPSTREAM_TOKEN")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	client := source.NewClient(*baseURL, *timeout, staticToken(*token), logger)
	rosterSrc := source.NewRosterSource(client)
	matchSrc := source.NewMatchSource(client)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	roster, err := rosterSrc.Courses(ctx, "probe")
	if err != nil {
		log.Fatalf("roster fetch failed: %v", err)
	}
	results, err := matchSrc.Results(ctx, "probe")
	if err != nil {
		log.Fatalf("classmate match fetch failed: %v", err)
	}

	engine := service.NewReconcileService(logger)
	schedules := engine.Reconcile(roster, results.Matched, results.Unmatched)

	out, err := json.MarshalIndent(schedules, "", "  ")
	if err != nil {
		log.Fatalf("marshal schedules: %v", err)
	}
	fmt.Println(string(out))
	logger.Sugar().Infow("reconciled",
		"roster_courses", len(roster),
		"matched_rows", len(results.Matched),
		"unmatched_rows", len(results.Unmatched),
		"schedules", len(schedules))
}
