// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/jurorlink"
	"github.com/poiesic/jurorlink/core"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "jurorlink",
		Usage: "Juror identity resolution across public data sources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "jurorlink.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Run an identity search for a juror and print the candidates",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "juror",
						Usage:    "Juror identifier the results are stored under",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "full-name",
						Usage: "Full name as a single string",
					},
					&cli.StringFlag{
						Name:  "first-name",
						Usage: "First name",
					},
					&cli.StringFlag{
						Name:  "last-name",
						Usage: "Last name",
					},
					&cli.IntFlag{
						Name:  "age",
						Usage: "Age in years",
					},
					&cli.StringFlag{
						Name:  "city",
						Usage: "City of residence",
					},
					&cli.StringFlag{
						Name:  "state",
						Usage: "State of residence",
					},
					&cli.StringFlag{
						Name:  "zip",
						Usage: "Zip code",
					},
					&cli.StringFlag{
						Name:  "occupation",
						Usage: "Occupation",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full candidate records as JSON",
					},
				},
			},
			{
				Name:   "confirm",
				Usage:  "Confirm a persisted candidate as the juror",
				Action: confirmCommand,
				Flags:  reviewFlags(),
			},
			{
				Name:   "reject",
				Usage:  "Reject a persisted candidate",
				Action: rejectCommand,
				Flags:  reviewFlags(),
			},
			{
				Name:   "jobs",
				Usage:  "List the search job history for a juror",
				Action: jobsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "juror",
						Usage:    "Juror identifier",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func reviewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "Candidate ID as printed by the search command",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "actor",
			Usage: "Name of the reviewer making the decision",
		},
	}
}

func openEngine(c *cli.Context) (*jurorlink.Engine, error) {
	cfg, err := jurorlink.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	return jurorlink.NewEngine(cfg)
}

func searchCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	orchestrator, err := engine.NewOrchestrator()
	if err != nil {
		return err
	}
	defer orchestrator.Release()

	query := &core.SearchQuery{
		FullName:   c.String("full-name"),
		FirstName:  c.String("first-name"),
		LastName:   c.String("last-name"),
		Age:        c.Int("age"),
		City:       c.String("city"),
		State:      c.String("state"),
		ZipCode:    c.String("zip"),
		Occupation: c.String("occupation"),
	}

	result, err := orchestrator.SearchJuror(context.Background(), c.String("juror"), query)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Searched %d sources in %dms, %d candidate(s)\n\n",
		len(result.SourcesQueried), result.DurationMillis, result.TotalCount)
	for _, candidate := range result.Candidates {
		printCandidate(candidate)
	}
	return nil
}

func printCandidate(candidate *core.Candidate) {
	name := strings.TrimSpace(strings.Join([]string{
		candidate.FirstName, candidate.MiddleName, candidate.LastName,
	}, " "))
	fmt.Printf("[%d] %s  (score %d, %d source(s), primary %s)\n",
		candidate.Id, name, candidate.ConfidenceScore, candidate.SourceCount, candidate.SourceType)
	for _, factor := range []struct {
		label string
		fs    core.FactorScore
	}{
		{"name", candidate.Factors.Name},
		{"age", candidate.Factors.Age},
		{"location", candidate.Factors.Location},
		{"occupation", candidate.Factors.Occupation},
		{"corroboration", candidate.Factors.Corroboration},
	} {
		if factor.fs.Reason == "" {
			continue
		}
		fmt.Printf("    %-13s %3d  %s\n", factor.label, factor.fs.Score, factor.fs.Reason)
	}
	fmt.Println()
}

func confirmCommand(c *cli.Context) error {
	return reviewCommand(c, true)
}

func rejectCommand(c *cli.Context) error {
	return reviewCommand(c, false)
}

func reviewCommand(c *cli.Context, confirm bool) error {
	id, err := strconv.ParseUint(c.String("id"), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid candidate id %q: %w", c.String("id"), err)
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	orchestrator, err := engine.NewOrchestrator()
	if err != nil {
		return err
	}
	defer orchestrator.Release()

	var candidate *core.Candidate
	if confirm {
		candidate, err = orchestrator.Confirm(context.Background(), core.ID(id), c.String("actor"))
	} else {
		candidate, err = orchestrator.Reject(context.Background(), core.ID(id), c.String("actor"))
	}
	if err != nil {
		return err
	}

	verdict := "rejected"
	if confirm {
		verdict = "confirmed"
	}
	fmt.Printf("Candidate %d %s %s %s\n", candidate.Id, candidate.FirstName, candidate.LastName, verdict)
	return nil
}

func jobsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	jobs, err := engine.JobRepository().GetJobs(context.Background(), c.String("juror"))
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Println("No search jobs found")
		return nil
	}

	for _, job := range jobs {
		line := fmt.Sprintf("%s  %-9s  %d candidate(s)  sources=%s",
			job.Id, job.Status, job.CandidateCount, strings.Join(job.Sources, ","))
		if job.Error != "" {
			line += "  error=" + job.Error
		}
		fmt.Println(line)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
