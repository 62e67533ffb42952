// seed registers sample votes for local testing through the vote service, so every insert is
// audited like a real request. Idempotent: skips when any vote already exists.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"votetrail/backend/internal/app"
	"votetrail/backend/internal/config"
	"votetrail/backend/internal/logging"
	"votetrail/backend/internal/vote/domain"
)

var sampleVotes = []domain.Vote{
	{Candidate: "Boromir", Party: "Gondor"},
	{Candidate: "Legolas", Party: "Woodelves"},
	{Candidate: "Faramir", Party: "Gondor"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, logger, app.Options{Migrate: cfg.AutoMigrate})
	if err != nil {
		logger.Fatal("seed: wire app", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	ctx := context.Background()
	n, err := a.Votes.CountVotes(ctx)
	if err != nil {
		logger.Fatal("seed check", zap.Error(err))
	}
	if n > 0 {
		logger.Info("seed already applied; skipping", zap.Int("votes", n))
		return
	}

	for _, v := range sampleVotes {
		id, err := a.Votes.RegisterVote(ctx, v)
		if err != nil {
			logger.Fatal("seed: register vote", zap.String("candidate", v.Candidate), zap.Error(err))
		}
		logger.Info("vote registered", zap.String("id", id), zap.String("candidate", v.Candidate), zap.String("party", v.Party))
	}
	logger.Info("seed complete", zap.Int("votes", len(sampleVotes)))
}
