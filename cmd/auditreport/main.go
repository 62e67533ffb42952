// auditreport writes the XML audit report (oldest record first) to stdout or a file.
// With -verify the generated document is parsed back and the entry count checked.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"votetrail/backend/internal/app"
	"votetrail/backend/internal/audit/report"
	"votetrail/backend/internal/config"
	"votetrail/backend/internal/logging"
)

func main() {
	out := flag.String("o", "", "Output file (default stdout)")
	verify := flag.Bool("verify", false, "Parse the generated report back and check it against the store")
	flag.Parse()

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

	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		logger.Fatal("auditreport: wire app", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	ctx := context.Background()
	doc, err := a.Audits.Report(ctx)
	if err != nil {
		logger.Fatal("auditreport: generate", zap.Error(err))
	}

	if *verify {
		parsed, err := report.ParseReport(doc)
		if err != nil {
			logger.Fatal("auditreport: verify parse", zap.Error(err))
		}
		records, err := a.Audits.List(ctx)
		if err != nil {
			logger.Fatal("auditreport: verify list", zap.Error(err))
		}
		if len(parsed) < len(records) {
			logger.Fatal("auditreport: verify count mismatch", zap.Int("report", len(parsed)), zap.Int("store", len(records)))
		}
		logger.Info("report verified", zap.Int("entries", len(parsed)))
	}

	if *out == "" {
		if _, err := os.Stdout.WriteString(doc); err != nil {
			logger.Fatal("auditreport: write", zap.Error(err))
		}
		return
	}
	if err := os.WriteFile(*out, []byte(doc), 0o644); err != nil {
		logger.Fatal("auditreport: write", zap.String("path", *out), zap.Error(err))
	}
	logger.Info("report written", zap.String("path", *out))
}
