// Command lead-rescore scores every lead of one organization under its current
// settings and prints how the population splits across temperature tiers.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"leadscout_backend/internal/adapters"
	"leadscout_backend/internal/events"
	"leadscout_backend/internal/exports"
	"leadscout_backend/internal/leads"
	"leadscout_backend/internal/leads/domain"
	"leadscout_backend/internal/leads/scoring"
	"leadscout_backend/internal/leads/transport"
	"leadscout_backend/internal/settings"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/config"
	"leadscout_backend/platform/db"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"

	"github.com/google/uuid"
)

const (
	exitOK            = 0
	exitFailure       = 1
	exitInvalidConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	orgFlag := flag.String("org", "", "organization id to rescore")
	flag.Parse()

	orgID, err := uuid.Parse(*orgFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "usage: lead-rescore -org <organization-uuid>")
		return exitFailure
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return exitFailure
	}

	log := logger.New(cfg.Env)
	log.Info("starting lead rescore", "organizationId", orgID)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return exitFailure
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	settingsModule := settings.NewModule(pool, nil, eventBus, val, log, cfg.GetScoringDefaultProfile())
	leadsModule := leads.NewModule(pool, adapters.NewScoringSettingsAdapter(settingsModule.Service()), exports.New(nil, nil, log), eventBus, val, cfg, log)

	scored, diag, err := leadsModule.Service().ScoreOrganization(ctx, orgID)
	if err != nil {
		log.Error("rescore failed", "organizationId", orgID, "error", err)
		if apperr.Is(err, apperr.KindValidation) {
			return exitInvalidConfig
		}
		return exitFailure
	}

	if err := writeReport(os.Stdout, orgID, tally(scored), diag); err != nil {
		log.Error("failed to write report", "error", err)
		return exitFailure
	}
	return exitOK
}

type tierCounts struct {
	Cold, Warm, Hot int
}

func (t tierCounts) Total() int { return t.Cold + t.Warm + t.Hot }

func tally(scored []scoring.ScoredLead) tierCounts {
	var t tierCounts
	for _, s := range scored {
		switch s.Temperature() {
		case domain.TemperatureCold:
			t.Cold++
		case domain.TemperatureWarm:
			t.Warm++
		case domain.TemperatureHot:
			t.Hot++
		}
	}
	return t
}

func writeReport(w io.Writer, orgID uuid.UUID, t tierCounts, diag transport.ScoringDiagnostics) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "organization\t%s\n", orgID)
	if diag.Profile != "" {
		fmt.Fprintf(tw, "profile\t%s\n", diag.Profile)
	}
	fmt.Fprintf(tw, "weight sum\t%.2f\n", diag.WeightSum)
	if diag.Warning != "" {
		fmt.Fprintf(tw, "warning\t%s\n", diag.Warning)
	}
	fmt.Fprintln(tw, "\t")
	fmt.Fprintf(tw, "cold\t%d\n", t.Cold)
	fmt.Fprintf(tw, "warm\t%d\n", t.Warm)
	fmt.Fprintf(tw, "hot\t%d\n", t.Hot)
	fmt.Fprintf(tw, "total\t%d\n", t.Total())
	return tw.Flush()
}
