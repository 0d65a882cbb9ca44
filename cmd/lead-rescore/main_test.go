package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"leadscout_backend/internal/leads/domain"
	"leadscout_backend/internal/leads/scoring"
	"leadscout_backend/internal/leads/transport"

	"github.com/google/uuid"
)

func scoreInfluence(t *testing.T, influence ...float64) []scoring.ScoredLead {
	t.Helper()
	population := make([]domain.Lead, len(influence))
	for i, v := range influence {
		population[i] = domain.Lead{ID: uuid.New(), InfluenceScore: v}
	}
	cfg := scoring.NewConfig(
		scoring.BaselinesFrom(population),
		10,
		scoring.Weights{scoring.FactorInfluence: 100},
		scoring.Thresholds{ColdUpper: 3, WarmUpper: 6, HotLower: 7},
	)
	scored, err := scoring.ScoreAll(context.Background(), population, cfg, 2)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	return scored
}

func TestTallyCountsEveryTier(t *testing.T) {
	got := tally(scoreInfluence(t, 20, 25, 50, 90))
	want := tierCounts{Cold: 2, Warm: 1, Hot: 1}
	if got != want {
		t.Fatalf("tally = %+v, want %+v", got, want)
	}
	if got.Total() != 4 {
		t.Fatalf("total = %d", got.Total())
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	orgID := uuid.New()
	diag := transport.ScoringDiagnostics{Profile: "lead_scout", WeightSum: 90, Warning: "weights sum to 90.00, expected 100"}

	if err := writeReport(&buf, orgID, tierCounts{Cold: 1, Warm: 2, Hot: 3}, diag); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{orgID.String(), "lead_scout", "90.00", "expected 100"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}

	rows := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		if fields := strings.Fields(line); len(fields) == 2 {
			rows[fields[0]] = fields[1]
		}
	}
	if rows["cold"] != "1" || rows["warm"] != "2" || rows["hot"] != "3" || rows["total"] != "6" {
		t.Fatalf("unexpected tier rows %v in:\n%s", rows, out)
	}
}
