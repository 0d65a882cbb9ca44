package domain

import (
	"reflect"
	"testing"
)

func TestBuyingStageRankFollowsJourney(t *testing.T) {
	for i, stage := range BuyingStages {
		if stage.Rank() != i {
			t.Fatalf("%s rank = %d, want %d", stage, stage.Rank(), i)
		}
	}
	if BuyingStage("bargaining").Rank() != -1 {
		t.Fatalf("unknown stage must rank -1")
	}
}

func TestParseIsCaseInsensitive(t *testing.T) {
	if p, ok := ParsePlatform(" LinkedIn "); !ok || p != PlatformLinkedIn {
		t.Fatalf("ParsePlatform = %q, %v", p, ok)
	}
	if _, ok := ParsePlatform("myspace"); ok {
		t.Fatalf("myspace must not parse")
	}
	if s, ok := ParseBuyingStage("DECISION"); !ok || s != StageDecision {
		t.Fatalf("ParseBuyingStage = %q, %v", s, ok)
	}
	if l, ok := ParseActivityLevel("High"); !ok || l != ActivityHigh {
		t.Fatalf("ParseActivityLevel = %q, %v", l, ok)
	}
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{" SaaS ", "saas", "", "Fintech", "FINTECH", "AI"})
	want := []string{"SaaS", "Fintech", "AI"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeList = %v, want %v", got, want)
	}
	if NormalizeList([]string{" ", ""}) != nil {
		t.Fatalf("all-blank list must normalize to nil")
	}
}
