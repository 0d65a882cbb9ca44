package scoring

import (
	"errors"
	"math"
	"testing"

	"leadscout_backend/internal/leads/domain"
)

func TestClassify(t *testing.T) {
	thresholds := Thresholds{ColdUpper: 3.9, WarmUpper: 6.9, HotLower: 7.0}

	tests := []struct {
		score float64
		want  domain.Temperature
	}{
		{score: 0, want: domain.TemperatureCold},
		{score: 3.9, want: domain.TemperatureCold},
		{score: 3.91, want: domain.TemperatureWarm},
		{score: 6.9, want: domain.TemperatureWarm},
		{score: 6.95, want: domain.TemperatureWarm}, // gap between WarmUpper and HotLower
		{score: 7.0, want: domain.TemperatureHot},
		{score: 10, want: domain.TemperatureHot},
	}
	for _, tt := range tests {
		got, err := Classify(tt.score, thresholds)
		if err != nil {
			t.Fatalf("Classify(%v): %v", tt.score, err)
		}
		if got != tt.want {
			t.Fatalf("Classify(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestClassifyAbuttingWarmAndHot(t *testing.T) {
	thresholds := Thresholds{ColdUpper: 4, WarmUpper: 7, HotLower: 7}
	got, err := Classify(7, thresholds)
	if err != nil {
		t.Fatalf("abutting thresholds are valid: %v", err)
	}
	if got != domain.TemperatureHot {
		t.Fatalf("boundary score = %s, want hot", got)
	}
}

func TestClassifyRejectsOverlap(t *testing.T) {
	tests := []struct {
		name       string
		thresholds Thresholds
		field      string
	}{
		{name: "cold equals warm", thresholds: Thresholds{ColdUpper: 5, WarmUpper: 5, HotLower: 8}, field: "coldUpper"},
		{name: "cold above warm", thresholds: Thresholds{ColdUpper: 6, WarmUpper: 5, HotLower: 8}, field: "coldUpper"},
		{name: "warm above hot", thresholds: Thresholds{ColdUpper: 3, WarmUpper: 8, HotLower: 7}, field: "warmUpper"},
		{name: "NaN hot", thresholds: Thresholds{ColdUpper: 3, WarmUpper: 6, HotLower: math.NaN()}, field: "hotLower"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp, err := Classify(5, tt.thresholds)
			var overlap *ThresholdOverlapError
			if !errors.As(err, &overlap) {
				t.Fatalf("expected ThresholdOverlapError, got %v", err)
			}
			if overlap.Field != tt.field {
				t.Fatalf("field = %s, want %s", overlap.Field, tt.field)
			}
			if temp != "" {
				t.Fatalf("no tier may be returned, got %s", temp)
			}
		})
	}
}
