package service

import (
	"cmp"
	"strconv"
	"strings"
	"time"

	"leadscout_backend/internal/exports"
	"leadscout_backend/internal/leads/scoring"
	"leadscout_backend/internal/search"
)

func newIndex() *search.Index[scoring.ScoredLead] {
	return search.NewIndex[scoring.ScoredLead]().
		Text(
			func(s scoring.ScoredLead) string { return s.Lead().Name },
			func(s scoring.ScoredLead) string { return s.Lead().Company },
			func(s scoring.ScoredLead) string { return s.Lead().Title },
			func(s scoring.ScoredLead) string { return s.Lead().Email },
		).
		Facet("status", func(s scoring.ScoredLead) []string { return []string{string(s.Lead().Status)} }).
		Facet("platform", func(s scoring.ScoredLead) []string { return s.Lead().PlatformNames() }).
		Facet("temperature", func(s scoring.ScoredLead) []string { return []string{string(s.Temperature())} }).
		Facet("industry", func(s scoring.ScoredLead) []string { return []string{s.Lead().Industry} }).
		Facet("buyingStage", func(s scoring.ScoredLead) []string { return []string{string(s.Lead().BuyingStage)} }).
		Sort("date", func(a, b scoring.ScoredLead) int { return a.Lead().CreatedAt.Compare(b.Lead().CreatedAt) }).
		Sort("name", func(a, b scoring.ScoredLead) int {
			return cmp.Compare(strings.ToLower(a.Lead().Name), strings.ToLower(b.Lead().Name))
		}).
		Sort("score", func(a, b scoring.ScoredLead) int { return cmp.Compare(a.Score(), b.Score()) }).
		Sort("followers", func(a, b scoring.ScoredLead) int { return cmp.Compare(a.Lead().Followers, b.Lead().Followers) }).
		DefaultSort("date", search.SortDesc)
}

var exportColumns = []exports.Column[scoring.ScoredLead]{
	{Header: "Name", Value: func(s scoring.ScoredLead) string { return s.Lead().Name }},
	{Header: "Email", Value: func(s scoring.ScoredLead) string { return s.Lead().Email }},
	{Header: "Company", Value: func(s scoring.ScoredLead) string { return s.Lead().Company }},
	{Header: "Title", Value: func(s scoring.ScoredLead) string { return s.Lead().Title }},
	{Header: "Industry", Value: func(s scoring.ScoredLead) string { return s.Lead().Industry }},
	{Header: "Location", Value: func(s scoring.ScoredLead) string { return s.Lead().Location }},
	{Header: "Platforms", Value: func(s scoring.ScoredLead) string { return strings.Join(s.Lead().PlatformNames(), "; ") }},
	{Header: "Followers", Value: func(s scoring.ScoredLead) string { return strconv.Itoa(s.Lead().Followers) }},
	{Header: "Buying Stage", Value: func(s scoring.ScoredLead) string { return string(s.Lead().BuyingStage) }},
	{Header: "Status", Value: func(s scoring.ScoredLead) string { return string(s.Lead().Status) }},
	{Header: "Intent Score", Value: func(s scoring.ScoredLead) string { return strconv.FormatFloat(s.Score(), 'f', 2, 64) }},
	{Header: "Temperature", Value: func(s scoring.ScoredLead) string { return string(s.Temperature()) }},
	{Header: "Created", Value: func(s scoring.ScoredLead) string { return s.Lead().CreatedAt.UTC().Format(time.RFC3339) }},
}
