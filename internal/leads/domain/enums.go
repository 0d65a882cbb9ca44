package domain

import "strings"

// Platform is a social network a lead is present on.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformReddit    Platform = "reddit"
)

var knownPlatforms = map[Platform]struct{}{
	PlatformLinkedIn:  {},
	PlatformTwitter:   {},
	PlatformInstagram: {},
	PlatformFacebook:  {},
	PlatformTikTok:    {},
	PlatformYouTube:   {},
	PlatformReddit:    {},
}

// ParsePlatform matches s case-insensitively against the known platforms.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	_, ok := knownPlatforms[p]
	return p, ok
}

// BuyingStage is a position in the ordered buying journey.
type BuyingStage string

const (
	StageAwareness     BuyingStage = "awareness"
	StageConsideration BuyingStage = "consideration"
	StageEvaluation    BuyingStage = "evaluation"
	StageDecision      BuyingStage = "decision"
	StagePurchase      BuyingStage = "purchase"
)

// BuyingStages lists the stages in journey order.
var BuyingStages = []BuyingStage{
	StageAwareness,
	StageConsideration,
	StageEvaluation,
	StageDecision,
	StagePurchase,
}

// Rank returns the zero-based journey position, or -1 for an unknown stage.
func (s BuyingStage) Rank() int {
	for i, stage := range BuyingStages {
		if stage == s {
			return i
		}
	}
	return -1
}

// ParseBuyingStage matches s case-insensitively against the known stages.
func ParseBuyingStage(s string) (BuyingStage, bool) {
	stage := BuyingStage(strings.ToLower(strings.TrimSpace(s)))
	return stage, stage.Rank() >= 0
}

// ActivityLevel buckets how often a lead posts or interacts.
type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"
)

// ParseActivityLevel matches s case-insensitively against the known levels.
func ParseActivityLevel(s string) (ActivityLevel, bool) {
	level := ActivityLevel(strings.ToLower(strings.TrimSpace(s)))
	switch level {
	case ActivityLow, ActivityMedium, ActivityHigh:
		return level, true
	default:
		return level, false
	}
}

// Status is where a lead sits in the outreach pipeline.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusEngaged   Status = "engaged"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

var knownStatuses = map[Status]struct{}{
	StatusNew:       {},
	StatusContacted: {},
	StatusEngaged:   {},
	StatusQualified: {},
	StatusConverted: {},
	StatusLost:      {},
}

// IsKnownStatus reports whether s is a pipeline status.
func IsKnownStatus(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// Temperature is the tier a lead's intent score falls into.
type Temperature string

const (
	TemperatureCold Temperature = "cold"
	TemperatureWarm Temperature = "warm"
	TemperatureHot  Temperature = "hot"
)
