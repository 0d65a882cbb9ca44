package service

import (
	"fmt"
	"strings"

	"leadscout_backend/internal/leads/domain"
	"leadscout_backend/internal/leads/transport"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/phone"
	"leadscout_backend/platform/sanitize"

	"github.com/google/uuid"
)

// fieldErrors collects field errors under an optional path prefix.
type fieldErrors struct {
	prefix string
	errs   []apperr.FieldError
}

func (f *fieldErrors) add(field, message string) {
	if f.prefix != "" {
		field = f.prefix + "." + field
	}
	f.errs = append(f.errs, apperr.FieldError{Field: field, Message: message})
}

func (f *fieldErrors) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return apperr.InvalidFields("invalid lead", f.errs)
}

func leadPath(i int) string {
	return fmt.Sprintf("leads[%d]", i)
}

// buildLead converts a create request into a lead with normalized contact
// details and parsed enumerations.
func (s *Service) buildLead(organizationID uuid.UUID, req transport.CreateLeadRequest, path string) (domain.Lead, error) {
	errs := &fieldErrors{prefix: path}

	lead := domain.Lead{
		OrganizationID: organizationID,
		Name:           sanitize.Line(req.Name),
		Email:          normalizeEmail(req.Email),
		Phone:          s.normalizePhone(req.Phone, errs),
		Handles:        parseHandles(req.Handles, errs),
		Company:        sanitize.Line(req.Company),
		Title:          sanitize.Line(req.Title),
		Industry:       sanitize.Line(req.Industry),
		Location:       sanitize.Line(req.Location),
		Age:            req.Age,
		Platforms:      parsePlatforms(req.Platforms, errs),
		Followers:      req.Followers,
		EngagementRate: req.EngagementRate,
		InfluenceScore: req.InfluenceScore,
		BuyingStage:    parseStage(req.BuyingStage, errs),
		ActivityLevel:  parseActivity(req.ActivityLevel, errs),
		Status:         parseStatus(req.Status, errs),
		Triggers:       domain.NormalizeList(req.Triggers),
		PainPoints:     domain.NormalizeList(req.PainPoints),
		Interests:      domain.NormalizeList(req.Interests),
		Signals: domain.Signals{
			KeywordHits:        req.Signals.KeywordHits,
			EngagementVelocity: req.Signals.EngagementVelocity,
		},
	}
	if lead.Name == "" {
		errs.add("name", "is required")
	}
	if err := errs.err(); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func (s *Service) applyUpdate(lead *domain.Lead, req transport.UpdateLeadRequest) error {
	errs := &fieldErrors{}

	if req.Name != nil {
		lead.Name = sanitize.Line(*req.Name)
		if lead.Name == "" {
			errs.add("name", "is required")
		}
	}
	if req.Email != nil {
		lead.Email = normalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		lead.Phone = s.normalizePhone(*req.Phone, errs)
	}
	if req.Handles != nil {
		lead.Handles = parseHandles(*req.Handles, errs)
	}
	if req.Company != nil {
		lead.Company = sanitize.Line(*req.Company)
	}
	if req.Title != nil {
		lead.Title = sanitize.Line(*req.Title)
	}
	if req.Industry != nil {
		lead.Industry = sanitize.Line(*req.Industry)
	}
	if req.Location != nil {
		lead.Location = sanitize.Line(*req.Location)
	}
	if req.ClearAge {
		lead.Age = nil
	} else if req.Age != nil {
		lead.Age = req.Age
	}
	if req.Platforms != nil {
		lead.Platforms = parsePlatforms(*req.Platforms, errs)
	}
	if req.Followers != nil {
		lead.Followers = *req.Followers
	}
	if req.EngagementRate != nil {
		lead.EngagementRate = *req.EngagementRate
	}
	if req.InfluenceScore != nil {
		lead.InfluenceScore = *req.InfluenceScore
	}
	if req.BuyingStage != nil {
		lead.BuyingStage = parseStage(*req.BuyingStage, errs)
	}
	if req.ActivityLevel != nil {
		lead.ActivityLevel = parseActivity(*req.ActivityLevel, errs)
	}
	if req.Status != nil {
		lead.Status = parseStatus(*req.Status, errs)
	}
	if req.Triggers != nil {
		lead.Triggers = domain.NormalizeList(*req.Triggers)
	}
	if req.PainPoints != nil {
		lead.PainPoints = domain.NormalizeList(*req.PainPoints)
	}
	if req.Interests != nil {
		lead.Interests = domain.NormalizeList(*req.Interests)
	}
	if req.Signals != nil {
		if req.Signals.KeywordHits < 0 || req.Signals.EngagementVelocity < 0 {
			errs.add("signals", "must not be negative")
		}
		lead.Signals = domain.Signals{KeywordHits: req.Signals.KeywordHits, EngagementVelocity: req.Signals.EngagementVelocity}
	}

	return errs.err()
}

func (s *Service) normalizePhone(raw string, errs *fieldErrors) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !phone.IsValid(raw, s.phoneRegion) {
		errs.add("phone", "is not a valid phone number")
		return raw
	}
	return phone.NormalizeE164(raw, s.phoneRegion)
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func parseHandles(raw map[string]string, errs *fieldErrors) map[domain.Platform]string {
	if len(raw) == 0 {
		return nil
	}
	handles := make(map[domain.Platform]string, len(raw))
	for name, handle := range raw {
		p, ok := domain.ParsePlatform(name)
		if !ok {
			errs.add("handles."+name, "unknown platform")
			continue
		}
		if handle = strings.TrimSpace(handle); handle != "" {
			handles[p] = handle
		}
	}
	return handles
}

func parsePlatforms(raw []string, errs *fieldErrors) []domain.Platform {
	platforms := make([]domain.Platform, 0, len(raw))
	seen := make(map[domain.Platform]struct{}, len(raw))
	for _, name := range raw {
		p, ok := domain.ParsePlatform(name)
		if !ok {
			errs.add("platforms", "unknown platform: "+name)
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		platforms = append(platforms, p)
	}
	return platforms
}

func parseStage(raw string, errs *fieldErrors) domain.BuyingStage {
	stage, ok := domain.ParseBuyingStage(raw)
	if !ok {
		errs.add("buyingStage", "unknown buying stage")
	}
	return stage
}

func parseActivity(raw string, errs *fieldErrors) domain.ActivityLevel {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	level, ok := domain.ParseActivityLevel(raw)
	if !ok {
		errs.add("activityLevel", "unknown activity level")
	}
	return level
}

func parseStatus(raw string, errs *fieldErrors) domain.Status {
	status := domain.Status(strings.ToLower(strings.TrimSpace(raw)))
	if status == "" {
		return domain.StatusNew
	}
	if !domain.IsKnownStatus(status) {
		errs.add("status", "unknown status")
	}
	return status
}
