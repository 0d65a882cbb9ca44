package scoring

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

// Profile is a named sample configuration.
type Profile struct {
	Name        string     `json:"name" yaml:"-"`
	Description string     `json:"description" yaml:"description"`
	ScoreMax    float64    `json:"scoreMax" yaml:"score_max"`
	Weights     Weights    `json:"weights" yaml:"weights"`
	Thresholds  Thresholds `json:"thresholds" yaml:"thresholds"`
}

type profileFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

var (
	profilesOnce sync.Once
	profiles     map[string]Profile
	profilesErr  error
)

// ParseProfiles decodes a profiles document and validates every profile.
func ParseProfiles(data []byte) (map[string]Profile, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode scoring profiles: %w", err)
	}
	out := make(map[string]Profile, len(file.Profiles))
	for name, p := range file.Profiles {
		p.Name = name
		if err := p.Weights.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		if err := p.Thresholds.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}

// Profiles returns the built-in sample profiles.
func Profiles() (map[string]Profile, error) {
	profilesOnce.Do(func() {
		profiles, profilesErr = ParseProfiles(profilesYAML)
	})
	return profiles, profilesErr
}

// ProfileNames lists the built-in profiles alphabetically.
func ProfileNames() []string {
	all, err := Profiles()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupProfile returns a copy of the named built-in profile.
func LookupProfile(name string) (Profile, bool) {
	all, err := Profiles()
	if err != nil {
		return Profile{}, false
	}
	p, ok := all[name]
	if !ok {
		return Profile{}, false
	}
	weights := make(Weights, len(p.Weights))
	for f, w := range p.Weights {
		weights[f] = w
	}
	p.Weights = weights
	return p, true
}
