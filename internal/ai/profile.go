package ai

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Profile holds the structured fields a model extracts from resume text.
type Profile struct {
	Email *string `json:"email" mapstructure:"email"`
	Phone *string `json:"phone" mapstructure:"phone"`
	// Skills are short lowercase skill names.
	Skills []string `json:"skills" mapstructure:"skills"`
	// Experience is the total number of years.
	Experience float64 `json:"experience" mapstructure:"experience"`
	Education  string  `json:"education" mapstructure:"education"`
	// Error is set only when the profile is a fallback.
	Error string `json:"error,omitempty" mapstructure:"-"`
}

// ProfileParser extracts a Profile in a single attempt. It always returns a
// profile, an empty one carrying Error when the model could not be used.
type ProfileParser interface {
	ParseProfile(ctx context.Context, resumeText string) *Profile
}

// EmptyProfile is the profile of a resume with nothing to extract.
func EmptyProfile() *Profile {
	return &Profile{Skills: []string{}}
}

// ProfileFallback is the empty profile tagged with the failure.
func ProfileFallback(failure *Failure) *Profile {
	profile := EmptyProfile()

	msg := ""
	if failure.Err != nil {
		msg = failure.Err.Error()
	}
	if runes := []rune(msg); len(runes) > maxErrorLength {
		msg = string(runes[:maxErrorLength])
	}
	profile.Error = fmt.Sprintf("%s: %s", failure.Kind, msg)

	return profile
}

// Normalize drops negative experience and lowercases skills, skipping blank
// ones.
func (p *Profile) Normalize() {
	if math.IsNaN(p.Experience) || p.Experience < 0 {
		p.Experience = 0
	}

	skills := make([]string, 0, len(p.Skills))
	for _, skill := range p.Skills {
		if skill = strings.ToLower(strings.TrimSpace(skill)); skill != "" {
			skills = append(skills, skill)
		}
	}
	p.Skills = skills
}
