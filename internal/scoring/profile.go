package scoring

import (
	"math"
	"strings"

	"github.com/spigell/resume-matcher/internal/ai"
)

const (
	profileSkillPoints      = 60
	profileExperiencePoints = 20
	profileRequiredYears    = 3
	masterPoints            = 10
	bachelorPoints          = 7
)

// ProfileScore is a deterministic 0-100 score of an extracted profile:
// up to 60 points for required skills, 20 for experience against a three
// year bar and 10 for education. Without required skills the skill part is
// full. The result is rounded to two decimals.
func ProfileScore(profile *ai.Profile, requiredSkills []string) float64 {
	if profile == nil {
		return 0
	}

	required := lowerSet(requiredSkills)
	skillMatch := 1.0
	if len(required) > 0 {
		have := lowerSet(profile.Skills)
		matched := 0
		for skill := range required {
			if _, ok := have[skill]; ok {
				matched++
			}
		}
		skillMatch = float64(matched) / float64(len(required))
	}

	experience := math.Max(0, profile.Experience)
	experienceScore := math.Min(profileExperiencePoints, experience/profileRequiredYears*profileExperiencePoints)

	educationScore := 0.0
	education := strings.ToLower(profile.Education)
	switch {
	case strings.Contains(education, "master"):
		educationScore = masterPoints
	case strings.Contains(education, "bachelor"):
		educationScore = bachelorPoints
	}

	total := math.Min(100, skillMatch*profileSkillPoints+experienceScore+educationScore)
	return math.Round(total*100) / 100
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}
