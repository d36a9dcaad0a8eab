package headhunter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type ResumeDetails struct {
	ID         string   `mapstructure:"id"`
	Title      string   `mapstructure:"title"`
	FirstName  string   `mapstructure:"first_name"`
	LastName   string   `mapstructure:"last_name"`
	About      string   `mapstructure:"skills"`
	SkillSet   []string `mapstructure:"skill_set"`
	Experience []struct {
		Company     string `mapstructure:"company"`
		Position    string `mapstructure:"position"`
		Description string `mapstructure:"description"`
	} `mapstructure:"experience"`
}

// GetResume fetches a resume. The HH API only serves resumes to
// authorized clients.
func (c *Client) GetResume(ctx context.Context, id string) (*ResumeDetails, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("resume id is required")
	}
	if c.token == "" {
		return nil, errors.New("headhunter token is required to read resumes")
	}

	var raw map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("%s/resumes/%s", c.APIURL, id), nil, &raw); err != nil {
		return nil, fmt.Errorf("get resume %s: %w", id, err)
	}

	var details ResumeDetails
	if err := mapstructure.WeakDecode(raw, &details); err != nil {
		return nil, fmt.Errorf("decode resume %s: %w", id, err)
	}

	return &details, nil
}

func (r *ResumeDetails) CandidateName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Text flattens the resume into the plain text the scorer consumes.
func (r *ResumeDetails) Text() string {
	lines := make([]string, 0, 3+len(r.Experience))
	lines = append(lines, r.Title)
	if len(r.SkillSet) > 0 {
		lines = append(lines, "Skills: "+strings.Join(r.SkillSet, ", "))
	}
	lines = append(lines, r.About)

	for _, exp := range r.Experience {
		lines = append(lines, strings.TrimSpace(fmt.Sprintf("%s at %s. %s", exp.Position, exp.Company, exp.Description)))
	}

	nonEmpty := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			nonEmpty = append(nonEmpty, line)
		}
	}

	return strings.Join(nonEmpty, "\n")
}
