package headhunter

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Vacancy struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	// Description is HTML.
	Description string `json:"description,omitempty"`
	KeySkills   []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Archived bool `json:"archived,omitempty"`
}

// GetVacancy fetches a single vacancy with its full description.
func (c *Client) GetVacancy(ctx context.Context, id string) (*Vacancy, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("vacancy id is required")
	}

	var vacancy Vacancy
	if err := c.getJSON(ctx, fmt.Sprintf("%s/vacancies/%s", c.APIURL, id), nil, &vacancy); err != nil {
		return nil, fmt.Errorf("get vacancy %s: %w", id, err)
	}

	return &vacancy, nil
}

// PlainDescription reduces the HTML description to whitespace-collapsed text.
// Text nodes are joined with spaces so that adjacent list items do not merge
// into one token.
func (va *Vacancy) PlainDescription() (string, error) {
	if strings.TrimSpace(va.Description) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(va.Description))
	if err != nil {
		return "", fmt.Errorf("parse vacancy description: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var (
		parts []string
		walk  func(*goquery.Selection)
	)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, s *goquery.Selection) {
			if goquery.NodeName(s) == "#text" {
				parts = append(parts, strings.Fields(s.Text())...)
				return
			}
			walk(s)
		})
	}
	walk(doc.Selection)

	return strings.Join(parts, " "), nil
}

// JobText is the plain description followed by the key skills, ready for
// scoring.
func (va *Vacancy) JobText() (string, []string, error) {
	description, err := va.PlainDescription()
	if err != nil {
		return "", nil, err
	}

	if name := strings.TrimSpace(va.Name); name != "" {
		description = strings.TrimSpace(name + "\n" + description)
	}

	return description, va.SkillNames(), nil
}

func (va *Vacancy) SkillNames() []string {
	names := make([]string, 0, len(va.KeySkills))
	for _, skill := range va.KeySkills {
		if name := strings.TrimSpace(skill.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Title is the vacancy name with the employer, for labelling reports.
func (va *Vacancy) Title() string {
	if va.Employer.Name == "" {
		return va.Name
	}
	return fmt.Sprintf("%s / %s", va.Name, va.Employer.Name)
}
