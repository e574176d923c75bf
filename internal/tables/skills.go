// Package tables serves the skill, item and boss reference tables.
package tables

import (
	"context"
	"strings"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/i18n"
	"github.com/digiguide/digiguide/internal/query"
)

// SkillSortFields are the accepted sort keys for skills.
var SkillSortFields = []string{"id", "name", "power", "sp", "accuracy"}

// SkillFilter narrows the skill table.
type SkillFilter struct {
	Element  string
	Kind     string
	Name     string
	MinPower *int
	MaxSP    *int
}

// SkillRow is one row of the skill table.
type SkillRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Element     string `json:"element"`
	Kind        string `json:"kind"`
	SP          int    `json:"sp"`
	Power       int    `json:"power"`
	Accuracy    int    `json:"accuracy"`
	Hits        int    `json:"hits"`
	Description string `json:"description,omitempty"`
}

// SkillDetail adds the digimon that learn the skill.
type SkillDetail struct {
	SkillRow
	LearnedBy []Ref `json:"learned_by"`
}

// Ref points at a digimon.
type Ref struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func skillRow(s *data.Skill, locale string) SkillRow {
	return SkillRow{
		ID:          s.ID,
		Name:        s.Name(locale),
		Element:     s.Element,
		Kind:        string(s.Kind),
		SP:          s.SP,
		Power:       s.Power,
		Accuracy:    s.Accuracy,
		Hits:        s.Hits,
		Description: s.Description.Get(locale),
	}
}

func (f SkillFilter) predicates() []func(*data.Skill) bool {
	var preds []func(*data.Skill) bool
	if f.Element != "" {
		preds = append(preds, func(s *data.Skill) bool { return strings.EqualFold(s.Element, f.Element) })
	}
	if f.Kind != "" {
		preds = append(preds, func(s *data.Skill) bool { return strings.EqualFold(string(s.Kind), f.Kind) })
	}
	if f.Name != "" {
		preds = append(preds, func(s *data.Skill) bool { return namesContain(s.Names, f.Name) })
	}
	if f.MinPower != nil {
		min := *f.MinPower
		preds = append(preds, func(s *data.Skill) bool { return s.Power >= min })
	}
	if f.MaxSP != nil {
		max := *f.MaxSP
		preds = append(preds, func(s *data.Skill) bool { return s.SP <= max })
	}
	return preds
}

func skillCompare(field, locale string) query.Less[*data.Skill] {
	switch field {
	case "name":
		return func(a, b *data.Skill) int { return query.CompareFold(a.Name(locale), b.Name(locale)) }
	case "power":
		return func(a, b *data.Skill) int { return query.CompareInt(a.Power, b.Power) }
	case "sp":
		return func(a, b *data.Skill) int { return query.CompareInt(a.SP, b.SP) }
	case "accuracy":
		return func(a, b *data.Skill) int { return query.CompareInt(a.Accuracy, b.Accuracy) }
	default:
		return skillByID
	}
}

func skillByID(a, b *data.Skill) int { return strings.Compare(a.ID, b.ID) }

// ListSkills filters, sorts and paginates the skill table.
func ListSkills(ctx context.Context, c *data.Catalog, f SkillFilter, s query.SortSpec, p query.Page) query.Result[SkillRow] {
	locale := i18n.Locale(i18n.FromContext(ctx))
	rows := make([]*data.Skill, len(c.Skills))
	for i := range c.Skills {
		rows[i] = &c.Skills[i]
	}
	matched := query.Filter(rows, f.predicates()...)
	query.Sort(matched, s, skillCompare(s.Field, locale), skillByID)
	return query.Map(query.Paginate(matched, p), func(s *data.Skill) SkillRow { return skillRow(s, locale) })
}

// GetSkill returns one skill and the digimon that learn it.
func GetSkill(ctx context.Context, c *data.Catalog, id string) (*SkillDetail, error) {
	s, err := c.SkillByID(id)
	if err != nil {
		return nil, err
	}
	locale := i18n.Locale(i18n.FromContext(ctx))
	det := &SkillDetail{SkillRow: skillRow(s, locale), LearnedBy: []Ref{}}
	for i := range c.Digimon {
		d := &c.Digimon[i]
		for _, sk := range d.Skills {
			if sk == s.ID {
				det.LearnedBy = append(det.LearnedBy, Ref{ID: d.ID, Slug: d.Slug, Name: d.Name(locale)})
				break
			}
		}
	}
	return det, nil
}

func namesContain(names data.Names, needle string) bool {
	for _, n := range names {
		if query.ContainsFold(n, needle) {
			return true
		}
	}
	return false
}
