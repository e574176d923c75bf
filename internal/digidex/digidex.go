// Package digidex serves the browsable Digimon catalog: filtered lists,
// detail pages and aggregate stats.
package digidex

import (
	"context"
	"strings"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
	"github.com/digiguide/digiguide/internal/query"
)

// SortFields are the accepted values for the sort parameter.
var SortFields = []string{"number", "name", "hp", "sp", "atk", "def", "int", "spi", "spd", "memory", "total"}

// Filter narrows the Digidex. Zero values match everything.
type Filter struct {
	Stage     string
	Attribute string
	Type      string
	Name      string
	Skill     string
	MinMemory *int
	MaxMemory *int
}

func (f Filter) predicates() []func(*data.Digimon) bool {
	var preds []func(*data.Digimon) bool
	if f.Stage != "" {
		preds = append(preds, func(d *data.Digimon) bool { return strings.EqualFold(string(d.Stage), f.Stage) })
	}
	if f.Attribute != "" {
		preds = append(preds, func(d *data.Digimon) bool { return strings.EqualFold(string(d.Attribute), f.Attribute) })
	}
	if f.Type != "" {
		preds = append(preds, func(d *data.Digimon) bool { return strings.EqualFold(d.Type, f.Type) })
	}
	if f.Name != "" {
		preds = append(preds, func(d *data.Digimon) bool {
			for _, n := range d.Names {
				if query.ContainsFold(n, f.Name) {
					return true
				}
			}
			return false
		})
	}
	if f.Skill != "" {
		preds = append(preds, func(d *data.Digimon) bool {
			for _, s := range d.Skills {
				if strings.EqualFold(s, f.Skill) {
					return true
				}
			}
			return false
		})
	}
	if f.MinMemory != nil {
		min := *f.MinMemory
		preds = append(preds, func(d *data.Digimon) bool { return d.Memory >= min })
	}
	if f.MaxMemory != nil {
		max := *f.MaxMemory
		preds = append(preds, func(d *data.Digimon) bool { return d.Memory <= max })
	}
	return preds
}

// Summary is one row of the Digidex list.
type Summary struct {
	ID         int    `json:"id"`
	Number     int    `json:"number"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Stage      string `json:"stage"`
	StageLabel string `json:"stage_label"`
	Attribute  string `json:"attribute"`
	Type       string `json:"type"`
	Memory     int    `json:"memory"`
	Total      int    `json:"total"`
	Image      string `json:"image,omitempty"`
}

func summarize(ctx context.Context, d *data.Digimon, locale string) Summary {
	return Summary{
		ID:         d.ID,
		Number:     d.Number,
		Slug:       d.Slug,
		Name:       d.Name(locale),
		Stage:      string(d.Stage),
		StageLabel: i18n.T(ctx, d.Stage.Key()),
		Attribute:  string(d.Attribute),
		Type:       d.Type,
		Memory:     d.Memory,
		Total:      d.Stats.Total(),
		Image:      httpx.ImageURL(d.Image),
	}
}

// sortCompare returns the comparison for a sort field in locale.
func sortCompare(field, locale string) query.Less[*data.Digimon] {
	switch field {
	case "name":
		return func(a, b *data.Digimon) int { return query.CompareFold(a.Name(locale), b.Name(locale)) }
	case "memory":
		return func(a, b *data.Digimon) int { return query.CompareInt(a.Memory, b.Memory) }
	case "number":
		return func(a, b *data.Digimon) int { return query.CompareInt(a.Number, b.Number) }
	default:
		return func(a, b *data.Digimon) int {
			av, _ := a.Stats.Field(field)
			bv, _ := b.Stats.Field(field)
			return query.CompareInt(av, bv)
		}
	}
}

func byID(a, b *data.Digimon) int { return query.CompareInt(a.ID, b.ID) }

// List filters, sorts and paginates the catalog. Names and labels follow
// the language stored in ctx.
func List(ctx context.Context, c *data.Catalog, f Filter, s query.SortSpec, p query.Page) query.Result[Summary] {
	locale := i18n.Locale(i18n.FromContext(ctx))

	all := make([]*data.Digimon, len(c.Digimon))
	for i := range c.Digimon {
		all[i] = &c.Digimon[i]
	}
	matched := query.Filter(all, f.predicates()...)
	query.Sort(matched, s, sortCompare(s.Field, locale), byID)

	return query.Map(query.Paginate(matched, p), func(d *data.Digimon) Summary {
		return summarize(ctx, d, locale)
	})
}

// Link is a resolved evolution edge.
type Link struct {
	ID           int                `json:"id"`
	Slug         string             `json:"slug"`
	Name         string             `json:"name"`
	Stage        string             `json:"stage"`
	Requirements []data.Requirement `json:"requirements"`
}

// SkillRef is a resolved skill reference.
type SkillRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Element string `json:"element,omitempty"`
	Kind    string `json:"kind,omitempty"`
	SP      int    `json:"sp"`
	Power   int    `json:"power"`
}

// Detail is the full Digidex page for one digimon.
type Detail struct {
	Summary
	AttributeLabel string     `json:"attribute_label"`
	Personality    string     `json:"personality,omitempty"`
	EquipSlots     int        `json:"equip_slots"`
	Stats          data.Stats `json:"stats"`
	Description    string     `json:"description,omitempty"`
	Names          data.Names `json:"names"`
	Skills         []SkillRef `json:"skills"`
	EvolvesFrom    []Link     `json:"evolves_from"`
	EvolvesTo      []Link     `json:"evolves_to"`
}

// Get returns the detail page for an id or slug.
func Get(ctx context.Context, c *data.Catalog, idOrSlug string) (*Detail, error) {
	d, err := c.LookupDigimon(idOrSlug)
	if err != nil {
		return nil, err
	}
	locale := i18n.Locale(i18n.FromContext(ctx))

	det := &Detail{
		Summary:        summarize(ctx, d, locale),
		AttributeLabel: i18n.T(ctx, d.Attribute.Key()),
		Personality:    d.Personality,
		EquipSlots:     d.EquipSlots,
		Stats:          d.Stats,
		Description:    d.Description.Get(locale),
		Names:          d.Names,
		Skills:         []SkillRef{},
		EvolvesFrom:    resolveLinks(c, d.EvolvesFrom, locale),
		EvolvesTo:      resolveLinks(c, d.EvolvesTo, locale),
	}
	for _, id := range d.Skills {
		ref := SkillRef{ID: id, Name: id}
		if s, err := c.SkillByID(id); err == nil {
			ref = SkillRef{
				ID:      s.ID,
				Name:    s.Name(locale),
				Element: s.Element,
				Kind:    string(s.Kind),
				SP:      s.SP,
				Power:   s.Power,
			}
		}
		det.Skills = append(det.Skills, ref)
	}
	return det, nil
}

// resolveLinks drops links to digimon missing from the catalog.
func resolveLinks(c *data.Catalog, links []data.EvolutionLink, locale string) []Link {
	out := []Link{}
	for _, l := range links {
		target, err := c.DigimonByID(l.ID)
		if err != nil {
			continue
		}
		reqs := l.Requirements
		if reqs == nil {
			reqs = []data.Requirement{}
		}
		out = append(out, Link{
			ID:           target.ID,
			Slug:         target.Slug,
			Name:         target.Name(locale),
			Stage:        string(target.Stage),
			Requirements: reqs,
		})
	}
	return out
}
