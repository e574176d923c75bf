// Package team analyzes Digimon parties and stores saved teams.
package team

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/digiguide/digiguide/internal/config"
	"github.com/digiguide/digiguide/internal/data"
)

var (
	ErrTooManyMembers = errors.New("too many team members")
	ErrUnknownDigimon = errors.New("unknown digimon")
)

// Member is a resolved team member.
type Member struct {
	ID        int        `json:"id"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Stage     string     `json:"stage"`
	Attribute string     `json:"attribute"`
	Type      string     `json:"type"`
	Memory    int        `json:"memory"`
	Stats     data.Stats `json:"stats"`
}

// Analysis summarizes a team.
type Analysis struct {
	Members        []Member           `json:"members"`
	Size           int                `json:"size"`
	MaxSize        int                `json:"max_size"`
	Totals         data.Stats         `json:"totals"`
	Total          int                `json:"total"`
	Averages       map[string]float64 `json:"averages"`
	Memory         int                `json:"memory"`
	MemoryCapacity int                `json:"memory_capacity"`
	OverCapacity   bool               `json:"over_capacity"`
	Attributes     map[string]int     `json:"attributes"`
	Types          map[string]int     `json:"types"`
	Elements       []string           `json:"elements"`
}

// Analyze resolves ids against c and aggregates the team. Members may
// repeat. Names are in locale.
func Analyze(c *data.Catalog, ids []int, cfg config.TeamConfig, locale string) (*Analysis, error) {
	if cfg.MaxSize > 0 && len(ids) > cfg.MaxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyMembers, len(ids), cfg.MaxSize)
	}

	a := &Analysis{
		Members:        make([]Member, 0, len(ids)),
		Size:           len(ids),
		MaxSize:        cfg.MaxSize,
		Averages:       map[string]float64{},
		MemoryCapacity: cfg.MemoryCapacity,
		Attributes:     map[string]int{},
		Types:          map[string]int{},
		Elements:       []string{},
	}
	elements := map[string]bool{}
	for _, id := range ids {
		d, err := c.DigimonByID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %d", ErrUnknownDigimon, id)
		}
		a.Members = append(a.Members, Member{
			ID:        d.ID,
			Slug:      d.Slug,
			Name:      d.Name(locale),
			Stage:     string(d.Stage),
			Attribute: string(d.Attribute),
			Type:      d.Type,
			Memory:    d.Memory,
			Stats:     d.Stats,
		})
		a.Totals = a.Totals.Add(d.Stats)
		a.Memory += d.Memory
		if d.Attribute != "" {
			a.Attributes[string(d.Attribute)]++
		}
		if d.Type != "" {
			a.Types[d.Type]++
		}
		for _, sid := range d.Skills {
			if s, err := c.SkillByID(sid); err == nil && s.Element != "" {
				elements[s.Element] = true
			}
		}
	}

	a.Total = a.Totals.Total()
	for _, f := range data.StatNames {
		v, _ := a.Totals.Field(f)
		avg := 0.0
		if len(ids) > 0 {
			avg = math.Round(float64(v)/float64(len(ids))*10) / 10
		}
		a.Averages[f] = avg
	}
	a.OverCapacity = cfg.MemoryCapacity > 0 && a.Memory > cfg.MemoryCapacity
	for e := range elements {
		a.Elements = append(a.Elements, e)
	}
	sort.Strings(a.Elements)
	return a, nil
}
