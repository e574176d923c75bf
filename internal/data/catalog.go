package data

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a record lookup misses.
var ErrNotFound = errors.New("not found")

// Catalog is an immutable snapshot of every record in the data directory.
type Catalog struct {
	Digimon []Digimon
	Skills  []Skill
	Items   []Item
	Bosses  []Boss

	LoadedAt time.Time

	digimonByID   map[int]*Digimon
	digimonBySlug map[string]*Digimon
	skillByID     map[string]*Skill
	itemByID      map[string]*Item
	bossByID      map[int]*Boss
}

// NewCatalog indexes the given records. Records are sorted by number/ID so
// list endpoints start from a stable order. Duplicate IDs or slugs are an
// error.
func NewCatalog(digimon []Digimon, skills []Skill, items []Item, bosses []Boss) (*Catalog, error) {
	c := &Catalog{
		Digimon:       digimon,
		Skills:        skills,
		Items:         items,
		Bosses:        bosses,
		LoadedAt:      time.Now().UTC(),
		digimonByID:   make(map[int]*Digimon, len(digimon)),
		digimonBySlug: make(map[string]*Digimon, len(digimon)),
		skillByID:     make(map[string]*Skill, len(skills)),
		itemByID:      make(map[string]*Item, len(items)),
		bossByID:      make(map[int]*Boss, len(bosses)),
	}

	sort.SliceStable(c.Digimon, func(i, j int) bool {
		if c.Digimon[i].Number != c.Digimon[j].Number {
			return c.Digimon[i].Number < c.Digimon[j].Number
		}
		return c.Digimon[i].ID < c.Digimon[j].ID
	})
	sort.SliceStable(c.Skills, func(i, j int) bool { return c.Skills[i].ID < c.Skills[j].ID })
	sort.SliceStable(c.Items, func(i, j int) bool { return c.Items[i].ID < c.Items[j].ID })
	sort.SliceStable(c.Bosses, func(i, j int) bool { return c.Bosses[i].ID < c.Bosses[j].ID })

	for i := range c.Digimon {
		d := &c.Digimon[i]
		// Lookups fold case, so the stored slug and every URL built from it do too.
		d.Slug = strings.ToLower(strings.TrimSpace(d.Slug))
		if _, dup := c.digimonByID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate digimon id %d", d.ID)
		}
		if _, dup := c.digimonBySlug[d.Slug]; dup {
			return nil, fmt.Errorf("duplicate digimon slug %q", d.Slug)
		}
		c.digimonByID[d.ID] = d
		c.digimonBySlug[d.Slug] = d
	}
	for i := range c.Skills {
		s := &c.Skills[i]
		if _, dup := c.skillByID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate skill id %q", s.ID)
		}
		c.skillByID[s.ID] = s
	}
	for i := range c.Items {
		it := &c.Items[i]
		if _, dup := c.itemByID[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %q", it.ID)
		}
		c.itemByID[it.ID] = it
	}
	for i := range c.Bosses {
		b := &c.Bosses[i]
		if _, dup := c.bossByID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate boss id %d", b.ID)
		}
		c.bossByID[b.ID] = b
	}
	return c, nil
}

// DigimonByID returns the digimon with id.
func (c *Catalog) DigimonByID(id int) (*Digimon, error) {
	if d, ok := c.digimonByID[id]; ok {
		return d, nil
	}
	return nil, ErrNotFound
}

// LookupDigimon resolves a numeric id or a slug.
func (c *Catalog) LookupDigimon(idOrSlug string) (*Digimon, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if id, err := strconv.Atoi(idOrSlug); err == nil {
		return c.DigimonByID(id)
	}
	if d, ok := c.digimonBySlug[strings.ToLower(idOrSlug)]; ok {
		return d, nil
	}
	return nil, ErrNotFound
}

// SkillByID returns the skill with id.
func (c *Catalog) SkillByID(id string) (*Skill, error) {
	if s, ok := c.skillByID[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// ItemByID returns the item with id.
func (c *Catalog) ItemByID(id string) (*Item, error) {
	if it, ok := c.itemByID[id]; ok {
		return it, nil
	}
	return nil, ErrNotFound
}

// BossByID returns the boss with id.
func (c *Catalog) BossByID(id int) (*Boss, error) {
	if b, ok := c.bossByID[id]; ok {
		return b, nil
	}
	return nil, ErrNotFound
}

// Counts summarizes how many records of each kind were loaded.
type Counts struct {
	Digimon int `json:"digimon"`
	Skills  int `json:"skills"`
	Items   int `json:"items"`
	Bosses  int `json:"bosses"`
}

// Counts returns record totals.
func (c *Catalog) Counts() Counts {
	return Counts{
		Digimon: len(c.Digimon),
		Skills:  len(c.Skills),
		Items:   len(c.Items),
		Bosses:  len(c.Bosses),
	}
}

// Problem is a referential-integrity issue found by Validate.
type Problem struct {
	Digimon int    `json:"digimon"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("digimon %d: %s", p.Digimon, p.Message)
}

// Validate reports evolution links and skill references that point at
// records missing from the catalog. The catalog stays usable either way.
func (c *Catalog) Validate() []Problem {
	var problems []Problem
	for i := range c.Digimon {
		d := &c.Digimon[i]
		for _, l := range d.EvolvesFrom {
			if _, ok := c.digimonByID[l.ID]; !ok {
				problems = append(problems, Problem{d.ID, fmt.Sprintf("evolves_from references unknown digimon %d", l.ID)})
			}
		}
		for _, l := range d.EvolvesTo {
			if _, ok := c.digimonByID[l.ID]; !ok {
				problems = append(problems, Problem{d.ID, fmt.Sprintf("evolves_to references unknown digimon %d", l.ID)})
			}
		}
		if len(c.Skills) == 0 {
			continue
		}
		for _, s := range d.Skills {
			if _, ok := c.skillByID[s]; !ok {
				problems = append(problems, Problem{d.ID, fmt.Sprintf("unknown skill %q", s)})
			}
		}
	}
	return problems
}
