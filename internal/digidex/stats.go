package digidex

import (
	"math"
	"sort"

	"github.com/digiguide/digiguide/internal/data"
)

// topN is how many entries each leaderboard holds.
const topN = 5

// Ranked is one leaderboard entry.
type Ranked struct {
	ID    int    `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Overview aggregates the whole catalog for the stats page.
type Overview struct {
	Counts      data.Counts                   `json:"counts"`
	ByStage     map[string]int                `json:"by_stage"`
	ByAttribute map[string]int                `json:"by_attribute"`
	ByType      map[string]int                `json:"by_type"`
	AvgByStage  map[string]map[string]float64 `json:"avg_by_stage"`
	Top         map[string][]Ranked           `json:"top"`
}

// Stats computes the catalog overview. Names are in locale.
func Stats(c *data.Catalog, locale string) Overview {
	o := Overview{
		Counts:      c.Counts(),
		ByStage:     map[string]int{},
		ByAttribute: map[string]int{},
		ByType:      map[string]int{},
		AvgByStage:  map[string]map[string]float64{},
		Top:         map[string][]Ranked{},
	}

	sums := map[data.Stage]data.Stats{}
	for i := range c.Digimon {
		d := &c.Digimon[i]
		o.ByStage[string(d.Stage)]++
		if d.Attribute != "" {
			o.ByAttribute[string(d.Attribute)]++
		}
		if d.Type != "" {
			o.ByType[d.Type]++
		}
		sums[d.Stage] = sums[d.Stage].Add(d.Stats)
	}

	for stage, sum := range sums {
		n := float64(o.ByStage[string(stage)])
		avg := map[string]float64{}
		for _, f := range data.StatNames {
			v, _ := sum.Field(f)
			avg[f] = round1(float64(v) / n)
		}
		o.AvgByStage[string(stage)] = avg
	}

	fields := append(append([]string{}, data.StatNames...), "total")
	for _, f := range fields {
		o.Top[f] = top(c, f, locale)
	}
	return o
}

func top(c *data.Catalog, field, locale string) []Ranked {
	ranked := make([]Ranked, 0, len(c.Digimon))
	for i := range c.Digimon {
		d := &c.Digimon[i]
		v, _ := d.Stats.Field(field)
		ranked = append(ranked, Ranked{ID: d.ID, Slug: d.Slug, Name: d.Name(locale), Value: v})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
