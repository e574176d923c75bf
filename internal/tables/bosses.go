package tables

import (
	"context"
	"strings"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
	"github.com/digiguide/digiguide/internal/query"
)

// BossSortFields are the accepted sort keys for bosses.
var BossSortFields = []string{"id", "name", "level", "hp"}

// BossFilter narrows the boss table.
type BossFilter struct {
	Location string
	Name     string
	Weakness string
	MinLevel *int
	MaxLevel *int
}

// BossRow is one row of the boss table.
type BossRow struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Level       int      `json:"level"`
	HP          int      `json:"hp"`
	Weaknesses  []string `json:"weaknesses"`
	Resistances []string `json:"resistances"`
	Drops       []string `json:"drops"`
	Image       string   `json:"image,omitempty"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func bossRow(b *data.Boss, locale string) BossRow {
	return BossRow{
		ID:          b.ID,
		Name:        b.Name(locale),
		Location:    b.Location,
		Level:       b.Level,
		HP:          b.HP,
		Weaknesses:  nonNil(b.Weaknesses),
		Resistances: nonNil(b.Resistances),
		Drops:       nonNil(b.Drops),
		Image:       httpx.ImageURL(b.Image),
	}
}

func (f BossFilter) predicates() []func(*data.Boss) bool {
	var preds []func(*data.Boss) bool
	if f.Location != "" {
		preds = append(preds, func(b *data.Boss) bool { return query.ContainsFold(b.Location, f.Location) })
	}
	if f.Name != "" {
		preds = append(preds, func(b *data.Boss) bool { return namesContain(b.Names, f.Name) })
	}
	if f.Weakness != "" {
		preds = append(preds, func(b *data.Boss) bool {
			for _, w := range b.Weaknesses {
				if strings.EqualFold(w, f.Weakness) {
					return true
				}
			}
			return false
		})
	}
	if f.MinLevel != nil {
		min := *f.MinLevel
		preds = append(preds, func(b *data.Boss) bool { return b.Level >= min })
	}
	if f.MaxLevel != nil {
		max := *f.MaxLevel
		preds = append(preds, func(b *data.Boss) bool { return b.Level <= max })
	}
	return preds
}

func bossCompare(field, locale string) query.Less[*data.Boss] {
	switch field {
	case "name":
		return func(a, b *data.Boss) int { return query.CompareFold(a.Name(locale), b.Name(locale)) }
	case "level":
		return func(a, b *data.Boss) int { return query.CompareInt(a.Level, b.Level) }
	case "hp":
		return func(a, b *data.Boss) int { return query.CompareInt(a.HP, b.HP) }
	default:
		return bossByID
	}
}

func bossByID(a, b *data.Boss) int { return query.CompareInt(a.ID, b.ID) }

// ListBosses filters, sorts and paginates the boss table.
func ListBosses(ctx context.Context, c *data.Catalog, f BossFilter, s query.SortSpec, p query.Page) query.Result[BossRow] {
	locale := i18n.Locale(i18n.FromContext(ctx))
	rows := make([]*data.Boss, len(c.Bosses))
	for i := range c.Bosses {
		rows[i] = &c.Bosses[i]
	}
	matched := query.Filter(rows, f.predicates()...)
	query.Sort(matched, s, bossCompare(s.Field, locale), bossByID)
	return query.Map(query.Paginate(matched, p), func(b *data.Boss) BossRow { return bossRow(b, locale) })
}

// GetBoss returns one boss.
func GetBoss(ctx context.Context, c *data.Catalog, id int) (*BossRow, error) {
	b, err := c.BossByID(id)
	if err != nil {
		return nil, err
	}
	row := bossRow(b, i18n.Locale(i18n.FromContext(ctx)))
	return &row, nil
}
