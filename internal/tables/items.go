package tables

import (
	"context"
	"strings"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/i18n"
	"github.com/digiguide/digiguide/internal/query"
)

// ItemSortFields are the accepted sort keys for items.
var ItemSortFields = []string{"id", "name", "price"}

// ItemFilter narrows the item table.
type ItemFilter struct {
	Category string
	Name     string
	MaxPrice *int
}

// ItemRow is one row of the item table.
type ItemRow struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Price     int      `json:"price"`
	SellPrice int      `json:"sell_price"`
	Effect    string   `json:"effect,omitempty"`
	Sources   []string `json:"sources"`
}

// ItemDetail adds the evolutions that require the item.
type ItemDetail struct {
	ItemRow
	UnlocksEvolutions []Unlock `json:"unlocks_evolutions"`
}

// Unlock is an evolution gated on an item.
type Unlock struct {
	From Ref `json:"from"`
	To   Ref `json:"to"`
}

func itemRow(it *data.Item, locale string) ItemRow {
	sources := it.Sources
	if sources == nil {
		sources = []string{}
	}
	return ItemRow{
		ID:        it.ID,
		Name:      it.Name(locale),
		Category:  it.Category,
		Price:     it.Price,
		SellPrice: it.SellPrice,
		Effect:    it.Effect.Get(locale),
		Sources:   sources,
	}
}

func (f ItemFilter) predicates() []func(*data.Item) bool {
	var preds []func(*data.Item) bool
	if f.Category != "" {
		preds = append(preds, func(it *data.Item) bool { return strings.EqualFold(it.Category, f.Category) })
	}
	if f.Name != "" {
		preds = append(preds, func(it *data.Item) bool { return namesContain(it.Names, f.Name) })
	}
	if f.MaxPrice != nil {
		max := *f.MaxPrice
		preds = append(preds, func(it *data.Item) bool { return it.Price <= max })
	}
	return preds
}

func itemCompare(field, locale string) query.Less[*data.Item] {
	switch field {
	case "name":
		return func(a, b *data.Item) int { return query.CompareFold(a.Name(locale), b.Name(locale)) }
	case "price":
		return func(a, b *data.Item) int { return query.CompareInt(a.Price, b.Price) }
	default:
		return itemByID
	}
}

func itemByID(a, b *data.Item) int { return strings.Compare(a.ID, b.ID) }

// ListItems filters, sorts and paginates the item table.
func ListItems(ctx context.Context, c *data.Catalog, f ItemFilter, s query.SortSpec, p query.Page) query.Result[ItemRow] {
	locale := i18n.Locale(i18n.FromContext(ctx))
	rows := make([]*data.Item, len(c.Items))
	for i := range c.Items {
		rows[i] = &c.Items[i]
	}
	matched := query.Filter(rows, f.predicates()...)
	query.Sort(matched, s, itemCompare(s.Field, locale), itemByID)
	return query.Map(query.Paginate(matched, p), func(it *data.Item) ItemRow { return itemRow(it, locale) })
}

// GetItem returns one item and the evolutions it unlocks.
func GetItem(ctx context.Context, c *data.Catalog, id string) (*ItemDetail, error) {
	it, err := c.ItemByID(id)
	if err != nil {
		return nil, err
	}
	locale := i18n.Locale(i18n.FromContext(ctx))
	det := &ItemDetail{ItemRow: itemRow(it, locale), UnlocksEvolutions: []Unlock{}}
	for i := range c.Digimon {
		d := &c.Digimon[i]
		for _, link := range d.EvolvesTo {
			if !requiresItem(link, it.ID) {
				continue
			}
			to, err := c.DigimonByID(link.ID)
			if err != nil {
				continue
			}
			det.UnlocksEvolutions = append(det.UnlocksEvolutions, Unlock{
				From: Ref{ID: d.ID, Slug: d.Slug, Name: d.Name(locale)},
				To:   Ref{ID: to.ID, Slug: to.Slug, Name: to.Name(locale)},
			})
		}
	}
	return det, nil
}

func requiresItem(link data.EvolutionLink, id string) bool {
	for _, req := range link.Requirements {
		if req.Kind == data.ReqItem && req.Value == id {
			return true
		}
	}
	return false
}
