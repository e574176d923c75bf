package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookups(t *testing.T) {
	c, err := LoadDir("testdata")
	require.NoError(t, err)

	d, err := c.LookupDigimon("3")
	require.NoError(t, err)
	assert.Equal(t, "greymon", d.Slug)

	d, err = c.LookupDigimon("WarGreymon")
	require.NoError(t, err)
	assert.Equal(t, 5, d.ID)

	_, err = c.LookupDigimon("999")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.LookupDigimon("missingmon")
	assert.ErrorIs(t, err, ErrNotFound)

	b, err := c.BossByID(2)
	require.NoError(t, err)
	assert.Equal(t, "Etemon", b.Name("en"))
	_, err = c.ItemByID("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	d := []Digimon{
		{ID: 1, Slug: "agumon", Names: Names{"en": "Agumon"}},
		{ID: 1, Slug: "agumon-x", Names: Names{"en": "Agumon X"}},
	}
	_, err := NewCatalog(d, nil, nil, nil)
	assert.Error(t, err)

	d[1].ID = 2
	d[1].Slug = "agumon"
	_, err = NewCatalog(d, nil, nil, nil)
	assert.Error(t, err)
}

func TestCatalogFoldsSlugCase(t *testing.T) {
	c, err := NewCatalog([]Digimon{
		{ID: 5, Slug: " WarGreymon ", Names: Names{"en": "WarGreymon"}},
	}, nil, nil, nil)
	require.NoError(t, err)

	for _, q := range []string{"WarGreymon", "wargreymon", "WARGREYMON"} {
		d, err := c.LookupDigimon(q)
		require.NoError(t, err, q)
		assert.Equal(t, 5, d.ID)
	}
	assert.Equal(t, "wargreymon", c.Digimon[0].Slug)

	_, err = NewCatalog([]Digimon{
		{ID: 1, Slug: "Agumon", Names: Names{"en": "Agumon"}},
		{ID: 2, Slug: "agumon", Names: Names{"en": "Agumon"}},
	}, nil, nil, nil)
	assert.Error(t, err, "slugs differing only in case collide")
}

func TestCatalogSortsByNumber(t *testing.T) {
	c, err := NewCatalog([]Digimon{
		{ID: 3, Number: 30, Slug: "c"},
		{ID: 1, Number: 10, Slug: "a"},
		{ID: 2, Number: 10, Slug: "b"},
	}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{c.Digimon[0].ID, c.Digimon[1].ID, c.Digimon[2].ID})
}

func TestValidate(t *testing.T) {
	good, err := LoadDir("testdata")
	require.NoError(t, err)
	assert.Empty(t, good.Validate())

	broken, err := LoadDir(filepath.Join("testdata", "broken"))
	require.NoError(t, err)
	problems := broken.Validate()
	require.Len(t, problems, 3)

	var msgs []string
	for _, p := range problems {
		msgs = append(msgs, p.String())
	}
	assert.Contains(t, msgs, "digimon 1: evolves_to references unknown digimon 99")
	assert.Contains(t, msgs, `digimon 1: unknown skill "no-such-skill"`)
	assert.Contains(t, msgs, "digimon 2: evolves_from references unknown digimon 42")
}

func TestNamesGetFallback(t *testing.T) {
	n := Names{"ja": "アグモン", "fr": "Agumon FR"}
	assert.Equal(t, "アグモン", n.Get("ja"))
	// No English entry: the first locale in sorted order wins.
	assert.Equal(t, "Agumon FR", n.Get("de"))
	assert.Equal(t, "", Names(nil).Get("en"))
}

func TestStageOrderAndKeys(t *testing.T) {
	assert.Less(t, StageRookie.Order(), StageChampion.Order())
	assert.Less(t, StageArmor.Order(), StageChampion.Order())
	assert.Equal(t, "stage.in-training-ii", StageInTraining2.Key())
	assert.Equal(t, "attribute.no-data", AttributeNoData.Key())
	assert.Equal(t, len(stageOrder), Stage("Hybrid").Order())
}

func TestStatsField(t *testing.T) {
	s := Stats{HP: 1, SP: 2, ATK: 3, DEF: 4, INT: 5, SPI: 6, SPD: 7}
	v, ok := s.Field("spi")
	assert.True(t, ok)
	assert.Equal(t, 6, v)
	v, _ = s.Field("total")
	assert.Equal(t, 28, v)
	_, ok = s.Field("luck")
	assert.False(t, ok)
	assert.Equal(t, Stats{HP: 2, SP: 4, ATK: 6, DEF: 8, INT: 10, SPI: 12, SPD: 14}, s.Add(s))
}
