package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir(t *testing.T) {
	c, err := LoadDir("testdata")
	require.NoError(t, err)

	assert.Equal(t, Counts{Digimon: 9, Skills: 6, Items: 4, Bosses: 3}, c.Counts())

	agumon, err := c.LookupDigimon("agumon")
	require.NoError(t, err)
	assert.Equal(t, 2, agumon.ID)
	assert.Equal(t, "アグモン", agumon.Name("ja"))
	assert.Equal(t, "Agumon", agumon.Name("fr"))
	assert.Equal(t, StageRookie, agumon.Stage)
	assert.Equal(t, 2260, agumon.Stats.Total())
	require.Len(t, agumon.EvolvesTo, 2)
	assert.Equal(t, []Requirement{{ReqLevel, "20"}, {ReqStat, "atk>=100"}}, agumon.EvolvesTo[0].Requirements)
}

func TestLoadSkillsCSV(t *testing.T) {
	c, err := LoadDir("testdata")
	require.NoError(t, err)

	heal, err := c.SkillByID("heal")
	require.NoError(t, err)
	assert.Equal(t, SkillSupport, heal.Kind)
	assert.Equal(t, 1, heal.Hits, "empty hits column defaults to a single hit")
	assert.Equal(t, "ヒール", heal.Name("ja"))
	assert.Equal(t, "Restores HP to one ally.", heal.Description.Get("en"))

	// Sorted by id after indexing.
	assert.Equal(t, "gaia-force", c.Skills[0].ID)
}

func TestLoadItemsCSVLists(t *testing.T) {
	c, err := LoadDir("testdata")
	require.NoError(t, err)

	it, err := c.ItemByID("courage-digimental")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chapter 5", "Kowloon"}, it.Sources)
	assert.Equal(t, "key", it.Category)
}

func TestLoadDirBareNameColumn(t *testing.T) {
	c, err := LoadDir(filepath.Join("testdata", "broken"))
	require.NoError(t, err)
	s, err := c.SkillByID("pepper-breath")
	require.NoError(t, err)
	assert.Equal(t, "Pepper Breath", s.Name("en"))
}

func TestLoadDirMissingDigimon(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadDirRequiredFields(t *testing.T) {
	_, err := LoadDir(filepath.Join("testdata", "invalid"))
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "digimon.json", le.File)
	assert.Equal(t, 2, le.Line)
	assert.Equal(t, "names.en", le.Field)

	// CSV errors carry the line in the file, counting skipped blank lines.
	dir := t.TempDir()
	body := `[{"id": 1, "names": {"en": "Koromon"}, "stage": "In-Training II"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DigimonFile), []byte(body), 0o644))
	csvBody := "id,name_en,sp\nfire,Fire,3\nice,Ice,4\n\nbolt,Bolt,2\n,Nameless,1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skills.csv"), []byte(csvBody), 0o644))

	_, err = LoadDir(dir)
	require.Error(t, err)
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "skills.csv", le.File)
	assert.Equal(t, 6, le.Line)
	assert.Equal(t, "id", le.Field)

	// JSON errors name the real file and the array position.
	require.NoError(t, os.Remove(filepath.Join(dir, "skills.csv")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.json"), []byte(`[{"id": "potion", "names": {"en": "Potion"}}, {"id": "ether"}]`), 0o644))
	_, err = LoadDir(dir)
	require.Error(t, err)
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "items.json", le.File)
	assert.Equal(t, 2, le.Line)
	assert.Equal(t, "names.en", le.Field)
}

func TestLoadDirBadCSVNumber(t *testing.T) {
	_, err := LoadDir(filepath.Join("testdata", "badcsv"))
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "items.csv", le.File)
	assert.Equal(t, 3, le.Line)
	assert.Equal(t, "price", le.Field)
}

func TestLoadDirMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DigimonFile), []byte(`[{"id": 1,`), 0o644))
	_, err := LoadDir(dir)
	require.Error(t, err)
	var le *LoadError
	assert.True(t, errors.As(err, &le))
}

func TestLoadDirDerivesSlugAndNumber(t *testing.T) {
	dir := t.TempDir()
	body := `[{"id": 12, "names": {"en": "Black Agumon"}, "stage": "Rookie"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DigimonFile), []byte(body), 0o644))

	c, err := LoadDir(dir)
	require.NoError(t, err)
	d, err := c.LookupDigimon("black-agumon")
	require.NoError(t, err)
	assert.Equal(t, 12, d.Number)
}
