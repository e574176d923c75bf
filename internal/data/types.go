package data

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultLocale is the locale every record must carry a name in.
const DefaultLocale = "en"

// Names maps a base language code ("en", "ja") to a localized string.
type Names map[string]string

// Get returns the string for locale, falling back to English and then to
// any non-empty value.
func (n Names) Get(locale string) string {
	if v := n[locale]; v != "" {
		return v
	}
	if v := n[DefaultLocale]; v != "" {
		return v
	}
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := n[k]; v != "" {
			return v
		}
	}
	return ""
}

// Stage is a digivolution stage.
type Stage string

const (
	StageInTraining1 Stage = "In-Training I"
	StageInTraining2 Stage = "In-Training II"
	StageRookie      Stage = "Rookie"
	StageChampion    Stage = "Champion"
	StageUltimate    Stage = "Ultimate"
	StageMega        Stage = "Mega"
	StageUltra       Stage = "Ultra"
	StageArmor       Stage = "Armor"
)

// stageOrder ranks stages from earliest to latest. Armor sits beside
// Champion, which is where armor digivolutions branch off in-game.
var stageOrder = map[Stage]int{
	StageInTraining1: 0,
	StageInTraining2: 1,
	StageRookie:      2,
	StageArmor:       3,
	StageChampion:    4,
	StageUltimate:    5,
	StageMega:        6,
	StageUltra:       7,
}

// Order returns the stage's rank; unknown stages sort last.
func (s Stage) Order() int {
	if o, ok := stageOrder[s]; ok {
		return o
	}
	return len(stageOrder)
}

// Key returns the message-catalog key for the stage label.
func (s Stage) Key() string {
	return "stage." + slugify(string(s))
}

// Attribute is a digimon's attribute in the type triangle.
type Attribute string

const (
	AttributeVaccine  Attribute = "Vaccine"
	AttributeData     Attribute = "Data"
	AttributeVirus    Attribute = "Virus"
	AttributeFree     Attribute = "Free"
	AttributeVariable Attribute = "Variable"
	AttributeNoData   Attribute = "No Data"
)

// Key returns the message-catalog key for the attribute label.
func (a Attribute) Key() string {
	return "attribute." + slugify(string(a))
}

// Stats are a digimon's base stats at max level.
type Stats struct {
	HP  int `json:"hp"`
	SP  int `json:"sp"`
	ATK int `json:"atk"`
	DEF int `json:"def"`
	INT int `json:"int"`
	SPI int `json:"spi"`
	SPD int `json:"spd"`
}

// Total is the sum of all stats.
func (s Stats) Total() int {
	return s.HP + s.SP + s.ATK + s.DEF + s.INT + s.SPI + s.SPD
}

// Field returns a stat by its lowercase name.
func (s Stats) Field(name string) (int, bool) {
	switch name {
	case "hp":
		return s.HP, true
	case "sp":
		return s.SP, true
	case "atk":
		return s.ATK, true
	case "def":
		return s.DEF, true
	case "int":
		return s.INT, true
	case "spi":
		return s.SPI, true
	case "spd":
		return s.SPD, true
	case "total":
		return s.Total(), true
	}
	return 0, false
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		HP:  s.HP + o.HP,
		SP:  s.SP + o.SP,
		ATK: s.ATK + o.ATK,
		DEF: s.DEF + o.DEF,
		INT: s.INT + o.INT,
		SPI: s.SPI + o.SPI,
		SPD: s.SPD + o.SPD,
	}
}

// StatNames lists stat fields in display order.
var StatNames = []string{"hp", "sp", "atk", "def", "int", "spi", "spd"}

// RequirementKind classifies an evolution requirement.
type RequirementKind string

const (
	ReqLevel       RequirementKind = "level"
	ReqStat        RequirementKind = "stat"
	ReqItem        RequirementKind = "item"
	ReqAbility     RequirementKind = "ability"
	ReqCamaraderie RequirementKind = "camaraderie"
	ReqOther       RequirementKind = "other"
)

// Requirement is one condition of an evolution, e.g. {stat, "atk>=120"}.
type Requirement struct {
	Kind  RequirementKind `json:"kind"`
	Value string          `json:"value"`
}

func (r Requirement) String() string {
	return fmt.Sprintf("%s %s", r.Kind, r.Value)
}

// EvolutionLink points at another digimon together with the conditions
// for that evolution.
type EvolutionLink struct {
	ID           int           `json:"id"`
	Requirements []Requirement `json:"requirements,omitempty"`
}

// Digimon is one Digidex entry.
type Digimon struct {
	ID          int             `json:"id"`
	Number      int             `json:"number"`
	Slug        string          `json:"slug"`
	Names       Names           `json:"names"`
	Stage       Stage           `json:"stage"`
	Attribute   Attribute       `json:"attribute"`
	Type        string          `json:"type"`
	Personality string          `json:"personality,omitempty"`
	Memory      int             `json:"memory"`
	EquipSlots  int             `json:"equip_slots"`
	Stats       Stats           `json:"stats"`
	Skills      []string        `json:"skills,omitempty"`
	EvolvesFrom []EvolutionLink `json:"evolves_from,omitempty"`
	EvolvesTo   []EvolutionLink `json:"evolves_to,omitempty"`
	Image       string          `json:"image,omitempty"`
	Description Names           `json:"description,omitempty"`
}

// Name returns the digimon's name in locale.
func (d *Digimon) Name(locale string) string { return d.Names.Get(locale) }

// SkillKind classifies a skill.
type SkillKind string

const (
	SkillPhysical SkillKind = "physical"
	SkillMagic    SkillKind = "magic"
	SkillSupport  SkillKind = "support"
)

// Skill is an attack or support move.
type Skill struct {
	ID          string    `json:"id"`
	Names       Names     `json:"names"`
	Element     string    `json:"element"`
	Kind        SkillKind `json:"kind"`
	SP          int       `json:"sp"`
	Power       int       `json:"power"`
	Accuracy    int       `json:"accuracy"`
	Hits        int       `json:"hits"`
	Description Names     `json:"description,omitempty"`
}

// Name returns the skill's name in locale.
func (s *Skill) Name(locale string) string { return s.Names.Get(locale) }

// Item is a consumable, key item or equipment piece.
type Item struct {
	ID        string   `json:"id"`
	Names     Names    `json:"names"`
	Category  string   `json:"category"`
	Price     int      `json:"price"`
	SellPrice int      `json:"sell_price"`
	Effect    Names    `json:"effect,omitempty"`
	Sources   []string `json:"sources,omitempty"`
}

// Name returns the item's name in locale.
func (i *Item) Name(locale string) string { return i.Names.Get(locale) }

// Boss is a story or side-quest boss encounter.
type Boss struct {
	ID          int      `json:"id"`
	Names       Names    `json:"names"`
	Location    string   `json:"location"`
	Level       int      `json:"level"`
	HP          int      `json:"hp"`
	Weaknesses  []string `json:"weaknesses,omitempty"`
	Resistances []string `json:"resistances,omitempty"`
	Drops       []string `json:"drops,omitempty"`
	Image       string   `json:"image,omitempty"`
}

// Name returns the boss's name in locale.
func (b *Boss) Name(locale string) string { return b.Names.Get(locale) }

// SearchKind is the kind of record a search hit points at.
type SearchKind string

const (
	KindDigimon SearchKind = "digimon"
	KindSkill   SearchKind = "skill"
	KindItem    SearchKind = "item"
	KindBoss    SearchKind = "boss"
	KindGuide   SearchKind = "guide"
)

// SearchItem is one searchable entry across all record kinds.
type SearchItem struct {
	Kind     SearchKind `json:"kind"`
	Key      string     `json:"key"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle,omitempty"`
	URL      string     `json:"url"`
}

// slugify lowercases s and joins words with hyphens.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r > 127:
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Slugify is exported for callers building URLs from names.
func Slugify(s string) string { return slugify(s) }
