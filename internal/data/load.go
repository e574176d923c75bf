package data

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File names looked up inside the data directory.
const (
	DigimonFile = "digimon.json"
	BossesFile  = "bosses.json"
	SkillsBase  = "skills"
	ItemsBase   = "items"
)

// listSep separates values inside a single CSV cell.
const listSep = "|"

// LoadError pinpoints a record that failed to parse or validate.
type LoadError struct {
	File  string
	Line  int // CSV line or 1-based JSON array index
	Field string
	Err   error
}

func (e *LoadError) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field %s: %v", loc, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

var errMissing = errors.New("required value missing")

// LoadDir reads every data file in dir and builds a Catalog. digimon.json
// is required; the other files are optional.
func LoadDir(dir string) (*Catalog, error) {
	digimon, err := loadDigimon(filepath.Join(dir, DigimonFile))
	if err != nil {
		return nil, err
	}

	bosses, err := loadBosses(filepath.Join(dir, BossesFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	skills, err := loadSkills(dir)
	if err != nil {
		return nil, err
	}

	items, err := loadItems(dir)
	if err != nil {
		return nil, err
	}

	return NewCatalog(digimon, skills, items, bosses)
}

func readJSONArray(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return &LoadError{File: filepath.Base(path), Err: err}
	}
	return nil
}

func loadDigimon(path string) ([]Digimon, error) {
	var out []Digimon
	if err := readJSONArray(path, &out); err != nil {
		return nil, fmt.Errorf("loading digimon: %w", err)
	}
	file := filepath.Base(path)
	for i := range out {
		d := &out[i]
		if d.ID == 0 {
			return nil, &LoadError{File: file, Line: i + 1, Field: "id", Err: errMissing}
		}
		if d.Names[DefaultLocale] == "" {
			return nil, &LoadError{File: file, Line: i + 1, Field: "names.en", Err: errMissing}
		}
		if d.Stage == "" {
			return nil, &LoadError{File: file, Line: i + 1, Field: "stage", Err: errMissing}
		}
		if d.Slug == "" {
			d.Slug = slugify(d.Names[DefaultLocale])
		}
		if d.Number == 0 {
			d.Number = d.ID
		}
	}
	return out, nil
}

func loadBosses(path string) ([]Boss, error) {
	var out []Boss
	if err := readJSONArray(path, &out); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("loading bosses: %w", err)
	}
	file := filepath.Base(path)
	for i, b := range out {
		if b.ID == 0 {
			return nil, &LoadError{File: file, Line: i + 1, Field: "id", Err: errMissing}
		}
		if b.Names[DefaultLocale] == "" {
			return nil, &LoadError{File: file, Line: i + 1, Field: "names.en", Err: errMissing}
		}
	}
	return out, nil
}

// loadSkills prefers skills.json and falls back to skills.csv.
func loadSkills(dir string) ([]Skill, error) {
	var skills []Skill
	jsonPath := filepath.Join(dir, SkillsBase+".json")
	csvPath := filepath.Join(dir, SkillsBase+".csv")

	switch {
	case exists(jsonPath):
		if err := readJSONArray(jsonPath, &skills); err != nil {
			return nil, fmt.Errorf("loading skills: %w", err)
		}
		for i, s := range skills {
			if err := requireRecord(filepath.Base(jsonPath), i+1, s.ID, s.Names, "names.en"); err != nil {
				return nil, err
			}
		}
	case exists(csvPath):
		rows, err := readCSV(csvPath)
		if err != nil {
			return nil, fmt.Errorf("loading skills: %w", err)
		}
		for _, row := range rows {
			s := Skill{
				ID:          row.str("id"),
				Names:       row.names("name"),
				Element:     row.str("element"),
				Kind:        SkillKind(strings.ToLower(row.str("kind"))),
				Description: row.names("description"),
			}
			if s.SP, err = row.int("sp"); err != nil {
				return nil, err
			}
			if s.Power, err = row.int("power"); err != nil {
				return nil, err
			}
			if s.Accuracy, err = row.int("accuracy"); err != nil {
				return nil, err
			}
			if s.Hits, err = row.int("hits"); err != nil {
				return nil, err
			}
			if s.Hits == 0 {
				s.Hits = 1
			}
			if err := requireRecord(row.file, row.line, s.ID, s.Names, "name_en"); err != nil {
				return nil, err
			}
			skills = append(skills, s)
		}
	default:
		return nil, nil
	}

	return skills, nil
}

// loadItems prefers items.json and falls back to items.csv.
func loadItems(dir string) ([]Item, error) {
	var items []Item
	jsonPath := filepath.Join(dir, ItemsBase+".json")
	csvPath := filepath.Join(dir, ItemsBase+".csv")

	switch {
	case exists(jsonPath):
		if err := readJSONArray(jsonPath, &items); err != nil {
			return nil, fmt.Errorf("loading items: %w", err)
		}
		for i, it := range items {
			if err := requireRecord(filepath.Base(jsonPath), i+1, it.ID, it.Names, "names.en"); err != nil {
				return nil, err
			}
		}
	case exists(csvPath):
		rows, err := readCSV(csvPath)
		if err != nil {
			return nil, fmt.Errorf("loading items: %w", err)
		}
		for _, row := range rows {
			it := Item{
				ID:       row.str("id"),
				Names:    row.names("name"),
				Category: row.str("category"),
				Effect:   row.names("effect"),
				Sources:  row.list("sources"),
			}
			if it.Price, err = row.int("price"); err != nil {
				return nil, err
			}
			if it.SellPrice, err = row.int("sell_price"); err != nil {
				return nil, err
			}
			if err := requireRecord(row.file, row.line, it.ID, it.Names, "name_en"); err != nil {
				return nil, err
			}
			items = append(items, it)
		}
	default:
		return nil, nil
	}

	return items, nil
}

// requireRecord checks the fields every skill and item needs. line is the
// array position for JSON and the file line for CSV.
func requireRecord(file string, line int, id string, names Names, nameField string) error {
	if id == "" {
		return &LoadError{File: file, Line: line, Field: "id", Err: errMissing}
	}
	if names[DefaultLocale] == "" {
		return &LoadError{File: file, Line: line, Field: nameField, Err: errMissing}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// csvRow is one data row addressed by header name.
type csvRow struct {
	file   string
	line   int
	header map[string]int
	cells  []string
}

func (r csvRow) str(col string) string {
	i, ok := r.header[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// int parses an optional integer column; empty cells are zero.
func (r csvRow) int(col string) (int, error) {
	v := r.str(col)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &LoadError{File: r.file, Line: r.line, Field: col, Err: err}
	}
	return n, nil
}

// list splits a multi-valued cell.
func (r csvRow) list(col string) []string {
	v := r.str(col)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, listSep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// names collects prefix_<locale> columns, plus a bare prefix column as
// English when no name_en column exists.
func (r csvRow) names(prefix string) Names {
	n := Names{}
	for col := range r.header {
		if loc, ok := strings.CutPrefix(col, prefix+"_"); ok && loc != "" {
			if v := r.str(col); v != "" {
				n[loc] = v
			}
		}
	}
	if _, ok := n[DefaultLocale]; !ok {
		if v := r.str(prefix); v != "" {
			n[DefaultLocale] = v
		}
	}
	if len(n) == 0 {
		return nil
	}
	return n
}

// readCSV reads a headered CSV file. Header names are lowercased and
// trimmed; each row keeps its line number in the file.
func readCSV(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file := filepath.Base(path)
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, &LoadError{File: file, Line: 1, Err: err}
	}
	header := make(map[string]int, len(head))
	for i, h := range head {
		header[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	var rows []csvRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &LoadError{File: file, Line: pe.Line, Err: pe.Err}
			}
			return nil, &LoadError{File: file, Err: err}
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		// The reader skips blank lines, so take the line from its position.
		line, _ := cr.FieldPos(0)
		rows = append(rows, csvRow{file: file, line: line, header: header, cells: rec})
	}
	return rows, nil
}
