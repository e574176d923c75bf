package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/digidex"
	"github.com/digiguide/digiguide/internal/evolution"
	"github.com/digiguide/digiguide/internal/search"
	"github.com/digiguide/digiguide/internal/team"
	"github.com/digiguide/digiguide/internal/vectordb"
)

// handleSearchGuide runs a fuzzy search over every record kind.
func (s *Server) handleSearchGuide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	kinds, ok := search.ParseKinds(request.GetString("kind", ""))
	if !ok {
		return mcp.NewToolResultError("kind must be one of digimon, skill, item, boss, guide"), nil
	}
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	ix, err := s.deps.Search.Index(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading catalog: %v", err)), nil
	}
	hits := ix.Search(query, kinds, limit, data.DefaultLocale)
	if len(hits) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No results for %q.", query)), nil
	}
	return mcp.NewToolResultText(formatHits(hits)), nil
}

// handleGetDigimon returns the Digidex entry for an id or slug.
func (s *Server) handleGetDigimon(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	c, err := s.deps.Source.Catalog(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading catalog: %v", err)), nil
	}
	d, err := digidex.Get(ctx, c, id)
	if errors.Is(err, data.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("No Digimon %q. Use search_guide to find the right name.", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatDetail(d)), nil
}

// handleEvolutionPath finds the shortest forward evolution path.
func (s *Server) handleEvolutionPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fromParam, err := request.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: from"), nil
	}
	toParam, err := request.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: to"), nil
	}

	c, err := s.deps.Source.Catalog(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading catalog: %v", err)), nil
	}
	from, err := c.LookupDigimon(fromParam)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("No Digimon %q.", fromParam)), nil
	}
	to, err := c.LookupDigimon(toParam)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("No Digimon %q.", toParam)), nil
	}

	steps, err := s.deps.Graphs.For(c).Path(from.ID, to.ID, data.DefaultLocale)
	if errors.Is(err, evolution.ErrNoPath) {
		return mcp.NewToolResultText(fmt.Sprintf("%s cannot evolve into %s.", from.Name(data.DefaultLocale), to.Name(data.DefaultLocale))), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPath(steps)), nil
}

// handleAnalyzeTeam aggregates a team of digimon ids.
func (s *Server) handleAnalyzeTeam(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := memberIDs(request.GetArguments()["members"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := s.deps.Source.Catalog(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading catalog: %v", err)), nil
	}
	a, err := team.Analyze(c, ids, s.deps.Team, data.DefaultLocale)
	if errors.Is(err, team.ErrTooManyMembers) || errors.Is(err, team.ErrUnknownDigimon) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(formatAnalysis(a)), nil
}

// handleRelatedDigimon lists the nearest neighbours in the related index.
func (s *Server) handleRelatedDigimon(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	c, err := s.deps.Source.Catalog(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading catalog: %v", err)), nil
	}
	d, err := c.LookupDigimon(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("No Digimon %q.", id)), nil
	}
	related, err := vectordb.RelatedDigimon(ctx, c, s.deps.Related, d.ID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("related lookup failed: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Digimon similar to %s:\n", d.Name(data.DefaultLocale))
	for i, r := range related {
		fmt.Fprintf(&sb, "%d. %s (%s, %s) similarity %.1f%%\n", i+1, r.Name, r.Stage, r.Attribute, r.Similarity*100)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// memberIDs converts the members argument, which arrives as JSON numbers.
func memberIDs(v any) ([]int, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.New("members must be an array of digimon ids")
	}
	ids := make([]int, 0, len(list))
	for _, item := range list {
		switch n := item.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("member id %v is not an integer", n)
			}
			ids = append(ids, int(n))
		case int:
			ids = append(ids, n)
		case string:
			id, err := strconv.Atoi(n)
			if err != nil {
				return nil, fmt.Errorf("member id %q is not a number", n)
			}
			ids = append(ids, id)
		default:
			return nil, fmt.Errorf("member id %v is not a number", item)
		}
	}
	return ids, nil
}

// formatHits renders search hits for an agent.
func formatHits(hits []search.Hit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n", len(hits))
	for i, h := range hits {
		fmt.Fprintf(&sb, "\n%d. %s [%s] %s\n", i+1, h.Title, h.Kind, h.URL)
		if h.Subtitle != "" {
			fmt.Fprintf(&sb, "   %s\n", h.Subtitle)
		}
	}
	return sb.String()
}

func formatDetail(d *digidex.Detail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (#%d, %s)\n", d.Name, d.Number, d.Slug)
	fmt.Fprintf(&sb, "Stage: %s  Attribute: %s  Type: %s\n", d.StageLabel, d.AttributeLabel, d.Type)
	if d.Personality != "" {
		fmt.Fprintf(&sb, "Personality: %s\n", d.Personality)
	}
	fmt.Fprintf(&sb, "Memory: %d  Equip slots: %d\n", d.Memory, d.EquipSlots)

	stats := make([]string, 0, len(data.StatNames))
	for _, name := range data.StatNames {
		v, _ := d.Stats.Field(name)
		stats = append(stats, fmt.Sprintf("%s %d", strings.ToUpper(name), v))
	}
	fmt.Fprintf(&sb, "Stats: %s (total %d)\n", strings.Join(stats, ", "), d.Total)

	if d.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", d.Description)
	}
	if len(d.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		for _, sk := range d.Skills {
			fmt.Fprintf(&sb, "- %s", sk.Name)
			if sk.Element != "" {
				fmt.Fprintf(&sb, " (%s)", sk.Element)
			}
			fmt.Fprintf(&sb, " power %d, %d SP\n", sk.Power, sk.SP)
		}
	}
	writeLinks(&sb, "Evolves from", d.EvolvesFrom)
	writeLinks(&sb, "Evolves to", d.EvolvesTo)
	return sb.String()
}

func writeLinks(sb *strings.Builder, label string, links []digidex.Link) {
	if len(links) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", label)
	for _, l := range links {
		fmt.Fprintf(sb, "- %s (%s)%s\n", l.Name, l.Stage, formatRequirements(l.Requirements))
	}
}

func formatRequirements(reqs []data.Requirement) string {
	if len(reqs) == 0 {
		return ""
	}
	parts := make([]string, len(reqs))
	for i, r := range reqs {
		parts[i] = r.String()
	}
	return ": " + strings.Join(parts, ", ")
}

func formatPath(steps []evolution.Step) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Path in %d evolution(s):\n", len(steps)-1)
	for i, st := range steps {
		if i == 0 {
			fmt.Fprintf(&sb, "%s (%s)\n", st.Name, st.Stage)
			continue
		}
		fmt.Fprintf(&sb, "-> %s (%s)%s\n", st.Name, st.Stage, formatRequirements(st.Requirements))
	}
	return sb.String()
}

func formatAnalysis(a *team.Analysis) string {
	var sb strings.Builder
	names := make([]string, len(a.Members))
	for i, m := range a.Members {
		names[i] = m.Name
	}
	fmt.Fprintf(&sb, "Team of %d/%d: %s\n", a.Size, a.MaxSize, strings.Join(names, ", "))
	fmt.Fprintf(&sb, "Memory: %d/%d", a.Memory, a.MemoryCapacity)
	if a.OverCapacity {
		sb.WriteString(" (over capacity)")
	}
	sb.WriteString("\n")

	totals := make([]string, 0, len(data.StatNames))
	for _, name := range data.StatNames {
		v, _ := a.Totals.Field(name)
		totals = append(totals, fmt.Sprintf("%s %d (avg %.1f)", strings.ToUpper(name), v, a.Averages[name]))
	}
	fmt.Fprintf(&sb, "Stats: %s\n", strings.Join(totals, ", "))
	fmt.Fprintf(&sb, "Attributes: %s\n", formatCounts(a.Attributes))
	fmt.Fprintf(&sb, "Types: %s\n", formatCounts(a.Types))
	if len(a.Elements) > 0 {
		fmt.Fprintf(&sb, "Skill elements: %s\n", strings.Join(a.Elements, ", "))
	}
	return sb.String()
}

func formatCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %d", k, m[k])
	}
	return strings.Join(parts, ", ")
}
