package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchGuideTool defines the search_guide MCP tool.
var searchGuideTool = mcp.NewTool("search_guide",
	mcp.WithDescription("Fuzzy search over Digimon, skills, items, bosses and strategy guide pages. Matches names in every language."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Name or partial name to look for"),
	),
	mcp.WithString("kind",
		mcp.Description("Restrict results to one kind"),
		mcp.Enum("digimon", "skill", "item", "boss", "guide"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
)

// getDigimonTool defines the get_digimon MCP tool.
var getDigimonTool = mcp.NewTool("get_digimon",
	mcp.WithDescription("Get the full Digidex entry of a Digimon: stage, attribute, stats, skills and evolutions."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Numeric id or slug, e.g. 2 or agumon"),
	),
)

// evolutionPathTool defines the evolution_path MCP tool.
var evolutionPathTool = mcp.NewTool("evolution_path",
	mcp.WithDescription("Find the shortest evolution path between two Digimon with the requirements of every step."),
	mcp.WithString("from",
		mcp.Required(),
		mcp.Description("Starting Digimon id or slug"),
	),
	mcp.WithString("to",
		mcp.Required(),
		mcp.Description("Target Digimon id or slug"),
	),
)

// analyzeTeamTool defines the analyze_team MCP tool.
var analyzeTeamTool = mcp.NewTool("analyze_team",
	mcp.WithDescription("Analyze a team: stat totals and averages, memory use against capacity, attribute and type coverage, available skill elements."),
	mcp.WithArray("members",
		mcp.Required(),
		mcp.Description("Digimon ids of the team members; repeats are allowed"),
		mcp.Items(map[string]any{"type": "number"}),
	),
)

// relatedDigimonTool defines the related_digimon MCP tool.
var relatedDigimonTool = mcp.NewTool("related_digimon",
	mcp.WithDescription("List Digimon similar to the given one by stage, attribute, type and skill elements."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Numeric id or slug"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
)
