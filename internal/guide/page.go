// Package guide loads the markdown strategy guides, renders them to HTML
// and serves them as JSON, as server-rendered pages, or as a static export.
package guide

import (
	"bytes"
	"fmt"
	"html/template"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the optional YAML header of a guide page.
type FrontMatter struct {
	Title   string   `yaml:"title"`
	Summary string   `yaml:"summary"`
	Order   int      `yaml:"order"`
	Tags    []string `yaml:"tags"`
}

// Page is one rendered guide.
type Page struct {
	// Path is the slash-separated path below the guides dir without the
	// .md extension, e.g. "evolution/armor".
	Path    string        `json:"path"`
	Title   string        `json:"title"`
	Summary string        `json:"summary,omitempty"`
	Order   int           `json:"order"`
	Tags    []string      `json:"tags"`
	HTML    template.HTML `json:"html"`
}

var fence = []byte("---")

// splitFrontMatter separates a leading "---" delimited YAML block from the
// markdown body. Content without one is returned unchanged.
func splitFrontMatter(raw []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(raw, append(fence, '\n')) {
		return fm, raw, nil
	}
	rest := raw[len(fence)+1:]
	var header []byte
	var body []byte
	found := false
	for off := 0; off <= len(rest); {
		end := bytes.IndexByte(rest[off:], '\n')
		line := rest[off:]
		next := len(rest)
		if end >= 0 {
			line = rest[off : off+end]
			next = off + end + 1
		}
		if bytes.Equal(bytes.TrimSpace(line), fence) {
			header = rest[:off]
			body = rest[next:]
			found = true
			break
		}
		if end < 0 {
			break
		}
		off = next
	}
	if !found {
		return fm, nil, fmt.Errorf("front matter is not closed")
	}
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return fm, nil, fmt.Errorf("front matter: %w", err)
	}
	return fm, body, nil
}

// extractTitle pulls the first # heading from markdown content, or falls back to the file name.
func extractTitle(body []byte, rel string) string {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return formatName(strings.TrimSuffix(path.Base(rel), ".md"))
}

// extractSummary returns the first paragraph line that is not a heading.
func extractSummary(body []byte) string {
	inFence := false
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if len(trimmed) > 200 {
			trimmed = trimmed[:200] + "..."
		}
		return trimmed
	}
	return ""
}

// formatName converts a file or directory name to a display name.
// Multi-word slugs are title-cased.
func formatName(name string) string {
	words := strings.FieldsFunc(name, func(c rune) bool {
		return c == '-' || c == '_'
	})
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// rewriteLinks changes relative .md links in rendered HTML to ext, which
// is "" for server-rendered pages and ".html" for the static export.
func rewriteLinks(content, ext string) string {
	content = strings.ReplaceAll(content, `.md"`, ext+`"`)
	return strings.ReplaceAll(content, `.md#`, ext+`#`)
}
