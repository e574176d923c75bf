package guide

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// Tree is a node of the guide navigation.
type Tree struct {
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	Path     string  `json:"path,omitempty"`
	IsDir    bool    `json:"is_dir"`
	Order    int     `json:"order"`
	Children []*Tree `json:"children,omitempty"`
}

// BuildTree constructs the navigation from pages.
func BuildTree(pages []*Page) *Tree {
	root := &Tree{Name: "guides", Title: "Guides", IsDir: true}

	for _, p := range pages {
		parts := strings.Split(p.Path, "/")
		current := root
		for i, part := range parts {
			isLast := i == len(parts)-1
			var found *Tree
			for _, child := range current.Children {
				if child.Name == part && child.IsDir == !isLast {
					found = child
					break
				}
			}
			if found == nil {
				found = &Tree{Name: part, IsDir: !isLast}
				if isLast {
					found.Path = p.Path
					found.Title = p.Title
					found.Order = p.Order
				} else {
					found.Path = strings.Join(parts[:i+1], "/")
					found.Title = formatName(part)
				}
				current.Children = append(current.Children, found)
			}
			current = found
		}
	}

	sortTree(root)
	return root
}

// sortTree recursively sorts children: directories first, then order, then name.
func sortTree(node *Tree) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Name < b.Name
	})
	for _, child := range node.Children {
		if child.IsDir {
			sortTree(child)
		}
	}
}

// navHTML renders the tree as nested lists. link maps a page path to its
// href; the active page and its ancestors are marked.
func (t *Tree) navHTML(active string, link func(string) string) template.HTML {
	var b strings.Builder
	renderChildren(&b, t, active, link)
	return template.HTML(b.String())
}

func renderChildren(b *strings.Builder, node *Tree, active string, link func(string) string) {
	if len(node.Children) == 0 {
		return
	}
	b.WriteString("<ul>\n")
	for _, child := range node.Children {
		title := template.HTMLEscapeString(child.Title)
		if child.IsDir {
			expanded := ""
			if strings.HasPrefix(active, child.Path+"/") {
				expanded = " expanded"
			}
			fmt.Fprintf(b, `<li class="dir%s"><span class="dir-toggle">%s</span>`+"\n", expanded, title)
			renderChildren(b, child, active, link)
			b.WriteString("</li>\n")
			continue
		}
		class := ""
		if child.Path == active {
			class = ` class="active"`
		}
		fmt.Fprintf(b, `<li class="file"><a href="%s"%s>%s</a></li>`+"\n",
			template.HTMLEscapeString(link(child.Path)), class, title)
	}
	b.WriteString("</ul>\n")
}
