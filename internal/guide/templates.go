package guide

import (
	"html/template"
	"io"
)

// layoutData is passed to the page layout.
type layoutData struct {
	SiteName string
	Lang     string
	Title    string
	Summary  string
	Tags     []string
	Content  template.HTML
	Nav      template.HTML
	Home     string
}

var layout = template.Must(template.New("page").Parse(pageTemplate))

func renderLayout(w io.Writer, d layoutData) error {
	return layout.Execute(w, d)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}} | {{.SiteName}}</title>
  {{with .Summary}}<meta name="description" content="{{.}}">{{end}}
  <style>` + cssContent + `</style>
</head>
<body>
  <nav class="sidebar">
    <div class="sidebar-header"><a href="{{.Home}}" class="project-title">{{.SiteName}}</a></div>
    <div class="sidebar-tree">{{.Nav}}</div>
  </nav>
  <main class="content">
    <article class="page-content">
      {{with .Tags}}<div class="tags">{{range .}}<span class="tag">{{.}}</span>{{end}}</div>{{end}}
      {{.Content}}
    </article>
  </main>
</body>
</html>`

const cssContent = `
:root {
  --bg: #ffffff;
  --bg-sidebar: #f1f3f5;
  --text: #212529;
  --text-muted: #868e96;
  --border: #dee2e6;
  --accent: #e8590c;
  --code-bg: #f1f3f5;
  --sidebar-width: 280px;
}
* { box-sizing: border-box; }
body { margin: 0; display: flex; font-family: -apple-system, "Segoe UI", "Hiragino Sans", sans-serif; color: var(--text); background: var(--bg); }
.sidebar { width: var(--sidebar-width); min-height: 100vh; background: var(--bg-sidebar); border-right: 1px solid var(--border); padding: 1rem; }
.project-title { font-weight: 700; font-size: 1.2rem; color: var(--accent); text-decoration: none; }
.sidebar-tree ul { list-style: none; padding-left: 0.8rem; margin: 0.3rem 0; }
.sidebar-tree a { color: var(--text); text-decoration: none; }
.sidebar-tree a.active { color: var(--accent); font-weight: 600; }
.dir-toggle { color: var(--text-muted); font-size: 0.85rem; text-transform: uppercase; }
.content { flex: 1; padding: 2rem 3rem; max-width: 900px; }
.tags { margin-bottom: 1rem; }
.tag { display: inline-block; margin-right: 0.4rem; padding: 0.1rem 0.5rem; border-radius: 999px; background: var(--code-bg); font-size: 0.8rem; }
pre { background: var(--code-bg); padding: 0.8rem; overflow-x: auto; border-radius: 4px; }
table { border-collapse: collapse; }
th, td { border: 1px solid var(--border); padding: 0.3rem 0.6rem; }
`
