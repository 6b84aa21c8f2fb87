package plotpage

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

// EChartsAssetURL is the ECharts build loaded by every page.
const EChartsAssetURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

//go:embed templates/*.html
var templateFS embed.FS

var (
	templates     *template.Template
	templatesOnce sync.Once
	errTemplates  error
)

var funcMap = template.FuncMap{
	"odd": func(i int) bool {
		return i%2 == 1
	},
	"add": func(a, b int) int {
		return a + b
	},
}

// getTemplates returns the parsed templates, loading them once.
func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		var parseErr error

		templates, parseErr = template.New("").
			Funcs(funcMap).
			ParseFS(templateFS, "templates/*.html")
		if parseErr != nil {
			errTemplates = fmt.Errorf("parsing templates: %w", parseErr)
		}
	})

	return templates, errTemplates
}

// renderTemplate renders a named template with the given data.
func renderTemplate(name string, data any) (template.HTML, error) {
	tmpl, err := getTemplates()
	if err != nil {
		return "", fmt.Errorf("loading templates: %w", err)
	}

	var buf bytes.Buffer

	err = tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template.
}

type pageData struct {
	Title     string
	DarkClass string
	Light     ThemeConfig
	Dark      ThemeConfig
	EChartsJS string
	ExtraCSS  template.CSS
	Header    template.HTML
	Content   template.HTML
	Scripts   template.HTML
}

type headerData struct {
	ProjectName     string
	Subtitle        string
	Title           string
	Description     string
	ShowThemeToggle bool
}

type sectionData struct {
	Title    string
	Subtitle string
	Chart    template.HTML
	Content  template.HTML
	Hint     *hintData
}

type hintData struct {
	Title string
	Items []string
}

// Cell is one table cell. Class is an optional CSS class such as "tier-high".
type Cell struct {
	Text  string
	Class string
}

type tableData struct {
	Headers []string
	Rows    [][]Cell
	Striped bool
}

// Table renders a striped table fragment. Cell text is escaped.
func Table(headers []string, rows [][]Cell) (template.HTML, error) {
	return renderTemplate("table.html", tableData{Headers: headers, Rows: rows, Striped: true})
}

// Stat is one headline number on a stats strip.
type Stat struct {
	Label string
	Value string
	Class string
}

// Stats renders a strip of headline numbers.
func Stats(items []Stat) (template.HTML, error) {
	return renderTemplate("stats.html", items)
}

type previewData struct {
	Title     string
	Badge     string
	BadgeTier string
	Caption   string
	StartLine int
	Lines     []string
	Truncated bool
}

// SourcePreview describes a source excerpt shown with line numbers.
type SourcePreview struct {
	Title     string
	Badge     string
	BadgeTier string
	Caption   string
	StartLine int
	Lines     []string

	// Truncated marks an excerpt cut short of the full definition.
	Truncated bool
}

// Preview renders a source excerpt with line numbers.
func Preview(p SourcePreview) (template.HTML, error) {
	return renderTemplate("preview.html", previewData(p))
}
