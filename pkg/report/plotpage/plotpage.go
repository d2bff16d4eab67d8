// Package plotpage renders analysis reports as standalone HTML pages with
// interactive ECharts charts.
package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// EChartsAssetURL is the script the page loads ECharts from.
const EChartsAssetURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

const styleTagLen = len("</style>")

// Renderable is implemented by every go-echarts chart.
type Renderable interface {
	Render(w io.Writer) error
}

// Stat is one headline figure shown above a chart.
type Stat struct {
	Label string
	Value string
}

// Section is one chart block of a page.
type Section struct {
	Title    string
	Subtitle string
	Stats    []Stat
	Chart    Renderable
	Insights []string
}

// Page is a complete report page.
type Page struct {
	Title       string
	Description string
	Theme       Theme
	Sections    []Section
}

// NewPage creates a dark themed page.
func NewPage(title, description string) *Page {
	return &Page{Title: title, Description: description, Theme: ThemeDark}
}

// WithTheme sets the theme for the page.
func (p *Page) WithTheme(theme Theme) *Page {
	p.Theme = theme

	return p
}

// Add appends sections to the page.
func (p *Page) Add(sections ...Section) {
	p.Sections = append(p.Sections, sections...)
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	var content bytes.Buffer

	for _, section := range p.Sections {
		html, err := renderSection(section)
		if err != nil {
			return fmt.Errorf("render section %q: %w", section.Title, err)
		}

		content.WriteString(string(html))
	}

	html, err := renderTemplate("page.html", pageData{
		Title:       p.Title,
		Description: p.Description,
		ThemeName:   p.Theme,
		Theme:       GetThemeConfig(p.Theme),
		Content:     template.HTML(content.String()), //nolint:gosec // rendered by html/template.
		EChartsJS:   EChartsAssetURL,
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	_, err = io.WriteString(w, string(html))
	if err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}

func renderSection(section Section) (template.HTML, error) {
	chartHTML, err := renderChart(section.Chart)
	if err != nil {
		return "", err
	}

	return renderTemplate("section.html", sectionData{
		Title:    section.Title,
		Subtitle: section.Subtitle,
		Chart:    template.HTML(chartHTML), //nolint:gosec // produced by go-echarts.
		Stats:    section.Stats,
		Insights: section.Insights,
	})
}

func renderChart(chart Renderable) (string, error) {
	if chart == nil {
		return "", nil
	}

	var buf bytes.Buffer

	err := chart.Render(&buf)
	if err != nil {
		return "", fmt.Errorf("rendering chart: %w", err)
	}

	return extractChartContent(buf.String()), nil
}

// extractChartContent strips the standalone page go-echarts renders down to
// the chart container and its script.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}

	end := strings.Index(html, `</body>`)
	if end == -1 {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			return content
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			return content
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}
}
