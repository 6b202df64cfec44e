package main

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// pagesPerBlock is how many page-number buttons the list shows at once.
const pagesPerBlock = 10

func linebreaks(s string) template.HTML {
	s = template.HTMLEscapeString(s)

	paragraphs := strings.Split(s, "\n\n")
	var result []string

	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			p = strings.ReplaceAll(p, "\n", "<br>")
			result = append(result, "<p>"+p+"</p>")
		}
	}

	return template.HTML(strings.Join(result, "\n"))
}

// pageBlock returns the page numbers of the block containing current:
// 1..10, 11..20 and so on, cut off at total.
func pageBlock(current, total int) []int {
	if total < 1 || current < 1 {
		return nil
	}
	start := (current-1)/pagesPerBlock*pagesPerBlock + 1
	end := min(total, start+pagesPerBlock-1)

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func loadTemplates() map[string]*template.Template {
	templates := make(map[string]*template.Template)
	pages := []string{"list.html", "detail.html", "editor.html", "settings.html"}

	funcs := template.FuncMap{
		"linebreaks": linebreaks,
		"pageBlock":  pageBlock,
		"formatTime": formatTime,
	}

	for _, page := range pages {
		templates[page] = template.Must(
			template.New("").Funcs(funcs).ParseFS(templateFS,
				"templates/base.html",
				"templates/"+page,
			))
	}

	return templates
}
