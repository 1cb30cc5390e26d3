// Package report renders the aggregated monthly statistics as a
// standalone HTML page for distribution to co-owners.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/stats"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Row is one month of the rendered table, in calendar order.
type Row struct {
	Month string
	Stats *stats.MonthBucket
}

type page struct {
	Title       string
	GeneratedAt string
	Rows        []Row
	MaxNights   int
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("stats.html.tmpl").Funcs(template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"barWidth": func(value, max int) int {
			if max <= 0 {
				return 0
			}
			return value * 100 / max
		},
	}).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse report templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the HTML report for a month mapping. Months are sorted
// by key, which is calendar order for "2006-01" keys.
func (r *Renderer) Render(w io.Writer, months map[string]*stats.MonthBucket, generatedAt time.Time) error {
	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	p := page{
		Title:       "Monthly Property Statistics",
		GeneratedAt: generatedAt.Format("2006-01-02 15:04"),
	}
	for _, key := range keys {
		bucket := months[key]
		p.Rows = append(p.Rows, Row{Month: key, Stats: bucket})
		if bucket.NightsRented > p.MaxNights {
			p.MaxNights = bucket.NightsRented
		}
	}

	if err := r.tmpl.ExecuteTemplate(w, "stats.html.tmpl", p); err != nil {
		return fmt.Errorf("execute report template: %w", err)
	}
	return nil
}

// RenderFile renders the report to an HTML file, creating parent
// directories as needed.
func (r *Renderer) RenderFile(path string, months map[string]*stats.MonthBucket, generatedAt time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := r.Render(f, months, generatedAt); err != nil {
		return err
	}
	return f.Close()
}
