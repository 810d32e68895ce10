// Package renderer turns ledgers, valuations and reports into markdown.
//
// Each report is a plain struct built from the folio types, then rendered by
// an assembly template made of partials, all embedded from templates/.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/folio"
)

//go:embed templates/*.md
var embedded embed.FS

// templates is the flat file system of the markdown templates.
var templates fs.FS

func init() {
	var err error
	templates, err = fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
}

// RenderHolding renders the Holding struct to a markdown string.
func RenderHolding(h *Holding) string {
	partials := map[string]string{
		"holding_title":    "holding_title.md",
		"holding_equities": "holding_equities.md",
		"holding_cash":     "holding_cash.md",
	}
	return renderTemplate("holding", "holding.md", partials, h)
}

// RenderValuation renders the values of the ledgers of a group.
func RenderValuation(v *Valuation) string {
	partials := map[string]string{
		"valuation_title":   "valuation_title.md",
		"valuation_ledgers": "valuation_ledgers.md",
	}
	return renderTemplate("valuation", "valuation.md", partials, v)
}

// HistoryRenderOptions holds configuration for rendering a history report.
type HistoryRenderOptions struct {
	SkipStats bool // Do not render the statistics section.
}

// RenderHistory renders a valuation series.
func RenderHistory(h *History, opts HistoryRenderOptions) string {
	partials := map[string]string{
		"history_title":  "history_title.md",
		"history_points": "history_points.md",
		"history_stats":  "history_stats.md",
	}
	if opts.SkipStats || h.Stats == nil {
		// An empty file name results in an empty template.
		partials["history_stats"] = ""
	}
	return renderTemplate("history", "history.md", partials, h)
}

// RenderPnL renders a profit and loss report.
func RenderPnL(p *PnL) string {
	partials := map[string]string{
		"pnl_title":     "pnl_title.md",
		"pnl_positions": "pnl_positions.md",
	}
	return renderTemplate("pnl", "pnl.md", partials, p)
}

// RenderTransactions renders the journal of a ledger.
func RenderTransactions(t *Transactions) string {
	return renderTemplate("transactions", "transactions.md", nil, t)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

var funcs = template.FuncMap{
	"percent": percent,
	"signed":  func(m folio.Money) string { return m.SignedString() },
}

// percent formats a percentage with two decimals and its sign.
func percent(p float64) string {
	if p == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%+.2f%%", p)
}
