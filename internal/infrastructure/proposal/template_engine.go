package proposal

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TemplateEngine renders HTML proposal templates with formatting helpers.
type TemplateEngine struct {
	funcMap template.FuncMap
	printer *message.Printer
}

// NewTemplateEngine creates a new template engine with the default helpers
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		printer: message.NewPrinter(language.English),
	}

	e.funcMap = template.FuncMap{
		"formatMoney":    e.formatMoney,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"formatQuantity": formatQuantity,

		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": titleCase,
		"trim":  strings.TrimSpace,

		"indent":   indent,
		"repeat":   strings.Repeat,
		"safeHTML": safeHTML,
		"safeCSS":  safeCSS,
		"now":      time.Now,
	}

	return e
}

// Render parses and executes the template source against data
func (e *TemplateEngine) Render(name, src string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// formatMoney renders a decimal amount as "$1,234.50"
func (e *TemplateEngine) formatMoney(d decimal.Decimal) string {
	rounded := d.Round(2)
	units := rounded.IntPart()
	cents := rounded.Sub(decimal.NewFromInt(units)).Abs().Mul(decimal.NewFromInt(100)).IntPart()

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		if units < 0 {
			units = -units
		}
	}
	return e.printer.Sprintf("%s$%d.%02d", sign, units, cents)
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func formatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func formatQuantity(q int) string {
	return fmt.Sprintf("%d", q)
}

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(strings.ToLower(s))
}

func indent(depth int) string {
	return strings.Repeat("    ", depth)
}

func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

func safeCSS(s string) template.CSS {
	return template.CSS(s)
}
