package proposal

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleDocument() *Document {
	return &Document{
		Title:       "Installation Proposal - Harbor House",
		Company:     CompanyInfo{Name: "HomeOps Installations", Address: "12 Dock Road"},
		Client:      ClientInfo{Name: "Jordan Reeves", Email: "jordan@example.com", Phone: "555-0134"},
		ProjectName: "Harbor House",
		Description: "Whole-home audio and lighting",
		Status:      "DRAFT",
		Sections: []Section{
			{
				Name:     "Ground Floor",
				Depth:    0,
				Subtotal: dec("2100.00"),
				Items: []LineRow{
					{DeviceName: "Ceiling Speaker", DeviceCode: "SPK-01", Quantity: 2, UnitPrice: dec("150.00"), Amount: dec("300.00")},
				},
			},
			{
				Name:     "Living Room",
				Depth:    1,
				Subtotal: dec("1800.00"),
				Items: []LineRow{
					{DeviceName: "Control Panel", DeviceCode: "PNL-01", Quantity: 1, UnitPrice: dec("1200.00"), Amount: dec("1200.00")},
					{DeviceName: "Ceiling Speaker", DeviceCode: "SPK-01", Quantity: 4, UnitPrice: dec("150.00"), Amount: dec("600.00")},
				},
			},
		},
		TotalCost:   dec("2100.00"),
		GeneratedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestTemplateEngine_RenderDefaultTemplate(t *testing.T) {
	engine := NewTemplateEngine()

	src, err := DefaultTemplateHTML()
	require.NoError(t, err)

	html, err := engine.Render(DefaultTemplateName, src, sampleDocument())
	require.NoError(t, err)

	assert.Contains(t, html, "HomeOps Installations")
	assert.Contains(t, html, "Jordan Reeves")
	assert.Contains(t, html, "Harbor House")
	assert.Contains(t, html, "Ground Floor")
	assert.Contains(t, html, "Living Room")
	assert.Contains(t, html, "SPK-01")
	assert.Contains(t, html, "$2,100.00")
	assert.Contains(t, html, "$1,200.00")
	assert.Contains(t, html, "March 14, 2026")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(html), "<!DOCTYPE html>"))
}

func TestTemplateEngine_RenderInvalidTemplate(t *testing.T) {
	engine := NewTemplateEngine()

	_, err := engine.Render("broken", "{{.Missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestFormatMoney(t *testing.T) {
	engine := NewTemplateEngine()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"whole amount", "1200", "$1,200.00"},
		{"cents", "150.50", "$150.50"},
		{"zero", "0", "$0.00"},
		{"large", "1234567.89", "$1,234,567.89"},
		{"negative", "-42.10", "-$42.10"},
		{"rounds half up", "99.995", "$100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.formatMoney(dec(tt.input)))
		})
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Ground Floor", titleCase("GROUND FLOOR"))
	assert.Equal(t, "Living Room", titleCase("living room"))
}
