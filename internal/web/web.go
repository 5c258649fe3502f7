// Package web holds the server-rendered HTML pages for browsing drops.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names, as passed to gin's c.HTML.
const (
	IndexPage    = "index.html"
	DetailPage   = "detail.html"
	NotFoundPage = "404.html"
)

// FuncMap is available to every page.
var FuncMap = template.FuncMap{
	"formatPrice": FormatPrice,
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("pages").Funcs(FuncMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// FormatPrice renders a Scryfall decimal price as dollars with two places.
// Missing or malformed prices render as N/A.
func FormatPrice(price *string) string {
	if price == nil {
		return "N/A"
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*price), 64)
	if err != nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", v)
}
