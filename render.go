package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"cinefinder/models"
	"cinefinder/services"
	"cinefinder/views"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const notAvailable = "No disponible"

// pageData is what every page template renders from
type pageData struct {
	Title   string
	State   views.State
	Region  string
	Refresh bool
}

type renderer struct {
	templates *template.Template
}

func newRenderer(images services.ImageURLs) (*renderer, error) {
	printer := message.NewPrinter(language.Spanish)

	funcs := template.FuncMap{
		"img":  images.URL,
		"flag": services.FlagURL,
		"join": strings.Join,
		"money": func(amount int64) string {
			return formatMoney(printer, amount)
		},
		"limit": func(n int, cast []models.CastMember) []models.CastMember {
			if len(cast) > n {
				return cast[:n]
			}
			return cast
		},
	}

	tmpl, err := template.New("cinefinder").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &renderer{templates: tmpl}, nil
}

// render executes the named page into a buffer so a template failure
// never leaves a half-written response.
func (r *renderer) render(w http.ResponseWriter, name string, data pageData) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

func formatMoney(printer *message.Printer, amount int64) string {
	if amount <= 0 {
		return notAvailable
	}
	return printer.Sprintf("%d", amount) + " $"
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
