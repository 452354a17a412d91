// Package templates renders the HTML fragments patched into the map page.
package templates

import (
	"bytes"
	"html/template"
	"path/filepath"
	"strings"
)

// funcMap provides the formatting helpers used by the fragments.
var funcMap = template.FuncMap{
	// dict builds a map from key-value pairs for nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
	"join":    strings.Join,
	"rupiah":  Rupiah,
	"parking": ParkingCount,
	"yesno":   YesNo,
	"km":      Kilometres,
}

// Renderer manages HTML fragment templates.
type Renderer struct {
	templates *template.Template
}

// New parses every *.html file in fragmentsDir (web/templates/fragments).
func New(fragmentsDir string) (*Renderer, error) {
	tmpl, err := parse(fragmentsDir)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToBuffer(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	return r.templates.ExecuteTemplate(buf, name, data)
}

func parse(fragmentsDir string) (*template.Template, error) {
	pattern := filepath.Join(fragmentsDir, "*.html")
	return template.New("").Funcs(funcMap).ParseGlob(pattern)
}
