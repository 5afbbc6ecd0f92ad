// Package render renders directory cards from embedded html/template files.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

//go:embed templates/*.html
var templateFS embed.FS

// fallbackTemplate renders content types without a dedicated card
const fallbackTemplate = "default"

// Ensure TemplateRenderer implements CardRenderer
var _ driven.CardRenderer = (*TemplateRenderer)(nil)

// TemplateRenderer renders one card per item, picking the template named
// after the content type.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses the embedded card templates
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.New("cards").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse card templates: %w", err)
	}
	return &TemplateRenderer{templates: tmpl}, nil
}

// RenderCard renders item with its content type's template
func (r *TemplateRenderer) RenderCard(ctx context.Context, contentType domain.ContentType, item domain.IndexedItem) (string, error) {
	name := string(contentType)
	if r.templates.Lookup(name) == nil {
		name = fallbackTemplate
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, item); err != nil {
		return "", fmt.Errorf("render %s card %s: %w", contentType, item.ID, err)
	}
	return buf.String(), nil
}
