package reporting

import (
	"bytes"
	"html/template"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders report templates with the formatting helpers
// the report HTML expects. It wraps Go's html/template, so all data is
// escaped unless a helper says otherwise.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		funcMap: template.FuncMap{
			"formatDate":     formatDate,
			"formatDateTime": formatDateTime,
			"title":          titleCase,
			"shortUUID":      shortUUID,
			"add":            func(a, b int) int { return a + b },
		},
	}
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(name, content string, data interface{}) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}

	return buf.String(), nil
}

// formatDate formats a time value as "2006-01-02"
func formatDate(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatDateTime formats a time value as "2006-01-02 15:04:05 UTC"
func formatDateTime(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// titleCase converts a string to title case with proper Unicode handling
func titleCase(s string) string {
	caser := cases.Title(language.English)
	return caser.String(s)
}

func shortUUID(id uuid.UUID) string {
	s := id.String()
	if len(s) >= 8 {
		return s[:8]
	}
	return s
}

func toTime(v interface{}) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	default:
		return time.Time{}
	}
}
