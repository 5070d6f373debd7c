// Package prompts holds the prompt templates used for SQL generation and a
// small Jinja-style template wrapper for rendering them.
package prompts

import (
	"github.com/cockroachdb/errors"
	"github.com/nikolalohinski/gonja"
	"github.com/nikolalohinski/gonja/exec"
)

// Template is a compiled Jinja-style prompt template.
type Template struct {
	tpl *exec.Template
}

// NewTemplate compiles the given template source.
func NewTemplate(source string) (*Template, error) {
	tpl, err := gonja.FromString(source)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to parse template")
	}
	return &Template{tpl: tpl}, nil
}

// MustNewTemplate compiles the given template source and panics on error.
// Intended for package-level template constants.
func MustNewTemplate(source string) *Template {
	t, err := NewTemplate(source)
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the template with the given variables.
func (t *Template) Render(vars map[string]any) (string, error) {
	out, err := t.tpl.Execute(gonja.Context(vars))
	if err != nil {
		return "", errors.WithMessage(err, "failed to render template")
	}
	return out, nil
}
