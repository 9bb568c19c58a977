package display

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// DefaultStatusTemplate renders the one-line console status.
const DefaultStatusTemplate = `[{{ .Connection | upper }}] {{ .Room }} | {{ .Mood }} {{ .Status }} @ {{ printf "%.0f,%.0f" .X .Y }}` +
	`{{ if .Moving }} (moving){{ end }} | objects {{ .Objects }}` +
	`{{ if .Pending }} | pending {{ .Pending }}{{ end }}` +
	`{{ if .Model }} | {{ .Model }}{{ end }}` +
	`{{ if .Typing }} | typing...{{ end }}` +
	`{{ with .Error }} | error: {{ . | trunc 60 }}{{ end }}`

var templateFuncs = sprig.TxtFuncMap()

// Template is a parsed sprig text template.
type Template struct {
	tmpl *template.Template
}

func ParseTemplate(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &Template{tmpl: tmpl}, nil
}

func (t *Template) Execute(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// ExpandTemplate parses and executes tmplStr in one step.
func ExpandTemplate(tmplStr string, data any) (string, error) {
	t, err := ParseTemplate("", tmplStr)
	if err != nil {
		return "", err
	}
	return t.Execute(data)
}
