package manifest

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Render expands Go template syntax in manifest text with the sprig
// function set. Values are addressable as .Values; referencing a key the
// values do not carry is an error rather than silently rendering
// "<no value>" into the manifest.
func Render(name, text string, values map[string]any) (string, error) {
	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse manifest template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"Values": values}); err != nil {
		return "", fmt.Errorf("failed to render manifest %s: %w", name, err)
	}
	return buf.String(), nil
}
