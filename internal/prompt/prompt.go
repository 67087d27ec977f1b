// Package prompt renders the markdown prompt templates sent to the model.
// Keeping the prompts as markdown files makes them easy to read and finetune
// without touching code.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

// Embed the 'templates' directory.
// The path is relative to this file (internal/prompt/prompt.go).
//
//go:embed templates
var templates embed.FS

// OrganisationMetadata is the classification prompt; its only variable is
// the organisation's website.
const OrganisationMetadata = "organisation_metadata.md"

// Vars holds the values a prompt template can reference.
type Vars struct {
	Website string
}

// Render renders the named template with the given variables.
func Render(name string, vars Vars) (string, error) {
	t, err := template.ParseFS(templates, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to load prompt template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to render prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}
