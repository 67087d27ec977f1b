package prompt

import (
	"strings"
	"testing"
)

func TestRenderOrganisationMetadata(t *testing.T) {
	out, err := Render(OrganisationMetadata, Vars{Website: "https://example.org"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "https://example.org") {
		t.Fatal("rendered prompt does not mention the website")
	}
	for _, key := range []string{"Type", "Location", "Confidence"} {
		if !strings.Contains(out, key) {
			t.Fatalf("rendered prompt does not mention the %s key", key)
		}
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, err := Render("does_not_exist.md", Vars{}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
