package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplatePlainText(t *testing.T) {
	out, err := RenderTemplate("no placeholders here", map[string]any{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, "no placeholders here", out)
}

func TestRenderTemplateSubstitution(t *testing.T) {
	out, err := RenderTemplate("Hello {{.name}}, tier {{.tier}}.", map[string]any{
		"name": "Alice",
		"tier": "gold",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Alice, tier gold.", out)
}

func TestRenderTemplateMissingKey(t *testing.T) {
	out, err := RenderTemplate("Hello {{.missing}}!", map[string]any{})
	require.NoError(t, err)
	// missingkey=zero renders the type's zero value.
	assert.Equal(t, "Hello <no value>!", out)
}

func TestRenderTemplateFuncs(t *testing.T) {
	out, err := RenderTemplate(`{{upper .name}} / {{lower "LOUD"}} / {{join ", " .items}}`, map[string]any{
		"name":  "alice",
		"items": []any{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ALICE / loud / a, b", out)
}

func TestRenderTemplateDefault(t *testing.T) {
	out, err := RenderTemplate(`{{default "anonymous" .name}}`, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "anonymous", out)
}

func TestRenderTemplateParseError(t *testing.T) {
	_, err := RenderTemplate("{{.unclosed", nil)
	require.Error(t, err)
}
