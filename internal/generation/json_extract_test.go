package generation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSONObjectPlain(t *testing.T) {
	out, ok := ExtractJSONObject(`{"title": "Two Sum"}`)
	require.True(t, ok)
	require.JSONEq(t, `{"title": "Two Sum"}`, out)
}

func TestExtractJSONObjectFromFencedBlock(t *testing.T) {
	text := "Here is the draft you asked for:\n```json\n{\"title\": \"Two Sum\", \"n\": 2}\n```\nLet me know if it works."
	out, ok := ExtractJSONObject(text)
	require.True(t, ok)
	require.JSONEq(t, `{"title": "Two Sum", "n": 2}`, out)
}

func TestExtractJSONObjectWithTrailingProse(t *testing.T) {
	text := `Sure! {"title": "Two Sum", "nested": {"a": [1, 2]}} Hope that helps.`
	out, ok := ExtractJSONObject(text)
	require.True(t, ok)
	require.JSONEq(t, `{"title": "Two Sum", "nested": {"a": [1, 2]}}`, out)
}

func TestExtractJSONObjectHandlesBracesInStrings(t *testing.T) {
	text := `{"code": "if (x) { return \"}\"; }"}`
	out, ok := ExtractJSONObject(text)
	require.True(t, ok)
	require.JSONEq(t, text, out)
}

func TestExtractJSONObjectRejectsGarbage(t *testing.T) {
	_, ok := ExtractJSONObject("no json here")
	require.False(t, ok)

	_, ok = ExtractJSONObject("{unbalanced")
	require.False(t, ok)

	_, ok = ExtractJSONObject("")
	require.False(t, ok)
}
