package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json untouched",
			input:    `{"intent":"search"}`,
			expected: `{"intent":"search"}`,
		},
		{
			name:     "json fence stripped",
			input:    "```json\n{\"intent\":\"search\"}\n```",
			expected: `{"intent":"search"}`,
		},
		{
			name:     "bare fence stripped",
			input:    "```\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "surrounding prose trimmed",
			input:    "Sure! Here you go: {\"a\": {\"b\": 2}} hope that helps",
			expected: `{"a": {"b": 2}}`,
		},
		{
			name:     "trailing junk after object ignored",
			input:    `{"a":1}{"b":2}`,
			expected: `{"a":1}`,
		},
		{
			name:     "no braces passes through",
			input:    "I could not produce JSON",
			expected: "I could not produce JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanJSONResponse(tt.input))
		})
	}
}

func TestExtractBulletSuggestions(t *testing.T) {
	text := "Here are some ideas:\n" +
		"• Fabrica Coffee Roasters\n" +
		"- Copenhagen Coffee Lab\n" +
		"* Hello Kristof\n" +
		"\n" +
		"Let me know which one you like!"

	suggestions := extractBulletSuggestions(text)

	assert.Equal(t, []string{
		"Fabrica Coffee Roasters",
		"Copenhagen Coffee Lab",
		"Hello Kristof",
	}, suggestions)
}

func TestExtractBulletSuggestionsEmpty(t *testing.T) {
	assert.Empty(t, extractBulletSuggestions("No lists here, just prose."))
	assert.Empty(t, extractBulletSuggestions("-\n•   \n"))
}
