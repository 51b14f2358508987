package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// TestModerator_Censor
// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"admin", "cheater", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		flagged  bool
	}{
		{
			name:     "Simple word and space preservation",
			input:    "the admin returns",
			expected: "the ***** returns",
			flagged:  true,
		},
		{
			name:     "Multiple occurrences",
			input:    "admin admin admin",
			expected: "***** ***** *****",
			flagged:  true,
		},
		{
			name: "Leet speak and internal punctuation",
			// A (index 4) . d . m . 1 . n (index 12) -> 9 characters
			input:    "The A.d.m.1.n !",
			expected: "The ********* !",
			flagged:  true,
		},
		{
			name:     "Uppercase and extreme noise",
			input:    "C-H-E-A-T-E-R is an A.D.M.I.N",
			expected: "************* is an *********",
			flagged:  true,
		},
		{
			name:     "Accents and special characters (UTF-8)",
			input:    "Un été avec un admin",
			expected: "Un été avec un *****",
			flagged:  true,
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "I am the admin!",
			expected: "I am the *****!",
			flagged:  true,
		},
		{
			name:     "Nothing to censor",
			input:    "ArenaFan_42",
			expected: "ArenaFan_42",
			flagged:  false,
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
			flagged:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, flagged := mod.Censor(tt.input)
			req.Equal(tt.expected, content, "test=%s,", tt.name)
			req.Equal(tt.flagged, flagged)
		})
	}
}

func TestModerator_CornerCases(t *testing.T) {
	req := require.New(t)

	// Given real noise and not Leet Speak associated
	dictionary := []string{"...", ",,,", "", "admin"}

	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	// Then the name is censored
	content, flagged := mod.Censor("the admin is safe")
	req.Equal("the ***** is safe", content)
	req.True(flagged)

	// Then real noise is uncensored
	content, flagged = mod.Censor("Hello ...")
	req.Equal("Hello ...", content)
	req.False(flagged)
}

func TestCensoredLoader_LoadDefault(t *testing.T) {
	req := require.New(t)

	data, err := LoadDefault()
	req.NoError(err)
	req.Contains(data.Languages, "en")
	req.Contains(data.Languages, "fr")
	req.Contains(data.Words, "admin")
}
