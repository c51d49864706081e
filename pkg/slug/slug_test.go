package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple title", input: "Hello World", expected: "hello-world"},
		{name: "punctuation", input: "Donate Blood, Save Lives!", expected: "donate-blood-save-lives"},
		{name: "blood groups", input: "Why O- Matters", expected: "why-o-matters"},
		{name: "leading and trailing symbols", input: "  --Camp 2024--  ", expected: "camp-2024"},
		{name: "accents folded", input: "Café Résumé", expected: "cafe-resume"},
		{name: "only symbols", input: "!@#$%", expected: ""},
		{name: "non latin", input: "रक्तदान", expected: ""},
		{name: "already a slug", input: "blood-drive", expected: "blood-drive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Make(tt.input))
		})
	}
}

func TestMakeIdempotent(t *testing.T) {
	inputs := []string{
		"Hello World",
		"--A  B--",
		"Über München / 2025",
		"AB+ donors needed!!!",
		"---",
		"",
		"x",
	}
	for _, in := range inputs {
		once := Make(in)
		assert.Equal(t, once, Make(once), in)
		assert.False(t, strings.HasPrefix(once, "-"), in)
		assert.False(t, strings.HasSuffix(once, "-"), in)
		assert.NotContains(t, once, "--", in)
	}
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "camp", WithSuffix("camp", 1))
	assert.Equal(t, "camp-3", WithSuffix("camp", 3))
	assert.Equal(t, "2", WithSuffix("", 2))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("blood-drive-2025"))
	assert.False(t, Valid("Blood Drive"))
	assert.False(t, Valid("-drive"))
	assert.False(t, Valid(""))
}
