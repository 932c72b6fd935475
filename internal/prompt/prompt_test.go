package prompt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/geminiscribe/internal/prompt"
)

func TestBuildIsDeterministic(t *testing.T) {
	require.Equal(t, prompt.Build(nil), prompt.Build(nil))
	require.Equal(t, prompt.Build(&prompt.Options{}), prompt.Build(nil))

	opts := &prompt.Options{LanguageHint: "German"}
	require.Equal(t, prompt.Build(opts), prompt.Build(opts))
}

func TestBuildDefault(t *testing.T) {
	got := prompt.Build(nil)

	require.Contains(t, got, "markdown")
	require.Contains(t, got, "Tables:")
	require.Contains(t, got, "fenced code block")
	require.NotContains(t, got, "written in")
}

func TestBuildWithLanguageHint(t *testing.T) {
	got := prompt.Build(&prompt.Options{LanguageHint: "Japanese"})

	require.Contains(t, got, prompt.Build(nil))
	require.Contains(t, got, "written in Japanese")
}
