package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealercraft/sbmigrate"
)

func TestPromptResolver(t *testing.T) {
	in := strings.NewReader("partials/map-canvas.php\n")
	var out bytes.Buffer

	resolver := promptResolver(in, &out)
	path, ok := resolver(sbmigrate.Theme{Root: "themes/smithtown-ford"}, "partials/map.php", []string{"a.php", "b.php"})

	require.True(t, ok)
	assert.Equal(t, "partials/map-canvas.php", path)
	assert.Contains(t, out.String(), "partials/map.php")
	assert.Contains(t, out.String(), "candidate: a.php")
}

func TestPromptResolverSkipsOnEmptyAnswer(t *testing.T) {
	resolver := promptResolver(strings.NewReader("\n"), &bytes.Buffer{})

	_, ok := resolver(sbmigrate.Theme{}, "partials/map.php", nil)
	require.False(t, ok)
}

func TestPromptResolverSkipsOnEOF(t *testing.T) {
	resolver := promptResolver(strings.NewReader(""), &bytes.Buffer{})

	_, ok := resolver(sbmigrate.Theme{}, "partials/map.php", nil)
	require.False(t, ok)
}

func TestCountWarnings(t *testing.T) {
	res := sbmigrate.BatchResult{
		Files: []sbmigrate.TransformationResult{
			{Warnings: []string{"a", "b"}},
			{},
			{Warnings: []string{"c"}},
		},
	}
	assert.Equal(t, 3, countWarnings(res))
}
