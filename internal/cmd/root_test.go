package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	stdout, _, err := execute(t, "", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "fsearch")
	assert.Contains(t, stdout, "search")
	assert.Contains(t, stdout, "cache")
	assert.Contains(t, stdout, "config")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "fsearch", cmd.Use)

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"search", "cache", "config"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootCommandVersion(t *testing.T) {
	old := Version
	Version = "1.2.3"
	defer func() { Version = old }()

	stdout, _, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1.2.3")
}
