package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubcommandsRegistered(t *testing.T) {
	t.Parallel()

	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"sync", "prune", "history", "config", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootRejectsPositionalArgs(t *testing.T) {
	t.Parallel()

	err := rootCmd.Args(rootCmd, []string{"unexpected"})
	require.Error(t, err)
}

func TestMaskToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(unset)", maskToken(""))
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "se****et", maskToken("secrXXet"))
}
