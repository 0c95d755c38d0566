package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetPortPrefixesColonOnce(t *testing.T) {
	t.Setenv("PORT", "4000")
	require.Equal(t, ":4000", EnvVars{}.GetPort())

	t.Setenv("PORT", ":5000")
	require.Equal(t, ":5000", EnvVars{}.GetPort(), "an already-prefixed port is kept as is")
}

func TestGetPortDefault(t *testing.T) {
	t.Setenv("PORT", "")
	require.Equal(t, ":3000", EnvVars{}.GetPort())
}
