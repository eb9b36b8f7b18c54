package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/quickbuildgo/internal/cli"
)

func TestRunHelpExitsCleanly(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-h"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRunRejectsUnknownFlags(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-definitely-not-a-flag"})
	require.Error(t, err)
	exitErr, ok := err.(*cli.ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
}
