package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner_PlainWriter(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v0.3.0\n")

	out := buf.String()
	assert.Contains(t, out, "v0.3.0")
	assert.Contains(t, out, "|_|")
	// A buffer is not a terminal, so no escape sequences.
	assert.NotContains(t, out, "\x1b[")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(40)
	out, err := render("Hello **traveller**")
	require.NoError(t, err)
	assert.Contains(t, out, "traveller")
}
