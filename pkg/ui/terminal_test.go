package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetQuietMode(false)
	})
	return &buf
}

func TestNoColourOffTerminal(t *testing.T) {
	buf := captureOutput(t)

	PrintInfo("Query", "kitchen")
	assert.Equal(t, "Query: kitchen\n", buf.String())
	assert.NotContains(t, buf.String(), "\033[")
}

func TestQuietModeKeepsErrors(t *testing.T) {
	buf := captureOutput(t)
	SetQuietMode(true)
	assert.True(t, IsQuietMode())

	PrintBanner()
	PrintSuccess("done")
	PrintWarning("careful")
	PrintHighlight("look")
	PrintError("query failed", "boom")

	assert.Equal(t, "query failed: boom\n", buf.String())
}

func TestPrintWarningWithArgs(t *testing.T) {
	buf := captureOutput(t)

	PrintWarning("TLS verification disabled")
	PrintWarning("skipped", 3)
	assert.Equal(t, "TLS verification disabled\nskipped: 3\n", buf.String())
}
