package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		_ = SetLevel("info")
	})

	require.NoError(t, SetLevel("warn"))
	Info("hidden")
	assert.Empty(t, buf.String())

	Warn("visible", "atlas", "256x256")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "256x256")
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, SetLevel("loud"))
}
