package debug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWritesCategoryToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	require.NoError(t, Enable(path))
	t.Cleanup(Disable)

	assert.True(t, Enabled())
	Log("clock", "tick %d of %d", 3, 8)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Debug logging started")
	assert.Contains(t, string(data), `msg="tick 3 of 8"`)
	assert.Contains(t, string(data), "cat=clock")
}

func TestLogIsSilentWhenDisabled(t *testing.T) {
	Disable()
	assert.False(t, Enabled())
	assert.NotPanics(t, func() {
		Log("capture", "nothing %s", "here")
		LogEvery(1, "capture", "nothing")
	})
}

func TestLogEverySamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, Enable(path))
	t.Cleanup(Disable)

	for i := 0; i < 6; i++ {
		LogEvery(3, "sample", "burst")
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "count=3")
	assert.Contains(t, string(data), "count=6")
	assert.NotContains(t, string(data), "count=4")
}
