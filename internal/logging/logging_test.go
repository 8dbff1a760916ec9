package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})

	SetLevel(LevelWarn)
	Debugf("noisy %d", 1)
	Infof("routine")
	Warnf("degraded")
	Errorf("broken")

	out := buf.String()
	assert.NotContains(t, out, "noisy")
	assert.NotContains(t, out, "routine")
	assert.Contains(t, out, "WARN degraded")
	assert.Contains(t, out, "ERROR broken")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("Warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
