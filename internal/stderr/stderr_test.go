//go:build !windows

package stderr

import (
	"fmt"
	"os"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture_LogsDriverLines(t *testing.T) {
	logger, hook := test.NewNullLogger()

	stop, err := Capture(logger)
	require.NoError(t, err)
	fmt.Fprintln(os.Stderr, "ALSA lib pcm.c:8526: underrun occurred")
	fmt.Fprintln(os.Stderr, "   ")
	stop()

	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "ALSA lib pcm.c:8526: underrun occurred", entries[0].Message)
	assert.Equal(t, "stderr", entries[0].Data["source"])
}

func TestCapture_StopRestoresStderr(t *testing.T) {
	logger, hook := test.NewNullLogger()

	stop, err := Capture(logger)
	require.NoError(t, err)
	stop()

	_, err = fmt.Fprint(os.Stderr, "")
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())
}
