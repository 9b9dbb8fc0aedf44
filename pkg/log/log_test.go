package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		name        string
		lvl         string
		parsedLevel slog.Level
		hasErr      bool
	}{
		{name: "Empty", lvl: "", hasErr: true},
		{name: "Mixed case", lvl: "Warn", parsedLevel: WarnLevel},
		{name: "Debug", lvl: "debug", parsedLevel: DebugLevel},
		{name: "Info", lvl: "info", parsedLevel: InfoLevel},
		{name: "Error", lvl: "error", parsedLevel: ErrorLevel},
		{name: "Off", lvl: "off", parsedLevel: OffLevel},
		{name: "Unsupported", lvl: "trace", hasErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l, err := ParseLevel(tc.lvl)

			assert.Equal(t, tc.parsedLevel, l)
			if tc.hasErr {
				assert.ErrorContains(t, err, "unrecognized level: ")
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}

	logger, err := New("warn", buf)
	assert.Nil(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "key", "fetchUsers")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "key=fetchUsers")

	_, err = New("nope", buf)
	assert.NotNil(t, err)
}
