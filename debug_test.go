package vkframe

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
)

func TestSeverityLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, severityLevel(ext_debug_utils.SeverityError))
	assert.Equal(t, slog.LevelWarn, severityLevel(ext_debug_utils.SeverityWarning))
	assert.Equal(t, slog.LevelInfo, severityLevel(ext_debug_utils.SeverityInfo))
	assert.Equal(t, slog.LevelDebug, severityLevel(ext_debug_utils.SeverityVerbose))

	// The highest severity bit decides when several are set.
	assert.Equal(t, slog.LevelError,
		severityLevel(ext_debug_utils.SeverityError|ext_debug_utils.SeverityWarning))
	assert.Equal(t, slog.LevelWarn,
		severityLevel(ext_debug_utils.SeverityWarning|ext_debug_utils.SeverityVerbose))
}
