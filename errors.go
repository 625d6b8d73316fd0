package vkframe

import "github.com/cockroachdb/errors"

// Sentinel errors reported by the renderer. Match with errors.Is.
var (
	// ErrNoCompatibleDevice means no physical device passed both the
	// extension and queue-family checks against the window surface.
	ErrNoCompatibleDevice = errors.New("no compatible physical device")

	// ErrUnsupportedDimensions means the surface cannot be presented to
	// right now, usually because the window has zero area. The condition is
	// transient; the loop keeps its rebuild flag set and retries on a later
	// frame.
	ErrUnsupportedDimensions = errors.New("surface has unsupported dimensions")
)
