package vkframe

const defaultWindowSize = 500

// Settings configures the window the renderer opens. The zero value is
// usable: an untitled 500x500 resizable window.
type Settings struct {
	// Title is the window title. Defaults to the empty string.
	Title string

	// Width and Height are the initial window dimensions. Values of zero or
	// below fall back to 500.
	Width  int
	Height int
}

// DefaultSettings returns the settings the renderer uses when the caller has
// no overrides.
func DefaultSettings() Settings {
	return Settings{Width: defaultWindowSize, Height: defaultWindowSize}
}

func (s Settings) withDefaults() Settings {
	if s.Width <= 0 {
		s.Width = defaultWindowSize
	}
	if s.Height <= 0 {
		s.Height = defaultWindowSize
	}
	return s
}
