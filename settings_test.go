package vkframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "", s.Title)
	assert.Equal(t, 500, s.Width)
	assert.Equal(t, 500, s.Height)
}

func TestSettingsWithDefaults(t *testing.T) {
	s := Settings{}.withDefaults()
	assert.Equal(t, 500, s.Width)
	assert.Equal(t, 500, s.Height)

	s = Settings{Width: -10, Height: 300}.withDefaults()
	assert.Equal(t, 500, s.Width)
	assert.Equal(t, 300, s.Height)

	s = Settings{Title: "demo", Width: 800, Height: 600}.withDefaults()
	assert.Equal(t, "demo", s.Title)
	assert.Equal(t, 800, s.Width)
	assert.Equal(t, 600, s.Height)
}
