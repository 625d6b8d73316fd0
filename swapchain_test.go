package vkframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

func TestChooseSurfaceFormat(t *testing.T) {
	first := khr_surface.SurfaceFormat{
		Format:     core1_0.FormatB8G8R8A8SRGB,
		ColorSpace: khr_surface.ColorSpaceSRGBNonlinear,
	}
	second := khr_surface.SurfaceFormat{
		Format:     core1_0.FormatR8G8B8A8SRGB,
		ColorSpace: khr_surface.ColorSpaceSRGBNonlinear,
	}

	// The driver's first preference wins, whatever it is.
	assert.Equal(t, first, chooseSurfaceFormat([]khr_surface.SurfaceFormat{first, second}))
	assert.Equal(t, second, chooseSurfaceFormat([]khr_surface.SurfaceFormat{second, first}))
}

func TestChoosePresentMode(t *testing.T) {
	assert.Equal(t, khr_surface.PresentModeFIFO, choosePresentMode([]khr_surface.PresentMode{
		khr_surface.PresentModeImmediate,
		khr_surface.PresentModeMailbox,
		khr_surface.PresentModeFIFO,
	}))

	// Without FIFO the next non-tearing mode wins.
	assert.Equal(t, khr_surface.PresentModeMailbox, choosePresentMode([]khr_surface.PresentMode{
		khr_surface.PresentModeImmediate,
		khr_surface.PresentModeMailbox,
	}))

	assert.Equal(t, khr_surface.PresentModeImmediate, choosePresentMode([]khr_surface.PresentMode{
		khr_surface.PresentModeImmediate,
	}))

	// A surface reporting only modes outside the priority list falls back to
	// its first entry.
	exotic := khr_surface.PresentMode(1000)
	assert.Equal(t, exotic, choosePresentMode([]khr_surface.PresentMode{exotic}))
}

func TestResolveImageCount(t *testing.T) {
	assert.Equal(t, 3, resolveImageCount(&khr_surface.SurfaceCapabilities{
		MinImageCount: 2,
		MaxImageCount: 0,
	}))

	assert.Equal(t, 3, resolveImageCount(&khr_surface.SurfaceCapabilities{
		MinImageCount: 2,
		MaxImageCount: 3,
	}))

	// Min+1 past the maximum gets clamped back down.
	assert.Equal(t, 3, resolveImageCount(&khr_surface.SurfaceCapabilities{
		MinImageCount: 3,
		MaxImageCount: 3,
	}))

	assert.Equal(t, 2, resolveImageCount(&khr_surface.SurfaceCapabilities{
		MinImageCount: 2,
		MaxImageCount: 2,
	}))
}

func TestResolveExtentUsesSurfaceExtent(t *testing.T) {
	capabilities := &khr_surface.SurfaceCapabilities{
		CurrentExtent: core1_0.Extent2D{Width: 800, Height: 600},
	}

	extent, err := resolveExtent(capabilities, 123, 456)
	require.NoError(t, err)
	assert.Equal(t, core1_0.Extent2D{Width: 800, Height: 600}, extent)
}

func TestResolveExtentFromDrawableSize(t *testing.T) {
	capabilities := &khr_surface.SurfaceCapabilities{
		CurrentExtent:  core1_0.Extent2D{Width: -1, Height: -1},
		MinImageExtent: core1_0.Extent2D{Width: 200, Height: 200},
		MaxImageExtent: core1_0.Extent2D{Width: 1600, Height: 1200},
	}

	extent, err := resolveExtent(capabilities, 700, 500)
	require.NoError(t, err)
	assert.Equal(t, core1_0.Extent2D{Width: 700, Height: 500}, extent)

	extent, err = resolveExtent(capabilities, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, core1_0.Extent2D{Width: 200, Height: 200}, extent)

	extent, err = resolveExtent(capabilities, 2000, 2000)
	require.NoError(t, err)
	assert.Equal(t, core1_0.Extent2D{Width: 1600, Height: 1200}, extent)
}

func TestResolveExtentRejectsZeroArea(t *testing.T) {
	// A minimized window reports a zero-area extent that cannot be
	// presented to.
	_, err := resolveExtent(&khr_surface.SurfaceCapabilities{
		CurrentExtent: core1_0.Extent2D{Width: 0, Height: 600},
	}, 0, 600)
	assert.ErrorIs(t, err, ErrUnsupportedDimensions)

	_, err = resolveExtent(&khr_surface.SurfaceCapabilities{
		CurrentExtent: core1_0.Extent2D{Width: -1, Height: -1},
	}, 0, 0)
	assert.ErrorIs(t, err, ErrUnsupportedDimensions)
}
