// Package vkframe drives a windowed Vulkan presentation loop: it selects a
// physical device, negotiates a swapchain against the window surface, paces
// one frame in flight, and tears the whole stack down in dependency order.
// The caller supplies the graphics pipeline and vertex data through
// PipelineConfig and Drawable; vkframe owns every other Vulkan object.
//
// By default vkframe logs nothing. Call SetLogger to receive lifecycle
// events, selection diagnostics and validation layer output.
package vkframe

import (
	"github.com/vkngwrapper/core/v3/core1_0"
)

// App receives a callback once per rendered frame while the frame's commands
// are being recorded. Draw runs inside the active render pass, after the
// drawable has been drawn, so any commands recorded against ctx.CommandBuffer
// become part of the frame.
type App interface {
	Draw(ctx *DrawContext)
}

// DrawContext carries the per-frame recording state handed to App.Draw.
type DrawContext struct {
	// Device is the logical device driver used to record into CommandBuffer,
	// which is inside an active render pass covering the full presentation
	// extent.
	Device        core1_0.CoreDeviceDriver
	CommandBuffer core1_0.CommandBuffer

	// Extent is the current swapchain extent in pixels.
	Extent core1_0.Extent2D

	// Frame counts rendered frames from zero. Generation increments every
	// time the swapchain is rebuilt.
	Frame      uint64
	Generation uint64

	// Elapsed is seconds since the loop started. Delta is seconds since the
	// previous frame began recording.
	Elapsed float64
	Delta   float64
}
