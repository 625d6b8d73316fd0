package vkframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepIndex(t *testing.T, steps []teardownStep, name string) int {
	t.Helper()
	for i, step := range steps {
		if step.name == name {
			return i
		}
	}
	t.Fatalf("teardown has no step named %q", name)
	return -1
}

func TestTeardownStepOrder(t *testing.T) {
	r := &Renderer{}
	steps := r.teardownSteps()
	require.NotEmpty(t, steps)

	// The queue drains before anything is destroyed, and the window outlives
	// every Vulkan object.
	assert.Equal(t, "device-wait", steps[0].name)
	assert.Equal(t, "window", steps[len(steps)-1].name)

	targets := stepIndex(t, steps, "render-targets")
	chain := stepIndex(t, steps, "presentation-chain")
	surface := stepIndex(t, steps, "surface")
	device := stepIndex(t, steps, "device")
	messenger := stepIndex(t, steps, "debug-messenger")
	instance := stepIndex(t, steps, "instance")

	assert.Less(t, targets, chain)
	assert.Less(t, chain, surface)
	assert.Less(t, surface, device)
	assert.Less(t, device, messenger)
	assert.Less(t, messenger, instance)
}

func TestTeardownScopedResourceOrder(t *testing.T) {
	r := &Renderer{}
	steps := r.teardownSteps()

	chain := stepIndex(t, steps, "presentation-chain")
	renderPass := stepIndex(t, steps, "render-pass")
	drawable := stepIndex(t, steps, "drawable")
	frameSync := stepIndex(t, steps, "frame-sync")
	commandPool := stepIndex(t, steps, "command-pool")
	device := stepIndex(t, steps, "device")

	// Device-scoped objects all go before the device itself.
	for name, index := range map[string]int{
		"render-pass":  renderPass,
		"drawable":     drawable,
		"frame-sync":   frameSync,
		"command-pool": commandPool,
	} {
		assert.Less(t, chain, index, "presentation-chain should precede %s", name)
		assert.Less(t, index, device, "%s should precede device", name)
	}
}

func TestCloseIsIdempotentOnEmptyRenderer(t *testing.T) {
	// Close on a renderer that never got past construction must not touch
	// any driver, and a second Close must be a no-op.
	r := &Renderer{}
	r.Close()
	assert.True(t, r.closed)
	r.Close()
}
