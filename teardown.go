package vkframe

import (
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

type teardownStep struct {
	name string
	run  func()
}

// teardownSteps returns the shutdown sequence in dependency order: work
// drains first, then objects scoped to the swapchain, then the chain itself,
// then the surface and device, and the instance last. Every step guards its
// own handles, so the sequence is safe after a partial startup.
func (r *Renderer) teardownSteps() []teardownStep {
	return []teardownStep{
		{"device-wait", func() {
			if r.deviceDriver != nil {
				if _, err := r.deviceDriver.DeviceWaitIdle(); err != nil {
					Logger().Warn("device wait during shutdown failed", "error", err)
				}
			}
		}},
		{"render-targets", func() {
			r.destroyRenderTargets()
		}},
		{"pipeline-config", func() {
			if r.pipelineConfig != nil {
				r.pipelineConfig.Destroy()
			}
		}},
		{"presentation-chain", func() {
			r.destroySwapchain()
		}},
		{"render-pass", func() {
			if r.renderPass.Initialized() {
				r.deviceDriver.DestroyRenderPass(r.renderPass, nil)
				r.renderPass = core1_0.RenderPass{}
			}
		}},
		{"drawable", func() {
			if r.drawable.Buffer.Initialized() {
				r.deviceDriver.DestroyBuffer(r.drawable.Buffer, nil)
			}
			if r.drawable.Memory.Initialized() {
				r.deviceDriver.FreeMemory(r.drawable.Memory, nil)
			}
			r.drawable = Drawable{}
		}},
		{"frame-sync", func() {
			if r.inFlightFence.Initialized() {
				r.deviceDriver.DestroyFence(r.inFlightFence, nil)
				r.inFlightFence = core1_0.Fence{}
			}
			if r.imageAvailable.Initialized() {
				r.deviceDriver.DestroySemaphore(r.imageAvailable, nil)
				r.imageAvailable = core1_0.Semaphore{}
			}
		}},
		{"command-pool", func() {
			if r.commandPool.Initialized() {
				r.deviceDriver.DestroyCommandPool(r.commandPool, nil)
				r.commandPool = core1_0.CommandPool{}
			}
		}},
		{"surface", func() {
			if r.surface.Initialized() {
				r.surfaceExtension.DestroySurface(r.surface, nil)
				r.surface = khr_surface.Surface{}
			}
		}},
		{"device", func() {
			if r.deviceDriver != nil {
				r.deviceDriver.DestroyDevice(nil)
				r.deviceDriver = nil
			}
		}},
		{"debug-messenger", func() {
			if r.debugMessenger.Initialized() {
				r.debugDriver.DestroyDebugUtilsMessenger(r.debugMessenger, nil)
				r.debugMessenger = ext_debug_utils.DebugUtilsMessenger{}
			}
		}},
		{"instance", func() {
			if r.instanceDriver != nil {
				r.instanceDriver.DestroyInstance(nil)
				r.instanceDriver = nil
			}
		}},
		{"window", func() {
			if r.window != nil {
				r.window.Destroy()
				r.window = nil
			}
			sdl.Quit()
		}},
	}
}

// Close releases everything the renderer owns. It is safe to call on a
// partially constructed renderer and after a previous Close.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true

	Logger().Info("shutting down")

	for _, step := range r.teardownSteps() {
		Logger().Debug("teardown step", "name", step.name)
		step.run()
	}
}
