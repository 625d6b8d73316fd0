package vkframe

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// Renderer owns the window, the Vulkan objects behind it and the frame loop.
// Create one with New, drive it with Run and release it with Close. A
// Renderer is not safe for concurrent use; everything runs on the thread that
// calls Run.
type Renderer struct {
	settings       Settings
	app            App
	pipelineConfig PipelineConfig

	window *sdl.Window

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver
	deviceDriver   core1_0.CoreDeviceDriver

	validation     bool
	debugDriver    ext_debug_utils.ExtensionDriver
	debugMessenger ext_debug_utils.DebugUtilsMessenger

	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	adapter        AdapterInfo
	queue          core1_0.Queue

	swapchainExtension    khr_swapchain.ExtensionDriver
	swapchain             khr_swapchain.Swapchain
	swapchainImages       []core1_0.Image
	swapchainImageFormat  core1_0.Format
	swapchainExtent       core1_0.Extent2D
	swapchainImageViews   []core1_0.ImageView
	swapchainFramebuffers []core1_0.Framebuffer
	generation            uint64

	renderPass core1_0.RenderPass
	pipeline   core1_0.Pipeline
	drawable   Drawable

	commandPool    core1_0.CommandPool
	commandBuffers []core1_0.CommandBuffer

	imageAvailable core1_0.Semaphore
	renderFinished []core1_0.Semaphore
	inFlightFence  core1_0.Fence
	armed          bool

	rendering    bool
	resizeNeeded bool
	frame        uint64
	loopStart    time.Duration
	lastFrame    time.Duration

	closed bool
}

// New opens a window and brings up the full rendering stack behind it: the
// instance, a ranked-and-selected device, the swapchain and the pipeline
// described by config. On failure everything already created is released
// before returning.
func New(settings Settings, app App, config PipelineConfig) (*Renderer, error) {
	if app == nil {
		return nil, errors.New("nil App")
	}
	if config == nil {
		return nil, errors.New("nil PipelineConfig")
	}

	r := &Renderer{
		settings:       settings.withDefaults(),
		app:            app,
		pipelineConfig: config,
		rendering:      true,
	}

	if err := r.bringUp(); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func (r *Renderer) bringUp() error {
	err := r.initWindow()
	if err != nil {
		return err
	}

	err = r.createInstance()
	if err != nil {
		return err
	}

	err = r.setupDebugMessenger()
	if err != nil {
		return err
	}

	err = r.createSurface()
	if err != nil {
		return err
	}

	err = r.pickPhysicalDevice()
	if err != nil {
		return err
	}

	err = r.createLogicalDevice()
	if err != nil {
		return err
	}

	err = r.createCommandPool()
	if err != nil {
		return err
	}

	err = r.createSwapchain()
	if err != nil {
		return err
	}

	err = r.createRenderPass()
	if err != nil {
		return err
	}

	err = r.createRenderTargets()
	if err != nil {
		return err
	}

	err = r.createGraphicsPipeline()
	if err != nil {
		return err
	}

	return r.createSyncObjects()
}

func (r *Renderer) createCommandPool() error {
	// Command buffers are re-recorded every frame, so the pool must allow
	// implicit resets.
	pool, _, err := r.deviceDriver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: r.adapter.QueueFamily,
	})
	if err != nil {
		return errors.Wrap(err, "creating command pool")
	}

	r.commandPool = pool
	return nil
}

// Run drives the event and frame loop until the window is closed, then waits
// for the device to go idle. Call it from the main goroutine with
// runtime.LockOSThread in effect, and Close the renderer afterwards. Frames
// are skipped while the window is minimized.
func (r *Renderer) Run() error {
	r.loopStart = hrtime.Now()
	r.lastFrame = r.loopStart

appLoop:
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				break appLoop
			case *sdl.WindowEvent:
				switch e.Event {
				case sdl.WINDOWEVENT_MINIMIZED:
					r.rendering = false
				case sdl.WINDOWEVENT_RESTORED:
					r.rendering = true
				case sdl.WINDOWEVENT_RESIZED:
					w, h := r.window.GetSize()
					r.resizeNeeded = true
					r.rendering = w > 0 && h > 0
				}
			}
		}

		if r.rendering {
			if err := r.drawFrame(); err != nil {
				return err
			}
		}
	}

	_, err := r.deviceDriver.DeviceWaitIdle()
	return errors.Wrap(err, "waiting for device after main loop")
}

// Device exposes the logical device driver so applications can create their
// own Vulkan objects. It stays valid until Close.
func (r *Renderer) Device() core1_0.CoreDeviceDriver {
	return r.deviceDriver
}

// Adapter describes the physical device the renderer selected.
func (r *Renderer) Adapter() AdapterInfo {
	return r.adapter
}
