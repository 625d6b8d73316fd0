package vkframe

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// SwapchainConfig is the resolved negotiation between surface capabilities,
// window size and presentation policy. It fully determines a swapchain.
type SwapchainConfig struct {
	Format      khr_surface.SurfaceFormat
	PresentMode khr_surface.PresentMode
	ImageCount  int
	Extent      core1_0.Extent2D
	Transform   khr_surface.SurfaceTransformFlags
}

type swapchainSupport struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

func (r *Renderer) querySwapchainSupport(device core1_0.PhysicalDevice) (swapchainSupport, error) {
	var support swapchainSupport
	var err error

	support.Capabilities, _, err = r.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(r.surface, device)
	if err != nil {
		return support, errors.Wrap(err, "querying surface capabilities")
	}

	support.Formats, _, err = r.surfaceExtension.GetPhysicalDeviceSurfaceFormats(r.surface, device)
	if err != nil {
		return support, errors.Wrap(err, "querying surface formats")
	}

	support.PresentModes, _, err = r.surfaceExtension.GetPhysicalDeviceSurfacePresentModes(r.surface, device)
	if err != nil {
		return support, errors.Wrap(err, "querying surface present modes")
	}

	return support, nil
}

// chooseSurfaceFormat takes the first reported format. Drivers order the list
// by their own preference and the first entry is stable for a given surface,
// so the render pass created against it never goes stale across rebuilds.
func chooseSurfaceFormat(formats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	return formats[0]
}

// presentModePriority prefers modes that cannot tear, cheapest first. FIFO is
// the only mode the standard guarantees, so in practice the first entry wins.
var presentModePriority = []khr_surface.PresentMode{
	khr_surface.PresentModeFIFO,
	khr_surface.PresentModeMailbox,
	khr_surface.PresentModeFIFORelaxed,
	khr_surface.PresentModeImmediate,
}

func choosePresentMode(modes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, want := range presentModePriority {
		for _, mode := range modes {
			if mode == want {
				return want
			}
		}
	}

	return modes[0]
}

// resolveImageCount requests one image more than the minimum so the loop is
// not forced to wait on the driver, clamped to the maximum when the surface
// reports one (zero means unlimited).
func resolveImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	count := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && count > capabilities.MaxImageCount {
		count = capabilities.MaxImageCount
	}
	return count
}

// resolveExtent returns the pixel size of the chain. Surfaces that defer to
// the window report -1 for both dimensions; in that case the drawable size is
// clamped into the supported range. Everything else uses the surface's extent
// verbatim. A zero-area result cannot be presented to and is reported as
// ErrUnsupportedDimensions.
func resolveExtent(capabilities *khr_surface.SurfaceCapabilities, drawableWidth, drawableHeight int) (core1_0.Extent2D, error) {
	extent := capabilities.CurrentExtent

	if extent.Width == -1 && extent.Height == -1 {
		extent = core1_0.Extent2D{Width: drawableWidth, Height: drawableHeight}

		if extent.Width < capabilities.MinImageExtent.Width {
			extent.Width = capabilities.MinImageExtent.Width
		}
		if extent.Width > capabilities.MaxImageExtent.Width {
			extent.Width = capabilities.MaxImageExtent.Width
		}
		if extent.Height < capabilities.MinImageExtent.Height {
			extent.Height = capabilities.MinImageExtent.Height
		}
		if extent.Height > capabilities.MaxImageExtent.Height {
			extent.Height = capabilities.MaxImageExtent.Height
		}
	}

	if extent.Width <= 0 || extent.Height <= 0 {
		return core1_0.Extent2D{}, errors.Wrapf(ErrUnsupportedDimensions, "surface extent %dx%d", extent.Width, extent.Height)
	}

	return extent, nil
}

func (r *Renderer) negotiateSwapchainConfig() (SwapchainConfig, error) {
	support, err := r.querySwapchainSupport(r.physicalDevice)
	if err != nil {
		return SwapchainConfig{}, err
	}

	drawableWidth, drawableHeight := r.window.VulkanGetDrawableSize()
	extent, err := resolveExtent(support.Capabilities, int(drawableWidth), int(drawableHeight))
	if err != nil {
		return SwapchainConfig{}, err
	}

	return SwapchainConfig{
		Format:      chooseSurfaceFormat(support.Formats),
		PresentMode: choosePresentMode(support.PresentModes),
		ImageCount:  resolveImageCount(support.Capabilities),
		Extent:      extent,
		Transform:   support.Capabilities.CurrentTransform,
	}, nil
}

func (r *Renderer) createSwapchain() error {
	r.swapchainExtension = khr_swapchain.CreateExtensionDriverFromCoreDriver(r.deviceDriver)

	config, err := r.negotiateSwapchainConfig()
	if err != nil {
		return err
	}

	return r.createSwapchainFromConfig(config)
}

func (r *Renderer) createSwapchainFromConfig(config SwapchainConfig) error {
	// A single queue family renders and presents, so the images never need
	// concurrent sharing.
	swapchain, _, err := r.swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: r.surface,

		MinImageCount:    config.ImageCount,
		ImageFormat:      config.Format.Format,
		ImageColorSpace:  config.Format.ColorSpace,
		ImageExtent:      config.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode: core1_0.SharingModeExclusive,

		PreTransform:   config.Transform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    config.PresentMode,
		Clipped:        true,
	})
	if err != nil {
		return errors.Wrap(err, "creating swapchain")
	}

	r.swapchain = swapchain
	r.swapchainImageFormat = config.Format.Format
	r.swapchainExtent = config.Extent
	r.generation++

	Logger().Info("swapchain created",
		"format", config.Format.Format,
		"presentMode", config.PresentMode,
		"imageCount", config.ImageCount,
		"extent", config.Extent,
		"generation", r.generation)

	return nil
}

// createRenderTargets builds everything scoped to the current swapchain: one
// image view, framebuffer, command buffer and render-finished semaphore per
// image. The semaphores live here because the image count can change across
// rebuilds.
func (r *Renderer) createRenderTargets() error {
	images, _, err := r.swapchainExtension.GetSwapchainImages(r.swapchain)
	if err != nil {
		return errors.Wrap(err, "querying swapchain images")
	}
	r.swapchainImages = images

	for _, image := range r.swapchainImages {
		view, _, err := r.deviceDriver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   r.swapchainImageFormat,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return errors.Wrap(err, "creating swapchain image view")
		}

		r.swapchainImageViews = append(r.swapchainImageViews, view)
	}

	for _, view := range r.swapchainImageViews {
		framebuffer, _, err := r.deviceDriver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass:  r.renderPass,
			Layers:      1,
			Attachments: []core1_0.ImageView{view},
			Width:       r.swapchainExtent.Width,
			Height:      r.swapchainExtent.Height,
		})
		if err != nil {
			return errors.Wrap(err, "creating framebuffer")
		}

		r.swapchainFramebuffers = append(r.swapchainFramebuffers, framebuffer)
	}

	buffers, _, err := r.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        r.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: len(r.swapchainImages),
	})
	if err != nil {
		return errors.Wrap(err, "allocating command buffers")
	}
	r.commandBuffers = buffers

	for range r.swapchainImages {
		semaphore, _, err := r.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return errors.Wrap(err, "creating render-finished semaphore")
		}

		r.renderFinished = append(r.renderFinished, semaphore)
	}

	return nil
}

func (r *Renderer) destroyRenderTargets() {
	if r.pipeline.Initialized() {
		r.deviceDriver.DestroyPipeline(r.pipeline, nil)
		r.pipeline = core1_0.Pipeline{}
	}

	for _, semaphore := range r.renderFinished {
		r.deviceDriver.DestroySemaphore(semaphore, nil)
	}
	r.renderFinished = nil

	if len(r.commandBuffers) > 0 {
		r.deviceDriver.FreeCommandBuffers(r.commandBuffers...)
		r.commandBuffers = nil
	}

	for _, framebuffer := range r.swapchainFramebuffers {
		r.deviceDriver.DestroyFramebuffer(framebuffer, nil)
	}
	r.swapchainFramebuffers = nil

	for _, view := range r.swapchainImageViews {
		r.deviceDriver.DestroyImageView(view, nil)
	}
	r.swapchainImageViews = nil
	r.swapchainImages = nil
}

func (r *Renderer) destroySwapchain() {
	if r.swapchain.Initialized() {
		r.swapchainExtension.DestroySwapchain(r.swapchain, nil)
		r.swapchain = khr_swapchain.Swapchain{}
	}
}

// recreateSwapchain rebuilds the chain and everything scoped to it after the
// window changed. The new configuration is negotiated before anything is torn
// down, so a transient zero-area window leaves the old chain intact and the
// caller's rebuild flag set.
func (r *Renderer) recreateSwapchain() error {
	config, err := r.negotiateSwapchainConfig()
	if err != nil {
		return err
	}

	if _, err := r.deviceDriver.DeviceWaitIdle(); err != nil {
		return errors.Wrap(err, "waiting for device before swapchain rebuild")
	}

	r.destroyRenderTargets()
	r.destroySwapchain()

	if err := r.createSwapchainFromConfig(config); err != nil {
		return err
	}
	if err := r.createRenderTargets(); err != nil {
		return err
	}

	// The pipeline bakes in the old extent; rebuild it from the caller's
	// description against the new one.
	return r.createGraphicsPipeline()
}
