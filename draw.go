package vkframe

import (
	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

var clearColor = core1_0.ClearValueFloat{0, 0, 1, 1}

type frameResult int

const (
	// frameOK presented normally.
	frameOK frameResult = iota
	// frameDegraded presented, but the chain no longer matches the surface
	// exactly and should be rebuilt before the next frame.
	frameDegraded
	// frameStale could not use the chain at all; rebuild and retry.
	frameStale
	// frameFailed hit an error unrelated to the chain.
	frameFailed
)

// classifyAcquire folds AcquireNextImage's result code and error into what the
// frame loop should do. Out-of-date surfaces arrive as both a code and an
// error, so the code is checked first.
func classifyAcquire(res common.VkResult, err error) frameResult {
	if res == khr_swapchain.VKErrorOutOfDate {
		return frameStale
	}
	if err != nil {
		return frameFailed
	}
	if res == khr_swapchain.VKSuboptimal {
		return frameDegraded
	}
	return frameOK
}

// classifyPresent is classifyAcquire for QueuePresent. A stale present still
// consumed its wait semaphore, so unlike a stale acquire the frame counts as
// submitted.
func classifyPresent(res common.VkResult, err error) frameResult {
	if res == khr_swapchain.VKErrorOutOfDate {
		return frameStale
	}
	if res == khr_swapchain.VKSuboptimal {
		return frameDegraded
	}
	if err != nil {
		return frameFailed
	}
	return frameOK
}

func (r *Renderer) createSyncObjects() error {
	semaphore, _, err := r.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return errors.Wrap(err, "creating image-available semaphore")
	}
	r.imageAvailable = semaphore

	// The fence starts unsignaled and unarmed. armed tracks whether a submit
	// is actually pending on it; waiting on an unarmed fence would deadlock
	// the first frame.
	fence, _, err := r.deviceDriver.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err != nil {
		return errors.Wrap(err, "creating in-flight fence")
	}
	r.inFlightFence = fence

	return nil
}

func (r *Renderer) drawFrame() error {
	if r.armed {
		if _, err := r.deviceDriver.WaitForFences(true, common.NoTimeout, r.inFlightFence); err != nil {
			return errors.Wrap(err, "waiting for previous frame")
		}
		r.armed = false
	}

	if r.resizeNeeded {
		err := r.recreateSwapchain()
		if errors.Is(err, ErrUnsupportedDimensions) {
			// Transient zero-area window. Keep the flag and try again once
			// the surface reports a usable size.
			Logger().Debug("deferring swapchain rebuild", "reason", err)
			return nil
		}
		if err != nil {
			return err
		}
		r.resizeNeeded = false
	}

	imageIndex, res, err := r.swapchainExtension.AcquireNextImage(r.swapchain, common.NoTimeout, &r.imageAvailable, nil)
	switch classifyAcquire(res, err) {
	case frameStale:
		r.resizeNeeded = true
		return nil
	case frameDegraded:
		r.resizeNeeded = true
	case frameFailed:
		return errors.Wrap(err, "acquiring swapchain image")
	}

	if _, err := r.deviceDriver.ResetFences(r.inFlightFence); err != nil {
		return errors.Wrap(err, "resetting in-flight fence")
	}

	now := hrtime.Now()
	ctx := DrawContext{
		Device:     r.deviceDriver,
		Extent:     r.swapchainExtent,
		Frame:      r.frame,
		Generation: r.generation,
		Elapsed:    (now - r.loopStart).Seconds(),
		Delta:      (now - r.lastFrame).Seconds(),
	}
	r.lastFrame = now

	if err := r.recordCommands(imageIndex, &ctx); err != nil {
		return err
	}

	_, err = r.deviceDriver.QueueSubmit(r.queue, &r.inFlightFence,
		core1_0.SubmitInfo{
			WaitSemaphores:   []core1_0.Semaphore{r.imageAvailable},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{r.commandBuffers[imageIndex]},
			SignalSemaphores: []core1_0.Semaphore{r.renderFinished[imageIndex]},
		},
	)
	if err != nil {
		// Nothing reached the queue, so the fence stays unarmed and the frame
		// is skipped rather than aborting the loop.
		Logger().Warn("frame submit failed", "error", err)
		return nil
	}
	r.armed = true

	res, err = r.swapchainExtension.QueuePresent(r.queue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{r.renderFinished[imageIndex]},
		Swapchains:     []khr_swapchain.Swapchain{r.swapchain},
		ImageIndices:   []int{imageIndex},
	})
	switch classifyPresent(res, err) {
	case frameStale, frameDegraded:
		r.resizeNeeded = true
	case frameFailed:
		Logger().Warn("frame present failed", "error", err)
	}

	r.frame++
	return nil
}

// recordCommands re-records the acquired image's command buffer: begin the
// pass with a clear, bind the pipeline and drawable, then hand the open
// buffer to the application for its own commands.
func (r *Renderer) recordCommands(imageIndex int, ctx *DrawContext) error {
	buffer := r.commandBuffers[imageIndex]

	if _, err := r.deviceDriver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{}); err != nil {
		return errors.Wrap(err, "beginning command buffer")
	}

	err := r.deviceDriver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  r.renderPass,
			Framebuffer: r.swapchainFramebuffers[imageIndex],
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: r.swapchainExtent,
			},
			ClearValues: []core1_0.ClearValue{clearColor},
		})
	if err != nil {
		return errors.Wrap(err, "beginning render pass")
	}

	r.deviceDriver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, r.pipeline)

	if r.drawable.VertexCount > 0 {
		r.deviceDriver.CmdBindVertexBuffers(buffer, 0, []core1_0.Buffer{r.drawable.Buffer}, []int{0})
		r.deviceDriver.CmdDraw(buffer, r.drawable.VertexCount, 1, 0, 0)
	}

	ctx.CommandBuffer = buffer
	r.app.Draw(ctx)

	r.deviceDriver.CmdEndRenderPass(buffer)

	if _, err := r.deviceDriver.EndCommandBuffer(buffer); err != nil {
		return errors.Wrap(err, "ending command buffer")
	}

	return nil
}
