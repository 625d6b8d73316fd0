package vkframe

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// PipelineConfig describes the graphics pipeline the renderer draws with.
// GraphicsPipelineCreateInfo is called once at startup and again after every
// swapchain rebuild, with the extent the pipeline must bake in. The renderer
// fills in RenderPass and Subpass and owns the compiled pipeline; the config
// owns everything referenced by the returned info (shader modules, pipeline
// layout) until Destroy is called during shutdown.
type PipelineConfig interface {
	GraphicsPipelineCreateInfo(device core1_0.CoreDeviceDriver, renderPass core1_0.RenderPass, extent core1_0.Extent2D) (core1_0.GraphicsPipelineCreateInfo, error)
	Destroy()
}

// Drawable is a bound vertex buffer and the number of vertices to draw from
// it each frame.
type Drawable struct {
	Buffer      core1_0.Buffer
	Memory      core1_0.DeviceMemory
	VertexCount int
}

func (r *Renderer) createGraphicsPipeline() error {
	createInfo, err := r.pipelineConfig.GraphicsPipelineCreateInfo(r.deviceDriver, r.renderPass, r.swapchainExtent)
	if err != nil {
		return errors.Wrap(err, "describing graphics pipeline")
	}

	createInfo.RenderPass = r.renderPass
	createInfo.Subpass = 0

	pipelines, _, err := r.deviceDriver.CreateGraphicsPipelines(nil, nil, createInfo)
	if err != nil {
		return errors.Wrap(err, "creating graphics pipeline")
	}

	r.pipeline = pipelines[0]
	return nil
}

// NewShaderModule compiles SPIR-V bytes into a shader module. The byte length
// must be a multiple of four, the size of a SPIR-V word.
func NewShaderModule(device core1_0.CoreDeviceDriver, code []byte) (core1_0.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return core1_0.ShaderModule{}, errors.Newf("shader bytecode is %d bytes, expected a multiple of 4", len(code))
	}

	module, _, err := device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: bytesToBytecode(code),
	})
	if err != nil {
		return core1_0.ShaderModule{}, errors.Wrap(err, "creating shader module")
	}

	return module, nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}

// CreateVertexBuffer allocates a host-visible vertex buffer, fills it with
// data and returns it as a Drawable. data must have a fixed binary size, such
// as a slice of flat structs. The renderer frees the buffer during shutdown
// once it has been installed with SetDrawable.
func (r *Renderer) CreateVertexBuffer(data any, vertexCount int) (Drawable, error) {
	size := binary.Size(data)
	if size < 0 {
		return Drawable{}, errors.Newf("vertex data of type %T has no fixed binary size", data)
	}

	buffer, _, err := r.deviceDriver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       core1_0.BufferUsageVertexBuffer,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return Drawable{}, errors.Wrap(err, "creating vertex buffer")
	}

	memRequirements := r.deviceDriver.GetBufferMemoryRequirements(buffer)
	memoryTypeIndex, err := r.findMemoryType(memRequirements.MemoryTypeBits,
		core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		r.deviceDriver.DestroyBuffer(buffer, nil)
		return Drawable{}, err
	}

	memory, _, err := r.deviceDriver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		r.deviceDriver.DestroyBuffer(buffer, nil)
		return Drawable{}, errors.Wrap(err, "allocating vertex buffer memory")
	}

	_, err = r.deviceDriver.BindBufferMemory(buffer, memory, 0)
	if err == nil {
		err = writeData(r.deviceDriver, memory, 0, data)
	}
	if err != nil {
		r.deviceDriver.DestroyBuffer(buffer, nil)
		r.deviceDriver.FreeMemory(memory, nil)
		return Drawable{}, errors.Wrap(err, "filling vertex buffer")
	}

	return Drawable{Buffer: buffer, Memory: memory, VertexCount: vertexCount}, nil
}

// SetDrawable installs the vertex buffer bound before each frame's draw call.
// The renderer takes ownership and frees it during shutdown.
func (r *Renderer) SetDrawable(drawable Drawable) {
	r.drawable = drawable
}

func (r *Renderer) findMemoryType(typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	memProperties := r.instanceDriver.GetPhysicalDeviceMemoryProperties(r.physicalDevice)
	for i, memoryType := range memProperties.MemoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Newf("no host-visible memory type matches filter %#x", typeFilter)
}

func writeData(driver core1_0.DeviceDriver, memory core1_0.DeviceMemory, offset int, data any) error {
	bufferSize := binary.Size(data)

	memoryPtr, _, err := driver.MapMemory(memory, offset, bufferSize, 0)
	if err != nil {
		return err
	}
	defer driver.UnmapMemory(memory)

	dataBuffer := unsafe.Slice((*byte)(memoryPtr), bufferSize)

	buf := &bytes.Buffer{}
	err = binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return err
	}

	copy(dataBuffer, buf.Bytes())
	return nil
}
