package vkframe

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

var requiredDeviceExtensions = []string{khr_swapchain.ExtensionName}

// AdapterInfo describes the physical device the renderer selected.
type AdapterInfo struct {
	Name string
	Type core1_0.PhysicalDeviceType

	// QueueFamily is the family used for both graphics and presentation.
	QueueFamily int

	DriverVersion   common.Version
	PipelineCacheID uuid.UUID
}

type adapterCandidate struct {
	device core1_0.PhysicalDevice
	info   AdapterInfo
}

// deviceTypeRank orders device classes by preference, most desirable first.
func deviceTypeRank(deviceType core1_0.PhysicalDeviceType) int {
	switch deviceType {
	case core1_0.PhysicalDeviceTypeDiscreteGPU:
		return 0
	case core1_0.PhysicalDeviceTypeIntegratedGPU:
		return 1
	case core1_0.PhysicalDeviceTypeVirtualGPU:
		return 2
	case core1_0.PhysicalDeviceTypeCPU:
		return 3
	default:
		return 4
	}
}

// pickAdapter returns the index of the best-ranked candidate, keeping
// enumeration order within a rank. Returns -1 when there are no candidates.
func pickAdapter(candidates []adapterCandidate) int {
	best := -1
	for i, candidate := range candidates {
		if best < 0 || deviceTypeRank(candidate.info.Type) < deviceTypeRank(candidates[best].info.Type) {
			best = i
		}
	}
	return best
}

// selectAdapter resolves a candidate scan: the best-ranked candidate, or
// ErrNoCompatibleDevice when every adapter was rejected.
func selectAdapter(candidates []adapterCandidate) (adapterCandidate, error) {
	best := pickAdapter(candidates)
	if best < 0 {
		return adapterCandidate{}, ErrNoCompatibleDevice
	}
	return candidates[best], nil
}

func (r *Renderer) pickPhysicalDevice() error {
	physicalDevices, _, err := r.instanceDriver.EnumeratePhysicalDevices()
	if err != nil {
		return errors.Wrap(err, "enumerating physical devices")
	}

	var candidates []adapterCandidate
	for _, device := range physicalDevices {
		candidate, ok, err := r.evaluateDevice(device)
		if err != nil {
			return err
		}
		if ok {
			candidates = append(candidates, candidate)
		}
	}

	chosen, err := selectAdapter(candidates)
	if err != nil {
		return err
	}

	r.physicalDevice = chosen.device
	r.adapter = chosen.info
	Logger().Info("using physical device",
		"name", chosen.info.Name,
		"type", chosen.info.Type,
		"queueFamily", chosen.info.QueueFamily,
		"driver", chosen.info.DriverVersion,
		"cacheID", chosen.info.PipelineCacheID)

	return nil
}

// missingDeviceExtension returns the first required extension the device does
// not advertise. Only key membership in the extension map matters.
func missingDeviceExtension[V any](available map[string]V, required []string) (string, bool) {
	for _, name := range required {
		if _, ok := available[name]; !ok {
			return name, true
		}
	}
	return "", false
}

// evaluateDevice reports whether a device can drive the window surface and,
// if so, the candidate describing it. Rejections are logged at debug level
// with the reason so a machine with several adapters can be diagnosed.
func (r *Renderer) evaluateDevice(device core1_0.PhysicalDevice) (adapterCandidate, bool, error) {
	properties, err := r.instanceDriver.GetPhysicalDeviceProperties(device)
	if err != nil {
		return adapterCandidate{}, false, errors.Wrap(err, "querying device properties")
	}

	extensions, _, err := r.instanceDriver.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		return adapterCandidate{}, false, errors.Wrap(err, "enumerating device extensions")
	}

	if name, missing := missingDeviceExtension(extensions, requiredDeviceExtensions); missing {
		Logger().Debug("rejecting physical device",
			"name", properties.Name,
			"reason", "missing required extension",
			"extension", name)
		return adapterCandidate{}, false, nil
	}

	queueFamily, found, err := r.findQueueFamily(device)
	if err != nil {
		return adapterCandidate{}, false, err
	}
	if !found {
		Logger().Debug("rejecting physical device",
			"name", properties.Name,
			"reason", "no queue family with graphics and presentation support")
		return adapterCandidate{}, false, nil
	}

	// The extension being present does not guarantee the surface reports any
	// usable format or present mode.
	support, err := r.querySwapchainSupport(device)
	if err != nil {
		return adapterCandidate{}, false, err
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		Logger().Debug("rejecting physical device",
			"name", properties.Name,
			"reason", "surface reports no formats or present modes")
		return adapterCandidate{}, false, nil
	}

	Logger().Debug("physical device is compatible", "name", properties.Name)
	return adapterCandidate{
		device: device,
		info: AdapterInfo{
			Name:            properties.Name,
			Type:            properties.Type,
			QueueFamily:     queueFamily,
			DriverVersion:   properties.DriverVersion,
			PipelineCacheID: properties.PipelineCacheUUID,
		},
	}, true, nil
}

// queueFamilySupport records what one queue family can do against the window
// surface.
type queueFamilySupport struct {
	Graphics    bool
	Presentable bool
}

// pickQueueFamily returns the lowest-indexed family able to both render and
// present.
func pickQueueFamily(families []queueFamilySupport) (int, bool) {
	for i, family := range families {
		if family.Graphics && family.Presentable {
			return i, true
		}
	}
	return 0, false
}

// findQueueFamily looks for a single family that can both render and present.
// Using one family keeps every swapchain image exclusively owned.
func (r *Renderer) findQueueFamily(device core1_0.PhysicalDevice) (int, bool, error) {
	queueFamilies := r.instanceDriver.GetPhysicalDeviceQueueFamilyProperties(device)

	support := make([]queueFamilySupport, len(queueFamilies))
	for familyIndex, family := range queueFamilies {
		if family.QueueFlags&core1_0.QueueGraphics == 0 {
			continue
		}

		presentable, _, err := r.surfaceExtension.GetPhysicalDeviceSurfaceSupport(r.surface, device, familyIndex)
		if err != nil {
			return 0, false, errors.Wrap(err, "querying surface support")
		}

		support[familyIndex] = queueFamilySupport{Graphics: true, Presentable: presentable}
	}

	index, ok := pickQueueFamily(support)
	return index, ok, nil
}
