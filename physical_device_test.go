package vkframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

func TestDeviceTypeRank(t *testing.T) {
	discrete := deviceTypeRank(core1_0.PhysicalDeviceTypeDiscreteGPU)
	integrated := deviceTypeRank(core1_0.PhysicalDeviceTypeIntegratedGPU)
	virtual := deviceTypeRank(core1_0.PhysicalDeviceTypeVirtualGPU)
	cpu := deviceTypeRank(core1_0.PhysicalDeviceTypeCPU)
	unknown := deviceTypeRank(core1_0.PhysicalDeviceType(99))

	assert.Less(t, discrete, integrated)
	assert.Less(t, integrated, virtual)
	assert.Less(t, virtual, cpu)
	assert.Less(t, cpu, unknown)
}

func TestMissingDeviceExtension(t *testing.T) {
	// An adapter advertising nothing is missing the swapchain extension and
	// gets rejected.
	name, missing := missingDeviceExtension(map[string]struct{}{}, requiredDeviceExtensions)
	assert.True(t, missing)
	assert.Equal(t, khr_swapchain.ExtensionName, name)

	complete := map[string]struct{}{khr_swapchain.ExtensionName: {}}
	_, missing = missingDeviceExtension(complete, requiredDeviceExtensions)
	assert.False(t, missing)
}

func TestPickQueueFamily(t *testing.T) {
	// Families are scanned in index order; the first able to both render and
	// present wins.
	index, ok := pickQueueFamily([]queueFamilySupport{
		{Graphics: true},
		{Presentable: true},
		{Graphics: true, Presentable: true},
		{Graphics: true, Presentable: true},
	})
	assert.True(t, ok)
	assert.Equal(t, 2, index)

	_, ok = pickQueueFamily([]queueFamilySupport{
		{Graphics: true},
		{Presentable: true},
	})
	assert.False(t, ok)

	_, ok = pickQueueFamily(nil)
	assert.False(t, ok)
}

func candidateOfType(name string, deviceType core1_0.PhysicalDeviceType) adapterCandidate {
	return adapterCandidate{info: AdapterInfo{Name: name, Type: deviceType}}
}

func TestPickAdapter(t *testing.T) {
	assert.Equal(t, -1, pickAdapter(nil))

	// A discrete GPU beats an integrated one regardless of enumeration order.
	assert.Equal(t, 1, pickAdapter([]adapterCandidate{
		candidateOfType("igpu", core1_0.PhysicalDeviceTypeIntegratedGPU),
		candidateOfType("dgpu", core1_0.PhysicalDeviceTypeDiscreteGPU),
	}))
	assert.Equal(t, 0, pickAdapter([]adapterCandidate{
		candidateOfType("dgpu", core1_0.PhysicalDeviceTypeDiscreteGPU),
		candidateOfType("igpu", core1_0.PhysicalDeviceTypeIntegratedGPU),
	}))

	// Everything else only wins when nothing better is present.
	assert.Equal(t, 0, pickAdapter([]adapterCandidate{
		candidateOfType("lavapipe", core1_0.PhysicalDeviceTypeCPU),
	}))
}

func TestSelectAdapter(t *testing.T) {
	// A scan where every adapter was rejected reports the sentinel.
	_, err := selectAdapter(nil)
	assert.ErrorIs(t, err, ErrNoCompatibleDevice)

	chosen, err := selectAdapter([]adapterCandidate{
		candidateOfType("igpu", core1_0.PhysicalDeviceTypeIntegratedGPU),
		candidateOfType("dgpu", core1_0.PhysicalDeviceTypeDiscreteGPU),
	})
	require.NoError(t, err)
	assert.Equal(t, "dgpu", chosen.info.Name)
}

func TestPickAdapterKeepsEnumerationOrderInTies(t *testing.T) {
	assert.Equal(t, 0, pickAdapter([]adapterCandidate{
		candidateOfType("dgpu-a", core1_0.PhysicalDeviceTypeDiscreteGPU),
		candidateOfType("dgpu-b", core1_0.PhysicalDeviceTypeDiscreteGPU),
	}))

	assert.Equal(t, 1, pickAdapter([]adapterCandidate{
		candidateOfType("cpu", core1_0.PhysicalDeviceTypeCPU),
		candidateOfType("igpu-a", core1_0.PhysicalDeviceTypeIntegratedGPU),
		candidateOfType("igpu-b", core1_0.PhysicalDeviceTypeIntegratedGPU),
	}))
}
