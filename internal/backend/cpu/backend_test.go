package cpu

import (
	"sync"
	"testing"

	"github.com/born-ml/primcache/internal/primitive"
	"github.com/born-ml/primcache/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
	assert.Equal(t, primitive.Stats{}, backend.PrimitiveStats())
}

// TestCPUBackend_CachesAreIndependent verifies two backends never share primitives.
func TestCPUBackend_CachesAreIndependent(t *testing.T) {
	a, b := New(), New()
	input, _ := tensor.NewRaw(tensor.Shape{1, 1, 4, 4}, tensor.Float32, tensor.CPU)

	a.MaxPool2D(input, 2, 2)

	assert.Equal(t, 1, a.PrimitiveStats().Entries)
	assert.Equal(t, 0, b.PrimitiveStats().Entries)
}

// TestCPUBackend_Release verifies released primitives are rebuilt on demand.
func TestCPUBackend_Release(t *testing.T) {
	backend := New()
	input, _ := tensor.NewRaw(tensor.Shape{1, 1, 4, 4}, tensor.Float32, tensor.CPU)
	backend.MaxPool2D(input, 2, 2)

	desc, err := PoolingParams{KernelH: 2, KernelW: 2, StrideY: 2, StrideX: 2}.Descriptor(input.Shape())
	require.NoError(t, err)
	op, ok := backend.Pooling2DFwdFactory32().Get(desc)
	require.True(t, ok)

	backend.Release()

	assert.True(t, op.Released())
	assert.Equal(t, 0, backend.PrimitiveStats().Entries)

	output := backend.MaxPool2D(input, 2, 2)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.Equal(t, uint64(2), backend.PrimitiveStats().Builds)
}

// TestCPUBackend_ConcurrentPooling runs the same configuration from many
// goroutines: exactly one primitive must be built.
func TestCPUBackend_ConcurrentPooling(t *testing.T) {
	backend := New()
	input, _ := tensor.NewRaw(tensor.Shape{2, 3, 8, 8}, tensor.Float32, tensor.CPU)
	inputData := input.AsFloat32()
	for i := range inputData {
		inputData[i] = float32(i)
	}

	params := PoolingParams{KernelH: 2, KernelW: 2, StrideY: 2, StrideX: 2, Alg: primitive.PoolingMax}
	expected := backend.Pooling2D(input, params).AsFloat32()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := backend.Pooling2D(input, params)
			assert.Equal(t, expected, out.AsFloat32())
		}()
	}
	wg.Wait()

	stats := backend.PrimitiveStats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, uint64(1), stats.Builds)
}

// TestPoolingParams_Descriptor tests output shape derivation.
func TestPoolingParams_Descriptor(t *testing.T) {
	params := PoolingParams{
		KernelH: 3, KernelW: 3,
		StrideY: 2, StrideX: 2,
		PadBottom: 1, PadRight: 1,
		Alg: primitive.PoolingMax,
	}

	desc, err := params.Descriptor(tensor.Shape{1, 3, 224, 224})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 3, 112, 112}, desc.Dst)
	assert.Equal(t, 1, desc.PadRH)
	assert.Equal(t, 1, desc.PadRW)

	_, err = params.Descriptor(tensor.Shape{3, 224, 224})
	assert.ErrorIs(t, err, primitive.ErrInvalidDescriptor)
}
