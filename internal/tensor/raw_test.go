package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3, 4}, Float32, CPU)
	require.NoError(t, err)

	assert.Equal(t, Shape{2, 3, 4}, raw.Shape())
	assert.Equal(t, Float32, raw.DType())
	assert.Equal(t, CPU, raw.Device())
	assert.Equal(t, 24, raw.NumElements())
	assert.Equal(t, 96, raw.ByteSize())
	assert.Len(t, raw.Data(), 96)
}

func TestNewRaw_InvalidShape(t *testing.T) {
	_, err := NewRaw(Shape{2, 0}, Float32, CPU)
	assert.Error(t, err)
}

func TestNewRaw_CopiesShape(t *testing.T) {
	shape := Shape{2, 2}
	raw, err := NewRaw(shape, Float64, CPU)
	require.NoError(t, err)

	shape[0] = 9
	assert.Equal(t, Shape{2, 2}, raw.Shape())
}

func TestRawTensorAsFloat32(t *testing.T) {
	raw, err := NewRaw(Shape{3, 2}, Float32, CPU)
	require.NoError(t, err)
	data := raw.AsFloat32()
	require.Len(t, data, 6)

	// Zero-copy view.
	data[0] = 42
	assert.Equal(t, float32(42), raw.AsFloat32()[0])
}

func TestRawTensorAsFloat64(t *testing.T) {
	raw, err := NewRaw(Shape{4}, Float64, CPU)
	require.NoError(t, err)
	data := raw.AsFloat64()
	require.Len(t, data, 4)

	data[3] = -1.5
	assert.Equal(t, -1.5, AsSlice[float64](raw)[3])
}

func TestAsSlice_WrongType(t *testing.T) {
	raw, err := NewRaw(Shape{2}, Float32, CPU)
	require.NoError(t, err)

	assert.Panics(t, func() { raw.AsFloat64() })
}

func TestFromSlice(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	raw, err := FromSlice(Shape{2, 2}, values)
	require.NoError(t, err)

	assert.Equal(t, Float64, raw.DType())
	assert.Equal(t, values, raw.AsFloat64())

	// Copy, not alias.
	values[0] = 100
	assert.Equal(t, 1.0, raw.AsFloat64()[0])
}

func TestFromSlice_LengthMismatch(t *testing.T) {
	_, err := FromSlice(Shape{2, 2}, []float32{1, 2, 3})
	assert.Error(t, err)
}

func TestDevice_String(t *testing.T) {
	assert.Equal(t, "CPU", CPU.String())
	assert.Equal(t, "WebGPU", WebGPU.String())
	assert.Equal(t, "Unknown", Device(7).String())
}
