package cpu

import (
	"testing"

	"github.com/born-ml/primcache/internal/parallel"
	"github.com/born-ml/primcache/internal/primitive"
	"github.com/born-ml/primcache/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func examplePoolingDescriptor() primitive.Pooling2DFwdDescriptor {
	return primitive.Pooling2DFwdDescriptor{
		Src:     tensor.Shape{1, 3, 224, 224},
		Dst:     tensor.Shape{1, 3, 112, 112},
		KernelH: 3, KernelW: 3,
		StrideY: 2, StrideX: 2,
		PadRH: 1, PadRW: 1,
		Alg: primitive.PoolingMax,
	}
}

func TestNewPooling2DFwd_Invalid(t *testing.T) {
	desc := examplePoolingDescriptor()
	desc.Dst = tensor.Shape{1, 3, 100, 100}

	_, err := NewPooling2DFwd[float32](desc)
	assert.ErrorIs(t, err, primitive.ErrInvalidDescriptor)
}

func TestNewPooling2DFwd_ClonesShapes(t *testing.T) {
	desc := examplePoolingDescriptor()
	op, err := NewPooling2DFwd[float32](desc)
	require.NoError(t, err)

	desc.Src[0] = 99
	assert.Equal(t, 1, op.Descriptor().Src[0])
}

func TestPooling2DFwd_Windows(t *testing.T) {
	op, err := NewPooling2DFwd[float32](examplePoolingDescriptor())
	require.NoError(t, err)

	require.Len(t, op.rows, 112)
	assert.Equal(t, window{0, 3}, op.rows[0])
	assert.Equal(t, window{2, 5}, op.rows[1])
	// Last window runs into the bottom padding.
	assert.Equal(t, window{222, 224}, op.rows[111])

	assert.Equal(t, []int{150528, 50176, 224, 1}, op.srcStrides)
	assert.Equal(t, []int{37632, 12544, 112, 1}, op.dstStrides)
}

func TestPooling2DFwd_ExecuteExample(t *testing.T) {
	desc := examplePoolingDescriptor()
	op, err := NewPooling2DFwd[float32](desc)
	require.NoError(t, err)

	src, err := tensor.NewRaw(desc.Src, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	srcData := src.AsFloat32()
	for i := range srcData {
		srcData[i] = float32(i % 224)
	}

	dst, workspace, err := op.Execute(src)
	require.NoError(t, err)
	assert.Equal(t, desc.Dst, dst.Shape())
	require.Len(t, workspace, dst.NumElements())

	dstData := dst.AsFloat32()
	// Row values are the column index: window max is its rightmost column.
	assert.Equal(t, float32(2), dstData[0])
	assert.Equal(t, float32(223), dstData[111])
	for i, idx := range workspace {
		assert.Equal(t, srcData[idx], dstData[i])
	}
}

func TestPooling2DFwd_ExecuteChecksInput(t *testing.T) {
	op, err := NewPooling2DFwd[float32](examplePoolingDescriptor())
	require.NoError(t, err)

	wrongShape, _ := tensor.NewRaw(tensor.Shape{1, 3, 8, 8}, tensor.Float32, tensor.CPU)
	_, _, err = op.Execute(wrongShape)
	assert.Error(t, err)

	wrongType, _ := tensor.NewRaw(tensor.Shape{1, 3, 224, 224}, tensor.Float64, tensor.CPU)
	_, _, err = op.Execute(wrongType)
	assert.Error(t, err)
}

func TestPooling2DFwd_ExecuteAfterRelease(t *testing.T) {
	op, err := NewPooling2DFwd[float64](examplePoolingDescriptor())
	require.NoError(t, err)
	op.Release()

	src, _ := tensor.NewRaw(tensor.Shape{1, 3, 224, 224}, tensor.Float64, tensor.CPU)
	_, _, err = op.Execute(src)
	assert.ErrorIs(t, err, ErrReleased)
}

func TestPooling2DFwd_AvgHasNoWorkspace(t *testing.T) {
	desc := examplePoolingDescriptor()
	desc.Alg = primitive.PoolingAvgExcludePadding
	op, err := NewPooling2DFwd[float32](desc)
	require.NoError(t, err)

	src, _ := tensor.NewRaw(desc.Src, tensor.Float32, tensor.CPU)
	for i := range src.AsFloat32() {
		src.AsFloat32()[i] = 2
	}

	dst, workspace, err := op.Execute(src)
	require.NoError(t, err)
	assert.Nil(t, workspace)
	for _, v := range dst.AsFloat32() {
		assert.Equal(t, float32(2), v)
	}
}

func TestPooling2DFwd_ExecuteIntoSizeMismatch(t *testing.T) {
	op, err := NewPooling2DFwd[float32](examplePoolingDescriptor())
	require.NoError(t, err)

	assert.Panics(t, func() { op.ExecuteInto(make([]float32, 4), make([]float32, 4), nil) })
}

func TestPooling2DFwd_ExecuteIntoWorkspaceMismatch(t *testing.T) {
	op, err := NewPooling2DFwd[float32](examplePoolingDescriptor())
	require.NoError(t, err)

	src := make([]float32, op.desc.Src.NumElements())
	dst := make([]float32, op.desc.Dst.NumElements())
	assert.Panics(t, func() { op.ExecuteInto(src, dst, make([]int, 3)) })
}

func TestPooling2DFwd_ParallelMatchesSequential(t *testing.T) {
	for _, alg := range []primitive.Algorithm{
		primitive.PoolingMax,
		primitive.PoolingAvgIncludePadding,
		primitive.PoolingAvgExcludePadding,
	} {
		t.Run(alg.String(), func(t *testing.T) {
			desc := primitive.Pooling2DFwdDescriptor{
				Src:     tensor.Shape{2, 5, 9, 7},
				Dst:     tensor.Shape{2, 5, 5, 4},
				KernelH: 3, KernelW: 2,
				StrideY: 2, StrideX: 2,
				PadLH: 1, PadLW: 1, PadRH: 1,
				Alg: alg,
			}
			op, err := NewPooling2DFwd[float64](desc)
			require.NoError(t, err)

			src := make([]float64, desc.Src.NumElements())
			for i := range src {
				src[i] = float64((i*37)%101) - 50
			}

			seqDst := make([]float64, desc.Dst.NumElements())
			seqWs := make([]int, len(seqDst))
			op.par = parallel.Config{Enabled: false}
			op.ExecuteInto(src, seqDst, seqWs)

			parDst := make([]float64, len(seqDst))
			parWs := make([]int, len(seqDst))
			op.par = parallel.Config{Enabled: true, NumWorkers: 4, MinWork: 1}
			op.ExecuteInto(src, parDst, parWs)

			assert.Equal(t, seqDst, parDst)
			assert.Equal(t, seqWs, parWs)
		})
	}
}

// TestPooling2DFwdFactory_StoreLookupPrimitive exercises the factory directly
// with real primitives: the caller constructs on a miss and stores.
func TestPooling2DFwdFactory_StoreLookupPrimitive(t *testing.T) {
	factory := primitive.NewPooling2DFwdFactory[*Pooling2DFwd[float32]](primitive.Config{})
	desc := examplePoolingDescriptor()

	_, ok := factory.Get(desc)
	require.False(t, ok)

	op, err := NewPooling2DFwd[float32](desc)
	require.NoError(t, err)
	factory.Set(desc, op)

	got, ok := factory.Get(examplePoolingDescriptor())
	require.True(t, ok)
	assert.Same(t, op, got)
}

func BenchmarkPooling2D_Cached(b *testing.B) {
	backend := New()
	input, _ := tensor.NewRaw(tensor.Shape{8, 16, 32, 32}, tensor.Float32, tensor.CPU)
	params := PoolingParams{KernelH: 2, KernelW: 2, StrideY: 2, StrideX: 2}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		backend.Pooling2D(input, params)
	}
}

func BenchmarkPooling2D_Uncached(b *testing.B) {
	input, _ := tensor.NewRaw(tensor.Shape{8, 16, 32, 32}, tensor.Float32, tensor.CPU)
	desc, _ := PoolingParams{KernelH: 2, KernelW: 2, StrideY: 2, StrideX: 2}.Descriptor(input.Shape())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		op, _ := NewPooling2DFwd[float32](desc)
		_, _, _ = op.Execute(input)
	}
}
