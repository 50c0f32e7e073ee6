package primitive

import (
	"context"
	"testing"

	"github.com/born-ml/primcache/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPooling2DFwdFactory_FreshIsEmpty(t *testing.T) {
	f := NewPooling2DFwdFactory[*fakePrimitive](Config{})

	_, ok := f.Get(exampleDescriptor())
	assert.False(t, ok)
	assert.Equal(t, 0, f.Len())
}

func TestPooling2DFwdFactory_SetThenGet(t *testing.T) {
	f := NewPooling2DFwdFactory[*fakePrimitive](Config{})
	h := &fakePrimitive{id: 1}

	f.Set(exampleDescriptor(), h)

	// A separately constructed but equal descriptor finds the same handle.
	got, ok := f.Get(exampleDescriptor())
	require.True(t, ok)
	assert.Same(t, h, got)
}

func TestPooling2DFwdFactory_NoCrossContamination(t *testing.T) {
	f := NewPooling2DFwdFactory[*fakePrimitive](Config{})

	d1 := exampleDescriptor()
	d2 := exampleDescriptor()
	d2.Alg = PoolingAvgIncludePadding
	d3 := Pooling2DFwdDescriptor{
		Src: tensor.Shape{1, 23, 4, 4}, Dst: tensor.Shape{1, 23, 2, 2},
		KernelH: 2, KernelW: 2, StrideY: 2, StrideX: 2,
	}
	d4 := Pooling2DFwdDescriptor{
		Src: tensor.Shape{12, 3, 4, 4}, Dst: tensor.Shape{12, 3, 2, 2},
		KernelH: 2, KernelW: 2, StrideY: 2, StrideX: 2,
	}

	handles := map[*Pooling2DFwdDescriptor]*fakePrimitive{
		&d1: {id: 1}, &d2: {id: 2}, &d3: {id: 3}, &d4: {id: 4},
	}
	for d, h := range handles {
		f.Set(*d, h)
	}

	assert.Equal(t, 4, f.Len())
	for d, h := range handles {
		got, ok := f.Get(*d)
		require.True(t, ok)
		assert.Same(t, h, got)
	}
}

func TestPooling2DFwdFactory_SetOverwrites(t *testing.T) {
	f := NewPooling2DFwdFactory[*fakePrimitive](Config{})
	h1 := &fakePrimitive{id: 1}
	h2 := &fakePrimitive{id: 2}

	f.Set(exampleDescriptor(), h1)
	f.Set(exampleDescriptor(), h2)

	got, ok := f.Get(exampleDescriptor())
	require.True(t, ok)
	assert.Same(t, h2, got)
}

func TestPooling2DFwdFactory_GetOrCreate(t *testing.T) {
	f := NewPooling2DFwdFactory[*fakePrimitive](Config{})
	calls := 0

	build := func(_ context.Context, d Pooling2DFwdDescriptor) (*fakePrimitive, error) {
		calls++
		if err := d.Validate(); err != nil {
			return nil, err
		}
		return &fakePrimitive{id: d.KernelH}, nil
	}

	p, err := f.GetOrCreate(context.Background(), exampleDescriptor(), build)
	require.NoError(t, err)
	assert.Equal(t, 3, p.id)

	again, err := f.GetOrCreate(context.Background(), exampleDescriptor(), build)
	require.NoError(t, err)
	assert.Same(t, p, again)
	assert.Equal(t, 1, calls)

	bad := exampleDescriptor()
	bad.StrideX = 0
	_, err = f.GetOrCreate(context.Background(), bad, build)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	assert.Equal(t, 1, f.Len())

	_, err = f.GetOrCreate(context.Background(), exampleDescriptor(), nil)
	assert.ErrorIs(t, err, ErrNilBuilder)
}

func TestPooling2DFwdFactory_Release(t *testing.T) {
	f := NewPooling2DFwdFactory[*fakePrimitive](Config{})
	h := &fakePrimitive{}
	f.Set(exampleDescriptor(), h)

	f.Release()

	assert.Equal(t, int32(1), h.released.Load())
	assert.Equal(t, 0, f.Stats().Entries)
}
