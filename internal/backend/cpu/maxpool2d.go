package cpu

import (
	"context"
	"fmt"

	"github.com/born-ml/primcache/internal/primitive"
	"github.com/born-ml/primcache/internal/tensor"
)

// PoolingParams describes a pooling operation independent of the input shape.
type PoolingParams = primitive.Pooling2DParams

// Pooling2D performs 2D pooling through the backend's primitive cache.
//
// The first call for a given input shape and parameter set constructs a
// primitive; later calls with the same configuration reuse it.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height + pad_top + pad_bottom - kernel_h) / stride_y + 1
//	out_width  = (width + pad_left + pad_right - kernel_w) / stride_x + 1
func (cpu *CPUBackend) Pooling2D(input *tensor.RawTensor, params PoolingParams) *tensor.RawTensor {
	output, _ := cpu.Pooling2DWithIndices(input, params)
	return output
}

// Pooling2DWithIndices is Pooling2D that also returns the argmax workspace
// of max pooling (nil for average pooling), as consumed by Pooling2DBackward.
func (cpu *CPUBackend) Pooling2DWithIndices(input *tensor.RawTensor, params PoolingParams) (*tensor.RawTensor, []int) {
	desc, err := params.Descriptor(input.Shape())
	if err != nil {
		panic(fmt.Sprintf("pooling2d: %v", err))
	}

	var (
		output    *tensor.RawTensor
		workspace []int
	)
	switch input.DType() {
	case tensor.Float32:
		output, workspace, err = execPooling(cpu.pooling32, desc, input)
	case tensor.Float64:
		output, workspace, err = execPooling(cpu.pooling64, desc, input)
	default:
		panic(fmt.Sprintf("pooling2d: unsupported dtype %v", input.DType()))
	}
	if err != nil {
		panic(fmt.Sprintf("pooling2d: %v", err))
	}
	return output, workspace
}

// execPooling looks the primitive up, constructs and stores it on a miss,
// then executes it.
func execPooling[T tensor.Float](
	factory *primitive.Pooling2DFwdFactory[*Pooling2DFwd[T]],
	desc primitive.Pooling2DFwdDescriptor,
	input *tensor.RawTensor,
) (*tensor.RawTensor, []int, error) {
	op, err := factory.GetOrCreate(context.Background(), desc, buildPooling2DFwd[T])
	if err != nil {
		return nil, nil, err
	}
	return op.Execute(input)
}

// MaxPool2D performs 2D max pooling with a square window and no padding.
//
// Example (2x2 pool, stride=2):
//
//	Input: [[1,2,3,4],    Output: [[6,8],
//	        [5,6,7,8],             [14,16]]
//	        [9,10,11,12],
//	        [13,14,15,16]]
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	return cpu.Pooling2D(input, PoolingParams{
		KernelH: kernelSize, KernelW: kernelSize,
		StrideY: stride, StrideX: stride,
		Alg: primitive.PoolingMax,
	})
}

// AvgPool2D performs 2D average pooling with a square window and symmetric
// padding. Padded positions count towards the divisor.
func (cpu *CPUBackend) AvgPool2D(input *tensor.RawTensor, kernelSize, stride, padding int) *tensor.RawTensor {
	return cpu.Pooling2D(input, PoolingParams{
		KernelH: kernelSize, KernelW: kernelSize,
		StrideY: stride, StrideX: stride,
		PadTop: padding, PadLeft: padding, PadBottom: padding, PadRight: padding,
		Alg: primitive.PoolingAvgIncludePadding,
	})
}
