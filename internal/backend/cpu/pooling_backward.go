package cpu

import (
	"context"
	"fmt"

	"github.com/born-ml/primcache/internal/parallel"
	"github.com/born-ml/primcache/internal/primitive"
	"github.com/born-ml/primcache/internal/tensor"
)

// Pooling2DBackward computes the gradient w.r.t. the pooling input.
//
// Max pooling routes each output gradient to the input position recorded in
// workspace by the forward pass; all other positions receive zero.
// Average pooling spreads each output gradient evenly over its window, using
// the window table of the cached forward primitive.
//
// References:
//   - CS231n: Backprop for pooling layers
func (cpu *CPUBackend) Pooling2DBackward(input, grad *tensor.RawTensor, workspace []int, params PoolingParams) *tensor.RawTensor {
	desc, err := params.Descriptor(input.Shape())
	if err != nil {
		panic(fmt.Sprintf("pooling2d backward: %v", err))
	}

	var inputGrad *tensor.RawTensor
	switch grad.DType() {
	case tensor.Float32:
		inputGrad, err = poolingBackward(cpu.pooling32, desc, grad, workspace)
	case tensor.Float64:
		inputGrad, err = poolingBackward(cpu.pooling64, desc, grad, workspace)
	default:
		panic(fmt.Sprintf("pooling2d backward: unsupported dtype %v", grad.DType()))
	}
	if err != nil {
		panic(fmt.Sprintf("pooling2d backward: %v", err))
	}
	return inputGrad
}

// MaxPool2DBackward computes the gradient w.r.t. input for MaxPool2D.
//
// Example (2x2 pool, stride=2):
//
//	Input:  [[1, 2],  Output: [4]  Input Grad: [[0, 0],
//	         [3, 4]]                             [0, grad]]
func (cpu *CPUBackend) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int, kernelSize, stride int) *tensor.RawTensor {
	return cpu.Pooling2DBackward(input, grad, maxIndices, PoolingParams{
		KernelH: kernelSize, KernelW: kernelSize,
		StrideY: stride, StrideX: stride,
		Alg: primitive.PoolingMax,
	})
}

func poolingBackward[T tensor.Float](
	factory *primitive.Pooling2DFwdFactory[*Pooling2DFwd[T]],
	desc primitive.Pooling2DFwdDescriptor,
	grad *tensor.RawTensor,
	workspace []int,
) (*tensor.RawTensor, error) {
	if !grad.Shape().Equal(desc.Dst) {
		return nil, fmt.Errorf("grad shape %v, expected %v", grad.Shape(), desc.Dst)
	}

	inputGrad, err := tensor.NewRaw(desc.Src, grad.DType(), grad.Device())
	if err != nil {
		return nil, fmt.Errorf("failed to create gradient tensor: %w", err)
	}
	gradData := tensor.AsSlice[T](grad)
	inputGradData := tensor.AsSlice[T](inputGrad)

	if desc.Alg == primitive.PoolingMax {
		if len(workspace) != len(gradData) {
			return nil, fmt.Errorf("workspace length %d != expected %d", len(workspace), len(gradData))
		}
		for i, idx := range workspace {
			inputGradData[idx] += gradData[i]
		}
		return inputGrad, nil
	}

	op, err := factory.GetOrCreate(context.Background(), desc, buildPooling2DFwd[T])
	if err != nil {
		return nil, err
	}

	planeSize, rowStride := op.srcStrides[1], op.srcStrides[2]
	outPlaneSize, outRowStride := op.dstStrides[1], op.dstStrides[2]
	kernelArea := T(desc.KernelH * desc.KernelW)

	planeWork := outPlaneSize * desc.KernelH * desc.KernelW
	parallel.For(desc.Src[0]*desc.Src[1], planeWork, func(plane int) {
		planeGrad := inputGradData[plane*planeSize : (plane+1)*planeSize]
		outOffset := plane * outPlaneSize

		for oh, rw := range op.rows {
			for ow, cw := range op.cols {
				divisor := kernelArea
				if desc.Alg == primitive.PoolingAvgExcludePadding {
					divisor = T((rw.end - rw.start) * (cw.end - cw.start))
				}
				share := gradData[outOffset+oh*outRowStride+ow] / divisor

				for h := rw.start; h < rw.end; h++ {
					for w := cw.start; w < cw.end; w++ {
						planeGrad[h*rowStride+w] += share
					}
				}
			}
		}
	}, op.par)
	return inputGrad, nil
}
