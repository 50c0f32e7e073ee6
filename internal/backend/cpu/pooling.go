package cpu

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/born-ml/primcache/internal/parallel"
	"github.com/born-ml/primcache/internal/primitive"
	"github.com/born-ml/primcache/internal/tensor"
)

// ErrReleased is returned when a released primitive is executed.
var ErrReleased = errors.New("cpu: primitive released")

// window is a clamped input range [start, end) along one spatial axis.
type window struct {
	start, end int
}

// Pooling2DFwd is a constructed pooling-forward primitive for one
// descriptor and element type. Construction validates the descriptor and
// precomputes the input window of every output row and column, so Execute
// only walks memory.
//
// A Pooling2DFwd is safe for concurrent Execute calls.
type Pooling2DFwd[T tensor.Float] struct {
	desc primitive.Pooling2DFwdDescriptor
	rows []window
	cols []window
	par  parallel.Config

	// Row-major strides of Src and Dst.
	srcStrides []int
	dstStrides []int

	released atomic.Bool
}

// NewPooling2DFwd constructs a pooling-forward primitive.
func NewPooling2DFwd[T tensor.Float](desc primitive.Pooling2DFwdDescriptor) (*Pooling2DFwd[T], error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	desc.Src = desc.Src.Clone()
	desc.Dst = desc.Dst.Clone()

	return &Pooling2DFwd[T]{
		desc: desc,
		rows: windows(desc.Dst[2], desc.Src[2], desc.KernelH, desc.StrideY, desc.PadLH),
		cols: windows(desc.Dst[3], desc.Src[3], desc.KernelW, desc.StrideX, desc.PadLW),
		par:  parallel.DefaultConfig(),

		srcStrides: desc.Src.ComputeStrides(),
		dstStrides: desc.Dst.ComputeStrides(),
	}, nil
}

// buildPooling2DFwd adapts NewPooling2DFwd to the factory's build signature.
func buildPooling2DFwd[T tensor.Float](_ context.Context, desc primitive.Pooling2DFwdDescriptor) (*Pooling2DFwd[T], error) {
	return NewPooling2DFwd[T](desc)
}

// windows computes the clamped input window of each of the out positions.
func windows(out, in, kernel, stride, padL int) []window {
	ws := make([]window, out)
	for o := range ws {
		start := o*stride - padL
		end := start + kernel
		ws[o] = window{start: max(start, 0), end: min(end, in)}
	}
	return ws
}

// Descriptor returns the descriptor the primitive was built for.
func (p *Pooling2DFwd[T]) Descriptor() primitive.Pooling2DFwdDescriptor {
	return p.desc
}

// Release marks the primitive unusable. Executions already running finish normally.
func (p *Pooling2DFwd[T]) Release() {
	p.released.Store(true)
}

// Released reports whether Release has been called.
func (p *Pooling2DFwd[T]) Released() bool {
	return p.released.Load()
}

// Execute pools src into a new tensor of the primitive's Dst shape.
//
// For max pooling the returned workspace holds, per output element, the flat
// index into src of the selected maximum. Average pooling returns a nil
// workspace.
func (p *Pooling2DFwd[T]) Execute(src *tensor.RawTensor) (*tensor.RawTensor, []int, error) {
	if p.Released() {
		return nil, nil, ErrReleased
	}
	if !src.Shape().Equal(p.desc.Src) {
		return nil, nil, fmt.Errorf("cpu: pooling src shape %v, primitive built for %v", src.Shape(), p.desc.Src)
	}
	if want := tensor.DataTypeOf[T](); src.DType() != want {
		return nil, nil, fmt.Errorf("cpu: pooling src dtype %s, primitive built for %s", src.DType(), want)
	}

	dst, err := tensor.NewRaw(p.desc.Dst, src.DType(), src.Device())
	if err != nil {
		return nil, nil, fmt.Errorf("cpu: pooling dst: %w", err)
	}

	var workspace []int
	if p.desc.Alg == primitive.PoolingMax {
		workspace = make([]int, dst.NumElements())
	}
	p.ExecuteInto(tensor.AsSlice[T](src), tensor.AsSlice[T](dst), workspace)
	return dst, workspace, nil
}

// ExecuteInto pools src into dst. Slices must hold exactly Src and Dst
// elements; workspace may be nil, otherwise it must hold Dst elements and
// receives argmax indices for max pooling.
func (p *Pooling2DFwd[T]) ExecuteInto(src, dst []T, workspace []int) {
	N, C := p.desc.Src[0], p.desc.Src[1]
	H, W := p.desc.Src[2], p.desc.Src[3]
	HOut, WOut := p.desc.Dst[2], p.desc.Dst[3]

	if len(src) != N*C*H*W || len(dst) != N*C*HOut*WOut {
		panic(fmt.Sprintf("pooling2d: buffer sizes src=%d dst=%d do not match %v -> %v",
			len(src), len(dst), p.desc.Src, p.desc.Dst))
	}
	if workspace != nil && len(workspace) != len(dst) {
		panic(fmt.Sprintf("pooling2d: workspace holds %d indices, need %d", len(workspace), len(dst)))
	}

	// Planes are independent; work per plane is one read per window element.
	planeWork := HOut * WOut * p.desc.KernelH * p.desc.KernelW
	parallel.For(N*C, planeWork, func(plane int) {
		p.poolPlane(plane, src, dst, workspace)
	}, p.par)
}

// poolPlane pools one (n, c) plane.
func (p *Pooling2DFwd[T]) poolPlane(plane int, src, dst []T, workspace []int) {
	W := p.desc.Src[3]
	planeSize, rowStride := p.srcStrides[1], p.srcStrides[2]
	outRowStride := p.dstStrides[2]
	kernelArea := T(p.desc.KernelH * p.desc.KernelW)

	// Pre-slice channel plane: eliminates plane offset bounds checks
	planeOffset := plane * planeSize
	planeData := src[planeOffset : planeOffset+planeSize]
	outOffset := plane * p.dstStrides[1]

	for oh, rw := range p.rows {
		for ow, cw := range p.cols {
			outIdx := outOffset + oh*outRowStride + ow

			switch p.desc.Alg {
			case primitive.PoolingMax:
				maxIdx := rw.start*rowStride + cw.start
				maxVal := planeData[maxIdx]
				for h := rw.start; h < rw.end; h++ {
					rowData := planeData[h*rowStride : h*rowStride+W]
					for w := cw.start; w < cw.end; w++ {
						if rowData[w] > maxVal {
							maxVal = rowData[w]
							maxIdx = h*rowStride + w
						}
					}
				}
				dst[outIdx] = maxVal
				if workspace != nil {
					workspace[outIdx] = planeOffset + maxIdx
				}

			default:
				var sum T
				for h := rw.start; h < rw.end; h++ {
					rowData := planeData[h*rowStride : h*rowStride+W]
					for w := cw.start; w < cw.end; w++ {
						sum += rowData[w]
					}
				}
				if p.desc.Alg == primitive.PoolingAvgIncludePadding {
					dst[outIdx] = sum / kernelArea
				} else {
					dst[outIdx] = sum / T((rw.end-rw.start)*(cw.end-cw.start))
				}
			}
		}
	}
}
