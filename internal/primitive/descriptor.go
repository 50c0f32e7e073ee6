package primitive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/primcache/internal/tensor"
)

// Pooling2DFwdFamily is the key family of pooling-forward primitives.
const Pooling2DFwdFamily = "pooling2d_fwd_"

// Pooling2DFwdDescriptor characterizes a 2D pooling-forward primitive.
//
// Src and Dst are NCHW shapes. Padding is given per side: PadLH/PadLW pad the
// top/left edges, PadRH/PadRW the bottom/right edges.
type Pooling2DFwdDescriptor struct {
	Src tensor.Shape
	Dst tensor.Shape

	KernelH, KernelW int
	StrideY, StrideX int

	PadLH, PadLW int
	PadRH, PadRW int

	Alg Algorithm
}

// Key derives the cache key. Equal descriptors always produce equal keys.
func (d Pooling2DFwdDescriptor) Key() Key {
	return NewKeyBuilder(Pooling2DFwdFamily).
		Shape(d.Src).
		Shape(d.Dst).
		Int(d.KernelH, d.KernelW).
		Int(d.StrideY, d.StrideX).
		Int(d.PadLH, d.PadLW, d.PadRH, d.PadRW).
		Int(int(d.Alg)).
		Build()
}

// LegacyKey renders the delimiter-free key format where every dimension and
// scalar is concatenated back to back. Distinct descriptors can share a
// LegacyKey (dims [1,23] and [12,3] both render "123"), so it is never used
// for lookups. Pooling2DFwdFactory logs it next to the structured key when it
// constructs a primitive, to correlate with logs in the legacy format.
func (d Pooling2DFwdDescriptor) LegacyKey() string {
	var sb strings.Builder
	sb.WriteString(Pooling2DFwdFamily)
	for _, dim := range d.Src {
		sb.WriteString(strconv.Itoa(dim))
	}
	for _, dim := range d.Dst {
		sb.WriteString(strconv.Itoa(dim))
	}
	for _, v := range []int{
		d.KernelH, d.KernelW, d.StrideY, d.StrideX,
		d.PadLH, d.PadLW, d.PadRH, d.PadRW, int(d.Alg),
	} {
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// Validate checks that the descriptor describes a constructible primitive:
// 4D shapes, positive window and stride, non-negative padding, matching
// batch and channel counts, and a Dst consistent with the pooling geometry.
func (d Pooling2DFwdDescriptor) Validate() error {
	if len(d.Src) != 4 {
		return fmt.Errorf("%w: expected 4D src [N,C,H,W], got %dD", ErrInvalidDescriptor, len(d.Src))
	}
	if len(d.Dst) != 4 {
		return fmt.Errorf("%w: expected 4D dst [N,C,H,W], got %dD", ErrInvalidDescriptor, len(d.Dst))
	}
	if err := d.Src.Validate(); err != nil {
		return fmt.Errorf("%w: src: %w", ErrInvalidDescriptor, err)
	}
	if err := d.Dst.Validate(); err != nil {
		return fmt.Errorf("%w: dst: %w", ErrInvalidDescriptor, err)
	}
	if d.KernelH <= 0 || d.KernelW <= 0 {
		return fmt.Errorf("%w: invalid kernel %dx%d", ErrInvalidDescriptor, d.KernelH, d.KernelW)
	}
	if d.StrideY <= 0 || d.StrideX <= 0 {
		return fmt.Errorf("%w: invalid stride %dx%d", ErrInvalidDescriptor, d.StrideY, d.StrideX)
	}
	if d.PadLH < 0 || d.PadLW < 0 || d.PadRH < 0 || d.PadRW < 0 {
		return fmt.Errorf("%w: negative padding (%d,%d,%d,%d)",
			ErrInvalidDescriptor, d.PadLH, d.PadLW, d.PadRH, d.PadRW)
	}
	// A window lying entirely in padding has no defined value.
	if d.PadLH >= d.KernelH || d.PadLW >= d.KernelW || d.PadRH >= d.KernelH || d.PadRW >= d.KernelW {
		return fmt.Errorf("%w: padding (%d,%d,%d,%d) must be smaller than kernel %dx%d",
			ErrInvalidDescriptor, d.PadLH, d.PadLW, d.PadRH, d.PadRW, d.KernelH, d.KernelW)
	}
	if !d.Alg.Valid() {
		return fmt.Errorf("%w: unknown algorithm %d", ErrInvalidDescriptor, int(d.Alg))
	}
	if d.Src[0] != d.Dst[0] || d.Src[1] != d.Dst[1] {
		return fmt.Errorf("%w: batch/channels mismatch: src %v, dst %v", ErrInvalidDescriptor, d.Src, d.Dst)
	}

	outH := OutputDim(d.Src[2], d.KernelH, d.StrideY, d.PadLH, d.PadRH)
	outW := OutputDim(d.Src[3], d.KernelW, d.StrideX, d.PadLW, d.PadRW)
	if outH <= 0 || outW <= 0 {
		return fmt.Errorf("%w: kernel %dx%d too large for input %dx%d",
			ErrInvalidDescriptor, d.KernelH, d.KernelW, d.Src[2], d.Src[3])
	}
	if d.Dst[2] != outH || d.Dst[3] != outW {
		return fmt.Errorf("%w: dst spatial size %dx%d, geometry gives %dx%d",
			ErrInvalidDescriptor, d.Dst[2], d.Dst[3], outH, outW)
	}
	return nil
}

// OutputDim computes a pooled spatial extent:
//
//	out = (in + padL + padR - kernel) / stride + 1
//
// A non-positive result means the window does not fit.
func OutputDim(in, kernel, stride, padL, padR int) int {
	span := in + padL + padR - kernel
	if span < 0 {
		return 0
	}
	return span/stride + 1
}
