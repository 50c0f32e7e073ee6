package primitive

import (
	"fmt"

	"github.com/born-ml/primcache/internal/tensor"
)

// Pooling2DParams describes a pooling operation independent of the input
// shape. Padding is given per side.
type Pooling2DParams struct {
	KernelH, KernelW int
	StrideY, StrideX int
	PadTop, PadLeft  int
	PadBottom        int
	PadRight         int
	Alg              Algorithm
}

// Descriptor builds and validates the descriptor for pooling an input of
// the given NCHW shape.
func (p Pooling2DParams) Descriptor(src tensor.Shape) (Pooling2DFwdDescriptor, error) {
	if len(src) != 4 {
		return Pooling2DFwdDescriptor{}, fmt.Errorf("%w: expected 4D input [N,C,H,W], got %dD",
			ErrInvalidDescriptor, len(src))
	}
	desc := Pooling2DFwdDescriptor{
		Src: src,
		Dst: tensor.Shape{
			src[0], src[1],
			OutputDim(src[2], p.KernelH, max(p.StrideY, 1), p.PadTop, p.PadBottom),
			OutputDim(src[3], p.KernelW, max(p.StrideX, 1), p.PadLeft, p.PadRight),
		},
		KernelH: p.KernelH, KernelW: p.KernelW,
		StrideY: p.StrideY, StrideX: p.StrideX,
		PadLH: p.PadTop, PadLW: p.PadLeft,
		PadRH: p.PadBottom, PadRW: p.PadRight,
		Alg: p.Alg,
	}
	return desc, desc.Validate()
}
