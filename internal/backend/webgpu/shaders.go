//go:build windows

package webgpu

import (
	"fmt"

	"github.com/born-ml/primcache/internal/primitive"
)

const workgroupSize = 256

// pooling2dShaderTemplate performs 2D pooling over NCHW float32 data, one
// invocation per output element. The geometry is substituted as constants
// so each pipeline is specialized for one descriptor.
const pooling2dShaderTemplate = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> output: array<f32>;

const PLANES: i32 = %d;
const H: i32 = %d;
const W: i32 = %d;
const OH: i32 = %d;
const OW: i32 = %d;
const KH: i32 = %d;
const KW: i32 = %d;
const SY: i32 = %d;
const SX: i32 = %d;
const PT: i32 = %d;
const PL: i32 = %d;
const ALG: i32 = %d;

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = i32(global_id.x);
    if (idx >= PLANES * OH * OW) {
        return;
    }

    let plane = idx / (OH * OW);
    let oh = (idx / OW) %% OH;
    let ow = idx %% OW;

    let h0 = max(oh * SY - PT, 0);
    let h1 = min(oh * SY - PT + KH, H);
    let w0 = max(ow * SX - PL, 0);
    let w1 = min(ow * SX - PL + KW, W);

    var max_val: f32 = -3.402823e+38; // -FLT_MAX
    var sum: f32 = 0.0;
    for (var h: i32 = h0; h < h1; h = h + 1) {
        for (var w: i32 = w0; w < w1; w = w + 1) {
            let v = input[plane * H * W + h * W + w];
            max_val = max(max_val, v);
            sum = sum + v;
        }
    }

    if (ALG == 0) {
        output[idx] = max_val;
    } else if (ALG == 1) {
        output[idx] = sum / f32(KH * KW);
    } else {
        output[idx] = sum / f32((h1 - h0) * (w1 - w0));
    }
}
`

// pooling2dShader renders the pooling shader for desc.
func pooling2dShader(desc primitive.Pooling2DFwdDescriptor) string {
	return fmt.Sprintf(pooling2dShaderTemplate,
		desc.Src[0]*desc.Src[1], desc.Src[2], desc.Src[3],
		desc.Dst[2], desc.Dst[3],
		desc.KernelH, desc.KernelW,
		desc.StrideY, desc.StrideX,
		desc.PadLH, desc.PadLW,
		int(desc.Alg),
		workgroupSize,
	)
}
