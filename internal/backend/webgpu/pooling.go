//go:build windows

package webgpu

import (
	"context"
	"fmt"

	"github.com/born-ml/primcache/internal/primitive"
	"github.com/born-ml/primcache/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// poolingPipeline is a compiled pooling-forward primitive: a shader module
// specialized for one descriptor and the compute pipeline built from it.
type poolingPipeline struct {
	desc     primitive.Pooling2DFwdDescriptor
	shader   *wgpu.ShaderModule
	pipeline *wgpu.ComputePipeline
}

// Release frees the pipeline and its shader module.
func (p *poolingPipeline) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.shader != nil {
		p.shader.Release()
		p.shader = nil
	}
}

// buildPoolingPipeline compiles the pooling shader for desc.
func (b *Backend) buildPoolingPipeline(_ context.Context, desc primitive.Pooling2DFwdDescriptor) (*poolingPipeline, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	shader := b.device.CreateShaderModuleWGSL(pooling2dShader(desc))
	if shader == nil {
		return nil, fmt.Errorf("webgpu: failed to compile pooling shader")
	}
	// Create compute pipeline with auto layout (nil layout)
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")
	if pipeline == nil {
		shader.Release()
		return nil, fmt.Errorf("webgpu: failed to create pooling pipeline")
	}

	desc.Src = desc.Src.Clone()
	desc.Dst = desc.Dst.Clone()
	return &poolingPipeline{desc: desc, shader: shader, pipeline: pipeline}, nil
}

// Pooling2D performs 2D pooling on the GPU. Only float32 is supported.
func (b *Backend) Pooling2D(input *tensor.RawTensor, params primitive.Pooling2DParams) *tensor.RawTensor {
	result, err := b.runPooling2D(input, params)
	if err != nil {
		panic("webgpu: Pooling2D: " + err.Error())
	}
	return result
}

// MaxPool2D performs 2D max pooling with a square window and no padding.
func (b *Backend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	return b.Pooling2D(input, primitive.Pooling2DParams{
		KernelH: kernelSize, KernelW: kernelSize,
		StrideY: stride, StrideX: stride,
		Alg: primitive.PoolingMax,
	})
}

func (b *Backend) runPooling2D(input *tensor.RawTensor, params primitive.Pooling2DParams) (*tensor.RawTensor, error) {
	if input.DType() != tensor.Float32 {
		return nil, fmt.Errorf("webgpu: only float32 is supported, got %s", input.DType())
	}

	desc, err := params.Descriptor(input.Shape())
	if err != nil {
		return nil, err
	}

	op, err := b.pipelines.GetOrCreate(context.Background(), desc, b.buildPoolingPipeline)
	if err != nil {
		return nil, err
	}

	result, err := tensor.NewRaw(desc.Dst, tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}

	data, err := b.dispatch(op, input.Data(), uint64(result.ByteSize()), result.NumElements())
	if err != nil {
		return nil, err
	}
	copy(result.Data(), data)
	return result, nil
}
