// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/primcache/internal/primitive"
)

// Backend defines the pooling operations every compute backend implements.
//
// Implementations:
//   - backend/cpu: Pure Go, float32 and float64
//   - backend/webgpu: GPU compute via WebGPU, float32 (windows)
//
// Backends keep constructed primitives in their own cache, so repeated
// pooling over the same shapes skips primitive construction.
type Backend interface {
	// Name returns the backend name.
	Name() string

	// Device returns the compute device.
	Device() Device

	// Pooling2D pools an NCHW input with the given parameters.
	Pooling2D(input *RawTensor, params primitive.Pooling2DParams) *RawTensor

	// MaxPool2D is Pooling2D with a square max window and no padding.
	MaxPool2D(input *RawTensor, kernelSize, stride int) *RawTensor

	// PrimitiveStats reports the backend's primitive cache activity.
	PrimitiveStats() primitive.Stats
}
