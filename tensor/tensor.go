// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types pooling primitives run on.
//
// Example:
//
//	x, err := tensor.FromSlice(tensor.Shape{1, 1, 2, 2}, []float32{1, 2, 3, 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	y := cpu.New().MaxPool2D(x, 2, 2) // [1, 1, 1, 1] holding 4
package tensor

import (
	"github.com/born-ml/primcache/internal/tensor"
)

// Float is the element type constraint for pooling: float32 or float64.
type Float = tensor.Float

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{1, 3, 224, 224} is one 3-channel 224x224 image in NCHW layout.
type Shape = tensor.Shape

// RawTensor is the low-level tensor: a contiguous row-major buffer with
// shape and runtime type information.
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice creates a CPU tensor holding a copy of values.
func FromSlice[T Float](shape Shape, values []T) (*RawTensor, error) {
	return tensor.FromSlice(shape, values)
}

// AsSlice returns the tensor data as []T without copying.
// Panics if T does not match the tensor's dtype.
func AsSlice[T Float](r *RawTensor) []T {
	return tensor.AsSlice[T](r)
}
