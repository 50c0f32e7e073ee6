//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend for GPU-accelerated pooling.
//
// Example:
//
//	gpu, err := webgpu.New(primitive.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Release()
//
//	y := gpu.MaxPool2D(x, 2, 2)
package webgpu

import (
	internalwebgpu "github.com/born-ml/primcache/internal/backend/webgpu"
	"github.com/born-ml/primcache/primitive"
	"github.com/born-ml/primcache/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new WebGPU backend. Call Release when done to free GPU
// resources. Returns an error if no compatible GPU is present.
func New(cfg primitive.Config) (*Backend, error) {
	return internalwebgpu.New(cfg)
}

// IsAvailable checks if WebGPU is available on the current system.
//
// Example:
//
//	var backend tensor.Backend = cpu.New()
//	if webgpu.IsAvailable() {
//	    if gpu, err := webgpu.New(primitive.Config{}); err == nil {
//	        backend = gpu
//	    }
//	}
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
