// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/primcache/internal/backend/cpu"
	"github.com/born-ml/primcache/primitive"
	"github.com/born-ml/primcache/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Pooling2DFwd is a constructed CPU pooling-forward primitive.
type Pooling2DFwd[T tensor.Float] = internalcpu.Pooling2DFwd[T]

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	y := backend.MaxPool2D(x, 2, 2)
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend whose primitive caches log to
// cfg.Logger and report metrics to cfg.MeterProvider.
func NewWithConfig(cfg primitive.Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// NewPooling2DFwd constructs a standalone pooling-forward primitive.
func NewPooling2DFwd[T tensor.Float](desc primitive.Pooling2DFwdDescriptor) (*Pooling2DFwd[T], error) {
	return internalcpu.NewPooling2DFwd[T](desc)
}
