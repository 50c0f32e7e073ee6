// Package cpu implements the CPU backend: pooling primitives and the
// per-backend caches that keep them across iterations.
package cpu

import (
	"github.com/born-ml/primcache/internal/primitive"
	"github.com/born-ml/primcache/internal/tensor"
)

// CPUBackend executes pooling on CPU. Each backend owns its primitive
// caches, one per element type; primitives are never shared across backends.
type CPUBackend struct {
	device tensor.Device

	pooling32 *primitive.Pooling2DFwdFactory[*Pooling2DFwd[float32]]
	pooling64 *primitive.Pooling2DFwdFactory[*Pooling2DFwd[float64]]
}

// New creates a new CPU backend with default configuration.
func New() *CPUBackend {
	return NewWithConfig(primitive.Config{})
}

// NewWithConfig creates a CPU backend whose primitive caches use cfg.
func NewWithConfig(cfg primitive.Config) *CPUBackend {
	return &CPUBackend{
		device:    tensor.CPU,
		pooling32: primitive.NewPooling2DFwdFactory[*Pooling2DFwd[float32]](cfg),
		pooling64: primitive.NewPooling2DFwdFactory[*Pooling2DFwd[float64]](cfg),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// PrimitiveStats returns the combined pooling cache statistics.
func (cpu *CPUBackend) PrimitiveStats() primitive.Stats {
	a, b := cpu.pooling32.Stats(), cpu.pooling64.Stats()
	return primitive.Stats{
		Entries:     a.Entries + b.Entries,
		Hits:        a.Hits + b.Hits,
		Misses:      a.Misses + b.Misses,
		Stores:      a.Stores + b.Stores,
		Builds:      a.Builds + b.Builds,
		BuildErrors: a.BuildErrors + b.BuildErrors,
	}
}

// Pooling2DFwdFactory32 exposes the float32 pooling cache.
func (cpu *CPUBackend) Pooling2DFwdFactory32() *primitive.Pooling2DFwdFactory[*Pooling2DFwd[float32]] {
	return cpu.pooling32
}

// Pooling2DFwdFactory64 exposes the float64 pooling cache.
func (cpu *CPUBackend) Pooling2DFwdFactory64() *primitive.Pooling2DFwdFactory[*Pooling2DFwd[float64]] {
	return cpu.pooling64
}

// Release releases every cached primitive. The backend stays usable and
// rebuilds primitives on demand.
func (cpu *CPUBackend) Release() {
	cpu.pooling32.Release()
	cpu.pooling64.Release()
}
