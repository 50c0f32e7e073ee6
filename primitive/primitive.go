// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package primitive exposes the shape-keyed primitive cache.
//
// A backend describes each pooling configuration with a
// Pooling2DFwdDescriptor, looks the primitive up and, on a miss, constructs
// and stores it:
//
//	factory := primitive.NewPooling2DFwdFactory[*MyOp](primitive.Config{})
//	op, ok := factory.Get(desc)
//	if !ok {
//	    op = buildMyOp(desc)
//	    factory.Set(desc, op)
//	}
//
// GetOrCreate folds these steps into one call and builds at most once per
// key when called concurrently.
package primitive

import (
	"log/slog"

	"github.com/born-ml/primcache/internal/primitive"
)

// Key identifies a cached primitive.
type Key = primitive.Key

// KeyBuilder accumulates primitive parameters into a Key.
type KeyBuilder = primitive.KeyBuilder

// Algorithm selects the pooling reduction.
type Algorithm = primitive.Algorithm

// Pooling algorithms.
const (
	PoolingMax               = primitive.PoolingMax
	PoolingAvgIncludePadding = primitive.PoolingAvgIncludePadding
	PoolingAvgExcludePadding = primitive.PoolingAvgExcludePadding
)

// Pooling2DFwdFamily is the key family of pooling-forward primitives.
const Pooling2DFwdFamily = primitive.Pooling2DFwdFamily

// Pooling2DFwdDescriptor characterizes a 2D pooling-forward primitive.
type Pooling2DFwdDescriptor = primitive.Pooling2DFwdDescriptor

// Pooling2DParams describes pooling independent of the input shape.
type Pooling2DParams = primitive.Pooling2DParams

// Config configures a cache.
type Config = primitive.Config

// Stats is a snapshot of cache activity.
type Stats = primitive.Stats

// Releaser is implemented by primitives holding explicitly freed resources.
type Releaser = primitive.Releaser

// Cache maps keys to primitive handles.
type Cache[P any] = primitive.Cache[P]

// Pooling2DFwdFactory memoizes pooling-forward primitives by descriptor.
type Pooling2DFwdFactory[P any] = primitive.Pooling2DFwdFactory[P]

// Errors.
var (
	ErrInvalidDescriptor = primitive.ErrInvalidDescriptor
	ErrNilBuilder        = primitive.ErrNilBuilder
)

// NewKeyBuilder starts a key for the given operation family.
func NewKeyBuilder(family string) *KeyBuilder {
	return primitive.NewKeyBuilder(family)
}

// NewCache creates an empty cache.
func NewCache[P any](cfg Config) *Cache[P] {
	return primitive.NewCache[P](cfg)
}

// NewPooling2DFwdFactory creates an empty pooling-forward factory.
func NewPooling2DFwdFactory[P any](cfg Config) *Pooling2DFwdFactory[P] {
	return primitive.NewPooling2DFwdFactory[P](cfg)
}

// ParseAlgorithm converts a pooling algorithm name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	return primitive.ParseAlgorithm(name)
}

// OutputDim computes a pooled spatial extent.
func OutputDim(in, kernel, stride, padL, padR int) int {
	return primitive.OutputDim(in, kernel, stride, padL, padR)
}

// SetLogger configures logging for primitive caches and backends.
// By default nothing is logged.
func SetLogger(l *slog.Logger) {
	primitive.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return primitive.Logger()
}
