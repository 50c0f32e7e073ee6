// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for pooling.
//
// # Overview
//
// This package implements:
//   - Max and average 2D pooling with per-side padding
//   - Float32 and Float64 support
//   - A per-backend primitive cache keyed by shape and pooling geometry
//   - Gradients for max pooling (argmax workspace) and average pooling
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/primcache/backend/cpu"
//	    "github.com/born-ml/primcache/primitive"
//	    "github.com/born-ml/primcache/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x, _ := tensor.NewRaw(tensor.Shape{1, 3, 224, 224}, tensor.Float32, tensor.CPU)
//
//	    // First call builds a primitive, later calls reuse it.
//	    y := backend.Pooling2D(x, primitive.Pooling2DParams{
//	        KernelH: 3, KernelW: 3,
//	        StrideY: 2, StrideX: 2,
//	        PadBottom: 1, PadRight: 1,
//	        Alg: primitive.PoolingMax,
//	    })
//	    _ = y
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Concurrent calls that miss on
// the same configuration share a single primitive construction.
package cpu
