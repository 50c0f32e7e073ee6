// Package main provides the primcache CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/born-ml/primcache/backend/cpu"
	"github.com/born-ml/primcache/primitive"
	"github.com/born-ml/primcache/tensor"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const version = "v0.1.0-dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "primcache:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "primcache %s\n", version)
		return nil
	case "bench":
		return bench(args[1:], out)
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "primcache - shape-keyed pooling primitive cache")
	fmt.Fprintf(out, "Version: %s\n\n", version)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  version    Show version")
	fmt.Fprintln(out, "  bench      Run pooling over repeating shapes and report cache activity")
}

// benchConfig holds the bench command options.
type benchConfig struct {
	shapes  []tensor.Shape
	params  primitive.Pooling2DParams
	iters   int
	metrics bool
	verbose bool
}

func parseBenchFlags(args []string, out io.Writer) (benchConfig, error) {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.SetOutput(out)

	shapes := fs.String("shapes", "1x3x224x224,8x64x56x56", "comma-separated NCHW input shapes, dims joined by x")
	kernel := fs.Int("kernel", 3, "square kernel size")
	stride := fs.Int("stride", 2, "stride in both axes")
	pad := fs.String("pad", "0,0,1,1", "padding top,left,bottom,right")
	alg := fs.String("alg", "max", "pooling algorithm: max, avg, avg_exclude_padding")
	iters := fs.Int("iters", 10, "iterations over the shape list")
	metrics := fs.Bool("metrics", false, "print OpenTelemetry cache metrics to stdout")
	verbose := fs.Bool("v", false, "debug logging to stderr")

	if err := fs.Parse(args); err != nil {
		return benchConfig{}, err
	}

	cfg := benchConfig{iters: *iters, metrics: *metrics, verbose: *verbose}
	if cfg.iters <= 0 {
		return cfg, fmt.Errorf("iters must be positive, got %d", cfg.iters)
	}

	for _, s := range strings.Split(*shapes, ",") {
		shape, err := parseShape(s)
		if err != nil {
			return cfg, err
		}
		cfg.shapes = append(cfg.shapes, shape)
	}

	padding, err := parseInts(*pad, ",")
	if err != nil || len(padding) != 4 {
		return cfg, fmt.Errorf("pad must be four integers, got %q", *pad)
	}

	algorithm, err := primitive.ParseAlgorithm(*alg)
	if err != nil {
		return cfg, err
	}

	cfg.params = primitive.Pooling2DParams{
		KernelH: *kernel, KernelW: *kernel,
		StrideY: *stride, StrideX: *stride,
		PadTop: padding[0], PadLeft: padding[1],
		PadBottom: padding[2], PadRight: padding[3],
		Alg: algorithm,
	}
	return cfg, nil
}

func parseShape(s string) (tensor.Shape, error) {
	dims, err := parseInts(strings.TrimSpace(s), "x")
	if err != nil {
		return nil, fmt.Errorf("shape %q: %w", s, err)
	}
	if len(dims) != 4 {
		return nil, fmt.Errorf("shape %q: expected 4 dims (NCHW), got %d", s, len(dims))
	}
	shape := tensor.Shape(dims)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("shape %q: %w", s, err)
	}
	return shape, nil
}

func parseInts(s, sep string) ([]int, error) {
	parts := strings.Split(s, sep)
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func bench(args []string, out io.Writer) (err error) {
	cfg, err := parseBenchFlags(args, out)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if cfg.verbose {
		primitive.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer primitive.SetLogger(nil)
	}

	var backendCfg primitive.Config
	if cfg.metrics {
		exp, expErr := stdoutmetric.New(stdoutmetric.WithWriter(out))
		if expErr != nil {
			return fmt.Errorf("metrics exporter: %w", expErr)
		}
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
		backendCfg.MeterProvider = mp

		// Shutdown flushes the final collection through the exporter.
		defer func() {
			if shutdownErr := mp.Shutdown(context.Background()); shutdownErr != nil && err == nil {
				err = fmt.Errorf("metrics shutdown: %w", shutdownErr)
			}
		}()
	}

	backend := cpu.NewWithConfig(backendCfg)
	defer backend.Release()

	inputs := make([]*tensor.RawTensor, len(cfg.shapes))
	for i, shape := range cfg.shapes {
		if inputs[i], err = tensor.NewRaw(shape, tensor.Float32, tensor.CPU); err != nil {
			return err
		}
		if _, err = cfg.params.Descriptor(shape); err != nil {
			return fmt.Errorf("shape %v: %w", shape, err)
		}
	}

	start := time.Now()
	for i := 0; i < cfg.iters; i++ {
		for _, input := range inputs {
			backend.Pooling2D(input, cfg.params)
		}
	}
	elapsed := time.Since(start)

	stats := backend.PrimitiveStats()
	fmt.Fprintf(out, "runs:        %d\n", cfg.iters*len(inputs))
	fmt.Fprintf(out, "elapsed:     %s\n", elapsed)
	fmt.Fprintf(out, "primitives:  %d\n", stats.Entries)
	fmt.Fprintf(out, "builds:      %d\n", stats.Builds)
	fmt.Fprintf(out, "hits:        %d\n", stats.Hits)
	fmt.Fprintf(out, "misses:      %d\n", stats.Misses)
	fmt.Fprintf(out, "hit rate:    %.2f\n", stats.HitRate())
	return nil
}
