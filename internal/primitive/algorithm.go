package primitive

import "fmt"

// Algorithm selects the reduction a pooling primitive applies over a window.
// The integer codes are part of the cache key and must stay stable.
type Algorithm int

const (
	// PoolingMax takes the window maximum.
	PoolingMax Algorithm = iota
	// PoolingAvgIncludePadding averages over the full kernel area,
	// counting padded positions as zeros.
	PoolingAvgIncludePadding
	// PoolingAvgExcludePadding averages over the in-bounds part of the window only.
	PoolingAvgExcludePadding
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case PoolingMax:
		return "pooling_max"
	case PoolingAvgIncludePadding:
		return "pooling_avg_include_padding"
	case PoolingAvgExcludePadding:
		return "pooling_avg_exclude_padding"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// Valid reports whether a is a known algorithm.
func (a Algorithm) Valid() bool {
	return a >= PoolingMax && a <= PoolingAvgExcludePadding
}

// ParseAlgorithm converts a name ("max", "avg", "avg_exclude_padding" or
// the full String form) to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "max", "pooling_max":
		return PoolingMax, nil
	case "avg", "avg_include_padding", "pooling_avg_include_padding":
		return PoolingAvgIncludePadding, nil
	case "avg_exclude_padding", "pooling_avg_exclude_padding":
		return PoolingAvgExcludePadding, nil
	default:
		return 0, fmt.Errorf("primitive: unknown pooling algorithm %q", name)
	}
}
