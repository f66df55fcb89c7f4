package dao

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// parseSizeValue parses a size that is either a number of bytes or a
// human-readable string such as "64MB" or "1GiB".
func parseSizeValue(v any) (uint64, error) {
	switch x := v.(type) {
	case int:
		if x < 0 {
			return 0, fmt.Errorf("negative size: %d", x)
		}

		return uint64(x), nil
	case int64:
		if x < 0 {
			return 0, fmt.Errorf("negative size: %d", x)
		}

		return uint64(x), nil
	case uint64:
		return x, nil
	case uint:
		return uint64(x), nil
	case float64:
		if x < 0 {
			return 0, fmt.Errorf("negative size: %f", x)
		}

		if math.Trunc(x) != x {
			return 0, fmt.Errorf("size must be a whole number of bytes: %f", x)
		}

		return uint64(x), nil
	case string:
		size, err := humanize.ParseBytes(x)
		if err != nil {
			return 0, fmt.Errorf("invalid size string %q: %w", x, err)
		}

		return size, nil
	default:
		return 0, fmt.Errorf("unsupported size type: %T", x)
	}
}

// sizeToInt64 parses v and rejects sizes that do not fit an int64.
// A nil v is zero, which disables the corresponding cap.
func sizeToInt64(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}

	size, err := parseSizeValue(v)
	if err != nil {
		return 0, err
	}

	if size > math.MaxInt64 {
		return 0, fmt.Errorf("size too large: %d", size)
	}

	return int64(size), nil
}

// sizeValuesEqual checks if two size values describe the same number of bytes.
func sizeValuesEqual(a, b any) bool {
	left, err := sizeToInt64(a)
	if err != nil {
		return false
	}

	right, err := sizeToInt64(b)
	if err != nil {
		return false
	}

	return left == right
}
