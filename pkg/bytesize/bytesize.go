// Package bytesize provides human-friendly byte size formatting.
package bytesize

import (
	"fmt"
	"strconv"
)

// Unit boundaries, 1024-based.
const (
	KB int64 = 1 << 10
	MB int64 = 1 << 20
	GB int64 = 1 << 30
	TB int64 = 1 << 40
)

// Format renders a byte count as a human-friendly string.
//
// Values below 1 KB are rendered as plain bytes; everything else uses one
// decimal place with the largest fitting unit.
//
// Examples:
//
//	Format(512)        // "512 B"
//	Format(536870912)  // "512.0 MB"
//	Format(1610612736) // "1.5 GB"
func Format(n int64) string {
	if n < 0 {
		n = 0
	}

	switch {
	case n < KB:
		return strconv.FormatInt(n, 10) + " B"
	case n < MB:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(KB))
	case n < GB:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(MB))
	case n < TB:
		return fmt.Sprintf("%.1f GB", float64(n)/float64(GB))
	default:
		return fmt.Sprintf("%.1f TB", float64(n)/float64(TB))
	}
}
