package fsutils

import "fmt"

var sizeUnits = []string{"KB", "MB", "GB", "TB"}

// FormatSize renders size in a fixed-width column: the integer part of the
// value in the largest unit that keeps it at or above 1, right-aligned to
// three digits. Bytes get an extra space so every unit has the same width.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%3d  B", size)
	}
	div, exp := int64(unit), 0
	for size/div >= unit && exp < len(sizeUnits)-1 {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%3d %s", size/div, sizeUnits[exp])
}
