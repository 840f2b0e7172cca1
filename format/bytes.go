package format

import "fmt"

const (
	Byte     = 1
	KibiByte = Byte * 1024
	MebiByte = KibiByte * 1024
	GibiByte = MebiByte * 1024
)

// HumanBytes formats b with binary units. Whole values print without a
// fraction, others with one decimal place.
func HumanBytes(b int64) string {
	var unit string
	var size int64
	switch {
	case b >= GibiByte:
		unit, size = "GiB", GibiByte
	case b >= MebiByte:
		unit, size = "MiB", MebiByte
	case b >= KibiByte:
		unit, size = "KiB", KibiByte
	default:
		return fmt.Sprintf("%d B", b)
	}

	if b%size == 0 {
		return fmt.Sprintf("%d %s", b/size, unit)
	}

	return fmt.Sprintf("%.1f %s", float64(b)/float64(size), unit)
}
