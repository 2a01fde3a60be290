package entities

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultGeneration is the label given to an anchor without a usable label.
const DefaultGeneration = "G1"

// offsetBase is the generation assumed when an offset is computed from an
// unreadable label.
const offsetBase = 0

var reGeneration = regexp.MustCompile(`^G(-?\d+)$`)

// ParseGeneration extracts the integer of a G<integer> label.
func ParseGeneration(label string) (int, bool) {
	m := reGeneration.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatGeneration renders n as a generation label.
func FormatGeneration(n int) string {
	return "G" + strconv.Itoa(n)
}

// AnchorGeneration returns label when it is well formed, DefaultGeneration otherwise.
func AnchorGeneration(label string) string {
	if n, ok := ParseGeneration(label); ok {
		return FormatGeneration(n)
	}
	return DefaultGeneration
}

// ShiftGeneration moves label by delta generations. An unreadable label is
// treated as G0 before shifting, and so is one whose shift would overflow int.
func ShiftGeneration(label string, delta int) string {
	n, ok := ParseGeneration(label)
	if !ok || overflows(n, delta) {
		n = offsetBase
	}
	return FormatGeneration(n + delta)
}

func overflows(n, delta int) bool {
	return (delta > 0 && n > math.MaxInt-delta) || (delta < 0 && n < math.MinInt-delta)
}

// PreviousGeneration is the generation of label's parents.
func PreviousGeneration(label string) string {
	return ShiftGeneration(label, -1)
}

// NextGeneration is the generation of label's children.
func NextGeneration(label string) string {
	return ShiftGeneration(label, 1)
}
