package enums

import (
	"fmt"
	"strings"
)

// SizeRange is the grade of sizes a reference is produced in.
type SizeRange string

const (
	SizeRangePToGG  SizeRange = "P_to_GG"
	SizeRangeG1ToG3 SizeRange = "G1_to_G3"
)

var validSizeRanges = []SizeRange{
	SizeRangePToGG,
	SizeRangeG1ToG3,
}

var sizeRangeLabels = map[SizeRange]string{
	SizeRangePToGG:  "P ao GG",
	SizeRangeG1ToG3: "G1 ao G3",
}

// String implements fmt.Stringer.
func (s SizeRange) String() string {
	return string(s)
}

// Label returns the storefront label, e.g. "P ao GG".
func (s SizeRange) Label() string {
	return sizeRangeLabels[s]
}

// IsValid reports whether the value is a known SizeRange.
func (s SizeRange) IsValid() bool {
	for _, candidate := range validSizeRanges {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSizeRange accepts either the enum value or its storefront label.
func ParseSizeRange(value string) (SizeRange, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validSizeRanges {
		if string(candidate) == trimmed || strings.EqualFold(candidate.Label(), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid size range %q", value)
}
