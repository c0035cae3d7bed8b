// Package version exposes the library version and the DMX512 standard
// revision the output timing follows.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the library version.
const Current = "1.0"

// Standard is the DMX512 standard revision the timing constants follow.
const Standard = "ANSI E1.11-2008 (R2018)"

// LibVersion represents a parsed "major.minor" library version.
type LibVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (LibVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return LibVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return LibVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return LibVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return LibVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v LibVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v LibVersion) Compatible(other LibVersion) bool {
	return v.Major == other.Major
}
