// Package primitives implements the small, widely reused checks that
// every validator leans on: version string parsing, HDF5 string-format
// and factor-level/code validation, and names-array length checks. These
// mirror utils_hdf5.hpp's free functions rather than belonging to any
// single object type.
package primitives

import (
	"strconv"
	"strings"

	"github.com/takane-go/takane/pkg/types"
)

// Version is a parsed "<major>[.<minor>[.<patch>]]" version string; the
// patch component is checked but not kept.
type Version struct {
	Major int
	Minor int
}

// ParseVersion parses a version string of the form "1", "1.0" or "1.0.0".
// The minor component is optional and defaults to 0; a patch component,
// when present, must be a non-negative integer and is otherwise ignored;
// anything else is rejected.
func ParseVersion(s string) (Version, error) {
	parts := strings.SplitN(s, ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return Version{}, types.NewError(types.ErrKindVersion, "invalid version string '%s'", s)
	}
	if len(parts) == 1 {
		return Version{Major: major}, nil
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return Version{}, types.NewError(types.ErrKindVersion, "invalid version string '%s'", s)
	}
	if len(parts) == 3 {
		if patch, err := strconv.Atoi(parts[2]); err != nil || patch < 0 {
			return Version{}, types.NewError(types.ErrKindVersion, "invalid version string '%s'", s)
		}
	}
	return Version{Major: major, Minor: minor}, nil
}

// AtLeast reports whether v >= Version{major, minor}.
func (v Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}
