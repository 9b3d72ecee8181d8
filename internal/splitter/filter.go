package splitter

import (
	"strings"
)

// Output file naming.
const (
	// OtherFilename is the fixed name of the file receiving non-matching telegrams.
	OtherFilename = "knx_tel.xml"

	filteredPrefix = "knx_tel_"
	filteredSuffix = ".xml"

	// allFiltersName is the base name used when no filter is configured.
	allFiltersName = "all"
)

// FilterSet is an ordered list of group address prefixes, each ending in "/".
//
// Matching compares against the rendered group address string, so "1/2/"
// matches "1/2/3" and "1/2/300" but not "1/20/3". Order only matters for the
// derived output filename.
//
// A FilterSet is read-only after construction and safe to share.
type FilterSet struct {
	prefixes []string
}

// NewFilterSet normalizes the given addresses into a FilterSet.
// Empty entries are dropped and a trailing "/" is appended where missing.
func NewFilterSet(addresses ...string) FilterSet {
	prefixes := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if addr == "" {
			continue
		}
		if !strings.HasSuffix(addr, "/") {
			addr += "/"
		}
		prefixes = append(prefixes, addr)
	}
	return FilterSet{prefixes: prefixes}
}

// Prefixes returns a copy of the normalized prefixes in their original order.
func (f FilterSet) Prefixes() []string {
	out := make([]string, len(f.prefixes))
	copy(out, f.prefixes)
	return out
}

// Len returns the number of prefixes.
func (f FilterSet) Len() int {
	return len(f.prefixes)
}

// Matches reports whether the rendered group address starts with any prefix.
func (f FilterSet) Matches(groupAddress string) bool {
	for _, p := range f.prefixes {
		if strings.HasPrefix(groupAddress, p) {
			return true
		}
	}
	return false
}

// OutputFilename derives the name of the filtered output file.
//
// Each prefix has "/" replaced by "_" and surrounding "_" trimmed; the parts
// are joined with "-". Example: ["0/7/", "1/2/"] gives "knx_tel_0_7-1_2.xml".
// Without filters the name is "knx_tel_all.xml".
func (f FilterSet) OutputFilename() string {
	if len(f.prefixes) == 0 {
		return filteredPrefix + allFiltersName + filteredSuffix
	}

	parts := make([]string, len(f.prefixes))
	for i, p := range f.prefixes {
		parts[i] = strings.Trim(strings.ReplaceAll(p, "/", "_"), "_")
	}
	return filteredPrefix + strings.Join(parts, "-") + filteredSuffix
}

// String returns the prefixes as a comma separated list.
func (f FilterSet) String() string {
	return strings.Join(f.prefixes, ", ")
}
