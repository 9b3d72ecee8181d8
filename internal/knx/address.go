package knx

import (
	"fmt"
	"strconv"
	"strings"
)

// GroupAddress represents a KNX group address in 3-level format as decoded
// from a bus-monitor frame.
//
// Format: Main/Middle/Sub
//   - Main:   0-15 (upper nibble of the high byte)
//   - Middle: 0-15 (lower nibble of the high byte)
//   - Sub:    0-255 (low byte)
//
// This is the nibble split used by the bus-monitor logs, not the 5/3/8 split
// of the ETS 3-level view.
type GroupAddress struct {
	Main   uint8
	Middle uint8
	Sub    uint8
}

// PhysicalAddress represents a KNX individual (physical) address of the
// sending device.
//
// Format: Area.Line.Device
//   - Area:   0-15 (4 bits)
//   - Line:   0-15 (4 bits)
//   - Device: 0-255 (8 bits)
type PhysicalAddress struct {
	Area   uint8
	Line   uint8
	Device uint8
}

// Address limits for the nibble/nibble/byte layout.
const (
	maxNibble = 15
	maxByte   = 255

	// addressLevelCount is the number of levels in both address formats.
	addressLevelCount = 3

	nibbleMask = 0x0F
)

// String returns the group address in 3-level format.
//
// Example: "2/3/5"
func (ga GroupAddress) String() string {
	return fmt.Sprintf("%d/%d/%d", ga.Main, ga.Middle, ga.Sub)
}

// String returns the physical address in dotted format.
//
// Example: "1.1.12"
func (pa PhysicalAddress) String() string {
	return fmt.Sprintf("%d.%d.%d", pa.Area, pa.Line, pa.Device)
}

// GroupAddressFromBytes builds a GroupAddress from the two destination bytes
// of a frame.
func GroupAddressFromBytes(hi, lo byte) GroupAddress {
	return GroupAddress{
		Main:   (hi >> 4) & nibbleMask,
		Middle: hi & nibbleMask,
		Sub:    lo,
	}
}

// PhysicalAddressFromBytes builds a PhysicalAddress from the two source bytes
// of a frame.
func PhysicalAddressFromBytes(hi, lo byte) PhysicalAddress {
	return PhysicalAddress{
		Area:   (hi >> 4) & nibbleMask,
		Line:   hi & nibbleMask,
		Device: lo,
	}
}

// ParseGroupAddress parses a 3-level group address string.
//
// Parameters:
//   - s: Group address string (e.g., "2/3/5")
//
// Returns:
//   - GroupAddress: Parsed address
//   - error: ErrInvalidGroupAddress if parsing fails
func ParseGroupAddress(s string) (GroupAddress, error) {
	levels, err := parseLevels(s, "/")
	if err != nil {
		return GroupAddress{}, fmt.Errorf("%w: %w", ErrInvalidGroupAddress, err)
	}
	return GroupAddress{Main: levels[0], Middle: levels[1], Sub: levels[2]}, nil
}

// ParsePhysicalAddress parses a dotted physical address string.
//
// Parameters:
//   - s: Physical address string (e.g., "1.1.12")
//
// Returns:
//   - PhysicalAddress: Parsed address
//   - error: ErrInvalidPhysicalAddress if parsing fails
func ParsePhysicalAddress(s string) (PhysicalAddress, error) {
	levels, err := parseLevels(s, ".")
	if err != nil {
		return PhysicalAddress{}, fmt.Errorf("%w: %w", ErrInvalidPhysicalAddress, err)
	}
	return PhysicalAddress{Area: levels[0], Line: levels[1], Device: levels[2]}, nil
}

// parseLevels splits s on sep and checks the nibble/nibble/byte ranges.
func parseLevels(s, sep string) ([addressLevelCount]uint8, error) {
	var out [addressLevelCount]uint8

	parts := strings.Split(s, sep)
	if len(parts) != addressLevelCount {
		return out, fmt.Errorf("expected 3 levels separated by %q, got %q", sep, s)
	}

	limits := [addressLevelCount]uint64{maxNibble, maxNibble, maxByte}
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 10, 8)
		if err != nil || v > limits[i] {
			return out, fmt.Errorf("level %d must be 0-%d, got %q", i+1, limits[i], part)
		}
		out[i] = uint8(v) //nolint:gosec // range checked above
	}

	return out, nil
}
