package knx

import "errors"

// Domain errors for the KNX address package.
//
// Frame decoding never returns these; they are only produced when parsing
// rendered address strings.
var (
	// ErrInvalidGroupAddress is returned when a group address string
	// cannot be parsed.
	ErrInvalidGroupAddress = errors.New("knx: invalid group address")

	// ErrInvalidPhysicalAddress is returned when a physical address string
	// cannot be parsed.
	ErrInvalidPhysicalAddress = errors.New("knx: invalid physical address")
)
