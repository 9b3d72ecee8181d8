package knx

import (
	"encoding/hex"
	"strings"
)

// Raw frame layout, in hex characters (1 byte = 2 characters).
//
//	Bytes 0-10:  Header (ignored)
//	Byte  11:    Control/priority (ignored)
//	Bytes 12-13: Source individual address
//	Bytes 14-15: Destination group address
const (
	// ackMarker is the trailing byte of an acknowledgement frame.
	ackMarker = "CC"

	// maxAckLength is the longest frame still treated as an acknowledgement.
	maxAckLength = 24

	// sourceOffset is the hex offset of the source address.
	sourceOffset = 24

	// minSourceLength is the shortest frame considered for source decoding.
	minSourceLength = 26

	// destinationOffset is the hex offset of the destination address.
	destinationOffset = 28

	// minDestinationLength is the shortest frame considered for destination decoding.
	minDestinationLength = 28

	// addressHexLen is the width of one 2-byte address in hex characters.
	addressHexLen = 4
)

// DecodeStatus describes the outcome of decoding a group address.
type DecodeStatus int

const (
	// Decoded means the frame carried a usable group address.
	Decoded DecodeStatus = iota

	// Undecodable means the frame is too short or not valid hex.
	Undecodable

	// NotApplicable means the frame is an acknowledgement without a destination.
	NotApplicable
)

// String returns a short label for log output.
func (s DecodeStatus) String() string {
	switch s {
	case Decoded:
		return "decoded"
	case Undecodable:
		return "undecodable"
	case NotApplicable:
		return "not_applicable"
	default:
		return "unknown"
	}
}

// IsAcknowledgement reports whether raw is a short acknowledgement frame:
// it ends with "CC" and is at most 24 hex characters long.
func IsAcknowledgement(raw string) bool {
	return hasAckMarker(raw) && len(raw) <= maxAckLength
}

// DecodeGroupAddress extracts the destination group address from a raw
// hex frame.
//
// The function is total: malformed input yields Undecodable rather than an
// error, and acknowledgement frames yield NotApplicable. The returned
// GroupAddress is only meaningful when the status is Decoded.
//
// Parameters:
//   - raw: Hex-encoded frame (hex digits in either case)
//
// Returns:
//   - GroupAddress: Decoded destination (zero value unless Decoded)
//   - DecodeStatus: Decoded, Undecodable or NotApplicable
func DecodeGroupAddress(raw string) (GroupAddress, DecodeStatus) {
	if IsAcknowledgement(raw) {
		return GroupAddress{}, NotApplicable
	}
	if len(raw) < minDestinationLength {
		return GroupAddress{}, Undecodable
	}

	hi, lo, ok := addressBytes(raw, destinationOffset)
	if !ok {
		return GroupAddress{}, Undecodable
	}

	return GroupAddressFromBytes(hi, lo), Decoded
}

// DecodePhysicalAddress extracts the source individual address from a raw
// hex frame.
//
// Any frame ending in "CC" carries no usable source here, regardless of its
// length. Returns false when nothing could be decoded.
func DecodePhysicalAddress(raw string) (PhysicalAddress, bool) {
	if hasAckMarker(raw) {
		return PhysicalAddress{}, false
	}
	if len(raw) < minSourceLength {
		return PhysicalAddress{}, false
	}

	hi, lo, ok := addressBytes(raw, sourceOffset)
	if !ok {
		return PhysicalAddress{}, false
	}

	return PhysicalAddressFromBytes(hi, lo), true
}

// FormatPhysicalAddress renders the decoded source of raw, or "" when the
// source cannot be decoded.
func FormatPhysicalAddress(raw string) string {
	pa, ok := DecodePhysicalAddress(raw)
	if !ok {
		return ""
	}
	return pa.String()
}

// AddressHex returns the 4 hex characters of the 2-byte address at offset,
// or "" if the frame is too short. Used for diagnostic output.
func AddressHex(raw string, offset int) string {
	if offset < 0 || len(raw) < offset+addressHexLen {
		return ""
	}
	return strings.ToUpper(raw[offset : offset+addressHexLen])
}

// DestinationHex returns the raw destination bytes of a frame for tracing.
func DestinationHex(raw string) string {
	return AddressHex(raw, destinationOffset)
}

// addressBytes decodes the two bytes starting at the hex offset. Both bytes
// must be complete, so a frame cut off inside an address nibble yields
// nothing rather than a partial value.
func addressBytes(raw string, offset int) (hi, lo byte, ok bool) {
	if len(raw) < offset+addressHexLen {
		return 0, 0, false
	}

	var buf [2]byte
	if _, err := hex.Decode(buf[:], []byte(raw[offset:offset+addressHexLen])); err != nil {
		return 0, 0, false
	}

	return buf[0], buf[1], true
}

// hasAckMarker reports whether raw ends with the acknowledgement byte.
// The match is case-sensitive: a lower case "cc" tail is ordinary data.
func hasAckMarker(raw string) bool {
	return strings.HasSuffix(raw, ackMarker)
}
