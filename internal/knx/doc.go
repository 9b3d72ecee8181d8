// Package knx decodes addresses from raw KNX bus-monitor frames.
//
// Frames are recorded by ETS as hex strings in the RawData attribute of each
// <Telegram> record. This package reads the source individual address and
// the destination group address from fixed offsets in that string:
//
//	offset (hex chars)   0 ........ 22   24      28      32
//	                     | header   | ctl | source | dest |
//
// # Group Addresses
//
// Destination addresses are rendered as Main/Middle/Sub where Main and
// Middle are the two nibbles of the high byte:
//
//	ga, status := knx.DecodeGroupAddress(raw)
//	if status == knx.Decoded {
//	    fmt.Println(ga) // "2/3/5"
//	}
//
// # Acknowledgements
//
// Short frames (at most 24 hex characters) ending in "CC" are link-layer
// acknowledgements. They carry no destination and decode as NotApplicable.
//
// # Failure Handling
//
// Decoding never returns an error. Short or non-hex frames degrade to the
// Undecodable status (group address) or to false (physical address), so one
// broken record cannot abort processing of a whole log.
package knx
