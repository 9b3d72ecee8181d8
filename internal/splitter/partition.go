package splitter

import (
	"github.com/nerrad567/knx-log-splitter/internal/commlog"
	"github.com/nerrad567/knx-log-splitter/internal/knx"
)

// Annotation text.
const (
	annotationGA     = "GA: "
	annotationQA     = " ; QA: "
	ignoredGroupText = "IGNORE (unbestimmt)"
)

// Destination identifies the output stream a telegram is routed to.
type Destination int

const (
	// DestinationUnset means no data telegram has been routed yet.
	DestinationUnset Destination = iota

	// DestinationFiltered is the stream of telegrams matching the filter set.
	DestinationFiltered

	// DestinationOther is the stream of all remaining telegrams.
	DestinationOther
)

// String returns a short label for log output.
func (d Destination) String() string {
	switch d {
	case DestinationFiltered:
		return "filtered"
	case DestinationOther:
		return "other"
	default:
		return "unset"
	}
}

// Stats counts what a partition pass saw.
type Stats struct {
	// Telegrams is the number of records read, including skipped ones.
	Telegrams int `json:"telegrams"`

	// Skipped counts records without a RawData frame.
	Skipped int `json:"skipped"`

	Filtered         int `json:"filtered"`
	Other            int `json:"other"`
	Acknowledgements int `json:"acknowledgements"`

	// Undecodable counts data frames routed as IGNORE.
	Undecodable int `json:"undecodable"`

	// GroupAddresses counts data telegrams per decoded destination.
	GroupAddresses map[string]int `json:"group_addresses"`

	// Sources counts data telegrams per decoded source device.
	Sources map[string]int `json:"sources"`
}

// Partition is the result of splitting a telegram sequence.
// Both streams preserve the relative input order.
type Partition struct {
	Filtered []commlog.Line
	Other    []commlog.Line
	Stats    Stats
}

func (p *Partition) add(dest Destination, line commlog.Line) {
	if dest == DestinationOther {
		p.Other = append(p.Other, line)
		p.Stats.Other++
		return
	}
	p.Filtered = append(p.Filtered, line)
	p.Stats.Filtered++
}

// routingState is threaded through one partition pass. last only changes
// on data telegrams; acknowledgements read it.
type routingState struct {
	last Destination
}

// ackDestination returns where an acknowledgement goes.
func (s routingState) ackDestination() Destination {
	if s.last == DestinationUnset {
		return DestinationFiltered
	}
	return s.last
}

// AddressRecorder receives every decoded data telegram. Implemented by the
// address inventory.
type AddressRecorder interface {
	RecordTelegram(source, groupAddress string, filtered bool)
}

// Progress is started with the telegram count and ticked once per telegram
// during a partition pass.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

// Partitioner splits telegram sequences according to a FilterSet.
type Partitioner struct {
	filters  FilterSet
	logger   Logger
	recorder AddressRecorder
	progress Progress
}

// NewPartitioner creates a Partitioner for the given filters.
func NewPartitioner(filters FilterSet) *Partitioner {
	return &Partitioner{filters: filters, logger: noopLogger{}}
}

// SetLogger sets the logger used for per-telegram decode tracing.
// Tracing is emitted at debug level.
func (p *Partitioner) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
}

// SetRecorder sets an optional recorder for decoded addresses.
func (p *Partitioner) SetRecorder(recorder AddressRecorder) {
	p.recorder = recorder
}

// SetProgress sets an optional progress indicator.
func (p *Partitioner) SetProgress(progress Progress) {
	p.progress = progress
}

// Partition routes every telegram to the filtered or the other stream.
//
// Rules, applied in input order:
//  1. Records without RawData are skipped.
//  2. Acknowledgements follow the destination of the preceding data
//     telegram (filtered if there is none) and carry no annotation.
//  3. Data telegrams whose group address cannot be decoded go to the
//     filtered stream annotated "GA: IGNORE (unbestimmt) ; QA: <source>".
//  4. Other data telegrams are annotated "GA: <group> ; QA: <source>" and go
//     to the filtered stream if any filter prefix matches, else to other.
func (p *Partitioner) Partition(telegrams []commlog.Telegram) Partition {
	result := Partition{
		Stats: Stats{
			Telegrams:      len(telegrams),
			GroupAddresses: make(map[string]int),
			Sources:        make(map[string]int),
		},
	}

	if p.progress != nil {
		p.progress.Start(len(telegrams))
	}

	var state routingState
	for _, tel := range telegrams {
		state = p.route(state, tel, &result)
		if p.progress != nil {
			p.progress.Increment()
		}
	}
	if p.progress != nil {
		p.progress.Finish()
	}

	return result
}

// route handles one telegram and returns the next routing state.
func (p *Partitioner) route(state routingState, tel commlog.Telegram, result *Partition) routingState {
	raw := tel.RawData()
	if raw == "" {
		result.Stats.Skipped++
		return state
	}

	if knx.IsAcknowledgement(raw) {
		dest := state.ackDestination()
		result.add(dest, commlog.Line{Telegram: tel})
		result.Stats.Acknowledgements++
		p.logger.Debug("acknowledgement", "raw", raw, "destination", dest)
		return state
	}

	ga, status := knx.DecodeGroupAddress(raw)
	physical := knx.FormatPhysicalAddress(raw)

	if status != knx.Decoded {
		result.add(DestinationFiltered, commlog.Line{Telegram: tel, Annotation: IgnoreAnnotation(physical)})
		result.Stats.Undecodable++
		p.logger.Debug("group address not decodable", "raw", raw, "status", status, "source", physical)
		return routingState{last: DestinationFiltered}
	}

	group := ga.String()
	dest := DestinationOther
	if p.filters.Matches(group) {
		dest = DestinationFiltered
	}

	result.add(dest, commlog.Line{Telegram: tel, Annotation: FormatAnnotation(group, physical)})
	result.Stats.GroupAddresses[group]++
	if physical != "" {
		result.Stats.Sources[physical]++
	}

	p.logger.Debug("decoded group address",
		"raw", raw,
		"bytes", knx.DestinationHex(raw),
		"group_address", group,
		"source", physical,
		"destination", dest,
	)

	if p.recorder != nil {
		p.recorder.RecordTelegram(physical, group, dest == DestinationFiltered)
	}

	return routingState{last: dest}
}

// FormatAnnotation builds the comment text for a decoded data telegram.
func FormatAnnotation(groupAddress, physicalAddress string) string {
	return annotationGA + groupAddress + annotationQA + physicalAddress
}

// IgnoreAnnotation builds the comment text for a data telegram whose group
// address could not be decoded.
func IgnoreAnnotation(physicalAddress string) string {
	return FormatAnnotation(ignoredGroupText, physicalAddress)
}
