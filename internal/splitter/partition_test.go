package splitter

import (
	"strings"
	"testing"

	"github.com/nerrad567/knx-log-splitter/internal/commlog"
)

// dataFrame builds a raw frame with the given source and destination bytes.
func dataFrame(source, dest string) string {
	return strings.Repeat("0", 22) + "BC" + source + dest + "E1008001"
}

// ackFrame is a 24-character acknowledgement.
var ackFrame = strings.Repeat("0", 22) + "CC"

func telegram(id, raw string) commlog.Telegram {
	attrs := []commlog.Attr{{Name: "ID", Value: id}}
	if raw != "" {
		attrs = append(attrs, commlog.Attr{Name: commlog.RawDataAttr, Value: raw})
	}
	return commlog.Telegram{Attrs: attrs}
}

func ids(lines []commlog.Line) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i], _ = l.Telegram.Attr("ID")
	}
	return strings.Join(out, ",")
}

type recordedTelegram struct {
	source, group string
	filtered      bool
}

type fakeRecorder struct {
	calls []recordedTelegram
}

func (r *fakeRecorder) RecordTelegram(source, group string, filtered bool) {
	r.calls = append(r.calls, recordedTelegram{source, group, filtered})
}

type fakeProgress struct {
	total    int
	ticks    int
	finished bool
}

func (p *fakeProgress) Start(total int) { p.total = total }
func (p *fakeProgress) Increment()      { p.ticks++ }
func (p *fakeProgress) Finish()         { p.finished = true }

type countingLogger struct {
	noopLogger
	debug int
}

func (l *countingLogger) Debug(string, ...any) { l.debug++ }

func TestPartition_DecodedGroupAddress(t *testing.T) {
	p := NewPartitioner(NewFilterSet("2/3/"))
	part := p.Partition([]commlog.Telegram{telegram("1", dataFrame("110C", "2305"))})

	if len(part.Filtered) != 1 || len(part.Other) != 0 {
		t.Fatalf("filtered=%d other=%d, want 1/0", len(part.Filtered), len(part.Other))
	}
	if got := part.Filtered[0].Annotation; got != "GA: 2/3/5 ; QA: 1.1.12" {
		t.Errorf("Annotation = %q", got)
	}
	if part.Stats.GroupAddresses["2/3/5"] != 1 || part.Stats.Sources["1.1.12"] != 1 {
		t.Errorf("Stats = %+v", part.Stats)
	}
}

func TestPartition_ShortFrameIsIgnored(t *testing.T) {
	p := NewPartitioner(NewFilterSet("0/7/"))
	part := p.Partition([]commlog.Telegram{telegram("1", strings.Repeat("0", 20))})

	if len(part.Filtered) != 1 {
		t.Fatalf("len(Filtered) = %d, want 1", len(part.Filtered))
	}
	if got := part.Filtered[0].Annotation; got != "GA: IGNORE (unbestimmt) ; QA: " {
		t.Errorf("Annotation = %q", got)
	}
	if part.Stats.Undecodable != 1 {
		t.Errorf("Undecodable = %d, want 1", part.Stats.Undecodable)
	}
}

func TestPartition_UndecodableKeepsSource(t *testing.T) {
	// Source present, destination truncated.
	raw := strings.Repeat("0", 22) + "BC" + "110C" + "23"
	part := NewPartitioner(NewFilterSet("9/9/")).Partition([]commlog.Telegram{telegram("1", raw)})

	if got := part.Filtered[0].Annotation; got != "GA: IGNORE (unbestimmt) ; QA: 1.1.12" {
		t.Errorf("Annotation = %q", got)
	}
}

func TestPartition_AcknowledgementFollowsPrevious(t *testing.T) {
	telegrams := []commlog.Telegram{
		telegram("1", dataFrame("110C", "0701")), // filtered
		telegram("2", ackFrame),
		telegram("3", dataFrame("110C", "2305")), // other
		telegram("4", ackFrame),
		telegram("5", ""), // skipped, does not affect routing
		telegram("6", ackFrame),
		telegram("7", strings.Repeat("0", 20)), // undecodable, filtered
		telegram("8", ackFrame),
	}

	part := NewPartitioner(NewFilterSet("0/7/")).Partition(telegrams)

	if got := ids(part.Filtered); got != "1,2,7,8" {
		t.Errorf("filtered = %s, want 1,2,7,8", got)
	}
	if got := ids(part.Other); got != "3,4,6" {
		t.Errorf("other = %s, want 3,4,6", got)
	}
	for _, l := range append(part.Filtered, part.Other...) {
		raw := l.Telegram.RawData()
		if raw == ackFrame && l.Annotation != "" {
			t.Errorf("acknowledgement carries annotation %q", l.Annotation)
		}
	}
	if part.Stats.Acknowledgements != 4 {
		t.Errorf("Acknowledgements = %d, want 4", part.Stats.Acknowledgements)
	}
}

func TestPartition_LeadingAcknowledgementIsFiltered(t *testing.T) {
	part := NewPartitioner(NewFilterSet("0/7/")).Partition([]commlog.Telegram{
		telegram("1", ackFrame),
		telegram("2", dataFrame("110C", "2305")),
	})

	if got := ids(part.Filtered); got != "1" {
		t.Errorf("filtered = %s, want 1", got)
	}
	if got := ids(part.Other); got != "2" {
		t.Errorf("other = %s, want 2", got)
	}
}

func TestPartition_AcknowledgementAfterOther(t *testing.T) {
	part := NewPartitioner(NewFilterSet("0/7/")).Partition([]commlog.Telegram{
		telegram("1", dataFrame("110C", "2305")),
		telegram("2", ackFrame),
	})

	if got := ids(part.Other); got != "1,2" {
		t.Fatalf("other = %s, want 1,2", got)
	}
	if part.Other[1].Annotation != "" {
		t.Errorf("acknowledgement annotation = %q, want empty", part.Other[1].Annotation)
	}
}

func TestPartition_LowerCaseMarkerIsData(t *testing.T) {
	telegrams := []commlog.Telegram{
		telegram("1", dataFrame("110C", "2305")), // other
		telegram("2", strings.Repeat("0", 22)+"cc"),
		telegram("3", ackFrame),
	}

	part := NewPartitioner(NewFilterSet("0/7/")).Partition(telegrams)

	if got := ids(part.Filtered); got != "2,3" {
		t.Errorf("filtered = %s, want 2,3", got)
	}
	if got := ids(part.Other); got != "1" {
		t.Errorf("other = %s, want 1", got)
	}
	if got := part.Filtered[0].Annotation; got != "GA: IGNORE (unbestimmt) ; QA: " {
		t.Errorf("Annotation = %q", got)
	}
	if part.Stats.Acknowledgements != 1 || part.Stats.Undecodable != 1 {
		t.Errorf("stats = %+v, want 1 acknowledgement and 1 undecodable", part.Stats)
	}
}

func TestPartition_EveryTelegramRoutedOnce(t *testing.T) {
	var telegrams []commlog.Telegram
	raws := []string{
		dataFrame("110C", "0701"),
		ackFrame,
		"",
		dataFrame("1201", "0A0B"),
		"ZZZZ",
		dataFrame("FFFF", "07FF"),
		ackFrame,
		strings.Repeat("0", 22) + "BC" + "110C" + "XXYY",
		"",
	}
	for i, raw := range raws {
		telegrams = append(telegrams, telegram(string(rune('a'+i)), raw))
	}

	part := NewPartitioner(NewFilterSet("0/7/")).Partition(telegrams)

	seen := make(map[string]int)
	for _, l := range append(part.Filtered, part.Other...) {
		id, _ := l.Telegram.Attr("ID")
		seen[id]++
	}
	for i, raw := range raws {
		id := string(rune('a' + i))
		want := 1
		if raw == "" {
			want = 0
		}
		if seen[id] != want {
			t.Errorf("telegram %s routed %d times, want %d", id, seen[id], want)
		}
	}

	s := part.Stats
	if s.Telegrams != len(raws) || s.Skipped != 2 {
		t.Errorf("Telegrams=%d Skipped=%d", s.Telegrams, s.Skipped)
	}
	if s.Filtered+s.Other+s.Skipped != s.Telegrams {
		t.Errorf("filtered %d + other %d + skipped %d != %d", s.Filtered, s.Other, s.Skipped, s.Telegrams)
	}
}

func TestPartition_PreservesOrder(t *testing.T) {
	part := NewPartitioner(NewFilterSet("0/7/")).Partition([]commlog.Telegram{
		telegram("1", dataFrame("110C", "0701")),
		telegram("2", dataFrame("110C", "2305")),
		telegram("3", dataFrame("110C", "0702")),
		telegram("4", dataFrame("110C", "2306")),
		telegram("5", dataFrame("110C", "0703")),
	})

	if got := ids(part.Filtered); got != "1,3,5" {
		t.Errorf("filtered = %s", got)
	}
	if got := ids(part.Other); got != "2,4" {
		t.Errorf("other = %s", got)
	}
}

func TestPartition_Collaborators(t *testing.T) {
	rec := &fakeRecorder{}
	prog := &fakeProgress{}
	log := &countingLogger{}

	p := NewPartitioner(NewFilterSet("0/7/"))
	p.SetRecorder(rec)
	p.SetProgress(prog)
	p.SetLogger(log)

	p.Partition([]commlog.Telegram{
		telegram("1", dataFrame("110C", "0701")),
		telegram("2", ackFrame),
		telegram("3", dataFrame("1201", "2305")),
		telegram("4", ""),
	})

	want := []recordedTelegram{
		{"1.1.12", "0/7/1", true},
		{"1.2.1", "2/3/5", false},
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("recorder calls = %+v, want %+v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call[%d] = %+v, want %+v", i, rec.calls[i], want[i])
		}
	}

	if prog.total != 4 || prog.ticks != 4 || !prog.finished {
		t.Errorf("progress total=%d ticks=%d finished=%v, want 4/4/true", prog.total, prog.ticks, prog.finished)
	}
	if log.debug != 3 {
		t.Errorf("debug records = %d, want 3", log.debug)
	}
}

func TestPartition_NilLoggerAllowed(t *testing.T) {
	p := NewPartitioner(NewFilterSet("0/7/"))
	p.SetLogger(nil)
	part := p.Partition([]commlog.Telegram{telegram("1", dataFrame("110C", "0701"))})
	if len(part.Filtered) != 1 {
		t.Errorf("len(Filtered) = %d, want 1", len(part.Filtered))
	}
}

func TestPartition_Empty(t *testing.T) {
	part := NewPartitioner(NewFilterSet("0/7/")).Partition(nil)
	if len(part.Filtered) != 0 || len(part.Other) != 0 || part.Stats.Telegrams != 0 {
		t.Errorf("Partition(nil) = %+v", part)
	}
}

func TestDestination_String(t *testing.T) {
	tests := map[Destination]string{
		DestinationUnset:    "unset",
		DestinationFiltered: "filtered",
		DestinationOther:    "other",
	}
	for d, want := range tests {
		if got := d.String(); got != want {
			t.Errorf("Destination(%d).String() = %q, want %q", d, got, want)
		}
	}
}
