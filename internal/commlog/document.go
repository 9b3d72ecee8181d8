package commlog

// Element and attribute names of an ETS bus-monitor log.
const (
	// RootElement is the container element of a telegram log.
	RootElement = "CommunicationLog"

	// TelegramElement is the element name of one recorded telegram.
	TelegramElement = "Telegram"

	// RawDataAttr holds the hex-encoded wire frame of a telegram.
	RawDataAttr = "RawData"
)

// Attr is one attribute of an element, kept exactly as read.
//
// Prefix is the literal namespace prefix from the source document (e.g.
// "xmlns" for "xmlns:knx"); it is empty for unprefixed attributes.
type Attr struct {
	Prefix string
	Name   string
	Value  string
}

// QualifiedName returns the attribute name as written in the source.
func (a Attr) QualifiedName() string {
	if a.Prefix == "" {
		return a.Name
	}
	return a.Prefix + ":" + a.Name
}

// Telegram is one <Telegram> record. All attributes are opaque except
// RawData; they are carried through in their original order.
type Telegram struct {
	Attrs []Attr
}

// RawData returns the hex frame of the telegram, or "" if the attribute is
// missing.
func (t Telegram) RawData() string {
	v, _ := t.Attr(RawDataAttr)
	return v
}

// Attr looks up an unprefixed attribute by name.
func (t Telegram) Attr(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Prefix == "" && a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Element is a direct child of the root other than a telegram, such as
// <RecordStart> or <RecordStop>. Only its name and attributes are kept.
type Element struct {
	Name  string
	Attrs []Attr
}

// Document is a parsed telegram log: the root element with its attributes,
// the other root children and the ordered telegram records.
type Document struct {
	Root      string
	Attrs     []Attr
	Extras    []Element
	Telegrams []Telegram
}

// Line is a telegram paired with the annotation rendered after it.
// An empty Annotation renders no comment.
type Line struct {
	Telegram   Telegram
	Annotation string
}

// Output is one document to be written: the root element, its attributes
// and its non-telegram children copied from the input plus the telegram
// lines selected for this file.
type Output struct {
	Root   string
	Attrs  []Attr
	Extras []Element
	Lines  []Line
}

// NewOutput creates an Output that carries the root element, root
// attributes and non-telegram children of doc.
func NewOutput(doc *Document, lines []Line) Output {
	attrs := make([]Attr, len(doc.Attrs))
	copy(attrs, doc.Attrs)

	extras := make([]Element, len(doc.Extras))
	copy(extras, doc.Extras)

	return Output{
		Root:   doc.Root,
		Attrs:  attrs,
		Extras: extras,
		Lines:  lines,
	}
}
