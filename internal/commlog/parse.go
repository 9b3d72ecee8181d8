package commlog

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html/charset"
)

// utf8BOM is skipped if present at the start of the input.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads a telegram log from r.
//
// The root element must be <CommunicationLog>. Every direct <Telegram> child
// is collected with all of its attributes in document order. Other direct
// children are kept as Extras with their attributes; their content and
// deeper elements are ignored, as is text content. Namespace prefixes are kept as written so
// they can be reproduced on output.
//
// Non-UTF-8 documents are decoded according to their XML declaration.
//
// Parameters:
//   - r: Source of the XML document
//
// Returns:
//   - *Document: Parsed log
//   - error: ErrMalformedLog or ErrUnexpectedRoot on invalid input
func Parse(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	if err := skipBOM(br); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLog, err)
	}

	dec := xml.NewDecoder(br)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		doc   *Document
		stack []xml.Name
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedLog, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth := len(stack)
			stack = append(stack, t.Name)

			switch {
			case depth == 0 && doc != nil:
				return nil, fmt.Errorf("%w: multiple root elements", ErrMalformedLog)
			case depth == 0:
				if t.Name.Local != RootElement {
					return nil, fmt.Errorf("%w: got <%s>, want <%s>", ErrUnexpectedRoot, qualify(t.Name), RootElement)
				}
				doc = &Document{
					Root:  qualify(t.Name),
					Attrs: convertAttrs(t.Attr),
				}
			case depth == 1 && t.Name.Local == TelegramElement:
				doc.Telegrams = append(doc.Telegrams, Telegram{Attrs: convertAttrs(t.Attr)})
			case depth == 1:
				doc.Extras = append(doc.Extras, Element{Name: qualify(t.Name), Attrs: convertAttrs(t.Attr)})
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unexpected </%s>", ErrMalformedLog, qualify(t.Name))
			}
			open := stack[len(stack)-1]
			if open != t.Name {
				return nil, fmt.Errorf("%w: element <%s> closed by </%s>", ErrMalformedLog, qualify(open), qualify(t.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("%w: text outside root element", ErrMalformedLog)
			}
		}
	}

	if doc == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedLog)
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: unclosed element <%s>", ErrMalformedLog, qualify(stack[len(stack)-1]))
	}

	return doc, nil
}

// ParseFile reads and parses the telegram log at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// skipBOM discards a leading UTF-8 byte order mark.
func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(len(utf8BOM))
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if bytes.Equal(head, utf8BOM) {
		_, err = br.Discard(len(utf8BOM))
		return err
	}
	return nil
}

// convertAttrs copies decoder attributes into the document model.
func convertAttrs(in []xml.Attr) []Attr {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attr, len(in))
	for i, a := range in {
		out[i] = Attr{Prefix: a.Name.Space, Name: a.Name.Local, Value: a.Value}
	}
	return out
}

// qualify renders a raw (untranslated) element name.
func qualify(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
