package commlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Layout of a rendered telegram line. Columns are zero-based rune offsets
// from the start of the line, indent included.
const (
	// indent precedes every telegram element.
	indent = "    "

	// CommentColumn is where the annotation comment opener starts. It is a
	// zero-based offset, i.e. column 166 when counting from 1.
	CommentColumn = 165

	// SemicolonColumn is where the separator between the GA and QA fields
	// sits, zero-based like CommentColumn.
	SemicolonColumn = 183

	xmlDeclaration = `<?xml version="1.0" encoding="utf-8"?>`
	commentOpen    = "<!-- "
	commentClose   = " -->"

	// filePermissions is the mode of written output files.
	filePermissions = 0o644
)

var attrEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

// Render writes out as an XML document to w.
//
// Non-telegram root children come first, each as a self-closing element on
// its own line. Each telegram then becomes one self-closing element on its
// own line, with its annotation (if any) appended as a column-aligned
// comment. Lines are indented by four spaces. Root attributes are written in
// their original order.
//
// Parameters:
//   - w: Destination writer
//   - out: Document to render
//
// Returns:
//   - error: First write error encountered
func Render(w io.Writer, out Output) error {
	bw := bufio.NewWriter(w)

	root := out.Root
	if root == "" {
		root = RootElement
	}

	// bufio.Writer keeps the first write error; Flush reports it.
	fmt.Fprintf(bw, "%s\n<%s%s>", xmlDeclaration, root, attrList(out.Attrs))

	if len(out.Extras) > 0 || len(out.Lines) > 0 {
		bw.WriteByte('\n')
		for _, e := range out.Extras {
			bw.WriteString(indent + ElementTag(e))
			bw.WriteByte('\n')
		}
		for _, line := range out.Lines {
			bw.WriteString(FormatLine(TelegramTag(line.Telegram), line.Annotation))
			bw.WriteByte('\n')
		}
	}

	fmt.Fprintf(bw, "</%s>\n", root)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return nil
}

// WriteFile renders out into the file at path, creating or truncating it.
// The parent directory is created if needed. A partially written file is
// left in place on error.
func WriteFile(path string, out Output) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return fmt.Errorf("creating output directory: %w", mkErr)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions) //nolint:gosec // operator supplied path
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	if err := Render(f, out); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// TelegramTag renders a telegram as a self-closing element with all of its
// attributes, e.g. `<Telegram Timestamp="..." RawData="..." />`.
func TelegramTag(t Telegram) string {
	return selfClosing(TelegramElement, t.Attrs)
}

// ElementTag renders a non-telegram root child as a self-closing element.
func ElementTag(e Element) string {
	return selfClosing(e.Name, e.Attrs)
}

func selfClosing(name string, attrs []Attr) string {
	return "<" + name + attrList(attrs) + " />"
}

// FormatLine builds one output line from a rendered telegram tag and its
// annotation.
//
// The annotation has the form "GA: <group> ; QA: <physical>". When it is
// non-empty the tag is padded with spaces so the comment starts at
// CommentColumn, and spaces are inserted after the GA field so the ';' lands
// on SemicolonColumn. If either position is already passed, no padding is
// added at that step and a single space separates the GA field from ';'.
func FormatLine(tag, annotation string) string {
	if annotation == "" {
		return indent + tag
	}

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(tag)

	width := utf8.RuneCountInString(indent) + utf8.RuneCountInString(tag)
	if pad := CommentColumn - width; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
		width += pad
	}

	ga, qa, _ := strings.Cut(annotation, ";")
	ga = strings.TrimSpace(ga)
	qa = strings.TrimLeft(qa, " ")

	b.WriteString(commentOpen)
	b.WriteString(ga)

	semicolon := width + utf8.RuneCountInString(commentOpen) + utf8.RuneCountInString(ga)
	if pad := SemicolonColumn - semicolon; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	} else {
		b.WriteString(" ")
	}

	b.WriteString("; ")
	b.WriteString(qa)
	b.WriteString(commentClose)

	return b.String()
}

// attrList renders attributes as ` name="value"` pairs.
func attrList(attrs []Attr) string {
	var b strings.Builder
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.QualifiedName())
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Value))
		b.WriteByte('"')
	}
	return b.String()
}
