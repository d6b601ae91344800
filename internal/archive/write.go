package archive

import (
	"bytes"
	"strings"
)

const indentUnit = "  "

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\r", "&#13;",
		"\n", "&#10;",
		"\t", "&#09;",
	)
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
)

// Marshal serializes root with its descendants.
//
// An element with children has its first child on the next line, indented
// one level deeper; the closing tag goes on its own line at the element's
// level. Elements without children or text self-close as <name a="v"/>.
// The output ends with a single newline.
func Marshal(root *Element) []byte {
	var buf bytes.Buffer
	writeElement(&buf, root, 0)
	buf.WriteByte('\n')
	return buf.Bytes()
}

func writeElement(buf *bytes.Buffer, e *Element, level int) {
	buf.WriteByte('<')
	buf.WriteString(e.Name)
	for _, a := range e.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		buf.WriteString(attrEscaper.Replace(a.Value))
		buf.WriteByte('"')
	}

	switch {
	case len(e.Children) > 0:
		buf.WriteByte('>')
		inner := "\n" + strings.Repeat(indentUnit, level+1)
		outer := "\n" + strings.Repeat(indentUnit, level)
		buf.WriteString(inner)
		for i, c := range e.Children {
			writeElement(buf, c, level+1)
			if i < len(e.Children)-1 {
				buf.WriteString(inner)
			} else {
				buf.WriteString(outer)
			}
		}
		writeClose(buf, e.Name)
	case e.Text != "":
		buf.WriteByte('>')
		buf.WriteString(textEscaper.Replace(e.Text))
		writeClose(buf, e.Name)
	default:
		buf.WriteString("/>")
	}
}

func writeClose(buf *bytes.Buffer, name string) {
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}
