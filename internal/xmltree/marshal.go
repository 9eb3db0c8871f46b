package xmltree

import "strings"

// Header is the XML declaration written ahead of generated documents.
const Header = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

// String renders the subtree as an indented document fragment (two-space
// indentation, matching the vendor's own export formatting).
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

// Document renders the subtree as a complete document with XML declaration.
func (n *Node) Document() string {
	return Header + n.String() + "\n"
}

func (n *Node) write(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(n.Name)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(EscapeAttr(a.Value))
		b.WriteByte('"')
	}

	text := strings.TrimSpace(n.Text)
	if len(n.Children) == 0 && text == "" {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')

	if len(n.Children) == 0 {
		if n.CDATA {
			b.WriteString("<![CDATA[")
			b.WriteString(text)
			b.WriteString("]]>")
		} else {
			b.WriteString(EscapeText(text))
		}
		b.WriteString("</")
		b.WriteString(n.Name)
		b.WriteByte('>')
		return
	}

	// Mixed content is not produced by any document sigbridge generates;
	// when children exist, direct text is emitted before them.
	if text != "" {
		b.WriteString(EscapeText(text))
	}
	for _, c := range n.Children {
		b.WriteByte('\n')
		c.write(b, depth+1)
	}
	b.WriteByte('\n')
	b.WriteString(indent)
	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
}

// escaper covers the five XML-special characters. Whitespace is left
// alone so multi-line notes and summary templates survive verbatim.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeText escapes character data for element content.
func EscapeText(s string) string {
	return escaper.Replace(s)
}

// EscapeAttr escapes an attribute value for double-quoted output.
func EscapeAttr(s string) string {
	return EscapeText(s)
}
