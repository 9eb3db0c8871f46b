package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// CharsetReader decodes non-UTF-8 XML documents by charset label.
// Vendor exports occasionally arrive in legacy encodings (windows-1252,
// iso-8859-1); htmlindex covers every label these platforms emit.
//
// Intended for use as xml.Decoder.CharsetReader.
func CharsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported document charset %q: %w", label, err)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// NewDecoder returns an xml.Decoder configured for sigbridge inputs:
// charset-aware and strict (syntax faults abort, per the error taxonomy).
func NewDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.CharsetReader = CharsetReader
	return d
}

// Parse reads a complete document and returns its root element.
func Parse(r io.Reader) (*Node, error) {
	d := NewDecoder(r)
	root, err := parseElement(d, nil)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return root, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// ParseElement parses the element opened by start from an in-progress
// decoder, consuming tokens through its end tag. Streaming callers use this
// to lift one element at a time without buffering the whole document.
func ParseElement(d *xml.Decoder, start *xml.StartElement) (*Node, error) {
	return parseElement(d, start)
}

// parseElement consumes tokens until the next element closes. When start is
// nil it scans forward to the first start element (the document root).
func parseElement(d *xml.Decoder, start *xml.StartElement) (*Node, error) {
	if start == nil {
		for {
			tok, err := d.Token()
			if err == io.EOF {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			if se, ok := tok.(xml.StartElement); ok {
				start = &se
				break
			}
		}
	}

	node := &Node{Name: start.Name.Local}
	for _, a := range start.Attr {
		// Drop namespace declarations; the documents sigbridge consumes
		// are namespace-free and xmlns noise breaks attribute lookups.
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		node.Attrs = append(node.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
	}

	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(d, &t)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			node.Text = text.String()
			return node, nil
		}
	}
}
