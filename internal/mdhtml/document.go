package mdhtml

import "strings"

// Document is the markdown source of one phase
type Document struct {
	Raw    string
	Offset int // start of the anchor heading, 0 when absent
}

// NewDocument locates anchor in raw. An empty or missing anchor keeps the
// whole text.
func NewDocument(raw, anchor string) Document {
	doc := Document{Raw: raw}
	if anchor == "" {
		return doc
	}
	if i := strings.Index(raw, anchor); i > -1 {
		doc.Offset = i
	}
	return doc
}

// Body returns the text from the anchor onwards
func (d Document) Body() string {
	return d.Raw[d.Offset:]
}
