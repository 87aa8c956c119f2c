package mdhtml

import "fmt"

// Report counts the constructs the converter will see in a markdown source.
// Fenced code and raw HTML are excluded from the other counts.
type Report struct {
	Sections   int // level-2 headings, each opens a section container
	H3         int
	H4         int
	ListItems  int
	Checked    int
	Unchecked  int
	CodeBlocks int
	RawHTML    int
	Balanced   bool
}

// Inspect reports the shape of md under the default options.
func Inspect(md string) Report {
	return New().Inspect(md)
}

// Inspect reports the shape of md as c would convert it.
func (c *Converter) Inspect(md string) Report {
	cv := c.begin()
	text := normalizeLineEndings(md)
	text = cv.extractFences(text)
	text = cv.extractRawHTML(text)

	return Report{
		Sections:   len(h2Re.FindAllStringIndex(text, -1)),
		H3:         len(h3Re.FindAllStringIndex(text, -1)),
		H4:         len(h4Re.FindAllStringIndex(text, -1)),
		ListItems:  len(itemRe.FindAllStringIndex(text, -1)),
		Checked:    len(checkedRe.FindAllStringIndex(text, -1)),
		Unchecked:  len(uncheckedRe.FindAllStringIndex(text, -1)),
		CodeBlocks: cv.blocks.count(kindCode),
		RawHTML:    cv.blocks.count(kindHTML),
		Balanced:   cv.opts.balancedSections,
	}
}

// Warnings describes section layouts the single trailing close does not
// handle cleanly. Balanced conversions produce none.
func (r Report) Warnings() []string {
	if r.Balanced {
		return nil
	}
	var warnings []string
	switch {
	case r.Sections == 0:
		warnings = append(warnings, "no level-2 heading: the trailing section close has no matching open")
	case r.Sections > 1:
		warnings = append(warnings, fmt.Sprintf("%d level-2 sections nest inside each other until the single trailing close", r.Sections))
	}
	return warnings
}
