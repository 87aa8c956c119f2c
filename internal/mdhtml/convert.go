// Package mdhtml converts the markdown subset used by the phase documents
// (headings, dash lists, checkboxes, fenced code, paragraphs) into an HTML
// fragment for the page template.
//
// Conversion is a fixed sequence of text passes. Fenced code and raw HTML
// blocks are swapped for placeholder tokens first so that the later passes,
// which are plain regex substitutions, never see their contents.
package mdhtml

import (
	"html"
	"regexp"
	"strings"
)

// DefaultLanguages are the fence tags that get a language class.
var DefaultLanguages = []string{"sql", "typescript", "javascript", "bash"}

const (
	sectionOpen  = `<div class="content-section">`
	sectionClose = `</div>`

	checkedGlyph = "✅"
	emptyGlyph   = "⚪"
)

var (
	lineEndingRe = regexp.MustCompile(`\r\n?`)

	fenceRe   = regexp.MustCompile("(?s)\\n*```([A-Za-z0-9_+#.-]*)[ \\t]*\\r?\\n(.*?)```[ \\t]*\\n*")
	rawHTMLRe = regexp.MustCompile(`(?is)\n*(<table\b.*?</table>|<pre\b.*?</pre>)[ \t]*\n*`)

	h3Re = regexp.MustCompile(`(?m)\n*^### (.*)$\n*`)
	h4Re = regexp.MustCompile(`(?m)\n*^#### (.*)$\n*`)
	h2Re = regexp.MustCompile(`(?m)\n*^## (.*)$\n*`)

	checkedRe   = regexp.MustCompile(`- \[[xX]\]`)
	uncheckedRe = regexp.MustCompile(`- \[ \]`)

	itemRe    = regexp.MustCompile(`(?m)^- (.*)$`)
	listRunRe = regexp.MustCompile(`(?m)\n*((?:^<li>.*</li>(?:\n|$))+)\n*`)

	blockTags              = `div|h[1-6]|ul|ol|table|pre|blockquote`
	emptyParagraphRe       = regexp.MustCompile(`<p>\s*</p>`)
	paragraphBeforeBlockRe = regexp.MustCompile(`<p>\s*(</?(?:` + blockTags + `)\b|` + placeholderOpen + `)`)
	paragraphAfterBlockRe  = regexp.MustCompile(`(</(?:` + blockTags + `)>|` + placeholderClose + `)\s*</p>`)
)

type options struct {
	balancedSections bool
	escapeCode       bool
	languages        map[string]bool
}

// Option configures a Converter.
type Option func(*options)

// WithBalancedSections closes each section before the next level-2 heading
// and emits one close per opened section instead of the single trailing close.
func WithBalancedSections() Option {
	return func(o *options) {
		o.balancedSections = true
	}
}

// WithEscapedCode HTML-escapes fenced code instead of restoring it verbatim.
func WithEscapedCode() Option {
	return func(o *options) {
		o.escapeCode = true
	}
}

// WithLanguages replaces the fence tags that get a language class.
func WithLanguages(langs ...string) Option {
	return func(o *options) {
		o.languages = languageSet(langs)
	}
}

// Converter turns markdown into an HTML fragment. The zero value uses the
// default options. A Converter holds no per-call state and may be shared.
type Converter struct {
	opts options
}

// New creates a converter with the given options
func New(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// Convert converts md with the default options.
func Convert(md string) string {
	return New().Convert(md)
}

// Convert returns the HTML fragment for md. It accepts any input; unknown or
// malformed constructs are left as paragraph text.
func (c *Converter) Convert(md string) string {
	cv := c.begin()
	text := md
	for _, pass := range cv.passes() {
		text = pass(text)
	}
	return text
}

// conversion is the state of one Convert call
type conversion struct {
	opts     options
	blocks   *placeholders
	sections int
}

type pass func(string) string

func (c *Converter) begin() *conversion {
	opts := c.opts
	if opts.languages == nil {
		opts.languages = languageSet(DefaultLanguages)
	}
	return &conversion{
		opts:   opts,
		blocks: newPlaceholders(),
	}
}

func (cv *conversion) passes() []pass {
	return []pass{
		normalizeLineEndings,
		cv.extractFences,
		cv.extractRawHTML,
		cv.convertHeadings,
		convertCheckboxes,
		convertLists,
		wrapParagraphs,
		cleanupParagraphs,
		cv.restorePlaceholders,
		cv.closeSections,
	}
}

func normalizeLineEndings(text string) string {
	return lineEndingRe.ReplaceAllString(text, "\n")
}

// extractFences swaps every fenced block for a placeholder token
func (cv *conversion) extractFences(text string) string {
	return fenceRe.ReplaceAllStringFunc(text, func(match string) string {
		sub := fenceRe.FindStringSubmatch(match)
		lang := sub[1]
		code := strings.TrimSpace(sub[2])

		class := "code-block"
		if cv.opts.languages[strings.ToLower(lang)] {
			class += " language-" + strings.ToLower(lang)
		}
		body := code
		if cv.opts.escapeCode {
			body = html.EscapeString(code)
		}

		return cv.blocks.add(placeholder{
			Kind: kindCode,
			Lang: lang,
			Text: code,
			HTML: `<div class="` + class + `">` + body + `</div>`,
		})
	})
}

// extractRawHTML protects tables and pre blocks already written as HTML
func (cv *conversion) extractRawHTML(text string) string {
	return rawHTMLRe.ReplaceAllStringFunc(text, func(match string) string {
		raw := rawHTMLRe.FindStringSubmatch(match)[1]
		return cv.blocks.add(placeholder{
			Kind: kindHTML,
			Text: raw,
			HTML: raw,
		})
	})
}

func (cv *conversion) convertHeadings(text string) string {
	text = h3Re.ReplaceAllString(text, "\n\n<h3>${1}</h3>\n\n")
	text = h4Re.ReplaceAllString(text, "\n\n<h4>${1}</h4>\n\n")
	return h2Re.ReplaceAllStringFunc(text, func(match string) string {
		title := h2Re.FindStringSubmatch(match)[1]
		prefix := ""
		if cv.opts.balancedSections && cv.sections > 0 {
			prefix = sectionClose + "\n\n"
		}
		cv.sections++
		return "\n\n" + prefix + sectionOpen + "<h2>" + title + "</h2>\n\n"
	})
}

// convertCheckboxes must run before convertLists, which matches the "- " prefix
func convertCheckboxes(text string) string {
	text = checkedRe.ReplaceAllString(text, "- "+checkedGlyph)
	return uncheckedRe.ReplaceAllString(text, "- "+emptyGlyph)
}

// convertLists turns dash lines into items and wraps each run of adjacent
// items in its own list
func convertLists(text string) string {
	text = itemRe.ReplaceAllString(text, "<li>${1}</li>")
	return listRunRe.ReplaceAllString(text, "\n\n<ul>${1}</ul>\n\n")
}

func wrapParagraphs(text string) string {
	return "<p>" + strings.ReplaceAll(text, "\n\n", "</p><p>") + "</p>"
}

// cleanupParagraphs drops empty paragraphs and unwraps block elements
func cleanupParagraphs(text string) string {
	text = emptyParagraphRe.ReplaceAllString(text, "")
	text = paragraphBeforeBlockRe.ReplaceAllString(text, "${1}")
	text = paragraphAfterBlockRe.ReplaceAllString(text, "${1}")
	return emptyParagraphRe.ReplaceAllString(text, "")
}

func (cv *conversion) restorePlaceholders(text string) string {
	return cv.blocks.restore(text)
}

// closeSections appends the section close. Without balanced sections this is
// always exactly one tag, even when no section was opened. Balanced sections
// have already closed all but the last one.
func (cv *conversion) closeSections(text string) string {
	if cv.opts.balancedSections && cv.sections == 0 {
		return text
	}
	return text + sectionClose
}

func languageSet(langs []string) map[string]bool {
	set := make(map[string]bool, len(langs))
	for _, l := range langs {
		set[strings.ToLower(strings.TrimSpace(l))] = true
	}
	return set
}
