package mdhtml

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "</div>",
		},
		{
			name:     "plain text",
			input:    "Just some text.\nSecond line.",
			expected: "<p>Just some text.\nSecond line.</p></div>",
		},
		{
			name:  "objective section with checkboxes",
			input: "## Objetivo\nDoes the thing.\n\n- [x] Done task\n- [ ] Pending task\n",
			expected: `<div class="content-section"><h2>Objetivo</h2><p>Does the thing.</p>` +
				"<ul><li>✅ Done task</li>\n<li>⚪ Pending task</li>\n</ul></div>",
		},
		{
			name:     "sql fence",
			input:    "```sql\nSELECT 1;\n```",
			expected: `<div class="code-block language-sql">SELECT 1;</div></div>`,
		},
		{
			name:     "unknown language is still captured",
			input:    "```python\nprint(1)\n```\n",
			expected: `<div class="code-block">print(1)</div></div>`,
		},
		{
			name:     "markdown punctuation inside code",
			input:    "```\n# not a heading\n- not an item\n```",
			expected: "<div class=\"code-block\"># not a heading\n- not an item</div></div>",
		},
		{
			name:     "h3 and h4",
			input:    "### Backend\n#### Tareas\ntext",
			expected: "<h3>Backend</h3><h4>Tareas</h4><p>text</p></div>",
		},
		{
			name:     "lists separated by a paragraph",
			input:    "- a\n- b\n\ntext\n\n- c\n",
			expected: "<ul><li>a</li>\n<li>b</li>\n</ul><p>text</p><ul><li>c</li>\n</ul></div>",
		},
		{
			name:     "table passes through",
			input:    "<table>\n<tr><td>- [x] a</td></tr>\n</table>\n",
			expected: "<table>\n<tr><td>- [x] a</td></tr>\n</table></div>",
		},
		{
			name:     "windows line endings",
			input:    "## Uno\r\n\r\ntexto\r\n",
			expected: "<div class=\"content-section\"><h2>Uno</h2><p>texto\n</p></div>",
		},
		{
			name:     "windows fence",
			input:    "```bash\r\necho hi\r\n```\r\n",
			expected: `<div class="code-block language-bash">echo hi</div></div>`,
		},
		{
			name:     "unterminated fence stays text",
			input:    "```sql\nSELECT 1;",
			expected: "<p>```sql\nSELECT 1;</p></div>",
		},
		{
			name:     "code between paragraphs",
			input:    "Antes\n\n```sql\nSELECT 1;\n```\n\nDespués",
			expected: `<p>Antes</p><div class="code-block language-sql">SELECT 1;</div><p>Después</p></div>`,
		},
		{
			name:     "fence inside table",
			input:    "<table>\n<tr><td>\n```sql\nSELECT 1;\n```\n</td></tr>\n</table>\n",
			expected: "<table>\n<tr><td>\n\n<div class=\"code-block language-sql\">SELECT 1;</div>\n\n</td></tr>\n</table></div>",
		},
		{
			name:     "fence inside pre",
			input:    "<pre>\n```\nx\n```\n</pre>",
			expected: "<pre>\n\n<div class=\"code-block\">x</div>\n\n</pre></div>",
		},
		{
			name:  "sections accumulate",
			input: "## Uno\nA\n## Dos\nB",
			expected: `<div class="content-section"><h2>Uno</h2><p>A</p>` +
				`<div class="content-section"><h2>Dos</h2><p>B</p></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := Convert(tt.input)
			assertHTML(t, actual, tt.expected)
			if strings.Contains(actual, placeholderOpen) || strings.Contains(actual, placeholderClose) {
				t.Errorf("Placeholder token left in output: %q", actual)
			}
		})
	}
}

func TestConvertOptions(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		input    string
		expected string
	}{
		{
			name:  "balanced sections",
			opts:  []Option{WithBalancedSections()},
			input: "## Uno\nA\n## Dos\nB",
			expected: `<div class="content-section"><h2>Uno</h2><p>A</p></div>` +
				`<div class="content-section"><h2>Dos</h2><p>B</p></div>`,
		},
		{
			name:     "balanced without sections",
			opts:     []Option{WithBalancedSections()},
			input:    "texto",
			expected: "<p>texto</p>",
		},
		{
			name:     "escaped code",
			opts:     []Option{WithEscapedCode()},
			input:    "```typescript\nconst a: Array<string> = [];\n```",
			expected: `<div class="code-block language-typescript">const a: Array&lt;string&gt; = [];</div></div>`,
		},
		{
			name:     "custom languages",
			opts:     []Option{WithLanguages("go")},
			input:    "```go\nx := 1\n```\n\n```sql\nSELECT 1;\n```",
			expected: `<div class="code-block language-go">x := 1</div><div class="code-block">SELECT 1;</div></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertHTML(t, New(tt.opts...).Convert(tt.input), tt.expected)
		})
	}
}

func TestZeroValueConverter(t *testing.T) {
	var c Converter
	input := "```sql\nSELECT 1;\n```"
	if got, want := c.Convert(input), Convert(input); got != want {
		t.Errorf("zero value converter differs from default: got %q, want %q", got, want)
	}
}

func TestCodeBlocksRoundTrip(t *testing.T) {
	codes := []string{
		"SELECT * FROM tickets;",
		"## not a section\n- [x] not a box",
		"echo \"a\"\n\necho \"b\"",
	}

	var md strings.Builder
	md.WriteString("## Código\n\n")
	for i, code := range codes {
		fmt.Fprintf(&md, "Paso %d\n\n```bash\n  %s  \n```\n\n", i+1, code)
	}

	out := Convert(md.String())

	if n := strings.Count(out, `<div class="code-block`); n != len(codes) {
		t.Errorf("Expected %d code blocks, got %d", len(codes), n)
	}
	for _, code := range codes {
		block := `<div class="code-block language-bash">` + code + `</div>`
		if strings.Count(out, block) != 1 {
			t.Errorf("Code block not restored exactly once: %q\n\nGot:\n%s", code, out)
		}
	}
	if strings.Contains(out, placeholderOpen) || strings.Contains(out, placeholderClose) {
		t.Errorf("Placeholder token left in output: %q", out)
	}
}

func TestListRuns(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d items", n), func(t *testing.T) {
			var md strings.Builder
			md.WriteString("Intro\n\n")
			for i := 0; i < n; i++ {
				fmt.Fprintf(&md, "- item %d\n", i)
			}
			md.WriteString("\nOutro\n")

			out := Convert(md.String())

			if got := strings.Count(out, "<ul>"); got != 1 {
				t.Errorf("Expected 1 list, got %d in %q", got, out)
			}
			if got := strings.Count(out, "<li>"); got != n {
				t.Errorf("Expected %d items, got %d in %q", n, got, out)
			}
		})
	}

	out := Convert("- a\n\n- b\nText\n- c")
	if got := strings.Count(out, "<ul>"); got != 3 {
		t.Errorf("Non-adjacent items must not share a list, got %d lists in %q", got, out)
	}
}

var paragraphAroundBlock = regexp.MustCompile(`<p>\s*</?(?:div|h[1-6]|ul)\b|</(?:div|h[1-6]|ul)>\s*</p>`)

func TestNoBlockInsideParagraph(t *testing.T) {
	inputs := []string{
		"## Objetivo\nTexto\n### Sub\nMás texto\n- a\n- b\nFin",
		"Intro\n\n\n## Uno\n\n\n\n- [ ] x\n\n\n```sql\nSELECT 1;\n```\nDespués\n#### Nota\n",
		"texto pegado\n```\ncode\n```\ntexto",
		"<table><tr><td>a</td></tr></table>\n\n## Tabla\n<table>\n</table>",
	}

	for i, input := range inputs {
		out := Convert(input)
		if loc := paragraphAroundBlock.FindStringIndex(out); loc != nil {
			t.Errorf("input %d: paragraph wraps a block element at %d: %q", i, loc[0], out)
		}
		if open, closed := strings.Count(out, "<p>"), strings.Count(out, "</p>"); open != closed {
			t.Errorf("input %d: %d <p> vs %d </p> in %q", i, open, closed, out)
		}
	}
}

func TestCheckboxesBeforeLists(t *testing.T) {
	fromMarkdown := Convert("- [x] listo\n- [ ] pendiente")

	// the same lines after the checkbox pass already ran
	fromGlyphs := Convert("- ✅ listo\n- ⚪ pendiente")

	assertHTML(t, fromMarkdown, fromGlyphs)

	if !strings.Contains(fromMarkdown, "<li>✅ listo</li>") {
		t.Errorf("Expected checked glyph at item start, got %q", fromMarkdown)
	}
	if !strings.Contains(fromMarkdown, "<li>⚪ pendiente</li>") {
		t.Errorf("Expected empty glyph at item start, got %q", fromMarkdown)
	}
}

func TestConvertConcurrent(t *testing.T) {
	input := "## Objetivo\n\n```sql\nSELECT 1;\n```\n\n- [x] a\n- b\n"
	want := Convert(input)
	c := New()

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Convert(input)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Errorf("goroutine %d: got %q, want %q", i, got, want)
		}
	}
}

func TestPasses(t *testing.T) {
	t.Run("fence token is isolated", func(t *testing.T) {
		cv := New().begin()
		out := cv.extractFences("antes\n```sql\nSELECT 1;\n```\ndespués")
		want := "antes\n\n" + cv.blocks.token(0) + "\n\ndespués"
		if out != want {
			t.Errorf("got %q, want %q", out, want)
		}
		if got := cv.blocks.items[0].Text; got != "SELECT 1;" {
			t.Errorf("stored code %q, want %q", got, "SELECT 1;")
		}
	})

	t.Run("headings most specific first", func(t *testing.T) {
		cv := New().begin()
		out := cv.convertHeadings("#### cuatro\n### tres\n## dos")
		for _, want := range []string{"<h4>cuatro</h4>", "<h3>tres</h3>", sectionOpen + "<h2>dos</h2>"} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected %q in %q", want, out)
			}
		}
		if cv.sections != 1 {
			t.Errorf("Expected 1 section, got %d", cv.sections)
		}
	})

	t.Run("paragraph wrapping", func(t *testing.T) {
		if got, want := wrapParagraphs("a\n\nb"), "<p>a</p><p>b</p>"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("cleanup", func(t *testing.T) {
		in := "<p></p><p> <ul><li>a</li></ul> </p><p>b</p>"
		if got, want := cleanupParagraphs(in), "<ul><li>a</li></ul><p>b</p>"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func assertHTML(t *testing.T, actual, expected string) {
	t.Helper()
	if actual == expected {
		return
	}
	edits := myers.ComputeEdits(span.URIFromPath("expected.html"), expected, actual)
	diff := fmt.Sprint(gotextdiff.ToUnified("expected.html", "actual.html", expected, edits))
	t.Errorf("Conversion mismatch.\n\nExpected:\n%q\n\nGot:\n%q\n\nDiff:\n%s", expected, actual, diff)
}
