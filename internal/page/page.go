// Package page renders the HTML shell every phase page shares.
package page

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed templates/phase.html.tmpl
var phaseTemplate string

var tmpl = template.Must(template.New("phase").Parse(phaseTemplate))

var progressRe = regexp.MustCompile(`^\d{1,3}%$`)

var months = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// NavLink is one navigation bar entry. Phase is 0 for links that are never
// marked active.
type NavLink struct {
	Href  string
	Label string
	Phase int
}

// Site holds the parts shared by every page
type Site struct {
	Name         string
	Organization string
	Contact      string
	Nav          []NavLink
}

// Page is everything the template needs for one phase
type Page struct {
	Num      int
	Title    string
	Progress string
	Status   string
	Content  template.HTML // converted markdown, inserted as is
	Updated  time.Time
	Site     Site
}

// Render writes the full HTML document for p
func Render(w io.Writer, p Page) error {
	if err := tmpl.Execute(w, p); err != nil {
		return fmt.Errorf("failed to render page %d: %w", p.Num, err)
	}
	return nil
}

// RenderString returns the full HTML document for p
func RenderString(p Page) (string, error) {
	var b strings.Builder
	if err := Render(&b, p); err != nil {
		return "", err
	}
	return b.String(), nil
}

// BadgeClass is the CSS suffix for the status badge
func (p Page) BadgeClass() string {
	return BadgeClass(p.Status)
}

// Width is the inline style of the progress bar. Anything that is not a
// percentage renders as an empty bar.
func (p Page) Width() template.CSS {
	progress := strings.TrimSpace(p.Progress)
	if !progressRe.MatchString(progress) {
		progress = "0%"
	}
	return template.CSS("width: " + progress + ";")
}

// UpdatedLabel is the footer date
func (p Page) UpdatedLabel() string {
	return FormatDate(p.Updated)
}

// BadgeClass lowercases status, strips accents and joins words with dashes:
// "En Proceso" → "en-proceso", "Crítica" → "critica".
func BadgeClass(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = stripped
	}
	return strings.Join(strings.Fields(s), "-")
}

// FormatDate formats t as a long Spanish date, e.g. "19 de octubre de 2026"
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}
