package generate

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gerunddev/phasedocs/internal/config"
	"github.com/gerunddev/phasedocs/internal/logger"
	"github.com/gerunddev/phasedocs/internal/mdhtml"
	"github.com/gerunddev/phasedocs/internal/page"
	"github.com/gerunddev/phasedocs/internal/state"
)

// Store reads sources and writes pages
type Store interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSStore is a Store on the local filesystem
type OSStore struct{}

// ReadFile reads path from disk
func (OSStore) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to path, creating the directory if needed
func (OSStore) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Progress receives page events while Run is working
type Progress interface {
	PageStarted(p config.Phase)
	PageDone(r PageResult)
}

// Generator turns configured phases into HTML pages
type Generator struct {
	config    *config.Config
	state     *state.State
	converter *mdhtml.Converter
	store     Store
	logger    *logger.Logger
	progress  Progress
	now       func() time.Time
	pinDates  bool
}

// NewGenerator creates a new generator instance
func NewGenerator(cfg *config.Config, st *state.State) *Generator {
	if st == nil {
		st = state.NewState()
	}
	return &Generator{
		config:    cfg,
		state:     st,
		converter: converterFor(cfg.Converter),
		store:     OSStore{},
		logger:    logger.Discard(),
		now:       time.Now,
	}
}

// SetLogger sets the logger for the generator
func (g *Generator) SetLogger(l *logger.Logger) {
	g.logger = l
}

// SetStore replaces the filesystem store
func (g *Generator) SetStore(s Store) {
	g.store = s
}

// SetClock replaces time.Now, used for the footer date and state timestamps
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

// PinDates makes Build date each page by its last recorded generation rather
// than the clock, so an unchanged source rebuilds to the page on disk. Pages
// never generated still use the clock.
func (g *Generator) PinDates() {
	g.pinDates = true
}

// SetProgress registers a receiver for page events
func (g *Generator) SetProgress(p Progress) {
	g.progress = p
}

// PageResult is the outcome of one phase
type PageResult struct {
	Phase    config.Phase
	Source   string
	Output   string
	Bytes    int
	Warnings []string
	Err      error
}

// Result represents the result of a generation run
type Result struct {
	Pages     []PageResult
	StartTime time.Time
	EndTime   time.Time
}

// Page is a phase rendered in memory
type Page struct {
	Phase      config.Phase // with front matter overrides applied
	Source     string
	SourceData []byte
	HTML       string
	Updated    time.Time // footer date
	Report     mdhtml.Report
}

// Run generates every phase in order. A failing phase is recorded in the
// result and the run continues with the next one.
func (g *Generator) Run(phases []config.Phase) *Result {
	result := &Result{
		StartTime: g.now(),
	}

	g.logger.GenerateStarted(g.config.SourceDir, g.config.OutputDir, len(phases))

	for _, p := range phases {
		if g.progress != nil {
			g.progress.PageStarted(p)
		}

		pr := g.generatePage(p)
		result.Pages = append(result.Pages, pr)

		if g.progress != nil {
			g.progress.PageDone(pr)
		}
	}

	result.EndTime = g.now()
	g.logger.GenerateCompleted(result.Generated(), len(result.Failed()), result.EndTime.Sub(result.StartTime))

	return result
}

func (g *Generator) generatePage(p config.Phase) PageResult {
	pr := PageResult{
		Phase:  p,
		Source: g.config.SourcePath(p),
		Output: g.config.OutputPath(p),
	}

	built, err := g.Build(p)
	if err == nil {
		if werr := g.store.WriteFile(pr.Output, []byte(built.HTML)); werr != nil {
			err = fmt.Errorf("failed to write %s: %w", pr.Output, werr)
		}
	}

	if err != nil {
		pr.Err = fmt.Errorf("%s: %w", p.OutputName(), err)
		g.logger.PageFailed(pr.Source, pr.Output, err)
		g.state.RecordFailure(p.OutputName(), pr.Source, err, g.now())
		return pr
	}

	pr.Phase = built.Phase
	pr.Bytes = len(built.HTML)
	pr.Warnings = built.Report.Warnings()
	for _, w := range pr.Warnings {
		g.logger.ShapeWarning(pr.Source, w)
	}

	g.logger.PageGenerated(pr.Source, pr.Output, pr.Bytes)
	g.state.Record(p.OutputName(), pr.Source, built.SourceData, []byte(built.HTML), built.Updated)

	return pr
}

// Build reads and converts one phase without writing anything
func (g *Generator) Build(p config.Phase) (*Page, error) {
	source := g.config.SourcePath(p)

	data, err := g.store.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	meta, body, err := parseFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read front matter of %s: %w", source, err)
	}
	p = meta.apply(p)

	doc := mdhtml.NewDocument(string(body), g.config.Anchor)
	if g.config.Anchor != "" && !strings.Contains(doc.Raw, g.config.Anchor) {
		g.logger.AnchorMissing(source, g.config.Anchor)
	}
	markdown := doc.Body()
	updated := g.updated(p)

	html, err := page.RenderString(page.Page{
		Num:      p.Num,
		Title:    p.Title,
		Progress: p.Progress,
		Status:   p.Status,
		Content:  template.HTML(g.converter.Convert(markdown)),
		Updated:  updated,
		Site:     g.site(),
	})
	if err != nil {
		return nil, err
	}

	return &Page{
		Phase:      p,
		Source:     source,
		SourceData: data,
		HTML:       html,
		Updated:    updated,
		Report:     g.converter.Inspect(markdown),
	}, nil
}

func (g *Generator) updated(p config.Phase) time.Time {
	if g.pinDates {
		if at := g.state.LastGenerated(p.OutputName()); !at.IsZero() {
			return at
		}
	}
	return g.now()
}

func (g *Generator) site() page.Site {
	nav := g.config.Navigation()
	links := make([]page.NavLink, 0, len(nav))
	for _, l := range nav {
		links = append(links, page.NavLink{Href: l.Href, Label: l.Label, Phase: l.Phase})
	}
	return page.Site{
		Name:         g.config.Site.Name,
		Organization: g.config.Site.Organization,
		Contact:      g.config.Site.Contact,
		Nav:          links,
	}
}

func converterFor(opts config.ConverterOptions) *mdhtml.Converter {
	var o []mdhtml.Option
	if opts.BalancedSections {
		o = append(o, mdhtml.WithBalancedSections())
	}
	if opts.EscapeCode {
		o = append(o, mdhtml.WithEscapedCode())
	}
	if len(opts.Languages) > 0 {
		o = append(o, mdhtml.WithLanguages(opts.Languages...))
	}
	return mdhtml.New(o...)
}

// Generated returns the number of pages written
func (r *Result) Generated() int {
	n := 0
	for _, p := range r.Pages {
		if p.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the pages that could not be produced
func (r *Result) Failed() []PageResult {
	var failed []PageResult
	for _, p := range r.Pages {
		if p.Err != nil {
			failed = append(failed, p)
		}
	}
	return failed
}

// String returns a human-readable summary of the generation result
func (r *Result) String() string {
	duration := r.EndTime.Sub(r.StartTime)
	return fmt.Sprintf(
		"Generation complete: %d pages generated, %d errors (took %v)",
		r.Generated(),
		len(r.Failed()),
		duration,
	)
}
