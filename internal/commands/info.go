package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gerunddev/phasedocs/internal/config"
	"github.com/gerunddev/phasedocs/internal/mdhtml"
	"github.com/gerunddev/phasedocs/internal/state"
	"github.com/gerunddev/phasedocs/internal/styles"
)

// Convert prints the HTML fragment for one markdown file ("-" reads stdin).
// Section layout warnings go to stderr.
func Convert(args []string) {
	opts := mustParse(args)
	if len(opts.args) != 1 {
		fail("Usage: phasedocs convert <file.md> [--anchor heading] [--balanced] [--escape-code]")
	}

	var (
		data []byte
		err  error
	)
	if opts.args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(opts.args[0])
	}
	if err != nil {
		fail("Error reading input: " + err.Error())
	}

	var mdOpts []mdhtml.Option
	if opts.balanced {
		mdOpts = append(mdOpts, mdhtml.WithBalancedSections())
	}
	if opts.escapeCode {
		mdOpts = append(mdOpts, mdhtml.WithEscapedCode())
	}
	c := mdhtml.New(mdOpts...)

	body := mdhtml.NewDocument(string(data), opts.anchor).Body()
	fmt.Println(c.Convert(body))

	for _, w := range c.Inspect(body).Warnings() {
		fmt.Fprintln(os.Stderr, styles.WarningStyle.Render("! "+w))
	}
}

// Status displays the state of every configured page
func Status(args []string) {
	opts := mustParse(args)

	cfg, path := loadConfig(opts.configPath)

	st, err := state.Load(cfg.StateFile)
	if err != nil {
		fail("Error loading state: " + err.Error())
	}

	fmt.Println(styles.TitleStyle.Render("phasedocs status"))
	fmt.Println(styles.DimStyle.Render("Config: " + path))
	fmt.Printf("%s → %s\n\n", styles.DimStyle.Render(cfg.SourceDir), styles.DimStyle.Render(cfg.OutputDir))

	rows := make([][]string, 0, len(cfg.Phases))
	for _, p := range cfg.Phases {
		generated := "-"
		if at := st.LastGenerated(p.OutputName()); !at.IsZero() {
			generated = at.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{strconv.Itoa(p.Num), p.OutputName(), pageState(st, p), generated})
	}
	fmt.Println(styles.Table([]string{"Phase", "Output", "State", "Generated"}, rows))

	if cfg.LogFile != "" {
		_, lastRun, pages := ParseLogFile(cfg.LogFile, 200)
		if !lastRun.IsZero() {
			fmt.Println(styles.DimStyle.Render(fmt.Sprintf("Last run %s: %d page(s) generated", lastRun.Format("2006-01-02 15:04:05"), pages)))
		}
	}
}

// List prints the configured phases
func List(args []string) {
	opts := mustParse(args)

	cfg, _ := loadConfig(opts.configPath)

	rows := make([][]string, 0, len(cfg.Phases))
	for _, p := range cfg.Phases {
		rows = append(rows, []string{strconv.Itoa(p.Num), p.File, p.OutputName(), p.Title, p.Progress, p.Status})
	}
	fmt.Println(styles.Table([]string{"Phase", "Source", "Output", "Title", "Progress", "Status"}, rows))
}

// Init writes the default configuration
func Init(args []string) {
	opts := mustParse(args)

	path := opts.configPath
	if path == "" {
		path = config.LocalConfigName
	}

	if _, err := os.Stat(path); err == nil && !opts.force {
		fail(path + " already exists (use --force to overwrite)")
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		fail("Error checking " + path + ": " + err.Error())
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		fail("Error writing config: " + err.Error())
	}

	fmt.Println(styles.SuccessStyle.Render("✓ Wrote " + path))
}
