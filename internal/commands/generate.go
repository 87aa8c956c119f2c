package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/gerunddev/phasedocs/internal/generate"
	"github.com/gerunddev/phasedocs/internal/preview"
	"github.com/gerunddev/phasedocs/internal/state"
	"github.com/gerunddev/phasedocs/internal/styles"
	"github.com/gerunddev/phasedocs/internal/tui"
)

// Generate converts the selected phases and writes their pages
func Generate(args []string) {
	opts := mustParse(args)

	fmt.Println(styles.TitleStyle.Render("phasedocs generate"))
	fmt.Println()

	cfg, path := loadConfig(opts.configPath)

	phases, err := cfg.Select(opts.phases)
	if err != nil {
		fail(err.Error())
	}

	st, err := state.Load(cfg.StateFile)
	if err != nil {
		fail("Error loading state: " + err.Error())
	}

	fmt.Printf("%s → %s\n\n", styles.DimStyle.Render(cfg.SourceDir), styles.DimStyle.Render(cfg.OutputDir))

	// the spinner owns the terminal, so console logging is plain mode only
	var console io.Writer
	if opts.plain {
		console = os.Stderr
	}
	log := setupLogger(cfg, console)
	defer closeAll()
	log.ConfigLoaded(path, len(cfg.Phases))

	g := generate.NewGenerator(cfg, st)
	g.SetLogger(log)

	var result *generate.Result
	if opts.plain {
		result = g.Run(phases)
		for _, p := range result.Pages {
			fmt.Println(tui.PageLine(p))
		}
		fmt.Println()
		fmt.Print(tui.Summary(result))
	} else {
		result, err = tui.RunGenerate(g, phases)
		if err != nil {
			fmt.Println(styles.ErrorStyle.Render("✗ Error: " + err.Error()))
		}
	}

	if err := st.Save(cfg.StateFile); err != nil {
		log.StateError("save", err)
		fail("Error saving state: " + err.Error())
	}

	if result == nil || len(result.Failed()) > 0 {
		exit(1)
	}
}

// Diff shows what generate would change in the selected pages
func Diff(args []string) {
	opts := mustParse(args)

	cfg, _ := loadConfig(opts.configPath)

	phases, err := cfg.Select(opts.phases)
	if err != nil {
		fail(err.Error())
	}

	st, err := state.Load(cfg.StateFile)
	if err != nil {
		fail("Error loading state: " + err.Error())
	}

	log := setupLogger(cfg, os.Stderr)
	defer closeAll()

	// footers keep the date of the last generation so only content changes show
	g := generate.NewGenerator(cfg, st)
	g.SetLogger(log)
	g.PinDates()

	failed := false
	for _, p := range phases {
		unified, err := preview.Page(g, p, cfg.OutputPath(p))
		if err != nil {
			fmt.Println(styles.ErrorStyle.Render(fmt.Sprintf("✗ %s: %v", p.OutputName(), err)))
			failed = true
			continue
		}
		if unified == "" {
			fmt.Println(styles.SuccessStyle.Render("✓ " + p.OutputName() + " is up to date"))
			continue
		}
		fmt.Println(styles.HighlightStyle.Render(p.OutputName()))
		fmt.Print(preview.Render(unified))
	}

	if failed {
		exit(1)
	}
}
