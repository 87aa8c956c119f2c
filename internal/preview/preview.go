// Package preview shows what a generation run would change on disk.
package preview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/gerunddev/phasedocs/internal/config"
	"github.com/gerunddev/phasedocs/internal/generate"
)

// Builder renders a phase in memory
type Builder interface {
	Build(p config.Phase) (*generate.Page, error)
}

// Unified returns a unified diff turning old into new, or "" when they match
func Unified(oldName, newName, old, new string) string {
	edits := myers.ComputeEdits(span.URIFromPath(oldName), old, new)
	return fmt.Sprint(gotextdiff.ToUnified(oldName, newName, old, edits))
}

// Page diffs the page currently at outputPath against a fresh build of p.
// A page that was never generated diffs against an empty file.
func Page(b Builder, p config.Phase, outputPath string) (string, error) {
	built, err := b.Build(p)
	if err != nil {
		return "", err
	}

	current, err := os.ReadFile(outputPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read %s: %w", outputPath, err)
	}

	name := filepath.Base(outputPath)
	return Unified(name, name+" (new)", string(current), built.HTML), nil
}

// Render highlights a unified diff for the terminal. The plain fenced diff
// is returned when glamour cannot render it.
func Render(unified string) string {
	if unified == "" {
		return ""
	}

	diffMarkdown := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return diffMarkdown
	}

	rendered, err := renderer.Render(diffMarkdown)
	if err != nil {
		return diffMarkdown
	}

	return rendered
}
