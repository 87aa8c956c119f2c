package generate

import (
	"bytes"

	"github.com/adrg/frontmatter"

	"github.com/gerunddev/phasedocs/internal/config"
)

// frontMatter lets a source file override the page metadata from the config
type frontMatter struct {
	Title    string `yaml:"title" toml:"title" json:"title"`
	Progress string `yaml:"progress" toml:"progress" json:"progress"`
	Status   string `yaml:"status" toml:"status" json:"status"`
}

// parseFrontMatter splits the front matter off a source. Sources without
// front matter come back unchanged.
func parseFrontMatter(source []byte) (frontMatter, []byte, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return frontMatter{}, nil, err
	}
	return meta, body, nil
}

func (m frontMatter) apply(p config.Phase) config.Phase {
	if m.Title != "" {
		p.Title = m.Title
	}
	if m.Progress != "" {
		p.Progress = m.Progress
	}
	if m.Status != "" {
		p.Status = m.Status
	}
	return p
}
