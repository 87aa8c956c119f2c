package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// LocalConfigName is picked up from the working directory before the XDG path
const LocalConfigName = "phasedocs.yaml"

// DefaultAnchor is the heading each phase document is sliced from
const DefaultAnchor = "## Objetivo"

// Config represents the phasedocs configuration
type Config struct {
	SourceDir string           `yaml:"source_dir"`
	OutputDir string           `yaml:"output_dir"`
	Anchor    string           `yaml:"anchor"`
	LogFile   string           `yaml:"log_file,omitempty"`
	LogLevel  string           `yaml:"log_level,omitempty"`
	StateFile string           `yaml:"state_file,omitempty"`
	Site      Site             `yaml:"site"`
	Converter ConverterOptions `yaml:"converter"`
	Phases    []Phase          `yaml:"phases"`
}

// Site holds the fixed parts of every page
type Site struct {
	Name         string    `yaml:"name"`
	Organization string    `yaml:"organization"`
	Contact      string    `yaml:"contact"`
	Links        []NavLink `yaml:"links"` // navigation entries before the phase links
}

// NavLink is one navigation bar entry
type NavLink struct {
	Href  string `yaml:"href"`
	Label string `yaml:"label"`
	Phase int    `yaml:"phase,omitempty"`
}

// ConverterOptions maps onto mdhtml options
type ConverterOptions struct {
	BalancedSections bool     `yaml:"balanced_sections"`
	EscapeCode       bool     `yaml:"escape_code"`
	Languages        []string `yaml:"languages,omitempty"`
}

// Phase maps one markdown source to one HTML page
type Phase struct {
	Num      int    `yaml:"num"`
	File     string `yaml:"file"`
	Output   string `yaml:"output,omitempty"`
	Title    string `yaml:"title"`
	Progress string `yaml:"progress"`
	Status   string `yaml:"status"`
}

var progressRe = regexp.MustCompile(`^\d{1,3}%$`)

func init() {
	// name fields in validation errors the way they are written in the file
	validation.ErrorTag = "yaml"
}

// DefaultConfig returns the iGAS Service Desk phase set
func DefaultConfig() *Config {
	return &Config{
		SourceDir: ".",
		OutputDir: ".",
		Anchor:    DefaultAnchor,
		LogLevel:  "info",
		Site: Site{
			Name:         "iGAS Service Desk",
			Organization: "iGAS Control Volumétrico",
			Contact:      "www.igas.mx | rroque.mor@igas.mx | 443 227 2217",
			Links: []NavLink{
				{Href: "index.html", Label: "Inicio"},
				{Href: "overview.html", Label: "Overview"},
				{Href: "fase-0.html", Label: "Fase 0"},
			},
		},
		Phases: []Phase{
			{Num: 1, File: "02-fase-1-usuarios-autenticacion.md", Title: "Autenticación y Gestión de Usuarios", Progress: "40%", Status: "En Proceso"},
			{Num: 2, File: "03-fase-2-tickets-soporte.md", Title: "Módulo Core - Tickets de Soporte", Progress: "0%", Status: "Crítica"},
			{Num: 3, File: "04-fase-3-casos-escalamiento.md", Title: "Escalamiento - Módulo de Casos", Progress: "0%", Status: "Pendiente"},
			{Num: 4, File: "05-fase-4-gestion-clientes.md", Title: "Gestión de Clientes", Progress: "0%", Status: "Pendiente"},
			{Num: 5, File: "06-fase-5-mantenimientos-instalaciones.md", Title: "Mantenimientos e Instalaciones", Progress: "0%", Status: "Pendiente"},
			{Num: 6, File: "07-fase-6-notificaciones-reportes.md", Title: "Notificaciones, Alertas y Reportes", Progress: "0%", Status: "Pendiente"},
			{Num: 7, File: "08-fase-7-testing-despliegue.md", Title: "Testing, Optimización y Despliegue", Progress: "0%", Status: "Pendiente"},
		},
	}
}

// ConfigPath returns the config file to use.
// ./phasedocs.yaml wins over the XDG config directory.
// Can be overridden for testing
var ConfigPath = func() string {
	if _, err := os.Stat(LocalConfigName); err == nil {
		return LocalConfigName
	}
	return filepath.Join(xdg.ConfigHome, "phasedocs", "config.yaml")
}

// StateFilePath returns the default path of the generation state.
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "phasedocs", "state.json")
}

// Load reads the configuration at path, or at ConfigPath() when path is empty.
// Keys missing from the file keep their defaults; a missing file yields the
// defaults. Relative directories resolve against the config file's directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	baseDir := ""

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		baseDir = filepath.Dir(path)
	case errors.Is(err, os.ErrNotExist):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ExpandPaths(baseDir); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.StateFile == "" {
		c.StateFile = StateFilePath()
	}
	for i := range c.Phases {
		if c.Phases[i].Progress == "" {
			c.Phases[i].Progress = "0%"
		}
		if c.Phases[i].Status == "" {
			c.Phases[i].Status = "Pendiente"
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SourceDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.Phases, validation.Required, validation.By(uniquePhases)),
	)
}

// Validate checks a single phase entry
func (p Phase) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Num, validation.Required, validation.Min(1)),
		validation.Field(&p.File, validation.Required),
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Progress, validation.Match(progressRe).Error("must look like 40%")),
	)
}

func uniquePhases(value interface{}) error {
	phases, _ := value.([]Phase)
	nums := make(map[int]bool, len(phases))
	outputs := make(map[string]bool, len(phases))
	for _, p := range phases {
		if nums[p.Num] {
			return validation.NewError("validation_phase_duplicate", fmt.Sprintf("phase %d is configured more than once", p.Num))
		}
		if outputs[p.OutputName()] {
			return validation.NewError("validation_output_duplicate", fmt.Sprintf("output %s is written by more than one phase", p.OutputName()))
		}
		nums[p.Num] = true
		outputs[p.OutputName()] = true
	}
	return nil
}

// ExpandPaths expands ~ and makes every path absolute. Relative source and
// output directories resolve against baseDir when it is set.
func (c *Config) ExpandPaths(baseDir string) error {
	var err error

	c.SourceDir, err = expandPath(c.SourceDir, baseDir)
	if err != nil {
		return fmt.Errorf("failed to expand source_dir: %w", err)
	}

	c.OutputDir, err = expandPath(c.OutputDir, baseDir)
	if err != nil {
		return fmt.Errorf("failed to expand output_dir: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile, "")
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	c.StateFile, err = expandPath(c.StateFile, "")
	if err != nil {
		return fmt.Errorf("failed to expand state_file: %w", err)
	}

	return nil
}

// Find returns the phase with the given number
func (c *Config) Find(num int) (Phase, bool) {
	for _, p := range c.Phases {
		if p.Num == num {
			return p, true
		}
	}
	return Phase{}, false
}

// Select returns the phases with the given numbers in config order.
// No numbers selects every phase.
func (c *Config) Select(nums []int) ([]Phase, error) {
	if len(nums) == 0 {
		return c.Phases, nil
	}

	wanted := make(map[int]bool, len(nums))
	for _, n := range nums {
		if _, ok := c.Find(n); !ok {
			return nil, fmt.Errorf("phase %d is not configured", n)
		}
		wanted[n] = true
	}

	var selected []Phase
	for _, p := range c.Phases {
		if wanted[p.Num] {
			selected = append(selected, p)
		}
	}
	return selected, nil
}

// Navigation returns the site links followed by one link per phase
func (c *Config) Navigation() []NavLink {
	nav := make([]NavLink, 0, len(c.Site.Links)+len(c.Phases))
	nav = append(nav, c.Site.Links...)
	for _, p := range c.Phases {
		nav = append(nav, NavLink{
			Href:  p.OutputName(),
			Label: fmt.Sprintf("Fase %d", p.Num),
			Phase: p.Num,
		})
	}
	return nav
}

// OutputName returns the page file name, fase-<num>.html unless overridden
func (p Phase) OutputName() string {
	if p.Output != "" {
		return p.Output
	}
	return fmt.Sprintf("fase-%d.html", p.Num)
}

// SourcePath returns the markdown file of p under the source directory
func (c *Config) SourcePath(p Phase) string {
	if filepath.IsAbs(p.File) {
		return p.File
	}
	return filepath.Join(c.SourceDir, p.File)
}

// OutputPath returns the page file of p under the output directory
func (c *Config) OutputPath(p Phase) string {
	return filepath.Join(c.OutputDir, p.OutputName())
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path, baseDir string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}
