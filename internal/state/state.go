package state

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// PageState records the last generation of one output page
type PageState struct {
	Source      string    `json:"source"`
	SourceMTime int64     `json:"source_mtime"`
	SourceHash  string    `json:"source_hash"`
	OutputHash  string    `json:"output_hash,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`        // last successful generation
	FailedAt    time.Time `json:"failed_at,omitzero"` // last failure, zero after a success
	Error       string    `json:"error,omitempty"`
}

// State represents the generation state, keyed by output file name
type State struct {
	Pages map[string]*PageState `json:"pages"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Pages: make(map[string]*PageState),
	}
}

// Load reads state from the state file
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewState(), nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.Pages == nil {
		state.Pages = make(map[string]*PageState)
	}

	return &state, nil
}

// Save writes state to the state file
func (s *State) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// ComputeHash computes SHA256 hash of a file
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// HashBytes hashes in-memory content in the same format as ComputeHash
func HashBytes(data []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}

// Record stores a successful generation of output from source
func (s *State) Record(output, source string, sourceData, outputData []byte, at time.Time) {
	var mtime int64
	if info, err := os.Stat(source); err == nil {
		mtime = info.ModTime().Unix()
	}

	s.Pages[output] = &PageState{
		Source:      source,
		SourceMTime: mtime,
		SourceHash:  HashBytes(sourceData),
		OutputHash:  HashBytes(outputData),
		GeneratedAt: at,
	}
}

// RecordFailure stores a failed generation, keeping the last good hashes and
// generation time
func (s *State) RecordFailure(output, source string, err error, at time.Time) {
	page, exists := s.Pages[output]
	if !exists {
		page = &PageState{Source: source}
		s.Pages[output] = page
	}
	page.Error = err.Error()
	page.FailedAt = at
}

// IsStale reports whether the source changed since output was last generated.
// Uses hybrid mtime + hash approach
func (s *State) IsStale(output string) (bool, error) {
	page, exists := s.Pages[output]
	if !exists || page.Error != "" || page.SourceHash == "" {
		return true, nil
	}

	info, err := os.Stat(page.Source)
	if err != nil {
		return false, err
	}

	// Fast path: check mtime first
	if info.ModTime().Unix() == page.SourceMTime {
		return false, nil
	}

	// mtime changed, compute hash to check for actual content changes
	hash, err := ComputeHash(page.Source)
	if err != nil {
		return false, err
	}

	return hash != page.SourceHash, nil
}

// LastGenerated returns when output was last generated
func (s *State) LastGenerated(output string) time.Time {
	if page, exists := s.Pages[output]; exists {
		return page.GeneratedAt
	}
	return time.Time{}
}
