package admin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current seed manifest format version for tooling.
	ManifestVersion = manifestVersionV1

	loanDateLayout = "2006-01-02"
)

// SeedManifest is the YAML document describing seed data.
type SeedManifest struct {
	Version string         `json:"version" yaml:"version"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Books   []Book         `json:"books" yaml:"books"`
	Members []Member       `json:"members,omitempty" yaml:"members,omitempty"`
	Loans   []Loan         `json:"loans,omitempty" yaml:"loans,omitempty"`
	Stats   []Stat         `json:"stats,omitempty" yaml:"stats,omitempty"`
	Trends  []MonthlyTrend `json:"trends,omitempty" yaml:"trends,omitempty"`
	Source  string         `json:"-" yaml:"-"`
}

// ManifestFromSeed wraps seed data in a manifest document.
func ManifestFromSeed(name string, seed Seed) *SeedManifest {
	seed = seed.Clone()
	return &SeedManifest{
		Version: ManifestVersion,
		Name:    name,
		Books:   seed.Books,
		Members: seed.Members,
		Loans:   seed.Loans,
		Stats:   seed.Stats,
		Trends:  seed.Trends,
	}
}

// Seed converts the manifest into seed data.
func (m *SeedManifest) Seed() Seed {
	return Seed{
		Books:   m.Books,
		Members: m.Members,
		Loans:   m.Loans,
		Stats:   m.Stats,
		Trends:  m.Trends,
	}.Clone()
}

// ReadSeedManifest loads and validates a manifest file.
func ReadSeedManifest(path string) (*SeedManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("admin: open seed manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeSeedManifest(f)
	if err != nil {
		return nil, fmt.Errorf("admin: decode seed manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeSeedManifest reads a manifest from any reader. Unknown fields are rejected.
func DecodeSeedManifest(r io.Reader) (*SeedManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc SeedManifest
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("admin: seed manifest is empty")
		}
		return nil, fmt.Errorf("admin: parse seed manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeSeedManifest writes doc as YAML.
func EncodeSeedManifest(w io.Writer, doc *SeedManifest) error {
	if doc == nil {
		return fmt.Errorf("admin: seed manifest is nil")
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("admin: write seed manifest: %w", err)
	}
	return encoder.Close()
}

// Validate ensures the manifest satisfies required fields.
func (m *SeedManifest) Validate() error {
	if m.Version != manifestVersionV1 {
		return fmt.Errorf("admin: unsupported seed manifest version %q", m.Version)
	}
	seen := make(map[int64]struct{}, len(m.Books))
	for idx, book := range m.Books {
		if book.ID <= 0 {
			return fmt.Errorf("admin: seed book at index %d needs a positive id", idx)
		}
		if _, exists := seen[book.ID]; exists {
			return fmt.Errorf("admin: seed manifest duplicates book id %d", book.ID)
		}
		seen[book.ID] = struct{}{}
		if fields := emptyFields(trimDraft(Draft{Title: book.Title, Author: book.Author, Category: book.Category})); len(fields) > 0 {
			return fmt.Errorf("admin: seed book %d missing %s", book.ID, strings.Join(fields, ", "))
		}
	}
	for idx, member := range m.Members {
		if strings.TrimSpace(member.Name) == "" || strings.TrimSpace(member.Email) == "" {
			return fmt.Errorf("admin: seed member at index %d needs name and email", idx)
		}
	}
	for idx, loan := range m.Loans {
		if strings.TrimSpace(loan.User) == "" || strings.TrimSpace(loan.Book) == "" {
			return fmt.Errorf("admin: seed loan at index %d needs user and book", idx)
		}
		borrowed, err := time.Parse(loanDateLayout, loan.Borrowed)
		if err != nil {
			return fmt.Errorf("admin: seed loan at index %d has invalid borrowed date %q", idx, loan.Borrowed)
		}
		if loan.Returned == "" {
			continue
		}
		returned, err := time.Parse(loanDateLayout, loan.Returned)
		if err != nil {
			return fmt.Errorf("admin: seed loan at index %d has invalid returned date %q", idx, loan.Returned)
		}
		if returned.Before(borrowed) {
			return fmt.Errorf("admin: seed loan at index %d returned before it was borrowed", idx)
		}
	}
	for idx, stat := range m.Stats {
		if strings.TrimSpace(stat.Label) == "" {
			return fmt.Errorf("admin: seed stat at index %d is missing a label", idx)
		}
	}
	for idx, trend := range m.Trends {
		if strings.TrimSpace(trend.Month) == "" {
			return fmt.Errorf("admin: seed trend at index %d is missing a month", idx)
		}
	}
	return nil
}

func (m *SeedManifest) applyDefaults() {
	if m.Version == "" {
		m.Version = manifestVersionV1
	}
}
