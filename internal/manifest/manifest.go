// Package manifest persists the discovery snapshot written before any logo
// is downloaded.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/italolelis/football_logos/internal/logo"
)

// FileName is the manifest's name inside the output root.
const FileName = "metadata.json"

type Settings struct {
	Format logo.Format `json:"format"`
	Size   int         `json:"size"`
}

// Manifest records every asset found during enumeration. It is written once
// per run and never updated with download results.
type Manifest struct {
	TotalLogos int          `json:"total_logos"`
	Countries  []string     `json:"countries"`
	Settings   Settings     `json:"settings"`
	Logos      []logo.Asset `json:"logos"`
}

func New(countries []string, assets []logo.Asset, format logo.Format, size int) Manifest {
	if countries == nil {
		countries = []string{}
	}

	if assets == nil {
		assets = []logo.Asset{}
	}

	return Manifest{
		TotalLogos: len(assets),
		Countries:  countries,
		Settings:   Settings{Format: format, Size: size},
		Logos:      assets,
	}
}

// Write stores m as indented JSON at dir/metadata.json, keeping non-ASCII
// team names readable, and returns the file path.
func Write(dir string, m Manifest) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return path, nil
}

// Read loads a manifest previously stored by Write.
func Read(path string) (Manifest, error) {
	var m Manifest

	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("failed to read manifest: %w", err)
	}

	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to decode manifest: %w", err)
	}

	return m, nil
}
