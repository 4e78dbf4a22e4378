package batch

import (
	"encoding/json"
	"os"
	"sort"
)

// Manifest is the index written next to exported icons.
type Manifest struct {
	Size    int      `json:"size"`
	Format  string   `json:"format"`
	Total   int      `json:"total"`
	Failed  int      `json:"failed"`
	Entries []Result `json:"entries"`
}

// NewManifest summarises results, sorted by id then kind.
func NewManifest(cfg Config, results []Result) Manifest {
	entries := append([]Result(nil), results...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ID != entries[j].ID {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Kind < entries[j].Kind
	})

	m := Manifest{Size: cfg.Size, Format: cfg.Format, Total: len(entries), Entries: entries}
	for _, r := range entries {
		if !r.Success {
			m.Failed++
		}
	}
	return m
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
