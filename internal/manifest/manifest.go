// Package manifest records what a validation run read and produced.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Status is the final state of a run.
type Status string

const (
	StatusSuccess  Status = "success" // No findings
	StatusWarning  Status = "warning" // Non-fatal findings only
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// RunManifest is a complete record of a run's inputs and outputs.
type RunManifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Tool      string    `json:"tool"` // cubedocs version
	Inputs    Inputs    `json:"inputs"`
	Outputs   Outputs   `json:"outputs"`
	Warnings  []Warning `json:"warnings,omitempty"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
}

// Inputs captures the descriptors and content a run read.
type Inputs struct {
	ConfigHash   string `json:"config_hash"`
	SidebarsHash string `json:"sidebars_hash"`
	SidebarsPath string `json:"sidebars_path"`
	DocsPath     string `json:"docs_path"`
	Version      string `json:"version,omitempty"`  // Named docs version, empty for current
	Revision     string `json:"revision,omitempty"` // Git revision as requested
	Commit       string `json:"commit,omitempty"`   // Resolved commit hash
	// Documents maps document ID to content fingerprint.
	Documents map[string]string `json:"documents"`
}

// Outputs captures what the run produced.
type Outputs struct {
	Sidebars       []SidebarSummary  `json:"sidebars"`
	NavigationHash string            `json:"navigation_hash,omitempty"`
	ArtifactHashes map[string]string `json:"artifact_hashes,omitempty"`
}

// SidebarSummary describes one rendered sidebar.
type SidebarSummary struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Pages   int    `json:"pages"`
}

// Warning is a non-fatal finding carried in the manifest.
type Warning struct {
	Scope   string `json:"scope"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

// ToJSON serializes the manifest to JSON.
func (m *RunManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*RunManifest, error) {
	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// InputsHash computes a deterministic hash of the manifest inputs. Two runs
// over the same descriptors and content share it.
func (m *RunManifest) InputsHash() string {
	ids := make([]string, 0, len(m.Inputs.Documents))
	for id := range m.Inputs.Documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	type doc struct {
		ID          string `json:"id"`
		Fingerprint string `json:"fingerprint"`
	}
	docs := make([]doc, len(ids))
	for i, id := range ids {
		docs[i] = doc{ID: id, Fingerprint: m.Inputs.Documents[id]}
	}

	hashInput := struct {
		ConfigHash   string `json:"config_hash"`
		SidebarsHash string `json:"sidebars_hash"`
		Version      string `json:"version"`
		Documents    []doc  `json:"documents"`
	}{
		ConfigHash:   m.Inputs.ConfigHash,
		SidebarsHash: m.Inputs.SidebarsHash,
		Version:      m.Inputs.Version,
		Documents:    docs,
	}

	// Marshalling a struct of strings cannot fail.
	data, _ := json.Marshal(hashInput)
	return HashBytes(data)
}

// HashBytes returns the hex sha256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}
