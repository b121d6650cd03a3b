package search

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ResultDocument is the on-disk form of a finished run: the result record
// plus enough metadata to identify what produced it.
type ResultDocument struct {
	RunID      string    `json:"runId"`
	Domain     string    `json:"domain"`
	Instance   string    `json:"instance"`
	Algorithm  string    `json:"algorithm"`
	Expansion  string    `json:"expansion"`
	Lookahead  uint      `json:"lookahead"`
	FinishedAt time.Time `json:"finishedAt"`
	Result     *Result   `json:"result"`
}

// SaveResult writes the document as indented JSON under dir, one file per
// run ID. Returns the written path.
func SaveResult(dir string, doc *ResultDocument) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	path := filepath.Join(dir, doc.RunID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result: %w", err)
	}
	return path, nil
}

// LoadResult reads a document previously written by SaveResult.
func LoadResult(path string) (*ResultDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	var doc ResultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	return &doc, nil
}
