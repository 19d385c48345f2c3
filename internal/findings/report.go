package findings

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/leakguard-io/leakguard/pkg/shared/files"
)

// SkippedFile records one admission decision for reporting. Skips are normal
// outcomes and always surfaced to the caller.
type SkippedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Report is the scan output written to disk and consumed by the push command.
type Report struct {
	RepoID      string        `json:"repoId"`
	Branch      string        `json:"branch,omitempty"`
	Commit      string        `json:"commit,omitempty"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Findings    []Finding     `json:"findings"`
	Skipped     []SkippedFile `json:"skipped,omitempty"`
}

// WriteReport serializes the report as indented JSON.
func WriteReport(path string, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode findings report: %w", err)
	}
	return files.WriteJsonFile(path, data)
}

// ReadReport loads a report produced by the scan command.
func ReadReport(path string) (*Report, error) {
	if err := files.ValidatePath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings report %q: %w", path, err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode findings report %q: %w", path, err)
	}
	return &report, nil
}
