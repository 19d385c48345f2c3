package scanner

import (
	"path/filepath"
	"strings"

	"github.com/leakguard-io/leakguard/internal/admission"
	"github.com/leakguard-io/leakguard/internal/findings"
	"github.com/leakguard-io/leakguard/internal/masking"
	"github.com/leakguard-io/leakguard/internal/rules"
	"github.com/leakguard-io/leakguard/pkg/shared/files"
)

// IgnoreMarker suppresses all rule matches on any line containing it. The
// check is per line, so one marked line never hides secrets elsewhere in the
// same file.
const IgnoreMarker = "leakguard:ignore"

// RawMatch is one rule hit inside one line, before masking. It never leaves
// the scan pass.
type RawMatch struct {
	RuleID      string
	LineNumber  int
	MatchedText string
	LineText    string
}

// Result is the outcome of scanning one file: either a skip with a reason or
// a list of findings.
type Result struct {
	File     string
	Findings []findings.Finding
	Skip     *admission.Skip
}

// Skipped reports whether the file was not scanned.
func (r *Result) Skipped() bool {
	return r.Skip != nil
}

// ScanLines applies every rule to every line of content and returns all
// non-overlapping matches ordered by (line, rule registration order, match
// position). It is a pure function of content and rule set.
func ScanLines(content string, ruleSet []rules.Rule) []RawMatch {
	var matches []RawMatch

	for i, line := range splitLines(content) {
		if strings.Contains(line, IgnoreMarker) {
			continue
		}
		for _, rule := range ruleSet {
			for _, loc := range rule.Pattern.FindAllStringIndex(line, -1) {
				if loc[0] == loc[1] {
					// Zero-length captures indicate a malformed pattern, not a finding.
					continue
				}
				matches = append(matches, RawMatch{
					RuleID:      rule.ID,
					LineNumber:  i + 1,
					MatchedText: line[loc[0]:loc[1]],
					LineText:    line,
				})
			}
		}
	}

	return matches
}

// ScanContent scans admitted content and converts every raw match into a
// masked finding for the given relative file path.
func ScanContent(relPath, content string, ruleSet []rules.Rule) []findings.Finding {
	raw := ScanLines(content, ruleSet)
	out := make([]findings.Finding, 0, len(raw))
	for _, m := range raw {
		preview := masking.MaskPreview(m.LineText, m.MatchedText)
		out = append(out, findings.Finding{
			Type:          m.RuleID,
			File:          relPath,
			Line:          m.LineNumber,
			PreviewMasked: preview,
			Fingerprint:   masking.Fingerprint(m.RuleID, relPath, m.LineNumber, preview),
		})
	}
	return out
}

// ScanFile runs one file through the admission gate and the line scanner.
// root must be non-empty; relative paths in findings are forward-slash
// normalized against it, and paths escaping the root are never scanned.
func ScanFile(gate *admission.Gate, ruleSet []rules.Rule, root, absPath string) Result {
	if root == "" {
		return Result{File: absPath, Skip: &admission.Skip{Reason: admission.ReasonNoWorkspace}}
	}

	confined, err := files.EnsureWithinRoot(root, absPath)
	if err != nil {
		return Result{File: absPath, Skip: &admission.Skip{Reason: admission.ReasonNoWorkspace, Err: err}}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Result{File: absPath, Skip: &admission.Skip{Reason: admission.ReasonNoWorkspace, Err: err}}
	}
	rel, err := filepath.Rel(absRoot, confined)
	if err != nil {
		return Result{File: absPath, Skip: &admission.Skip{Reason: admission.ReasonNoWorkspace, Err: err}}
	}
	relPath := filepath.ToSlash(rel)

	content, skip := gate.Admit(confined, relPath)
	if skip != nil {
		return Result{File: relPath, Skip: skip}
	}

	return Result{
		File:     relPath,
		Findings: ScanContent(relPath, string(content), ruleSet),
	}
}

// splitLines splits on LF and tolerates CRLF so line numbers stay 1-based and
// contiguous across mixed line endings.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
