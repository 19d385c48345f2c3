package admission

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Reason is a machine-readable admission skip code. Skips are normal
// decisions, not errors, and are always reported to the caller.
type Reason string

const (
	ReasonLanguageFilter Reason = "language-filter"
	ReasonNoWorkspace    Reason = "no-workspace"
	ReasonIgnored        Reason = "ignored"
	ReasonLargeFile      Reason = "large-file"
	ReasonBinary         Reason = "binary"
	ReasonFileError      Reason = "file-error"
)

const (
	binarySampleSize    = 8000
	binaryControlsRatio = 0.3
)

// Skip explains why a file was not admitted for scanning.
type Skip struct {
	Reason Reason
	Err    error
}

func (s *Skip) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s: %v", s.Reason, s.Err)
	}
	return string(s.Reason)
}

// Gate decides per-file scan eligibility. It is immutable after construction
// and safe for concurrent use across files.
type Gate struct {
	maxFileSize int64
	matcher     gitignore.Matcher
	allowedExts map[string]struct{}
}

// NewGate builds a gate for one scan root. The ignore file is optional: a
// missing file means no path is ignored.
func NewGate(root, ignoreFileName string, maxFileSize int64, allowedExtensions []string) (*Gate, error) {
	matcher, err := loadIgnoreMatcher(root, ignoreFileName)
	if err != nil {
		return nil, err
	}

	var exts map[string]struct{}
	if len(allowedExtensions) > 0 {
		exts = make(map[string]struct{}, len(allowedExtensions))
		for _, ext := range allowedExtensions {
			exts[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
		}
	}

	return &Gate{
		maxFileSize: maxFileSize,
		matcher:     matcher,
		allowedExts: exts,
	}, nil
}

// Admit applies the admission checks in order: extension filter, file size,
// binary sniff, ignore patterns. The first failing check wins. On admission it
// returns the file content so the scanner never reads the file twice.
func (g *Gate) Admit(absPath, relPath string) ([]byte, *Skip) {
	if skip := g.checkExtension(relPath); skip != nil {
		return nil, skip
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, &Skip{Reason: ReasonFileError, Err: err}
	}
	if g.maxFileSize > 0 && info.Size() > g.maxFileSize {
		return nil, &Skip{Reason: ReasonLargeFile}
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &Skip{Reason: ReasonFileError, Err: err}
	}
	if IsBinary(content) {
		return nil, &Skip{Reason: ReasonBinary}
	}

	if g.isIgnoredPath(relPath) {
		return nil, &Skip{Reason: ReasonIgnored}
	}

	return content, nil
}

func (g *Gate) checkExtension(relPath string) *Skip {
	if g.allowedExts == nil {
		return nil
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(relPath), "."))
	if _, ok := g.allowedExts[ext]; !ok {
		return &Skip{Reason: ReasonLanguageFilter}
	}
	return nil
}

func (g *Gate) isIgnoredPath(relPath string) bool {
	if g.matcher == nil {
		return false
	}
	return g.matcher.Match(strings.Split(filepath.ToSlash(relPath), "/"), false)
}

// IsBinary samples up to the first 8000 bytes of content. Any NUL byte marks
// the file binary; otherwise it is binary when control bytes outside the
// common whitespace range (9, 10, 13) exceed 30% of the sample. An empty
// sample is never binary.
func IsBinary(content []byte) bool {
	sample := content
	if len(sample) > binarySampleSize {
		sample = sample[:binarySampleSize]
	}
	if len(sample) == 0 {
		return false
	}

	suspicious := 0
	for _, b := range sample {
		if b == 0 {
			return true
		}
		if b < 9 || (b > 13 && b < 32) {
			suspicious++
		}
	}
	return float64(suspicious)/float64(len(sample)) > binaryControlsRatio
}

// loadIgnoreMatcher reads the gitignore-style ignore file at the scan root.
// Absence of the file is not an error.
func loadIgnoreMatcher(root, ignoreFileName string) (gitignore.Matcher, error) {
	if ignoreFileName == "" {
		return nil, nil
	}

	ignorePath := filepath.Join(root, ignoreFileName)
	file, err := os.Open(ignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ignore file %q: %w", ignorePath, err)
	}
	defer file.Close()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ignore file %q: %w", ignorePath, err)
	}

	if len(patterns) == 0 {
		return nil, nil
	}
	return gitignore.NewMatcher(patterns), nil
}
