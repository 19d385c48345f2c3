package masking

// Masking is the privacy boundary of the whole system: everything that leaves
// this package is safe to log, persist, and transmit. Previews are produced in
// two independent passes (replace the reported match, then redact any leftover
// token-like run), so a rule underreporting its match range cannot leak.

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxPreviewLen bounds the preview in runes, truncation marker included.
	MaxPreviewLen = 120

	// RedactionMarker replaces secret material in previews.
	RedactionMarker = "[REDACTED]"

	truncationMarker = "…"
)

// tokenLike matches any run of 20+ token characters, the second redaction pass.
var tokenLike = regexp.MustCompile(`[A-Za-z0-9_-]{20,}`)

var lineBreaks = regexp.MustCompile(`\r?\n`)

// SanitizePreview redacts every remaining token-like run, collapses line
// breaks to spaces, and truncates to MaxPreviewLen runes.
func SanitizePreview(input string) string {
	return clampPreview(tokenLike.ReplaceAllString(input, RedactionMarker))
}

// SanitizeText redacts token-like runs without the length clamp. It guards
// free-form text such as notification messages.
func SanitizeText(input string) string {
	return tokenLike.ReplaceAllString(input, RedactionMarker)
}

// MaskPreview builds the masked preview for a line: trim, replace the first
// occurrence of the reported match, then sanitize.
func MaskPreview(line, match string) string {
	trimmed := strings.TrimSpace(line)
	redacted := strings.Replace(trimmed, match, RedactionMarker, 1)
	return SanitizePreview(redacted)
}

// Fingerprint derives the stable cross-scan identifier of a detection. The
// already-masked preview is deliberately the hash input, not the raw secret:
// any party that only ever sees masked data can recompute it. Changing the
// masking algorithm therefore changes every fingerprint and breaks dedup
// continuity with historical data.
func Fingerprint(ruleID, file string, line int, previewMasked string) string {
	parts := []string{ruleID, file, strconv.Itoa(line), previewMasked}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func clampPreview(input string) string {
	singleLine := lineBreaks.ReplaceAllString(input, " ")
	runes := []rune(singleLine)
	if len(runes) <= MaxPreviewLen {
		return singleLine
	}
	return string(runes[:MaxPreviewLen-1]) + truncationMarker
}
