package masking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPreviewRedactsKnownMatch(t *testing.T) {
	line := `const key = "sk-live-1234567890abcdef12345678";`
	preview := MaskPreview(line, "sk-live-1234567890abcdef12345678")

	assert.NotContains(t, preview, "sk-live-1234567890abcdef12345678")
	assert.Contains(t, preview, RedactionMarker)
}

func TestSanitizePreviewTruncatesAndRedacts(t *testing.T) {
	longSecret := "ghp_" + strings.Repeat("a", 36)
	longLine := longSecret + " " + strings.Repeat("x", 200)

	preview := SanitizePreview(longLine)

	assert.NotContains(t, preview, longSecret)
	assert.Contains(t, preview, RedactionMarker)
	assert.LessOrEqual(t, len([]rune(preview)), MaxPreviewLen)
}

func TestSanitizePreviewSecondPassCatchesUnreportedTokens(t *testing.T) {
	// The rule only reported the first token; the second one on the same line
	// must still be redacted by the independent pass.
	line := "a=" + strings.Repeat("Q", 25) + " b=" + strings.Repeat("Z", 30)

	preview := SanitizePreview(line)

	assert.NotContains(t, preview, strings.Repeat("Q", 25))
	assert.NotContains(t, preview, strings.Repeat("Z", 30))
}

func TestSanitizePreviewCollapsesLineBreaks(t *testing.T) {
	preview := SanitizePreview("first\r\nsecond\nthird")

	assert.Equal(t, "first second third", preview)
}

func TestSanitizePreviewShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "short value", SanitizePreview("short value"))
}

func TestFingerprintDeterminism(t *testing.T) {
	fp1 := Fingerprint("openai_api_key", "src/app.go", 3, "preview")
	fp2 := Fingerprint("openai_api_key", "src/app.go", 3, "preview")

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64)
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Fingerprint("type", "file", 1, "preview")

	tests := []struct {
		name    string
		ruleID  string
		file    string
		line    int
		preview string
	}{
		{"different rule", "other", "file", 1, "preview"},
		{"different file", "type", "other", 1, "preview"},
		{"different line", "type", "file", 2, "preview"},
		{"preview off by one char", "type", "file", 1, "previeW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, Fingerprint(tt.ruleID, tt.file, tt.line, tt.preview))
		})
	}
}

func TestTruncationMarkerAppended(t *testing.T) {
	// No token-like runs, so only the clamp applies.
	long := strings.Repeat("ab cd ", 40)
	preview := SanitizePreview(long)

	assert.Len(t, []rune(preview), MaxPreviewLen)
	assert.True(t, strings.HasSuffix(preview, "…"))
}

func TestSanitizeTextRedactsWithoutClamp(t *testing.T) {
	token := strings.Repeat("k", 40)
	text := "sample " + token + " " + strings.Repeat("word ", 50)

	out := SanitizeText(text)

	assert.NotContains(t, out, token)
	assert.Contains(t, out, RedactionMarker)
	assert.Greater(t, len(out), MaxPreviewLen)
}
