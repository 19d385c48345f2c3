package findings

import "fmt"

// Limits enforced at the ingestion boundary. A batch violating any of them is
// rejected whole; there is no partial application of a malformed payload.
const (
	MaxPreviewLen    = 200
	MinFingerprint   = 8
	MaxBatchFindings = 200
)

// Finding is one detected candidate secret reduced to safe, transmittable
// fields. PreviewMasked never contains the raw matched secret and Fingerprint
// is derived from masked data only.
type Finding struct {
	Type          string `json:"type"`
	File          string `json:"file"`
	Line          int    `json:"line"`
	PreviewMasked string `json:"previewMasked"`
	Fingerprint   string `json:"fingerprint"`
}

// Payload is the ingestion request body: a bounded batch of findings reported
// for one repository by one user.
type Payload struct {
	RepoID   string    `json:"repoId"`
	UserID   string    `json:"userId"`
	Findings []Finding `json:"findings"`
}

// Validate checks one finding against the wire schema.
func (f *Finding) Validate() error {
	if f.Type == "" {
		return fmt.Errorf("finding type must not be empty")
	}
	if f.File == "" {
		return fmt.Errorf("finding file must not be empty")
	}
	if f.Line <= 0 {
		return fmt.Errorf("finding line must be positive: %d", f.Line)
	}
	if len(f.PreviewMasked) < 1 || len(f.PreviewMasked) > MaxPreviewLen {
		return fmt.Errorf("finding previewMasked length must be between 1 and %d: %d", MaxPreviewLen, len(f.PreviewMasked))
	}
	if len(f.Fingerprint) < MinFingerprint {
		return fmt.Errorf("finding fingerprint must be at least %d characters: %d", MinFingerprint, len(f.Fingerprint))
	}
	return nil
}

// Validate checks the whole payload; the first violation rejects the batch.
func (p *Payload) Validate() error {
	if p.RepoID == "" {
		return fmt.Errorf("repoId must not be empty")
	}
	if p.UserID == "" {
		return fmt.Errorf("userId must not be empty")
	}
	if len(p.Findings) > MaxBatchFindings {
		return fmt.Errorf("findings batch exceeds the maximum of %d: %d", MaxBatchFindings, len(p.Findings))
	}
	for i := range p.Findings {
		if err := p.Findings[i].Validate(); err != nil {
			return fmt.Errorf("finding %d is invalid: %w", i, err)
		}
	}
	return nil
}
