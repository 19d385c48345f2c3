package sarifreport

import (
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/leakguard-io/leakguard/internal/findings"
	"github.com/leakguard-io/leakguard/internal/rules"
)

const toolName = "leakguard"
const toolURI = "https://github.com/leakguard-io/leakguard"

// Build converts scan findings into a SARIF 2.1.0 report. Messages carry the
// masked preview only.
func Build(results []findings.Finding, ruleSet []rules.Rule) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)

	for _, rule := range ruleSet {
		run.AddRule(rule.ID).
			WithDescription(rule.Description)
	}

	for _, finding := range results {
		run.CreateResultForRule(finding.Type).
			WithLevel("warning").
			WithMessage(sarif.NewTextMessage(finding.PreviewMasked)).
			AddLocation(
				sarif.NewLocationWithPhysicalLocation(
					sarif.NewPhysicalLocation().
						WithArtifactLocation(sarif.NewSimpleArtifactLocation(finding.File)).
						WithRegion(sarif.NewSimpleRegion(finding.Line, finding.Line)),
				),
			)
	}

	report.AddRun(run)
	return report, nil
}

// WriteFile renders the report to path.
func WriteFile(path string, results []findings.Finding, ruleSet []rules.Rule) error {
	report, err := Build(results, ruleSet)
	if err != nil {
		return err
	}
	if err := report.WriteFile(path); err != nil {
		return fmt.Errorf("failed to write sarif report %q: %w", path, err)
	}
	return nil
}
