package scan

import (
	"fmt"
	"os"

	"github.com/leakguard-io/leakguard/pkg/shared/files"
)

const (
	formatJSON  = "json"
	formatSarif = "sarif"
)

// validateScanArgs validates the arguments provided to the scan command and
// returns the target path.
func validateScanArgs(options *RunOptionsScan, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("exactly one target path must be specified")
	}

	targetPath, err := files.ExpandPath(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to resolve the target path: %w", err)
	}
	info, err := os.Stat(targetPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("the target path does not exist: %v", targetPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to access the target path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("the target path must be a directory: %v", targetPath)
	}

	if options.ReportFormat != formatJSON && options.ReportFormat != formatSarif {
		return "", fmt.Errorf("the 'format' flag must be %q or %q", formatJSON, formatSarif)
	}

	if options.Threads <= 0 {
		return "", fmt.Errorf("the 'threads' flag must be a positive integer")
	}

	if options.ReportFormat == formatSarif && options.OutputPath == "" {
		return "", fmt.Errorf("the 'output' flag must be specified for sarif reports")
	}

	return targetPath, nil
}
