package scan

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/leakguard-io/leakguard/internal/admission"
	"github.com/leakguard-io/leakguard/internal/findings"
	gitmeta "github.com/leakguard-io/leakguard/internal/git"
	"github.com/leakguard-io/leakguard/internal/rules"
	"github.com/leakguard-io/leakguard/internal/sarifreport"
	"github.com/leakguard-io/leakguard/internal/scanner"
	"github.com/leakguard-io/leakguard/pkg/shared/config"
	"github.com/leakguard-io/leakguard/pkg/shared/logger"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	ReportFormat string
	OutputPath   string
	HighEntropy  bool
	Threads      int
}

var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scanning the current directory, writing a JSON findings report
  leakguard scan . --output findings.json

  # Scanning a project with the advisory high-entropy rule enabled
  leakguard scan /path/to/project --high-entropy --output findings.json

  # Producing a SARIF report with four concurrent workers
  leakguard scan /path/to/project --format sarif --output findings.sarif -j 4`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--format/-f json|sarif] [--output/-o PATH] [--high-entropy] [-j THREADS_NUMBER, default=1] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scans a directory tree for committed credentials",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-scan")

	targetPath, err := validateScanArgs(&scanOptions, args)
	if err != nil {
		log.Error("invalid scan arguments", "error", err)
		return err
	}

	gate, err := admission.NewGate(
		targetPath,
		AppConfig.Scanner.IgnoreFile,
		AppConfig.Scanner.MaxFileSizeBytes,
		AppConfig.Scanner.AllowedExtensions,
	)
	if err != nil {
		log.Error("failed to initialize admission gate", "error", err)
		return err
	}

	ruleSet := rules.Rules(scanOptions.HighEntropy || AppConfig.Scanner.HighEntropy)

	results, err := scanner.WalkRoot(log, gate, ruleSet, targetPath, scanOptions.Threads)
	if err != nil {
		log.Error("scan walk failed", "error", err)
		return err
	}

	report := buildReport(targetPath, results, log)
	log.Info("scan completed", "files", len(results), "findings", len(report.Findings), "skipped", len(report.Skipped))

	if scanOptions.OutputPath == "" {
		printSummary(report)
		return nil
	}

	switch scanOptions.ReportFormat {
	case formatSarif:
		if err := sarifreport.WriteFile(scanOptions.OutputPath, report.Findings, ruleSet); err != nil {
			log.Error("failed to write sarif report", "error", err)
			return err
		}
	default:
		if err := findings.WriteReport(scanOptions.OutputPath, report); err != nil {
			log.Error("failed to write findings report", "error", err)
			return err
		}
	}

	log.Info("report written", "path", scanOptions.OutputPath, "format", scanOptions.ReportFormat)
	return nil
}

// buildReport folds per-file scan results into one report stamped with
// repository metadata.
func buildReport(targetPath string, results []scanner.Result, log hclog.Logger) *findings.Report {
	report := &findings.Report{
		GeneratedAt: time.Now().UTC(),
		Findings:    []findings.Finding{},
	}

	md, err := gitmeta.CollectRepositoryMetadata(targetPath)
	if err == nil {
		report.RepoID = md.RepoID
		if md.BranchName != nil {
			report.Branch = *md.BranchName
		}
		if md.CommitHash != nil {
			report.Commit = *md.CommitHash
		}
	} else {
		log.Debug("no repository metadata available", "error", err)
	}

	for _, result := range results {
		if result.Skipped() {
			report.Skipped = append(report.Skipped, findings.SkippedFile{
				File:   result.File,
				Reason: string(result.Skip.Reason),
			})
			continue
		}
		report.Findings = append(report.Findings, result.Findings...)
	}

	return report
}

func printSummary(report *findings.Report) {
	for _, finding := range report.Findings {
		fmt.Printf("%s:%d  %s  %s\n", finding.File, finding.Line, finding.Type, finding.PreviewMasked)
	}
	fmt.Printf("%d findings, %d files skipped\n", len(report.Findings), len(report.Skipped))
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.ReportFormat, "format", "f", "json", "Format for the report with results (json or sarif).")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Path to the output file where the findings report will be saved.")
	ScanCmd.Flags().BoolVar(&scanOptions.HighEntropy, "high-entropy", false, "Enable the advisory high-entropy rule (high false-positive rate).")
	ScanCmd.Flags().IntVarP(&scanOptions.Threads, "threads", "j", 1, "Number of concurrent workers to use.")
}
