package push

import (
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/leakguard-io/leakguard/internal/apiclient"
	"github.com/leakguard-io/leakguard/internal/findings"
	"github.com/leakguard-io/leakguard/pkg/shared/config"
	"github.com/leakguard-io/leakguard/pkg/shared/httpclient"
	"github.com/leakguard-io/leakguard/pkg/shared/logger"
)

// RunOptionsPush holds the arguments for the push command.
type RunOptionsPush struct {
	APIURL    string
	InputFile string
	RepoID    string
	UserID    string
}

var (
	AppConfig        *config.Config
	pushOptions      RunOptionsPush
	examplePushUsage = `  # Pushing a findings report to the ingestion API
  leakguard push --api-url https://leakguard.example.com --input-file findings.json

  # Overriding the repository id recorded in the report
  leakguard push --api-url https://leakguard.example.com --input-file findings.json --repo-id acme/payments`
)

// PushCmd represents the push command.
var PushCmd = &cobra.Command{
	Use:                   "push --api-url URL --input-file PATH [--repo-id REPO] [--user-id USER]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               examplePushUsage,
	Short:                 "Delivers a findings report to the ingestion API",
	RunE:                  runPushCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runPushCommand executes the push command. The ingestion token comes from
// the LEAKGUARD_INGESTION_TOKEN environment variable so it never appears in
// shell history or process listings.
func runPushCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-push")

	if err := validatePushArgs(&pushOptions, args); err != nil {
		log.Error("invalid push arguments", "error", err)
		return err
	}

	report, err := findings.ReadReport(pushOptions.InputFile)
	if err != nil {
		log.Error("failed to read findings report", "error", err)
		return err
	}

	payload := buildPayload(report, &pushOptions)
	if err := payload.Validate(); err != nil {
		log.Error("findings report does not satisfy the ingestion schema", "error", err)
		return err
	}

	token := os.Getenv("LEAKGUARD_INGESTION_TOKEN")
	client := apiclient.New(httpclient.InitializeRestyClient(log, AppConfig), pushOptions.APIURL)

	result, err := client.Push(cmd.Context(), token, payload)
	if err != nil {
		// The batch is not-yet-delivered; retrying it whole is safe because
		// the server deduplicates by fingerprint.
		log.Error("findings push failed", "error", err)
		return err
	}

	log.Info("findings pushed", "count", result.Count, "new", result.New)
	return nil
}

// buildPayload assembles the ingestion payload, preferring explicit flag
// values over report metadata.
func buildPayload(report *findings.Report, options *RunOptionsPush) findings.Payload {
	repoID := options.RepoID
	if repoID == "" {
		repoID = report.RepoID
	}

	userID := options.UserID
	if userID == "" {
		if u, err := user.Current(); err == nil {
			userID = u.Username
		} else {
			userID = "local-user"
		}
	}

	return findings.Payload{
		RepoID:   repoID,
		UserID:   userID,
		Findings: report.Findings,
	}
}

// Initialize flags for the push command.
func init() {
	PushCmd.Flags().StringVarP(&pushOptions.APIURL, "api-url", "u", "", "Base URL of the leakguard ingestion API.")
	PushCmd.Flags().StringVarP(&pushOptions.InputFile, "input-file", "i", "", "Path to a JSON findings report produced by the scan command.")
	PushCmd.Flags().StringVar(&pushOptions.RepoID, "repo-id", "", "Repository id to report under; defaults to the id recorded in the report.")
	PushCmd.Flags().StringVar(&pushOptions.UserID, "user-id", "", "Reporting user id; defaults to the current OS user.")
	PushCmd.Flags().BoolP("help", "h", false, "Show help for the push command.")
}
