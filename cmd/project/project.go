package project

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leakguard-io/leakguard/internal/apiclient"
	"github.com/leakguard-io/leakguard/pkg/shared/config"
	"github.com/leakguard-io/leakguard/pkg/shared/httpclient"
	"github.com/leakguard-io/leakguard/pkg/shared/logger"
)

// RunOptionsProject holds the arguments for the project command.
type RunOptionsProject struct {
	APIURL string
	RepoID string
	Name   string
}

var (
	AppConfig           *config.Config
	projectOptions      RunOptionsProject
	exampleProjectUsage = `  # Creating a project and minting its ingestion token
  LEAKGUARD_ADMIN_TOKEN=... leakguard project create --api-url https://leakguard.example.com --repo-id acme/payments`
)

// ProjectCmd groups project administration subcommands.
var ProjectCmd = &cobra.Command{
	Use:                   "project",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Administers projects on the ingestion server",
}

var projectCreateCmd = &cobra.Command{
	Use:                   "create --api-url URL --repo-id REPO [--name NAME]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleProjectUsage,
	Short:                 "Creates a project and mints its ingestion token",
	RunE:                  runProjectCreateCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runProjectCreateCommand executes the project create command. The minted
// token is printed exactly once to stdout and never logged.
func runProjectCreateCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-project")

	if err := validateProjectCreateArgs(&projectOptions, args); err != nil {
		log.Error("invalid project arguments", "error", err)
		return err
	}

	adminToken := os.Getenv("LEAKGUARD_ADMIN_TOKEN")
	if adminToken == "" {
		return fmt.Errorf("the LEAKGUARD_ADMIN_TOKEN environment variable must be set")
	}

	client := apiclient.New(httpclient.InitializeRestyClient(log, AppConfig), projectOptions.APIURL)
	result, err := client.CreateProject(cmd.Context(), adminToken, projectOptions.RepoID, projectOptions.Name)
	if err != nil {
		log.Error("project creation failed", "error", err)
		return err
	}

	log.Info("project created", "id", result.ID, "repo", result.RepoID)
	fmt.Fprintln(os.Stdout, result.IngestionToken)
	return nil
}

// Initialize flags for the project create command.
func init() {
	ProjectCmd.AddCommand(projectCreateCmd)
	projectCreateCmd.Flags().StringVarP(&projectOptions.APIURL, "api-url", "u", "", "Base URL of the leakguard ingestion API.")
	projectCreateCmd.Flags().StringVar(&projectOptions.RepoID, "repo-id", "", "Repository id the project covers.")
	projectCreateCmd.Flags().StringVar(&projectOptions.Name, "name", "", "Human-readable project name; defaults to the repository id.")
	projectCreateCmd.Flags().BoolP("help", "h", false, "Show help for the project create command.")
}
